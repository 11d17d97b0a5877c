package registry

// ABI fragments for the swapper contract and the ERC20 surface it spends.
const (
	SwapperABI = `[
		{"name":"getPoolId","type":"function","stateMutability":"view","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"outputs":[{"name":"","type":"bytes32"}]},
		{"name":"pools","type":"function","stateMutability":"view","inputs":[{"name":"poolId","type":"bytes32"}],"outputs":[{"name":"token0","type":"address"},{"name":"token1","type":"address"},{"name":"token0Reserve","type":"uint256"},{"name":"token1Reserve","type":"uint256"}]},
		{"name":"getSwapFee","type":"function","stateMutability":"view","inputs":[{"name":"poolId","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"getSwapAmount","type":"function","stateMutability":"view","inputs":[{"name":"amountIn","type":"uint256"},{"name":"inputReserve","type":"uint256"},{"name":"outputReserve","type":"uint256"},{"name":"swapFee","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"swap","type":"function","stateMutability":"nonpayable","inputs":[{"name":"poolId","type":"bytes32"},{"name":"tokenIn","type":"address"},{"name":"amountIn","type":"uint256"}],"outputs":[]}
	]`

	ERC20MinimalABI = `[
		{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
		{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
	]`
)
