package registry

import (
	"fmt"
	"math/big"
	"strings"
)

// NativeCurrency and ChainDescriptor reproduce the wallet_addEthereumChain
// request shape. The JSON field names are part of the wallet protocol and
// must not change.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type ChainDescriptor struct {
	ChainIDHex        string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

// ChainID returns the numeric chain id encoded in ChainIDHex.
func (d ChainDescriptor) ChainID() (*big.Int, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(d.ChainIDHex), "0x")
	n, ok := new(big.Int).SetString(raw, 16)
	if !ok {
		return nil, fmt.Errorf("invalid chainId hex %q", d.ChainIDHex)
	}
	return n, nil
}

// AploChainID is the default target chain for the swapper deployment.
const AploChainID int64 = 28282

var aploNetwork = ChainDescriptor{
	ChainIDHex: "0x6e7a", // 28282
	ChainName:  "Aplo Network",
	NativeCurrency: NativeCurrency{
		Name:     "GAPLO",
		Symbol:   "GAPLO",
		Decimals: 18,
	},
	RPCURLs:           []string{"https://pub1.aplocoin.com"},
	BlockExplorerURLs: []string{"https://explorer.aplocoin.com"},
}

var descriptorByChainID = map[int64]ChainDescriptor{
	AploChainID: aploNetwork,
}

// DescriptorFor returns the add-chain descriptor for a known chain id.
func DescriptorFor(chainID int64) (ChainDescriptor, bool) {
	d, ok := descriptorByChainID[chainID]
	return d, ok
}
