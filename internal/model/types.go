package model

import "time"

const EnvelopeVersion = "v1"

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code      int    `json:"code"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	TxHash    string `json:"tx_hash,omitempty"`
}

type EnvelopeMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
}

type AmountInfo struct {
	AmountBaseUnits string `json:"amount_base_units"`
	AmountDecimal   string `json:"amount_decimal"`
	Decimals        int    `json:"decimals"`
}

type PoolView struct {
	PoolID      string `json:"pool_id"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Reserve0    string `json:"reserve0"`
	Reserve1    string `json:"reserve1"`
	SwapFeeBps  int64  `json:"swap_fee_bps"`
	SpotPrice01 string `json:"spot_price_token0_in_token1"`
	SpotPrice10 string `json:"spot_price_token1_in_token0"`
}

type QuoteView struct {
	PoolID        string     `json:"pool_id"`
	TokenIn       string     `json:"token_in"`
	TokenOut      string     `json:"token_out"`
	Input         AmountInfo `json:"input"`
	EstimatedOut  AmountInfo `json:"estimated_out"`
	SwapFeeBps    int64      `json:"swap_fee_bps"`
	ContractMatch *bool      `json:"contract_match,omitempty"`
	FetchedAt     string     `json:"fetched_at"`
}

type ApprovalView struct {
	Token     string `json:"token"`
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Required  string `json:"required_base_units"`
	Allowance string `json:"allowance_base_units"`
	Submitted bool   `json:"approval_submitted"`
	TxHash    string `json:"tx_hash,omitempty"`
}

type NetworkView struct {
	State         string `json:"state"`
	ChainID       string `json:"chain_id"`
	TargetChainID string `json:"target_chain_id"`
	Switched      bool   `json:"switched"`
	ChainAdded    bool   `json:"chain_added"`
}

type SwapView struct {
	AttemptID    string     `json:"attempt_id"`
	State        string     `json:"state"`
	PoolID       string     `json:"pool_id"`
	TokenIn      string     `json:"token_in"`
	TokenOut     string     `json:"token_out"`
	Input        AmountInfo `json:"input"`
	EstimatedOut AmountInfo `json:"estimated_out"`
	TxHash       string     `json:"tx_hash,omitempty"`
	Error        string     `json:"error,omitempty"`
}
