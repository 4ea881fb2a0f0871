package entity

import "math/big"

// OnChainAccount is the subset of account info read from the Solana RPC.
type OnChainAccount struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Executable bool     `json:"executable"`
	RentEpoch  *big.Int `json:"rent_epoch"`
}

// PoolLiquidity combines the on-chain pool account with provider enrichment data.
type PoolLiquidity struct {
	PoolAddress    string         `json:"pool_address"`
	BaseMint       string         `json:"base_mint,omitempty"`
	QuoteMint      string         `json:"quote_mint,omitempty"`
	BaseSymbol     string         `json:"base_symbol,omitempty"`
	QuoteSymbol    string         `json:"quote_symbol,omitempty"`
	BaseReserve    *float64       `json:"base_reserve,omitempty"`
	QuoteReserve   *float64       `json:"quote_reserve,omitempty"`
	LiquidityUSD   *float64       `json:"liquidity_usd,omitempty"`
	Volume24h      *float64       `json:"volume_24h,omitempty"`
	Fees24h        *float64       `json:"fees_24h,omitempty"`
	APY            *float64       `json:"apy,omitempty"`
	Price          *float64       `json:"price,omitempty"`
	PriceChange24h *float64       `json:"price_change_24h,omitempty"`
	DEX            string         `json:"dex"`
	OnChainData    OnChainAccount `json:"on_chain_data"`
	LastUpdated    string         `json:"last_updated"`
}

// RiskLevel is a coarse low/medium/high bucket.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// PoolMetrics are derived from a single PoolLiquidity snapshot.
type PoolMetrics struct {
	VolumeToLiquidityRatio float64 `json:"volume_to_liquidity_ratio"`
	FeesAPR                float64 `json:"fees_apr"`
	Utilization            float64 `json:"utilization"`
	HealthScore            int     `json:"health_score"`
}

// RiskAnalysis buckets the pool's volatility, depth and activity.
type RiskAnalysis struct {
	ImpermanentLossRisk RiskLevel `json:"impermanent_loss_risk"`
	LiquidityRisk       RiskLevel `json:"liquidity_risk"`
	VolumeConsistency   RiskLevel `json:"volume_consistency"`
}

// PoolStats is PoolLiquidity extended with metrics and risk analysis.
type PoolStats struct {
	PoolLiquidity
	Metrics      PoolMetrics  `json:"metrics"`
	RiskAnalysis RiskAnalysis `json:"risk_analysis"`
}
