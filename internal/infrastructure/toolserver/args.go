package toolserver

// Argument structs are the single source of truth for each tool's input contract:
// `json` names the property, `validate` carries constraints (also published as
// required/enum/minimum/maximum), `default` fills absent properties and `desc`
// is the published description.

// GetPairsArgs are the arguments of get_solana_pairs.
type GetPairsArgs struct {
	DEX   string `json:"dex" validate:"omitempty,oneof=raydium orca jupiter" desc:"DEX platform (raydium, orca, jupiter)"`
	Limit int    `json:"limit" validate:"min=1,max=100" default:"20" desc:"Number of pairs to return (1-100)"`
	Sort  string `json:"sort" validate:"oneof=volume liquidity price_change" default:"volume" desc:"Sort order"`
}

// GetLiquidityArgs are the arguments of get_pool_liquidity.
type GetLiquidityArgs struct {
	PoolAddress string `json:"pool_address" validate:"required" desc:"Pool address to get liquidity data for"`
	DEX         string `json:"dex" validate:"omitempty,oneof=raydium orca jupiter" desc:"DEX platform"`
}

// FindTokenPairArgs are the arguments of find_token_pair.
type FindTokenPairArgs struct {
	TokenA string `json:"token_a" validate:"required" desc:"First token mint address"`
	TokenB string `json:"token_b" validate:"required" desc:"Second token mint address"`
	DEX    string `json:"dex" validate:"omitempty,oneof=raydium orca jupiter" desc:"DEX platform to search on"`
}

// GetPoolStatsArgs are the arguments of get_pool_stats.
type GetPoolStatsArgs struct {
	PoolAddress string `json:"pool_address" validate:"required" desc:"Pool address to get statistics for"`
}
