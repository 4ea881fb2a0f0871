package entity

// TradingPair is the provider-neutral view of a DEX trading pair.
// Numeric fields the provider did not report stay nil and are omitted from JSON.
type TradingPair struct {
	PoolAddress    string   `json:"pool_address,omitempty"`
	BaseMint       string   `json:"base_mint,omitempty"`
	QuoteMint      string   `json:"quote_mint,omitempty"`
	BaseSymbol     string   `json:"base_symbol,omitempty"`
	QuoteSymbol    string   `json:"quote_symbol,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Volume24h      *float64 `json:"volume_24h,omitempty"`
	LiquidityUSD   *float64 `json:"liquidity_usd,omitempty"`
	PriceChange24h *float64 `json:"price_change_24h,omitempty"`
	DEX            string   `json:"dex"`
	LastUpdated    string   `json:"last_updated"`
}

// HasMint reports whether the mint appears in either leg of the pair.
func (p TradingPair) HasMint(mint string) bool {
	return p.BaseMint == mint || p.QuoteMint == mint
}

// Connects reports whether the pair trades tokenA against tokenB in either order.
func (p TradingPair) Connects(tokenA, tokenB string) bool {
	return (p.BaseMint == tokenA && p.QuoteMint == tokenB) ||
		(p.BaseMint == tokenB && p.QuoteMint == tokenA)
}

// TokenPairSearchResult is returned by the token pair finder.
type TokenPairSearchResult struct {
	DirectPairs  []TradingPair `json:"direct_pairs"`
	RelatedPairs []TradingPair `json:"related_pairs"`
	Message      string        `json:"message"`
}

const (
	MessageDirectPairsFound = "Direct trading pairs found"
	MessageRelatedPairsOnly = "No direct trading pairs found, showing related pairs"
)

// TimestampLayout renders last_updated and envelope timestamps (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
