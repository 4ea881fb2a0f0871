package entity

// RaydiumPair is a single element of the Raydium pairs endpoint `data` array.
type RaydiumPair struct {
	AmmID          string   `json:"ammId"`
	Name           string   `json:"name"`
	LpMint         string   `json:"lpMint"`
	Market         string   `json:"market"`
	BaseMint       string   `json:"baseMint"`
	QuoteMint      string   `json:"quoteMint"`
	BaseSymbol     string   `json:"baseSymbol"`
	QuoteSymbol    string   `json:"quoteSymbol"`
	Price          *float64 `json:"price"`
	Volume24h      *float64 `json:"volume24h"`
	Liquidity      *float64 `json:"liquidity"`
	PriceChange24h *float64 `json:"priceChange24h"`
	BaseReserve    *float64 `json:"baseReserve"`
	QuoteReserve   *float64 `json:"quoteReserve"`
	Fees24h        *float64 `json:"fees24h"`
	APY            *float64 `json:"apy"`
}
