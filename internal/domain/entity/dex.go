package entity

import "strings"

// DEX identifies a decentralized exchange provider.
type DEX string

const (
	DEXRaydium DEX = "raydium"
	DEXOrca    DEX = "orca"
	DEXJupiter DEX = "jupiter"
)

// DEXUnknown is reported in pool records when the caller did not name a DEX.
const DEXUnknown = "unknown"

// ParseDEX normalizes a caller supplied DEX name. An empty string yields an empty DEX,
// which callers treat as "no filter".
func ParseDEX(name string) DEX {
	return DEX(strings.ToLower(strings.TrimSpace(name)))
}

// IsDefault reports whether the DEX selects the default provider path (Raydium).
func (d DEX) IsDefault() bool {
	return d == "" || d == DEXRaydium
}

// SortKey selects the metric used to order pair listings.
type SortKey string

const (
	SortByVolume      SortKey = "volume"
	SortByLiquidity   SortKey = "liquidity"
	SortByPriceChange SortKey = "price_change"
)

// DEXDefinition holds the endpoints of a single DEX provider.
type DEXDefinition struct {
	Identifier DEX    `json:"identifier" yaml:"identifier"`
	Name       string `json:"name" yaml:"name"`
	PairsURL   string `json:"pairsUrl,omitempty" yaml:"pairsURL,omitempty"`
	PoolsURL   string `json:"poolsUrl,omitempty" yaml:"poolsURL,omitempty"`
	TokensURL  string `json:"tokensUrl,omitempty" yaml:"tokensURL,omitempty"`
	PriceURL   string `json:"priceUrl,omitempty" yaml:"priceURL,omitempty"`
}
