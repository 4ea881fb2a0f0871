package service

import (
	"context"
	"math"
	"sort"

	"solana_liquidity/internal/app/port"
	"solana_liquidity/internal/domain/entity"
	dexwire "solana_liquidity/internal/entity"
	"solana_liquidity/internal/pkg/utils"
)

// pairSource fetches one provider's listing and maps it to TradingPair records.
type pairSource func(ctx context.Context, client port.DEXClient, limit int, sortBy entity.SortKey, stamp string) ([]entity.TradingPair, error)

// pairSources is keyed by provider identity. A DEX missing from the table has no
// listing and yields an empty result.
var pairSources = map[entity.DEX]pairSource{ //nolint:gochecknoglobals // dispatch table
	entity.DEXRaydium: raydiumPairs,
	entity.DEXOrca:    orcaPairs,
}

func resolvePairSource(dex entity.DEX) (pairSource, bool) {
	if dex == "" {
		dex = entity.DEXRaydium
	}
	src, ok := pairSources[dex]
	return src, ok
}

func raydiumPairs(ctx context.Context, client port.DEXClient, limit int, sortBy entity.SortKey, stamp string) ([]entity.TradingPair, error) {
	raw, err := client.GetRaydiumPairs(ctx)
	if err != nil {
		return nil, err
	}
	sortRaydiumPairs(raw, sortBy)
	raw = utils.Take(raw, limit)

	pairs := make([]entity.TradingPair, 0, len(raw))
	for _, p := range raw {
		pairs = append(pairs, mapRaydiumPair(p, stamp))
	}
	return pairs, nil
}

// Provider order is kept for Orca listings.
func orcaPairs(ctx context.Context, client port.DEXClient, limit int, _ entity.SortKey, stamp string) ([]entity.TradingPair, error) {
	raw, err := client.GetOrcaWhirlpools(ctx)
	if err != nil {
		return nil, err
	}
	raw = utils.Take(raw, limit)

	pairs := make([]entity.TradingPair, 0, len(raw))
	for _, p := range raw {
		pairs = append(pairs, mapOrcaWhirlpool(p, stamp))
	}
	return pairs, nil
}

// sortRaydiumPairs orders pairs descending by the selected key, in place. Missing values count as 0.
func sortRaydiumPairs(pairs []dexwire.RaydiumPair, sortBy entity.SortKey) {
	var key func(dexwire.RaydiumPair) float64
	switch sortBy {
	case entity.SortByVolume:
		key = func(p dexwire.RaydiumPair) float64 { return utils.Float64OrZero(p.Volume24h) }
	case entity.SortByLiquidity:
		key = func(p dexwire.RaydiumPair) float64 { return utils.Float64OrZero(p.Liquidity) }
	case entity.SortByPriceChange:
		key = func(p dexwire.RaydiumPair) float64 { return math.Abs(utils.Float64OrZero(p.PriceChange24h)) }
	default:
		return
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return key(pairs[i]) > key(pairs[j])
	})
}

func mapRaydiumPair(p dexwire.RaydiumPair, stamp string) entity.TradingPair {
	return entity.TradingPair{
		PoolAddress:    p.AmmID,
		BaseMint:       p.BaseMint,
		QuoteMint:      p.QuoteMint,
		BaseSymbol:     p.BaseSymbol,
		QuoteSymbol:    p.QuoteSymbol,
		Price:          p.Price,
		Volume24h:      p.Volume24h,
		LiquidityUSD:   p.Liquidity,
		PriceChange24h: p.PriceChange24h,
		DEX:            string(entity.DEXRaydium),
		LastUpdated:    stamp,
	}
}

func mapOrcaWhirlpool(p dexwire.OrcaWhirlpool, stamp string) entity.TradingPair {
	pair := entity.TradingPair{
		PoolAddress:  p.Address,
		Price:        p.Price,
		LiquidityUSD: p.TVL,
		DEX:          string(entity.DEXOrca),
		LastUpdated:  stamp,
	}
	if p.TokenA != nil {
		pair.BaseMint = p.TokenA.Mint
		pair.BaseSymbol = p.TokenA.Symbol
	}
	if p.TokenB != nil {
		pair.QuoteMint = p.TokenB.Mint
		pair.QuoteSymbol = p.TokenB.Symbol
	}
	if p.Volume != nil {
		pair.Volume24h = p.Volume.Day
	}
	if p.PriceChange != nil {
		pair.PriceChange24h = p.PriceChange.Day
	}
	return pair
}
