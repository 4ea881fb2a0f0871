package port

import (
	"context"

	"solana_liquidity/internal/domain/entity"
)

// LiquidityService exposes pair listings, pool liquidity and derived pool statistics.
type LiquidityService interface {
	FetchTradingPairs(ctx context.Context, dex entity.DEX, limit int, sortBy entity.SortKey) ([]entity.TradingPair, error)
	FetchPoolLiquidity(ctx context.Context, poolAddress string, dex entity.DEX) (*entity.PoolLiquidity, error)
	FindTokenPair(ctx context.Context, tokenA, tokenB string, dex entity.DEX) (*entity.TokenPairSearchResult, error)
	GetPoolStats(ctx context.Context, poolAddress string) (*entity.PoolStats, error)
}
