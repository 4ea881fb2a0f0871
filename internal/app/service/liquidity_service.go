package service

import (
	"context"
	"fmt"
	"time"

	"solana_liquidity/internal/app/port"
	"solana_liquidity/internal/domain/entity"
	dexwire "solana_liquidity/internal/entity"
	"solana_liquidity/internal/pkg/utils"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"
)

const (
	// tokenSearchPoolSize is how many top-volume pairs are scanned by FindTokenPair.
	tokenSearchPoolSize = 100
	maxRelatedPairs     = 10
)

// LiquidityServiceImpl implements port.LiquidityService.
type LiquidityServiceImpl struct {
	dexClient port.DEXClient
	accounts  port.AccountReader
	logger    port.Logger
	now       func() time.Time
}

// NewLiquidityService creates a new instance of LiquidityServiceImpl.
func NewLiquidityService(dc port.DEXClient, ar port.AccountReader, l port.Logger) port.LiquidityService {
	return newLiquidityService(dc, ar, l, time.Now)
}

func newLiquidityService(dc port.DEXClient, ar port.AccountReader, l port.Logger, now func() time.Time) *LiquidityServiceImpl {
	return &LiquidityServiceImpl{
		dexClient: dc,
		accounts:  ar,
		logger:    l.With("component", "LiquidityService"),
		now:       now,
	}
}

func (s *LiquidityServiceImpl) stamp() string {
	return s.now().UTC().Format(entity.TimestampLayout)
}

// FetchTradingPairs lists pairs from the selected DEX. An empty dex selects Raydium;
// a DEX without a listing source returns an empty slice.
func (s *LiquidityServiceImpl) FetchTradingPairs(
	ctx context.Context,
	dex entity.DEX,
	limit int,
	sortBy entity.SortKey,
) ([]entity.TradingPair, error) {
	src, ok := resolvePairSource(dex)
	if !ok { // jupiter и прочие: листинга нет, это не ошибка
		s.logger.Debug("No pair listing for DEX, returning empty result", "dex", dex)
		return []entity.TradingPair{}, nil
	}

	pairs, err := src(ctx, s.dexClient, limit, sortBy, s.stamp())
	if err != nil {
		s.logger.Error("Failed to fetch trading pairs", "dex", dex, "error", err)
		return nil, fmt.Errorf("failed to fetch trading pairs: %w", err)
	}
	s.logger.Debug("Fetched trading pairs", "dex", dex, "count", len(pairs), "sort", sortBy)
	return pairs, nil
}

// FetchPoolLiquidity reads the pool account on-chain and, for the default DEX, enriches
// it with the matching Raydium pair. A missing account fails the call; enrichment never does.
func (s *LiquidityServiceImpl) FetchPoolLiquidity(
	ctx context.Context,
	poolAddress string,
	dex entity.DEX,
) (*entity.PoolLiquidity, error) {
	// Проверка адреса до любых сетевых вызовов
	pubkey, err := solana.PublicKeyFromBase58(poolAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool liquidity: %w",
			&entity.ValidationError{Field: "pool_address", Reason: err.Error()})
	}

	var (
		account  *entity.OnChainAccount
		enriched dexwire.RaydiumPair
		found    bool
	)

	// On-chain запрос и обогащение данными Raydium идут параллельно
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		acc, err := s.accounts.GetAccount(gctx, pubkey)
		if err != nil {
			return err
		}
		account = acc
		return nil
	})
	if dex.IsDefault() {
		// Detached from gctx so an on-chain failure does not surface as an enrichment warning.
		g.Go(func() error {
			enriched, found = s.lookupRaydiumPool(ctx, poolAddress)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch pool liquidity: %w", err)
	}

	pool := &entity.PoolLiquidity{
		PoolAddress: poolAddress,
		DEX:         entity.DEXUnknown,
		OnChainData: *account,
		LastUpdated: s.stamp(),
	}
	if dex != "" {
		pool.DEX = string(dex)
	}
	if found { // поля Raydium копируются как есть, отсутствующие остаются nil
		pool.BaseMint = enriched.BaseMint
		pool.QuoteMint = enriched.QuoteMint
		pool.BaseSymbol = enriched.BaseSymbol
		pool.QuoteSymbol = enriched.QuoteSymbol
		pool.BaseReserve = enriched.BaseReserve
		pool.QuoteReserve = enriched.QuoteReserve
		pool.LiquidityUSD = enriched.Liquidity
		pool.Volume24h = enriched.Volume24h
		pool.Fees24h = enriched.Fees24h
		pool.APY = enriched.APY
		pool.Price = enriched.Price
		pool.PriceChange24h = enriched.PriceChange24h
	}
	return pool, nil
}

// lookupRaydiumPool returns the Raydium pair whose ammId equals poolAddress. Provider
// failures are logged and reported as absent.
func (s *LiquidityServiceImpl) lookupRaydiumPool(ctx context.Context, poolAddress string) (dexwire.RaydiumPair, bool) {
	pairs, err := s.dexClient.GetRaydiumPairs(ctx)
	if err != nil {
		s.logger.Warn("Could not fetch Raydium data", "pool", poolAddress, "error", err)
		return dexwire.RaydiumPair{}, false
	}
	for _, p := range pairs {
		if p.AmmID == poolAddress {
			return p, true
		}
	}
	s.logger.Debug("Pool not listed by Raydium", "pool", poolAddress)
	return dexwire.RaydiumPair{}, false
}

// FindTokenPair searches the top pairs by volume for pairs trading tokenA against tokenB.
// Without a direct match it falls back to pairs containing either token.
func (s *LiquidityServiceImpl) FindTokenPair(
	ctx context.Context,
	tokenA, tokenB string,
	dex entity.DEX,
) (*entity.TokenPairSearchResult, error) {
	pairs, err := s.FetchTradingPairs(ctx, dex, tokenSearchPoolSize, entity.SortByVolume)
	if err != nil {
		return nil, fmt.Errorf("failed to find token pairs: %w", err)
	}

	direct := utils.Filter(pairs, func(p entity.TradingPair) bool {
		return p.Connects(tokenA, tokenB)
	})
	if len(direct) > 0 {
		return &entity.TokenPairSearchResult{
			DirectPairs:  direct,
			RelatedPairs: []entity.TradingPair{},
			Message:      entity.MessageDirectPairsFound,
		}, nil
	}

	// Прямых пар нет: берём пары, где встречается хотя бы один из токенов
	related := utils.Filter(pairs, func(p entity.TradingPair) bool {
		return p.HasMint(tokenA) || p.HasMint(tokenB)
	})
	return &entity.TokenPairSearchResult{
		DirectPairs:  []entity.TradingPair{},
		RelatedPairs: utils.Take(related, maxRelatedPairs),
		Message:      entity.MessageRelatedPairsOnly,
	}, nil
}

// GetPoolStats fetches pool liquidity on the default DEX path and derives metrics from it.
func (s *LiquidityServiceImpl) GetPoolStats(ctx context.Context, poolAddress string) (*entity.PoolStats, error) {
	pool, err := s.FetchPoolLiquidity(ctx, poolAddress, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get pool statistics: %w", err)
	}
	stats := buildPoolStats(*pool)
	s.logger.Debug("Computed pool statistics",
		"pool", poolAddress,
		"health_score", stats.Metrics.HealthScore,
		"liquidity_risk", stats.RiskAnalysis.LiquidityRisk,
	)
	return stats, nil
}
