package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"solana_liquidity/internal/domain/entity"
	dexwire "solana_liquidity/internal/entity"
	"solana_liquidity/internal/pkg/logger"
	"solana_liquidity/internal/pkg/utils"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	poolAddr = "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"
	solMint  = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

type fakeDEXClient struct {
	raydium    []dexwire.RaydiumPair
	orca       []dexwire.OrcaWhirlpool
	err        error
	orcaCalled int32
	rayCalled  int32
}

func (f *fakeDEXClient) GetRaydiumPairs(context.Context) ([]dexwire.RaydiumPair, error) {
	atomic.AddInt32(&f.rayCalled, 1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]dexwire.RaydiumPair, len(f.raydium))
	copy(out, f.raydium)
	return out, nil
}

func (f *fakeDEXClient) GetOrcaWhirlpools(context.Context) ([]dexwire.OrcaWhirlpool, error) {
	atomic.AddInt32(&f.orcaCalled, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.orca, nil
}

type fakeAccountReader struct {
	account *entity.OnChainAccount
	err     error
	calls   int32
}

func (f *fakeAccountReader) GetAccount(_ context.Context, address solana.PublicKey) (*entity.OnChainAccount, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	if f.account == nil {
		return nil, &entity.NotFoundError{Resource: "Pool", Address: address.String()}
	}
	return f.account, nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 30, 0, 123_000_000, time.UTC)

func newTestService(dc *fakeDEXClient, ar *fakeAccountReader) *LiquidityServiceImpl {
	return newLiquidityService(dc, ar, logger.Nop(), func() time.Time { return fixedNow })
}

func f(v float64) *float64 { return utils.Float64Ptr(v) }

func raydiumFixture() []dexwire.RaydiumPair {
	return []dexwire.RaydiumPair{
		{AmmID: "p1", BaseMint: solMint, QuoteMint: usdcMint, Volume24h: f(500), Liquidity: f(9_000), PriceChange24h: f(-30)},
		{AmmID: "p2", BaseMint: "RAY", QuoteMint: usdcMint, Volume24h: f(5_000), Liquidity: f(1_000), PriceChange24h: f(2)},
		{AmmID: "p3", BaseMint: "BONK", QuoteMint: solMint, Liquidity: f(50_000), PriceChange24h: f(12)},
		{AmmID: "p4", BaseMint: "JUP", QuoteMint: "BONK", Volume24h: f(5_000), PriceChange24h: f(-1)},
		{AmmID: "p5", BaseMint: usdcMint, QuoteMint: solMint, Volume24h: f(100), Liquidity: f(20)},
	}
}

func poolAddresses(pairs []entity.TradingPair) []string {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.PoolAddress)
	}
	return out
}

func TestFetchTradingPairsRaydiumSorting(t *testing.T) {
	tests := []struct {
		sort entity.SortKey
		want []string
		key  func(entity.TradingPair) float64
	}{
		{entity.SortByVolume, []string{"p2", "p4", "p1", "p5", "p3"}, func(p entity.TradingPair) float64 { return utils.Float64OrZero(p.Volume24h) }},
		{entity.SortByLiquidity, []string{"p3", "p1", "p2", "p5", "p4"}, func(p entity.TradingPair) float64 { return utils.Float64OrZero(p.LiquidityUSD) }},
		{entity.SortByPriceChange, []string{"p1", "p3", "p2", "p4", "p5"}, func(p entity.TradingPair) float64 { return math.Abs(utils.Float64OrZero(p.PriceChange24h)) }},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			svc := newTestService(&fakeDEXClient{raydium: raydiumFixture()}, &fakeAccountReader{})

			pairs, err := svc.FetchTradingPairs(context.Background(), "", 20, tt.sort)
			require.NoError(t, err)
			assert.Equal(t, tt.want, poolAddresses(pairs))
			for i := 1; i < len(pairs); i++ {
				assert.GreaterOrEqual(t, tt.key(pairs[i-1]), tt.key(pairs[i]))
			}
		})
	}
}

func TestFetchTradingPairsRespectsLimit(t *testing.T) {
	raw := make([]dexwire.RaydiumPair, 0, 150)
	for i := 0; i < 150; i++ {
		raw = append(raw, dexwire.RaydiumPair{AmmID: fmt.Sprintf("p%d", i), Volume24h: f(float64(i))})
	}
	svc := newTestService(&fakeDEXClient{raydium: raw}, &fakeAccountReader{})

	for _, limit := range []int{1, 7, 20, 100} {
		pairs, err := svc.FetchTradingPairs(context.Background(), entity.DEXRaydium, limit, entity.SortByVolume)
		require.NoError(t, err)
		assert.Len(t, pairs, limit)
		assert.Equal(t, "p149", pairs[0].PoolAddress)
	}
}

func TestFetchTradingPairsRaydiumMapping(t *testing.T) {
	svc := newTestService(&fakeDEXClient{raydium: []dexwire.RaydiumPair{{
		AmmID: poolAddr, BaseMint: solMint, QuoteMint: usdcMint, BaseSymbol: "SOL", QuoteSymbol: "USDC",
		Price: f(150), Volume24h: f(1e6), Liquidity: f(5e6), PriceChange24h: f(-1.5),
	}}}, &fakeAccountReader{})

	pairs, err := svc.FetchTradingPairs(context.Background(), "", 20, entity.SortByVolume)
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	p := pairs[0]
	assert.Equal(t, poolAddr, p.PoolAddress)
	assert.Equal(t, "SOL", p.BaseSymbol)
	assert.Equal(t, "USDC", p.QuoteSymbol)
	assert.Equal(t, 5e6, *p.LiquidityUSD)
	assert.Equal(t, "raydium", p.DEX)
	assert.Equal(t, "2024-05-01T12:30:00.123Z", p.LastUpdated)
}

func TestFetchTradingPairsOrcaKeepsProviderOrder(t *testing.T) {
	dc := &fakeDEXClient{orca: []dexwire.OrcaWhirlpool{
		{Address: "w1", TokenA: &dexwire.OrcaToken{Mint: solMint, Symbol: "SOL"}, TokenB: &dexwire.OrcaToken{Mint: usdcMint, Symbol: "USDC"},
			Price: f(150), TVL: f(10), Volume: &dexwire.OrcaPeriodStat{Day: f(1)}, PriceChange: &dexwire.OrcaPeriodStat{Day: f(3)}},
		{Address: "w2", TVL: f(1000), Volume: &dexwire.OrcaPeriodStat{Day: f(1000)}},
		{Address: "w3"},
	}}
	svc := newTestService(dc, &fakeAccountReader{})

	pairs, err := svc.FetchTradingPairs(context.Background(), entity.DEXOrca, 2, entity.SortByLiquidity)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2"}, poolAddresses(pairs))
	assert.Equal(t, solMint, pairs[0].BaseMint)
	assert.Equal(t, "USDC", pairs[0].QuoteSymbol)
	assert.Equal(t, 1.0, *pairs[0].Volume24h)
	assert.Equal(t, 3.0, *pairs[0].PriceChange24h)
	assert.Equal(t, "orca", pairs[0].DEX)
	assert.Nil(t, pairs[1].PriceChange24h)
	assert.Empty(t, pairs[1].BaseMint)
	assert.Zero(t, atomic.LoadInt32(&dc.rayCalled))
}

func TestFetchTradingPairsUnsupportedDEX(t *testing.T) {
	dc := &fakeDEXClient{raydium: raydiumFixture()}
	svc := newTestService(dc, &fakeAccountReader{})

	for _, dex := range []entity.DEX{entity.DEXJupiter, "serum"} {
		pairs, err := svc.FetchTradingPairs(context.Background(), dex, 20, entity.SortByVolume)
		require.NoError(t, err)
		assert.NotNil(t, pairs)
		assert.Empty(t, pairs)
	}
	assert.Zero(t, atomic.LoadInt32(&dc.rayCalled))
	assert.Zero(t, atomic.LoadInt32(&dc.orcaCalled))
}

func TestFetchTradingPairsWrapsFetchError(t *testing.T) {
	cause := &entity.FetchError{Op: "GET https://api.raydium.io/v2/main/pairs", Err: errors.New("unexpected status 503")}
	svc := newTestService(&fakeDEXClient{err: cause}, &fakeAccountReader{})

	_, err := svc.FetchTradingPairs(context.Background(), "", 20, entity.SortByVolume)
	require.Error(t, err)

	var fetchErr *entity.FetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "failed to fetch trading pairs: GET https://api.raydium.io/v2/main/pairs: unexpected status 503", err.Error())
}

func onChain() *entity.OnChainAccount {
	return &entity.OnChainAccount{
		Lamports:   6_124_800,
		Owner:      "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8",
		Executable: false,
		RentEpoch:  big.NewInt(361),
	}
}

func TestFetchPoolLiquidityEnriched(t *testing.T) {
	dc := &fakeDEXClient{raydium: []dexwire.RaydiumPair{
		{AmmID: "other", BaseMint: "X"},
		{AmmID: poolAddr, BaseMint: solMint, QuoteMint: usdcMint, BaseSymbol: "SOL", QuoteSymbol: "USDC",
			BaseReserve: f(10), QuoteReserve: f(1500), Liquidity: f(3000), Volume24h: f(900),
			Fees24h: f(2.25), APY: f(12.5), Price: f(150), PriceChange24h: f(-3)},
	}}
	svc := newTestService(dc, &fakeAccountReader{account: onChain()})

	pool, err := svc.FetchPoolLiquidity(context.Background(), poolAddr, "")
	require.NoError(t, err)

	assert.Equal(t, poolAddr, pool.PoolAddress)
	assert.Equal(t, "unknown", pool.DEX)
	assert.Equal(t, solMint, pool.BaseMint)
	assert.Equal(t, 10.0, *pool.BaseReserve)
	assert.Equal(t, 1500.0, *pool.QuoteReserve)
	assert.Equal(t, 3000.0, *pool.LiquidityUSD)
	assert.Equal(t, 2.25, *pool.Fees24h)
	assert.Equal(t, 12.5, *pool.APY)
	assert.Equal(t, uint64(6_124_800), pool.OnChainData.Lamports)
	assert.Equal(t, "2024-05-01T12:30:00.123Z", pool.LastUpdated)
}

func TestFetchPoolLiquidityDEXLabel(t *testing.T) {
	dc := &fakeDEXClient{}
	svc := newTestService(dc, &fakeAccountReader{account: onChain()})

	pool, err := svc.FetchPoolLiquidity(context.Background(), poolAddr, entity.DEXOrca)
	require.NoError(t, err)
	assert.Equal(t, "orca", pool.DEX)
	assert.Nil(t, pool.LiquidityUSD)
	assert.Zero(t, atomic.LoadInt32(&dc.rayCalled), "only the default DEX path is enriched")

	pool, err = svc.FetchPoolLiquidity(context.Background(), poolAddr, entity.DEXRaydium)
	require.NoError(t, err)
	assert.Equal(t, "raydium", pool.DEX)
	assert.Equal(t, int32(1), atomic.LoadInt32(&dc.rayCalled))
}

func TestFetchPoolLiquidityEnrichmentFailureIsSwallowed(t *testing.T) {
	dc := &fakeDEXClient{err: errors.New("connection reset")}
	svc := newTestService(dc, &fakeAccountReader{account: onChain()})

	pool, err := svc.FetchPoolLiquidity(context.Background(), poolAddr, "")
	require.NoError(t, err)
	assert.Empty(t, pool.BaseMint)
	assert.Nil(t, pool.Volume24h)
	assert.Equal(t, "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8", pool.OnChainData.Owner)
}

func TestFetchPoolLiquidityNotFoundWinsOverProviderData(t *testing.T) {
	dc := &fakeDEXClient{raydium: []dexwire.RaydiumPair{{AmmID: poolAddr, Liquidity: f(1e6)}}}
	svc := newTestService(dc, &fakeAccountReader{})

	_, err := svc.FetchPoolLiquidity(context.Background(), poolAddr, "")
	var notFound *entity.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "failed to fetch pool liquidity: Pool not found on-chain", err.Error())
}

func TestFetchPoolLiquidityRejectsMalformedAddress(t *testing.T) {
	dc := &fakeDEXClient{}
	ar := &fakeAccountReader{account: onChain()}
	svc := newTestService(dc, ar)

	for _, addr := range []string{"", "not-a-key", "0OIl", "abc"} {
		_, err := svc.FetchPoolLiquidity(context.Background(), addr, "")
		var validation *entity.ValidationError
		require.True(t, errors.As(err, &validation), addr)
		assert.Equal(t, "pool_address", validation.Field)
	}
	assert.Zero(t, atomic.LoadInt32(&ar.calls))
	assert.Zero(t, atomic.LoadInt32(&dc.rayCalled))
}

func TestFetchPoolLiquidityRPCFailure(t *testing.T) {
	ar := &fakeAccountReader{err: &entity.FetchError{Op: "getAccountInfo", Err: errors.New("timeout")}}
	svc := newTestService(&fakeDEXClient{}, ar)

	_, err := svc.FetchPoolLiquidity(context.Background(), poolAddr, "")
	var fetchErr *entity.FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestFindTokenPairDirect(t *testing.T) {
	svc := newTestService(&fakeDEXClient{raydium: raydiumFixture()}, &fakeAccountReader{})

	res, err := svc.FindTokenPair(context.Background(), usdcMint, solMint, "")
	require.NoError(t, err)
	assert.Equal(t, entity.MessageDirectPairsFound, res.Message)
	assert.Equal(t, []string{"p1", "p5"}, poolAddresses(res.DirectPairs))
	assert.NotNil(t, res.RelatedPairs)
	assert.Empty(t, res.RelatedPairs)
}

func TestFindTokenPairRelated(t *testing.T) {
	svc := newTestService(&fakeDEXClient{raydium: raydiumFixture()}, &fakeAccountReader{})

	res, err := svc.FindTokenPair(context.Background(), "BONK", "WIF", "")
	require.NoError(t, err)
	assert.Equal(t, entity.MessageRelatedPairsOnly, res.Message)
	assert.Empty(t, res.DirectPairs)
	assert.Equal(t, []string{"p4", "p3"}, poolAddresses(res.RelatedPairs))
}

func TestFindTokenPairRelatedIsCapped(t *testing.T) {
	raw := make([]dexwire.RaydiumPair, 0, 30)
	for i := 0; i < 30; i++ {
		raw = append(raw, dexwire.RaydiumPair{AmmID: fmt.Sprintf("p%d", i), BaseMint: solMint, QuoteMint: fmt.Sprintf("T%d", i)})
	}
	svc := newTestService(&fakeDEXClient{raydium: raw}, &fakeAccountReader{})

	res, err := svc.FindTokenPair(context.Background(), solMint, "MISSING", "")
	require.NoError(t, err)
	assert.Empty(t, res.DirectPairs)
	assert.Len(t, res.RelatedPairs, 10)

	res, err = svc.FindTokenPair(context.Background(), "NOPE1", "NOPE2", "")
	require.NoError(t, err)
	assert.Empty(t, res.DirectPairs)
	assert.Empty(t, res.RelatedPairs)
}

func TestFindTokenPairPropagatesFetchError(t *testing.T) {
	svc := newTestService(&fakeDEXClient{err: errors.New("boom")}, &fakeAccountReader{})

	_, err := svc.FindTokenPair(context.Background(), solMint, usdcMint, entity.DEXOrca)
	require.Error(t, err)
	assert.Equal(t, "failed to find token pairs: failed to fetch trading pairs: boom", err.Error())
}

func TestGetPoolStats(t *testing.T) {
	dc := &fakeDEXClient{raydium: []dexwire.RaydiumPair{
		{AmmID: poolAddr, Liquidity: f(5_000), PriceChange24h: f(-25), Volume24h: f(500), Fees24h: f(10)},
	}}
	svc := newTestService(dc, &fakeAccountReader{account: onChain()})

	stats, err := svc.GetPoolStats(context.Background(), poolAddr)
	require.NoError(t, err)

	assert.Equal(t, "unknown", stats.DEX)
	assert.Equal(t, 25, stats.Metrics.HealthScore)
	assert.InDelta(t, 0.1, stats.Metrics.VolumeToLiquidityRatio, 1e-12)
	assert.InDelta(t, 73.0, stats.Metrics.FeesAPR, 1e-9)
	assert.InDelta(t, 10.0, stats.Metrics.Utilization, 1e-9)
	assert.Equal(t, entity.RiskHigh, stats.RiskAnalysis.ImpermanentLossRisk)
	assert.Equal(t, entity.RiskHigh, stats.RiskAnalysis.LiquidityRisk)
	assert.Equal(t, entity.RiskLow, stats.RiskAnalysis.VolumeConsistency)
}

func TestGetPoolStatsPropagatesNotFound(t *testing.T) {
	svc := newTestService(&fakeDEXClient{}, &fakeAccountReader{})

	_, err := svc.GetPoolStats(context.Background(), poolAddr)
	var notFound *entity.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "failed to get pool statistics: failed to fetch pool liquidity: Pool not found on-chain", err.Error())
}
