package service

import (
	"math"

	"solana_liquidity/internal/domain/entity"
	"solana_liquidity/internal/pkg/utils"
)

// Thresholds in USD, or percent for price changes.
const (
	lowLiquidityUSD    = 10_000
	mediumLiquidityUSD = 100_000

	lowVolumeUSD    = 1_000
	mediumVolumeUSD = 10_000
	highVolumeUSD   = 100_000

	highVolatilityPct   = 20
	mediumVolatilityPct = 10

	highILRiskPct   = 15
	mediumILRiskPct = 5

	daysPerYear = 365
)

func volumeToLiquidityRatio(volume, liquidity float64) float64 {
	if liquidity <= 0 {
		return 0
	}
	return volume / liquidity
}

func feesAPR(fees, liquidity float64) float64 {
	if liquidity <= 0 {
		return 0
	}
	return fees * daysPerYear / liquidity * 100
}

func utilization(ratio float64) float64 {
	if ratio <= 0 {
		return 0
	}
	return math.Min(ratio*100, 100)
}

// healthScore starts at 100 and applies independent liquidity, volatility and
// volume deductions. The result is never below 0.
func healthScore(liquidity, priceChange, volume float64) int {
	score := 100

	// Штрафы по ликвидности, волатильности и объёму, итог зажат в [0, 100]
	switch {
	case liquidity < lowLiquidityUSD:
		score -= 30
	case liquidity < mediumLiquidityUSD:
		score -= 15
	}

	switch change := math.Abs(priceChange); {
	case change > highVolatilityPct:
		score -= 25
	case change > mediumVolatilityPct:
		score -= 15
	}

	switch {
	case volume < lowVolumeUSD:
		score -= 20
	case volume < mediumVolumeUSD:
		score -= 10
	}

	return max(score, 0)
}

func impermanentLossRisk(priceChange float64) entity.RiskLevel {
	switch change := math.Abs(priceChange); {
	case change > highILRiskPct:
		return entity.RiskHigh
	case change > mediumILRiskPct:
		return entity.RiskMedium
	default:
		return entity.RiskLow
	}
}

func liquidityRisk(liquidity float64) entity.RiskLevel {
	switch {
	case liquidity < lowLiquidityUSD:
		return entity.RiskHigh
	case liquidity < mediumLiquidityUSD:
		return entity.RiskMedium
	default:
		return entity.RiskLow
	}
}

func volumeConsistency(volume float64) entity.RiskLevel {
	switch {
	case volume > highVolumeUSD:
		return entity.RiskHigh
	case volume > mediumVolumeUSD:
		return entity.RiskMedium
	default:
		return entity.RiskLow
	}
}

// buildPoolStats derives metrics and risk buckets from a liquidity snapshot.
// Missing numeric fields count as 0.
func buildPoolStats(pool entity.PoolLiquidity) *entity.PoolStats {
	volume := utils.Float64OrZero(pool.Volume24h)
	liquidity := utils.Float64OrZero(pool.LiquidityUSD)
	fees := utils.Float64OrZero(pool.Fees24h)
	priceChange := utils.Float64OrZero(pool.PriceChange24h)

	ratio := volumeToLiquidityRatio(volume, liquidity)
	return &entity.PoolStats{
		PoolLiquidity: pool,
		Metrics: entity.PoolMetrics{
			VolumeToLiquidityRatio: ratio,
			FeesAPR:                feesAPR(fees, liquidity),
			Utilization:            utilization(ratio),
			HealthScore:            healthScore(liquidity, priceChange, volume),
		},
		RiskAnalysis: entity.RiskAnalysis{
			ImpermanentLossRisk: impermanentLossRisk(priceChange),
			LiquidityRisk:       liquidityRisk(liquidity),
			VolumeConsistency:   volumeConsistency(volume),
		},
	}
}
