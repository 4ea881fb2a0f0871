package port

import (
	"context"

	"solana_liquidity/internal/domain/entity"
	dexwire "solana_liquidity/internal/entity"
)

// DEXClient fetches raw pair listings from the supported DEX REST providers.
type DEXClient interface {
	// GetRaydiumPairs returns the `data` array of the Raydium pairs endpoint (empty when absent).
	GetRaydiumPairs(ctx context.Context) ([]dexwire.RaydiumPair, error)
	// GetOrcaWhirlpools returns the `whirlpools` array of the Orca list endpoint (empty when absent).
	GetOrcaWhirlpools(ctx context.Context) ([]dexwire.OrcaWhirlpool, error)
}

// DEXDefinitionProvider resolves provider endpoints by DEX identity.
type DEXDefinitionProvider interface {
	GetAllDEXDefinitions() []entity.DEXDefinition
	GetDEXDefinition(dex entity.DEX) (entity.DEXDefinition, bool)
}
