package networkdefinition

import (
	"sort"
	"strings"

	"solana_liquidity/internal/app/port"
	"solana_liquidity/internal/config"
	"solana_liquidity/internal/domain/entity"
)

// Predefined DEX definitions. Only the pairs endpoints are queried; the remaining
// URLs document the provider surface.
var ( //nolint:gochecknoglobals // Global for definitions
	Raydium = entity.DEXDefinition{
		Identifier: entity.DEXRaydium,
		Name:       "Raydium",
		PairsURL:   "https://api.raydium.io/v2/main/pairs",
		PoolsURL:   "https://api.raydium.io/v2/sdk/liquidity/mainnet.json",
	}
	Orca = entity.DEXDefinition{
		Identifier: entity.DEXOrca,
		Name:       "Orca Whirlpools",
		PairsURL:   "https://api.orca.so/v1/whirlpool/list",
		PoolsURL:   "https://api.orca.so/v1/whirlpool/list",
	}
	Jupiter = entity.DEXDefinition{
		Identifier: entity.DEXJupiter,
		Name:       "Jupiter",
		TokensURL:  "https://token.jup.ag/all",
		PriceURL:   "https://price.jup.ag/v4/price",
	}
)

// DEXDefinitionProvider provides DEX definitions with config overrides applied.
type DEXDefinitionProvider struct {
	logger port.Logger
	defs   map[entity.DEX]entity.DEXDefinition
}

// NewDEXDefinitionProvider builds the provider from the built-in table and the
// endpoint overrides found in cfg.
func NewDEXDefinitionProvider(logger port.Logger, overrides map[string]config.DEXEndpointConfig) port.DEXDefinitionProvider {
	defs := map[entity.DEX]entity.DEXDefinition{
		Raydium.Identifier: Raydium,
		Orca.Identifier:    Orca,
		Jupiter.Identifier: Jupiter,
	}

	for name, override := range overrides {
		id := entity.ParseDEX(name)
		def, ok := defs[id]
		if !ok {
			continue
		}
		if u := strings.TrimSpace(override.PairsURL); u != "" {
			logger.Info("Overriding DEX pairs endpoint", "dex", id, "url", u)
			def.PairsURL = u
		}
		if u := strings.TrimSpace(override.PoolsURL); u != "" {
			logger.Info("Overriding DEX pools endpoint", "dex", id, "url", u)
			def.PoolsURL = u
		}
		defs[id] = def
	}

	logger.Debug("DEX definitions initialized", "count", len(defs))
	return &DEXDefinitionProvider{logger: logger, defs: defs}
}

// GetAllDEXDefinitions returns every definition ordered by identifier.
func (p *DEXDefinitionProvider) GetAllDEXDefinitions() []entity.DEXDefinition {
	all := make([]entity.DEXDefinition, 0, len(p.defs))
	for _, def := range p.defs {
		all = append(all, def)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Identifier < all[j].Identifier })
	return all
}

// GetDEXDefinition looks a definition up by identity.
func (p *DEXDefinitionProvider) GetDEXDefinition(dex entity.DEX) (entity.DEXDefinition, bool) {
	def, ok := p.defs[dex]
	return def, ok
}
