package toolserver

import (
	"context"
	"reflect"

	"solana_liquidity/internal/app/port"
	"solana_liquidity/internal/domain/entity"
)

// Tool names.
const (
	ToolGetSolanaPairs   = "get_solana_pairs"
	ToolGetPoolLiquidity = "get_pool_liquidity"
	ToolFindTokenPair    = "find_token_pair"
	ToolGetPoolStats     = "get_pool_stats"
)

// Tool is a callable operation with its published input contract.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`

	call func(ctx context.Context, svc port.LiquidityService, raw map[string]any) (toolResult, error)
}

type toolResult struct {
	data  any
	count *int
}

// defineTool binds an argument struct type to a service call producing a single record.
func defineTool[A any](name, description string, run func(context.Context, port.LiquidityService, A) (any, error)) Tool {
	return Tool{
		Name:        name,
		Description: description,
		InputSchema: schemaFor(reflect.TypeOf((*A)(nil)).Elem()),
		call: func(ctx context.Context, svc port.LiquidityService, raw map[string]any) (toolResult, error) {
			var args A
			if err := decodeArgs(raw, &args); err != nil {
				return toolResult{}, err
			}
			data, err := run(ctx, svc, args)
			if err != nil {
				return toolResult{}, err
			}
			return toolResult{data: data}, nil
		},
	}
}

// defineListTool is defineTool for list-shaped results, which also report a count.
func defineListTool[A, T any](name, description string, run func(context.Context, port.LiquidityService, A) ([]T, error)) Tool {
	tool := defineTool(name, description, func(ctx context.Context, svc port.LiquidityService, args A) (any, error) {
		return run(ctx, svc, args)
	})
	single := tool.call
	tool.call = func(ctx context.Context, svc port.LiquidityService, raw map[string]any) (toolResult, error) {
		res, err := single(ctx, svc, raw)
		if err != nil {
			return res, err
		}
		n := len(res.data.([]T))
		res.count = &n
		return res, nil
	}
	return tool
}

// Registry holds the declared tools in publication order.
type Registry struct {
	tools  []Tool
	byName map[string]int
}

// NewRegistry declares the four liquidity tools.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]int)}

	r.register(defineListTool(ToolGetSolanaPairs,
		"Get real-time Solana trading pairs data from various DEXes",
		func(ctx context.Context, svc port.LiquidityService, a GetPairsArgs) ([]entity.TradingPair, error) {
			return svc.FetchTradingPairs(ctx, entity.ParseDEX(a.DEX), a.Limit, entity.SortKey(a.Sort))
		}))

	r.register(defineTool(ToolGetPoolLiquidity,
		"Get detailed liquidity information for a specific Solana pool",
		func(ctx context.Context, svc port.LiquidityService, a GetLiquidityArgs) (any, error) {
			return svc.FetchPoolLiquidity(ctx, a.PoolAddress, entity.ParseDEX(a.DEX))
		}))

	r.register(defineTool(ToolFindTokenPair,
		"Find trading pairs for specific tokens on Solana",
		func(ctx context.Context, svc port.LiquidityService, a FindTokenPairArgs) (any, error) {
			return svc.FindTokenPair(ctx, a.TokenA, a.TokenB, entity.ParseDEX(a.DEX))
		}))

	r.register(defineTool(ToolGetPoolStats,
		"Get comprehensive statistics and analysis for a Solana liquidity pool",
		func(ctx context.Context, svc port.LiquidityService, a GetPoolStatsArgs) (any, error) {
			return svc.GetPoolStats(ctx, a.PoolAddress)
		}))

	return r
}

func (r *Registry) register(t Tool) {
	r.byName[t.Name] = len(r.tools)
	r.tools = append(r.tools, t)
}

// Tools returns the declared tools in publication order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Lookup finds a tool by name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}
