package client

import (
	"context"
	"errors"

	"solana_liquidity/internal/app/port"
	"solana_liquidity/internal/domain/entity"
	"solana_liquidity/internal/pkg/metrics"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

const rpcSource = "solana_rpc"

// SolanaClient implements port.AccountReader over a Solana JSON-RPC endpoint.
type SolanaClient struct {
	rpcClient  *rpc.Client
	endpoint   string
	commitment rpc.CommitmentType
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewSolanaClient creates an account reader for endpoint. An empty commitment means "confirmed".
func NewSolanaClient(endpoint, commitment string, logger *zap.Logger, m *metrics.Metrics) port.AccountReader {
	c := rpc.CommitmentType(commitment)
	if c == "" {
		c = rpc.CommitmentConfirmed
	}
	l := logger.Named("SolanaClient")
	l.Info("Solana RPC client initialized", zap.String("endpoint", endpoint), zap.String("commitment", string(c)))
	return &SolanaClient{
		rpcClient:  rpc.New(endpoint),
		endpoint:   endpoint,
		commitment: c,
		logger:     l,
		metrics:    m,
	}
}

// GetAccount implements port.AccountReader.
func (c *SolanaClient) GetAccount(ctx context.Context, address solana.PublicKey) (*entity.OnChainAccount, error) {
	c.logger.Debug("Fetching account info", zap.Stringer("address", address))

	out, err := c.rpcClient.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && (out == nil || out.Value == nil)) {
		c.metrics.IncUpstream(rpcSource, "not_found")
		c.logger.Debug("Account not found", zap.Stringer("address", address))
		return nil, &entity.NotFoundError{Resource: "Pool", Address: address.String()}
	}
	if err != nil {
		c.metrics.IncUpstream(rpcSource, "error")
		c.logger.Error("getAccountInfo failed", zap.Stringer("address", address), zap.Error(err))
		return nil, &entity.FetchError{Op: "getAccountInfo", Err: err}
	}
	c.metrics.IncUpstream(rpcSource, "ok")

	acc := out.Value
	return &entity.OnChainAccount{
		Lamports:   acc.Lamports,
		Owner:      acc.Owner.String(),
		Executable: acc.Executable,
		RentEpoch:  acc.RentEpoch,
	}, nil
}
