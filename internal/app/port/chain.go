package port

import (
	"context"

	"solana_liquidity/internal/domain/entity"

	"github.com/gagliardetto/solana-go"
)

// AccountReader reads account state from the Solana blockchain.
type AccountReader interface {
	// GetAccount returns the account at address. A missing account yields *entity.NotFoundError,
	// an RPC failure *entity.FetchError.
	GetAccount(ctx context.Context, address solana.PublicKey) (*entity.OnChainAccount, error)
}
