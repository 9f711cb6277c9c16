package rpc

import (
	"context"
)

// Client captures the chain calls the indexer makes. Block ingest only needs the
// Tendermint methods; the module queries feed the periodic full-state snapshot.
type Client interface {
	Status(ctx context.Context) (*ResultStatus, error)
	Block(ctx context.Context, height int64) (*ResultBlock, error)
	TxSearchByHeight(ctx context.Context, height int64) ([]TxResult, error)
	BlockResults(ctx context.Context, height int64) (*ResultBlockResults, error)

	Specs(ctx context.Context) ([]ChainInfo, error)
	Providers(ctx context.Context, chainID string) ([]StakeEntry, error)
	UnstakingEntries(ctx context.Context) ([]StakeEntry, error)
	Plans(ctx context.Context) ([]PlanInfo, error)
}
