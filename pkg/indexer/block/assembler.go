package block

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/entities"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/events"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
	"go.uber.org/zap"
)

// Source provides the raw RPC material of one height.
type Source interface {
	GetBlock(ctx context.Context, height int64) (*rpc.ResultBlock, error)
	GetTxs(ctx context.Context, height int64, blk *rpc.ResultBlock) ([]rpc.TxResult, error)
	GetBlockResultEvents(ctx context.Context, height int64) ([]rpc.Event, error)
}

// LavaBlock is everything one height contributes to the database.
type LavaBlock struct {
	Block     indexermodels.Block
	Facts     *indexermodels.Facts
	Entities  indexermodels.EntitySet
	TxCount   int
	FailedTxs int
}

// Assembler turns a height into a LavaBlock.
type Assembler struct {
	source     Source
	dispatcher *events.Dispatcher
	overlay    atomic.Pointer[entities.Snapshot]
	logger     *zap.Logger
}

func NewAssembler(source Source, dispatcher *events.Dispatcher, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{source: source, dispatcher: dispatcher, logger: logger}
}

// SetOverlay swaps the known-entities snapshot used by later Assemble calls.
func (a *Assembler) SetOverlay(s *entities.Snapshot) {
	a.overlay.Store(s)
}

// Assemble fetches and parses one height. Events of failed transactions are
// skipped. Block events are dispatched after every transaction, without a hash.
func (a *Assembler) Assemble(ctx context.Context, height int64) (*LavaBlock, error) {
	start := time.Now()

	blk, err := a.source.GetBlock(ctx, height)
	if err != nil {
		return nil, fmt.Errorf("get block: %w", err)
	}
	txs, err := a.source.GetTxs(ctx, height, blk)
	if err != nil {
		return nil, fmt.Errorf("get txs: %w", err)
	}
	blockEvents, err := a.source.GetBlockResultEvents(ctx, height)
	if err != nil {
		return nil, fmt.Errorf("get block results: %w", err)
	}

	ts := blk.Block.Header.Time
	out := &LavaBlock{
		Block:   indexermodels.Block{Height: height, Datetime: ts},
		Facts:   &indexermodels.Facts{},
		TxCount: len(txs),
	}
	resolver := entities.NewResolver(a.overlay.Load())

	for _, tx := range txs {
		if tx.TxResult.Code != 0 {
			out.FailedTxs++
			continue
		}
		hash := tx.Hash
		c := &events.Context{Height: height, Time: ts, TxHash: &hash, Facts: out.Facts, Entities: resolver}
		for _, evt := range tx.TxResult.Events {
			a.dispatcher.Dispatch(c, evt)
		}
	}

	c := &events.Context{Height: height, Time: ts, Facts: out.Facts, Entities: resolver}
	for _, evt := range blockEvents {
		a.dispatcher.Dispatch(c, evt)
	}

	out.Entities = resolver.Staged()

	a.logger.Debug("block assembled",
		zap.Int64("height", height),
		zap.Int("txs", out.TxCount),
		zap.Int("failed_txs", out.FailedTxs),
		zap.Int("block_events", len(blockEvents)),
		zap.Int("facts", out.Facts.Len()),
		zap.Int("entities", out.Entities.Len()),
		zap.Duration("took", time.Since(start)))
	return out, nil
}
