package indexer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/db/postgres/lava"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/block"
	"github.com/lavanet/jsinfo-indexer/pkg/redis"
	"github.com/lavanet/jsinfo-indexer/pkg/retry"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
	"go.uber.org/zap"
)

type blockStore interface {
	InsertBlock(ctx context.Context, b indexermodels.Block, ents indexermodels.EntitySet, facts *indexermodels.Facts) error
	LatestHeight(ctx context.Context) (int64, error)
	IndexedHeights(ctx context.Context, from, to int64) (map[int64]struct{}, error)
	HasBlock(ctx context.Context, height int64) (bool, error)
}

type blockAssembler interface {
	Assemble(ctx context.Context, height int64) (*block.LavaBlock, error)
}

type headReader interface {
	Status(ctx context.Context) (*rpc.ResultStatus, error)
}

type notifier interface {
	NotifyBlockIndexed(ctx context.Context, n redis.BlockIndexed)
}

// IndexHeight assembles and stores one height. A height stored meanwhile by
// another lane is not an error.
func (a *App) IndexHeight(ctx context.Context, height int64) error {
	start := time.Now()

	lb, err := a.assembler.Assemble(ctx, height)
	if err != nil {
		return err
	}
	err = a.store.InsertBlock(ctx, lb.Block, lb.Entities, lb.Facts)
	if errors.Is(err, lava.ErrBlockIndexed) {
		a.Logger.Debug("height already indexed", zap.Int64("height", height))
		return nil
	}
	if err != nil {
		return err
	}

	took := time.Since(start)
	a.Metrics.ObserveBlock(took.Seconds())
	if a.notifier != nil {
		a.notifier.NotifyBlockIndexed(ctx, redis.BlockIndexed{
			Height:   height,
			Datetime: lb.Block.Datetime,
			Events:   len(lb.Facts.Events),
			Facts:    lb.Facts.Len(),
		})
	}
	a.Logger.Info("height indexed",
		zap.Int64("height", height),
		zap.Int("txs", lb.TxCount),
		zap.Int("failed_txs", lb.FailedTxs),
		zap.Int("facts", lb.Facts.Len()),
		zap.Duration("took", took))
	return nil
}

// chainHead reads the node head with the RPC retry policy.
func (a *App) chainHead(ctx context.Context) (int64, error) {
	var head int64
	err := retry.WithBackoff(ctx, retry.RPCConfig(), a.Logger, "status", func() error {
		st, err := a.chain.Status(ctx)
		if err != nil {
			return err
		}
		head = int64(st.SyncInfo.LatestBlockHeight)
		return nil
	})
	if err == nil {
		a.Metrics.SetChainHead(head)
	}
	return head, err
}

// RunHead follows the chain head until ctx is done.
func (a *App) RunHead(ctx context.Context) {
	pending := a.storedGaps(ctx)
	for {
		var err error
		pending, err = a.headRound(ctx, pending)
		if err != nil && ctx.Err() == nil {
			a.Logger.Warn("head round failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			a.Logger.Info("head loop stopped", zap.Int("pending", len(pending)))
			return
		case <-time.After(a.Config.PollInterval):
		}
	}
}

// headRound indexes every height between the database and the chain head,
// plus the heights that failed in earlier rounds. It returns the heights that
// failed in this one.
func (a *App) headRound(ctx context.Context, retryHeights []int64) ([]int64, error) {
	stored, err := a.store.LatestHeight(ctx)
	if err != nil {
		return retryHeights, err
	}
	head, err := a.chainHead(ctx)
	if err != nil {
		return retryHeights, err
	}
	from := max(stored, a.Config.StartBlock-1)
	a.Metrics.SetLastIndexedHeight(stored)

	heights := planRound(from, head, retryHeights, a.Config.BlockType)
	if len(heights) == 0 {
		return nil, nil
	}
	a.Logger.Info("head round",
		zap.Int64("db_height", stored),
		zap.Int64("chain_head", head),
		zap.Int("heights", len(heights)),
		zap.Int("retries", len(retryHeights)))

	var failed []int64
	for start := 0; start < len(heights); start += a.Config.BatchSize {
		if ctx.Err() != nil {
			failed = append(failed, heights[start:]...)
			break
		}
		batch := heights[start:min(start+a.Config.BatchSize, len(heights))]
		failed = append(failed, a.indexBatch(ctx, batch)...)
	}

	if latest, err := a.store.LatestHeight(ctx); err == nil {
		a.Metrics.SetLastIndexedHeight(latest)
	}
	return failed, nil
}

// indexBatch indexes heights concurrently and returns the ones that failed.
func (a *App) indexBatch(ctx context.Context, heights []int64) []int64 {
	known, err := a.store.IndexedHeights(ctx, heights[0], heights[len(heights)-1])
	if err != nil {
		a.Logger.Warn("unable to read indexed heights", zap.Error(err))
		known = nil
	}

	var (
		mu     sync.Mutex
		failed []int64
	)
	group := a.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for _, h := range heights {
		if _, ok := known[h]; ok {
			continue
		}
		group.Submit(func() {
			if groupCtx.Err() != nil {
				mu.Lock()
				failed = append(failed, h)
				mu.Unlock()
				return
			}
			if err := a.IndexHeight(groupCtx, h); err != nil {
				a.Metrics.ObserveBlockFailure()
				a.Logger.Error("height failed", zap.Int64("height", h), zap.Error(err))
				mu.Lock()
				failed = append(failed, h)
				mu.Unlock()
			}
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		a.Logger.Warn("batch encountered error", zap.Error(err))
	}

	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	return failed
}

// planRound lists the heights in (from, head] wanted by blockType, preceded
// by earlier failures. The result is ascending and free of duplicates.
func planRound(from, head int64, retryHeights []int64, blockType BlockType) []int64 {
	seen := make(map[int64]struct{}, len(retryHeights))
	var out []int64
	for _, h := range retryHeights {
		if _, ok := seen[h]; ok || h > head {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	for h := from + 1; h <= head; h++ {
		if !blockType.Wants(h) {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// storedGaps lists the heights missing from the last GapScan stored heights,
// left behind by a previous run that stopped with failures pending.
func (a *App) storedGaps(ctx context.Context) []int64 {
	if a.Config.GapScan <= 0 {
		return nil
	}
	stored, err := a.store.LatestHeight(ctx)
	if err != nil || stored <= 0 {
		return nil
	}
	from := max(a.Config.StartBlock, stored-a.Config.GapScan+1)
	if from > stored {
		return nil
	}
	known, err := a.store.IndexedHeights(ctx, from, stored)
	if err != nil {
		a.Logger.Warn("unable to scan for gaps", zap.Error(err))
		return nil
	}
	gaps := gapHeights(from, stored, known, a.Config.BlockType)
	if len(gaps) > 0 {
		a.Logger.Info("gaps found below the stored height",
			zap.Int64("from", from),
			zap.Int64("to", stored),
			zap.Int("gaps", len(gaps)))
	}
	return gaps
}

// gapHeights returns the heights in [from, to] wanted by blockType and absent
// from known, ascending.
func gapHeights(from, to int64, known map[int64]struct{}, blockType BlockType) []int64 {
	var out []int64
	for h := from; h <= to; h++ {
		if _, ok := known[h]; ok || !blockType.Wants(h) {
			continue
		}
		out = append(out, h)
	}
	return out
}
