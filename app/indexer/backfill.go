package indexer

import (
	"context"
	"errors"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// laneHeights returns the heights lane walks, highest first: start-lane,
// start-lane-lanes, ... down to floor.
func laneHeights(start, floor int64, lane, lanes int) []int64 {
	var out []int64
	for h := start - int64(lane); h >= floor; h -= int64(lanes) {
		out = append(out, h)
	}
	return out
}

// RunBackfill walks down from the configured height with N independent lanes.
// A height that fails after retries is skipped; the next run picks it up.
func (a *App) RunBackfill(ctx context.Context) {
	lanes := a.Config.BackfillLanes
	start := a.Config.BackfillFrom
	if start <= 0 {
		head, err := a.chainHead(ctx)
		if err != nil {
			a.Logger.Error("backfill needs a start height", zap.Error(err))
			return
		}
		start = head
	}
	a.Logger.Info("backfill started",
		zap.Int64("from", start),
		zap.Int64("floor", a.Config.StartBlock),
		zap.Int("lanes", lanes))

	pool := pond.NewPool(lanes)
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for lane := 0; lane < lanes; lane++ {
		group.Submit(func() {
			a.runLane(groupCtx, lane, laneHeights(start, a.Config.StartBlock, lane, lanes))
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		a.Logger.Warn("backfill encountered error", zap.Error(err))
	}
	a.Logger.Info("backfill finished")
}

func (a *App) runLane(ctx context.Context, lane int, heights []int64) {
	logger := a.Logger.With(zap.Int("lane", lane))
	var done, skipped, failed int
	for _, h := range heights {
		if ctx.Err() != nil {
			break
		}
		if !a.Config.BlockType.Wants(h) {
			continue
		}
		exists, err := a.store.HasBlock(ctx, h)
		if err == nil && exists {
			skipped++
			continue
		}
		if err := a.IndexHeight(ctx, h); err != nil {
			failed++
			a.Metrics.ObserveBlockFailure()
			logger.Error("height failed, skipping", zap.Int64("height", h), zap.Error(err))
			continue
		}
		done++
	}
	logger.Info("lane finished",
		zap.Int("indexed", done),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
}
