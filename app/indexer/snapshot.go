package indexer

import (
	"context"
	"fmt"

	"github.com/lavanet/jsinfo-indexer/pkg/indexer/entities"
	"go.uber.org/zap"
)

// Bootstrap loads the stored registries into the overlay and then takes a
// first full-state snapshot.
func (a *App) Bootstrap(ctx context.Context) error {
	if err := a.refreshOverlay(ctx); err != nil {
		return err
	}
	return a.Snapshot(ctx)
}

// Snapshot stores the current provider stakes, specs and plans, sweeps stale
// stakes and refreshes the overlay.
func (a *App) Snapshot(ctx context.Context) (err error) {
	defer func() { a.Metrics.ObserveSnapshot(err == nil) }()

	head, err := a.chainHead(ctx)
	if err != nil {
		return err
	}
	snap, err := a.Stakes.Build(ctx, head)
	if err != nil {
		return fmt.Errorf("build snapshot %d: %w", head, err)
	}
	if _, err := a.DB.SaveStakeSnapshot(ctx, snap); err != nil {
		return err
	}
	return a.refreshOverlay(ctx)
}

func (a *App) refreshOverlay(ctx context.Context) error {
	providers, err := a.DB.LoadProviders(ctx)
	if err != nil {
		return err
	}
	specs, err := a.DB.LoadSpecs(ctx)
	if err != nil {
		return err
	}
	plans, err := a.DB.LoadPlans(ctx)
	if err != nil {
		return err
	}
	a.Assembler.SetOverlay(entities.NewSnapshot(providers, specs, plans))
	a.Logger.Info("entity overlay refreshed",
		zap.Int("providers", len(providers)),
		zap.Int("specs", len(specs)),
		zap.Int("plans", len(plans)))
	return nil
}
