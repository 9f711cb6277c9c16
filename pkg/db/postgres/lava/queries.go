package lava

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

// LatestHeight returns the highest stored block, or 0 when the table is empty.
func (db *DB) LatestHeight(ctx context.Context) (int64, error) {
	var height int64
	if err := db.QueryRow(ctx, `SELECT COALESCE(MAX(height), 0) FROM blocks`).Scan(&height); err != nil {
		return 0, fmt.Errorf("latest height: %w", err)
	}
	return height, nil
}

func (db *DB) HasBlock(ctx context.Context, height int64) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM blocks WHERE height = $1)`, height).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has block %d: %w", height, err)
	}
	return exists, nil
}

// IndexedHeights returns the stored heights within [from, to].
func (db *DB) IndexedHeights(ctx context.Context, from, to int64) (map[int64]struct{}, error) {
	rows, err := db.Query(ctx, `SELECT height FROM blocks WHERE height BETWEEN $1 AND $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("indexed heights: %w", err)
	}
	heights, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("indexed heights: %w", err)
	}
	out := make(map[int64]struct{}, len(heights))
	for _, h := range heights {
		out[h] = struct{}{}
	}
	return out, nil
}

func (db *DB) LoadProviders(ctx context.Context) ([]indexermodels.Provider, error) {
	rows, err := db.Query(ctx, `SELECT address, moniker FROM providers`)
	if err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[indexermodels.Provider])
}

func (db *DB) LoadSpecs(ctx context.Context) ([]indexermodels.Spec, error) {
	rows, err := db.Query(ctx, `SELECT id FROM specs`)
	if err != nil {
		return nil, fmt.Errorf("load specs: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[indexermodels.Spec])
}

func (db *DB) LoadPlans(ctx context.Context) ([]indexermodels.Plan, error) {
	rows, err := db.Query(ctx, `SELECT id, description, price FROM plans`)
	if err != nil {
		return nil, fmt.Errorf("load plans: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[indexermodels.Plan])
}
