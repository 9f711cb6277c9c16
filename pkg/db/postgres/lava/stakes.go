package lava

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/db/postgres"
	"go.uber.org/zap"
)

const stakeUpsert = `ON CONFLICT (provider, spec_id) DO UPDATE SET
		stake = EXCLUDED.stake,
		delegate_limit = EXCLUDED.delegate_limit,
		delegate_total = EXCLUDED.delegate_total,
		delegate_commission = EXCLUDED.delegate_commission,
		applied_height = EXCLUDED.applied_height,
		geolocation = EXCLUDED.geolocation,
		addons = EXCLUDED.addons,
		extensions = EXCLUDED.extensions,
		status = EXCLUDED.status,
		block_id = EXCLUDED.block_id`

// sweepStakes marks every row the latest snapshot did not stamp as inactive.
const sweepStakes = `UPDATE provider_stakes SET status = $2 WHERE block_id <> $1 AND status <> $2`

// SaveStakeSnapshot upserts the registries and stakes of snap in one
// transaction, then sweeps stale stakes to inactive. It returns the number of
// swept rows.
func (db *DB) SaveStakeSnapshot(ctx context.Context, snap *indexermodels.StakeSnapshot) (int64, error) {
	start := time.Now()
	ents := indexermodels.EntitySet{Providers: snap.Providers, Specs: snap.Specs, Plans: snap.Plans}

	err := db.BeginFunc(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		if err := db.queueEntities(batch, ents, planUpsert); err != nil {
			return err
		}
		if err := postgres.QueueChunked(batch, indexermodels.ProviderStakesTableName, indexermodels.ProviderStakeColumns, snap.Stakes, db.ChunkSize, stakeUpsert); err != nil {
			return err
		}
		return postgres.ExecuteBatch(ctx, tx, batch)
	})
	if err != nil {
		return 0, fmt.Errorf("stake snapshot %d: %w", snap.Height, err)
	}

	tag, err := db.Pool.Exec(ctx, sweepStakes, snap.Height, int32(indexermodels.StakeInactive))
	if err != nil {
		return 0, fmt.Errorf("sweep stakes %d: %w", snap.Height, err)
	}

	db.Logger.Info("stake snapshot stored",
		zap.Int64("height", snap.Height),
		zap.Int("stakes", len(snap.Stakes)),
		zap.Int("providers", len(snap.Providers)),
		zap.Int64("swept", tag.RowsAffected()),
		zap.Duration("took", time.Since(start)))
	return tag.RowsAffected(), nil
}
