package lava

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/db/postgres"
	"go.uber.org/zap"
)

// ErrBlockIndexed is returned by InsertBlock when the height is already stored.
// Nothing is written in that case.
var ErrBlockIndexed = errors.New("block already indexed")

const (
	onConflictIgnore = "ON CONFLICT DO NOTHING"

	// A known moniker is never replaced with an empty one.
	providerUpsert = `ON CONFLICT (address) DO UPDATE SET moniker = EXCLUDED.moniker
		WHERE EXCLUDED.moniker <> '' OR providers.moniker = ''`

	planUpsert = `ON CONFLICT (id) DO UPDATE SET
		description = EXCLUDED.description,
		price = EXCLUDED.price`
)

// InsertBlock writes one height in a single transaction: the blocks row, then
// entities, then facts. Entities are insert-or-ignore except providers.
func (db *DB) InsertBlock(ctx context.Context, block indexermodels.Block, ents indexermodels.EntitySet, facts *indexermodels.Facts) error {
	start := time.Now()
	err := db.BeginFunc(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			postgres.InsertSQL(indexermodels.BlocksTableName, indexermodels.BlockColumns, 1, onConflictIgnore),
			block.Values()...)
		if err != nil {
			return fmt.Errorf("insert block: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrBlockIndexed
		}

		batch := &pgx.Batch{}
		if err := db.queueEntities(batch, ents, onConflictIgnore); err != nil {
			return err
		}
		if err := db.queueFacts(batch, facts); err != nil {
			return err
		}
		if err := postgres.ExecuteBatch(ctx, tx, batch); err != nil {
			return fmt.Errorf("height %d: %w", block.Height, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	db.Logger.Debug("block stored",
		zap.Int64("height", block.Height),
		zap.Int("entities", ents.Len()),
		zap.Int("facts", facts.Len()),
		zap.Duration("took", time.Since(start)))
	return nil
}

// queueEntities queues entity inserts in a fixed order so concurrent writers
// take row locks in the same sequence.
func (db *DB) queueEntities(batch *pgx.Batch, ents indexermodels.EntitySet, planPolicy string) error {
	steps := []func() error{
		func() error {
			return postgres.QueueChunked(batch, indexermodels.SpecsTableName, indexermodels.SpecColumns, ents.Specs, db.ChunkSize, onConflictIgnore)
		},
		func() error {
			return postgres.QueueChunked(batch, indexermodels.TxsTableName, indexermodels.TxColumns, ents.Txs, db.ChunkSize, onConflictIgnore)
		},
		func() error {
			return postgres.QueueChunked(batch, indexermodels.ProvidersTableName, indexermodels.ProviderColumns, ents.Providers, db.ChunkSize, providerUpsert)
		},
		func() error {
			return postgres.QueueChunked(batch, indexermodels.ConsumersTableName, indexermodels.ConsumerColumns, ents.Consumers, db.ChunkSize, onConflictIgnore)
		},
		func() error {
			return postgres.QueueChunked(batch, indexermodels.PlansTableName, indexermodels.PlanColumns, ents.Plans, db.ChunkSize, planPolicy)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) queueFacts(batch *pgx.Batch, facts *indexermodels.Facts) error {
	if facts == nil {
		return nil
	}
	steps := []func() error{
		func() error {
			return postgres.QueueChunked(batch, indexermodels.EventsTableName, indexermodels.EventColumns, facts.Events, db.ChunkSize, "")
		},
		func() error {
			return postgres.QueueChunked(batch, indexermodels.RelayPaymentsTableName, indexermodels.RelayPaymentColumns, facts.RelayPayments, db.ChunkSize, "")
		},
		func() error {
			return postgres.QueueChunked(batch, indexermodels.ConflictResponsesTableName, indexermodels.ConflictResponseColumns, facts.ConflictResponses, db.ChunkSize, "")
		},
		func() error {
			return postgres.QueueChunked(batch, indexermodels.ConflictVotesTableName, indexermodels.ConflictVoteColumns, facts.ConflictVotes, db.ChunkSize, "")
		},
		func() error {
			return postgres.QueueChunked(batch, indexermodels.SubscriptionBuysTableName, indexermodels.SubscriptionBuyColumns, facts.SubscriptionBuys, db.ChunkSize, "")
		},
		func() error {
			return postgres.QueueChunked(batch, indexermodels.ProviderReportedTableName, indexermodels.ProviderReportedColumns, facts.ProviderReports, db.ChunkSize, "")
		},
		func() error {
			return postgres.QueueChunked(batch, indexermodels.ProviderLatestBlockReportsTableName, indexermodels.ProviderLatestBlockReportColumns, facts.LatestBlockReports, db.ChunkSize, "")
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
