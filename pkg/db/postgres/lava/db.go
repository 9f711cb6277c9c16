package lava

import (
	"context"
	"fmt"
	"time"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/db/postgres"
	"go.uber.org/zap"
)

const defaultChunkSize = 20

// DB persists indexed Lava blocks and stake snapshots.
type DB struct {
	postgres.Client
	ChunkSize int
}

// New connects and makes sure every table exists.
func New(ctx context.Context, logger *zap.Logger, dbURL string, chunkSize int, poolConfig *postgres.PoolConfig) (*DB, error) {
	client, err := postgres.New(ctx, logger.With(zap.String("component", poolConfig.Component)), dbURL, poolConfig)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	db := &DB{Client: client, ChunkSize: chunkSize}
	if err := db.InitializeDB(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return db, nil
}

// InitializeDB creates the tables in order. Statements are idempotent.
func (db *DB) InitializeDB(ctx context.Context) error {
	initStart := time.Now()

	existing, err := db.TableExists(ctx, indexermodels.BlocksTableName)
	if err != nil {
		return err
	}

	initOps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"entities", db.initEntities},
		{"provider_stakes", db.initProviderStakes},
		{"events", db.initEvents},
		{"facts", db.initFacts},
	}

	for _, op := range initOps {
		db.Logger.Debug("Initializing tables", zap.String("group", op.name))
		if err := op.fn(ctx); err != nil {
			return fmt.Errorf("init %s: %w", op.name, err)
		}
	}

	db.Logger.Info("Lava database initialized successfully",
		zap.Bool("existing_schema", existing),
		zap.Duration("duration", time.Since(initStart)))
	return nil
}
