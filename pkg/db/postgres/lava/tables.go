package lava

import (
	"context"
	"fmt"
	"strings"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

// createTable renders the DDL of a table from its column definitions. Fact
// tables get a surrogate key since their rows have no natural identity.
func createTable(name string, columns []indexermodels.ColumnDef, surrogate bool, indexes ...string) (string, error) {
	if err := indexermodels.ValidateColumns(columns); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n\t", name)
	if surrogate {
		b.WriteString("id BIGSERIAL PRIMARY KEY,\n\t")
	}
	b.WriteString(indexermodels.ColumnsToSchemaSQL(columns))
	b.WriteString("\n);\n")
	for _, idx := range indexes {
		fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s);\n",
			name, strings.ReplaceAll(idx, ", ", "_"), name, idx)
	}
	return b.String(), nil
}

func (db *DB) execTables(ctx context.Context, defs ...func() (string, error)) error {
	for _, def := range defs {
		query, err := def()
		if err != nil {
			return err
		}
		if err := db.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func table(name string, columns []indexermodels.ColumnDef, surrogate bool, indexes ...string) func() (string, error) {
	return func() (string, error) { return createTable(name, columns, surrogate, indexes...) }
}

// initEntities creates the blocks table and the identity tables.
func (db *DB) initEntities(ctx context.Context) error {
	return db.execTables(ctx,
		table(indexermodels.BlocksTableName, indexermodels.BlockColumns, false, "datetime"),
		table(indexermodels.ProvidersTableName, indexermodels.ProviderColumns, false),
		table(indexermodels.SpecsTableName, indexermodels.SpecColumns, false),
		table(indexermodels.ConsumersTableName, indexermodels.ConsumerColumns, false),
		table(indexermodels.TxsTableName, indexermodels.TxColumns, false, "block_id"),
		table(indexermodels.PlansTableName, indexermodels.PlanColumns, false),
	)
}

// initProviderStakes creates provider_stakes. (provider, spec_id) is the upsert key.
func (db *DB) initProviderStakes(ctx context.Context) error {
	if err := db.execTables(ctx,
		table(indexermodels.ProviderStakesTableName, indexermodels.ProviderStakeColumns, true, "status", "block_id"),
	); err != nil {
		return err
	}
	return db.Exec(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_provider_stakes_provider_spec
			ON provider_stakes(provider, spec_id);
	`)
}

func (db *DB) initEvents(ctx context.Context) error {
	return db.execTables(ctx,
		table(indexermodels.EventsTableName, indexermodels.EventColumns, true,
			"block_id", "event_type", "provider", "consumer", "tx"),
	)
}

func (db *DB) initFacts(ctx context.Context) error {
	return db.execTables(ctx,
		table(indexermodels.RelayPaymentsTableName, indexermodels.RelayPaymentColumns, true,
			"block_id", "provider", "spec_id", "consumer", "datetime"),
		table(indexermodels.ConflictResponsesTableName, indexermodels.ConflictResponseColumns, true,
			"block_id", "consumer", "spec_id"),
		table(indexermodels.ConflictVotesTableName, indexermodels.ConflictVoteColumns, true,
			"block_id", "provider", "vote_id"),
		table(indexermodels.SubscriptionBuysTableName, indexermodels.SubscriptionBuyColumns, true,
			"block_id", "consumer", "plan"),
		table(indexermodels.ProviderReportedTableName, indexermodels.ProviderReportedColumns, true,
			"block_id", "provider"),
		table(indexermodels.ProviderLatestBlockReportsTableName, indexermodels.ProviderLatestBlockReportColumns, true,
			"block_id", "provider, chain_id"),
	)
}
