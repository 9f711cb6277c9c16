package lava

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/db/postgres"
)

func TestCreateTable(t *testing.T) {
	query, err := createTable(indexermodels.TxsTableName, indexermodels.TxColumns, false, "block_id")
	require.NoError(t, err)
	assert.Contains(t, query, "CREATE TABLE IF NOT EXISTS txs (")
	assert.Contains(t, query, "hash TEXT PRIMARY KEY,\n\tblock_id BIGINT")
	assert.Contains(t, query, "CREATE INDEX IF NOT EXISTS idx_txs_block_id ON txs(block_id);")
	assert.NotContains(t, query, "BIGSERIAL")
}

func TestCreateTable_SurrogateKeyAndCompositeIndex(t *testing.T) {
	query, err := createTable(indexermodels.ProviderLatestBlockReportsTableName,
		indexermodels.ProviderLatestBlockReportColumns, true, "provider, chain_id")
	require.NoError(t, err)
	assert.True(t, strings.Contains(query, "id BIGSERIAL PRIMARY KEY,"))
	assert.Contains(t, query, "idx_provider_latest_block_reports_provider_chain_id ON provider_latest_block_reports(provider, chain_id)")
}

func TestCreateTable_InvalidColumns(t *testing.T) {
	_, err := createTable("broken", []indexermodels.ColumnDef{{Name: "x"}}, false)
	assert.Error(t, err)
}

func TestUpsertClauses(t *testing.T) {
	query := postgres.InsertSQL(indexermodels.ProvidersTableName, indexermodels.ProviderColumns, 1, providerUpsert)
	assert.True(t, strings.HasPrefix(query, "INSERT INTO providers (address, moniker) VALUES ($1, $2) ON CONFLICT (address)"))
	assert.Contains(t, query, "WHERE EXCLUDED.moniker <> '' OR providers.moniker = ''")

	for _, col := range indexermodels.ProviderStakeColumns {
		if col.Name == "provider" || col.Name == "spec_id" {
			continue
		}
		assert.Contains(t, stakeUpsert, col.Name+" = EXCLUDED."+col.Name, col.Name)
	}
}
