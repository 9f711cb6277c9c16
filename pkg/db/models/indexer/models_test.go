package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsMatchRowValues(t *testing.T) {
	tests := []struct {
		name    string
		columns []ColumnDef
		row     Row
	}{
		{"blocks", BlockColumns, Block{}},
		{"providers", ProviderColumns, Provider{}},
		{"specs", SpecColumns, Spec{}},
		{"consumers", ConsumerColumns, Consumer{}},
		{"txs", TxColumns, Tx{}},
		{"plans", PlanColumns, Plan{}},
		{"events", EventColumns, &Event{}},
		{"relay_payments", RelayPaymentColumns, &RelayPayment{}},
		{"conflict_responses", ConflictResponseColumns, &ConflictResponse{}},
		{"conflict_votes", ConflictVoteColumns, &ConflictVote{}},
		{"subscription_buys", SubscriptionBuyColumns, &SubscriptionBuy{}},
		{"provider_reported", ProviderReportedColumns, &ProviderReported{}},
		{"provider_latest_block_reports", ProviderLatestBlockReportColumns, &ProviderLatestBlockReport{}},
		{"provider_stakes", ProviderStakeColumns, &ProviderStake{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, ValidateColumns(tt.columns))
			assert.Len(t, tt.row.Values(), len(tt.columns))
		})
	}
}

func TestColumnsToSchemaSQL(t *testing.T) {
	sql := ColumnsToSchemaSQL([]ColumnDef{
		{Name: "address", Type: "TEXT PRIMARY KEY"},
		{Name: "moniker", Type: "TEXT"},
	})
	assert.Equal(t, "address TEXT PRIMARY KEY,\n\tmoniker TEXT", sql)
	assert.Equal(t, []string{"address", "moniker"}, ColumnsToNameList(ProviderColumns))
}

func TestColumnDefValidate(t *testing.T) {
	assert.Error(t, ColumnDef{Type: "TEXT"}.Validate())
	assert.Error(t, ColumnDef{Name: "x"}.Validate())
	assert.Error(t, ColumnDef{Name: "chainID", Type: "TEXT"}.Validate())
	assert.NoError(t, ColumnDef{Name: "x", Type: "TEXT"}.Validate())
	assert.Error(t, ValidateColumns([]ColumnDef{{Name: "a", Type: "TEXT"}, {Name: "a", Type: "INT"}}))
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "ErrorEvent", EventError.String())
	assert.Equal(t, "StakeNewProvider", EventStakeNewProvider.String())
	assert.Equal(t, "EventType(77)", EventType(77).String())
	assert.Equal(t, "frozen", StakeFrozen.String())
}
