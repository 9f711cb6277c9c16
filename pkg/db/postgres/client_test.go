package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPoolConfigForComponent(t *testing.T) {
	tests := []struct {
		component string
		wantName  string
		wantMax   int32
	}{
		{"indexer", "indexer", 10},
		{"backfill", "backfill", 40},
		{"", "unknown", 20},
	}
	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			cfg := GetPoolConfigForComponent(tt.component)
			assert.Equal(t, tt.wantName, cfg.Component)
			assert.Equal(t, tt.wantMax, cfg.MaxConns)
			assert.LessOrEqual(t, cfg.MinConns, cfg.MaxConns)
		})
	}
}

func TestParseURL(t *testing.T) {
	cfg, err := ParseURL("postgres://jsinfo:secret@db:5433/lava?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "lava", cfg.ConnConfig.Database)
	assert.Equal(t, uint16(5433), cfg.ConnConfig.Port)

	_, err = ParseURL("postgres://%zz")
	assert.Error(t, err)
}
