package stakes

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/retry"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const frozenSentinel = rpc.Uint64(^uint64(0))

func entry(address, chain, stake string, applied rpc.Uint64) rpc.StakeEntry {
	return rpc.StakeEntry{
		Address:           address,
		Chain:             chain,
		Stake:             rpc.Coin{Denom: "ulava", Amount: stake},
		StakeAppliedBlock: applied,
	}
}

func TestAssemble_Status(t *testing.T) {
	tests := []struct {
		name      string
		regular   []rpc.StakeEntry
		unstaking []rpc.StakeEntry
		want      indexermodels.StakeStatus
		wantStake int64
	}{
		{"active", []rpc.StakeEntry{entry("lava@a", "ETH1", "100", 10)}, nil, indexermodels.StakeActive, 100},
		{"frozen sentinel", []rpc.StakeEntry{entry("lava@a", "ETH1", "100", frozenSentinel)}, nil, indexermodels.StakeFrozen, 100},
		{"unstaking only", nil, []rpc.StakeEntry{entry("lava@a", "ETH1", "50", 10)}, indexermodels.StakeUnstaking, 50},
		{
			"unstaking wins over regular",
			[]rpc.StakeEntry{entry("lava@a", "ETH1", "100", 10)},
			[]rpc.StakeEntry{entry("lava@a", "ETH1", "40", 10)},
			indexermodels.StakeUnstaking, 40,
		},
		{
			"larger stake wins",
			[]rpc.StakeEntry{entry("lava@a", "ETH1", "100", 10), entry("lava@a", "ETH1", "300", 10), entry("lava@a", "ETH1", "200", 10)},
			nil, indexermodels.StakeActive, 300,
		},
		{"unparsable stake", []rpc.StakeEntry{entry("lava@a", "ETH1", "99999999999999999999", 10)}, nil, indexermodels.StakeActive, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Assemble(77, nil, tt.regular, tt.unstaking, nil)
			require.Len(t, snap.Stakes, 1)
			assert.Equal(t, tt.want, snap.Stakes[0].Status)
			assert.Equal(t, tt.wantStake, snap.Stakes[0].Stake)
			assert.Equal(t, int64(77), snap.Stakes[0].BlockID)
		})
	}
}

func TestAssemble_FrozenAppliedHeight(t *testing.T) {
	tests := []struct {
		name        string
		applied     rpc.Uint64
		wantApplied int64
		wantStatus  indexermodels.StakeStatus
	}{
		{"max uint64", frozenSentinel, -1, indexermodels.StakeFrozen},
		{"max int64", rpc.Uint64(math.MaxInt64), -1, indexermodels.StakeFrozen},
		{"max int64 as rendered by the node", rpc.Uint64(9223372036854776000), -1, indexermodels.StakeFrozen},
		{"max int32", rpc.Uint64(math.MaxInt32), -1, indexermodels.StakeFrozen},
		{"regular height", rpc.Uint64(1_500_000), 1_500_000, indexermodels.StakeActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Assemble(1, nil, []rpc.StakeEntry{entry("lava@a", "ETH1", "1", tt.applied)}, nil, nil)
			require.Len(t, snap.Stakes, 1)
			assert.Equal(t, tt.wantApplied, snap.Stakes[0].AppliedHeight)
			assert.Equal(t, tt.wantStatus, snap.Stakes[0].Status)
		})
	}
}

func TestAssemble_UnstakingKeepsStatusWithSentinel(t *testing.T) {
	snap := Assemble(1, nil, nil, []rpc.StakeEntry{entry("lava@a", "ETH1", "1", rpc.Uint64(math.MaxInt64))}, nil)
	require.Len(t, snap.Stakes, 1)
	assert.Equal(t, indexermodels.StakeUnstaking, snap.Stakes[0].Status)
	assert.Equal(t, int64(-1), snap.Stakes[0].AppliedHeight)
}

func TestAssemble_AddonsAndExtensionsUnion(t *testing.T) {
	e := entry("lava@a", "ETH1", "1", 5)
	e.Endpoints = []rpc.Endpoint{
		{Addons: []string{"archive", "debug"}, Extensions: []string{"trace"}},
		{Addons: []string{"debug"}, Extensions: []string{"trace", "ws"}},
	}
	snap := Assemble(1, nil, []rpc.StakeEntry{e}, nil, nil)
	require.Len(t, snap.Stakes, 1)
	assert.Equal(t, "archive,debug", snap.Stakes[0].Addons)
	assert.Equal(t, "trace,ws", snap.Stakes[0].Extensions)
}

func TestAssemble_EntitiesAndFiltering(t *testing.T) {
	named := entry("lava@b", "LAV1", "1", 1)
	named.Description.Moniker = "bee"
	snap := Assemble(9,
		[]rpc.ChainInfo{{ChainID: "ETH1"}, {ChainID: "COS4"}, {ChainID: ""}},
		[]rpc.StakeEntry{
			entry("lava@a", "ETH1", "1", 1),
			entry("lava@b", "ETH1", "1", 1),
			named,
			entry("<nil>", "ETH1", "1", 1),
			entry("lava@c", "", "1", 1),
		},
		nil,
		[]rpc.PlanInfo{{Index: "whale", Description: "big", Price: rpc.Coin{Amount: "1000"}}, {Index: "basic"}},
	)

	assert.Len(t, snap.Stakes, 3)
	assert.Equal(t, []indexermodels.Provider{{Address: "lava@a"}, {Address: "lava@b", Moniker: "bee"}}, snap.Providers)
	assert.Equal(t, []indexermodels.Spec{{ID: "COS4"}, {ID: "ETH1"}, {ID: "LAV1"}}, snap.Specs)

	require.Len(t, snap.Plans, 2)
	assert.Equal(t, "basic", snap.Plans[0].ID)
	assert.Nil(t, snap.Plans[0].Price)
	require.NotNil(t, snap.Plans[1].Price)
	assert.Equal(t, int64(1000), *snap.Plans[1].Price)
}

type fakeClient struct {
	providerCalls atomic.Int32
	providersErr  error
}

func (f *fakeClient) Specs(context.Context) ([]rpc.ChainInfo, error) {
	return []rpc.ChainInfo{{ChainID: "ETH1"}, {ChainID: "COS4"}}, nil
}

func (f *fakeClient) Providers(_ context.Context, chainID string) ([]rpc.StakeEntry, error) {
	f.providerCalls.Add(1)
	if f.providersErr != nil {
		return nil, f.providersErr
	}
	return []rpc.StakeEntry{entry("lava@p", chainID, "10", 1)}, nil
}

func (f *fakeClient) UnstakingEntries(context.Context) ([]rpc.StakeEntry, error) {
	return []rpc.StakeEntry{entry("lava@u", "ETH1", "3", 1)}, nil
}

func (f *fakeClient) Plans(context.Context) ([]rpc.PlanInfo, error) {
	return nil, &rpc.HTTPError{Status: 404, Body: "not found"}
}

func fastRetry() retry.Config {
	return retry.Config{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func TestBuilder_Build(t *testing.T) {
	client := &fakeClient{}
	b := NewBuilder(client, 2, zaptest.NewLogger(t)).WithRetry(fastRetry())
	t.Cleanup(b.Close)

	snap, err := b.Build(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, int32(2), client.providerCalls.Load())
	assert.Len(t, snap.Stakes, 3)
	assert.Empty(t, snap.Plans)
	for _, s := range snap.Stakes {
		assert.Equal(t, int64(500), s.BlockID)
	}
}

func TestBuilder_BuildProviderFailure(t *testing.T) {
	client := &fakeClient{providersErr: errors.New("unavailable")}
	b := NewBuilder(client, 2, zaptest.NewLogger(t)).WithRetry(fastRetry())
	t.Cleanup(b.Close)

	_, err := b.Build(context.Background(), 500)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}
