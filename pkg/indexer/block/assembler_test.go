package block

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/entities"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/events"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var blockTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type fakeSource struct {
	txs    []rpc.TxResult
	events []rpc.Event
	err    error
}

func (f *fakeSource) GetBlock(_ context.Context, height int64) (*rpc.ResultBlock, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.ResultBlock{Block: &rpc.Block{Header: &rpc.BlockHeader{Height: rpc.Int64(height), Time: blockTime}}}, nil
}

func (f *fakeSource) GetTxs(context.Context, int64, *rpc.ResultBlock) ([]rpc.TxResult, error) {
	return f.txs, nil
}

func (f *fakeSource) GetBlockResultEvents(context.Context, int64) ([]rpc.Event, error) {
	return f.events, nil
}

func addr(tag string) string {
	return "lava@" + tag + strings.Repeat("0", 39-len(tag))
}

func event(typ string, kv ...string) rpc.Event {
	evt := rpc.Event{Type: typ}
	for i := 0; i+1 < len(kv); i += 2 {
		evt.Attributes = append(evt.Attributes, rpc.EventAttribute{Key: kv[i], Value: kv[i+1]})
	}
	return evt
}

func relayPayment(provider string) rpc.Event {
	return event("lava_relay_payment",
		"provider", provider, "chainID", "ETH1", "CU", "20", "BasePay", "150000ulava",
		"relayNumber", "5", "client", "lava@consumer")
}

func newAssembler(t *testing.T, src Source) *Assembler {
	d := events.NewDispatcher(events.DefaultConfig(), zaptest.NewLogger(t), nil)
	return NewAssembler(src, d, zaptest.NewLogger(t))
}

func TestAssemble_SkipsFailedTransactions(t *testing.T) {
	tests := []struct {
		name      string
		code      uint32
		wantFacts int
		wantTxs   int
		wantFail  int
	}{
		{"successful tx", 0, 1, 1, 0},
		{"failed tx", 5, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{txs: []rpc.TxResult{{
				Hash:     "AA11",
				TxResult: rpc.ExecTxResult{Code: tt.code, Events: []rpc.Event{relayPayment(addr("p1"))}},
			}}}
			out, err := newAssembler(t, src).Assemble(context.Background(), 100)
			require.NoError(t, err)

			assert.Equal(t, tt.wantFacts, out.Facts.Len())
			assert.Len(t, out.Entities.Txs, tt.wantTxs)
			assert.Equal(t, tt.wantFail, out.FailedTxs)
		})
	}
}

func TestAssemble_TxAndBlockEvents(t *testing.T) {
	src := &fakeSource{
		txs: []rpc.TxResult{
			{Hash: "AA11", TxResult: rpc.ExecTxResult{Events: []rpc.Event{relayPayment(addr("p1")), event("transfer", "amount", "1ulava")}}},
			{Hash: "BB22", TxResult: rpc.ExecTxResult{Code: 11, Events: []rpc.Event{relayPayment(addr("p2"))}}},
		},
		events: []rpc.Event{
			event("lava_freeze_provider", "providerAddress", addr("p3"), "chainIDs", "ETH1", "freezeReason", "maintenance"),
		},
	}
	out, err := newAssembler(t, src).Assemble(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, indexermodels.Block{Height: 100, Datetime: blockTime}, out.Block)
	assert.Equal(t, 2, out.TxCount)
	assert.Equal(t, 1, out.FailedTxs)

	require.Len(t, out.Facts.RelayPayments, 1)
	rp := out.Facts.RelayPayments[0]
	require.NotNil(t, rp.Tx)
	assert.Equal(t, "AA11", *rp.Tx)

	require.Len(t, out.Facts.Events, 1)
	assert.Equal(t, indexermodels.EventFreezeProvider, out.Facts.Events[0].EventType)
	assert.Nil(t, out.Facts.Events[0].Tx)

	var providers []string
	for _, p := range out.Entities.Providers {
		providers = append(providers, p.Address)
	}
	assert.Equal(t, []string{addr("p1"), addr("p3")}, providers)
	assert.Equal(t, []indexermodels.Tx{{Hash: "AA11", BlockID: 100}}, out.Entities.Txs)
	assert.Equal(t, []indexermodels.Consumer{{Address: "lava@consumer"}}, out.Entities.Consumers)
	assert.Equal(t, []indexermodels.Spec{{ID: "ETH1"}}, out.Entities.Specs)
}

func TestAssemble_OverlaySkipsKnownEntities(t *testing.T) {
	src := &fakeSource{txs: []rpc.TxResult{{
		Hash:     "AA11",
		TxResult: rpc.ExecTxResult{Events: []rpc.Event{relayPayment(addr("p1"))}},
	}}}
	a := newAssembler(t, src)
	a.SetOverlay(entities.NewSnapshot(
		[]indexermodels.Provider{{Address: addr("p1"), Moniker: "known"}},
		[]indexermodels.Spec{{ID: "ETH1"}},
		nil,
	))

	out, err := a.Assemble(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, out.Entities.Providers)
	assert.Empty(t, out.Entities.Specs)
	assert.Len(t, out.Facts.RelayPayments, 1)
}

func TestAssemble_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := newAssembler(t, &fakeSource{err: boom}).Assemble(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}
