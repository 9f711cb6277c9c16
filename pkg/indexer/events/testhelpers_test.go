package events

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/entities"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
)

const testHeight = 1200

var testTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// addr builds a well formed lava address from a short tag.
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

func newContext(txHash *string) *Context {
	return &Context{
		Height:   testHeight,
		Time:     testTime,
		TxHash:   txHash,
		Facts:    &indexermodels.Facts{},
		Entities: entities.NewResolver(nil),
	}
}

func dispatch(t *testing.T, evt rpc.Event) *Context {
	t.Helper()
	c := newContext(ptr("TXHASH"))
	NewDispatcher(DefaultConfig(), zaptest.NewLogger(t), nil).Dispatch(c, evt)
	return c
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
