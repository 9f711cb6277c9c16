package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()
	m.ObserveEvent("lava_relay_payment", "parsed")
	m.ObserveEvent("lava_relay_payment", "parsed")
	m.ObserveEvent("lava_relay_payment", "error")
	m.SetLastIndexedHeight(1200)
	m.ObserveBlock(0.2)
	m.ObserveSnapshot(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("lava_relay_payment", "parsed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("lava_relay_payment", "error")))
	assert.Equal(t, 1200.0, testutil.ToFloat64(m.lastIndexedHeight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blocksIndexed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshots.WithLabelValues("error")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RegisterCacheSize(func() float64 { return 4096 })
	m.SetChainHead(99)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "lava_indexer_cache_bytes 4096")
	assert.Contains(t, string(body), "lava_indexer_chain_head_height 99")
}
