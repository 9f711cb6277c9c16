package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_BreakerSkipsFailingEndpoint(t *testing.T) {
	var badCalls atomic.Int32
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		badCalls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer good.Close()

	c := NewHTTPWithOpts(Opts{
		Endpoints:       []string{bad.URL, good.URL},
		RPS:             1000,
		Burst:           1000,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	})
	for i := 0; i < 5; i++ {
		var out struct{ OK bool }
		require.NoError(t, c.doJSON(context.Background(), http.MethodGet, "/", nil, &out))
		assert.True(t, out.OK)
	}
	assert.Equal(t, int32(2), badCalls.Load())
}

func TestHTTPClient_ClientErrorStopsWalk(t *testing.T) {
	var secondCalls atomic.Int32
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad"}`))
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		secondCalls.Add(1)
	}))
	defer second.Close()

	c := NewHTTPWithOpts(Opts{Endpoints: []string{first.URL, second.URL}})
	err := c.doJSON(context.Background(), http.MethodGet, "/", nil, &struct{}{})

	require.Error(t, err)
	assert.True(t, IsClientError(err))
	assert.False(t, IsNotFound(err))
	assert.Zero(t, secondCalls.Load())
}

func TestHTTPClient_NoEndpoints(t *testing.T) {
	c := NewHTTPWithOpts(Opts{})
	assert.Error(t, c.doJSON(context.Background(), http.MethodGet, "/", nil, &struct{}{}))
}
