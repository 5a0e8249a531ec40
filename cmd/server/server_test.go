package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmd-agent/pkg/config"
	"github.com/nmd-agent/pkg/metrics"
	"github.com/nmd-agent/pkg/sampler"
)

func newTestServer(state sampler.State) *Server {
	registry, factory := metrics.InitPromRegistry(false)
	factory.LoopMetrics().Persisted.Add(3)
	cfg := config.ServerConfig{Enable: true, Addr: "127.0.0.1:0"}
	return NewHTTPServer(cfg, "7", zap.NewNop(), registry, func() sampler.State { return state })
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthReflectsLoopState(t *testing.T) {
	tests := []struct {
		state  sampler.State
		status int
	}{
		{sampler.StateConnecting, http.StatusServiceUnavailable},
		{sampler.StateSampling, http.StatusOK},
		{sampler.StatePersisting, http.StatusOK},
		{sampler.StateStopped, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.state.String(), func(t *testing.T) {
			rec := get(t, newTestServer(tc.state).Handler(), "/health")
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.state.String(), body.State)
			assert.Equal(t, "7", body.ComponentID)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(sampler.StateSampling).Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nmd_measurements_persisted_total 3")
}

func TestIndexAndUnknownPaths(t *testing.T) {
	h := newTestServer(sampler.StateSampling).Handler()

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/metrics")
	assert.Contains(t, rec.Body.String(), "<code>7</code>")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}

func TestStartAndShutdown(t *testing.T) {
	srv := newTestServer(sampler.StateSampling)
	require.NoError(t, srv.Start())
	assert.ElementsMatch(t, []string{"/", "/metrics", "/health"}, srv.mux.Routes())

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	_, err = http.Get("http://" + srv.Addr() + "/health")
	assert.Error(t, err)
}

func TestStartFailsOnBusyAddress(t *testing.T) {
	first := newTestServer(sampler.StateSampling)
	require.NoError(t, first.Start())
	defer func() { _ = first.Shutdown(context.Background()) }()

	registry, _ := metrics.InitPromRegistry(false)
	second := NewHTTPServer(config.ServerConfig{Enable: true, Addr: first.Addr()}, "7", zap.NewNop(), registry,
		func() sampler.State { return sampler.StateSampling })
	assert.Error(t, second.Start())
}
