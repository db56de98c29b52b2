package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		env := newTestEnv(t, false)
		resp := env.do(t, request{method: http.MethodGet, path: "/health/live"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("ready without redis", func(t *testing.T) {
		env := newTestEnv(t, false)
		resp := env.do(t, request{method: http.MethodGet, path: "/health/ready"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body readiness
		decode(t, resp, &body)
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "disabled", body.Checks["redis"])
	})

	t.Run("redis down", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.redis.Close()
		resp := env.do(t, request{method: http.MethodGet, path: "/health/ready"})
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body readiness
		decode(t, resp, &body)
		assert.Equal(t, "unhealthy", body.Checks["redis"])
		assert.Equal(t, "healthy", body.Checks["database"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, request{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
