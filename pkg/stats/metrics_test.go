package stats_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-otc/pkg/stats"
)

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := stats.NewHTTPMetrics(reg)
	require.NoError(t, err)

	metrics.Observe("GET", "/v1/offers", 200, 10*time.Millisecond)
	metrics.Observe("GET", "/v1/offers", 200, 20*time.Millisecond)
	metrics.Observe("POST", "/v1/offers", 400, time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "otc_http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// Registering twice fails.
	_, err = stats.NewHTTPMetrics(reg)
	require.Error(t, err)
}

func TestDumpMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := stats.NewHTTPMetrics(reg)
	require.NoError(t, err)
	metrics.Observe("GET", "/v1/info", 200, time.Millisecond)

	path := filepath.Join(t.TempDir(), "stats")
	require.NoError(t, stats.DumpMetrics(reg, path))

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(buf), "otc_http_requests_total")
}
