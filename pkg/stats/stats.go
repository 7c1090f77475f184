package stats

import (
	"bufio"
	"context"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const gigabyte = 1 << 30

// EnableMemoryStatistics starts a goroutine that periodically logs memory
// usage and number of goroutines of the process. Once the context is done,
// the default prometheus metrics are appended to the file at dumpPath, if
// not empty.
func EnableMemoryStatistics(
	ctx context.Context, interval time.Duration, dumpPath string,
) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				LogRuntimeStatistics()
			case <-ctx.Done():
				if dumpPath == "" {
					return
				}
				if err := DumpMetrics(prometheus.DefaultGatherer, dumpPath); err != nil {
					log.WithError(err).Warn("failed to dump prometheus metrics")
				}
				return
			}
		}
	}()
}

// LogRuntimeStatistics logs memory statistics and number of goroutines.
func LogRuntimeStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.WithFields(log.Fields{
		"total_alloc_gb": float64(memStats.TotalAlloc) / gigabyte,
		"heap_alloc_gb":  float64(memStats.HeapAlloc) / gigabyte,
		"mallocs":        memStats.Mallocs,
		"frees":          memStats.Frees,
		"goroutines":     runtime.NumGoroutine(),
	}).Info("runtime statistics")
}

// DumpMetrics appends the metrics collected by the gatherer to the file at
// path.
func DumpMetrics(gatherer prometheus.Gatherer, path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := bufio.NewWriter(file)

	families, err := gatherer.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := writer.WriteString(family.String() + "\n"); err != nil {
			return err
		}
	}

	return writer.Flush()
}
