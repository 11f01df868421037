package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsResponse reports process-level runtime counters. Domain counters
// (per-language requests, RTF, fallbacks) live under /api/v1/stats; this
// endpoint is for the process itself.
type MetricsResponse struct {
	Timestamp  string        `json:"timestamp"`
	Goroutines int           `json:"goroutines"`
	CPUs       int           `json:"cpus"`
	Memory     MemoryMetrics `json:"memory"`
}

// MemoryMetrics summarizes the Go heap.
type MemoryMetrics struct {
	AllocMB      uint64 `json:"alloc_mb"`
	TotalAllocMB uint64 `json:"total_alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	HeapObjects  uint64 `json:"heap_objects"`
	GCRuns       uint32 `json:"gc_runs"`
	PauseTotalMS uint64 `json:"pause_total_ms"`
}

// Metrics returns a handler reporting runtime memory and goroutine counters.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		c.JSON(http.StatusOK, MetricsResponse{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Goroutines: runtime.NumGoroutine(),
			CPUs:       runtime.NumCPU(),
			Memory: MemoryMetrics{
				AllocMB:      m.Alloc >> 20,
				TotalAllocMB: m.TotalAlloc >> 20,
				SysMB:        m.Sys >> 20,
				HeapObjects:  m.HeapObjects,
				GCRuns:       m.NumGC,
				PauseTotalMS: m.PauseTotalNs / uint64(time.Millisecond),
			},
		})
	}
}
