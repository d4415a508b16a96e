package logger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type OperationStats struct {
	Total        int64
	Failed       int64
	AvgLatencyMs float64
}

type opCounters struct {
	total   int64
	failed  int64
	latency time.Duration
}

var (
	metricsMu sync.Mutex
	counters  = make(map[string]*opCounters)
)

func RecordOperation(operation string, err error, duration time.Duration) {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	c, ok := counters[operation]
	if !ok {
		c = &opCounters{}
		counters[operation] = c
	}
	c.total++
	c.latency += duration
	if err != nil {
		c.failed++
	}
}

func GetMetrics() map[string]OperationStats {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	result := make(map[string]OperationStats, len(counters))
	for op, c := range counters {
		stats := OperationStats{Total: c.total, Failed: c.failed}
		if c.total > 0 {
			stats.AvgLatencyMs = float64(c.latency.Milliseconds()) / float64(c.total)
		}
		result[op] = stats
	}
	return result
}

// Summary renders GetMetrics as sorted "op total/failed avg" lines.
func Summary() string {
	stats := GetMetrics()
	ops := make([]string, 0, len(stats))
	for op := range stats {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	var sb strings.Builder
	for _, op := range ops {
		s := stats[op]
		fmt.Fprintf(&sb, "%-24s %d/%d %.1fms\n", op, s.Total, s.Failed, s.AvgLatencyMs)
	}
	return sb.String()
}

func TimedOperation(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	log := FromContext(ctx).With("step", operation)
	log.Debug("starting operation")

	err := fn()
	duration := time.Since(start)

	RecordOperation(operation, err, duration)

	if err != nil {
		log.Error("operation failed", "error", err, "duration", duration)
	} else {
		log.Debug("operation completed", "duration", duration)
	}
	return err
}

func ResetMetrics() {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	counters = make(map[string]*opCounters)
}
