package holograph

import (
	"sync/atomic"
	"time"
)

// Query kinds reported to MetricsCollector.RecordQuery.
const (
	QueryKindObject    = "object"
	QueryKindSubject   = "subject"
	QueryKindPredicate = "predicate"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// telemetry package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordInsert is called after each insert.
	// err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordQuery is called after each exact query. kind is one of the
	// QueryKind constants and results is the number of matches.
	RecordQuery(kind string, results int, duration time.Duration, err error)

	// RecordResonate is called after each resonance query. cells is the
	// number of grid cells scanned.
	RecordResonate(cells, results int, duration time.Duration, err error)

	// RecordSave is called after each snapshot write with the bytes written.
	RecordSave(bytes int64, duration time.Duration, err error)

	// RecordLoad is called after each snapshot load with the triples restored.
	RecordLoad(triples int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)             {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordResonate(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSave(int64, time.Duration, error)        {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount        atomic.Int64
	InsertErrors       atomic.Int64
	InsertTotalNanos   atomic.Int64
	QueryCount         atomic.Int64
	QueryErrors        atomic.Int64
	QueryResults       atomic.Int64
	ResonateCount      atomic.Int64
	ResonateErrors     atomic.Int64
	ResonateCells      atomic.Int64
	ResonateResults    atomic.Int64
	ResonateTotalNanos atomic.Int64
	SaveCount          atomic.Int64
	SaveErrors         atomic.Int64
	SaveBytes          atomic.Int64
	LoadCount          atomic.Int64
	LoadErrors         atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, results int, _ time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordResonate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResonate(cells, results int, duration time.Duration, err error) {
	b.ResonateCount.Add(1)
	b.ResonateCells.Add(int64(cells))
	b.ResonateResults.Add(int64(results))
	b.ResonateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ResonateErrors.Add(1)
	}
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(bytes int64, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(bytes)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:      b.InsertCount.Load(),
		InsertErrors:     b.InsertErrors.Load(),
		InsertAvgNanos:   avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		QueryCount:       b.QueryCount.Load(),
		QueryErrors:      b.QueryErrors.Load(),
		QueryResults:     b.QueryResults.Load(),
		ResonateCount:    b.ResonateCount.Load(),
		ResonateErrors:   b.ResonateErrors.Load(),
		ResonateCells:    b.ResonateCells.Load(),
		ResonateResults:  b.ResonateResults.Load(),
		ResonateAvgNanos: avg(b.ResonateTotalNanos.Load(), b.ResonateCount.Load()),
		SaveCount:        b.SaveCount.Load(),
		SaveErrors:       b.SaveErrors.Load(),
		SaveBytes:        b.SaveBytes.Load(),
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount      int64
	InsertErrors     int64
	InsertAvgNanos   int64
	QueryCount       int64
	QueryErrors      int64
	QueryResults     int64
	ResonateCount    int64
	ResonateErrors   int64
	ResonateCells    int64
	ResonateResults  int64
	ResonateAvgNanos int64
	SaveCount        int64
	SaveErrors       int64
	SaveBytes        int64
	LoadCount        int64
	LoadErrors       int64
}
