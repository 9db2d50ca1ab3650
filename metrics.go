package georoute

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordClosestNode is called after each closest routable node lookup.
	// found reports whether a position was returned.
	RecordClosestNode(duration time.Duration, found bool, err error)

	// RecordRoute is called after each route calculation.
	RecordRoute(crossDatabase bool, duration time.Duration, found bool, err error)

	// RecordMatch is called after each cross-database match run with the
	// number of verified crossing nodes.
	RecordMatch(crossings int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordClosestNode(time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordRoute(bool, time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordMatch(int, time.Duration, error)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	ClosestCount    atomic.Int64
	ClosestMisses   atomic.Int64
	ClosestErrors   atomic.Int64
	RouteCount      atomic.Int64
	CrossRouteCount atomic.Int64
	RouteNotFound   atomic.Int64
	RouteErrors     atomic.Int64
	RouteTotalNanos atomic.Int64
	MatchCount      atomic.Int64
	MatchErrors     atomic.Int64
	MatchCrossings  atomic.Int64
	MatchTotalNanos atomic.Int64
}

// RecordClosestNode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClosestNode(_ time.Duration, found bool, err error) {
	b.ClosestCount.Add(1)
	switch {
	case err != nil:
		b.ClosestErrors.Add(1)
	case !found:
		b.ClosestMisses.Add(1)
	}
}

// RecordRoute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRoute(crossDatabase bool, duration time.Duration, found bool, err error) {
	b.RouteCount.Add(1)
	b.RouteTotalNanos.Add(duration.Nanoseconds())
	if crossDatabase {
		b.CrossRouteCount.Add(1)
	}
	switch {
	case err != nil:
		b.RouteErrors.Add(1)
	case !found:
		b.RouteNotFound.Add(1)
	}
}

// RecordMatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMatch(crossings int, duration time.Duration, err error) {
	b.MatchCount.Add(1)
	b.MatchTotalNanos.Add(duration.Nanoseconds())
	b.MatchCrossings.Add(int64(crossings))
	if err != nil {
		b.MatchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ClosestCount:    b.ClosestCount.Load(),
		ClosestMisses:   b.ClosestMisses.Load(),
		ClosestErrors:   b.ClosestErrors.Load(),
		RouteCount:      b.RouteCount.Load(),
		CrossRouteCount: b.CrossRouteCount.Load(),
		RouteNotFound:   b.RouteNotFound.Load(),
		RouteErrors:     b.RouteErrors.Load(),
		RouteAvgNanos:   avg(b.RouteTotalNanos.Load(), b.RouteCount.Load()),
		MatchCount:      b.MatchCount.Load(),
		MatchErrors:     b.MatchErrors.Load(),
		MatchCrossings:  b.MatchCrossings.Load(),
		MatchAvgNanos:   avg(b.MatchTotalNanos.Load(), b.MatchCount.Load()),
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
	ClosestCount    int64
	ClosestMisses   int64
	ClosestErrors   int64
	RouteCount      int64
	CrossRouteCount int64
	RouteNotFound   int64
	RouteErrors     int64
	RouteAvgNanos   int64
	MatchCount      int64
	MatchErrors     int64
	MatchCrossings  int64
	MatchAvgNanos   int64
}
