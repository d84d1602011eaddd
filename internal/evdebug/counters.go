package evdebug

import "sync/atomic"

// FlowCounters track how events move through a manager and its target.
type FlowCounters struct {
	Emitted   atomic.Uint64 // stored and published
	Pushed    atomic.Uint64 // stored without publishing, e.g. snapshot replay
	Evicted   atomic.Uint64 // dropped from a full buffer
	Delivered atomic.Uint64 // handler invocations, counting each subscriber
}

// Values returns the current values of the counters.
func (fc *FlowCounters) Values() (emitted, pushed, evicted, delivered uint64) {
	var (
		e = fc.Emitted.Load()
		p = fc.Pushed.Load()
		v = fc.Evicted.Load()
		d = fc.Delivered.Load()
	)
	return e, p, v, d
}

// EvictedPercent returns the percent (0..100) of stored events that have been
// evicted.
func (fc *FlowCounters) EvictedPercent() float64 {
	var (
		stored  = fc.Emitted.Load() + fc.Pushed.Load()
		evicted = fc.Evicted.Load()
	)
	if stored <= 0 {
		return 0.0
	}
	return 100 * float64(evicted) / float64(stored)
}

// EventFlow tracks event flow process-wide, across every manager.
var EventFlow FlowCounters
