// Package workpool runs short-lived analysis jobs on a fixed set of worker
// goroutines and gives callers a single-value completion channel per job.
//
// # Abandon, don't cancel
//
// Jobs are never preempted. When a caller stops waiting (deadline passed,
// request superseded) the job keeps running on its worker until it returns;
// its value is written into a one-slot buffered channel that nobody reads
// and is collected with it. Callers bound the latency they observe, not the
// total work done by the pool.
//
// # Panics
//
// A panicking job is recovered on its worker, logged, and its channel is
// closed without a value. Receivers see that as ErrNoResult, which handlers
// treat the same as a timeout.
package workpool
