// Package job implements the asynchronous conversion subsystem: a
// bounded worker pool, a per-job supervisor enforcing a hard execution
// deadline, and retention-based reclamation of finished records.
//
// A submission registers a queued record and enters the pool's queue.
// When a worker picks the work up, the job's supervisor marks the record
// running and arms the deadline; the first of completion, failure or
// deadline expiry wins and writes the record's single terminal
// transition. Cancellation is advisory: work that never checks its
// context keeps its slot busy until it returns, bounded by the worker
// count.
package job
