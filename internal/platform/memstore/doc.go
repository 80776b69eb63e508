// Package memstore provides the in-memory implementation of the store
// interfaces. Records are held in a mutex-guarded map and disappear when
// the process exits, which matches the service's contract: job records
// are a short-lived operational ledger, not durable data.
package memstore
