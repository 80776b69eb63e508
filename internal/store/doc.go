// Package store defines interfaces for job record persistence.
// These interfaces abstract the underlying storage mechanism from the
// application's core logic, allowing lifecycle rules to remain
// independent of where and how records are kept.
package store
