// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the engine's core logic: the scheduler, evaluator, and session state
// machine never touch a database, and the service layer reads and
// writes exclusively through the interfaces defined here.
package store
