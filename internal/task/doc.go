// Package task runs background work on a bounded in-memory queue with
// a worker pool and per-task retry. The practice service uses it to
// persist session progress without blocking command handling: a failed
// write is retried with backoff until it succeeds, exhausts its
// attempts, or reports a permanent failure.
package task
