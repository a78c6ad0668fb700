// Package operation waits for remote long-running operations.
//
// A Poller repeatedly asks an injected Querier for the status of an
// operation, at a fixed interval, until the operation reports DONE or a
// deadline computed once at entry has passed. Time is read through an
// injected clock so tests can simulate it instead of sleeping.
//
// The poller only distinguishes "still going", "done" and "out of time".
// Whether a DONE operation actually succeeded is for the caller to decide
// from the returned payload. Query errors are returned as-is; any retrying
// belongs to the Querier implementation.
package operation
