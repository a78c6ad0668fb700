package operation

import (
	"context"
	"fmt"
)

// Status is the lifecycle state reported for an operation.
type Status string

// Known statuses. DONE is the only terminal one.
const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
)

// Terminal reports whether no further state change will happen.
func (s Status) Terminal() bool {
	return s == StatusDone
}

// Handle identifies a remote operation.
type Handle struct {
	Project string
	ID      string
}

func (h Handle) String() string {
	return fmt.Sprintf("%s/%s", h.Project, h.ID)
}

// Operation is one observation of a remote operation.
type Operation struct {
	Handle Handle
	Status Status
	// Payload is the raw object returned by the remote API.
	Payload any
}

// Querier fetches the current state of an operation.
type Querier interface {
	Get(ctx context.Context, h Handle) (*Operation, error)
}

// QuerierFunc adapts a function to the Querier interface.
type QuerierFunc func(ctx context.Context, h Handle) (*Operation, error)

// Get calls f.
func (f QuerierFunc) Get(ctx context.Context, h Handle) (*Operation, error) {
	return f(ctx, h)
}
