package operation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned when the polling interval is not positive.
var ErrInvalidInterval = errors.New("polling interval must be positive")

// TimeoutError is returned when an operation is still not DONE once the
// deadline has passed.
type TimeoutError struct {
	Handle  Handle
	Elapsed time.Duration
	// Last is the final observation before giving up.
	Last *Operation
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for operation %s to complete after %s", e.Handle, e.Elapsed)
}
