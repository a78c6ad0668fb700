package operation

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/argoflow/internal/ctxlog"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
)

// Default polling parameters.
const (
	DefaultTimeout  = time.Hour
	DefaultInterval = 5 * time.Second
)

// Poller waits for operations to reach a terminal status.
type Poller struct {
	querier Querier
	clock   clock.Clock
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock, typically with a fake one in tests.
func WithClock(c clock.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// NewPoller creates a poller that reads operation status through q.
func NewPoller(q Querier, opts ...Option) *Poller {
	p := &Poller{querier: q, clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Await polls h every interval until it is DONE or timeout has elapsed since
// the call. The overall wait is bounded by timeout plus one interval.
func (p *Poller) Await(ctx context.Context, h Handle, timeout, interval time.Duration) (*Operation, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	logger := ctxlog.FromContext(ctx).With("operation", h.String())

	start := p.clock.Now()
	deadline := start.Add(timeout)
	logger.Debug("Waiting for operation.", "timeout", timeout, "interval", interval)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("waiting for operation %s: %w", h, err)
		}

		op, err := p.querier.Get(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("failed to get status of operation %s: %w", h, err)
		}
		if op == nil {
			return nil, fmt.Errorf("no status returned for operation %s", h)
		}
		logger.Debug("Polled operation.", "attempt", attempt, "status", op.Status)

		if op.Status.Terminal() {
			logger.Info("Operation finished.", "elapsed", p.clock.Since(start), "attempts", attempt)
			return op, nil
		}

		now := p.clock.Now()
		if now.After(deadline) {
			elapsed := now.Sub(start)
			logger.Warn("Gave up waiting for operation.", "elapsed", elapsed, "status", op.Status)
			return nil, &TimeoutError{Handle: h, Elapsed: elapsed, Last: op}
		}

		p.clock.Sleep(interval)
	}
}

// AwaitAll waits for every handle concurrently. Each wait has its own
// deadline. The first failure is returned; results are in handle order.
func (p *Poller) AwaitAll(ctx context.Context, handles []Handle, timeout, interval time.Duration) ([]*Operation, error) {
	results := make([]*Operation, len(handles))
	g, gctx := errgroup.WithContext(ctx)
	for i, h := range handles {
		g.Go(func() error {
			op, err := p.Await(gctx, h, timeout, interval)
			if err != nil {
				return err
			}
			results[i] = op
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
