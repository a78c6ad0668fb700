package deploymentmanager

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/specialistvlad/argoflow/internal/ctxlog"
	"github.com/specialistvlad/argoflow/internal/operation"
	dm "google.golang.org/api/deploymentmanager/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultMaxRetries bounds retries of transient status-query failures.
const DefaultMaxRetries = 5

// Config configures a Client.
type Config struct {
	// CredentialsFile is a service account key. Empty uses Application
	// Default Credentials.
	CredentialsFile string
	// Endpoint overrides the API endpoint and disables authentication. It is
	// meant for emulators and tests.
	Endpoint   string
	HTTPClient *http.Client
	MaxRetries uint64
	// BackOff builds the retry schedule for one status query.
	BackOff func() backoff.BackOff
}

// Client talks to Deployment Manager.
type Client struct {
	svc        *dm.Service
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

var _ operation.Querier = (*Client)(nil)

// NewClient creates a Deployment Manager client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	svc, err := dm.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Deployment Manager client: %w", err)
	}

	c := &Client{svc: svc, maxRetries: cfg.MaxRetries, newBackOff: cfg.BackOff}
	if c.maxRetries == 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.newBackOff == nil {
		c.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = time.Minute
			return b
		}
	}
	return c, nil
}

// Get fetches the current state of the operation. Transient API failures
// are retried with backoff before giving up.
func (c *Client) Get(ctx context.Context, h operation.Handle) (*operation.Operation, error) {
	logger := ctxlog.FromContext(ctx)

	var op *dm.Operation
	fetch := func() error {
		var err error
		op, err = c.svc.Operations.Get(h.Project, h.ID).Context(ctx).Do()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return backoff.Permanent(err)
		}
		logger.Debug("Transient error fetching operation, retrying.", "operation", h.String(), "error", err)
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(fetch, b); err != nil {
		return nil, err
	}
	return toOperation(h, op), nil
}

func toOperation(h operation.Handle, op *dm.Operation) *operation.Operation {
	return &operation.Operation{
		Handle:  h,
		Status:  operation.Status(strings.ToUpper(op.Status)),
		Payload: op,
	}
}

// OperationError returns the failure recorded on a finished operation, or
// nil if it succeeded. Operations not produced by this package yield nil.
func OperationError(op *operation.Operation) error {
	if op == nil {
		return nil
	}
	raw, ok := op.Payload.(*dm.Operation)
	if !ok || raw == nil {
		return nil
	}
	if raw.Error != nil && len(raw.Error.Errors) > 0 {
		msgs := make([]string, 0, len(raw.Error.Errors))
		for _, e := range raw.Error.Errors {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Code, e.Message))
		}
		return fmt.Errorf("operation %s failed: %s", op.Handle, strings.Join(msgs, "; "))
	}
	if raw.HttpErrorStatusCode >= http.StatusBadRequest {
		return fmt.Errorf("operation %s failed with HTTP %d: %s", op.Handle, raw.HttpErrorStatusCode, raw.HttpErrorMessage)
	}
	return nil
}

func isTransient(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
}

func isConflict(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusConflict
}
