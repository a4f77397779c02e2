// Package repository implements MySQL persistence for users,
// franchises, the menu catalog and orders. This file defines error
// values shared across repositories. Sentinel errors let handlers
// distinguish failure scenarios without inspecting driver error
// strings: ErrNotFound maps to HTTP 404, ErrStorageUnavailable to
// HTTP 503.
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"time"
)

// ErrNotFound is returned when the requested entity does not exist.
// Handlers should translate this into an HTTP 404 response. Delete
// operations return it for already-absent rows so callers can
// detect double submission.
var ErrNotFound = errors.New("not found")

// ErrStorageUnavailable is returned when the database cannot be
// reached within the operation deadline. Handlers should translate
// this into an HTTP 503 response rather than letting the request
// hang.
var ErrStorageUnavailable = errors.New("storage unavailable")

// storageErr normalizes timeout and cancellation failures from the
// driver into ErrStorageUnavailable. Other errors pass through.
func storageErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrStorageUnavailable
	}
	return err
}

// readAttempts bounds internal retries for idempotent reads. Writes
// are never retried: without an idempotency key a retried insert can
// duplicate an order or double a revenue credit.
const readAttempts = 3

// retryRead runs an idempotent read, retrying transient connection
// faults with a short backoff. The caller's context still bounds the
// whole operation.
func retryRead[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for attempt := 0; attempt < readAttempts; attempt++ {
		out, err = fn()
		if !errors.Is(err, driver.ErrBadConn) {
			return out, err
		}
		if attempt == readAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return out, storageErr(ctx.Err())
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
	}
	return out, err
}
