package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryReadRecoversFromBadConn(t *testing.T) {
	calls := 0
	out, err := retryRead(context.Background(), func() (int, error) {
		calls++
		if calls < 2 {
			return 0, driver.ErrBadConn
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, 2, calls)
}

func TestRetryReadGivesUpAfterBoundedAttempts(t *testing.T) {
	calls := 0
	_, err := retryRead(context.Background(), func() (int, error) {
		calls++
		return 0, driver.ErrBadConn
	})
	assert.ErrorIs(t, err, driver.ErrBadConn)
	assert.Equal(t, readAttempts, calls)
}

func TestRetryReadDoesNotRetryDomainErrors(t *testing.T) {
	calls := 0
	_, err := retryRead(context.Background(), func() (int, error) {
		calls++
		return 0, ErrNotFound
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestStorageErrMapsDeadlines(t *testing.T) {
	assert.ErrorIs(t, storageErr(context.DeadlineExceeded), ErrStorageUnavailable)
	assert.ErrorIs(t, storageErr(context.Canceled), ErrStorageUnavailable)

	other := errors.New("syntax error")
	assert.Equal(t, other, storageErr(other))
	assert.NoError(t, storageErr(nil))
}
