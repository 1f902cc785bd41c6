package circuit_breaker_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/libertine-io/library-backend/pkg/circuit_breaker"
)

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()

	ok := func() error { return nil }
	boom := func() error { return errors.New("service error") }

	const (
		recordLength     = 10
		timeout          = 50 * time.Millisecond
		percentile       = 0.5
		recoveryRequests = 2
	)

	cb := circuit_breaker.New(recordLength, timeout, percentile, recoveryRequests)

	for i := 0; i < recordLength; i++ {
		require.NoError(t, cb.Call(ok))
	}

	// trip the breaker: half the window fails
	for i := 0; i < recordLength/2; i++ {
		require.Error(t, cb.Call(boom))
	}

	require.ErrorIs(t, cb.Call(ok), circuit_breaker.ErrOpenCB)

	// after the timeout a half-open probe goes through
	time.Sleep(timeout + 20*time.Millisecond)
	require.NoError(t, cb.Call(ok))

	// a failing probe reopens immediately
	require.Error(t, cb.Call(boom))
	require.ErrorIs(t, cb.Call(ok), circuit_breaker.ErrOpenCB)

	// enough consecutive successes close it again
	time.Sleep(timeout + 20*time.Millisecond)
	for i := 0; i < recoveryRequests+1; i++ {
		require.NoError(t, cb.Call(ok))
	}
	for i := 0; i < recordLength; i++ {
		require.NoError(t, cb.Call(ok))
	}
}

func Test_circuitBreaker_Reset(t *testing.T) {
	t.Parallel()

	boom := func() error { return errors.New("service error") }

	cb := circuit_breaker.New(4, time.Minute, 0.5, 1)
	for i := 0; i < 2; i++ {
		require.Error(t, cb.Call(boom))
	}
	require.ErrorIs(t, cb.Call(func() error { return nil }), circuit_breaker.ErrOpenCB)

	cb.Reset()
	require.NoError(t, cb.Call(func() error { return nil }))
}
