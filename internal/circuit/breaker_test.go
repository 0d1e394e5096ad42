package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

func unavailable() error {
	return errors.New(errors.ErrCodeStoreUnavailable, "store down")
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New(Config{FailureThreshold: 3, CoolDown: time.Minute})

	for i := 0; i < 3; i++ {
		_ = b.Do(unavailable)
	}
	assert.Equal(t, StateOpen, b.State())

	// While open, the store is never touched.
	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.False(t, called)
	assert.Equal(t, errors.ErrCodeStoreUnavailable, errors.CodeOf(err))
}

func TestBreakerIgnoresBenignErrors(t *testing.T) {
	b := New(Config{FailureThreshold: 2, CoolDown: time.Minute})

	for i := 0; i < 10; i++ {
		_ = b.Do(func() error {
			return errors.New(errors.ErrCodeObjectNotFound, "missing")
		})
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := New(Config{FailureThreshold: 3, CoolDown: time.Minute})

	_ = b.Do(unavailable)
	_ = b.Do(unavailable)
	require.NoError(t, b.Do(func() error { return nil }))
	_ = b.Do(unavailable)
	_ = b.Do(unavailable)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerRecoversThroughProbe(t *testing.T) {
	var transitions []State
	b := New(Config{
		FailureThreshold: 1,
		CoolDown:         10 * time.Millisecond,
		OnStateChange:    func(_, to State) { transitions = append(transitions, to) },
	})
	base := time.Now()
	b.now = func() time.Time { return base }

	_ = b.Do(unavailable)
	assert.Equal(t, StateOpen, b.State())

	// After the cool-down a single probe runs; success closes the circuit.
	b.now = func() time.Time { return base.Add(20 * time.Millisecond) }
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
	assert.Contains(t, transitions, StateHalfOpen)
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	b := New(Config{FailureThreshold: 1, CoolDown: 10 * time.Millisecond})
	base := time.Now()
	b.now = func() time.Time { return base }

	_ = b.Do(unavailable)
	b.now = func() time.Time { return base.Add(20 * time.Millisecond) }
	_ = b.Do(unavailable)
	assert.Equal(t, StateOpen, b.State())
}
