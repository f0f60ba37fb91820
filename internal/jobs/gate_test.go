package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateRunsAndPropagatesResult(t *testing.T) {
	gate := NewGate(2)

	err := gate.Do(context.Background(), CallIndex, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)

	wantErr := errors.New("upstream down")
	err = gate.Do(context.Background(), CallIndex, func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestGateBoundsConcurrency(t *testing.T) {
	gate := NewGate(2)

	var inFlight, peak int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = gate.Do(context.Background(), CallIndex, func(ctx context.Context) error {
				n := atomic.AddInt64(&inFlight, 1)
				for {
					p := atomic.LoadInt64(&peak)
					if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt64(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestGateAppliesClassDeadline(t *testing.T) {
	gate := NewGate(1)
	gate.SetTimeout(CallWeb, 10*time.Millisecond)

	err := gate.Do(context.Background(), CallWeb, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGateAcquireRespectsCallerContext(t *testing.T) {
	gate := NewGate(1)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = gate.Do(context.Background(), CallCompletion, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := gate.Do(ctx, CallCompletion, func(ctx context.Context) error {
		t.Fatal("must not run while the slot is held")
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
