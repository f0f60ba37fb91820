// Package jobs coordinates calls to external collaborators. The gate bounds
// how many outbound calls run at once and applies a per-class deadline, so a
// slow upstream cannot pile up goroutines or hang a request forever.
package jobs

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// CallClass identifies a kind of outbound call for deadline purposes.
type CallClass string

const (
	CallIndex      CallClass = "index"
	CallCompletion CallClass = "completion"
	CallWeb        CallClass = "web"
)

var defaultTimeouts = map[CallClass]time.Duration{
	CallIndex:      5 * time.Second,
	CallCompletion: 60 * time.Second,
	CallWeb:        15 * time.Second,
}

// Gate bounds concurrent outbound calls.
type Gate struct {
	sem      *semaphore.Weighted
	timeouts map[CallClass]time.Duration
}

// NewGate creates a gate allowing at most maxInFlight concurrent calls.
func NewGate(maxInFlight int64) *Gate {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	timeouts := make(map[CallClass]time.Duration, len(defaultTimeouts))
	for class, d := range defaultTimeouts {
		timeouts[class] = d
	}
	return &Gate{
		sem:      semaphore.NewWeighted(maxInFlight),
		timeouts: timeouts,
	}
}

// SetTimeout overrides the deadline for one call class.
func (g *Gate) SetTimeout(class CallClass, d time.Duration) {
	g.timeouts[class] = d
}

// Do acquires a slot, runs fn under the class deadline, and releases the
// slot. Waiting for a slot respects the caller's context.
func (g *Gate) Do(ctx context.Context, class CallClass, fn func(ctx context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for %s slot: %w", class, err)
	}
	defer g.sem.Release(1)

	if timeout, ok := g.timeouts[class]; ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}
