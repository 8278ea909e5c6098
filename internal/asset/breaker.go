package asset

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSourceUnavailable is returned while the breaker in front of a source is open.
var ErrSourceUnavailable = errors.New("asset source unavailable")

type breakerState int

const (
	breakerClosed   breakerState = iota // lookups flow
	breakerOpen                         // lookups fail fast
	breakerHalfOpen                     // one probe lookup allowed
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// GuardedSource trips after consecutive lookup errors so a failing database
// does not stall every render. A missing asset is not an error.
type GuardedSource struct {
	src Source

	mu        sync.Mutex
	state     breakerState
	failures  int
	openedAt  time.Time
	probing   bool
	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

func NewGuardedSource(src Source, threshold int, cooldown time.Duration) *GuardedSource {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &GuardedSource{
		src:       src,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

func (g *GuardedSource) FindByURL(ctx context.Context, url string) (*Asset, error) {
	return g.guard(func() (*Asset, error) { return g.src.FindByURL(ctx, url) })
}

func (g *GuardedSource) FindByID(ctx context.Context, id string) (*Asset, error) {
	return g.guard(func() (*Asset, error) { return g.src.FindByID(ctx, id) })
}

// State reports "closed", "open" or "half_open".
func (g *GuardedSource) State() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentState().String()
}

func (g *GuardedSource) guard(lookup func() (*Asset, error)) (*Asset, error) {
	if !g.allow() {
		return nil, ErrSourceUnavailable
	}
	a, err := lookup()
	g.record(err)
	return a, err
}

// currentState moves an open breaker to half-open once the cooldown has
// passed. Must be called with mu held.
func (g *GuardedSource) currentState() breakerState {
	if g.state == breakerOpen && g.now().Sub(g.openedAt) >= g.cooldown {
		g.state = breakerHalfOpen
		g.probing = false
	}
	return g.state
}

func (g *GuardedSource) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.currentState() {
	case breakerClosed:
		return true
	case breakerHalfOpen:
		if g.probing {
			return false
		}
		g.probing = true
		return true
	default:
		return false
	}
}

func (g *GuardedSource) record(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil {
		g.state = breakerClosed
		g.failures = 0
		g.probing = false
		return
	}

	g.failures++
	if g.state == breakerHalfOpen || g.failures >= g.threshold {
		g.state = breakerOpen
		g.openedAt = g.now()
		g.probing = false
	}
}
