package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/veldt"
)

// A Pool wraps the driver for one named data source and tracks whether
// the source is reachable. Schema operations resolve their reader and
// writer pools through a Registry, never through package state.
type Pool struct {
	name      string
	driver    *Driver
	available atomic.Bool
	markedAt  atomic.Int64 // unix nanos of the last availability change
	missed    atomic.Int64 // consecutive failed health checks
}

// NewPool returns a pool that is assumed available until a health check
// says otherwise.
func NewPool(name string, drv *Driver) *Pool {
	p := &Pool{name: name, driver: drv}
	p.available.Store(true)
	p.markedAt.Store(time.Now().UnixNano())
	return p
}

// Name returns the data source name.
func (p *Pool) Name() string { return p.name }

// Driver returns the wrapped driver.
func (p *Pool) Driver() *Driver { return p.driver }

// Dialect returns the pool's dialect name.
func (p *Pool) Dialect() string { return p.driver.Dialect() }

// Available reports whether the last health observation succeeded.
func (p *Pool) Available() bool { return p.available.Load() }

// MissedCount returns the number of consecutive failed health checks.
func (p *Pool) MissedCount() int64 { return p.missed.Load() }

// StoreAvailability records a health observation. A success clears the
// missed counter; any change of state stamps the transition time.
func (p *Pool) StoreAvailability(ok bool) {
	if ok {
		p.missed.Store(0)
	} else {
		p.missed.Add(1)
	}
	if p.available.Swap(ok) != ok {
		p.markedAt.Store(time.Now().UnixNano())
	}
}

// Retryable reports whether an unavailable pool has cooled down long
// enough to be probed again.
func (p *Pool) Retryable(cooldown time.Duration) bool {
	if p.Available() {
		return true
	}
	marked := time.Unix(0, p.markedAt.Load())
	return time.Since(marked) >= cooldown
}

// CheckAvailability pings the data source and records the outcome.
func (p *Pool) CheckAvailability(ctx context.Context) error {
	err := p.driver.DB().PingContext(ctx)
	p.StoreAvailability(err == nil)
	if err != nil {
		slog.Error("database health check failed",
			"name", p.name, "dialect", p.Dialect(), "missed", p.MissedCount(), "error", err)
		return fmt.Errorf("dialect/sql: ping %q: %w", p.name, err)
	}
	return nil
}

// Close closes the underlying driver.
func (p *Pool) Close() error { return p.driver.Close() }

// A Registry holds the named pools of one engine instance.
type Registry struct {
	mu       sync.RWMutex
	pools    map[string]*Pool
	cooldown time.Duration
}

// DefaultCooldown is how long an unavailable pool is skipped before a
// caller may probe it again.
const DefaultCooldown = 60 * time.Second

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]*Pool), cooldown: DefaultCooldown}
}

// SetCooldown overrides the retry cooldown for unavailable pools.
func (r *Registry) SetCooldown(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cooldown = d
}

// Add registers the pool under its name, replacing any previous entry.
func (r *Registry) Add(p *Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[p.Name()] = p
}

// Get returns the named pool. Unknown names yield ErrPoolNotFound. An
// unavailable pool past its cooldown is pinged once before it is handed
// out; one still cooling down is handed out stale with its miss counter
// bumped, leaving the caller to fail on use instead of here.
func (r *Registry) Get(ctx context.Context, name string) (*Pool, error) {
	r.mu.RLock()
	p, ok := r.pools[name]
	cooldown := r.cooldown
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("dialect/sql: %q: %w", name, veldt.ErrPoolNotFound)
	}
	if p.Available() {
		return p, nil
	}
	if p.Retryable(cooldown) {
		// The ping records the outcome either way.
		_ = p.CheckAvailability(ctx)
		return p, nil
	}
	p.missed.Add(1)
	return p, nil
}

// Pools returns all registered pools.
func (r *Registry) Pools() []*Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pools := make([]*Pool, 0, len(r.pools))
	for _, p := range r.pools {
		pools = append(pools, p)
	}
	return pools
}

// CheckAll pings every pool concurrently and returns the first failure.
func (r *Registry) CheckAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range r.Pools() {
		p := p
		g.Go(func() error {
			return p.CheckAvailability(ctx)
		})
	}
	return g.Wait()
}

// Close closes every pool and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for name, p := range r.pools {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.pools, name)
	}
	return firstErr
}
