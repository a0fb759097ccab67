package store

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// Probe answers "is the remote store reachable right now". A single
// trivial round-trip with a bounded timeout decides; any failure means
// offline. Results are cached for a short window only, because network
// state changes frequently. There are no retries inside the probe.
type Probe struct {
	db       *sqlx.DB
	timeout  time.Duration
	cacheTTL time.Duration

	mu         sync.Mutex
	lastResult bool
	lastProbe  time.Time
}

// NewProbe builds a probe over the remote handle. A nil handle (remote
// not configured) probes as permanently unreachable.
func NewProbe(db *sqlx.DB, timeout, cacheTTL time.Duration) *Probe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Probe{db: db, timeout: timeout, cacheTTL: cacheTTL}
}

// Online reports remote reachability. Errors never propagate: an
// unreachable remote is expected steady state, not an exceptional one.
func (p *Probe) Online(ctx context.Context) bool {
	if p.db == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cacheTTL > 0 && time.Since(p.lastProbe) < p.cacheTTL {
		return p.lastResult
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var one int
	err := p.db.QueryRowContext(probeCtx, "SELECT 1").Scan(&one)

	p.lastResult = err == nil
	p.lastProbe = time.Now()
	return p.lastResult
}

// Invalidate drops the cached result so the next call re-probes.
func (p *Probe) Invalidate() {
	p.mu.Lock()
	p.lastProbe = time.Time{}
	p.mu.Unlock()
}
