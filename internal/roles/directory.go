// Package roles implements the role directory: per-principal role assignments
// resolved through an asynchronous lookup with an observable loading state,
// a TTL-bounded snapshot cache, and fail-closed error handling.
package roles

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	identitydomain "storefront-gateway/internal/identity/domain"
	"storefront-gateway/internal/roles/domain"
)

// Fetcher is the minimal role store needed by the directory.
type Fetcher interface {
	ListRolesByUser(ctx context.Context, userID string) (domain.Assignment, error)
}

// State is the directory's answer for one principal.
type State struct {
	Loading    bool
	Assignment domain.Assignment
}

// HasRole reports whether role is granted. Always false while loading: a
// membership question with no answer yet must not grant anything.
func (s State) HasRole(role domain.Role) bool {
	if s.Loading {
		return false
	}
	return s.Assignment.Has(role)
}

// Lookup is a one-shot asynchronous role lookup. State is loading until the
// directory answers, then transitions exactly once to a ready assignment.
type Lookup struct {
	mu    sync.Mutex
	state State
	done  chan struct{}
}

func newPendingLookup() *Lookup {
	return &Lookup{state: State{Loading: true}, done: make(chan struct{})}
}

func newReadyLookup(a domain.Assignment) *Lookup {
	l := newPendingLookup()
	l.finish(a)
	return l
}

// State returns the current lookup state.
func (l *Lookup) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Done is closed when the lookup reaches a ready state. A lookup issued for a
// still-loading session never completes; callers bound their wait.
func (l *Lookup) Done() <-chan struct{} { return l.done }

// Await blocks until the lookup completes or ctx is done, returning the state
// observed at that point (loading if ctx expired first).
func (l *Lookup) Await(ctx context.Context) State {
	select {
	case <-l.done:
	case <-ctx.Done():
	}
	return l.State()
}

func (l *Lookup) finish(a domain.Assignment) {
	l.mu.Lock()
	l.state = State{Assignment: a}
	l.mu.Unlock()
	close(l.done)
}

type cacheEntry struct {
	assignment domain.Assignment
	fetchedAt  time.Time
}

// Directory answers role membership for principals. Lookups are keyed by
// principal id: concurrent requests for the same principal share one fetch,
// and results are cached up to the configured TTL. Invalidate discards the
// cached snapshot and any in-flight fetch result for a principal, so a grant
// or revoke is observed by the next evaluation.
type Directory struct {
	fetcher Fetcher
	logger  *zap.Logger
	ttl     time.Duration
	nowF    func() time.Time

	mu       sync.Mutex
	gen      map[string]uint64
	cache    map[string]cacheEntry
	inflight map[string]*Lookup
}

// NewDirectory returns a Directory backed by fetcher. logger may be nil.
// ttl <= 0 disables the snapshot cache.
func NewDirectory(fetcher Fetcher, ttl time.Duration, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		fetcher:  fetcher,
		logger:   logger,
		ttl:      ttl,
		nowF:     time.Now,
		gen:      make(map[string]uint64),
		cache:    make(map[string]cacheEntry),
		inflight: make(map[string]*Lookup),
	}
}

// Lookup resolves the role assignment for the given session state.
//
//   - session loading: returns a pending lookup and issues no fetch; the
//     principal is not known yet, so there is nothing to ask the store.
//   - unauthenticated: returns a ready empty assignment immediately, no fetch.
//   - authenticated: returns the cached snapshot if fresh, otherwise issues
//     exactly one fetch for the principal id. A fetch failure resolves to the
//     empty assignment (fail-closed) and is logged, never surfaced.
func (d *Directory) Lookup(ctx context.Context, session identitydomain.SessionState) *Lookup {
	switch session.Phase {
	case identitydomain.SessionAuthenticated:
		return d.lookupPrincipal(ctx, session.Principal.ID)
	case identitydomain.SessionUnauthenticated:
		return newReadyLookup(domain.Assignment{})
	default:
		return newPendingLookup()
	}
}

func (d *Directory) lookupPrincipal(ctx context.Context, principalID string) *Lookup {
	d.mu.Lock()
	if e, ok := d.cache[principalID]; ok && d.ttl > 0 && d.nowF().Sub(e.fetchedAt) < d.ttl {
		d.mu.Unlock()
		return newReadyLookup(e.assignment)
	}
	if l, ok := d.inflight[principalID]; ok {
		d.mu.Unlock()
		return l
	}
	l := newPendingLookup()
	d.inflight[principalID] = l
	gen := d.gen[principalID]
	d.mu.Unlock()

	go d.fetch(ctx, principalID, gen, l)
	return l
}

func (d *Directory) fetch(ctx context.Context, principalID string, gen uint64, l *Lookup) {
	assignment, err := d.fetcher.ListRolesByUser(ctx, principalID)
	if err != nil {
		// Fail closed: a failed lookup grants nothing.
		d.logger.Warn("role lookup failed",
			zap.String("principal_id", principalID),
			zap.Error(err))
		assignment = domain.Assignment{}
	}

	d.mu.Lock()
	if d.inflight[principalID] == l {
		delete(d.inflight, principalID)
	}
	stale := d.gen[principalID] != gen
	if !stale && err == nil {
		d.cache[principalID] = cacheEntry{assignment: assignment, fetchedAt: d.nowF()}
	}
	d.mu.Unlock()

	if stale {
		// The principal's assignment changed while this fetch was in flight;
		// the result must not be served. Answer empty and let the next
		// evaluation fetch fresh data.
		l.finish(domain.Assignment{})
		return
	}
	l.finish(assignment)
}

// Invalidate discards the cached snapshot for principalID and marks any
// in-flight fetch stale. Called after role grants and revokes.
func (d *Directory) Invalidate(principalID string) {
	d.mu.Lock()
	d.gen[principalID]++
	delete(d.cache, principalID)
	delete(d.inflight, principalID)
	d.mu.Unlock()
}
