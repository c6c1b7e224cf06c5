package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
)

const (
	// DefaultValidationTimeout bounds a validation call so the guard never stays in Checking.
	DefaultValidationTimeout = 10 * time.Second
	// DefaultEntryURL is where unauthenticated visitors are sent.
	DefaultEntryURL = "/"

	validateKey = "validate"
)

// Guard owns the authentication state machine for one consuming view.
type Guard struct {
	id       string
	client   ports.SessionClient
	nav      ports.Navigator
	entryURL string
	timeout  time.Duration
	now      func() time.Time

	base       context.Context
	cancel     context.CancelFunc
	calls      singleflight.Group
	navigating sync.WaitGroup

	mu        sync.Mutex
	emitMu    sync.Mutex
	state     domain.State
	epoch     uint64
	closed    bool
	listeners map[int]func(domain.Transition)
	nextSub   int
}

// Option configures a Guard.
type Option func(*Guard)

// WithEntryURL overrides the entry view unauthenticated visitors are sent to.
func WithEntryURL(url string) Option {
	return func(g *Guard) {
		if url != "" {
			g.entryURL = url
		}
	}
}

// WithValidationTimeout overrides DefaultValidationTimeout.
func WithValidationTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithID pins the guard instance identifier.
func WithID(id string) Option {
	return func(g *Guard) {
		if id != "" {
			g.id = id
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGuard wires a guard in the Idle state.
func NewGuard(client ports.SessionClient, nav ports.Navigator, opts ...Option) (*Guard, error) {
	if client == nil {
		return nil, errors.New("session client is required")
	}
	if nav == nil {
		return nil, errors.New("navigator is required")
	}
	g := &Guard{
		id:        uuid.NewString(),
		client:    client,
		nav:       nav,
		entryURL:  DefaultEntryURL,
		timeout:   DefaultValidationTimeout,
		now:       time.Now,
		state:     domain.Idle(),
		listeners: map[int]func(domain.Transition){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.base, g.cancel = context.WithCancel(context.Background())
	return g, nil
}

func (g *Guard) ID() string { return g.id }

// State returns the current state.
func (g *Guard) State() domain.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

type validation struct {
	state domain.State
	err   error
}

// Bootstrap checks the session. Concurrent callers share one validation call.
// The returned error is non-nil only when ctx ends first, the guard is closed,
// or leaving the protected view failed; the state is always meaningful.
func (g *Guard) Bootstrap(ctx context.Context) (domain.State, error) {
	g.mu.Lock()
	if g.closed {
		state := g.state
		g.mu.Unlock()
		return state, ErrGuardClosed
	}
	if g.state.Kind() == domain.KindUnauthenticated {
		state := g.state
		g.mu.Unlock()
		return state, nil
	}
	var pending []domain.Transition
	if g.state.Kind() != domain.KindChecking {
		pending = g.transitionLocked(domain.Checking())
	}
	epoch := g.epoch
	// The call keeps the first caller's trace but not its cancellation.
	callCtx := trace.ContextWithSpanContext(g.base, trace.SpanContextFromContext(ctx))
	// Joined under g.mu: validate forgets the key under the same lock before
	// applying, so a caller either shares an unapplied call or starts a new one.
	ch := g.calls.DoChan(validateKey, func() (any, error) {
		return g.validate(callCtx, epoch), nil
	})
	g.emitAndUnlock(pending)

	select {
	case res := <-ch:
		v := res.Val.(validation)
		return v.state, v.err
	case <-ctx.Done():
		return g.State(), ctx.Err()
	}
}

func (g *Guard) validate(parent context.Context, epoch uint64) validation {
	ctx, cancel := context.WithTimeout(parent, g.timeout)
	defer cancel()
	outcome := g.client.Validate(ctx)
	next := outcome.State()

	g.mu.Lock()
	g.calls.Forget(validateKey)
	if g.closed || g.epoch != epoch || g.state.Kind() != domain.KindChecking {
		// Torn down, logged out meanwhile, or superseded: drop the outcome.
		state, closed := g.state, g.closed
		g.mu.Unlock()
		if closed {
			return validation{state: state, err: ErrGuardClosed}
		}
		return validation{state: state}
	}
	pending := g.transitionLocked(next)
	g.emitAndUnlock(pending)

	if next.Kind() != domain.KindUnauthenticated {
		return validation{state: next}
	}
	if err := g.navigate(g.entryURL); err != nil {
		if errors.Is(err, ErrGuardClosed) {
			return validation{state: next, err: err}
		}
		return validation{state: next, err: fmt.Errorf("leave protected view: %w", err)}
	}
	return validation{state: next}
}

// navigate assigns url unless the guard was closed. Close waits for a
// navigation already under way, so nothing reaches a torn-down consumer.
func (g *Guard) navigate(url string) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGuardClosed
	}
	g.navigating.Add(1)
	g.mu.Unlock()
	defer g.navigating.Done()
	return g.nav.Assign(url)
}

// LoginWith sends the user agent to the provider's login flow. State is left
// untouched: control leaves the application and a later Bootstrap re-derives it.
func (g *Guard) LoginWith(_ context.Context, provider domain.Provider) error {
	p, err := domain.ParseProvider(string(provider))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownProvider, err)
	}
	return g.navigate(g.client.LoginURL(p))
}

// Logout invalidates the server session and always ends Unauthenticated with
// one navigation to the entry view, whatever the logout call returned.
func (g *Guard) Logout(ctx context.Context) (domain.State, error) {
	if g.isClosed() {
		return g.State(), ErrGuardClosed
	}
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	callErr := g.client.Logout(callCtx)
	cancel()

	g.mu.Lock()
	g.epoch++
	var pending []domain.Transition
	if g.state.Kind() != domain.KindUnauthenticated {
		pending = g.transitionLocked(domain.Unauthenticated())
	}
	state := g.state
	g.emitAndUnlock(pending)

	var errs []error
	if callErr != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrLogoutNotConfirmed, callErr))
	}
	if err := g.navigate(g.entryURL); errors.Is(err, ErrGuardClosed) {
		errs = append(errs, err)
	} else if err != nil {
		errs = append(errs, fmt.Errorf("leave after logout: %w", err))
	}
	return state, errors.Join(errs...)
}

// Subscribe registers fn for every subsequent transition. Listeners run in
// transition order and must not call back into the guard.
func (g *Guard) Subscribe(fn func(domain.Transition)) func() {
	if fn == nil {
		return func() {}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return func() {}
	}
	id := g.nextSub
	g.nextSub++
	g.listeners[id] = fn
	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

// Close tears the guard down with its consuming view. An in-flight validation
// is cancelled and whatever it resolves to is discarded. Close returns only
// once a navigation already under way has finished; it must not be called
// from a Navigator.
func (g *Guard) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		g.navigating.Wait()
		return
	}
	g.closed = true
	g.listeners = map[int]func(domain.Transition){}
	g.cancel()
	g.mu.Unlock()
	g.navigating.Wait()
}

func (g *Guard) isClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// transitionLocked moves to next and returns the transitions to emit. Caller holds g.mu.
func (g *Guard) transitionLocked(next domain.State) []domain.Transition {
	t := domain.NewTransition(g.id, g.state, next, g.now())
	t.ID = uuid.NewString()
	g.state = next
	return []domain.Transition{t}
}

// emitAndUnlock releases g.mu and notifies listeners, handing over to emitMu
// first so notifications keep transition order.
func (g *Guard) emitAndUnlock(pending []domain.Transition) {
	if len(pending) == 0 || len(g.listeners) == 0 {
		g.mu.Unlock()
		return
	}
	listeners := make([]func(domain.Transition), 0, len(g.listeners))
	for _, fn := range g.listeners {
		listeners = append(listeners, fn)
	}
	g.emitMu.Lock()
	g.mu.Unlock()
	defer g.emitMu.Unlock()
	for _, t := range pending {
		for _, fn := range listeners {
			fn(t)
		}
	}
}

var _ ports.Guard = (*Guard)(nil)
