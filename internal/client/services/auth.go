// Package services contains application services for the ConnectHub client.
// This file defines the authentication context: a state machine over backend
// session events that owns the current identity.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/connecthub/internal/client/backend"
	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/dmitrijs2005/connecthub/internal/logging"
)

// ErrAuthStopped is returned by UpdateProfile once Stop has been called.
var ErrAuthStopped = errors.New("auth context stopped")

// AuthPhase is the state of the authentication context.
type AuthPhase int

const (
	// AuthUnresolved means the initial session has not been read yet.
	AuthUnresolved AuthPhase = iota
	AuthAnonymous
	AuthAuthenticated
)

func (p AuthPhase) String() string {
	switch p {
	case AuthAnonymous:
		return "anonymous"
	case AuthAuthenticated:
		return "authenticated"
	default:
		return "unresolved"
	}
}

// AuthState is a snapshot of the authentication context. Identity is set only
// in AuthAuthenticated. LastError holds the last failed identity resolution.
type AuthState struct {
	Phase     AuthPhase
	Identity  *models.Identity
	LastError error
}

// Loading reports whether the initial session is still being resolved.
func (s AuthState) Loading() bool {
	return s.Phase == AuthUnresolved
}

// AuthService defines the authentication context used by the views.
//
// Contract:
//   - Start: read the current backend session once and follow session-change
//     events until Stop.
//   - SignIn / SignUp / SignOut: delegate to the backend and return its error
//     unchanged. The identity follows asynchronously through session events.
//   - UpdateProfile: partial update of the current identity.
//   - State / Subscribe: observe the current state.
//   - Await: block until every queued session event has been applied.
type AuthService interface {
	Start(ctx context.Context) error
	Stop()
	SignIn(ctx context.Context, email string, password []byte) error
	SignUp(ctx context.Context, email string, password []byte, name string) (confirmationPending bool, err error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, upd models.IdentityUpdate) error
	State() AuthState
	Subscribe(fn func(AuthState)) (cancel func())
	Await(ctx context.Context) error
}

// profileUpdated is a local event that merges a saved update into the
// current identity.
const profileUpdated models.AuthEventKind = "PROFILE_UPDATED"

type authEvent struct {
	kind    models.AuthEventKind
	session *models.Session
	userID  string
	update  models.IdentityUpdate
	// done receives the outcome of a profileUpdated event.
	done chan error
}

// authService processes events one at a time on a single goroutine; transition
// is the only writer of state.
type authService struct {
	auth       backend.Auth
	identities backend.Identities
	log        logging.Logger
	timeout    time.Duration
	now        func() time.Time

	mu        sync.Mutex
	state     AuthState
	queue     []authEvent
	pending   int
	wake      chan struct{}
	waiters   []chan struct{}
	observers map[int]func(AuthState)
	nextObs   int
	running   bool

	unsubscribe func()
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewAuthService constructs an AuthService over the backend auth and identity
// store. timeout bounds each identity resolution; zero means no deadline.
func NewAuthService(auth backend.Auth, identities backend.Identities, log logging.Logger, timeout time.Duration) AuthService {
	return &authService{
		auth:       auth,
		identities: identities,
		log:        log.With("component", "auth"),
		timeout:    timeout,
		now:        time.Now,
		wake:       make(chan struct{}, 1),
		observers:  make(map[int]func(AuthState)),
	}
}

func (a *authService) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return errors.New("auth context already started")
	}
	a.running = true
	loopCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.mu.Unlock()

	a.unsubscribe = a.auth.OnAuthStateChange(func(ev models.AuthEvent) {
		a.enqueue(authEvent{kind: ev.Kind, session: ev.Session})
	})

	session, err := a.auth.Session(ctx)
	if err != nil {
		a.log.Warn(ctx, "initial session read failed", "error", err)
		session = nil
	}
	a.enqueue(authEvent{kind: models.AuthInitialSession, session: session})

	go a.loop(loopCtx)
	return nil
}

func (a *authService) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	cancel()
	<-done
}

// enqueue queues ev for the loop. It reports false once the service is
// stopped.
func (a *authService) enqueue(ev authEvent) bool {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return false
	}
	a.queue = append(a.queue, ev)
	a.pending++
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
	return true
}

func (a *authService) loop(ctx context.Context) {
	defer close(a.done)
	defer a.drain()

	for {
		a.mu.Lock()
		if len(a.queue) == 0 {
			a.mu.Unlock()
			select {
			case <-a.wake:
				continue
			case <-ctx.Done():
				return
			}
		}
		ev := a.queue[0]
		a.queue = a.queue[1:]
		cur := a.state
		a.mu.Unlock()

		next := a.transition(ctx, cur, ev)
		if ctx.Err() != nil {
			if ev.done != nil {
				ev.done <- ErrAuthStopped
			}
			return
		}

		a.mu.Lock()
		a.state = next
		fns := make([]func(AuthState), 0, len(a.observers))
		for _, fn := range a.observers {
			fns = append(fns, fn)
		}
		a.mu.Unlock()

		for _, fn := range fns {
			fn(next)
		}
		if ev.done != nil {
			ev.done <- nil
		}
		a.settle(1)
	}
}

// drain drops queued events after Stop and releases everyone waiting on them.
func (a *authService) drain() {
	a.mu.Lock()
	q := a.queue
	a.queue = nil
	a.mu.Unlock()

	for _, ev := range q {
		if ev.done != nil {
			ev.done <- ErrAuthStopped
		}
	}
	a.settle(-1)
}

// settle marks n events as applied; n < 0 clears the counter.
func (a *authService) settle(n int) {
	a.mu.Lock()
	if n < 0 {
		a.pending = 0
	} else {
		a.pending -= n
	}
	var ws []chan struct{}
	if a.pending == 0 {
		ws = a.waiters
		a.waiters = nil
	}
	a.mu.Unlock()

	for _, w := range ws {
		close(w)
	}
}

// transition computes the next state for one event.
func (a *authService) transition(ctx context.Context, cur AuthState, ev authEvent) AuthState {
	switch ev.kind {
	case models.AuthSignedOut:
		return AuthState{Phase: AuthAnonymous}

	case profileUpdated:
		if cur.Phase != AuthAuthenticated || cur.Identity.ID != ev.userID {
			return cur
		}
		merged := ev.update.Apply(*cur.Identity)
		return AuthState{Phase: AuthAuthenticated, Identity: &merged}

	case models.AuthInitialSession, models.AuthSignedIn, models.AuthTokenRefreshed, models.AuthUserUpdated:
		if ev.session == nil {
			return AuthState{Phase: AuthAnonymous}
		}
		if cur.Phase == AuthAuthenticated && cur.Identity.ID == ev.session.User.ID &&
			(ev.kind == models.AuthTokenRefreshed || ev.kind == models.AuthUserUpdated) {
			return cur
		}

		identity, err := a.resolve(ctx, ev.session)
		if err != nil {
			a.log.Error(ctx, "identity resolution failed", "user", ev.session.User.ID, "event", string(ev.kind), "error", err)
			return AuthState{Phase: AuthAnonymous, LastError: err}
		}
		return AuthState{Phase: AuthAuthenticated, Identity: identity}
	}

	return cur
}

// resolve loads the identity of the session's user, creating it on first
// sign-in. Not found is the only tolerated lookup error.
func (a *authService) resolve(ctx context.Context, s *models.Session) (*models.Identity, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	identity, err := a.identities.GetIdentity(ctx, s.User.ID)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("identity lookup error: %w", err)
	}

	identity = &models.Identity{
		ID:        s.User.ID,
		Email:     s.User.Email,
		Name:      s.User.DisplayName(),
		CreatedAt: a.now().UTC(),
	}
	if err := a.identities.InsertIdentity(ctx, identity); err != nil {
		return nil, fmt.Errorf("identity create error: %w", err)
	}

	a.log.Info(ctx, "identity created", "user", identity.ID)
	return identity, nil
}

func (a *authService) SignIn(ctx context.Context, email string, password []byte) error {
	_, err := a.auth.SignIn(ctx, email, string(password))
	return err
}

func (a *authService) SignUp(ctx context.Context, email string, password []byte, name string) (bool, error) {
	s, err := a.auth.SignUp(ctx, email, string(password), name)
	if err != nil {
		return false, err
	}
	return s == nil, nil
}

func (a *authService) SignOut(ctx context.Context) error {
	return a.auth.SignOut(ctx)
}

// UpdateProfile saves upd for the current identity and merges it into local
// state once the backend accepted it. No re-fetch is made.
func (a *authService) UpdateProfile(ctx context.Context, upd models.IdentityUpdate) error {
	a.mu.Lock()
	st, running := a.state, a.running
	a.mu.Unlock()
	if !running {
		return ErrAuthStopped
	}
	if st.Phase != AuthAuthenticated {
		return common.ErrNoIdentity
	}

	if err := a.identities.UpdateIdentity(ctx, st.Identity.ID, upd); err != nil {
		a.log.Error(ctx, "profile update failed", "user", st.Identity.ID, "error", err)
		return err
	}

	ev := authEvent{kind: profileUpdated, userID: st.Identity.ID, update: upd, done: make(chan error, 1)}
	if !a.enqueue(ev) {
		return ErrAuthStopped
	}

	select {
	case err := <-ev.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *authService) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *authService) Subscribe(fn func(AuthState)) (cancel func()) {
	a.mu.Lock()
	id := a.nextObs
	a.nextObs++
	a.observers[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.observers, id)
		a.mu.Unlock()
	}
}

func (a *authService) Await(ctx context.Context) error {
	a.mu.Lock()
	if a.pending == 0 {
		a.mu.Unlock()
		return nil
	}
	w := make(chan struct{})
	a.waiters = append(a.waiters, w)
	a.mu.Unlock()

	select {
	case <-w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
