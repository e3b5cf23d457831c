package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// refreshMargin is how close to expiry Session refreshes the access token.
const refreshMargin = 30 * time.Second

// Auth is the backend's managed authentication.
type Auth interface {
	// SignIn exchanges email and password for a session and emits SIGNED_IN.
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	// SignUp creates an account with name as user metadata. The returned
	// session is nil when the project requires email confirmation.
	SignUp(ctx context.Context, email, password, name string) (*models.Session, error)
	// SignOut ends the session and emits SIGNED_OUT.
	SignOut(ctx context.Context) error
	// Session returns the current session, refreshing it when the access
	// token is about to expire. It is nil when signed out.
	Session(ctx context.Context) (*models.Session, error)
	// OnAuthStateChange registers fn for session-change events.
	OnAuthStateChange(fn func(models.AuthEvent)) (unsubscribe func())
	// AccessToken returns the current access token or "".
	AccessToken() string
}

// GoTrue implements Auth over the GoTrue REST API. The session lives in
// memory only.
type GoTrue struct {
	rest *restClient

	mu        sync.RWMutex
	session   *models.Session
	listeners map[int]func(models.AuthEvent)
	nextID    int

	refreshMu sync.Mutex
	now       func() time.Time
}

func newGoTrue(rest *restClient) *GoTrue {
	return &GoTrue{
		rest:      rest,
		listeners: make(map[int]func(models.AuthEvent)),
		now:       time.Now,
	}
}

type tokenResponse struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	ExpiresIn    int64               `json:"expires_in"`
	ExpiresAt    int64               `json:"expires_at"`
	User         *models.SessionUser `json:"user"`
}

func (g *GoTrue) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := g.rest.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s, err := g.sessionFrom(resp)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	g.setSession(s, models.AuthSignedIn)
	return s, nil
}

func (g *GoTrue) SignUp(ctx context.Context, email, password, name string) (*models.Session, error) {
	resp, err := g.rest.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body: map[string]any{
			"email":    email,
			"password": password,
			"data":     map[string]string{"name": name},
		},
	})
	if err != nil {
		var apiErr *APIError
		// Older GoTrue reports a duplicate user as a bare 422.
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity && apiErr.Code == "" && apiErr.kind == nil {
			apiErr.kind = common.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("sign up: %w", err)
	}

	var probe tokenResponse
	if err := resp.decode(&probe); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if probe.AccessToken == "" {
		// Confirmation pending: GoTrue returned the bare user.
		return nil, nil
	}

	s, err := g.sessionFrom(resp)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	g.setSession(s, models.AuthSignedIn)
	return s, nil
}

func (g *GoTrue) SignOut(ctx context.Context) error {
	token := g.AccessToken()

	var err error
	if token != "" {
		_, err = g.rest.do(ctx, request{
			method: http.MethodPost,
			path:   "/auth/v1/logout",
			token:  token,
		})
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusNotFound) {
			// Session already gone on the server.
			err = nil
		}
	}

	g.setSession(nil, models.AuthSignedOut)

	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (g *GoTrue) Session(ctx context.Context) (*models.Session, error) {
	g.mu.RLock()
	s := g.session
	g.mu.RUnlock()

	if s == nil || !s.ExpiresWithin(refreshMargin, g.now()) || s.RefreshToken == "" {
		return s, nil
	}

	return g.refresh(ctx, s)
}

func (g *GoTrue) refresh(ctx context.Context, stale *models.Session) (*models.Session, error) {
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	g.mu.RLock()
	current := g.session
	g.mu.RUnlock()
	if current != stale {
		// Another caller refreshed or signed out meanwhile.
		return current, nil
	}

	resp, err := g.rest.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": stale.RefreshToken},
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			g.setSession(nil, models.AuthSignedOut)
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	s, err := g.sessionFrom(resp)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	g.setSession(s, models.AuthTokenRefreshed)
	return s, nil
}

func (g *GoTrue) OnAuthStateChange(fn func(models.AuthEvent)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.listeners, id)
			g.mu.Unlock()
		})
	}
}

func (g *GoTrue) AccessToken() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return ""
	}
	return g.session.AccessToken
}

// setSession swaps the session and notifies listeners outside the lock.
func (g *GoTrue) setSession(s *models.Session, kind models.AuthEventKind) {
	g.mu.Lock()
	g.session = s
	fns := make([]func(models.AuthEvent), 0, len(g.listeners))
	for _, fn := range g.listeners {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	ev := models.AuthEvent{Kind: kind, Session: s}
	for _, fn := range fns {
		fn(ev)
	}
}

func (g *GoTrue) sessionFrom(resp *response) (*models.Session, error) {
	var tr tokenResponse
	if err := resp.decode(&tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" || tr.User == nil || tr.User.ID == "" {
		return nil, common.ErrInvalidToken
	}

	s := &models.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		User:         *tr.User,
	}

	exp, err := tokenExpiry(tr.AccessToken)
	switch {
	case err == nil:
		s.ExpiresAt = exp
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = g.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return s, nil
}

// tokenExpiry reads the exp claim of an access token without verifying the
// signature; the backend verifies every request.
func tokenExpiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, common.ErrInvalidToken
	}
	return claims.ExpiresAt.Time, nil
}
