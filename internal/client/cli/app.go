package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/connecthub/internal/client/backend"
	"github.com/dmitrijs2005/connecthub/internal/client/config"
	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/client/services"
	"github.com/dmitrijs2005/connecthub/internal/client/storage"
	"github.com/dmitrijs2005/connecthub/internal/logging"
)

// View names shown in the header.
const (
	ViewLoading = "loading"
	ViewAuth    = "auth"
	ViewHome    = "home"
	ViewProfile = "profile"
)

// Profile tabs.
const (
	TabPosts = "posts"
	TabAbout = "about"
)

// startupTimeout bounds the wait for the initial session on the loading screen.
const startupTimeout = 15 * time.Second

type App struct {
	config   *config.Config
	log      logging.Logger
	auth     services.AuthService
	feed     services.FeedService
	composer *services.Composer
	profiles services.ProfileService
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time

	mu         sync.Mutex
	view       string
	profile    *models.Profile
	profileTab string
	shown      []models.Post

	closers []func()
}

// NewApp wires the backend handle, avatar storage and services from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, closeLog, err := newLogger(c)
	if err != nil {
		return nil, err
	}

	bc, err := backend.NewClient(ctx, c, log)
	if err != nil {
		closeLog()
		log.Error(ctx, "backend init failed", "error", err)
		return nil, err
	}

	avatars, err := storage.NewAvatarStore(ctx, c)
	if err != nil {
		_ = bc.Close()
		closeLog()
		return nil, err
	}
	if !avatars.Enabled() {
		log.Info(ctx, "avatar storage disabled: no S3 credentials configured")
	}

	as := services.NewAuthService(bc.Auth, bc.Store, log, c.RequestTimeout)
	fs := services.NewFeedService(bc.Store, bc.Events, log, c.FeedLimit)
	cs := services.NewComposer(bc.Store, log, fs.Refresh)
	ps := services.NewProfileService(bc.Store, as, avatars, log)

	app := &App{
		config:   c,
		log:      log,
		auth:     as,
		feed:     fs,
		composer: cs,
		profiles: ps,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		now:      time.Now,
		view:     ViewLoading,
	}
	app.closers = append(app.closers, func() { _ = bc.Close() }, closeLog)
	return app, nil
}

// newLogger writes to LogFile when set and to stderr otherwise.
func newLogger(c *config.Config) (logging.Logger, func(), error) {
	if c.LogFile == "" {
		return logging.New(c.LogLevel, os.Stderr), func() {}, nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logging.New(c.LogLevel, f), func() { _ = f.Close() }, nil
}

// Run shows the loading screen until the session is resolved, then runs the
// REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.start(ctx); err != nil {
		return err
	}
	defer a.auth.Stop()

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) start(ctx context.Context) error {
	a.closers = append(a.closers,
		a.auth.Subscribe(a.onAuthState),
		a.feed.OnChange(a.onFeedChange),
	)

	fmt.Fprintln(a.out, renderHeader(ViewLoading, ""))
	fmt.Fprintln(a.out, mutedStyle.Render("Loading..."))

	if err := a.auth.Start(ctx); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	if err := a.auth.Await(waitCtx); err != nil {
		a.log.Warn(ctx, "initial session not resolved", "error", err)
	}

	if a.isLoggedIn() {
		return a.Home(ctx)
	}
	a.showAuth()
	return nil
}

// Close stops background work and releases resources.
func (a *App) Close() {
	a.feed.Unmount()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// onAuthState runs on the auth goroutine. Leaving Authenticated tears the
// feed down.
func (a *App) onAuthState(st services.AuthState) {
	if st.Phase != services.AuthAnonymous {
		return
	}
	a.feed.Unmount()

	a.mu.Lock()
	wasIn := a.view == ViewHome || a.view == ViewProfile
	a.view = ViewAuth
	a.profile = nil
	a.shown = nil
	a.mu.Unlock()

	if st.LastError != nil {
		printlnFn(renderError("Could not load your profile. Please sign in again."))
	} else if wasIn {
		printlnFn(mutedStyle.Render("You are signed out."))
	}
}

// onFeedChange announces pushed posts while the feed is on screen.
func (a *App) onFeedChange(ev services.FeedEvent) {
	if ev.Kind != services.FeedPushed || ev.Post == nil {
		return
	}
	if a.currentView() != ViewHome {
		return
	}
	printlnFn(successStyle.Render(fmt.Sprintf("New post from %s. Type 'home' to see it.", ev.Post.AuthorName)))
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().Phase == services.AuthAuthenticated
}

func (a *App) identity() *models.Identity {
	return a.auth.State().Identity
}

func (a *App) currentView() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func (a *App) setView(v string) {
	a.mu.Lock()
	a.view = v
	a.mu.Unlock()
}

func (a *App) getStatus() string {
	view := a.currentView()
	if id := a.identity(); id != nil {
		return fmt.Sprintf("(%s · %s)", id.Name, view)
	}
	return fmt.Sprintf("(%s)", view)
}

func (a *App) showAuth() {
	a.setView(ViewAuth)
	fmt.Fprintln(a.out, renderHeader(ViewAuth, ""))
	fmt.Fprintln(a.out, "Welcome to ConnectHub. Type 'signin' or 'signup' to continue.")
}

// withTimeout applies the configured per-call deadline.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
