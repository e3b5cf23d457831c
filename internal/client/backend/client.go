package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/connecthub/internal/client/config"
	"github.com/dmitrijs2005/connecthub/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/connecthub/internal/dbx"
	"github.com/dmitrijs2005/connecthub/internal/logging"
)

// Client is the process-wide backend handle.
type Client struct {
	Auth   Auth
	Store  Store
	Events PostEvents

	db *sql.DB
}

// openDB is a seam for dbx.Open.
var openDB = dbx.Open

// NewClient builds the backend handle from cfg. With a DatabaseDSN the store
// and push stream go straight to Postgres; otherwise they use the data API
// and the Realtime websocket. Auth always goes through the auth API.
func NewClient(ctx context.Context, cfg *config.Config, log logging.Logger) (*Client, error) {
	return newClient(ctx, cfg, NewHTTPClient(), log)
}

func newClient(ctx context.Context, cfg *config.Config, hc *http.Client, log logging.Logger) (*Client, error) {
	if cfg.BackendURL == "" {
		return nil, errors.New("backend URL is not configured")
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("backend anon key is not configured")
	}

	log = log.With("component", "backend")
	rest := &restClient{baseURL: cfg.BackendURL, anonKey: cfg.AnonKey, http: hc, log: log}
	auth := newGoTrue(rest)

	c := &Client{Auth: auth}

	if cfg.DatabaseDSN != "" {
		db, err := openDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("direct store: %w", err)
		}
		c.db = db
		c.Store = NewPostgresStore(db, repomanager.NewPostgresRepositoryManager())
		c.Events = NewPgListener(cfg.DatabaseDSN, log)
		return c, nil
	}

	c.Store = newRestStore(rest, func(ctx context.Context) string {
		s, err := auth.Session(ctx)
		if err != nil {
			log.Warn(ctx, "session refresh failed", "error", err)
			return ""
		}
		if s == nil {
			return ""
		}
		return s.AccessToken
	})
	c.Events = newRealtime(cfg.BackendURL, cfg.AnonKey, auth, log)
	return c, nil
}

// Close releases the direct database connection, if any.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
