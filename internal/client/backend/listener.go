package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// postsChannel is the NOTIFY channel fed by the posts insert trigger.
const postsChannel = "posts_inserted"

// listenConn is the part of *pgx.Conn the listener uses.
type listenConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// pgConnect is a seam for pgx.Connect.
var pgConnect = func(ctx context.Context, dsn string) (listenConn, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// PgListener implements PostEvents with Postgres LISTEN/NOTIFY. Each
// subscription holds a dedicated connection.
type PgListener struct {
	dsn string
	log logging.Logger
}

func NewPgListener(dsn string, log logging.Logger) *PgListener {
	return &PgListener{dsn: dsn, log: log}
}

func (l *PgListener) SubscribePostInserts(ctx context.Context, fn func(models.Post)) (Subscription, error) {
	conn, err := pgConnect(ctx, l.dsn)
	if err != nil {
		return nil, fmt.Errorf("listen connect: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{postsChannel}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("listen: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	sub := &pgSub{conn: conn, fn: fn, log: l.log, cancel: cancel, done: make(chan struct{})}
	go sub.loop(loopCtx)

	return sub, nil
}

type pgSub struct {
	conn   listenConn
	fn     func(models.Post)
	log    logging.Logger
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func (s *pgSub) loop(ctx context.Context) {
	defer close(s.done)
	for {
		n, err := s.conn.WaitForNotification(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.log.Warn(context.Background(), "post listener stopped", "error", err)
			}
			return
		}
		if n.Channel != postsChannel {
			continue
		}

		var p models.Post
		if err := json.Unmarshal([]byte(n.Payload), &p); err != nil {
			s.log.Warn(context.Background(), "post notification decode failed", "error", err)
			continue
		}

		s.mu.RLock()
		if !s.closed {
			s.fn(p)
		}
		s.mu.RUnlock()
	}
}

func (s *pgSub) Unsubscribe() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.cancel()
		<-s.done
		_ = s.conn.Close(context.Background())
	})
}
