package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	realtimeTopic    = "realtime:posts"
	heartbeatTopic   = "phoenix"
	defaultHeartbeat = 25 * time.Second
	joinReplyTimeout = 10 * time.Second
	eventJoin        = "phx_join"
	eventLeave       = "phx_leave"
	eventReply       = "phx_reply"
	eventHeartbeat   = "heartbeat"
	eventAccessToken = "access_token"
	eventChanges     = "postgres_changes"
	changeTypeInsert = "INSERT"
	realtimePath     = "/realtime/v1/websocket"
	realtimeVSN      = "1.0.0"
)

// phxMessage is a Phoenix channel frame (v1 JSON serializer).
type phxMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     *string         `json:"ref"`
}

type phxReply struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type changesPayload struct {
	Data struct {
		Schema string          `json:"schema"`
		Table  string          `json:"table"`
		Type   string          `json:"type"`
		Record json.RawMessage `json:"record"`
	} `json:"data"`
}

// Realtime implements PostEvents over the backend's Realtime websocket. Each
// subscription owns one socket joined to the posts INSERT change feed.
type Realtime struct {
	url       string
	auth      Auth
	dialer    *websocket.Dialer
	heartbeat time.Duration
	log       logging.Logger
}

func newRealtime(baseURL, anonKey string, auth Auth, log logging.Logger) *Realtime {
	return &Realtime{
		url:       realtimeURL(baseURL, anonKey),
		auth:      auth,
		dialer:    &websocket.Dialer{HandshakeTimeout: 30 * time.Second, Proxy: http.ProxyFromEnvironment},
		heartbeat: defaultHeartbeat,
		log:       log,
	}
}

// realtimeURL maps the project URL onto its websocket endpoint.
func realtimeURL(baseURL, anonKey string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	q := url.Values{"apikey": {anonKey}, "vsn": {realtimeVSN}}
	return u + realtimePath + "?" + q.Encode()
}

func (r *Realtime) SubscribePostInserts(ctx context.Context, fn func(models.Post)) (Subscription, error) {
	conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("realtime connect: %w", err)
	}

	sub := &realtimeSub{
		conn:     conn,
		fn:       fn,
		log:      r.log,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}

	if err := sub.join(ctx, r.accessToken()); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if r.auth != nil {
		sub.unsubAuth = r.auth.OnAuthStateChange(func(ev models.AuthEvent) {
			if ev.Kind == models.AuthTokenRefreshed && ev.Session != nil {
				sub.pushToken(ev.Session.AccessToken)
			}
		})
	}

	go sub.readLoop()
	go sub.heartbeatLoop(r.heartbeat)

	r.log.Debug(ctx, "realtime subscribed", "topic", realtimeTopic)
	return sub, nil
}

func (r *Realtime) accessToken() string {
	if r.auth == nil {
		return ""
	}
	return r.auth.AccessToken()
}

type realtimeSub struct {
	conn      *websocket.Conn
	fn        func(models.Post)
	log       logging.Logger
	unsubAuth func()

	writeMu sync.Mutex
	ref     atomic.Int64

	mu       sync.RWMutex
	closed   bool
	stopChan chan struct{}
	done     chan struct{}
	once     sync.Once
}

func (s *realtimeSub) nextRef() string {
	return strconv.FormatInt(s.ref.Add(1), 10)
}

func (s *realtimeSub) send(topic, event string, payload any) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	ref := s.nextRef()
	msg := phxMessage{Topic: topic, Event: event, Payload: b, Ref: &ref}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return ref, s.conn.WriteJSON(msg)
}

// join sends phx_join and waits for its reply.
func (s *realtimeSub) join(ctx context.Context, token string) error {
	payload := map[string]any{
		"config": map[string]any{
			"broadcast": map[string]any{"self": false},
			"presence":  map[string]any{"key": ""},
			"postgres_changes": []map[string]string{
				{"event": changeTypeInsert, "schema": "public", "table": "posts"},
			},
		},
	}
	if token != "" {
		payload["access_token"] = token
	}

	ref, err := s.send(realtimeTopic, eventJoin, payload)
	if err != nil {
		return fmt.Errorf("realtime join: %w", err)
	}

	deadline := time.Now().Add(joinReplyTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = s.conn.SetReadDeadline(deadline)
	defer func() { _ = s.conn.SetReadDeadline(time.Time{}) }()

	for {
		var msg phxMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("realtime join: %w", err)
		}
		if msg.Event != eventReply || msg.Ref == nil || *msg.Ref != ref {
			continue
		}
		var reply phxReply
		if err := json.Unmarshal(msg.Payload, &reply); err != nil {
			return fmt.Errorf("realtime join: %w", err)
		}
		if reply.Status != "ok" {
			return fmt.Errorf("realtime join rejected: %s", string(reply.Response))
		}
		return nil
	}
}

func (s *realtimeSub) pushToken(token string) {
	if s.isClosed() {
		return
	}
	if _, err := s.send(realtimeTopic, eventAccessToken, map[string]string{"access_token": token}); err != nil {
		s.log.Warn(context.Background(), "realtime token push failed", "error", err)
	}
}

func (s *realtimeSub) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *realtimeSub) readLoop() {
	defer close(s.done)
	for {
		var msg phxMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if !s.isClosed() {
				s.log.Warn(context.Background(), "realtime connection lost", "error", err)
			}
			return
		}
		if msg.Topic != realtimeTopic || msg.Event != eventChanges {
			continue
		}

		var cp changesPayload
		if err := json.Unmarshal(msg.Payload, &cp); err != nil {
			s.log.Warn(context.Background(), "realtime payload decode failed", "error", err)
			continue
		}
		if cp.Data.Type != changeTypeInsert || cp.Data.Table != "posts" {
			continue
		}

		var p models.Post
		if err := json.Unmarshal(cp.Data.Record, &p); err != nil {
			s.log.Warn(context.Background(), "realtime record decode failed", "error", err)
			continue
		}
		s.deliver(p)
	}
}

// deliver runs the callback unless the subscription is closed. Unsubscribe
// waits for an in-flight delivery to finish, so the callback must not call
// Unsubscribe itself.
func (s *realtimeSub) deliver(p models.Post) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.fn(p)
}

func (s *realtimeSub) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.send(heartbeatTopic, eventHeartbeat, map[string]any{}); err != nil {
				s.log.Debug(context.Background(), "heartbeat send failed", "error", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

func (s *realtimeSub) Unsubscribe() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		if s.unsubAuth != nil {
			s.unsubAuth()
		}
		close(s.stopChan)

		_, _ = s.send(realtimeTopic, eventLeave, map[string]any{})
		_ = s.conn.Close()
		<-s.done
	})
}
