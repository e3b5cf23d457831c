package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/connecthub/internal/client/backend"
	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/common"
)

// ---- fake auth ----

type fakeAuth struct {
	mu        sync.Mutex
	session   *models.Session
	listeners map[int]func(models.AuthEvent)
	next      int

	SignInErr  error
	SignUpErr  error
	SignUpNil  bool
	SignOutErr error
	SessionErr error

	LastEmail    string
	LastPassword string
	LastName     string
}

func newFakeAuth(initial *models.Session) *fakeAuth {
	return &fakeAuth{session: initial, listeners: map[int]func(models.AuthEvent){}}
}

func sessionFor(id, email string) *models.Session {
	return &models.Session{AccessToken: "tok-" + id, User: models.SessionUser{ID: id, Email: email}}
}

func (f *fakeAuth) emit(kind models.AuthEventKind, s *models.Session) {
	f.mu.Lock()
	f.session = s
	fns := make([]func(models.AuthEvent), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(models.AuthEvent{Kind: kind, Session: s})
	}
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	f.LastEmail, f.LastPassword = email, password
	err := f.SignInErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s := sessionFor("id-"+email, email)
	f.emit(models.AuthSignedIn, s)
	return s, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password, name string) (*models.Session, error) {
	f.mu.Lock()
	f.LastEmail, f.LastPassword, f.LastName = email, password, name
	err, pending := f.SignUpErr, f.SignUpNil
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, nil
	}
	s := sessionFor("id-"+email, email)
	s.User.Metadata = map[string]any{"name": name}
	f.emit(models.AuthSignedIn, s)
	return s, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.emit(models.AuthSignedOut, nil)
	return f.SignOutErr
}

func (f *fakeAuth) Session(ctx context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.SessionErr
}

func (f *fakeAuth) OnAuthStateChange(fn func(models.AuthEvent)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.listeners[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeAuth) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return ""
	}
	return f.session.AccessToken
}

func (f *fakeAuth) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

var _ backend.Auth = (*fakeAuth)(nil)

// ---- fake store ----

type fakeStore struct {
	mu sync.Mutex

	identities map[string]models.Identity
	posts      []models.Post
	count      int

	// getGate, when set, blocks GetIdentity until it is closed.
	getGate chan struct{}
	// getStarted is signalled when GetIdentity is entered.
	getStarted chan struct{}

	GetErr    error
	InsertErr error
	UpdateErr error
	ListErr   error
	ByAuthErr error
	CountErr  error
	PostErr   error

	GetCalls    int
	InsertCalls int
	UpdateCalls int
	ListCalls   int

	LastUpdate  models.IdentityUpdate
	LastOrder   models.FeedOrder
	LastLimit   int
	LastNewPost models.NewPost
	Inserted    []models.Post
}

func newFakeStore() *fakeStore {
	return &fakeStore{identities: map[string]models.Identity{}}
}

func (s *fakeStore) put(id models.Identity) {
	s.mu.Lock()
	s.identities[id.ID] = id
	s.mu.Unlock()
}

func (s *fakeStore) setPosts(posts []models.Post) {
	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
}

func (s *fakeStore) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	s.mu.Lock()
	s.GetCalls++
	gate, started := s.getGate, s.getStarted
	s.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	ident, ok := s.identities[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &ident, nil
}

func (s *fakeStore) InsertIdentity(ctx context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InsertCalls++
	if s.InsertErr != nil {
		return s.InsertErr
	}
	s.identities[identity.ID] = *identity
	return nil
}

func (s *fakeStore) UpdateIdentity(ctx context.Context, id string, upd models.IdentityUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++
	s.LastUpdate = upd
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	ident, ok := s.identities[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.identities[id] = upd.Apply(ident)
	return nil
}

func (s *fakeStore) ListFeed(ctx context.Context, order models.FeedOrder, limit int) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	s.LastOrder, s.LastLimit = order, limit
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := append([]models.Post(nil), s.posts...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ByAuthErr != nil {
		return nil, s.ByAuthErr
	}
	var out []models.Post
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CountErr != nil {
		return 0, s.CountErr
	}
	return s.count, nil
}

func (s *fakeStore) InsertPost(ctx context.Context, post models.NewPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastNewPost = post
	if s.PostErr != nil {
		return s.PostErr
	}
	s.Inserted = append(s.Inserted, models.Post{
		ID:           "p" + post.Content,
		Content:      post.Content,
		AuthorID:     post.AuthorID,
		AuthorName:   post.AuthorName,
		AuthorAvatar: post.AuthorAvatar,
	})
	return nil
}

func (s *fakeStore) calls() (get, insert, update, list int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.GetCalls, s.InsertCalls, s.UpdateCalls, s.ListCalls
}

var _ backend.Store = (*fakeStore)(nil)

// ---- fake realtime ----

type fakeEvents struct {
	mu       sync.Mutex
	fn       func(models.Post)
	subs     int
	unsubs   int
	SubErr   error
	LastSubs []*fakeSub
}

type fakeSub struct {
	ev   *fakeEvents
	once sync.Once
}

func (s *fakeSub) Unsubscribe() {
	s.once.Do(func() {
		s.ev.mu.Lock()
		s.ev.fn = nil
		s.ev.unsubs++
		s.ev.mu.Unlock()
	})
}

func (e *fakeEvents) SubscribePostInserts(ctx context.Context, fn func(models.Post)) (backend.Subscription, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.SubErr != nil {
		return nil, e.SubErr
	}
	e.fn = fn
	e.subs++
	sub := &fakeSub{ev: e}
	e.LastSubs = append(e.LastSubs, sub)
	return sub, nil
}

// push delivers p to the active subscriber, if any. It reports whether a
// subscriber received it.
func (e *fakeEvents) push(p models.Post) bool {
	e.mu.Lock()
	fn := e.fn
	e.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(p)
	return true
}

func (e *fakeEvents) counts() (subs, unsubs int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subs, e.unsubs
}

var _ backend.PostEvents = (*fakeEvents)(nil)
