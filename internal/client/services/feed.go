package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/connecthub/internal/client/backend"
	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/dmitrijs2005/connecthub/internal/logging"
)

// ErrFeedNotMounted is returned by Refresh when the feed is not mounted.
var ErrFeedNotMounted = errors.New("feed is not mounted")

// FeedEventKind names a feed change.
type FeedEventKind int

const (
	FeedLoading FeedEventKind = iota
	FeedLoaded
	FeedPushed
	FeedCleared
)

// FeedEvent is delivered to OnChange observers. Post is set for FeedPushed.
type FeedEvent struct {
	Kind  FeedEventKind
	Post  *models.Post
	Count int
}

// FeedService keeps a bounded, newest-first post list in sync with the
// backend: an initial query plus realtime inserts.
type FeedService interface {
	Mount(ctx context.Context) error
	Unmount()
	SetOrder(ctx context.Context, order models.FeedOrder) error
	Refresh(ctx context.Context) error
	Posts() []models.Post
	Loading() bool
	Order() models.FeedOrder
	OnChange(fn func(FeedEvent)) (cancel func())
}

type feedService struct {
	posts  backend.Posts
	events backend.PostEvents
	log    logging.Logger
	limit  int

	mu      sync.Mutex
	order   models.FeedOrder
	list    []models.Post
	loading bool
	mounted bool
	// failed is set while the last load of this mount returned an error.
	failed bool
	// gen changes on every mount and unmount; results carrying an older
	// generation are dropped.
	gen uint64
	sub backend.Subscription

	observers map[int]func(FeedEvent)
	nextObs   int
}

// NewFeedService constructs a FeedService. events may be nil, in which case
// the feed only changes on load and refresh. limit <= 0 means
// common.DefaultFeedLimit.
func NewFeedService(posts backend.Posts, events backend.PostEvents, log logging.Logger, limit int) FeedService {
	if limit <= 0 {
		limit = common.DefaultFeedLimit
	}
	return &feedService{
		posts:     posts,
		events:    events,
		log:       log.With("component", "feed"),
		limit:     limit,
		order:     models.FeedOrderRecent,
		observers: make(map[int]func(FeedEvent)),
	}
}

// Mount subscribes to inserts and loads the feed. The subscription is set up
// first so no insert committed during the load is missed. A subscription
// failure is logged and the feed works without push. Mounting a mounted feed
// whose last load failed retries the load.
func (f *feedService) Mount(ctx context.Context) error {
	f.mu.Lock()
	if f.mounted {
		retry := f.failed
		f.mu.Unlock()
		if retry {
			return f.Refresh(ctx)
		}
		return nil
	}
	f.mounted = true
	f.failed = false
	f.gen++
	g := f.gen
	f.loading = true
	f.mu.Unlock()

	f.notify(FeedEvent{Kind: FeedLoading})

	if f.events != nil {
		sub, err := f.events.SubscribePostInserts(ctx, func(p models.Post) { f.push(g, p) })
		if err != nil {
			f.log.Warn(ctx, "realtime subscribe failed", "error", err)
		} else {
			f.mu.Lock()
			if f.gen != g {
				f.mu.Unlock()
				sub.Unsubscribe()
				return nil
			}
			f.sub = sub
			f.mu.Unlock()
		}
	}

	return f.load(ctx, g)
}

// Unmount stops the subscription and forgets the list. In-flight loads
// complete into nothing.
func (f *feedService) Unmount() {
	f.mu.Lock()
	if !f.mounted {
		f.mu.Unlock()
		return
	}
	f.mounted = false
	f.failed = false
	f.gen++
	sub := f.sub
	f.sub = nil
	f.list = nil
	f.loading = false
	f.mu.Unlock()

	// Unsubscribe waits for a running push callback, which takes f.mu.
	if sub != nil {
		sub.Unsubscribe()
	}
	f.notify(FeedEvent{Kind: FeedCleared})
}

// SetOrder switches the ordering mode. A mounted feed is re-mounted.
func (f *feedService) SetOrder(ctx context.Context, order models.FeedOrder) error {
	f.mu.Lock()
	if f.order == order {
		f.mu.Unlock()
		return nil
	}
	f.order = order
	mounted := f.mounted
	f.mu.Unlock()

	if !mounted {
		return nil
	}
	f.Unmount()
	return f.Mount(ctx)
}

// Refresh re-runs the feed query; the result replaces the list.
func (f *feedService) Refresh(ctx context.Context) error {
	f.mu.Lock()
	if !f.mounted {
		f.mu.Unlock()
		return ErrFeedNotMounted
	}
	g := f.gen
	f.loading = true
	f.mu.Unlock()

	f.notify(FeedEvent{Kind: FeedLoading})
	return f.load(ctx, g)
}

func (f *feedService) load(ctx context.Context, g uint64) error {
	f.mu.Lock()
	order := f.order
	f.mu.Unlock()

	posts, err := f.posts.ListFeed(ctx, order, f.limit)

	f.mu.Lock()
	if f.gen != g {
		f.mu.Unlock()
		return nil
	}
	f.loading = false
	f.failed = err != nil
	if err != nil {
		n := len(f.list)
		f.mu.Unlock()
		f.log.Error(ctx, "feed load failed", "order", string(order), "error", err)
		f.notify(FeedEvent{Kind: FeedLoaded, Count: n})
		return err
	}
	f.list = dedupe(posts, f.limit)
	n := len(f.list)
	f.mu.Unlock()

	f.log.Debug(ctx, "feed loaded", "posts", n, "order", string(order))
	f.notify(FeedEvent{Kind: FeedLoaded, Count: n})
	return nil
}

// push merges a realtime insert: a new id goes first, a known id is
// replaced where it stands.
func (f *feedService) push(g uint64, p models.Post) {
	f.mu.Lock()
	if f.gen != g || !f.mounted {
		f.mu.Unlock()
		return
	}
	f.list = mergePushed(f.list, p, f.limit)
	n := len(f.list)
	f.mu.Unlock()

	f.notify(FeedEvent{Kind: FeedPushed, Post: &p, Count: n})
}

func mergePushed(list []models.Post, p models.Post, limit int) []models.Post {
	for i := range list {
		if list[i].ID == p.ID {
			out := append([]models.Post(nil), list...)
			out[i] = p
			return out
		}
	}
	out := make([]models.Post, 0, len(list)+1)
	out = append(out, p)
	out = append(out, list...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func dedupe(posts []models.Post, limit int) []models.Post {
	seen := make(map[string]struct{}, len(posts))
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (f *feedService) Posts() []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Post(nil), f.list...)
}

func (f *feedService) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *feedService) Order() models.FeedOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.order
}

func (f *feedService) OnChange(fn func(FeedEvent)) (cancel func()) {
	f.mu.Lock()
	id := f.nextObs
	f.nextObs++
	f.observers[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.observers, id)
		f.mu.Unlock()
	}
}

func (f *feedService) notify(ev FeedEvent) {
	f.mu.Lock()
	fns := make([]func(FeedEvent), 0, len(f.observers))
	for _, fn := range f.observers {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
