package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/connecthub/internal/client/backend"
	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/dmitrijs2005/connecthub/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func post(id string, minutesAgo int) models.Post {
	return models.Post{
		ID:         id,
		Content:    "content " + id,
		AuthorID:   "u1",
		AuthorName: "Alice",
		CreatedAt:  feedBase.Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

func ids(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

// gatedPosts blocks ListFeed until release is closed.
type gatedPosts struct {
	*fakeStore
	started chan struct{}
	release chan struct{}
}

func (g *gatedPosts) ListFeed(ctx context.Context, order models.FeedOrder, limit int) ([]models.Post, error) {
	g.started <- struct{}{}
	<-g.release
	return g.fakeStore.ListFeed(ctx, order, limit)
}

func newTestFeed(t *testing.T, store *fakeStore, events *fakeEvents, limit int) *feedService {
	t.Helper()
	var ev backend.PostEvents
	if events != nil {
		ev = events
	}
	f := NewFeedService(store, ev, logging.Nop(), limit).(*feedService)
	t.Cleanup(f.Unmount)
	return f
}

func TestFeed_Mount_LoadsAndSubscribes(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("b", 1), post("a", 5)})
	events := &fakeEvents{}
	f := newTestFeed(t, store, events, 10)

	assert.False(t, f.Loading())
	require.NoError(t, f.Mount(context.Background()))

	assert.Equal(t, []string{"b", "a"}, ids(f.Posts()))
	assert.False(t, f.Loading())
	assert.Equal(t, models.FeedOrderRecent, store.LastOrder)
	assert.Equal(t, 10, store.LastLimit)
	subs, _ := events.counts()
	assert.Equal(t, 1, subs)

	// second mount is a no-op
	require.NoError(t, f.Mount(context.Background()))
	subs, _ = events.counts()
	assert.Equal(t, 1, subs)
}

func TestFeed_DefaultLimit(t *testing.T) {
	store := newFakeStore()
	f := newTestFeed(t, store, nil, 0)
	require.NoError(t, f.Mount(context.Background()))
	assert.Equal(t, common.DefaultFeedLimit, store.LastLimit)
}

func TestFeed_PushGoesToTopRegardlessOfTimestamp(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("b", 1), post("a", 5)})
	events := &fakeEvents{}
	f := newTestFeed(t, store, events, 10)
	require.NoError(t, f.Mount(context.Background()))

	old := post("old", 60*24)
	require.True(t, events.push(old))

	got := f.Posts()
	require.Len(t, got, 3)
	assert.Equal(t, "old", got[0].ID)
}

func TestFeed_PushKnownIdUpdatesInPlace(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("b", 1), post("a", 5)})
	events := &fakeEvents{}
	f := newTestFeed(t, store, events, 10)
	require.NoError(t, f.Mount(context.Background()))

	upd := post("a", 5)
	upd.AuthorName = "Alicia"
	events.push(upd)

	got := f.Posts()
	assert.Equal(t, []string{"b", "a"}, ids(got))
	assert.Equal(t, "Alicia", got[1].AuthorName)
}

func TestFeed_RefreshAfterPushKeepsSingleCopy(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("a", 5)})
	events := &fakeEvents{}
	f := newTestFeed(t, store, events, 10)
	require.NoError(t, f.Mount(context.Background()))

	p := post("new", 0)
	events.push(p)
	store.setPosts([]models.Post{p, post("a", 5)})

	require.NoError(t, f.Refresh(context.Background()))
	assert.Equal(t, []string{"new", "a"}, ids(f.Posts()))
}

func TestFeed_RefreshDedupesServerList(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("a", 1), post("a", 1), post("b", 2)})
	f := newTestFeed(t, store, &fakeEvents{}, 10)
	require.NoError(t, f.Mount(context.Background()))
	assert.Equal(t, []string{"a", "b"}, ids(f.Posts()))
}

func TestFeed_CappedAtLimit(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("c", 1), post("b", 2), post("a", 3)})
	events := &fakeEvents{}
	f := newTestFeed(t, store, events, 3)
	require.NoError(t, f.Mount(context.Background()))

	events.push(post("d", 0))
	assert.Equal(t, []string{"d", "c", "b"}, ids(f.Posts()))
}

func TestFeed_LoadErrorKeepsPreviousList(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("a", 1)})
	f := newTestFeed(t, store, &fakeEvents{}, 10)
	require.NoError(t, f.Mount(context.Background()))

	store.mu.Lock()
	store.ListErr = common.ErrUnavailable
	store.mu.Unlock()

	err := f.Refresh(context.Background())
	assert.ErrorIs(t, err, common.ErrUnavailable)
	assert.Equal(t, []string{"a"}, ids(f.Posts()))
	assert.False(t, f.Loading())
}

func TestFeed_FirstLoadErrorLeavesEmpty(t *testing.T) {
	store := newFakeStore()
	store.ListErr = errors.New("boom")
	f := newTestFeed(t, store, &fakeEvents{}, 10)

	assert.Error(t, f.Mount(context.Background()))
	assert.Empty(t, f.Posts())
}

func TestFeed_MountRetriesAfterFailedLoad(t *testing.T) {
	store := newFakeStore()
	store.ListErr = errors.New("boom")
	events := &fakeEvents{}
	f := newTestFeed(t, store, events, 10)

	require.Error(t, f.Mount(context.Background()))

	store.mu.Lock()
	store.ListErr = nil
	store.posts = []models.Post{post("a", 1)}
	store.mu.Unlock()

	require.NoError(t, f.Mount(context.Background()))
	assert.Equal(t, []string{"a"}, ids(f.Posts()))
	subs, _ := events.counts()
	assert.Equal(t, 1, subs, "retry reuses the subscription")

	// a healthy feed is not reloaded
	require.NoError(t, f.Mount(context.Background()))
	_, _, _, list := store.calls()
	assert.Equal(t, 2, list)
}

func TestFeed_SubscribeErrorStillLoads(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("a", 1)})
	f := newTestFeed(t, store, &fakeEvents{SubErr: common.ErrUnavailable}, 10)

	require.NoError(t, f.Mount(context.Background()))
	assert.Equal(t, []string{"a"}, ids(f.Posts()))
}

func TestFeed_UnmountStopsPushUpdates(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("a", 1)})
	events := &fakeEvents{}
	f := newTestFeed(t, store, events, 10)
	require.NoError(t, f.Mount(context.Background()))

	var mu sync.Mutex
	var kinds []FeedEventKind
	f.OnChange(func(ev FeedEvent) {
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	})

	fn := events.fn
	f.Unmount()

	_, unsubs := events.counts()
	assert.Equal(t, 1, unsubs)
	assert.Empty(t, f.Posts())

	// a push that raced the unsubscribe
	fn(post("late", 0))
	assert.Empty(t, f.Posts())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []FeedEventKind{FeedCleared}, kinds)
}

func TestFeed_LateFetchAfterUnmountDropped(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("a", 1)})
	gp := &gatedPosts{fakeStore: store, started: make(chan struct{}, 1), release: make(chan struct{})}
	f := NewFeedService(gp, &fakeEvents{}, logging.Nop(), 10).(*feedService)

	done := make(chan error, 1)
	go func() { done <- f.Mount(context.Background()) }()
	<-gp.started

	f.Unmount()
	close(gp.release)
	require.NoError(t, <-done)

	assert.Empty(t, f.Posts())
	assert.False(t, f.Loading())
}

func TestFeed_SetOrderRemounts(t *testing.T) {
	store := newFakeStore()
	store.setPosts([]models.Post{post("a", 1)})
	events := &fakeEvents{}
	f := newTestFeed(t, store, events, 10)
	require.NoError(t, f.Mount(context.Background()))

	require.NoError(t, f.SetOrder(context.Background(), models.FeedOrderTrending))
	assert.Equal(t, models.FeedOrderTrending, f.Order())
	assert.Equal(t, models.FeedOrderTrending, store.LastOrder)
	subs, unsubs := events.counts()
	assert.Equal(t, 2, subs)
	assert.Equal(t, 1, unsubs)
	assert.Equal(t, []string{"a"}, ids(f.Posts()))

	// same order: nothing happens
	_, _, _, list0 := store.calls()
	require.NoError(t, f.SetOrder(context.Background(), models.FeedOrderTrending))
	_, _, _, list1 := store.calls()
	assert.Equal(t, list0, list1)
}

func TestFeed_SetOrderUnmounted(t *testing.T) {
	store := newFakeStore()
	f := newTestFeed(t, store, &fakeEvents{}, 10)
	require.NoError(t, f.SetOrder(context.Background(), models.FeedOrderTrending))
	_, _, _, list := store.calls()
	assert.Zero(t, list)
}

func TestFeed_RefreshNotMounted(t *testing.T) {
	f := newTestFeed(t, newFakeStore(), &fakeEvents{}, 10)
	assert.ErrorIs(t, f.Refresh(context.Background()), ErrFeedNotMounted)
}

func TestFeed_OnChangeEvents(t *testing.T) {
	store := newFakeStore()
	events := &fakeEvents{}
	f := newTestFeed(t, store, events, 10)

	var got []string
	cancel := f.OnChange(func(ev FeedEvent) {
		s := fmt.Sprint(ev.Kind, ":", ev.Count)
		if ev.Post != nil {
			s += ":" + ev.Post.ID
		}
		got = append(got, s)
	})
	require.NoError(t, f.Mount(context.Background()))
	events.push(post("x", 0))
	cancel()
	events.push(post("y", 0))

	assert.Equal(t, []string{"0:0", "1:0", "2:1:x"}, got)
}

func TestMergePushed_DoesNotMutateInput(t *testing.T) {
	in := []models.Post{post("a", 1), post("b", 2)}
	upd := post("b", 2)
	upd.Content = "edited"

	out := mergePushed(in, upd, 10)
	assert.Equal(t, "edited", out[1].Content)
	assert.Equal(t, "content b", in[1].Content)
}
