package backend

import (
	"context"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
)

// Identities is the backend "users" collection.
type Identities interface {
	// GetIdentity returns common.ErrorNotFound when no row exists.
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)
	InsertIdentity(ctx context.Context, identity *models.Identity) error
	// UpdateIdentity applies the set fields of upd to the row keyed by id.
	UpdateIdentity(ctx context.Context, id string, upd models.IdentityUpdate) error
}

// Posts is the backend "posts" collection.
type Posts interface {
	// ListFeed returns at most limit posts joined with the author's current
	// name and avatar, newest first. FeedOrderTrending uses the same order.
	ListFeed(ctx context.Context, order models.FeedOrder, limit int) ([]models.Post, error)
	// ListByAuthor returns the author's posts, newest first.
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	// CountByAuthor returns the exact number of the author's posts.
	CountByAuthor(ctx context.Context, authorID string) (int, error)
	InsertPost(ctx context.Context, post models.NewPost) error
}

// Store combines both collections.
type Store interface {
	Identities
	Posts
}

// Subscription is a live push stream.
type Subscription interface {
	// Unsubscribe stops delivery. No callback runs after it returns.
	Unsubscribe()
}

// PostEvents delivers inserted posts as they are committed.
type PostEvents interface {
	SubscribePostInserts(ctx context.Context, fn func(models.Post)) (Subscription, error)
}
