package posts

import (
	"context"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
)

// Repository describes post reads and writes.
type Repository interface {
	// ListRecent returns at most limit posts, newest first.
	ListRecent(ctx context.Context, limit int) ([]models.Post, error)

	// ListByAuthor returns every post of the author, newest first.
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)

	// CountByAuthor returns the exact number of posts of the author.
	CountByAuthor(ctx context.Context, authorID string) (int, error)

	// Insert stores a post and returns the stored row.
	Insert(ctx context.Context, post models.NewPost) (*models.Post, error)
}
