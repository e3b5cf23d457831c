package backend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/connecthub/internal/dbx"
)

// PostgresStore implements Store over a direct Postgres connection using the
// same schema the data API exposes.
type PostgresStore struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewPostgresStore(db *sql.DB, repos repomanager.RepositoryManager) *PostgresStore {
	return &PostgresStore{db: db, repos: repos}
}

func (s *PostgresStore) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	identity, err := s.repos.Identities(s.db).Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return identity, nil
}

func (s *PostgresStore) InsertIdentity(ctx context.Context, identity *models.Identity) error {
	if err := s.repos.Identities(s.db).Insert(ctx, identity); err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateIdentity(ctx context.Context, id string, upd models.IdentityUpdate) error {
	if upd.Empty() {
		return nil
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Identities(tx).Update(ctx, id, upd)
	})
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFeed(ctx context.Context, order models.FeedOrder, limit int) ([]models.Post, error) {
	posts, err := s.repos.Posts(s.db).ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	posts, err := s.repos.Posts(s.db).ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	n, err := s.repos.Posts(s.db).CountByAuthor(ctx, authorID)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) InsertPost(ctx context.Context, post models.NewPost) error {
	if _, err := s.repos.Posts(s.db).Insert(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}
