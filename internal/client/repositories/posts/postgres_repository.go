package posts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/dbx"
)

const selectColumns = `p.id, p.content, p.author_id,
		   COALESCE(u.name, p.author_name), COALESCE(u.avatar_url, p.author_avatar),
		   p.created_at, p.updated_at, p.likes_count, p.comments_count
		 FROM posts p LEFT JOIN users u ON u.id = p.author_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]models.Post, error) {
	query := `SELECT ` + selectColumns + `
		 ORDER BY p.created_at DESC
		 LIMIT $1`

	return r.list(ctx, query, limit)
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	query := `SELECT ` + selectColumns + `
		 WHERE p.author_id = $1
		 ORDER BY p.created_at DESC`

	return r.list(ctx, query, authorID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Post, 0)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.AuthorID, &p.AuthorName, &p.AuthorAvatar,
			&p.CreatedAt, &p.UpdatedAt, &p.LikesCount, &p.CommentsCount); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	query := `SELECT COUNT(*) FROM posts WHERE author_id = $1`

	var n int
	if err := r.db.QueryRowContext(ctx, query, authorID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, post models.NewPost) (*models.Post, error) {
	query :=
		`INSERT INTO posts (content, author_id, author_name, author_avatar)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at
		 `

	p := &models.Post{
		Content:      post.Content,
		AuthorID:     post.AuthorID,
		AuthorName:   post.AuthorName,
		AuthorAvatar: post.AuthorAvatar,
	}
	err := r.db.QueryRowContext(ctx, query, post.Content, post.AuthorID, post.AuthorName, post.AuthorAvatar).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}
