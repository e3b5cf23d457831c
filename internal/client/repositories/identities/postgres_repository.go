package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/dmitrijs2005/connecthub/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Identity, error) {
	query :=
		`SELECT id, email, name, bio, avatar_url, created_at FROM users
		 WHERE id = $1
		 `

	identity := &models.Identity{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&identity.ID, &identity.Email, &identity.Name, &identity.Bio, &identity.AvatarURL, &identity.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, identity *models.Identity) error {
	query :=
		`INSERT INTO users (id, email, name, bio, avatar_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		identity.ID, identity.Email, identity.Name, identity.Bio, identity.AvatarURL, identity.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.IdentityUpdate) error {
	query :=
		`UPDATE users SET
		   name = COALESCE($2, name),
		   bio = COALESCE($3, bio),
		   avatar_url = COALESCE($4, avatar_url)
		 WHERE id = $1
		 `

	result, err := r.db.ExecContext(ctx, query, id, upd.Name, upd.Bio, upd.AvatarURL)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
