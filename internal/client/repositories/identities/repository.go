package identities

import (
	"context"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
)

// Repository describes identity reads and writes.
type Repository interface {
	// Get returns the identity with the given id or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Identity, error)

	// Insert stores a new identity row.
	Insert(ctx context.Context, identity *models.Identity) error

	// Update applies the set fields of upd to the row with the given id.
	// common.ErrorNotFound is returned when no row matched.
	Update(ctx context.Context, id string, upd models.IdentityUpdate) error
}
