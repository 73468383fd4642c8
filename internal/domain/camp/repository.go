package camp

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls camp listing.
type Filter struct {
	Status *Status
	VLEID  *uuid.UUID
}

// Repository defines camp persistence. Update applies a compare-and-set on
// the camp version so a payout can only run once.
type Repository interface {
	Create(ctx context.Context, camp *Camp) error
	GetByID(ctx context.Context, campID uuid.UUID) (*Camp, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Camp, error)
	Update(ctx context.Context, camp *Camp) error
}
