package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines catalog persistence. The catalog is read-only to the
// task lifecycle; writes happen through admin tooling.
type Repository interface {
	Create(ctx context.Context, service *Service) error
	GetByID(ctx context.Context, serviceID uuid.UUID) (*Service, error)
	List(ctx context.Context, limit, offset int) ([]*Service, error)
}
