package payment

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls request listing.
type Filter struct {
	UserID *uuid.UUID
	Status *Status
}

// Repository defines payment request persistence. Update applies a
// compare-and-set on the request version so a request can only be decided
// once under concurrency.
type Repository interface {
	Create(ctx context.Context, request *Request) error
	GetByID(ctx context.Context, requestID uuid.UUID) (*Request, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Request, error)
	Update(ctx context.Context, request *Request) error
}
