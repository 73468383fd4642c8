package task

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls task listing.
type Filter struct {
	Status        *Status
	CreatorID     *uuid.UUID
	AssignedVLEID *uuid.UUID
	ServiceID     *uuid.UUID
}

// Repository defines task persistence. Update applies a compare-and-set on
// the task version: a stale in-memory copy fails with ErrNoLongerAvailable
// instead of overwriting a concurrent writer.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, taskID uuid.UUID) (*Task, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
}
