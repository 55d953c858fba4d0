package repo

import (
	"context"
	"errors"

	dom "taskboard/internal/domain"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// TaskRepo stores tasks in insertion order. Implementations assign ids on Create
// and never validate field contents; that is the service's job.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id string) (dom.Task, error)
	List(ctx context.Context) ([]dom.Task, error)
	// Update replaces the stored task that has t.ID.
	Update(ctx context.Context, t dom.Task) (dom.Task, error)
	Delete(ctx context.Context, id string) error
	// Search matches q against title and description, case-insensitively.
	Search(ctx context.Context, q string) ([]dom.Task, error)
	Close() error
}
