package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/chepyr/task-tracker-cli/internal/models"
)

// TaskRepositoryInterface is the storage contract every backend satisfies.
//
// A missing task is not an error: GetByID and Update return a nil task and
// Delete returns false. A *PersistenceWarning may be returned together with
// a valid result when the in-memory effect happened but the durable write
// did not.
type TaskRepositoryInterface interface {
	Add(ctx context.Context, description string) (*models.Task, error)
	GetAll(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error)
	GetByID(ctx context.Context, id int) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// PersistenceWarning reports a degraded durable read or write whose primary
// effect still took place.
type PersistenceWarning struct {
	Op   string
	Path string
	Err  error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("%s %s: %v", w.Op, w.Path, w.Err)
}

func (w *PersistenceWarning) Unwrap() error {
	return w.Err
}

func IsPersistenceWarning(err error) bool {
	var w *PersistenceWarning
	return errors.As(err, &w)
}

func matchesStatus(task *models.Task, status *models.TaskStatus) bool {
	return status == nil || task.Status == *status
}
