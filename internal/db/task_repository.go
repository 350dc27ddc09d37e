package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/chepyr/task-tracker-cli/internal/models"
)

// TaskRepository stores tasks in a SQL database (sqlite3 or postgres).
// Ids come from the task_counter row so deleted ids are never handed out again.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one row. An unknown status yields the partially filled
// task together with a ValidationError.
func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var status string
	if err := row.Scan(&task.ID, &task.Description, &status, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()

	s, err := models.ParseTaskStatus(status)
	if err != nil {
		return task, fmt.Errorf("task %d: %w", task.ID, err)
	}
	task.Status = s
	return task, nil
}

func (r *TaskRepository) Add(ctx context.Context, description string) (*models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var id int
	if err := tx.QueryRowContext(ctx, `SELECT next_id FROM task_counter WHERE id = 1`).Scan(&id); err != nil {
		return nil, fmt.Errorf("read task counter: %w", err)
	}

	task := models.NewTask(id, description)
	query := `INSERT INTO tasks (id, description, status, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(
		ctx, query, task.ID, task.Description, task.Status.String(), task.CreatedAt, task.UpdatedAt); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE task_counter SET next_id = $1 WHERE id = 1`, id+1); err != nil {
		return nil, fmt.Errorf("advance task counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return task, nil
}

// GetAll skips rows whose status cannot be parsed instead of failing the
// listing. The skipped rows come back as a *PersistenceWarning beside the
// readable tasks.
func (r *TaskRepository) GetAll(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error) {
	query := `SELECT id, description, status, created_at, updated_at FROM tasks`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, status.String())
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*models.Task{}
	var skipped []error
	for rows.Next() {
		task, err := scanTask(rows)
		if models.IsValidationError(err) {
			log.Printf("warning: skipping stored task: %v", err)
			skipped = append(skipped, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		return tasks, &PersistenceWarning{Op: "list", Path: "tasks", Err: errors.Join(skipped...)}
	}
	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int) (*models.Task, error) {
	query := `SELECT id, description, status, created_at, updated_at FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if models.IsValidationError(err) {
		log.Printf("warning: %v", err)
		return nil, &PersistenceWarning{Op: "get", Path: "tasks", Err: err}
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `SELECT id, description, status, created_at, updated_at FROM tasks WHERE id = $1`
	stored, err := scanTask(tx.QueryRowContext(ctx, query, task.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	// an unreadable stored status is overwritten by the caller's valid one
	if err != nil && !models.IsValidationError(err) {
		return nil, err
	}

	stored.Description = task.Description
	stored.Status = task.Status
	stored.Touch(models.Now())

	query = `UPDATE tasks SET description = $1, status = $2, updated_at = $3 WHERE id = $4`
	if _, err := tx.ExecContext(
		ctx, query, stored.Description, stored.Status.String(), stored.UpdatedAt, stored.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
