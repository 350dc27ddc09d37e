package service

import (
	"context"
	"strings"

	"github.com/chepyr/task-tracker-cli/internal/db"
	"github.com/chepyr/task-tracker-cli/internal/models"
)

// TaskService applies the rules that sit above any single repository.
//
// Like the repositories, it reports a missing task as a nil result rather
// than an error, and passes *db.PersistenceWarning through beside the result.
type TaskService struct {
	repo db.TaskRepositoryInterface
}

func NewTaskService(repo db.TaskRepositoryInterface) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) AddTask(ctx context.Context, description string) (*models.Task, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &models.ValidationError{Field: "description", Message: "task description cannot be empty"}
	}
	return s.repo.Add(ctx, description)
}

func (s *TaskService) GetTask(ctx context.Context, id int) (*models.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTasks returns every task when status is nil.
func (s *TaskService) ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error) {
	return s.repo.GetAll(ctx, status)
}

// ListTasksByName parses a user supplied filter; "" means no filter.
func (s *TaskService) ListTasksByName(ctx context.Context, status string) ([]*models.Task, error) {
	if strings.TrimSpace(status) == "" {
		return s.ListTasks(ctx, nil)
	}
	parsed, err := models.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	return s.ListTasks(ctx, &parsed)
}

func (s *TaskService) RemoveTask(ctx context.Context, id int) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) CompleteTask(ctx context.Context, id int) (*models.Task, error) {
	return s.transition(ctx, id, (*models.Task).MarkDone)
}

func (s *TaskService) BeginTask(ctx context.Context, id int) (*models.Task, error) {
	return s.transition(ctx, id, (*models.Task).MarkInProgress)
}

func (s *TaskService) ResetTask(ctx context.Context, id int) (*models.Task, error) {
	return s.transition(ctx, id, (*models.Task).MarkToDo)
}

// transition fetches, marks and writes back. A task deleted between the
// read and the write comes back as nil from Update, and that is the answer.
func (s *TaskService) transition(ctx context.Context, id int, mark func(*models.Task)) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if task == nil {
		return nil, err
	}
	mark(task)
	return s.repo.Update(ctx, task)
}
