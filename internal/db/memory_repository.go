package db

import (
	"context"
	"slices"
	"sync"

	"github.com/chepyr/task-tracker-cli/internal/models"
)

// MemoryTaskRepository keeps tasks for the lifetime of the process only.
type MemoryTaskRepository struct {
	tasks  map[int]*models.Task
	order  []int
	nextID int
	mutex  sync.Mutex
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks:  make(map[int]*models.Task),
		nextID: 1,
	}
}

func (r *MemoryTaskRepository) Add(ctx context.Context, description string) (*models.Task, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	task := models.NewTask(r.nextID, description)
	r.nextID++
	r.tasks[task.ID] = task
	r.order = append(r.order, task.ID)
	return task.Clone(), nil
}

func (r *MemoryTaskRepository) GetAll(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	tasks := make([]*models.Task, 0, len(r.order))
	for _, id := range r.order {
		task := r.tasks[id]
		if matchesStatus(task, status) {
			tasks = append(tasks, task.Clone())
		}
	}
	return tasks, nil
}

func (r *MemoryTaskRepository) GetByID(ctx context.Context, id int) (*models.Task, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.tasks[id].Clone(), nil
}

// Update copies description and status onto the stored task and stamps
// UpdatedAt itself; the caller's ID, CreatedAt and UpdatedAt are ignored.
func (r *MemoryTaskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored, exists := r.tasks[task.ID]
	if !exists {
		return nil, nil
	}
	stored.Description = task.Description
	stored.Status = task.Status
	stored.Touch(models.Now())
	return stored.Clone(), nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, id int) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.tasks[id]; !exists {
		return false, nil
	}
	delete(r.tasks, id)
	r.order = slices.DeleteFunc(r.order, func(v int) bool { return v == id })
	return true, nil
}

// snapshot returns copies of all tasks in insertion order and the next id.
func (r *MemoryTaskRepository) snapshot() ([]*models.Task, int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	tasks := make([]*models.Task, 0, len(r.order))
	for _, id := range r.order {
		tasks = append(tasks, r.tasks[id].Clone())
	}
	return tasks, r.nextID
}

// restore replaces the whole state. Tasks must have unique positive ids.
func (r *MemoryTaskRepository) restore(tasks []*models.Task, nextID int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.tasks = make(map[int]*models.Task, len(tasks))
	r.order = make([]int, 0, len(tasks))
	for _, task := range tasks {
		r.tasks[task.ID] = task.Clone()
		r.order = append(r.order, task.ID)
		if task.ID >= nextID {
			nextID = task.ID + 1
		}
	}
	r.nextID = max(nextID, 1)
}
