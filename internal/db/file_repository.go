package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chepyr/task-tracker-cli/internal/models"
	"github.com/google/uuid"
)

// FileTaskRepository keeps the task list in memory and rewrites the whole
// JSON file after every successful mutation.
type FileTaskRepository struct {
	mem          taskStore
	path         string
	loadWarnings []error
	// corrupt is set when the file on disk could not be parsed; it is moved
	// aside before the first snapshot replaces it.
	corrupt bool
}

// taskStore is the in-memory state behind a FileTaskRepository.
type taskStore interface {
	TaskRepositoryInterface
	snapshot() ([]*models.Task, int)
	restore(tasks []*models.Task, nextID int)
}

// NewFileTaskRepository opens the store at path, creating it when missing.
// Only a store that cannot be created at all is reported as an error; a
// damaged file degrades to warnings (see LoadWarnings).
func NewFileTaskRepository(path string) (*FileTaskRepository, error) {
	if path == "" {
		return nil, errors.New("task file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	r := &FileTaskRepository{mem: NewMemoryTaskRepository(), path: path}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadWarnings lists the problems found while reading the file.
func (r *FileTaskRepository) LoadWarnings() []error {
	return r.loadWarnings
}

func (r *FileTaskRepository) load() error {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := r.persist(); err != nil {
			return fmt.Errorf("create task file: %w", err)
		}
		return nil
	}
	if err != nil {
		r.degrade(&PersistenceWarning{Op: "read", Path: r.path, Err: err})
		return nil
	}

	tasks, nextID, warnings, err := decodeSnapshot(data)
	if err != nil {
		r.degrade(&PersistenceWarning{Op: "load", Path: r.path, Err: err})
		return nil
	}
	for _, w := range warnings {
		r.warn(&PersistenceWarning{Op: "load", Path: r.path, Err: w})
	}
	r.mem.restore(tasks, nextID)
	return nil
}

// degrade starts the session empty and keeps the unreadable file for manual recovery.
func (r *FileTaskRepository) degrade(w *PersistenceWarning) {
	r.corrupt = true
	r.warn(w)
	log.Printf("starting with an empty task list; %s is preserved until the next write", r.path)
}

func (r *FileTaskRepository) warn(w *PersistenceWarning) {
	r.loadWarnings = append(r.loadWarnings, w)
	log.Printf("warning: %v", w)
}

func (r *FileTaskRepository) persist() error {
	tasks, nextID := r.mem.snapshot()
	data, err := encodeSnapshot(tasks, nextID)
	if err != nil {
		return err
	}
	if r.corrupt {
		backup := backupPath(r.path)
		err := os.Rename(r.path, backup)
		switch {
		case err == nil:
			log.Printf("moved unreadable task file to %s", backup)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("preserve unreadable file: %w", err)
		}
		r.corrupt = false
	}
	return writeFileAtomic(r.path, data)
}

// backupPath names the copy kept of an unreadable file. Earlier backups are
// never replaced.
func backupPath(path string) string {
	backup := path + ".corrupt"
	if _, err := os.Lstat(backup); errors.Is(err, fs.ErrNotExist) {
		return backup
	}
	return backup + "-" + time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
}

// save persists after a mutation. Failures keep the in-memory change and
// come back as a warning.
func (r *FileTaskRepository) save(op string) error {
	if err := r.persist(); err != nil {
		w := &PersistenceWarning{Op: op, Path: r.path, Err: err}
		log.Printf("warning: %v", w)
		return w
	}
	return nil
}

func (r *FileTaskRepository) Add(ctx context.Context, description string) (*models.Task, error) {
	task, err := r.mem.Add(ctx, description)
	if err != nil {
		return nil, err
	}
	return task, r.save("add")
}

func (r *FileTaskRepository) GetAll(ctx context.Context, status *models.TaskStatus) ([]*models.Task, error) {
	return r.mem.GetAll(ctx, status)
}

func (r *FileTaskRepository) GetByID(ctx context.Context, id int) (*models.Task, error) {
	return r.mem.GetByID(ctx, id)
}

func (r *FileTaskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	updated, err := r.mem.Update(ctx, task)
	if updated == nil || err != nil {
		return nil, err
	}
	return updated, r.save("update")
}

func (r *FileTaskRepository) Delete(ctx context.Context, id int) (bool, error) {
	deleted, err := r.mem.Delete(ctx, id)
	if !deleted || err != nil {
		return false, err
	}
	return true, r.save("delete")
}
