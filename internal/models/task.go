package models

import (
	"fmt"
	"time"
)

type Task struct {
	ID          int        `json:"id" yaml:"id"`
	Description string     `json:"description" yaml:"description"`
	Status      TaskStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// Now is the clock shared by the entity and every repository.
// The monotonic reading is stripped so stored and reloaded values compare equal.
var Now = func() time.Time {
	return time.Now().UTC().Round(0)
}

// NewTask returns a ToDo task stamped with the current time.
func NewTask(id int, description string) *Task {
	now := Now()
	return &Task{
		ID:          id,
		Description: description,
		Status:      TaskStatusToDo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (t *Task) MarkDone() {
	t.setStatus(TaskStatusDone)
}

func (t *Task) MarkInProgress() {
	t.setStatus(TaskStatusInProgress)
}

func (t *Task) MarkToDo() {
	t.setStatus(TaskStatusToDo)
}

func (t *Task) setStatus(s TaskStatus) {
	t.Status = s
	t.Touch(Now())
}

// Touch sets UpdatedAt. It never moves backwards, so a clock step back
// cannot break UpdatedAt >= CreatedAt.
func (t *Task) Touch(at time.Time) {
	if at.Before(t.UpdatedAt) {
		at = t.UpdatedAt
	}
	if at.Before(t.CreatedAt) {
		at = t.CreatedAt
	}
	t.UpdatedAt = at
}

func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (t *Task) String() string {
	icon := "✗"
	switch t.Status {
	case TaskStatusDone:
		icon = "✓"
	case TaskStatusInProgress:
		icon = "⏳"
	}
	return fmt.Sprintf("[%s] ID: %d - %s (Created: %s, Updated: %s)",
		icon, t.ID, t.Description,
		t.CreatedAt.Local().Format(time.DateTime),
		t.UpdatedAt.Local().Format(time.DateTime))
}
