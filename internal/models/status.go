package models

import (
	"fmt"
	"strings"
)

type TaskStatus uint8

const (
	TaskStatusToDo TaskStatus = iota
	TaskStatusInProgress
	TaskStatusDone
)

var statusNames = [...]string{
	TaskStatusToDo:       "to do",
	TaskStatusInProgress: "in progress",
	TaskStatusDone:       "done",
}

func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusToDo, TaskStatusInProgress, TaskStatusDone}
}

func (s TaskStatus) Valid() bool {
	return int(s) < len(statusNames)
}

func (s TaskStatus) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return statusNames[s]
}

// ParseTaskStatus accepts the canonical names case-insensitively, with '-' or
// '_' in place of the space, or with no separator at all ("todo").
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch normalizeStatus(s) {
	case "to do", "todo":
		return TaskStatusToDo, nil
	case "in progress", "inprogress":
		return TaskStatusInProgress, nil
	case "done":
		return TaskStatusDone, nil
	}
	return 0, &ValidationError{
		Field:   "status",
		Message: fmt.Sprintf(`unknown status %q, expected one of "to do", "in progress", "done"`, strings.TrimSpace(s)),
	}
}

func normalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func (s TaskStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, &ValidationError{Field: "status", Message: "invalid status value"}
	}
	return []byte(s.String()), nil
}

func (s *TaskStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseTaskStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
