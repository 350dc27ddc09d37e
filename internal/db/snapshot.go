package db

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chepyr/task-tracker-cli/internal/models"
	"github.com/google/uuid"
)

// snapshotFile is the on-disk document: the full task list plus the counter.
type snapshotFile struct {
	Tasks  []taskRecord `json:"tasks"`
	NextID int          `json:"nextId"`
}

type taskRecord struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// rawSnapshot is decoded first so that one bad record cannot fail the rest.
type rawSnapshot struct {
	Tasks        []json.RawMessage `json:"tasks"`
	NextID       *int              `json:"nextId"`
	LegacyNextID *int              `json:"next_id"`
}

type rawRecord struct {
	ID          *int    `json:"id"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	CreatedAt   *string `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
}

func encodeSnapshot(tasks []*models.Task, nextID int) ([]byte, error) {
	doc := snapshotFile{Tasks: make([]taskRecord, 0, len(tasks)), NextID: nextID}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, taskRecord{
			ID:          t.ID,
			Description: t.Description,
			Status:      t.Status.String(),
			CreatedAt:   t.CreatedAt.Format(time.RFC3339Nano),
			UpdatedAt:   t.UpdatedAt.Format(time.RFC3339Nano),
		})
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decodeSnapshot returns the valid tasks, the stored counter (0 if absent)
// and one warning per skipped record. A top-level error means nothing could
// be loaded.
func decodeSnapshot(data []byte) ([]*models.Task, int, []error, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return nil, 0, nil, fmt.Errorf("decode snapshot: %w", err)
	}

	var (
		tasks    []*models.Task
		warnings []error
		seen     = make(map[int]bool)
	)
	for i, msg := range raw.Tasks {
		task, err := decodeRecord(msg)
		if err == nil && seen[task.ID] {
			err = fmt.Errorf("duplicate id %d", task.ID)
		}
		if err != nil {
			warnings = append(warnings, fmt.Errorf("record %d skipped: %w", i, err))
			continue
		}
		seen[task.ID] = true
		tasks = append(tasks, task)
	}

	nextID := 0
	switch {
	case raw.NextID != nil:
		nextID = *raw.NextID
	case raw.LegacyNextID != nil:
		nextID = *raw.LegacyNextID
	}
	return tasks, nextID, warnings, nil
}

func decodeRecord(msg json.RawMessage) (*models.Task, error) {
	var rec rawRecord
	if err := json.Unmarshal(msg, &rec); err != nil {
		return nil, err
	}
	switch {
	case rec.ID == nil:
		return nil, errors.New("missing id")
	case rec.Description == nil:
		return nil, errors.New("missing description")
	case rec.Status == nil:
		return nil, errors.New("missing status")
	case rec.CreatedAt == nil:
		return nil, errors.New("missing createdAt")
	case rec.UpdatedAt == nil:
		return nil, errors.New("missing updatedAt")
	}
	if *rec.ID <= 0 {
		return nil, fmt.Errorf("invalid id %d", *rec.ID)
	}

	status, err := models.ParseTaskStatus(*rec.Status)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseTimestamp(*rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("createdAt: %w", err)
	}
	updatedAt, err := parseTimestamp(*rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updatedAt: %w", err)
	}

	task := &models.Task{
		ID:          *rec.ID,
		Description: *rec.Description,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	task.Touch(updatedAt)
	return task, nil
}

// parseTimestamp accepts RFC 3339 and the zone-less ISO-8601 form older
// files were written with; zone-less values are read as local time.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// writeFileAtomic replaces path with data via a synced temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpName := filepath.Join(dir, "."+filepath.Base(path)+".tmp-"+uuid.NewString())

	tmp, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
