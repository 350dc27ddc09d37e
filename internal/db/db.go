package db

import (
	"context"
	"database/sql"
)

func Connect(driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}

// schema is valid for both sqlite3 and postgres.
const schema = `
CREATE TABLE IF NOT EXISTS tasks (
  id BIGINT PRIMARY KEY,
  description TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE TABLE IF NOT EXISTS task_counter (
  id INTEGER PRIMARY KEY,
  next_id BIGINT NOT NULL
);
INSERT INTO task_counter (id, next_id)
  SELECT 1, 1 WHERE NOT EXISTS (SELECT 1 FROM task_counter WHERE id = 1);
`

// Migrate creates the tables used by TaskRepository if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
