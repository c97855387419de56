package data

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	upsertTaskSQL = `INSERT INTO task (name, source, size, imported_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET source = excluded.source, size = excluded.size, imported_at = excluded.imported_at
	`
	deleteTaskIDsSQL = `DELETE FROM task_id WHERE task = ?`
	insertTaskIDSQL  = `INSERT INTO task_id (task, id) VALUES (?, ?)`
	deleteTaskSQL    = `DELETE FROM task WHERE name = ?`
	selectTaskSQL    = `SELECT name, source, size, imported_at FROM task WHERE name = ?`
	selectTasksSQL   = `SELECT name, source, size, imported_at FROM task ORDER BY name`
	selectTaskIDsSQL = `SELECT id FROM task_id WHERE task = ? ORDER BY id`
)

// ErrTaskNotFound is returned when a named task is not in the store.
var ErrTaskNotFound = errors.New("task not found")

// Task is a named constraint set: the exact IDs a submission for a given
// benchmark release must contain.
type Task struct {
	Name     string    `json:"name" yaml:"name"`
	Source   string    `json:"source" yaml:"source"`
	Size     int       `json:"size" yaml:"size"`
	Imported time.Time `json:"imported" yaml:"imported"`
}

// SaveTask replaces the ID set of the named task.
func SaveTask(db *sql.DB, name, source string, ids []string) (*Task, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("task name required")
	}

	unique := dedupe(ids)
	if len(unique) == 0 {
		return nil, fmt.Errorf("task %s has no ids", name)
	}

	t := &Task{
		Name:     name,
		Source:   source,
		Size:     len(unique),
		Imported: time.Now().UTC().Truncate(time.Second),
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := saveTaskTx(db, tx, t, unique); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("failed to rollback transaction: %w (after: %v)", rbErr, err)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return t, nil
}

func saveTaskTx(db *sql.DB, tx *sql.Tx, t *Task, ids []string) error {
	if _, err := tx.Exec(rebind(db, upsertTaskSQL), t.Name, t.Source, t.Size, t.Imported.Unix()); err != nil {
		return fmt.Errorf("failed to upsert task %s: %w", t.Name, err)
	}

	if _, err := tx.Exec(rebind(db, deleteTaskIDsSQL), t.Name); err != nil {
		return fmt.Errorf("failed to clear ids for task %s: %w", t.Name, err)
	}

	stmt, err := tx.Prepare(rebind(db, insertTaskIDSQL))
	if err != nil {
		return fmt.Errorf("failed to prepare id insert statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(t.Name, id); err != nil {
			return fmt.Errorf("failed to insert id %s for task %s: %w", id, t.Name, err)
		}
	}

	return nil
}

// GetTask returns the named task or ErrTaskNotFound.
func GetTask(db *sql.DB, name string) (*Task, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	row := db.QueryRow(rebind(db, selectTaskSQL), name)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", name, ErrTaskNotFound)
		}
		return nil, fmt.Errorf("failed to get task %s: %w", name, err)
	}
	return t, nil
}

// GetTaskIDs returns the sorted ID set of the named task.
func GetTaskIDs(db *sql.DB, name string) ([]string, error) {
	if _, err := GetTask(db, name); err != nil {
		return nil, err
	}

	rows, err := db.Query(rebind(db, selectTaskIDsSQL), name)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids for task %s: %w", name, err)
	}
	defer rows.Close()

	list := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		list = append(list, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ids for task %s: %w", name, err)
	}

	return list, nil
}

// ListTasks returns all tasks ordered by name.
func ListTasks(db *sql.DB) ([]*Task, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectTasksSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	list := make([]*Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return list, nil
}

// DeleteTask removes the named task and its IDs.
func DeleteTask(db *sql.DB, name string) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(rebind(db, deleteTaskIDsSQL), name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete ids for task %s: %w", name, err)
	}

	res, err := tx.Exec(rebind(db, deleteTaskSQL), name)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete task %s: %w", name, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", name, ErrTaskNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*Task, error) {
	var (
		t        Task
		imported int64
	)
	if err := s.Scan(&t.Name, &t.Source, &t.Size, &imported); err != nil {
		return nil, err
	}
	t.Imported = time.Unix(imported, 0).UTC()
	return &t, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	list := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		list = append(list, id)
	}
	sort.Strings(list)
	return list
}
