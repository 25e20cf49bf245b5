package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tarefas/internal/service"
	"tarefas/internal/wire"
)

// SQLiteStore persists tasks in a SQLite database file.
type SQLiteStore struct {
	db  *sql.DB
	ids IDFunc
}

// OpenSQLiteStore opens (and if needed creates) the database at path.
func OpenSQLiteStore(path string, ids IDFunc) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; SQLite serializes anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, ids: ids}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initTables() error {
	// seq orders the collection; id is the public identifier.
	tableSQL := `
	CREATE TABLE IF NOT EXISTS tarefas (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE,
		titulo TEXT NOT NULL,
		concluida INTEGER NOT NULL DEFAULT 0
	);`

	if _, err := s.db.Exec(tableSQL); err != nil {
		return fmt.Errorf("failed to create tarefas table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]service.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, titulo, concluida FROM tarefas ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []service.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id service.TaskID) (service.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, titulo, concluida FROM tarefas WHERE id = ?`, string(id))
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Task{}, fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	return task, err
}

func (s *SQLiteStore) Create(ctx context.Context, title string, state service.CompletionState) (service.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return service.Task{}, fmt.Errorf("failed to begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO tarefas (titulo, concluida) VALUES (?, ?)`, title, concluida(state))
	if err != nil {
		return service.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return service.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	id := s.ids(seq)
	if _, err := tx.ExecContext(ctx, `UPDATE tarefas SET id = ? WHERE seq = ?`, string(id), seq); err != nil {
		return service.Task{}, fmt.Errorf("failed to assign task id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return service.Task{}, fmt.Errorf("failed to commit: %w", err)
	}
	return service.Task{ID: id, Title: title, State: state}, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id service.TaskID, f wire.Fields) (service.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return service.Task{}, fmt.Errorf("failed to begin: %w", err)
	}
	defer tx.Rollback()

	task, err := scanTask(tx.QueryRowContext(ctx, `SELECT id, titulo, concluida FROM tarefas WHERE id = ?`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return service.Task{}, fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	if err != nil {
		return service.Task{}, err
	}

	if f.Title != nil {
		task.Title = *f.Title
	}
	if f.State != nil {
		task.State = *f.State
	}

	if _, err := tx.ExecContext(ctx, `UPDATE tarefas SET titulo = ?, concluida = ? WHERE id = ?`,
		task.Title, concluida(task.State), string(id)); err != nil {
		return service.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return service.Task{}, fmt.Errorf("failed to commit: %w", err)
	}
	return task, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id service.TaskID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tarefas WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", service.ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (service.Task, error) {
	var (
		id    string
		title string
		done  int
	)
	if err := row.Scan(&id, &title, &done); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return service.Task{}, err
		}
		return service.Task{}, fmt.Errorf("failed to scan task: %w", err)
	}

	task := service.Task{ID: service.TaskID(id), Title: title, State: service.Pending}
	if done != 0 {
		task.State = service.Done
	}
	return task, nil
}

func concluida(state service.CompletionState) int {
	if state == service.Done {
		return 1
	}
	return 0
}
