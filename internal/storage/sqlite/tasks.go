package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/taskforge/internal/storage"
)

const taskColumns = `id, title, description, is_completed, user_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateTask はタスクを保存します。
func (s *Store) CreateTask(ctx context.Context, t storage.Task) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(t.UserID) == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, nullableString(t.Description), t.IsCompleted, t.UserID,
		toMillis(t.CreatedAt), toMillis(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put task: %w", err)
	}
	return nil
}

// ListTasksByOwner は所有者のタスクを作成日時の新しい順で返します。0件なら空スライスです。
func (s *Store) ListTasksByOwner(ctx context.Context, userID string) ([]storage.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]storage.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetTask はIDと所有者の両方が一致するタスクを取得します。
// 他人のタスクは存在しない場合と同じく storage.ErrNotFound になります。
func (s *Store) GetTask(ctx context.Context, taskID, userID string) (storage.Task, error) {
	if err := s.ready(); err != nil {
		return storage.Task{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		taskID, userID,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Task{}, storage.ErrNotFound
		}
		return storage.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask は所有者で絞り込んだ1文の UPDATE でタスクを書き換えます。
func (s *Store) UpdateTask(ctx context.Context, t storage.Task) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, is_completed = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Title, nullableString(t.Description), t.IsCompleted, toMillis(t.UpdatedAt),
		t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return expectOneRow(res)
}

// DeleteTask は所有者で絞り込んでタスクを物理削除します。
func (s *Store) DeleteTask(ctx context.Context, taskID, userID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanTask(row rowScanner) (storage.Task, error) {
	var (
		t           storage.Task
		description sql.NullString
		createdAt   int64
		updatedAt   int64
	)
	if err := row.Scan(&t.ID, &t.Title, &description, &t.IsCompleted, &t.UserID, &createdAt, &updatedAt); err != nil {
		return storage.Task{}, err
	}
	if description.Valid {
		value := description.String
		t.Description = &value
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
