package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/yourusername/taskforge/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskforge.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func putUser(t *testing.T, store *Store, id, email string) storage.User {
	t.Helper()
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	u := storage.User{
		ID:           id,
		Email:        email,
		FullName:     "User " + id,
		PasswordHash: "$2a$04$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskforge.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	var count int
	if err := second.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 applied migration, got %d", count)
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Store
	if store.DB() != nil {
		t.Fatal("expected nil DB for nil store")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if _, err := store.GetUser(context.Background(), "x"); err == nil {
		t.Fatal("expected error from nil store")
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := openTempStore(t)
	input := putUser(t, store, "user-1", "a@example.com")

	got, err := store.GetUserByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if got.ID != input.ID || got.FullName != input.FullName || got.PasswordHash != input.PasswordHash {
		t.Fatalf("unexpected user: %+v", got)
	}
	if !got.CreatedAt.Equal(input.CreatedAt) || !got.UpdatedAt.Equal(input.UpdatedAt) {
		t.Fatalf("unexpected timestamps: %+v", got)
	}

	byID, err := store.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if byID.Email != input.Email {
		t.Fatalf("unexpected user: %+v", byID)
	}
}

func TestGetUserByEmailIsCaseSensitive(t *testing.T) {
	store := openTempStore(t)
	putUser(t, store, "user-1", "a@example.com")

	_, err := store.GetUserByEmail(context.Background(), "A@example.com")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := openTempStore(t)
	putUser(t, store, "user-1", "a@example.com")

	now := time.Now().UTC()
	err := store.CreateUser(context.Background(), storage.User{
		ID:           "user-2",
		Email:        "a@example.com",
		FullName:     "Other",
		PasswordHash: "$2a$04$other",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestTaskRoundTripAndOwnerScope(t *testing.T) {
	store := openTempStore(t)
	putUser(t, store, "owner", "owner@example.com")
	putUser(t, store, "other", "other@example.com")

	ctx := context.Background()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	desc := "2 litres"
	task := storage.Task{
		ID:          "task-1",
		Title:       "Buy milk",
		Description: &desc,
		UserID:      "owner",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := store.GetTask(ctx, "task-1", "owner")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != "Buy milk" || got.Description == nil || *got.Description != desc || got.IsCompleted {
		t.Fatalf("unexpected task: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected createdAt: %s", got.CreatedAt)
	}

	if _, err := store.GetTask(ctx, "task-1", "other"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}

	foreign := got
	foreign.UserID = "other"
	foreign.Title = "hijacked"
	if err := store.UpdateTask(ctx, foreign); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on foreign update, got %v", err)
	}
	if err := store.DeleteTask(ctx, "task-1", "other"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on foreign delete, got %v", err)
	}

	got.IsCompleted = true
	got.Description = nil
	got.UpdatedAt = created.Add(time.Minute)
	if err := store.UpdateTask(ctx, got); err != nil {
		t.Fatalf("update task: %v", err)
	}
	updated, err := store.GetTask(ctx, "task-1", "owner")
	if err != nil {
		t.Fatalf("get updated task: %v", err)
	}
	if !updated.IsCompleted || updated.Description != nil || updated.Title != "Buy milk" {
		t.Fatalf("unexpected updated task: %+v", updated)
	}

	if err := store.DeleteTask(ctx, "task-1", "owner"); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := store.GetTask(ctx, "task-1", "owner"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListTasksByOwnerOrdering(t *testing.T) {
	store := openTempStore(t)
	putUser(t, store, "owner", "owner@example.com")
	putUser(t, store, "other", "other@example.com")
	ctx := context.Background()

	empty, err := store.ListTasksByOwner(ctx, "owner")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		at := base.Add(time.Duration(i) * time.Minute)
		if err := store.CreateTask(ctx, storage.Task{ID: id, Title: id, UserID: "owner", CreatedAt: at, UpdatedAt: at}); err != nil {
			t.Fatalf("create task %s: %v", id, err)
		}
	}
	if err := store.CreateTask(ctx, storage.Task{ID: "x1", Title: "x", UserID: "other", CreatedAt: base, UpdatedAt: base}); err != nil {
		t.Fatalf("create foreign task: %v", err)
	}

	tasks, err := store.ListTasksByOwner(ctx, "owner")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	want := []string{"t3", "t2", "t1"}
	if len(tasks) != len(want) {
		t.Fatalf("unexpected task count: %d", len(tasks))
	}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("tasks[%d] = %s, want %s", i, tasks[i].ID, id)
		}
	}
}

func TestCreateTaskRequiresExistingOwner(t *testing.T) {
	store := openTempStore(t)
	now := time.Now().UTC()
	err := store.CreateTask(context.Background(), storage.Task{ID: "t1", Title: "x", UserID: "ghost", CreatedAt: now, UpdatedAt: now})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

func TestDeletingUserCascadesTasks(t *testing.T) {
	store := openTempStore(t)
	putUser(t, store, "owner", "owner@example.com")
	ctx := context.Background()
	now := time.Now().UTC()
	if err := store.CreateTask(ctx, storage.Task{ID: "t1", Title: "x", UserID: "owner", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := store.DB().ExecContext(ctx, "DELETE FROM users WHERE id = ?", "owner"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	var count int
	if err := store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected tasks to be cascade-deleted, got %d", count)
	}
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id TEXT);\n-- +migrate Down\nDROP TABLE a;\n"
	got := extractUpMigration(content)
	if got != "\nCREATE TABLE a (id TEXT);\n" {
		t.Fatalf("unexpected up section: %q", got)
	}
	if extractUpMigration("SELECT 1;") != "SELECT 1;" {
		t.Fatal("expected content without markers to be returned unchanged")
	}
}
