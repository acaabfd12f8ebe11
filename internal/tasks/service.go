package tasks

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/taskforge/internal/apperror"
	"github.com/yourusername/taskforge/internal/storage"
)

// TaskStore はタスクの永続化操作です。取得・更新・削除は所有者で絞り込みます。
type TaskStore interface {
	CreateTask(ctx context.Context, t storage.Task) error
	ListTasksByOwner(ctx context.Context, userID string) ([]storage.Task, error)
	GetTask(ctx context.Context, taskID, userID string) (storage.Task, error)
	UpdateTask(ctx context.Context, t storage.Task) error
	DeleteTask(ctx context.Context, taskID, userID string) error
}

// ListCache は所有者ごとのタスク一覧キャッシュです。
// 一覧は版番号ごとに保存され、Invalidate は版番号を進めます。
// Get はキャッシュが無い場合に (nil, false, nil) を返します。
// Set は version が現在の版でなければ何も保存しません。
type ListCache interface {
	Version(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, userID string, version int64) ([]storage.Task, bool, error)
	Set(ctx context.Context, userID string, version int64, tasks []storage.Task) error
	Invalidate(ctx context.Context, userID string) error
}

// Options は Service の任意の依存関係です。
type Options struct {
	Cache  ListCache
	Now    func() time.Time
	NewID  func() string
	Logger *log.Logger
}

// Service はタスク操作のユースケースです。
type Service struct {
	store  TaskStore
	cache  ListCache
	now    func() time.Time
	newID  func() string
	logger *log.Logger

	// stale は無効化に失敗した所有者です。無効化が成功するまでキャッシュを使いません。
	stale sync.Map
}

// NewService はタスクサービスを作成します。
func NewService(store TaskStore, opts Options) (*Service, error) {
	if store == nil {
		return nil, errors.New("task store is nil")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Service{
		store:  store,
		cache:  opts.Cache,
		now:    opts.Now,
		newID:  opts.NewID,
		logger: opts.Logger,
	}, nil
}

// Create は未完了のタスクを作成します。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*storage.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	task := storage.Task{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		IsCompleted: false,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, internal(err)
	}

	s.invalidate(ctx, userID)
	return &task, nil
}

// List は所有者のタスクを新しい順に返します。0件なら空スライスです。
func (s *Service) List(ctx context.Context, userID string) ([]storage.Task, error) {
	if !s.cacheUsable(ctx, userID) {
		return s.listFromStore(ctx, userID)
	}

	// 版番号はストアを読む前に取得し、読み取り中の更新で古い一覧が保存されないようにする
	version, err := s.cache.Version(ctx, userID)
	if err != nil {
		s.logger.Printf("task cache version failed user=%s: %v", userID, err)
		return s.listFromStore(ctx, userID)
	}

	cached, ok, err := s.cache.Get(ctx, userID, version)
	switch {
	case err != nil:
		s.logger.Printf("task cache get failed user=%s: %v", userID, err)
	case ok:
		return nonNil(cached), nil
	}

	list, err := s.listFromStore(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, userID, version, list); err != nil {
		s.logger.Printf("task cache set failed user=%s: %v", userID, err)
	}
	return list, nil
}

func (s *Service) listFromStore(ctx context.Context, userID string) ([]storage.Task, error) {
	list, err := s.store.ListTasksByOwner(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	return nonNil(list), nil
}

// Get は所有者のタスクを1件返します。
func (s *Service) Get(ctx context.Context, taskID, userID string) (*storage.Task, error) {
	task, err := s.store.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, storeError(err)
	}
	return &task, nil
}

// Update は指定された項目だけを変更します。
func (s *Service) Update(ctx context.Context, taskID, userID string, in UpdateInput) (*storage.Task, error) {
	var title string
	if in.Title != nil {
		normalized, err := normalizeTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		title = normalized
	}

	task, err := s.store.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, storeError(err)
	}

	if in.Title != nil {
		task.Title = title
	}
	if in.Description.Set {
		task.Description = in.Description.Value
	}
	if done := in.completion(); done != nil {
		task.IsCompleted = *done
	}
	task.UpdatedAt = s.timestamp()

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, storeError(err)
	}

	s.invalidate(ctx, userID)
	return &task, nil
}

// Delete は所有者のタスクを削除します。
func (s *Service) Delete(ctx context.Context, taskID, userID string) error {
	if err := s.store.DeleteTask(ctx, taskID, userID); err != nil {
		return storeError(err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// timestamp はストアの保存精度（ミリ秒）に揃えた現在時刻を返します。
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.stale.Store(userID, struct{}{})
		s.logger.Printf("task cache invalidate failed user=%s: %v", userID, err)
	}
}

// cacheUsable はキャッシュを読んでよいかを返します。
// 無効化に失敗した所有者は、再試行が成功するまでストアから直接読みます。
func (s *Service) cacheUsable(ctx context.Context, userID string) bool {
	if s.cache == nil {
		return false
	}
	if _, stale := s.stale.Load(userID); !stale {
		return true
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Printf("task cache invalidate retry failed user=%s: %v", userID, err)
		return false
	}
	s.stale.Delete(userID)
	return true
}

// storeError はストアのエラーを利用者向けのエラーに変換します。
// 他人のタスクと存在しないタスクは区別しません。
func storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.New(apperror.KindNotFound, apperror.MsgTaskNotFound)
	}
	return internal(err)
}

func internal(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperror.Wrap(apperror.KindInternal, apperror.MsgInternal, err)
}

func nonNil(list []storage.Task) []storage.Task {
	if list == nil {
		return []storage.Task{}
	}
	return list
}
