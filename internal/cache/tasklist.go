// Package cache は Redis を使ったタスク一覧のキャッシュを提供します。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/taskforge/internal/storage"
)

const (
	taskListKeyPrefix  = "taskforge:tasks:list:"
	taskListVersionKey = "taskforge:tasks:ver:"
	maxSetAttempts     = 3
)

// TaskListStore は所有者ごとのタスク一覧を Redis に保存します。
// 一覧は所有者の版番号を含むキーに保存し、更新系の操作は版番号を進めます。
type TaskListStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskListStore は TaskListStore を作成します。
func NewTaskListStore(rdb *redis.Client, ttl time.Duration) *TaskListStore {
	return &TaskListStore{
		rdb: rdb,
		ttl: ttl,
	}
}

// Connect は URL から Redis クライアントを作成し、疎通を確認します。
func Connect(ctx context.Context, redisURL string, ttl time.Duration) (*TaskListStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewTaskListStore(rdb, ttl), nil
}

// Version は所有者の現在の版番号を返します。未設定なら 0 です。
func (s *TaskListStore) Version(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("userID is required")
	}
	return currentVersion(ctx, s.rdb, userID)
}

// Get は指定した版の一覧を取得します。キャッシュが無い場合は ok=false を返します。
func (s *TaskListStore) Get(ctx context.Context, userID string, version int64) ([]storage.Task, bool, error) {
	if userID == "" {
		return nil, false, fmt.Errorf("userID is required")
	}
	data, err := s.rdb.Get(ctx, taskListKey(userID, version)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	list, err := decodeTaskList(data)
	if err != nil {
		return nil, false, err
	}
	return list, true, nil
}

// Set は version が現在の版と一致する場合だけ一覧を TTL 付きで保存します。
// 読み取り後に更新が入っていれば何もしません。
func (s *TaskListStore) Set(ctx context.Context, userID string, version int64, tasks []storage.Task) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}
	payload, err := encodeTaskList(tasks)
	if err != nil {
		return err
	}

	versionKey := taskListVersionKeyFor(userID)
	for attempt := 0; attempt < maxSetAttempts; attempt++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			current, err := currentVersion(ctx, tx, userID)
			if err != nil {
				return err
			}
			if current != version {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, taskListKey(userID, version), payload, s.ttl)
				return nil
			})
			return err
		}, versionKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	// 競合が続く場合は保存を諦める
	return nil
}

// Invalidate は版番号を進め、それ以前に読んだ一覧を参照されなくします。
func (s *TaskListStore) Invalidate(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}
	return s.rdb.Incr(ctx, taskListVersionKeyFor(userID)).Err()
}

// Close は Redis との接続を閉じます。
func (s *TaskListStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// getter は *redis.Client と WATCH 中の *redis.Tx に共通する読み取り操作です。
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func currentVersion(ctx context.Context, c getter, userID string) (int64, error) {
	version, err := c.Get(ctx, taskListVersionKeyFor(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

func taskListKey(userID string, version int64) string {
	return fmt.Sprintf("%s%s:%d", taskListKeyPrefix, userID, version)
}

func taskListVersionKeyFor(userID string) string {
	return taskListVersionKey + userID
}

func encodeTaskList(tasks []storage.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []storage.Task{}
	}
	return json.Marshal(tasks)
}

func decodeTaskList(data []byte) ([]storage.Task, error) {
	var list []storage.Task
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	if list == nil {
		list = []storage.Task{}
	}
	return list, nil
}
