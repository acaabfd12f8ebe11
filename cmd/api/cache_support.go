package main

import (
	"context"
	"log"
	"time"

	"github.com/yourusername/taskforge/internal/cache"
	"github.com/yourusername/taskforge/internal/config"
	"github.com/yourusername/taskforge/internal/tasks"
)

const cacheConnectTimeout = 3 * time.Second

// setupCache は CACHE_REDIS_URL が設定されていればタスク一覧キャッシュを返します。
// 接続できない場合はキャッシュ無しで起動を続けます。
func setupCache(ctx context.Context, cfg *config.Config, logger *log.Logger) (tasks.ListCache, func() error) {
	if !cfg.CacheEnabled() {
		return nil, nil
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	connectCtx, cancel := context.WithTimeout(ctx, cacheConnectTimeout)
	defer cancel()

	store, err := cache.Connect(connectCtx, cfg.CacheRedisURL, ttl)
	if err != nil {
		logger.Printf("Task list cache disabled: %v", err)
		return nil, nil
	}
	logger.Printf("Task list cache enabled (ttl: %s)", ttl)
	return store, store.Close
}
