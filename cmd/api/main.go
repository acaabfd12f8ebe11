// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/taskforge/internal/auth"
	"github.com/yourusername/taskforge/internal/config"
	"github.com/yourusername/taskforge/internal/response"
	"github.com/yourusername/taskforge/internal/storage/sqlite"
	"github.com/yourusername/taskforge/internal/tasks"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	app, err := newApp(context.Background(), cfg, log.Default())
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer app.Close()

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s, base path: %s)", addr, cfg.GinMode, cfg.APIBasePath)
	if err := app.router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// app はルーターと、終了時に閉じるリソースをまとめます。
type app struct {
	router  *gin.Engine
	closers []func() error
}

// Close は保持しているリソースを逆順に閉じます。
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Failed to close resource: %v", err)
		}
	}
}

// newApp は依存関係を組み立ててルーターを返します。
func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	a := &app{}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		a.Close()
		return nil, err
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiration, nil)
	if err != nil {
		a.Close()
		return nil, err
	}
	authService, err := auth.NewService(store, auth.Options{
		Hasher: hasher,
		Tokens: tokens,
		Policy: auth.PasswordPolicy{
			MinLength:  cfg.PasswordMinLength,
			RequireMix: cfg.PasswordRequireMix,
		},
		Logger: logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	taskOpts := tasks.Options{Logger: logger}
	if listCache, closeCache := setupCache(ctx, cfg, logger); listCache != nil {
		taskOpts.Cache = listCache
		a.closers = append(a.closers, closeCache)
	}
	taskService, err := tasks.NewService(store, taskOpts)
	if err != nil {
		a.Close()
		return nil, err
	}

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	if corsHandler := newCORS(cfg); corsHandler != nil {
		router.Use(corsHandler)
	}

	setupRoutes(router, cfg, authService, taskService)
	a.router = router
	return a, nil
}

// newCORS は CORS ミドルウェアを作成します。許可オリジンが空なら nil を返します。
func newCORS(cfg *config.Config) gin.HandlerFunc {
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 {
		return nil
	}

	corsConfig := cors.DefaultConfig()
	for _, origin := range origins {
		if origin == "*" {
			// release モードでは config.Validate が拒否する
			corsConfig.AllowAllOrigins = true
			break
		}
	}
	if !corsConfig.AllowAllOrigins {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return cors.New(corsConfig)
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	response.OK(c, http.StatusOK, gin.H{
		"status":  "ok",
		"service": "taskforge-api",
		"version": "0.1.0",
	}, "Service is healthy")
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, authService *auth.Service, taskService *tasks.Service) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	authHandler := auth.NewHandler(authService)
	taskHandler := tasks.NewHandler(taskService)

	api := router.Group(basePath(cfg.APIBasePath))
	{
		if basePath(cfg.APIBasePath) != "/" {
			api.GET("/health", handleHealth)
		}

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/signin", authHandler.Signin)
		}

		taskRoutes := api.Group("/tasks")
		taskRoutes.Use(auth.RequireToken(authService))
		taskHandler.Register(taskRoutes)
	}

	router.NoRoute(response.NotFoundRoute)
}

// basePath は API_BASE_PATH を "/xxx" 形式に揃えます。
func basePath(raw string) string {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}
