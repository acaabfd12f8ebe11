// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DevJWTSecret はローカル開発専用の署名鍵です。release モードでは拒否されます。
const DevJWTSecret = "taskforge-insecure-dev-secret"

const (
	minReleaseSecretLength = 32
	minReleaseBcryptCost   = 10
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port        string `env:"PORT" envDefault:"8080"`                // APIサーバーのポート番号
	GinMode     string `env:"GIN_MODE" envDefault:"debug"`           // Ginの実行モード (debug, release, test)
	APIBasePath string `env:"API_BASE_PATH" envDefault:"/api"`       // ルーティングの接頭辞

	// CORS設定
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"` // カンマ区切り

	// データベース設定
	DatabasePath string `env:"DATABASE_PATH" envDefault:"taskforge.db"` // SQLiteファイルのパス

	// 認証設定
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"taskforge-insecure-dev-secret"`
	JWTExpiration      time.Duration `env:"JWT_EXPIRATION" envDefault:"168h"` // トークンの有効期間
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"10"`
	PasswordMinLength  int           `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	PasswordRequireMix bool          `env:"PASSWORD_REQUIRE_MIX" envDefault:"true"` // 英字・数字・記号の混在を要求

	// キャッシュ設定（空ならキャッシュ無効）
	CacheRedisURL string        `env:"CACHE_REDIS_URL"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// IsRelease は本番モードかどうかを返します。
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// CacheEnabled はタスク一覧キャッシュを使うかどうかを返します。
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.CacheRedisURL) != ""
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.PasswordMinLength < 1 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be at least 1")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	// ローカル開発では安全でない既定値を許容し、本番では拒否する
	if c.IsRelease() {
		if c.JWTSecret == DevJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in release mode")
		}
		if len(c.JWTSecret) < minReleaseSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d bytes in release mode", minReleaseSecretLength)
		}
		if c.BcryptCost < minReleaseBcryptCost {
			return fmt.Errorf("BCRYPT_COST must be at least %d in release mode", minReleaseBcryptCost)
		}
		for _, origin := range c.AllowedOrigins() {
			if origin == "*" {
				return fmt.Errorf("CORS_ALLOWED_ORIGINS must not contain * in release mode")
			}
		}
	}

	return nil
}
