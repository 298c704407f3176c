// Package config は環境変数ベースのアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session Store
	SessionDBPath string
	SessionMaxAge int // セッション有効期間（秒）

	// Blob Store
	StorageRoot string

	// Thumbnail Worker
	ThumbnailQueueSize     int
	ThumbnailMaxConcurrent int

	// Server
	ServerPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionDBPath = getEnvString("SESSION_DB_PATH", "/tmp/files_manager/sessions")
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	// FOLDER_PATHは旧来の互換のための環境変数名
	cfg.StorageRoot = getEnvString("FOLDER_PATH", "/tmp/files_manager")
	cfg.ThumbnailQueueSize = getEnvInt("THUMBNAIL_QUEUE_SIZE", 128)
	cfg.ThumbnailMaxConcurrent = getEnvInt("THUMBNAIL_MAX_CONCURRENT", 4)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
