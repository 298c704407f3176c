package config

import "testing"

// TestLoad_RequiredMissing は必須環境変数欠如時にエラーとなることを検証する。
func TestLoad_RequiredMissing(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is not set")
	}
}

// TestLoad_Defaults は任意項目にデフォルト値が適用されることを検証する。
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/filebox?sslmode=disable")
	t.Setenv("FOLDER_PATH", "")
	t.Setenv("SESSION_DB_PATH", "")
	t.Setenv("SESSION_MAX_AGE", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.StorageRoot != "/tmp/files_manager" {
		t.Errorf("StorageRoot = %q, want %q", cfg.StorageRoot, "/tmp/files_manager")
	}
	if cfg.SessionDBPath != "/tmp/files_manager/sessions" {
		t.Errorf("SessionDBPath = %q, want %q", cfg.SessionDBPath, "/tmp/files_manager/sessions")
	}
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want 86400", cfg.SessionMaxAge)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
}

// TestLoad_Overrides は環境変数による上書きを検証する。
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/filebox?sslmode=disable")
	t.Setenv("FOLDER_PATH", "/var/lib/filebox")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("THUMBNAIL_MAX_CONCURRENT", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.StorageRoot != "/var/lib/filebox" {
		t.Errorf("StorageRoot = %q, want %q", cfg.StorageRoot, "/var/lib/filebox")
	}
	if cfg.SessionMaxAge != 3600 {
		t.Errorf("SessionMaxAge = %d, want 3600", cfg.SessionMaxAge)
	}
	if cfg.ThumbnailMaxConcurrent != 2 {
		t.Errorf("ThumbnailMaxConcurrent = %d, want 2", cfg.ThumbnailMaxConcurrent)
	}
}

// TestLoad_InvalidIntFallsBack は数値でない環境変数がデフォルトにフォールバックすることを検証する。
func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/filebox?sslmode=disable")
	t.Setenv("SESSION_MAX_AGE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want default 86400", cfg.SessionMaxAge)
	}
}
