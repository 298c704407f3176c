package repository

import (
	"testing"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresFileRepoはFileRepositoryインターフェースを満たすことを検証
func TestPostgresFileRepo_ImplementsInterface(t *testing.T) {
	var _ FileRepository = (*PostgresFileRepo)(nil)
}

// BadgerSessionStoreはSessionStoreインターフェースを満たすことを検証
func TestBadgerSessionStore_ImplementsInterface(t *testing.T) {
	var _ SessionStore = (*BadgerSessionStore)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresFileRepoが正しく初期化されることを検証
func TestNewPostgresFileRepo_Initializes(t *testing.T) {
	repo := NewPostgresFileRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}
