// Package auth は資格情報の検証とセッショントークンの発行・破棄を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/filebox/internal/model"
	"github.com/hitoshi/filebox/internal/repository"
)

// sessionKeyPrefix はセッションストア内のトークンキーの名前空間。
const sessionKeyPrefix = "auth_"

// UserFinder は認証に必要なユーザー検索インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users    UserFinder
	sessions repository.SessionStore
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(users UserFinder, sessions repository.SessionStore, config ServiceConfig) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		config:   config,
	}
}

// Authenticate はメールアドレスと平文パスワードを検証し、セッショントークンを発行する。
// ユーザー不在とパスワード不一致はどちらも同じUnauthorizedとして返し、区別させない。
// 発行されたトークンは固定TTLで失効し、アクセスによって延長されない。
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", model.NewUnauthorizedError()
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", model.NewUnauthorizedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", model.NewUnauthorizedError()
	}

	token := uuid.New().String()
	ttl := time.Duration(s.config.SessionMaxAge) * time.Second

	if err := s.sessions.Put(ctx, sessionKeyPrefix+token, user.ID, ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	slog.Info("session issued", slog.String("user_id", user.ID))
	return token, nil
}

// Logout はトークンに対応するセッションを即時に破棄する。
// トークンが生きたセッションに解決できない場合はUnauthorizedを返す。
func (s *Service) Logout(ctx context.Context, token string) error {
	userID, err := s.ResolveToken(ctx, token)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("session destroyed", slog.String("user_id", userID))
	return nil
}

// ResolveToken はトークンを所有ユーザーIDに解決する。
// 欠如・不在・失効済みはすべてUnauthorizedを返す。TTLは延長しない。
func (s *Service) ResolveToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", model.NewUnauthorizedError()
	}

	userID, err := s.sessions.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	if userID == "" {
		return "", model.NewUnauthorizedError()
	}

	return userID, nil
}
