// Package user はユーザー登録・参照のドメインロジックを提供する。
package user

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

// Service はユーザー管理のサービス層。
type Service struct {
	users repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

// Register は新規ユーザーを登録する。
// パスワードは不可逆なダイジェストとして保存し、平文はログにも永続層にも残さない。
// 同一メールアドレスの再登録は重複エラー（このAPIの慣例で400）となる。
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" {
		return nil, model.NewValidationError(model.MsgMissingEmail)
	}
	if password == "" {
		return nil, model.NewValidationError(model.MsgMissingPassword)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, model.NewConflictError(model.MsgAlreadyExist)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// GetByID は指定IDのユーザーを取得する。
// 不在の場合はUnauthorizedを返す（セッションが指すユーザーの消失は認証失敗として扱う）。
func (s *Service) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}
