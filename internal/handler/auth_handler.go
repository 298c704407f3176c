package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/filebox/internal/middleware"
	"github.com/hitoshi/filebox/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Authenticate は資格情報を検証し新しいセッショントークンを発行する。
	Authenticate(ctx context.Context, email, password string) (string, error)
	// Logout はトークンに対応するセッションを破棄する。
	Logout(ctx context.Context, token string) error
}

// AuthHandler はセッション管理のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// tokenResponse はセッション発行のAPIレスポンス。
type tokenResponse struct {
	Token string `json:"token"`
}

// Connect はBasic認証の資格情報からセッショントークンを発行する。
// GET /connect
func (h *AuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		writeError(w, http.StatusUnauthorized, model.MsgUnauthorized)
		return
	}

	token, err := h.service.Authenticate(r.Context(), email, password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Disconnect はX-Tokenヘッダーのセッションを破棄する。
// GET /disconnect
func (h *AuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), r.Header.Get(middleware.TokenHeaderName)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
