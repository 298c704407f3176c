// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
)

// SessionChecker はセッションストアの死活確認インターフェース。
type SessionChecker interface {
	Alive() bool
}

// DBPinger はデータベースの死活確認インターフェース。
// *sql.DBがそのまま満たす。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// Counter は総件数の取得インターフェース。
// repositoryのCountの部分集合として定義する。
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// AppHandler は死活確認・統計のHTTPハンドラー。
type AppHandler struct {
	sessions SessionChecker
	db       DBPinger
	users    Counter
	files    Counter
}

// NewAppHandler はAppHandlerを生成する。
func NewAppHandler(sessions SessionChecker, db DBPinger, users, files Counter) *AppHandler {
	return &AppHandler{
		sessions: sessions,
		db:       db,
		users:    users,
		files:    files,
	}
}

// statusResponse は死活確認のAPIレスポンス。
// キー名は歴史的経緯でバックエンドの実装名と一致しない。
type statusResponse struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

// statsResponse は統計のAPIレスポンス。
type statsResponse struct {
	Users int `json:"users"`
	Files int `json:"files"`
}

// Status は各バックエンドの到達可能性を返す。
// GET /status
func (h *AppHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Redis: h.sessions.Alive(),
		DB:    h.db.PingContext(r.Context()) == nil,
	}

	writeJSON(w, http.StatusOK, resp)
}

// Stats は登録ユーザー数とファイルレコード数を返す。
// GET /stats
func (h *AppHandler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Count(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	files, err := h.files.Count(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Users: users, Files: files})
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
