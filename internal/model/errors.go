// Package model はドメインモデルを定義する。
package model

import "net/http"

// APIError はクライアントに返却するドメインエラーを表す。
// このAPIのエラーレスポンスは {"error": <message>} の単一フォーマットであり、
// ステータスコードとメッセージのみを保持する。
// 所有権・可視性による拒否は存在の漏洩を防ぐためNotFoundに畳み込む。
type APIError struct {
	Status  int
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return e.Message
}

// 公開APIのエラーメッセージ。文字列自体が契約の一部。
const (
	MsgUnauthorized    = "Unauthorized"
	MsgNotFound        = "Not found"
	MsgMissingEmail    = "Missing email"
	MsgMissingPassword = "Missing password"
	MsgAlreadyExist    = "Already exist"
	MsgMissingName     = "Missing name"
	MsgMissingType     = "Missing type"
	MsgMissingData     = "Missing data"
	MsgInvalidData     = "Invalid data"
	MsgParentNotFound  = "Parent not found"
	MsgParentNotFolder = "Parent is not a folder"
	MsgFolderNoContent = "A folder doesn't have content"
)

// NewValidationError は呼び出し側入力の不備を表す400エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

// NewUnauthorizedError は認証失敗・セッション無効を表す401エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: MsgUnauthorized}
}

// NewNotFoundError はリソース不在（または所有権・可視性により隠蔽された
// リソース）を表す404エラーを生成する。
func NewNotFoundError() *APIError {
	return &APIError{Status: http.StatusNotFound, Message: MsgNotFound}
}

// NewConflictError は一意キー重複を表すエラーを生成する。
// このAPIの慣例に従いステータスは400を返す。
func NewConflictError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}
