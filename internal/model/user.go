// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptダイジェストであり、平文パスワードは一切保持しない。
// 登録後のレコードはイミュータブルとして扱う。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session は認証トークンとユーザーの紐付けを表す。
// トークンは推測不可能なランダム値で、発行から固定期間（デフォルト24時間）で失効する。
// 失効はセッションストア側のTTLで強制され、失効後・削除後の参照は
// 「存在しなかった」場合と区別できない。
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
