// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/filebox/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Count は登録ユーザー数を返す。
	Count(ctx context.Context) (int, error)
}

// FileRepository はファイルメタデータの永続化インターフェース。
type FileRepository interface {
	// Create はファイルレコードを作成する。
	Create(ctx context.Context, file *model.File) error

	// FindByID は指定IDのファイルを所有者を問わず取得する。見つからない場合はnilを返す。
	// 公開コンテンツ配信のように所有権チェックを呼び出し側で行う場合に使用する。
	FindByID(ctx context.Context, id string) (*model.File, error)

	// FindByIDAndOwner は指定IDかつ指定所有者のファイルを取得する。
	// 不在と所有者不一致はどちらもnilを返し、呼び出し側からは区別できない。
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.File, error)

	// ListByOwnerAndParent は指定所有者・指定親フォルダ直下のファイルを
	// 作成順でlimit件、offset件スキップして返す。範囲外は空スライスを返す。
	ListByOwnerAndParent(ctx context.Context, ownerID, parentID string, limit, offset int) ([]*model.File, error)

	// UpdateVisibility はis_publicを更新し、更新後のレコードを返す。
	// 対象が存在しない場合はnilを返す。
	UpdateVisibility(ctx context.Context, id string, isPublic bool) (*model.File, error)

	// Count はファイルレコード数を返す。
	Count(ctx context.Context) (int, error)
}

// SessionStore は有効期限付きキー・バリューのセッション永続化インターフェース。
// 失効はストア側のTTLで強制され、失効済みキーの参照は不在と同じ結果を返す。
type SessionStore interface {
	// Put はキーに値を保存し、ttl経過後に自動失効させる。
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get はキーの現在値を返す。不在または失効済みの場合は空文字列を返す。
	Get(ctx context.Context, key string) (string, error)

	// Delete はキーを即時削除する。不在のキーの削除はエラーにならない。
	Delete(ctx context.Context, key string) error

	// Alive はストアが利用可能かを返す。
	Alive() bool

	// Close はストアを閉じる。
	Close() error
}
