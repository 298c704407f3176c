// Package model はドメインモデルを定義する。
package model

import "time"

// FileKind はファイルレコードの種別を表す。
type FileKind string

const (
	// KindFolder はフォルダを示す。コンテンツを持たない。
	KindFolder FileKind = "folder"
	// KindFile は一般ファイルを示す。
	KindFile FileKind = "file"
	// KindImage は画像ファイルを示す。アップロード後にサムネイル生成の対象となる。
	KindImage FileKind = "image"
)

// ValidFileKind はkindが認識される3種別のいずれかであるかを返す。
func ValidFileKind(kind FileKind) bool {
	switch kind {
	case KindFolder, KindFile, KindImage:
		return true
	}
	return false
}

// File はユーザーが所有するファイル/フォルダのメタデータレコードを表す。
//
// ParentIDが空文字列の場合はルート直下を意味する（API上は0と表現される）。
// 空でないParentIDは同一ユーザー所有のkind=folderレコードを必ず参照する。
// LocalPathはkind≠folderの場合のみ存在し、Blob Store内の不透明な参照を保持する。
// OwnerIDは作成後に変更されない。
type File struct {
	ID        string
	OwnerID   string
	Name      string
	Kind      FileKind
	ParentID  string
	IsPublic  bool
	LocalPath string
	CreatedAt time.Time
}

// IsImage はサムネイル生成の対象（kind=image）であるかを返す。
func (f *File) IsImage() bool {
	return f.Kind == KindImage
}

// ThumbnailWidths はサムネイル生成の対象となる固定の幅の集合。
// 各幅の生成は独立しており、一部の失敗は他の幅に影響しない。
var ThumbnailWidths = []int{500, 250, 100}

// SupportedThumbnailWidth は指定幅のサムネイル変種が定義されているかを返す。
func SupportedThumbnailWidth(width int) bool {
	for _, w := range ThumbnailWidths {
		if w == width {
			return true
		}
	}
	return false
}
