// Package blob はアップロードされたバイナリコンテンツの保管領域を提供する。
//
// コンテンツは生成された不透明な名前でアドレスされ、画像のサムネイル変種は
// 元コンテンツの名前に "_<幅>" を付けた派生キーに保管される。
package blob

import "context"

// Store はBlob Storeのインターフェース。
type Store interface {
	// Save はデータを新規に割り当てた位置へ書き込み、その不透明な参照を返す。
	// 参照は利用者指定の名前から導出されず、衝突確率は無視できる。
	Save(ctx context.Context, data []byte) (string, error)

	// SaveVariant は派生コンテンツ（サムネイル等）をref・width由来のキーへ書き込む。
	// 既存の派生キーへの上書きは許容される（同等データの再生成は無害）。
	SaveVariant(ctx context.Context, ref string, width int, data []byte) error

	// Read は参照のコンテンツを読み出す。不在の場合はErrNotFoundを返す。
	Read(ctx context.Context, ref string) ([]byte, error)

	// ReadVariant は派生コンテンツを読み出す。不在の場合はErrNotFoundを返す。
	ReadVariant(ctx context.Context, ref string, width int) ([]byte, error)
}
