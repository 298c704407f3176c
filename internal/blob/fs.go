package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound は参照先のコンテンツが存在しないことを表す。
// サムネイル未生成など、不在は正常な状態でありエラー連鎖の終端として扱う。
var ErrNotFound = errors.New("blob not found")

// FSStore はローカルファイルシステムを使用したBlob Store実装。
//
// コンテンツはルートディレクトリ直下にUUIDをファイル名として保管される。
// 名前は利用者入力から導出されないため、同時アップロード間の衝突確率は無視できる。
// 同一参照への同時書き込みはOSレベルで保護されないが、参照はSave呼び出しごとに
// 新規割り当てされるためこの条件は発生しない。
type FSStore struct {
	root string
}

// NewFSStore はルートディレクトリを作成（冪等）してFSStoreを生成する。
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Save はデータを新規割り当てのUUID名で書き込み、その参照を返す。
func (s *FSStore) Save(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.New().String()
	if err := os.WriteFile(filepath.Join(s.root, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return ref, nil
}

// SaveVariant は派生コンテンツを "<ref>_<width>" キーへ書き込む。
func (s *FSStore) SaveVariant(ctx context.Context, ref string, width int, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.root, variantRef(ref, width))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob variant: %w", err)
	}

	return nil
}

// Read は参照のコンテンツを読み出す。
func (s *FSStore) Read(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	return data, nil
}

// ReadVariant は派生コンテンツを読み出す。
func (s *FSStore) ReadVariant(ctx context.Context, ref string, width int) ([]byte, error) {
	return s.Read(ctx, variantRef(ref, width))
}

// variantRef は派生コンテンツのキーを導出する。
func variantRef(ref string, width int) string {
	return fmt.Sprintf("%s_%d", ref, width)
}

// compile-time interface check
var _ Store = (*FSStore)(nil)
