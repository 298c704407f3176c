// Package file はファイル/フォルダの作成・参照・可視性制御・コンテンツ配信の
// ドメインロジックを提供する。
package file

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/filebox/internal/blob"
	"github.com/hitoshi/filebox/internal/model"
	"github.com/hitoshi/filebox/internal/repository"
	"github.com/hitoshi/filebox/internal/worker/thumbnail"
)

// PageSize は一覧APIの1ページあたりの件数。
const PageSize = 20

// defaultMimeType は拡張子から種別を特定できない場合のContent-Type。
const defaultMimeType = "application/octet-stream"

// ThumbnailEnqueuer はサムネイル生成ジョブの投入インターフェース。
// 投入は発行側をブロックしない。
type ThumbnailEnqueuer interface {
	Enqueue(job thumbnail.Job) bool
}

// Service はファイル管理のサービス層。
type Service struct {
	files repository.FileRepository
	blobs blob.Store
	queue ThumbnailEnqueuer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(files repository.FileRepository, blobs blob.Store, queue ThumbnailEnqueuer) *Service {
	return &Service{
		files: files,
		blobs: blobs,
		queue: queue,
	}
}

// CreateInput はファイル/フォルダ作成の入力。
// ParentIDは空文字列でルート直下を意味する。Dataはbase64エンコードされた
// バイナリペイロードで、kind≠folderの場合に必須。
type CreateInput struct {
	OwnerID  string
	Name     string
	Kind     model.FileKind
	ParentID string
	IsPublic bool
	Data     string
}

// Create はファイル/フォルダレコードを検証・作成する。
//
// フォルダの場合はBlob Storeへの書き込みは一切発生しない。それ以外は
// コンテンツを復号して新規割り当て位置へ書き込み、レコードにその参照を残す。
// kind=imageの場合のみ、レコード永続化後にサムネイル生成ジョブを1件発行する。
// 発行はレスポンスに対してfire-and-forgetであり、生成の開始・完了を待たない。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.File, error) {
	if in.Name == "" {
		return nil, model.NewValidationError(model.MsgMissingName)
	}
	if !model.ValidFileKind(in.Kind) {
		return nil, model.NewValidationError(model.MsgMissingType)
	}
	if in.Kind != model.KindFolder && in.Data == "" {
		return nil, model.NewValidationError(model.MsgMissingData)
	}

	if in.ParentID != "" {
		parent, err := s.files.FindByIDAndOwner(ctx, in.ParentID, in.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up parent: %w", err)
		}
		if parent == nil {
			return nil, model.NewValidationError(model.MsgParentNotFound)
		}
		if parent.Kind != model.KindFolder {
			return nil, model.NewValidationError(model.MsgParentNotFolder)
		}
	}

	file := &model.File{
		ID:        uuid.New().String(),
		OwnerID:   in.OwnerID,
		Name:      in.Name,
		Kind:      in.Kind,
		ParentID:  in.ParentID,
		IsPublic:  in.IsPublic,
		CreatedAt: time.Now(),
	}

	if in.Kind == model.KindFolder {
		if err := s.files.Create(ctx, file); err != nil {
			return nil, fmt.Errorf("failed to create folder record: %w", err)
		}
		return file, nil
	}

	content, err := base64.StdEncoding.DecodeString(in.Data)
	if err != nil {
		return nil, model.NewValidationError(model.MsgInvalidData)
	}

	ref, err := s.blobs.Save(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}
	file.LocalPath = ref

	if err := s.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	if file.IsImage() {
		if !s.queue.Enqueue(thumbnail.Job{OwnerID: file.OwnerID, FileID: file.ID}) {
			// キューが溢れた場合はジョブを破棄する。サムネイル不在は正常な状態。
			slog.Error("thumbnail queue full, job dropped",
				slog.String("file_id", file.ID),
			)
		}
	}

	return file, nil
}

// Get は指定IDのファイルを取得する。
// 不在と所有者不一致は同じNotFoundを返し、他ユーザーのファイルの存在を漏らさない。
func (s *Service) Get(ctx context.Context, requesterID, fileID string) (*model.File, error) {
	file, err := s.files.FindByIDAndOwner(ctx, fileID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to find file: %w", err)
	}
	if file == nil {
		return nil, model.NewNotFoundError()
	}

	return file, nil
}

// List は指定親フォルダ直下の所有ファイルを作成順で最大PageSize件返す。
// pageは0始まりで、範囲外のページは空スライスを返す（エラーにならない）。
func (s *Service) List(ctx context.Context, requesterID, parentID string, page int) ([]*model.File, error) {
	if page < 0 {
		page = 0
	}

	files, err := s.files.ListByOwnerAndParent(ctx, requesterID, parentID, PageSize, page*PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// SetVisibility はis_publicを更新し、更新後のレコードを返す。
// 所有権の判定はGetと同一のNotFound畳み込み規則に従う。
// 可視性の切り替えはコンテンツにもLocalPathにも影響しない。
func (s *Service) SetVisibility(ctx context.Context, requesterID, fileID string, isPublic bool) (*model.File, error) {
	file, err := s.files.FindByIDAndOwner(ctx, fileID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to find file: %w", err)
	}
	if file == nil {
		return nil, model.NewNotFoundError()
	}

	updated, err := s.files.UpdateVisibility(ctx, fileID, isPublic)
	if err != nil {
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}
	if updated == nil {
		return nil, model.NewNotFoundError()
	}

	return updated, nil
}

// ReadContent はファイルのバイナリコンテンツとContent-Typeを返す。
//
// requesterIDは未認証の場合は空文字列を渡す。非公開ファイルは所有者以外には
// 不在と同じNotFoundを返す（UnauthorizedではなくNotFound — 存在の漏洩防止）。
// sizeがサムネイル対応幅の場合は派生コンテンツを返し、未生成の場合はNotFound。
// 対応外のsizeは元コンテンツへフォールバックする。
func (s *Service) ReadContent(ctx context.Context, requesterID, fileID string, size int) ([]byte, string, error) {
	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find file: %w", err)
	}
	if file == nil {
		return nil, "", model.NewNotFoundError()
	}

	if !file.IsPublic {
		if requesterID == "" || requesterID != file.OwnerID {
			return nil, "", model.NewNotFoundError()
		}
	}

	if file.Kind == model.KindFolder {
		return nil, "", model.NewValidationError(model.MsgFolderNoContent)
	}

	if file.LocalPath == "" {
		return nil, "", model.NewNotFoundError()
	}

	var data []byte
	if model.SupportedThumbnailWidth(size) {
		data, err = s.blobs.ReadVariant(ctx, file.LocalPath, size)
	} else {
		data, err = s.blobs.Read(ctx, file.LocalPath)
	}
	if errors.Is(err, blob.ErrNotFound) {
		return nil, "", model.NewNotFoundError()
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read content: %w", err)
	}

	return data, contentType(file.Name), nil
}

// contentType はファイル名の拡張子からContent-Typeを導出する。
func contentType(name string) string {
	if mt := mime.TypeByExtension(filepath.Ext(name)); mt != "" {
		return mt
	}
	return defaultMimeType
}
