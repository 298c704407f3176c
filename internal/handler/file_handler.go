package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/filebox/internal/file"
	"github.com/hitoshi/filebox/internal/middleware"
	"github.com/hitoshi/filebox/internal/model"
)

// FileServiceInterface はファイルハンドラーが必要とするサービスインターフェース。
type FileServiceInterface interface {
	// Create はファイル/フォルダを作成する。
	Create(ctx context.Context, in file.CreateInput) (*model.File, error)
	// Get は所有ファイルのメタデータを取得する。
	Get(ctx context.Context, requesterID, fileID string) (*model.File, error)
	// List は親フォルダ直下の所有ファイルをページングで返す。
	List(ctx context.Context, requesterID, parentID string, page int) ([]*model.File, error)
	// SetVisibility は公開フラグを更新する。
	SetVisibility(ctx context.Context, requesterID, fileID string, isPublic bool) (*model.File, error)
	// ReadContent はファイルのバイナリコンテンツとContent-Typeを返す。
	ReadContent(ctx context.Context, requesterID, fileID string, size int) ([]byte, string, error)
}

// UploadRecorder はアップロード成功のメトリクス記録インターフェース。
type UploadRecorder interface {
	RecordUpload(kind string)
}

// FileHandler はファイル管理のHTTPハンドラー。
//
// resolverはコンテンツ配信エンドポイント用で、セッションミドルウェアの外でも
// X-Tokenヘッダーを任意に解決する。解決失敗は未認証として扱い拒否しない。
type FileHandler struct {
	service  FileServiceInterface
	resolver middleware.TokenResolver
	uploads  UploadRecorder
}

// NewFileHandler はFileHandlerを生成する。
// uploadsはnil許容で、nilの場合メトリクスは記録しない。
func NewFileHandler(service FileServiceInterface, resolver middleware.TokenResolver, uploads UploadRecorder) *FileHandler {
	return &FileHandler{
		service:  service,
		resolver: resolver,
		uploads:  uploads,
	}
}

// uploadRequest はファイル/フォルダ作成リクエストのボディ。
// parentIdはルート直下を表す数値0と親フォルダIDの文字列の両方を受け付ける。
type uploadRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID any    `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

// fileResponse はファイルメタデータのAPIレスポンス。
// LocalPathは内部情報であり決して含めない。parentIdはルート直下の場合
// 数値0、それ以外は親フォルダIDの文字列。
type fileResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID any    `json:"parentId"`
}

// toFileResponse はドメインのFileをAPIレスポンス型に変換する。
func toFileResponse(f *model.File) fileResponse {
	var parentID any = 0
	if f.ParentID != "" {
		parentID = f.ParentID
	}

	return fileResponse{
		ID:       f.ID,
		UserID:   f.OwnerID,
		Name:     f.Name,
		Type:     string(f.Kind),
		IsPublic: f.IsPublic,
		ParentID: parentID,
	}
}

// parseParentID はリクエスト上のparentId表現を内部表現に正規化する。
// 数値0・null・空文字列はすべてルート直下（空文字列）になる。
func parseParentID(v any) string {
	switch p := v.(type) {
	case string:
		if p == "0" {
			return ""
		}
		return p
	case float64:
		if p == 0 {
			return ""
		}
		return strconv.FormatFloat(p, 'f', -1, 64)
	default:
		return ""
	}
}

// Upload はファイル/フォルダ作成を処理する。
// POST /files
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, model.MsgUnauthorized)
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.MsgMissingName)
		return
	}

	created, err := h.service.Create(r.Context(), file.CreateInput{
		OwnerID:  userID,
		Name:     req.Name,
		Kind:     model.FileKind(req.Type),
		ParentID: parseParentID(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.uploads != nil {
		h.uploads.RecordUpload(string(created.Kind))
	}

	writeJSON(w, http.StatusCreated, toFileResponse(created))
}

// Get はファイルメタデータを取得する。
// GET /files/:id
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, model.MsgUnauthorized)
		return
	}

	f, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFileResponse(f))
}

// List は親フォルダ直下の所有ファイル一覧を返す。
// GET /files?parentId=&page=
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, model.MsgUnauthorized)
		return
	}

	parentID := r.URL.Query().Get("parentId")
	if parentID == "0" {
		parentID = ""
	}

	// 数値として解釈できないpageは0として扱う
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		page = 0
	}

	files, err := h.service.List(r.Context(), userID, parentID, page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]fileResponse, len(files))
	for i, f := range files {
		results[i] = toFileResponse(f)
	}

	writeJSON(w, http.StatusOK, results)
}

// Publish はファイルを公開状態にする。
// PUT /files/:id/publish
func (h *FileHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, true)
}

// Unpublish はファイルを非公開状態にする。
// PUT /files/:id/unpublish
func (h *FileHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, false)
}

func (h *FileHandler) setVisibility(w http.ResponseWriter, r *http.Request, isPublic bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, model.MsgUnauthorized)
		return
	}

	updated, err := h.service.SetVisibility(r.Context(), userID, chi.URLParam(r, "id"), isPublic)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFileResponse(updated))
}

// Data はファイルのバイナリコンテンツを配信する。
// GET /files/:id/data?size=
//
// 認証は任意で、公開ファイルはトークンなしでも取得できる。
// 無効なトークンは未認証として扱う（401にはしない）。
func (h *FileHandler) Data(w http.ResponseWriter, r *http.Request) {
	var requesterID string
	if h.resolver != nil {
		if userID, err := h.resolver.ResolveToken(r.Context(), r.Header.Get(middleware.TokenHeaderName)); err == nil {
			requesterID = userID
		}
	}

	// 数値として解釈できないsizeは0（元コンテンツ）として扱う
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		size = 0
	}

	data, mimeType, err := h.service.ReadContent(r.Context(), requesterID, chi.URLParam(r, "id"), size)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Write(data)
}
