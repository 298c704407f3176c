package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/filebox/internal/metrics"
	"github.com/hitoshi/filebox/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenResolver middleware.TokenResolver
	RateLimiter   *middleware.RateLimiter
	Logger        *slog.Logger

	// メトリクス
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer

	// サービス
	UserService UserServiceInterface
	AuthService AuthServiceInterface
	FileService FileServiceInterface

	// 死活確認・統計
	Sessions SessionChecker
	DB       DBPinger
	Users    Counter
	Files    Counter
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware → MetricsMiddleware
//	→（認証ルートのみ）SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// /users・/connect・/files/{id}/dataはセッションミドルウェアの外に配置する。
// コンテンツ配信はハンドラー内で任意に認証を解決する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Collector != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Collector))
	}

	appHandler := NewAppHandler(deps.Sessions, deps.DB, deps.Users, deps.Files)
	userHandler := NewUserHandler(deps.UserService)
	authHandler := NewAuthHandler(deps.AuthService)
	// 型付きnilをインターフェースに包むとnil判定をすり抜けるため明示的に分岐する
	var uploads UploadRecorder
	if deps.Collector != nil {
		uploads = deps.Collector
	}
	fileHandler := NewFileHandler(deps.FileService, deps.TokenResolver, uploads)

	// --- 認証不要のルート ---

	r.Get("/status", appHandler.Status)
	r.Get("/stats", appHandler.Stats)
	r.Post("/users", userHandler.Register)
	r.Get("/connect", authHandler.Connect)
	r.Get("/files/{id}/data", fileHandler.Data)

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.TokenResolver))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Get("/disconnect", authHandler.Disconnect)
		r.Get("/users/me", userHandler.Me)

		r.Route("/files", func(r chi.Router) {
			// POST /files - アップロード（専用レート制限を追加）
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.UploadMiddleware()).Post("/", fileHandler.Upload)
			} else {
				r.Post("/", fileHandler.Upload)
			}

			r.Get("/", fileHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", fileHandler.Get)
				r.Put("/publish", fileHandler.Publish)
				r.Put("/unpublish", fileHandler.Unpublish)
			})
		})
	})

	return r
}
