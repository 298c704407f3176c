package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/hitoshi/filebox/internal/blob"
	"github.com/hitoshi/filebox/internal/model"
)

// FileFinder はジョブ処理時のファイルレコード再取得インターフェース。
// repository.FileRepositoryの部分集合として定義する。
type FileFinder interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.File, error)
}

// MetricsRecorder はサムネイル生成のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordThumbnailSuccess()
	RecordThumbnailFailure()
	RecordThumbnailLatency(duration time.Duration)
}

// Worker はサムネイル生成ジョブを消費するワーカー。
//
// ジョブごとの状態遷移は Queued -> Running -> {Completed, Failed}。
// 開始時にファイルレコードを(fileId, ownerId)で再取得し、不在または
// 画像以外の場合はジョブを失敗として記録する（自動リトライはしない）。
// 各幅の生成は独立しており、一部の失敗は他の幅を妨げない。部分完了は
// 正当な終端状態である。
type Worker struct {
	queue          *Queue
	files          FileFinder
	blobs          blob.Store
	logger         *slog.Logger
	metrics        MetricsRecorder
	maxConcurrency int
}

// NewWorker はWorkerの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値4を使用する。metricsはnil可。
func NewWorker(
	queue *Queue,
	files FileFinder,
	blobs blob.Store,
	logger *slog.Logger,
	metrics MetricsRecorder,
	maxConcurrency int,
) *Worker {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Worker{
		queue:          queue,
		files:          files,
		blobs:          blobs,
		logger:         logger,
		metrics:        metrics,
		maxConcurrency: maxConcurrency,
	}
}

// Start はジョブの消費を開始する。
// コンテキストのキャンセルまたはキューのクローズまで実行を継続し、
// 処理中のジョブの完了を待ってから戻る。
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("thumbnail worker started",
		slog.Int("max_concurrency", w.maxConcurrency),
	)

	sem := make(chan struct{}, w.maxConcurrency)
	var wg sync.WaitGroup

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case job, ok := <-w.queue.Jobs():
			if !ok {
				break loop
			}

			wg.Add(1)
			sem <- struct{}{}

			go func(job Job) {
				defer wg.Done()
				defer func() { <-sem }()

				w.Process(ctx, job)
			}(job)
		}
	}

	wg.Wait()
	w.logger.Info("thumbnail worker stopped")
}

// Process は1件のジョブを実行する。
// 戻り値は呼び出し元に消費されない。外部から観測可能な効果は
// 書き込みに成功した派生Blobの集合のみである。
func (w *Worker) Process(ctx context.Context, job Job) {
	start := time.Now()

	file, err := w.files.FindByIDAndOwner(ctx, job.FileID, job.OwnerID)
	if err != nil {
		w.failJob(job, fmt.Sprintf("failed to fetch file record: %v", err))
		return
	}
	if file == nil {
		w.failJob(job, "file not found")
		return
	}
	if !file.IsImage() {
		w.failJob(job, "file is not an image")
		return
	}

	original, err := w.blobs.Read(ctx, file.LocalPath)
	if err != nil {
		w.failJob(job, fmt.Sprintf("failed to read original content: %v", err))
		return
	}

	img, err := imaging.Decode(bytes.NewReader(original))
	if err != nil {
		w.failJob(job, fmt.Sprintf("failed to decode image: %v", err))
		return
	}

	format, err := imaging.FormatFromFilename(file.Name)
	if err != nil {
		format = imaging.PNG
	}

	generated := 0
	for _, width := range model.ThumbnailWidths {
		if err := w.generate(ctx, file.LocalPath, img, format, width); err != nil {
			// 幅ごとの失敗は独立。他の幅の生成は継続する。
			w.logger.Error("thumbnail generation failed for width",
				slog.String("file_id", job.FileID),
				slog.Int("width", width),
				slog.String("error", err.Error()),
			)
			if w.metrics != nil {
				w.metrics.RecordThumbnailFailure()
			}
			continue
		}
		generated++
		if w.metrics != nil {
			w.metrics.RecordThumbnailSuccess()
		}
	}

	if w.metrics != nil {
		w.metrics.RecordThumbnailLatency(time.Since(start))
	}

	w.logger.Info("thumbnail job finished",
		slog.String("file_id", job.FileID),
		slog.Int("generated", generated),
		slog.Int("requested", len(model.ThumbnailWidths)),
	)
}

// generate は1つの幅の派生Blobを生成・書き込みする。
// アスペクト比は維持し、幅のみを指定値に揃える。
func (w *Worker) generate(ctx context.Context, ref string, img image.Image, format imaging.Format, width int) error {
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	if err := w.blobs.SaveVariant(ctx, ref, width, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}

	return nil
}

// failJob はジョブを失敗として記録する。自動リトライは行わない。
func (w *Worker) failJob(job Job, reason string) {
	w.logger.Error("thumbnail job failed",
		slog.String("file_id", job.FileID),
		slog.String("owner_id", job.OwnerID),
		slog.String("reason", reason),
	)
	if w.metrics != nil {
		w.metrics.RecordThumbnailFailure()
	}
}
