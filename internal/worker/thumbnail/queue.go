// Package thumbnail は画像アップロード完了を契機とするサムネイル生成の
// ジョブキューとワーカーを提供する。
package thumbnail

import "sync"

// Job はサムネイル生成ジョブを表す。
// File Serviceが画像アップロード成功時に発行し、それ以外の投入経路はない。
type Job struct {
	OwnerID string
	FileID  string
}

// Queue は発行側をブロックしない有界ジョブキュー。
//
// 発行（File Service）はHTTPレスポンスの前にEnqueueを呼ぶが、消費側の
// 完了はもちろん開始さえ待たない。キューが満杯の場合Enqueueは即座に
// falseを返し、ジョブは破棄される。
type Queue struct {
	mu     sync.Mutex
	ch     chan Job
	closed bool
}

// NewQueue は容量sizeのQueueを生成する。sizeが0以下の場合は1を使用する。
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{ch: make(chan Job, size)}
}

// Enqueue はジョブを投入する。投入できた場合はtrueを返す。
// キューが満杯またはクローズ済みの場合はブロックせずfalseを返す。
func (q *Queue) Enqueue(job Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	select {
	case q.ch <- job:
		return true
	default:
		return false
	}
}

// Jobs は消費側のチャネルを返す。Close後、残ジョブの排出が終わるとcloseされる。
func (q *Queue) Jobs() <-chan Job {
	return q.ch
}

// Close はキューを閉じる。以後のEnqueueはfalseを返す。
// 投入済みのジョブは消費側が引き続き排出できる。
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
