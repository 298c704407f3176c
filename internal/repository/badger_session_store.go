package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerSessionStore はBadgerDBを使用した有効期限付きセッションストア。
//
// 失効はBadgerのエントリ単位TTL（Entry.WithTTL）に委譲するため、
// サービス側で失効セッションを走査する必要がない。失効済みキーの参照は
// キー不在と同一の結果を返す。
type BadgerSessionStore struct {
	db *badger.DB
}

// NewBadgerSessionStore は指定ディレクトリにBadgerDBを開いてストアを生成する。
// ディレクトリは存在しなければ作成される。
func NewBadgerSessionStore(path string) (*BadgerSessionStore, error) {
	opts := badger.DefaultOptions(path)
	// セッションストアのログは冗長なため抑制する
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return &BadgerSessionStore{db: db}, nil
}

// NewInMemorySessionStore はディスクに書き込まないBadgerDBでストアを生成する。
// テストおよびローカル開発用。
func NewInMemorySessionStore() (*BadgerSessionStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory session store: %w", err)
	}

	return &BadgerSessionStore{db: db}, nil
}

// Put はキーに値を保存し、ttl経過後に自動失効させる。
func (s *BadgerSessionStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value)).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to put session key: %w", err)
	}
	return nil
}

// Get はキーの現在値を返す。不在または失効済みの場合は空文字列を返す。
func (s *BadgerSessionStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session key: %w", err)
	}

	return value, nil
}

// Delete はキーを即時削除する。不在のキーの削除はエラーにならない。
func (s *BadgerSessionStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete session key: %w", err)
	}
	return nil
}

// Alive はストアが利用可能かを返す。
func (s *BadgerSessionStore) Alive() bool {
	return s.db != nil && !s.db.IsClosed()
}

// Close はストアを閉じる。
func (s *BadgerSessionStore) Close() error {
	return s.db.Close()
}

// compile-time interface check
var _ SessionStore = (*BadgerSessionStore)(nil)
