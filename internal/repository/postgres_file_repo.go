package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/filebox/internal/model"
)

// PostgresFileRepo はPostgreSQLを使用したファイルメタデータリポジトリ。
type PostgresFileRepo struct {
	db *sql.DB
}

// NewPostgresFileRepo はPostgresFileRepoを生成する。
func NewPostgresFileRepo(db *sql.DB) *PostgresFileRepo {
	return &PostgresFileRepo{db: db}
}

// Create はファイルレコードを作成する。
func (r *PostgresFileRepo) Create(ctx context.Context, file *model.File) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO files (id, owner_id, name, kind, parent_id, is_public, local_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		file.ID, file.OwnerID, file.Name, string(file.Kind), file.ParentID,
		file.IsPublic, file.LocalPath, file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

// FindByID は指定IDのファイルを所有者を問わず取得する。見つからない場合はnilを返す。
func (r *PostgresFileRepo) FindByID(ctx context.Context, id string) (*model.File, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, kind, parent_id, is_public, local_path, created_at
		 FROM files WHERE id = $1`,
		id,
	))
}

// FindByIDAndOwner は指定IDかつ指定所有者のファイルを取得する。
// 不在と所有者不一致はどちらもnilを返す。
func (r *PostgresFileRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.File, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, kind, parent_id, is_public, local_path, created_at
		 FROM files WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	))
}

// ListByOwnerAndParent は指定所有者・指定親フォルダ直下のファイルを
// 作成順でlimit件、offset件スキップして返す。
func (r *PostgresFileRepo) ListByOwnerAndParent(ctx context.Context, ownerID, parentID string, limit, offset int) ([]*model.File, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, kind, parent_id, is_public, local_path, created_at
		 FROM files
		 WHERE owner_id = $1 AND parent_id = $2
		 ORDER BY created_at, id
		 LIMIT $3 OFFSET $4`,
		ownerID, parentID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files := []*model.File{}
	for rows.Next() {
		file := &model.File{}
		var kind string
		if err := rows.Scan(&file.ID, &file.OwnerID, &file.Name, &kind,
			&file.ParentID, &file.IsPublic, &file.LocalPath, &file.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		file.Kind = model.FileKind(kind)
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file rows: %w", err)
	}

	return files, nil
}

// UpdateVisibility はis_publicを更新し、更新後のレコードを返す。
// 対象が存在しない場合はnilを返す。
func (r *PostgresFileRepo) UpdateVisibility(ctx context.Context, id string, isPublic bool) (*model.File, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`UPDATE files SET is_public = $2 WHERE id = $1
		 RETURNING id, owner_id, name, kind, parent_id, is_public, local_path, created_at`,
		id, isPublic,
	))
}

// Count はファイルレコード数を返す。
func (r *PostgresFileRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM files`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}

// scanOne は単一行クエリの結果をmodel.Fileに変換する。ErrNoRowsはnilに写す。
func (r *PostgresFileRepo) scanOne(row *sql.Row) (*model.File, error) {
	file := &model.File{}
	var kind string
	err := row.Scan(&file.ID, &file.OwnerID, &file.Name, &kind,
		&file.ParentID, &file.IsPublic, &file.LocalPath, &file.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan file: %w", err)
	}

	file.Kind = model.FileKind(kind)
	return file, nil
}

// compile-time interface check
var _ FileRepository = (*PostgresFileRepo)(nil)
