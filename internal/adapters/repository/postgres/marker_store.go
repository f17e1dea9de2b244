package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	pgdb "github.com/ogurasousui/isg-tracker/internal/platform/db/postgres"
)

// MarkerStore は app_markers テーブルを使う marker.Store の実装です。
type MarkerStore struct {
	pool pgdb.Queryer
}

// NewMarkerStore は MarkerStore を生成します。
func NewMarkerStore(pool pgdb.Queryer) *MarkerStore {
	return &MarkerStore{pool: pool}
}

// Get はキーの値を取得します。未設定なら ok は false です。
func (s *MarkerStore) Get(ctx context.Context, key string) (string, bool, error) {
	exec := pgdb.QueryerFromContext(ctx, s.pool)
	var value string
	err := exec.QueryRow(ctx, `SELECT value FROM app_markers WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set はキーの値を上書き保存します。
func (s *MarkerStore) Set(ctx context.Context, key, value string) error {
	exec := pgdb.QueryerFromContext(ctx, s.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO app_markers (key, value, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE
           SET value = EXCLUDED.value,
               updated_at = EXCLUDED.updated_at
    `, key, value)
	return err
}

// SetIfChanged は現在値と異なるときだけ保存します。行の更新判定は一文の upsert で行います。
func (s *MarkerStore) SetIfChanged(ctx context.Context, key, value string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, s.pool)
	tag, err := exec.Exec(ctx, `
        INSERT INTO app_markers (key, value, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE
           SET value = EXCLUDED.value,
               updated_at = EXCLUDED.updated_at
         WHERE app_markers.value IS DISTINCT FROM EXCLUDED.value
    `, key, value)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
