package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Commander は MarkerStore が使う Redis コマンドの部分集合です。
type Commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetArgs(ctx context.Context, key string, value interface{}, a redis.SetArgs) *redis.StatusCmd
}

// MarkerStore は Redis を使う marker.Store の実装です。キーには prefix を付与します。
type MarkerStore struct {
	rdb    Commander
	prefix string
}

// NewMarkerStore は MarkerStore を生成します。
func NewMarkerStore(rdb Commander, prefix string) *MarkerStore {
	return &MarkerStore{rdb: rdb, prefix: prefix}
}

// Get はキーの値を取得します。未設定なら ok は false です。
func (s *MarkerStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set はキーの値を期限なしで保存します。
func (s *MarkerStore) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.prefix+key, value, 0).Err()
}

// SetIfChanged は SET ... GET で値を置き換え、直前の値と異なっていたかを返します。
func (s *MarkerStore) SetIfChanged(ctx context.Context, key, value string) (bool, error) {
	old, err := s.rdb.SetArgs(ctx, s.prefix+key, value, redis.SetArgs{Get: true}).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return old != value, nil
}
