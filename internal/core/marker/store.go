package marker

import (
	"context"
	"sync"
)

// Store は日付キーの既読マーカーなど、小さなキーバリューを保持する抽象です。
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ConditionalSetter は値が変わるときだけ書き込む操作を原子的に行える Store です。
type ConditionalSetter interface {
	// SetIfChanged は現在値が value と異なる(または未設定の)ときだけ保存し、保存したかを返します。
	SetIfChanged(ctx context.Context, key, value string) (bool, error)
}

// MemoryStore はプロセス内で完結する Store 実装です。
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore は空の MemoryStore を生成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) SetIfChanged(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok && v == value {
		return false, nil
	}
	s.values[key] = value
	return true, nil
}
