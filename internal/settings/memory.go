package settings

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sandeepkv93/visionary/internal/storage"
)

// MemoryKV is an in-memory KV fake shared by tests in several packages.
type MemoryKV struct {
	mu     sync.Mutex
	items  map[string]storage.Setting
	writes int
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string]storage.Setting)}
}

func (m *MemoryKV) GetSetting(_ context.Context, key string) (storage.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok {
		return storage.Setting{}, storage.ErrNotFound
	}
	return item, nil
}

func (m *MemoryKV) PutSetting(_ context.Context, in storage.Setting) error {
	if strings.TrimSpace(in.Key) == "" {
		return errors.New("settings: setting key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[in.Key] = in
	m.writes++
	return nil
}

// WriteCount reports how many PutSetting calls succeeded.
func (m *MemoryKV) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
