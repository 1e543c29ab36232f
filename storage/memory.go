package storage

import (
	"context"
	"sync"

	"github.com/awantoch/geminiproxy/model"
)

// MemoryStorage implements Storage in-memory (for dev mode and tests)
type MemoryStorage struct {
	mu        sync.Mutex
	exchanges []*model.Exchange
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Record(ctx context.Context, ex *model.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ex
	m.exchanges = append(m.exchanges, &cp)
	return nil
}

func (m *MemoryStorage) List(ctx context.Context, limit int) ([]*model.Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Exchange, 0, len(m.exchanges))
	for i := len(m.exchanges) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		cp := *m.exchanges[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
