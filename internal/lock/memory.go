package lock

import (
	"context"
	"sync"
)

// Memory is an in-process Locker for single-instance deployments.
type Memory struct {
	mu   sync.Mutex
	held map[string]uint64
	seq  uint64
}

func NewMemory() *Memory {
	return &Memory{held: make(map[string]uint64)}
}

func (m *Memory) TryAcquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[key]; ok {
		return nil, ErrBusy
	}
	m.seq++
	token := m.seq
	m.held[key] = token

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.held[key] == token {
				delete(m.held, key)
			}
		})
	}, nil
}
