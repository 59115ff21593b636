package inmemory

import (
	"context"
	"sync"
)

// Storage keeps values in process memory. Nothing survives a restart.
type Storage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewStorage() *Storage {
	return &Storage{
		values: make(map[string][]byte),
	}
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	value, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(value), true, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.values[key] = cloneBytes(value)
	s.mu.Unlock()
	return nil
}

func cloneBytes(value []byte) []byte {
	cloned := make([]byte, len(value))
	copy(cloned, value)
	return cloned
}
