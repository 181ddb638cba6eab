package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is the in-process backend: the default for tests and for
// running the site without external services. Subscribers are notified
// synchronously on every write or removal of their key.
type Memory struct {
	mu   sync.RWMutex
	m    map[string]string
	subs map[string]map[string]func()
}

func NewMemory() *Memory {
	return &Memory{
		m:    make(map[string]string),
		subs: make(map[string]map[string]func()),
	}
}

func (s *Memory) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.m[key] = value
	fns := s.snapshotSubs(key)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

func (s *Memory) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	fns := s.snapshotSubs(key)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

func (s *Memory) Subscribe(key string, fn func()) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[key] == nil {
		s.subs[key] = make(map[string]func())
	}

	id := uuid.NewString()
	s.subs[key][id] = fn

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[key], id)
	}
	return cancel, nil
}

func (s *Memory) Ping(_ context.Context) error { return nil }

// snapshotSubs must be called with mu held.
func (s *Memory) snapshotSubs(key string) []func() {
	fns := make([]func(), 0, len(s.subs[key]))
	for _, fn := range s.subs[key] {
		fns = append(fns, fn)
	}
	return fns
}
