package service

import (
	"context"
	"fmt"
	"sync"

	"libtrack/internal/modules/library/domain"
	libraryout "libtrack/internal/modules/library/port/out"
	apperrors "libtrack/internal/platform/errors"
)

// EntityStore keeps the last committed snapshot of the gateway in memory.
// The snapshot is only ever replaced by a full reload.
type EntityStore struct {
	gateway libraryout.Gateway

	mu       sync.RWMutex
	snapshot domain.Snapshot

	subMu       sync.Mutex
	nextSub     int
	subscribers map[int]func(domain.Snapshot)
}

func NewEntityStore(gateway libraryout.Gateway) *EntityStore {
	return &EntityStore{gateway: gateway, subscribers: map[int]func(domain.Snapshot){}}
}

func (s *EntityStore) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *EntityStore) Reload(ctx context.Context) error {
	categories, err := s.gateway.LoadCategories(ctx)
	if err != nil {
		return fmt.Errorf("%w: load categories: %w", apperrors.ErrStorageFailure, err)
	}
	books, err := s.gateway.LoadBooks(ctx)
	if err != nil {
		return fmt.Errorf("%w: load books: %w", apperrors.ErrStorageFailure, err)
	}
	members, err := s.gateway.LoadMembers(ctx)
	if err != nil {
		return fmt.Errorf("%w: load members: %w", apperrors.ErrStorageFailure, err)
	}
	loans, err := s.gateway.LoadLoans(ctx)
	if err != nil {
		return fmt.Errorf("%w: load loans: %w", apperrors.ErrStorageFailure, err)
	}
	snap := domain.NewSnapshot(domain.Dataset{Categories: categories, Books: books, Members: members, Loans: loans})

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	s.publish(snap)
	return nil
}

// Commit saves tx and reloads. On a failed save the current snapshot is kept.
func (s *EntityStore) Commit(ctx context.Context, tx domain.Transaction) error {
	if err := s.gateway.Save(ctx, tx); err != nil {
		return fmt.Errorf("%w: save: %w", apperrors.ErrStorageFailure, err)
	}
	return s.Reload(ctx)
}

func (s *EntityStore) Subscribe(fn func(domain.Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	key := s.nextSub
	s.nextSub++
	s.subscribers[key] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, key)
	}
}

func (s *EntityStore) publish(snap domain.Snapshot) {
	s.subMu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
