// Package store holds the per-entity state container that coordinates a remote
// repository with the list, loading, error and edit-slot state a page renders.
package store

import (
	"context"
	"errors"
	"sync"

	"penalty-console/internal/domain"
	"penalty-console/internal/ports"
)

// State is a point-in-time copy of a Store.
type State[T domain.Entity] struct {
	Items    []T    `json:"items"`
	Loading  bool   `json:"loading"`
	Error    string `json:"error,omitempty"`
	FormOpen bool   `json:"form_open"`
	Current  T      `json:"current"`
}

type Store[T domain.Entity] struct {
	mu       sync.Mutex
	repo     ports.Repository[T]
	notifier ports.Notifier
	logger   ports.Logger
	blank    func() T
	state    State[T]
	issued   uint64
	inflight int
}

// New builds a store. blank produces the template used for creation; nil means the zero
// value of T.
func New[T domain.Entity](repo ports.Repository[T], notifier ports.Notifier, logger ports.Logger, blank func() T) *Store[T] {
	if blank == nil {
		blank = func() T {
			var zero T
			return zero
		}
	}
	s := &Store[T]{repo: repo, notifier: notifier, logger: logger, blank: blank}
	s.state.Items = []T{}
	s.state.Current = blank()
	return s
}

// FetchAll replaces the list with the repository's current contents. Every call takes a
// sequence number and only the latest issued call may commit its response; earlier ones
// that resolve later are discarded. A failed fetch keeps the previous list.
func (s *Store[T]) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.inflight++
	s.state.Loading = true
	s.mu.Unlock()

	res := s.repo.GetAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.state.Loading = s.inflight > 0
	if seq != s.issued {
		s.logger.Debug(ctx, "discarding stale fetch", "seq", seq, "latest", s.issued)
		return nil
	}
	if !res.OK() {
		if errors.Is(res.Err(), domain.ErrUnauthorized) {
			return res.Err()
		}
		s.state.Error = res.Message()
		s.notifier.Error(ctx, res.Message())
		s.logger.Warn(ctx, "fetch failed", "error", res.Err())
		return res.Err()
	}
	s.state.Items = res.Data()
	s.state.Error = ""
	return nil
}

// Submit creates or updates item through the edit form. On success the form closes and
// the list is refetched; on failure the form stays open holding item so the operator can
// correct it.
func (s *Store[T]) Submit(ctx context.Context, item T) error {
	err := s.Save(ctx, item)
	if errors.Is(err, domain.ErrUnauthorized) {
		return err
	}
	s.mu.Lock()
	if err != nil {
		s.state.FormOpen = true
		s.state.Current = item
	} else {
		s.state.FormOpen = false
		s.state.Current = s.blank()
	}
	s.mu.Unlock()
	return err
}

// Save writes item, notifies and refetches without touching the edit slot. Writes that
// originate outside the page's own form use it.
func (s *Store[T]) Save(ctx context.Context, item T) error {
	res := s.repo.CreateOrUpdate(ctx, item)
	if !res.OK() {
		if errors.Is(res.Err(), domain.ErrUnauthorized) {
			return res.Err()
		}
		s.notifier.Error(ctx, res.Message())
		return res.Err()
	}
	s.notifier.Success(ctx, messageOr(res.Message(), SavedMessage))
	return s.resync(ctx)
}

// Remove deletes item. The list keeps showing it until the refetch after the server
// confirms.
func (s *Store[T]) Remove(ctx context.Context, item T) error {
	res := s.repo.Delete(ctx, item)
	if !res.OK() {
		if errors.Is(res.Err(), domain.ErrUnauthorized) {
			return res.Err()
		}
		s.notifier.Error(ctx, res.Message())
		return res.Err()
	}
	s.notifier.Success(ctx, messageOr(res.Message(), DeletedMessage))
	return s.resync(ctx)
}

// Notification texts used when the server confirms a write without a message.
const (
	SavedMessage   = "Saved"
	DeletedMessage = "Deleted"
)

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

func (s *Store[T]) resync(ctx context.Context) error {
	if err := s.FetchAll(ctx); errors.Is(err, domain.ErrUnauthorized) {
		return err
	}
	return nil
}

func (s *Store[T]) SelectForEdit(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Current = item
	s.state.FormOpen = true
}

func (s *Store[T]) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Current = s.blank()
	s.state.FormOpen = true
}

func (s *Store[T]) CloseForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Current = s.blank()
	s.state.FormOpen = false
}

// Find looks an item up in the loaded list.
func (s *Store[T]) Find(id int) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.state.Items {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.state.Items...)
}

func (s *Store[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Items = append([]T{}, s.state.Items...)
	return out
}
