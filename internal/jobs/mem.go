package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "clipforge/internal/pkg/errors"
)

// MemStore is an in-memory Store. It enforces the same transition guards as
// the PostgreSQL store and is safe for concurrent use.
type MemStore struct {
	mu   sync.RWMutex
	byID map[string]*Job
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[string]*Job)}
}

func (s *MemStore) Create(_ context.Context, j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *j
	s.byID[j.ID] = &cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NotFound("job", id)
	}
	cp := *j
	return &cp, nil
}

func (s *MemStore) GetOwned(_ context.Context, id, ownerID string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.byID[id]
	if !ok || j.OwnerID != ownerID {
		return nil, apperrors.NotFound("job", id)
	}
	cp := *j
	return &cp, nil
}

func (s *MemStore) ListOwned(_ context.Context, ownerID string, limit int) ([]Job, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Job
	for _, j := range s.byID {
		if j.OwnerID == ownerID {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) MarkRendering(_ context.Context, id string, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.byID[id]
	if !ok || j.Status != StatusPending {
		return apperrors.NotFound("pending job", id)
	}
	j.Status = StatusRendering
	if progress > j.Progress {
		j.Progress = progress
	}
	return nil
}

func (s *MemStore) SetProgress(_ context.Context, id string, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.byID[id]
	if !ok || j.Status != StatusRendering {
		return nil
	}
	if progress > j.Progress {
		j.Progress = progress
	}
	return nil
}

func (s *MemStore) Complete(_ context.Context, id, artifactURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.byID[id]
	if !ok || j.Status != StatusRendering {
		return apperrors.NotFound("rendering job", id)
	}
	now := time.Now().UTC()
	j.Status = StatusCompleted
	j.Progress = 100
	j.ArtifactURL = artifactURL
	j.ErrorMessage = ""
	j.CompletedAt = &now
	return nil
}

func (s *MemStore) Fail(_ context.Context, id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.byID[id]
	if !ok || j.Status.Terminal() {
		return apperrors.NotFound("active job", id)
	}
	if len(message) > 2000 {
		message = message[:2000]
	}
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ArtifactURL = ""
	return nil
}

var _ Store = (*MemStore)(nil)
