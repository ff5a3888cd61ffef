package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"regform/internal/registration/models"
	"regform/pkg/platform/sentinel"
)

// InMemory keeps records in process. The email check and the append happen
// under one lock, so concurrent duplicates resolve to a single winner.
type InMemory struct {
	mu      sync.RWMutex
	records []models.Record
	emails  map[string]struct{}
	nextID  int64
	now     func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{
		emails: make(map[string]struct{}),
		nextID: 1,
		now:    time.Now,
	}
}

func (s *InMemory) Insert(_ context.Context, sub models.Submission) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[sub.Email]; taken {
		return models.Record{}, fmt.Errorf("insert user: %w", sentinel.ErrConflict)
	}
	rec := models.NewRecord(s.nextID, sub, s.now())
	s.nextID++
	s.emails[sub.Email] = struct{}{}
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *InMemory) List(_ context.Context) ([]models.Record, error) {
	s.mu.RLock()
	out := append([]models.Record{}, s.records...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *InMemory) Close() error {
	return nil
}
