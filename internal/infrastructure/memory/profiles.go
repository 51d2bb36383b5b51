package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/phonefeed-api/internal/domain"
)

// ProfileStore is an in-memory userData collection.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]domain.UserProfile)}
}

func (s *ProfileStore) Put(_ context.Context, p *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ProfileID] = *p
	return nil
}

func (s *ProfileStore) List(_ context.Context) ([]domain.UserProfile, error) {
	return s.filter(func(domain.UserProfile) bool { return true }), nil
}

func (s *ProfileStore) ListByPhone(_ context.Context, phoneNumber string) ([]domain.UserProfile, error) {
	return s.filter(func(p domain.UserProfile) bool { return p.PhoneNumber == phoneNumber }), nil
}

func (s *ProfileStore) filter(keep func(domain.UserProfile) bool) []domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProfileID < out[j].ProfileID })
	return out
}
