package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/phonefeed-api/internal/domain"
)

// PostStore is an in-memory posts collection whose mutations are conditional
// on the owner, like dynamo.PostRepo.
type PostStore struct {
	mu    sync.RWMutex
	posts map[string]domain.Post
}

func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]domain.Post)}
}

func (s *PostStore) Put(_ context.Context, p *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.PostID] = *p
	return nil
}

func (s *PostStore) Get(_ context.Context, postID string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

func (s *PostStore) List(_ context.Context) ([]domain.Post, error) {
	return s.filter(func(domain.Post) bool { return true }), nil
}

func (s *PostStore) ListByPhone(_ context.Context, phoneNumber string) ([]domain.Post, error) {
	return s.filter(func(p domain.Post) bool { return p.PhoneNumber == phoneNumber }), nil
}

func (s *PostStore) UpdateContent(_ context.Context, postID, owner, caption, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok || p.PhoneNumber != owner {
		return fmt.Errorf("post changed: %w", domain.ErrConflict)
	}
	p.Caption, p.ImageURL = caption, imageURL
	s.posts[postID] = p
	return nil
}

func (s *PostStore) Delete(_ context.Context, postID, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok || p.PhoneNumber != owner {
		return fmt.Errorf("post changed: %w", domain.ErrConflict)
	}
	delete(s.posts, postID)
	return nil
}

func (s *PostStore) filter(keep func(domain.Post) bool) []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostID < out[j].PostID })
	return out
}
