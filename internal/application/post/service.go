package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phonefeed-api/internal/domain"
	"github.com/phonefeed-api/internal/pkg/id"
	"github.com/phonefeed-api/internal/pkg/validate"
)

// Store is the posts collection. UpdateContent and Delete are conditional on the
// post existing with the given owner and return domain.ErrConflict otherwise.
type Store interface {
	Put(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Post, error)
	UpdateContent(ctx context.Context, postID, owner, caption, imageURL string) error
	Delete(ctx context.Context, postID, owner string) error
}

type Service interface {
	Create(ctx context.Context, req domain.CreatePostRequest) (*domain.Post, error)
	// List returns every post in creation order, or only phoneNumber's when it is set.
	List(ctx context.Context, phoneNumber string) ([]domain.Post, error)
	Edit(ctx context.Context, postID string, req domain.EditPostRequest) error
	Delete(ctx context.Context, postID string, req domain.DeletePostRequest) error
}

type service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) Service {
	return &service{store: store, now: time.Now}
}

func (s *service) Create(ctx context.Context, req domain.CreatePostRequest) (*domain.Post, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrValidation)
	}
	p := &domain.Post{
		PostID:      id.New(),
		PhoneNumber: req.PhoneNumber,
		Caption:     req.Caption,
		ImageURL:    req.ImageURL,
		CreatedAt:   s.now().UTC().Format(domain.TimestampLayout),
	}
	if err := s.store.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) List(ctx context.Context, phoneNumber string) ([]domain.Post, error) {
	var (
		posts []domain.Post
		err   error
	)
	if phoneNumber != "" {
		posts, err = s.store.ListByPhone(ctx, phoneNumber)
	} else {
		posts, err = s.store.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

func (s *service) Edit(ctx context.Context, postID string, req domain.EditPostRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err, domain.ErrValidation)
	}
	if err := s.authorize(ctx, postID, req.UserID); err != nil {
		return err
	}
	err := s.store.UpdateContent(ctx, postID, req.UserID, req.Caption, req.ImageURL)
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("post %s removed concurrently: %w", postID, domain.ErrNotFound)
	}
	return err
}

func (s *service) Delete(ctx context.Context, postID string, req domain.DeletePostRequest) error {
	if err := s.authorize(ctx, postID, req.UserID); err != nil {
		return err
	}
	err := s.store.Delete(ctx, postID, req.UserID)
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("post %s removed concurrently: %w", postID, domain.ErrNotFound)
	}
	return err
}

// authorize loads the post and checks that userID owns it. An empty userID never matches.
func (s *service) authorize(ctx context.Context, postID, userID string) error {
	p, err := s.store.Get(ctx, postID)
	if err != nil {
		return err
	}
	if userID == "" || p.PhoneNumber != userID {
		return fmt.Errorf("post %s not owned by caller: %w", postID, domain.ErrForbidden)
	}
	return nil
}
