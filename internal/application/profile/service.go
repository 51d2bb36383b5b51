package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/phonefeed-api/internal/domain"
	"github.com/phonefeed-api/internal/pkg/id"
	"github.com/phonefeed-api/internal/pkg/validate"
)

type Store interface {
	Put(ctx context.Context, p *domain.UserProfile) error
	List(ctx context.Context) ([]domain.UserProfile, error)
	ListByPhone(ctx context.Context, phoneNumber string) ([]domain.UserProfile, error)
}

type Service interface {
	Add(ctx context.Context, req domain.CreateProfileRequest) (*domain.UserProfile, error)
	List(ctx context.Context, phoneNumber string) ([]domain.UserProfile, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) Add(ctx context.Context, req domain.CreateProfileRequest) (*domain.UserProfile, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrValidation)
	}
	p := &domain.UserProfile{
		ProfileID:   id.New(),
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		ProfilePic:  req.ProfilePic,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) List(ctx context.Context, phoneNumber string) ([]domain.UserProfile, error) {
	var (
		profiles []domain.UserProfile
		err      error
	)
	if phoneNumber != "" {
		profiles, err = s.store.ListByPhone(ctx, phoneNumber)
	} else {
		profiles, err = s.store.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []domain.UserProfile{}
	}
	return profiles, nil
}
