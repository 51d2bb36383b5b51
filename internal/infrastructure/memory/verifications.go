package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phonefeed-api/internal/domain"
)

// PhoneVerificationStore is an in-memory phoneNumbers collection with the same
// conditional-write contract as dynamo.PhoneVerificationRepo.
type PhoneVerificationStore struct {
	mu      sync.RWMutex
	records map[string]domain.PhoneVerification
}

func NewPhoneVerificationStore() *PhoneVerificationStore {
	return &PhoneVerificationStore{records: make(map[string]domain.PhoneVerification)}
}

func (s *PhoneVerificationStore) Get(_ context.Context, phoneNumber string) (*domain.PhoneVerification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[phoneNumber]
	if !ok {
		return nil, fmt.Errorf("phone verification not found: %w", domain.ErrNotFound)
	}
	return &v, nil
}

func (s *PhoneVerificationStore) Create(_ context.Context, v *domain.PhoneVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[v.PhoneNumber]; ok {
		return fmt.Errorf("phone verification exists: %w", domain.ErrConflict)
	}
	s.records[v.PhoneNumber] = *v
	return nil
}

func (s *PhoneVerificationStore) UpdateChallenge(_ context.Context, phoneNumber, otp, deviceID, fcmToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[phoneNumber]
	if !ok || v.Register != domain.RegisteredNo {
		return fmt.Errorf("phone verification changed: %w", domain.ErrConflict)
	}
	v.OTP, v.DeviceID, v.FCMToken = otp, deviceID, fcmToken
	v.UpdatedAt = time.Now().UTC()
	s.records[phoneNumber] = v
	return nil
}

func (s *PhoneVerificationStore) MarkRegistered(_ context.Context, phoneNumber, otp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[phoneNumber]
	if !ok || v.OTP != otp {
		return fmt.Errorf("otp changed: %w", domain.ErrConflict)
	}
	v.Register = domain.RegisteredYes
	v.UpdatedAt = time.Now().UTC()
	s.records[phoneNumber] = v
	return nil
}

// Len reports the number of stored records.
func (s *PhoneVerificationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
