package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phonefeed-api/internal/domain"
	"github.com/phonefeed-api/internal/pkg/id"
	"github.com/phonefeed-api/internal/pkg/otp"
	"github.com/phonefeed-api/internal/pkg/validate"
	"github.com/rs/zerolog"
)

// Notification titles; the body is always "Your OTP is <otp>".
const (
	TitleInitial = "Your OTP Code"
	TitleResend  = "Resend OTP Code"
)

// maxAttempts bounds re-reads after losing a conditional write to a concurrent request.
const maxAttempts = 3

// Outcome is the branch RequestOTP took.
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeResent
	OutcomeAlreadyRegistered
)

type RequestOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	FCMToken    string `json:"fcmToken" validate:"required"`
	DeviceID    string `json:"deviceId" validate:"required"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
}

// RequestOTPResult carries the record as it stands after the call. OTP is only
// set for the created and resent outcomes.
type RequestOTPResult struct {
	Outcome     Outcome
	PhoneNumber string
	DeviceID    string
	FCMToken    string
	OTP         string
	Register    string
}

type VerifyOTPResult struct {
	Token string // empty when no token issuer is configured
}

// Store is the phoneNumbers collection. Create, UpdateChallenge and MarkRegistered
// return domain.ErrConflict when their precondition no longer holds.
type Store interface {
	Get(ctx context.Context, phoneNumber string) (*domain.PhoneVerification, error)
	Create(ctx context.Context, v *domain.PhoneVerification) error
	UpdateChallenge(ctx context.Context, phoneNumber, otp, deviceID, fcmToken string) error
	MarkRegistered(ctx context.Context, phoneNumber, otp string) error
}

// Notifier queues a push notification for asynchronous delivery.
type Notifier interface {
	Enqueue(ctx context.Context, n domain.PushNotification) error
}

type TokenIssuer interface {
	Sign(phoneNumber, deviceID string) (string, error)
}

type Service interface {
	RequestOTP(ctx context.Context, req RequestOTPRequest) (*RequestOTPResult, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResult, error)
}

type ServiceDeps struct {
	Store    Store
	Notifier Notifier
	Tokens   TokenIssuer            // optional
	Generate func() (string, error) // defaults to otp.Generate
}

type service struct {
	store    Store
	notifier Notifier
	tokens   TokenIssuer
	generate func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	gen := deps.Generate
	if gen == nil {
		gen = otp.Generate
	}
	return &service{store: deps.Store, notifier: deps.Notifier, tokens: deps.Tokens, generate: gen}
}

func (s *service) RequestOTP(ctx context.Context, req RequestOTPRequest) (*RequestOTPResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrValidation)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := s.requestOTP(ctx, req)
		if errors.Is(err, domain.ErrConflict) {
			zerolog.Ctx(ctx).Debug().Str("phone_number", req.PhoneNumber).Int("attempt", attempt+1).
				Msg("phone verification changed concurrently, re-reading")
			continue
		}
		return res, err
	}
	return nil, fmt.Errorf("request otp for %s: %w", req.PhoneNumber, domain.ErrConflict)
}

func (s *service) requestOTP(ctx context.Context, req RequestOTPRequest) (*RequestOTPResult, error) {
	existing, err := s.store.Get(ctx, req.PhoneNumber)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if existing != nil && existing.IsRegistered() {
		return &RequestOTPResult{
			Outcome:     OutcomeAlreadyRegistered,
			PhoneNumber: existing.PhoneNumber,
			DeviceID:    existing.DeviceID,
			FCMToken:    existing.FCMToken,
			Register:    domain.RegisteredYes,
		}, nil
	}

	code, err := s.generate()
	if err != nil {
		return nil, err
	}

	outcome, title := OutcomeCreated, TitleInitial
	if existing == nil {
		now := time.Now().UTC()
		err = s.store.Create(ctx, &domain.PhoneVerification{
			PhoneNumber: req.PhoneNumber,
			Key:         id.New(),
			DeviceID:    req.DeviceID,
			FCMToken:    req.FCMToken,
			OTP:         code,
			Register:    domain.RegisteredNo,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	} else {
		outcome, title = OutcomeResent, TitleResend
		err = s.store.UpdateChallenge(ctx, req.PhoneNumber, code, req.DeviceID, req.FCMToken)
	}
	if err != nil {
		return nil, err
	}

	s.notify(ctx, req.FCMToken, title, code)
	return &RequestOTPResult{
		Outcome:     outcome,
		PhoneNumber: req.PhoneNumber,
		DeviceID:    req.DeviceID,
		FCMToken:    req.FCMToken,
		OTP:         code,
		Register:    domain.RegisteredNo,
	}, nil
}

// notify runs after the record is persisted; a failure to enqueue is logged only.
func (s *service) notify(ctx context.Context, token, title, code string) {
	err := s.notifier.Enqueue(ctx, domain.PushNotification{
		Token: token,
		Title: title,
		Body:  "Your OTP is " + code,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("title", title).Msg("failed to enqueue otp notification")
	}
}

func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrValidation)
	}

	v, err := s.store.Get(ctx, req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if v.OTP != req.OTP {
		return nil, fmt.Errorf("otp mismatch: %w", domain.ErrInvalidOTP)
	}

	if !v.IsRegistered() {
		if err := s.store.MarkRegistered(ctx, req.PhoneNumber, req.OTP); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// A resend replaced the code between the read and the write.
				return nil, fmt.Errorf("otp superseded: %w", domain.ErrInvalidOTP)
			}
			return nil, err
		}
	}

	res := &VerifyOTPResult{}
	if s.tokens != nil {
		tok, err := s.tokens.Sign(v.PhoneNumber, v.DeviceID)
		if err != nil {
			return nil, fmt.Errorf("sign identity token: %w", err)
		}
		res.Token = tok
	}
	return res, nil
}
