package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/phonefeed-api/internal/domain"
	"github.com/phonefeed-api/internal/pkg/id"
	"github.com/phonefeed-api/internal/pkg/validate"
)

type UploadURLRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	FileName    string `json:"fileName" validate:"required"`
	ContentType string `json:"contentType" validate:"required,startswith=image/"`
}

type UploadURL struct {
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
	ObjectKey string `json:"objectKey"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

// Presigner issues direct-to-bucket upload URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	ObjectURL(key string) string
}

type Service interface {
	UploadURL(ctx context.Context, req UploadURLRequest) (*UploadURL, error)
}

type service struct {
	presigner Presigner
	ttl       time.Duration
}

// NewService returns a Service; a nil presigner makes every call fail with domain.ErrUnavailable.
func NewService(presigner Presigner, ttl time.Duration) Service {
	return &service{presigner: presigner, ttl: ttl}
}

func (s *service) UploadURL(ctx context.Context, req UploadURLRequest) (*UploadURL, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrValidation)
	}
	if s.presigner == nil {
		return nil, fmt.Errorf("object storage not configured: %w", domain.ErrUnavailable)
	}
	key := objectKey(req.PhoneNumber, req.FileName)
	u, err := s.presigner.PresignPut(ctx, key, req.ContentType, s.ttl)
	if err != nil {
		return nil, err
	}
	return &UploadURL{
		UploadURL: u,
		ImageURL:  s.presigner.ObjectURL(key),
		ObjectKey: key,
		ExpiresIn: int(s.ttl.Seconds()),
	}, nil
}

// objectKey namespaces uploads by owner and replaces the client's file name with
// a ULID, keeping only its extension.
func objectKey(phoneNumber, fileName string) string {
	owner := strings.TrimPrefix(phoneNumber, "+")
	return "uploads/" + owner + "/" + id.New() + strings.ToLower(path.Ext(fileName))
}
