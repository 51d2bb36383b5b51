package http

import (
	"github.com/phonefeed-api/internal/application/media"
	"github.com/phonefeed-api/internal/application/post"
	"github.com/phonefeed-api/internal/application/profile"
	"github.com/phonefeed-api/internal/application/verification"
	jwtinfra "github.com/phonefeed-api/internal/infrastructure/jwt"
)

// Deps holds all infrastructure dependencies for the router. The stores are
// satisfied by both the dynamo repos and the in-memory stores.
type Deps struct {
	VerificationStore verification.Store
	ProfileStore      profile.Store
	PostStore         post.Store
	Notifier          verification.Notifier
	JWTProvider       *jwtinfra.Provider // optional; enables identity tokens
	Presigner         media.Presigner    // optional; enables /api/upload-url
}
