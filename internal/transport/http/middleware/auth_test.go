package middleware

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	jwtinfra "github.com/phonefeed-api/internal/infrastructure/jwt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProvider returns a provider backed by a fresh RSA key pair.
func newTestProvider(t *testing.T, expiry time.Duration) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return jwtinfra.NewProviderFromKeys(privKey, &privKey.PublicKey, expiry)
}

// phoneEcho writes the caller's verified phone number, or "anonymous".
func phoneEcho(w http.ResponseWriter, r *http.Request) {
	phone, ok := PhoneFromContext(r.Context())
	if !ok {
		phone = "anonymous"
	}
	_, _ = w.Write([]byte(phone))
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIdentify_NoHeaderPassesThrough(t *testing.T) {
	rr := serve(Identify(newTestProvider(t, time.Hour))(http.HandlerFunc(phoneEcho)), "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "anonymous", rr.Body.String())
}

func TestIdentify_ValidToken(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	tok, err := p.Sign("+15550001111", "dev-1")
	require.NoError(t, err)

	rr := serve(Identify(p)(http.HandlerFunc(phoneEcho)), "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "+15550001111", rr.Body.String())
}

func TestIdentify_BadToken(t *testing.T) {
	rr := serve(Identify(newTestProvider(t, time.Hour))(http.HandlerFunc(phoneEcho)), "Bearer not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"invalid or expired token"}`, rr.Body.String())
}

func TestIdentify_ExpiredToken(t *testing.T) {
	p := newTestProvider(t, -time.Hour)
	tok, err := p.Sign("+1555", "")
	require.NoError(t, err)

	rr := serve(Identify(p)(http.HandlerFunc(phoneEcho)), "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIdentify_NonBearerScheme(t *testing.T) {
	rr := serve(Identify(newTestProvider(t, time.Hour))(http.HandlerFunc(phoneEcho)), "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestRequireIdentity(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	h := Identify(p)(RequireIdentity(http.HandlerFunc(phoneEcho)))

	rr := serve(h, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	tok, err := p.Sign("+1555", "")
	require.NoError(t, err)
	rr = serve(h, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "+1555", rr.Body.String())
}

func TestAccessLog_TagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	h := chimiddleware.RequestID(AccessLog(l)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := serve(h, "")
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, buf.String(), `"req_id":`)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"method":"GET"`)
}
