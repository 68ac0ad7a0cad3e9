package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/auth"
	"github.com/assetledger/backend/internal/domain"
)

func TestAuthenticate_InjectsClaimsFromValidToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	subject := domain.NewID()
	token, _, err := tokens.Issue(domain.UserClaims{Subject: subject, Email: "tech@example.com", RoleLevel: domain.RoleLevelStaff})
	require.NoError(t, err)

	var gotClaims domain.UserClaims
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, gotOK = ClaimsFromContext(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/assets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	Authenticate(tokens)(next).ServeHTTP(rec, req)

	assert.True(t, gotOK)
	assert.Equal(t, subject, gotClaims.Subject)
}

func TestAuthenticate_NoHeaderPassesThroughUnauthenticated(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotOK = ClaimsFromContext(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/assets", nil)
	rec := httptest.NewRecorder()

	Authenticate(tokens)(next).ServeHTTP(rec, req)

	assert.False(t, gotOK)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_BlocksAfterBurstExhausted(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RateLimit(1, 2)(next)

	req := httptest.NewRequest(http.MethodGet, "/assets", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
