package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dias221467/Veritas_Network/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	logger.InitLogger()
}

func claimsEcho(t *testing.T, captured **Claims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "user123", "u@example.com", "user", time.Hour)
	require.NoError(t, err)

	var captured *Claims
	handler := AuthMiddleware(testSecret)(claimsEcho(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user123", captured.UserID)
	assert.Equal(t, "u@example.com", captured.Email)
	assert.Equal(t, "user", captured.Role)
}

func TestAuthMiddlewareRejections(t *testing.T) {
	expired, err := GenerateToken(testSecret, "user123", "u@example.com", "user", -time.Hour)
	require.NoError(t, err)
	wrongKey, err := GenerateToken("other-secret", "user123", "u@example.com", "user", time.Hour)
	require.NoError(t, err)
	noIdentity, err := GenerateToken(testSecret, "", "u@example.com", "user", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
		{"empty user id", "Bearer " + noIdentity},
	}

	var captured *Claims
	handler := AuthMiddleware(testSecret)(claimsEcho(t, &captured))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	adminToken, err := GenerateToken(testSecret, "admin1", "a@example.com", "admin", time.Hour)
	require.NoError(t, err)
	userToken, err := GenerateToken(testSecret, "user1", "u@example.com", "user", time.Hour)
	require.NoError(t, err)

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(testSecret)(RequireRole("admin")(final))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
