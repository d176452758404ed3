package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAPIKey = "gateway-secret-key"
	testSecret = "jwt-shared-secret"
)

func protectedHandler(a *ServiceAuth) http.Handler {
	return a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func newAuth(t *testing.T) *ServiceAuth {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAPIKey), bcrypt.MinCost)
	require.NoError(t, err)
	return NewServiceAuth(string(hash), testSecret)
}

func serve(h http.Handler, header, value string) int {
	req := httptest.NewRequest(http.MethodPost, "/internal/heartbeat/CZ-0001", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAPIKey(t *testing.T) {
	auth := newAuth(t)
	h := protectedHandler(auth)

	assert.Equal(t, http.StatusNoContent, serve(h, APIKeyHeader, testAPIKey))
	assert.Equal(t, http.StatusNoContent, serve(h, APIKeyHeader, testAPIKey), "memoized key still accepted")
	assert.Equal(t, http.StatusUnauthorized, serve(h, APIKeyHeader, "wrong"))
	assert.Equal(t, http.StatusUnauthorized, serve(h, "", ""))
}

func TestServiceToken(t *testing.T) {
	h := protectedHandler(newAuth(t))

	token, err := IssueServiceToken(testSecret, "ocpp-gateway", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, serve(h, "Authorization", "Bearer "+token))

	forged, err := IssueServiceToken("other-secret", "ocpp-gateway", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Authorization", "Bearer "+forged))

	expired, err := IssueServiceToken(testSecret, "ocpp-gateway", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Authorization", "Bearer "+expired))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "Authorization", "Basic abc"))
}

func TestUserTokenIsRejected(t *testing.T) {
	h := protectedHandler(newAuth(t))
	userToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"role":    "user",
		"exp":     time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(h, "Authorization", "Bearer "+userToken))
}

func TestUnconfiguredAuthRejectsEverything(t *testing.T) {
	h := protectedHandler(NewServiceAuth("", ""))
	token, err := IssueServiceToken(testSecret, "ocpp-gateway", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(h, APIKeyHeader, testAPIKey))
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Authorization", "Bearer "+token))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "handler"}, order)
}
