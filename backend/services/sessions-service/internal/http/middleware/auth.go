package middleware

import (
	"crypto/sha256"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ServiceRole is the role claim a bearer token must carry to call the internal API.
const ServiceRole = "service"

// APIKeyHeader carries the shared gateway key.
const APIKeyHeader = "X-API-Key"

// ServiceClaims is the payload of a service bearer token.
type ServiceClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ServiceAuth admits callers presenting either the shared API key or a service token.
type ServiceAuth struct {
	apiKeyHash []byte
	jwtSecret  []byte
	// verified remembers digests of keys that already passed bcrypt.
	verified sync.Map
}

// NewServiceAuth returns an authenticator. Empty inputs disable that credential kind;
// with both empty every request is rejected.
func NewServiceAuth(apiKeyHash, jwtSecret string) *ServiceAuth {
	a := &ServiceAuth{}
	if apiKeyHash != "" {
		a.apiKeyHash = []byte(apiKeyHash)
	}
	if jwtSecret != "" {
		a.jwtSecret = []byte(jwtSecret)
	}
	return a
}

// Middleware rejects unauthenticated requests with 401.
func (a *ServiceAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get(APIKeyHeader); key != "" {
			if !a.checkAPIKey(key) {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing credentials", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}
		if err := a.checkToken(strings.TrimSpace(parts[1])); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *ServiceAuth) checkAPIKey(key string) bool {
	if a.apiKeyHash == nil {
		return false
	}
	digest := sha256.Sum256([]byte(key))
	if _, ok := a.verified.Load(digest); ok {
		return true
	}
	if bcrypt.CompareHashAndPassword(a.apiKeyHash, []byte(key)) != nil {
		return false
	}
	a.verified.Store(digest, struct{}{})
	return true
}

func (a *ServiceAuth) checkToken(raw string) error {
	if a.jwtSecret == nil {
		return errors.New("token auth disabled")
	}
	claims := &ServiceClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return errors.New("invalid token")
	}
	if claims.Role != ServiceRole {
		return errors.New("token is not a service token")
	}
	return nil
}

// IssueServiceToken signs a service token valid for ttl.
func IssueServiceToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token: secret is required")
	}
	now := time.Now().UTC()
	claims := ServiceClaims{
		Role: ServiceRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Chain wraps h with middlewares; the first one listed runs first.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
