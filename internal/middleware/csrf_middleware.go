package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/odvhub/odvhub-backend/internal/errors"
)

const (
	// CSRFHeader carries the token on protected requests.
	CSRFHeader = "X-CSRF-Token"

	// csrfTokenTTL bounds how long an issued token stays redeemable.
	csrfTokenTTL = 30 * time.Minute
)

// CSRFStore issues and redeems single-use tokens. Consume must delete the
// token on its first successful hit.
type CSRFStore interface {
	Issue(ctx context.Context, token string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (bool, error)
}

type CSRFMiddleware struct {
	store CSRFStore
}

func NewCSRFMiddleware(store CSRFStore) *CSRFMiddleware {
	return &CSRFMiddleware{store: store}
}

// IssueToken is the handler behind GET /api/v1/csrf.
func (m *CSRFMiddleware) IssueToken(c *gin.Context) {
	log := GetLoggerFromContext(c)

	token := uuid.New().String()
	if err := m.store.Issue(c.Request.Context(), token, csrfTokenTTL); err != nil {
		log.Error("Failed to issue CSRF token", err, nil)
		errors.InternalError(c, "Could not issue a token. Please try again later")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"csrf_token": token,
		"expires_in": int64(csrfTokenTTL.Seconds()),
	})
}

// Protect rejects requests whose CSRF token is missing, unknown, or already
// spent. Each token works exactly once.
func (m *CSRFMiddleware) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token := c.GetHeader(CSRFHeader)
		if token == "" {
			log.Warn("Missing CSRF token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.SecurityCSRFMissing, "Missing CSRF token")
			c.Abort()
			return
		}

		valid, err := m.store.Consume(c.Request.Context(), token)
		if err != nil {
			log.Error("CSRF token lookup failed", err, map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.InternalError(c, "Could not verify the request. Please try again later")
			c.Abort()
			return
		}
		if !valid {
			log.Warn("Invalid or reused CSRF token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.SecurityCSRFInvalid, "Invalid or expired CSRF token")
			c.Abort()
			return
		}

		c.Next()
	}
}

// MemoryCSRFStore is the in-process store used by tests and single-node
// deployments without redis.
type MemoryCSRFStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewMemoryCSRFStore() *MemoryCSRFStore {
	return &MemoryCSRFStore{tokens: make(map[string]time.Time)}
}

func (s *MemoryCSRFStore) Issue(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryCSRFStore) Consume(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[token]
	if !ok {
		return false, nil
	}
	delete(s.tokens, token)
	return time.Now().Before(expiry), nil
}
