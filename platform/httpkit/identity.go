package httpkit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Admin represents the authenticated administrator behind a request.
// Handlers read it without touching JWT claims directly.
type Admin interface {
	// Subject returns the token subject (operator identifier).
	Subject() string
	// TokenID returns the jti used for revocation.
	TokenID() string
	// ExpiresAt returns when the presented token expires.
	ExpiresAt() time.Time
	// IsAuthenticated returns true if a valid admin token was presented.
	IsAuthenticated() bool
}

type admin struct {
	subject       string
	tokenID       string
	expiresAt     time.Time
	authenticated bool
}

func (a *admin) Subject() string       { return a.subject }
func (a *admin) TokenID() string       { return a.tokenID }
func (a *admin) ExpiresAt() time.Time  { return a.expiresAt }
func (a *admin) IsAuthenticated() bool { return a.authenticated }

// GetAdmin extracts the Admin from a Gin context.
// Returns an unauthenticated admin if AdminRequired did not run.
func GetAdmin(c *gin.Context) Admin {
	value, ok := c.Get(ContextAdminKey)
	if !ok {
		return &admin{}
	}
	a, ok := value.(*admin)
	if !ok {
		return &admin{}
	}
	return a
}

// MustGetAdmin extracts the Admin from a Gin context.
// If no admin is authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetAdmin(c *gin.Context) Admin {
	a := GetAdmin(c)
	if !a.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return a
}
