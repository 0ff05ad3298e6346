package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leadchat_backend/platform/httpkit"
	"leadchat_backend/platform/logger"
)

// maxRevocationTTL bounds how long an explicitly named token stays denied.
const maxRevocationTTL = 24 * time.Hour

// TokenRevoker is the admin token deny-list.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenHandler lets administrators revoke bearer tokens before they expire.
type TokenHandler struct {
	revoker TokenRevoker
	log     *logger.Logger
}

func NewTokenHandler(revoker TokenRevoker, log *logger.Logger) *TokenHandler {
	return &TokenHandler{revoker: revoker, log: log}
}

type revokeTokenRequest struct {
	TokenID string `json:"tokenId"`
}

func (h *TokenHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/revoke", h.Revoke)
}

// Revoke denies the named token, or the calling token when none is named.
func (h *TokenHandler) Revoke(c *gin.Context) {
	admin := httpkit.MustGetAdmin(c)
	if admin == nil {
		return
	}

	var req revokeTokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
			return
		}
	}

	tokenID := req.TokenID
	ttl := maxRevocationTTL
	if tokenID == "" || tokenID == admin.TokenID() {
		tokenID = admin.TokenID()
		ttl = time.Until(admin.ExpiresAt())
	}
	if ttl <= 0 {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), tokenID, ttl); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	h.log.Info("admin token revoked", "tokenId", tokenID, "by", admin.Subject())
	c.Status(http.StatusNoContent)
}
