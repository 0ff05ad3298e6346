package httpkit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadchat_backend/platform/apperr"
	"leadchat_backend/platform/guard"
	"leadchat_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type adminCfg struct{ secret, issuer string }

func (c adminCfg) GetAdminJWTSecret() string { return c.secret }
func (c adminCfg) GetAdminJWTIssuer() string { return c.issuer }

func init() {
	gin.SetMode(gin.TestMode)
}

func adminRouter(cfg adminCfg, revocations RevocationChecker) *gin.Engine {
	r := gin.New()
	r.GET("/admin", AdminRequired(cfg, revocations), func(c *gin.Context) {
		a := MustGetAdmin(c)
		if a == nil {
			return
		}
		OK(c, gin.H{"subject": a.Subject()})
	})
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminRequired(t *testing.T) {
	cfg := adminCfg{secret: "s3cret", issuer: "leadchat"}
	revocations := guard.NewRevocations(guard.NewMemoryStore(), "revoked:")
	r := adminRouter(cfg, revocations)

	token, err := IssueAdminToken(cfg, "ops@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if rec := doGet(r, "/admin", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", rec.Code)
	}
	if rec := doGet(r, "/admin", token); rec.Code != http.StatusOK {
		t.Fatalf("valid token: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	other, _ := IssueAdminToken(adminCfg{secret: "s3cret", issuer: "someone-else"}, "ops", time.Hour)
	if rec := doGet(r, "/admin", other); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong issuer: expected 401, got %d", rec.Code)
	}

	expired, _ := IssueAdminToken(cfg, "ops", -time.Minute)
	if rec := doGet(r, "/admin", expired); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", rec.Code)
	}

	claims, err := ParseAdminToken(token, cfg)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if err := revocations.Revoke(context.Background(), claims.ID, time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if rec := doGet(r, "/admin", token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token: expected 401, got %d", rec.Code)
	}
}

func TestHandleErrorMapsKinds(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.NotFound("session not found"), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", apperr.Conflict("stale")), http.StatusConflict},
		{apperr.TooManyRequests("slow down"), http.StatusTooManyRequests},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		if !HandleError(c, tc.err) {
			t.Fatalf("expected %v to be handled", tc.err)
		}
		if rec.Code != tc.want {
			t.Fatalf("HandleError(%v) status = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 2, logger.Nop())
	r := gin.New()
	r.Use(RequestLogger(logger.Nop()), limiter.RateLimit())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		if rec := doGet(r, "/ping", ""); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i, rec.Code)
		}
	}
	rec := doGet(r, "/ping", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}
