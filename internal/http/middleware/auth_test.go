package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "ops-1",
		"role":    "operator",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func authStatus(t *testing.T, secret []byte, token string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ops", AuthRequired(secret), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ops", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthRequired(t *testing.T) {
	if code := authStatus(t, []byte("ops-secret"), signedToken(t, "ops-secret")); code != http.StatusNoContent {
		t.Fatalf("valid token rejected: %d", code)
	}
	if code := authStatus(t, []byte("ops-secret"), ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code := authStatus(t, []byte("ops-secret"), signedToken(t, "guess")); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign token, got %d", code)
	}
}

func TestAuthRequiredWithoutSecret(t *testing.T) {
	if code := authStatus(t, nil, signedToken(t, "anything")); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when no secret is configured, got %d", code)
	}
}
