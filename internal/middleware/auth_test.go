package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
	"github.com/yungbote/conceptgraph-backend/internal/requestdata"
)

const testSecret = "test-signing-secret"

func signedToken(t *testing.T, method jwt.SigningMethod, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authRouter(t *testing.T, got *uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	am := NewAuthMiddleware(log, testSecret)

	r := gin.New()
	r.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
			*got = rd.UserID
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireAuthBearerHeader(t *testing.T) {
	userID := uuid.New()
	var got uuid.UUID
	r := authRouter(t, &got)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, jwt.SigningMethodHS256, userID.String()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != userID {
		t.Fatalf("request context user mismatch: %s != %s", got, userID)
	}
}

func TestRequireAuthQueryToken(t *testing.T) {
	userID := uuid.New()
	var got uuid.UUID
	r := authRouter(t, &got)

	req := httptest.NewRequest(http.MethodGet, "/protected?token="+signedToken(t, jwt.SigningMethodHS256, userID.String()), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != userID {
		t.Fatalf("request context user mismatch: %s != %s", got, userID)
	}
}

func TestRequireAuthRejects(t *testing.T) {
	var got uuid.UUID
	r := authRouter(t, &got)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
		// Same key, wrong algorithm: only HS256 is accepted.
		{"hs384 token", signedToken(t, jwt.SigningMethodHS384, uuid.New().String())},
		{"non-uuid subject", signedToken(t, jwt.SigningMethodHS256, "user-7")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}
