package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/yamidnozu/asistapp/internal/models"
	"github.com/yamidnozu/asistapp/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubVerifier returns a fixed principal for one known token.
type stubVerifier struct {
	validToken string
	principal  *services.Principal
	err        error
}

func (s *stubVerifier) VerifyAccessToken(_ context.Context, tokenString string) (*services.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	if tokenString == s.validToken {
		return s.principal, nil
	}
	return nil, services.ErrTokenInvalid
}

func newProtectedRouter(verifier TokenVerifier, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthRequired(verifier)}, extra...)
	r.GET("/protected", append(chain, func(c *gin.Context) {
		p := GetPrincipal(c)
		c.JSON(200, gin.H{"user_id": p.ID, "role": p.Role})
	})...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_NoHeader(t *testing.T) {
	r := newProtectedRouter(&stubVerifier{})
	if w := doGet(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthRequired_MalformedHeader(t *testing.T) {
	r := newProtectedRouter(&stubVerifier{})

	for _, header := range []string{"SomeToken", "Basic dXNlcjpwYXNz", "Bearer"} {
		if w := doGet(r, header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected status %d, got %d", header, http.StatusUnauthorized, w.Code)
		}
	}
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	r := newProtectedRouter(&stubVerifier{validToken: "good"})
	if w := doGet(r, "Bearer bad"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthRequired_ValidToken(t *testing.T) {
	verifier := &stubVerifier{
		validToken: "good",
		principal:  &services.Principal{ID: 7, Email: "t@x.com", Role: models.RoleTeacher},
	}
	r := newProtectedRouter(verifier)

	w := doGet(r, "Bearer good")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), `"user_id":7`) {
		t.Errorf("principal not propagated, body = %s", w.Body.String())
	}
}

func TestAuthRequired_InfraErrorIs500(t *testing.T) {
	r := newProtectedRouter(&stubVerifier{err: errors.New("db down")})
	if w := doGet(r, "Bearer anything"); w.Code != http.StatusInternalServerError {
		t.Errorf("infrastructure failure: expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestRequireRole_Allowed(t *testing.T) {
	verifier := &stubVerifier{
		validToken: "good",
		principal:  &services.Principal{ID: 1, Role: models.RoleAdmin},
	}
	r := newProtectedRouter(verifier, RequireRole(models.RoleAdmin, models.RoleCoordinator))

	if w := doGet(r, "Bearer good"); w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	verifier := &stubVerifier{
		validToken: "good",
		principal:  &services.Principal{ID: 1, Role: models.RoleStudent},
	}
	r := newProtectedRouter(verifier, RequireRole(models.RoleAdmin))

	if w := doGet(r, "Bearer good"); w.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestGetUserID_Unauthenticated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if id := GetUserID(c); id != 0 {
		t.Errorf("GetUserID() = %d, expected 0 outside an authenticated request", id)
	}
	if p := GetPrincipal(c); p != nil {
		t.Errorf("GetPrincipal() = %v, expected nil", p)
	}
}
