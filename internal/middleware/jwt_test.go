package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret []byte, userID int, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	secret := []byte("test-secret")

	var gotUser int
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserID(r.Context())
		gotRole = Role(r.Context())
	})

	req := httptest.NewRequest("GET", "/v1/workorders", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, secret, 7, models.RoleTechnician))
	rr := httptest.NewRecorder()
	JWTMiddleware(secret)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if gotUser != 7 || gotRole != models.RoleTechnician {
		t.Errorf("claims in context: got user=%d role=%q", gotUser, gotRole)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	})

	req := httptest.NewRequest("GET", "/v1/workorders", nil)
	rr := httptest.NewRecorder()
	JWTMiddleware([]byte("test-secret"))(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	})

	req := httptest.NewRequest("GET", "/v1/workorders", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, []byte("other-secret"), 7, models.RoleViewer))
	rr := httptest.NewRecorder()
	JWTMiddleware([]byte("test-secret"))(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestRequireRole(t *testing.T) {
	secret := []byte("test-secret")
	cases := []struct {
		role    string
		allowed []string
		want    int
	}{
		{models.RoleTechnician, []string{models.RoleTechnician}, http.StatusOK},
		{models.RoleViewer, []string{models.RoleTechnician}, http.StatusForbidden},
		// Admins pass every role gate.
		{models.RoleAdmin, []string{models.RoleTechnician}, http.StatusOK},
		{models.RoleAdmin, nil, http.StatusOK},
		{models.RoleViewer, nil, http.StatusForbidden},
	}

	for _, c := range cases {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
		handler := JWTMiddleware(secret)(RequireRole(c.allowed...)(next))

		req := httptest.NewRequest("GET", "/v1/schedules", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, secret, 1, c.role))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != c.want {
			t.Errorf("role %q with allowed %v: got %d, want %d", c.role, c.allowed, rr.Code, c.want)
		}
	}
}
