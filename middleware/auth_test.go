package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/golang-jwt/jwt/v4"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthenticate(t *testing.T) {
	validClaims := jwt.MapClaims{
		"user_id": float64(42),
		"role":    string(models.RoleUser),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, validClaims), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer token", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, []byte("other"), validClaims), http.StatusUnauthorized},
		{
			"expired token",
			"Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"user_id": float64(42),
				"role":    string(models.RoleUser),
				"exp":     time.Now().Add(-time.Hour).Unix(),
			}),
			http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID int
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, err := GetUserIDFromContext(r.Context())
				if err != nil {
					t.Errorf("GetUserIDFromContext() error = %v", err)
				}
				gotUserID = id
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			Authenticate(testSecret)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotUserID != 42 {
				t.Errorf("user_id = %d, want 42", gotUserID)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		role       models.UserRole
		allowed    []models.UserRole
		wantStatus int
	}{
		{"moderator allowed", models.RoleModerator, []models.UserRole{models.RoleModerator, models.RoleAdmin}, http.StatusOK},
		{"admin allowed", models.RoleAdmin, []models.UserRole{models.RoleModerator, models.RoleAdmin}, http.StatusOK},
		{"plain user rejected", models.RoleUser, []models.UserRole{models.RoleModerator, models.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
			token := signToken(t, testSecret, jwt.MapClaims{
				"user_id": float64(1),
				"role":    string(tt.role),
				"exp":     time.Now().Add(time.Hour).Unix(),
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			Authenticate(testSecret)(Authorize(tt.allowed...)(next)).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthorizeWithoutAuthentication(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	// Без Authenticate в цепочке claims в контексте нет.
	Authorize(models.RoleAdmin)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
