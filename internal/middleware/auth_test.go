package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockroom/internal/models"
	"stockroom/internal/repository"
	"stockroom/internal/utils"
)

const testSecret = "test-secret"

type stubResolver struct {
	user *models.User
}

func (s *stubResolver) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, repository.ErrNotFound
}

func protectedProbe(t *testing.T, hit *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		user, ok := UserFromContext(r.Context())
		if !ok {
			t.Error("authenticated request must carry the user in context")
			return
		}
		w.Write([]byte(user.Email))
	})
}

func TestAuth_MissingCookie(t *testing.T) {
	var hit bool
	gate := Auth(testSecret, &stubResolver{})
	handler := gate(protectedProbe(t, &hit))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if hit {
		t.Fatal("handler must not run without a session")
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	var hit bool
	gate := Auth(testSecret, &stubResolver{})
	handler := gate(protectedProbe(t, &hit))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if hit {
		t.Fatal("handler must not run with a bad token")
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	var hit bool
	gate := Auth(testSecret, &stubResolver{user: &models.User{ID: 5}})
	handler := gate(protectedProbe(t, &hit))

	token, err := utils.GenerateToken(testSecret, 5, -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if hit {
		t.Fatal("handler must not run with an expired token")
	}
}

func TestAuth_UnresolvedSubject(t *testing.T) {
	var hit bool
	gate := Auth(testSecret, &stubResolver{}) // no users exist
	handler := gate(protectedProbe(t, &hit))

	token, err := utils.GenerateToken(testSecret, 5, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if hit {
		t.Fatal("handler must not run for a deleted account")
	}
}

func TestAuth_ValidCookie(t *testing.T) {
	var hit bool
	user := &models.User{ID: 5, Email: "a@x.com"}
	gate := Auth(testSecret, &stubResolver{user: user})
	handler := gate(protectedProbe(t, &hit))

	token, err := utils.GenerateToken(testSecret, 5, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !hit {
		t.Fatal("handler must run for a valid session")
	}
	if rec.Body.String() != "a@x.com" {
		t.Fatalf("wrong principal resolved: %q", rec.Body.String())
	}
}

func TestAuth_PreflightPassthrough(t *testing.T) {
	var hit bool
	gate := Auth(testSecret, &stubResolver{})
	handler := gate(protectedProbe(t, &hit))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/products", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if hit {
		t.Fatal("preflight must not reach the handler")
	}
}
