package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestGenerateAndVerify(t *testing.T) {
	token, expiresAt, err := GenerateToken("account-1", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute {
		t.Fatalf("expiry too close: %v", remaining)
	}

	e := echo.New()
	e.Use(JWTMiddleware("secret", nil))
	e.GET("/whoami", func(c echo.Context) error {
		id, err := AccountIDFromContext(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "account-1" {
		t.Fatalf("expected account-1, got %q", got)
	}
}

func TestMiddlewareRejectsBadToken(t *testing.T) {
	e := echo.New()
	e.Use(JWTMiddleware("secret", nil))
	e.GET("/whoami", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for _, header := range []string{"", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized && rec.Code != http.StatusBadRequest {
			t.Fatalf("header %q: expected rejection, got %d", header, rec.Code)
		}
	}
}

func TestMiddlewareSkipper(t *testing.T) {
	e := echo.New()
	e.Use(JWTMiddleware("secret", func(c echo.Context) bool {
		return strings.HasPrefix(c.Path(), "/public")
	}))
	e.GET("/public/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/public/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected skipper to bypass auth, got %d", rec.Code)
	}
}

func TestWrongSigningKey(t *testing.T) {
	token, _, err := GenerateToken("account-1", "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	e := echo.New()
	e.Use(JWTMiddleware("secret", nil))
	e.GET("/whoami", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong key, got %d", rec.Code)
	}
}
