package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRole(role string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		ctx := context.WithValue(req.Context(), UserRoleKey, role)
		req = req.WithContext(ctx)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireRole_Allowed(t *testing.T) {
	c := requestWithRole(RoleDoctor)
	handler := RequireRole(RoleDoctor)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("expected doctor to pass, got %v", err)
	}
}

func TestRequireRole_AdminOverride(t *testing.T) {
	c := requestWithRole(RoleAdmin)
	handler := RequireRole(RoleDoctor)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("expected admin override, got %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	c := requestWithRole(RolePatient)
	handler := RequireRole(RoleDoctor)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", httpErr.Code)
	}
}

func TestRequireRole_NoRole(t *testing.T) {
	c := requestWithRole("")
	handler := RequireRole(RolePatient)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err == nil {
		t.Fatal("expected error for missing role")
	}
}
