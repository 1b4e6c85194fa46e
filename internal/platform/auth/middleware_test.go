package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func performRequest(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return rec, handler(c)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: []byte("test-secret")})
	_, err := performRequest(t, mw, "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", httpErr.Code)
	}
}

func TestJWTMiddleware_BadFormat(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: []byte("test-secret")})
	_, err := performRequest(t, mw, "Basic abc123")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", httpErr.Code)
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	secret := []byte("test-secret")
	issuer := NewTokenIssuer(secret, "hms", time.Hour)
	token, err := issuer.Issue("user-1", RoleDoctor, "hosp-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID, gotRole, gotHospital string
	handler := JWTMiddleware(JWTConfig{SigningKey: secret, Issuer: "hms"})(func(c echo.Context) error {
		ctx := c.Request().Context()
		gotID = UserIDFromContext(ctx)
		gotRole = RoleFromContext(ctx)
		gotHospital = HospitalIDFromContext(ctx)
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if gotID != "user-1" {
		t.Errorf("user id = %q, want user-1", gotID)
	}
	if gotRole != RoleDoctor {
		t.Errorf("role = %q, want %q", gotRole, RoleDoctor)
	}
	if gotHospital != "hosp-1" {
		t.Errorf("hospital = %q, want hosp-1", gotHospital)
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"), "hms", time.Hour)
	token, _ := issuer.Issue("user-1", RolePatient, "")

	mw := JWTMiddleware(JWTConfig{SigningKey: []byte("secret-b")})
	_, err := performRequest(t, mw, "Bearer "+token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", httpErr.Code)
	}
}

// The JWKS endpoint must be hit once for a burst of requests, not once per
// request: the middleware holds a single long-lived key cache.
func TestJWTMiddleware_JWKSFetchedOnce(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	fetches := 0
	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		resp := JWKSResponse{Keys: []JWKSKey{{
			Kty: "RSA",
			Kid: "k1",
			Use: "sig",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer jwks.Close()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleDoctor,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "k1"
	signed, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	mw := JWTMiddleware(JWTConfig{JWKSURL: jwks.URL})
	for i := 0; i < 3; i++ {
		if _, err := performRequest(t, mw, "Bearer "+signed); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if fetches != 1 {
		t.Errorf("JWKS fetches = %d, want 1", fetches)
	}
}

func TestDevAuthMiddleware_Defaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotRole string
	handler := DevAuthMiddleware()(func(c echo.Context) error {
		gotRole = RoleFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if gotRole != RoleAdmin {
		t.Errorf("role = %q, want %q", gotRole, RoleAdmin)
	}
}
