package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, claims TokenClaims) string {
	t.Helper()
	token, err := SignJWT(testSecret, claims)
	if err != nil {
		t.Fatalf("SignJWT() error: %v", err)
	}
	return token
}

func validClaims(roles ...string) TokenClaims {
	return TokenClaims{
		Sub:      "user-1",
		Roles:    roles,
		Iat:      time.Now().Unix(),
		Exp:      time.Now().Add(time.Hour).Unix(),
		Issuer:   TokenIssuer,
		Audience: TokenAudience,
	}
}

func TestVerifyJWT(t *testing.T) {
	now := time.Now()
	good := signedToken(t, validClaims("donor"))

	claims, err := VerifyJWT(testSecret, good, now)
	if err != nil {
		t.Fatalf("VerifyJWT() error: %v", err)
	}
	if claims.Sub != "user-1" || len(claims.Roles) != 1 || claims.Roles[0] != "donor" {
		t.Fatalf("claims = %+v", claims)
	}

	expired := validClaims()
	expired.Exp = now.Add(-time.Minute).Unix()
	wrongAud := validClaims()
	wrongAud.Audience = "someone-else"

	tests := []struct {
		name   string
		token  string
		secret string
		want   error
	}{
		{"wrong secret", good, "other", ErrInvalidToken},
		{"malformed", "abc.def", testSecret, ErrInvalidToken},
		{"expired", signedToken(t, expired), testSecret, ErrTokenExpired},
		{"wrong audience", signedToken(t, wrongAud), testSecret, ErrInvalidToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := VerifyJWT(tc.secret, tc.token, now); !errors.Is(err, tc.want) {
				t.Fatalf("VerifyJWT() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWTAndRequireRole(t *testing.T) {
	var seen Principal
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	admin := AuthJWT(testSecret)(RequireRole("admin")(ok))

	rec := serve(admin, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", rec.Code)
	}
	var body struct {
		Detail string `json:"detail"`
		Error  struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error.Code != "unauthorized" || body.Detail != body.Error.Message {
		t.Fatalf("error body = %s (%v)", rec.Body.String(), err)
	}

	if rec := serve(admin, signedToken(t, validClaims("donor"))); rec.Code != http.StatusForbidden {
		t.Fatalf("donor on admin route status = %d, want 403", rec.Code)
	}
	if rec := serve(admin, signedToken(t, validClaims("donor", "admin"))); rec.Code != http.StatusNoContent {
		t.Fatalf("admin status = %d, want 204", rec.Code)
	}
	if seen.UserID != "user-1" || !seen.HasRole("admin") {
		t.Fatalf("principal = %+v", seen)
	}
}

func TestOptionalAuth(t *testing.T) {
	var userID string
	h := OptionalAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID = UserIDFromContext(r.Context())
	}))

	if rec := serve(h, ""); rec.Code != http.StatusOK || userID != "" {
		t.Fatalf("anonymous = %d / %q", rec.Code, userID)
	}
	if rec := serve(h, signedToken(t, validClaims("donor"))); rec.Code != http.StatusOK || userID != "user-1" {
		t.Fatalf("authenticated = %d / %q", rec.Code, userID)
	}
	if rec := serve(h, "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token status = %d, want 401", rec.Code)
	}
}
