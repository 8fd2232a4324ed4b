package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	return token
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()

	mw := AdminAuth(testSecret, 42)

	okHandler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	validClaims := jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	type tc struct {
		name       string
		authHeader string
		wantStatus int
	}

	tests := []tc{
		{
			name:       "valid_token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, validClaims),
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "missing_header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not_bearer",
			authHeader: "Basic abc123",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage_token",
			authHeader: "Bearer not.a.jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong_secret",
			authHeader: "Bearer " + signToken(t, "other-secret", jwt.SigningMethodHS256, validClaims),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired_token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "42",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong_subject",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "43",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusForbidden,
		},
		{
			name: "non_numeric_subject",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "admin",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/admin/withdrawals", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			okHandler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: want %d, got %d (body %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestParseDecimalMinor(t *testing.T) {
	t.Parallel()

	type tc struct {
		in      string
		want    int64
		wantErr bool
	}

	tests := []tc{
		{in: "10", want: 1_000},
		{in: "10.5", want: 1_050},
		{in: "10.55", want: 1_055},
		{in: "0.05", want: 5},
		{in: "-3.25", want: -325},
		{in: "+2", want: 200},
		{in: "10.555", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseDecimalMinor(tt.in)

		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %d", tt.in, got)
			}
			continue
		}

		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: want %d, got %d", tt.in, tt.want, got)
		}
	}

	if _, err := parseAmount("0"); err == nil {
		t.Fatalf("parseAmount accepted zero")
	}
	if _, err := parseAmount("-1"); err == nil {
		t.Fatalf("parseAmount accepted negative")
	}
}
