package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIPForRateLimit(t *testing.T) {
	cases := map[string]struct {
		forwarded, remote, want string
	}{
		"first valid forwarded entry": {" bogus , 203.0.113.7, 10.0.0.1", "10.0.0.9:5000", "203.0.113.7"},
		"no forwarded header":         {"", "198.51.100.4:443", "198.51.100.4"},
		"ipv6 remote":                 {"", "[2001:db8::5]:443", "2001:db8::5"},
		"remote without port":         {"not-an-ip", "192.0.2.1", "192.0.2.1"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/donations", nil)
			req.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := clientIPForRateLimit(req); got != tc.want {
				t.Fatalf("clientIPForRateLimit() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimitRejectsWithJSONError(t *testing.T) {
	served := 0
	h := RateLimit(60, 3)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.WriteHeader(http.StatusOK)
	}))

	do := func(forwarded string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/campaigns", nil)
		req.RemoteAddr = "10.0.0.2:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		if rec := do("203.0.113.50"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, rec.Code)
		}
	}
	rec := do("203.0.113.50")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Error.Code != "rate_limited" {
		t.Fatalf("body code = %q, err %v", body.Error.Code, err)
	}

	// Same proxy, different client: separate bucket.
	if rec := do("203.0.113.51"); rec.Code != http.StatusOK {
		t.Fatalf("second client status = %d", rec.Code)
	}
	if served != 4 {
		t.Fatalf("handler served %d requests, want 4", served)
	}
}

func TestValidRequestID(t *testing.T) {
	for id, want := range map[string]bool{
		"web-7f3a9c21":        true,
		"short":               false,
		"has space in it xx":  false,
		"line\nbreak-0000000": false,
	} {
		if got := validRequestID(id); got != want {
			t.Fatalf("validRequestID(%q) = %v, want %v", id, got, want)
		}
	}
}
