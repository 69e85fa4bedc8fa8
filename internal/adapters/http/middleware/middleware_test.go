package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterExhaustsBucket(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied within capacity", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over capacity allowed")
	}
	// Other clients have their own bucket.
	if !rl.Allow("10.0.0.2") {
		t.Error("separate client denied")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(2, 10*time.Millisecond)

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	if rl.Allow("10.0.0.1") {
		t.Fatal("bucket should be empty")
	}
	time.Sleep(25 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Error("bucket did not refill after interval")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	h := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest("GET", "/api/tiers", nil)
	req.RemoteAddr = "192.0.2.1:50000"

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rr.Code)
	}

	// Same IP, different ephemeral port: must share a bucket.
	req2 := httptest.NewRequest("GET", "/api/tiers", nil)
	req2.RemoteAddr = "192.0.2.1:50001"
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, req2)
	if rr2.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rr2.Code)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.7:61234"
	if got := clientIP(r); got != "198.51.100.7" {
		t.Errorf("clientIP = %q, want bare host", got)
	}

	r.RemoteAddr = "no-port-here"
	if got := clientIP(r); got != "no-port-here" {
		t.Errorf("clientIP fallback = %q, want raw RemoteAddr", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	for header, want := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy not set")
	}
}

func TestTrustedOriginsFromEnv(t *testing.T) {
	t.Setenv("SPARK_TRUSTED_ORIGINS", "spark.example.org, www.spark.example.org,")

	origins := trustedOrigins()
	want := map[string]bool{
		"localhost:8080":        true,
		"127.0.0.1:8080":        true,
		"spark.example.org":     true,
		"www.spark.example.org": true,
	}
	if len(origins) != len(want) {
		t.Fatalf("got %d origins %v, want %d", len(origins), origins, len(want))
	}
	for _, o := range origins {
		if !want[o] {
			t.Errorf("unexpected origin %q", o)
		}
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), tag("outer"), tag("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	want := []string{"outer", "inner", "handler"}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("traversal = %v, want %v", order, want)
		}
	}
}

func TestCSRFExemptsJSON(t *testing.T) {
	key := make([]byte, 32)
	h := CSRF(key)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest("POST", "/api/contact", nil)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Errorf("JSON post status = %d, want 201 (CSRF exempt)", rr.Code)
	}

	// A form post without a token is rejected.
	form := httptest.NewRequest("POST", "/api/contact", nil)
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, form)
	if rr2.Code != http.StatusForbidden {
		t.Errorf("form post without token status = %d, want 403", rr2.Code)
	}
}

func TestCSRFTokenRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	h := CSRF(key)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	// Any safe request exposes a token for later unsafe requests.
	get := httptest.NewRequest("GET", "/api/tiers", nil)
	rrGet := httptest.NewRecorder()
	h.ServeHTTP(rrGet, get)
	token := rrGet.Header().Get(CSRFTokenHeader)
	if token == "" {
		t.Fatal("GET response did not expose a CSRF token")
	}

	// A multipart post replaying the token and cookie passes.
	post := httptest.NewRequest("POST", "/api/register/team", nil)
	post.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	post.Header.Set(CSRFTokenHeader, token)
	for _, c := range rrGet.Result().Cookies() {
		post.AddCookie(c)
	}
	rrPost := httptest.NewRecorder()
	h.ServeHTTP(rrPost, post)
	if rrPost.Code != http.StatusCreated {
		t.Errorf("multipart post with token status = %d, want 201", rrPost.Code)
	}

	// Without the header the same post is still rejected.
	bare := httptest.NewRequest("POST", "/api/register/team", nil)
	bare.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	for _, c := range rrGet.Result().Cookies() {
		bare.AddCookie(c)
	}
	rrBare := httptest.NewRecorder()
	h.ServeHTTP(rrBare, bare)
	if rrBare.Code != http.StatusForbidden {
		t.Errorf("multipart post without token status = %d, want 403", rrBare.Code)
	}
}
