package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_BurstPerClient(t *testing.T) {
	rl := newRateLimiter(4, time.Second)
	defer rl.close()

	for i := 1; i <= 4; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d rejected within burst", i)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("request beyond burst allowed")
	}
	if !rl.allow("10.0.0.2") {
		t.Fatal("second client shares the first client's bucket")
	}
	if got := rl.len(); got != 2 {
		t.Errorf("tracked clients = %d, want 2", got)
	}
}

func TestRateLimiter_RefillsOverWindow(t *testing.T) {
	// 2 per 100ms refills one token every 50ms
	rl := newRateLimiter(2, 100*time.Millisecond)
	defer rl.close()

	t0 := time.Now()
	steps := []struct {
		at   time.Duration
		want bool
	}{
		{0, true},
		{0, true},
		{0, false},
		{60 * time.Millisecond, true},
		{60 * time.Millisecond, false},
		{200 * time.Millisecond, true},
		{200 * time.Millisecond, true},
	}
	for i, st := range steps {
		if got := rl.allowAt("10.0.0.1", t0.Add(st.at)); got != st.want {
			t.Errorf("step %d at +%v: allowed=%v, want %v", i, st.at, got, st.want)
		}
	}
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl := newRateLimiter(10, time.Minute)
	defer rl.close()

	now := time.Now()
	rl.allowAt("10.0.0.1", now.Add(-150*time.Second))
	rl.allowAt("10.0.0.2", now.Add(-90*time.Second))
	rl.allowAt("10.0.0.3", now)

	rl.evict(now)

	if got := rl.len(); got != 2 {
		t.Errorf("tracked clients after evict = %d, want 2", got)
	}
}

func TestRateLimiter_CloseTwice(t *testing.T) {
	rl := newRateLimiter(1, time.Second)
	rl.close()
	rl.close()
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.close()

	h := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.9:4242"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send("/wordcounter/countwords"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i+1, rec.Code)
		}
	}

	rec := send("/wordcounter/countwords")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 without Retry-After")
	}

	for _, p := range []string{"/health", "/ready", "/live", "/metrics"} {
		if rec := send(p); rec.Code != http.StatusNoContent {
			t.Errorf("%s limited: status %d", p, rec.Code)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	cases := map[string]struct {
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		"remote addr":             {remote: "10.1.2.3:5000", want: "10.1.2.3"},
		"ipv6 remote addr":        {remote: "[2001:db8::7]:443", want: "2001:db8::7"},
		"no port":                 {remote: "10.1.2.3", want: "10.1.2.3"},
		"forwarded ignored":       {remote: "10.1.2.3:5000", headers: map[string]string{"X-Forwarded-For": "198.51.100.4"}, want: "10.1.2.3"},
		"real ip ignored":         {remote: "10.1.2.3:5000", headers: map[string]string{"X-Real-IP": "198.51.100.9"}, want: "10.1.2.3"},
		"trusted forwarded chain": {remote: "127.0.0.1:1", headers: map[string]string{"X-Forwarded-For": " 198.51.100.4 , 10.0.0.1"}, trustProxy: true, want: "198.51.100.4"},
		"trusted real ip":         {remote: "127.0.0.1:1", headers: map[string]string{"X-Real-IP": "198.51.100.9"}, trustProxy: true, want: "198.51.100.9"},
		"trusted forwarded wins":  {remote: "127.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "198.51.100.4", "X-Real-IP": "198.51.100.9"}, trustProxy: true, want: "198.51.100.4"},
		"trusted without headers": {remote: "10.1.2.3:5000", headers: map[string]string{"X-Real-IP": "  "}, trustProxy: true, want: "10.1.2.3"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req, tc.trustProxy); got != tc.want {
				t.Errorf("getClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimiter_RotatingForwardedForDoesNotEvade(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.close()

	h := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/wordcounter/countwords", nil)
		req.RemoteAddr = "10.0.0.9:4242"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want the third request limited", codes)
	}
}
