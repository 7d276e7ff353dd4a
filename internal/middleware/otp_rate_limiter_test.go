package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/InternLink/portal-service/internal/config"
	"github.com/InternLink/portal-service/internal/middleware"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}}
}

func (c *fakeCounter) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.counts[key]++
	return c.counts[key], nil
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("read reset") }
func (failingBody) Close() error             { return nil }

func sendOTPRequest(limiter *middleware.OTPLimiter, next http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/send-otp", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:51000"
	rr := httptest.NewRecorder()
	limiter.Middleware(next).ServeHTTP(rr, req)
	return rr
}

func TestOTPLimiterPassthrough(t *testing.T) {
	t.Run("disabled limiter forwards untouched body", func(t *testing.T) {
		limiter := middleware.NewOTPLimiter(nil, config.RateLimitConfig{Enabled: false})

		var seen string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			seen = string(b)
			w.WriteHeader(http.StatusOK)
		})

		rr := sendOTPRequest(limiter, next, `{"mobile":"9876543210"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, `{"mobile":"9876543210"}`, seen)
	})

	t.Run("enabled without counter still forwards", func(t *testing.T) {
		limiter := middleware.NewOTPLimiter(nil, config.RateLimitConfig{Enabled: true, MaxPerDay: 1})

		reached := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { reached = true })

		sendOTPRequest(limiter, next, `{"mobile":"9876543210"}`)
		require.True(t, reached)
	})

	t.Run("unreadable body forwards without counting", func(t *testing.T) {
		counter := newFakeCounter()
		limiter := middleware.NewOTPLimiter(counter, config.RateLimitConfig{Enabled: true, MaxPerDay: 1})

		reached := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { reached = true })

		req := httptest.NewRequest(http.MethodPost, "/api/send-otp", nil)
		req.Body = failingBody{}
		rr := httptest.NewRecorder()
		limiter.Middleware(next).ServeHTTP(rr, req)

		require.True(t, reached)
		require.Empty(t, counter.counts)
	})
}

func TestOTPLimiterBreach(t *testing.T) {
	t.Run("daily limit returns 429 with retry hint", func(t *testing.T) {
		counter := newFakeCounter()
		limiter := middleware.NewOTPLimiter(counter, config.RateLimitConfig{Enabled: true, MaxPerDay: 2})

		handled := 0
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handled++
			w.WriteHeader(http.StatusOK)
		})

		for i := 0; i < 2; i++ {
			rr := sendOTPRequest(limiter, next, `{"mobile":"9876543210"}`)
			require.Equal(t, http.StatusOK, rr.Code)
		}

		rr := sendOTPRequest(limiter, next, `{"mobile":"9876543210"}`)
		require.Equal(t, http.StatusTooManyRequests, rr.Code)
		require.Equal(t, "60", rr.Header().Get("Retry-After"))
		require.Equal(t, 2, handled)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Equal(t, "daily OTP limit exceeded", body["error"])
	})

	t.Run("counters are keyed per contact and per source ip", func(t *testing.T) {
		counter := newFakeCounter()
		limiter := middleware.NewOTPLimiter(counter, config.RateLimitConfig{Enabled: true, MaxPerDay: 5, MaxPerMinute: 5})
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

		sendOTPRequest(limiter, next, `{"mobile":"9876543210"}`)
		require.Contains(t, counter.counts, "otplimit:day:9876543210")
		require.Contains(t, counter.counts, "otplimit:minute:203.0.113.9")
	})

	t.Run("email contact is limited too", func(t *testing.T) {
		counter := newFakeCounter()
		limiter := middleware.NewOTPLimiter(counter, config.RateLimitConfig{Enabled: true, MaxPerDay: 1})
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

		require.Equal(t, http.StatusOK, sendOTPRequest(limiter, next, `{"email":"user@example.com"}`).Code)
		require.Equal(t, http.StatusTooManyRequests, sendOTPRequest(limiter, next, `{"email":"user@example.com"}`).Code)
	})

	t.Run("per minute limit names its own error", func(t *testing.T) {
		counter := newFakeCounter()
		limiter := middleware.NewOTPLimiter(counter, config.RateLimitConfig{Enabled: true, MaxPerMinute: 1})
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

		require.Equal(t, http.StatusOK, sendOTPRequest(limiter, next, `{"mobile":"9876543210"}`).Code)

		rr := sendOTPRequest(limiter, next, `{"mobile":"9876543210"}`)
		require.Equal(t, http.StatusTooManyRequests, rr.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Equal(t, "too many OTP requests, slow down", body["error"])
	})
}

func TestOTPLimiterRedisFailure(t *testing.T) {
	t.Run("fails open by default", func(t *testing.T) {
		counter := &fakeCounter{err: errors.New("connection refused")}
		limiter := middleware.NewOTPLimiter(counter, config.RateLimitConfig{Enabled: true, MaxPerDay: 1})

		reached := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		})

		rr := sendOTPRequest(limiter, next, `{"mobile":"9876543210"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		require.True(t, reached)
	})

	t.Run("strict mode blocks", func(t *testing.T) {
		counter := &fakeCounter{err: errors.New("connection refused")}
		limiter := middleware.NewOTPLimiter(counter, config.RateLimitConfig{
			Enabled:         true,
			MaxPerDay:       1,
			StrictOnFailure: true,
		})

		reached := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { reached = true })

		rr := sendOTPRequest(limiter, next, `{"mobile":"9876543210"}`)
		require.Equal(t, http.StatusTooManyRequests, rr.Code)
		require.False(t, reached)
	})
}
