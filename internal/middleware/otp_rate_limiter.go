package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/InternLink/portal-service/internal/config"
	"github.com/InternLink/portal-service/internal/util/logger"
)

// RateCounter is the one Redis operation the limiter needs. The wrapped
// Redis client satisfies it.
type RateCounter interface {
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// OTPLimiter throttles issuance per contact (daily) and per source IP
// (minute) with Redis window counters. When disabled it is a passthrough;
// when Redis is unreachable it fails open unless strict mode is set.
type OTPLimiter struct {
	counter RateCounter
	cfg     config.RateLimitConfig
}

func NewOTPLimiter(counter RateCounter, cfg config.RateLimitConfig) *OTPLimiter {
	return &OTPLimiter{counter: counter, cfg: cfg}
}

func (l *OTPLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.cfg.Enabled || l.counter == nil {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		r.Body.Close()
		if err != nil {
			logger.Warnf("OTP limiter could not read request body: %v", err)
			r.Body = io.NopCloser(bytes.NewReader(nil))
			next.ServeHTTP(w, r)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var req struct {
			Mobile string `json:"mobile"`
			Email  string `json:"email"`
		}
		_ = json.Unmarshal(body, &req)

		contact := strings.TrimSpace(req.Mobile)
		if contact == "" {
			contact = strings.TrimSpace(req.Email)
		}
		if contact == "" {
			// Missing destinations are the handler's usage error to report.
			next.ServeHTTP(w, r)
			return
		}

		if err := l.checkLimits(r.Context(), contact, sourceAddress(r)); err != nil {
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *OTPLimiter) checkLimits(ctx context.Context, contact, ip string) error {
	if l.cfg.MaxPerDay > 0 {
		if !l.allow(ctx, "otplimit:day:"+contact, l.cfg.MaxPerDay, ttlUntilMidnight()) {
			return errors.New("daily OTP limit exceeded")
		}
	}
	if l.cfg.MaxPerMinute > 0 {
		if !l.allow(ctx, "otplimit:minute:"+ip, l.cfg.MaxPerMinute, ttlUntilNextMinute()) {
			return errors.New("too many OTP requests, slow down")
		}
	}
	return nil
}

func (l *OTPLimiter) allow(ctx context.Context, key string, max int, ttl time.Duration) bool {
	val, err := l.counter.IncrementWithTTL(ctx, key, ttl)
	if err != nil {
		if l.cfg.StrictOnFailure {
			logger.Errorf("OTP limiter blocking on Redis failure key=%s err=%v", key, err)
			return false
		}
		logger.Warnf("OTP limiter allowing on Redis failure key=%s err=%v", key, err)
		return true
	}
	return int(val) <= max
}

func ttlUntilMidnight() time.Duration {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
	return midnight.Sub(now)
}

func ttlUntilNextMinute() time.Duration {
	now := time.Now()
	return now.Truncate(time.Minute).Add(time.Minute).Sub(now)
}
