package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/InternLink/portal-service/internal/config"
	"github.com/InternLink/portal-service/internal/handler"
	"github.com/InternLink/portal-service/internal/models"
	"github.com/InternLink/portal-service/internal/service"
)

type memoryOTPStore struct {
	records []models.OtpRecord
	failAll bool
}

func (s *memoryOTPStore) Upsert(ctx context.Context, rec models.OtpRecord) error {
	if s.failAll {
		return errors.New("connection refused")
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *memoryOTPStore) Find(ctx context.Context, ns models.Namespace, contact, code string) (*models.OtpRecord, error) {
	if s.failAll {
		return nil, errors.New("connection refused")
	}
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		candidate := r.Mobile
		if ns == models.NamespaceEmail {
			candidate = r.Email
		}
		if candidate == contact && r.Code == code {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memoryOTPStore) FindValid(ctx context.Context, ns models.Namespace, contact, code string, now time.Time) (*models.OtpRecord, error) {
	rec, err := s.Find(ctx, ns, contact, code)
	if err != nil || rec == nil {
		return nil, err
	}
	if !rec.ExpiresAt.After(now) {
		return nil, nil
	}
	return rec, nil
}

type fakeSMS struct {
	lastMessage string
	err         error
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, message string) error {
	if f.err != nil {
		return f.err
	}
	f.lastMessage = message
	return nil
}

type fakeEmail struct{ err error }

func (f *fakeEmail) SendEmail(ctx context.Context, to, subject, message string) error {
	return f.err
}

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func newOTPFixture(store *memoryOTPStore, sms *fakeSMS, mail *fakeEmail, clock *stepClock) *handler.OTPHandler {
	svc := service.NewOTPService(store, sms, mail, clock, config.OTPConfig{CodeLength: 6, TTL: 5 * time.Minute})
	return handler.NewOTPHandler(svc)
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestSendOTP(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := &memoryOTPStore{}
		h := newOTPFixture(store, &fakeSMS{}, &fakeEmail{}, &stepClock{t: time.Now()})

		rr := postJSON(t, h.SendOTP, `{"mobile":"9876543210","email":"user@example.com"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "OTP sent successfully", decodeBody(t, rr)["message"])
		require.Len(t, store.records, 1)
	})

	t.Run("missing both destinations", func(t *testing.T) {
		h := newOTPFixture(&memoryOTPStore{}, &fakeSMS{}, &fakeEmail{}, &stepClock{t: time.Now()})
		rr := postJSON(t, h.SendOTP, `{}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("sms delivery failure names the channel", func(t *testing.T) {
		store := &memoryOTPStore{}
		h := newOTPFixture(store, &fakeSMS{err: errors.New("gateway down")}, &fakeEmail{}, &stepClock{t: time.Now()})

		rr := postJSON(t, h.SendOTP, `{"mobile":"9876543210"}`)
		require.Equal(t, http.StatusInternalServerError, rr.Code)
		require.Equal(t, "Error sending OTP via SMS", decodeBody(t, rr)["error"])
		require.Empty(t, store.records)
	})

	t.Run("email delivery failure names the channel", func(t *testing.T) {
		h := newOTPFixture(&memoryOTPStore{}, &fakeSMS{}, &fakeEmail{err: errors.New("rejected")}, &stepClock{t: time.Now()})
		rr := postJSON(t, h.SendOTP, `{"email":"user@example.com"}`)
		require.Equal(t, http.StatusInternalServerError, rr.Code)
		require.Equal(t, "Error sending OTP via Email", decodeBody(t, rr)["error"])
	})

	t.Run("storage failure is generic", func(t *testing.T) {
		h := newOTPFixture(&memoryOTPStore{failAll: true}, &fakeSMS{}, &fakeEmail{}, &stepClock{t: time.Now()})
		rr := postJSON(t, h.SendOTP, `{"mobile":"9876543210"}`)
		require.Equal(t, http.StatusInternalServerError, rr.Code)
		require.Equal(t, "Internal server error", decodeBody(t, rr)["error"])
	})
}

func TestVerifyOTP(t *testing.T) {
	issue := func(t *testing.T) (*handler.OTPHandler, string, *stepClock) {
		t.Helper()
		store := &memoryOTPStore{}
		sms := &fakeSMS{}
		clock := &stepClock{t: time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)}
		h := newOTPFixture(store, sms, &fakeEmail{}, clock)
		rr := postJSON(t, h.SendOTP, `{"mobile":"9876543210"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		code := sms.lastMessage[len(sms.lastMessage)-6:]
		return h, code, clock
	}

	t.Run("verified", func(t *testing.T) {
		h, code, _ := issue(t)
		rr := postJSON(t, h.VerifyOTP, `{"contact":"9876543210","otp":"`+code+`"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		require.Equal(t, true, body["success"])
		require.Equal(t, "OTP verified", body["message"])
	})

	t.Run("replay within ttl verifies again", func(t *testing.T) {
		h, code, _ := issue(t)
		for i := 0; i < 2; i++ {
			rr := postJSON(t, h.VerifyOTP, `{"contact":"9876543210","otp":"`+code+`"}`)
			require.Equal(t, http.StatusOK, rr.Code)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		h, _, _ := issue(t)
		rr := postJSON(t, h.VerifyOTP, `{"contact":"9876543210","otp":"000000"}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeBody(t, rr)
		require.Equal(t, false, body["success"])
		require.Equal(t, "Invalid OTP", body["message"])
	})

	t.Run("unknown contact reads the same as a wrong code", func(t *testing.T) {
		h, _, _ := issue(t)
		wrong := postJSON(t, h.VerifyOTP, `{"contact":"9876543210","otp":"000000"}`)
		unknown := postJSON(t, h.VerifyOTP, `{"contact":"1112223334","otp":"000000"}`)
		require.Equal(t, wrong.Code, unknown.Code)
		require.JSONEq(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("expired", func(t *testing.T) {
		h, code, clock := issue(t)
		clock.t = clock.t.Add(6 * time.Minute)
		rr := postJSON(t, h.VerifyOTP, `{"contact":"9876543210","otp":"`+code+`"}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, "OTP expired", decodeBody(t, rr)["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		h, _, _ := issue(t)
		rr := postJSON(t, h.VerifyOTP, `{"contact":"9876543210"}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCheckOTP(t *testing.T) {
	store := &memoryOTPStore{}
	sms := &fakeSMS{}
	clock := &stepClock{t: time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)}
	h := newOTPFixture(store, sms, &fakeEmail{}, clock)

	rr := postJSON(t, h.SendOTP, `{"mobile":"9876543210"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	code := sms.lastMessage[len(sms.lastMessage)-6:]

	t.Run("valid", func(t *testing.T) {
		rr := postJSON(t, h.CheckOTP, `{"mobile":"9876543210","otp":"`+code+`"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "OTP is valid", decodeBody(t, rr)["message"])
	})

	t.Run("wrong code", func(t *testing.T) {
		rr := postJSON(t, h.CheckOTP, `{"mobile":"9876543210","otp":"000000"}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, "Invalid OTP", decodeBody(t, rr)["error"])
	})

	t.Run("expired reads as invalid", func(t *testing.T) {
		clock.t = clock.t.Add(6 * time.Minute)
		rr := postJSON(t, h.CheckOTP, `{"mobile":"9876543210","otp":"`+code+`"}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, "Invalid OTP", decodeBody(t, rr)["error"])
	})
}
