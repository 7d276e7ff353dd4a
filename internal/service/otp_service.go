package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/InternLink/portal-service/internal/config"
	"github.com/InternLink/portal-service/internal/models"
	"github.com/InternLink/portal-service/internal/repository"
	"github.com/InternLink/portal-service/internal/util"
	"github.com/InternLink/portal-service/internal/util/logger"
)

var ErrNoDestination = errors.New("at least one of mobile or email is required")

// DeliveryError marks a channel send failure. When it is returned nothing
// was persisted: a code the user cannot have received must not be stored.
type DeliveryError struct {
	Channel string // "SMS" or "Email"
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery via %s failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// VerifyStatus is the caller-visible verification outcome. Invalid covers
// both wrong-code and never-issued so callers cannot probe which codes
// exist.
type VerifyStatus int

const (
	StatusVerified VerifyStatus = iota
	StatusInvalid
	StatusExpired
)

type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, message string) error
}

// OTPService orchestrates code generation, dual-channel delivery and
// persistence. Concurrent Issue calls for the same contact are not
// coordinated; whichever write lands last wins, which is acceptable for
// human-paced requests.
type OTPService struct {
	store repository.OTPStore
	sms   SMSSender
	mail  EmailSender
	clock util.Clock
	cfg   config.OTPConfig
}

func NewOTPService(store repository.OTPStore, sms SMSSender, mail EmailSender, clock util.Clock, cfg config.OTPConfig) *OTPService {
	if cfg.CodeLength < 4 || cfg.CodeLength > 8 {
		cfg.CodeLength = 6
	}
	if cfg.TTL == 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &OTPService{store: store, sms: sms, mail: mail, clock: clock, cfg: cfg}
}

// Issue generates a fresh code and delivers it to every supplied
// destination, SMS first. Any channel failure aborts the whole operation
// before persistence. On full success one record is upserted per contact,
// superseding whatever code was live before.
func (s *OTPService) Issue(ctx context.Context, mobile, email string) error {
	mobile = strings.TrimSpace(mobile)
	email = strings.TrimSpace(email)
	if mobile == "" && email == "" {
		return ErrNoDestination
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	if mobile != "" {
		if err := s.sms.SendSMS(ctx, mobile, "Your OTP is "+code); err != nil {
			return &DeliveryError{Channel: "SMS", Err: err}
		}
	}
	if email != "" {
		if err := s.mail.SendEmail(ctx, email, "Your OTP Code", "Your OTP code is "+code); err != nil {
			return &DeliveryError{Channel: "Email", Err: err}
		}
	}

	now := s.clock.Now()
	rec := models.OtpRecord{
		Mobile:    mobile,
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(s.cfg.TTL),
		UpdatedAt: now,
	}
	if err := s.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("persist otp: %w", err)
	}

	logger.Infof("OTP issued mobile=%t email=%t expires_at=%s", mobile != "", email != "", rec.ExpiresAt.Format(time.RFC3339))
	return nil
}

// Verify is a pure read followed by a status decision. It never deletes or
// marks the record, so a repeat call within the TTL succeeds again.
func (s *OTPService) Verify(ctx context.Context, contact, code string) (VerifyStatus, error) {
	ns := models.NamespaceOf(contact)
	rec, err := s.store.Find(ctx, ns, contact, code)
	if err != nil {
		return StatusInvalid, fmt.Errorf("lookup otp: %w", err)
	}
	if rec == nil {
		return StatusInvalid, nil
	}
	if rec.StatusAt(s.clock.Now()) == models.OtpExpired {
		return StatusExpired, nil
	}
	return StatusVerified, nil
}

// CheckMobile answers the mobile-scoped check where non-expiry is part of
// the lookup query itself, collapsing expired and unknown into one "not
// valid" answer.
func (s *OTPService) CheckMobile(ctx context.Context, mobile, code string) (bool, error) {
	rec, err := s.store.FindValid(ctx, models.NamespaceMobile, mobile, code, s.clock.Now())
	if err != nil {
		return false, fmt.Errorf("lookup otp: %w", err)
	}
	return rec != nil, nil
}

// generateCode draws each digit independently from crypto/rand. Bytes of
// 250 and above are discarded so the modulo cannot favor low digits.
func (s *OTPService) generateCode() (string, error) {
	digits := make([]byte, 0, s.cfg.CodeLength)
	buf := make([]byte, s.cfg.CodeLength)
	for len(digits) < s.cfg.CodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 250 {
				continue
			}
			digits = append(digits, b%10+'0')
			if len(digits) == s.cfg.CodeLength {
				break
			}
		}
	}
	return string(digits), nil
}
