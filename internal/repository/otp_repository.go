package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/InternLink/portal-service/internal/models"
)

// OTPStore persists at most one live code per contact. Upsert replaces any
// prior record for the supplied contact values (latest code wins); lookups
// are reads only and never consume the record.
type OTPStore interface {
	Upsert(ctx context.Context, rec models.OtpRecord) error
	// Find returns nil, nil when no record matches contact+code on the
	// given namespace, whether the code is wrong or was never issued.
	Find(ctx context.Context, ns models.Namespace, contact, code string) (*models.OtpRecord, error)
	// FindValid additionally requires expires_at in the future as part of
	// the query itself.
	FindValid(ctx context.Context, ns models.Namespace, contact, code string, now time.Time) (*models.OtpRecord, error)
}

type postgresOTPStore struct {
	db *sql.DB
}

func NewPostgresOTPStore(db *sql.DB) OTPStore {
	return &postgresOTPStore{db: db}
}

func (s *postgresOTPStore) Upsert(ctx context.Context, rec models.OtpRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin otp upsert: %w", err)
	}
	defer tx.Rollback()

	const del = `
DELETE FROM otp_records
WHERE (mobile = $1 AND $1 <> '') OR (email = $2 AND $2 <> '')
`
	if _, err := tx.ExecContext(ctx, del, rec.Mobile, rec.Email); err != nil {
		return fmt.Errorf("clear superseded otp: %w", err)
	}

	const ins = `
INSERT INTO otp_records (mobile, email, code, expires_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
`
	if _, err := tx.ExecContext(ctx, ins, rec.Mobile, rec.Email, rec.Code, rec.ExpiresAt, rec.UpdatedAt); err != nil {
		return fmt.Errorf("insert otp: %w", err)
	}
	return tx.Commit()
}

func (s *postgresOTPStore) Find(ctx context.Context, ns models.Namespace, contact, code string) (*models.OtpRecord, error) {
	q := fmt.Sprintf(`
SELECT mobile, email, code, expires_at, updated_at
FROM otp_records
WHERE %s = $1 AND code = $2
ORDER BY updated_at DESC
LIMIT 1
`, contactColumn(ns))
	return s.scanOne(s.db.QueryRowContext(ctx, q, contact, code))
}

func (s *postgresOTPStore) FindValid(ctx context.Context, ns models.Namespace, contact, code string, now time.Time) (*models.OtpRecord, error) {
	q := fmt.Sprintf(`
SELECT mobile, email, code, expires_at, updated_at
FROM otp_records
WHERE %s = $1 AND code = $2 AND expires_at > $3
ORDER BY updated_at DESC
LIMIT 1
`, contactColumn(ns))
	return s.scanOne(s.db.QueryRowContext(ctx, q, contact, code, now))
}

func (s *postgresOTPStore) scanOne(row *sql.Row) (*models.OtpRecord, error) {
	var rec models.OtpRecord
	err := row.Scan(&rec.Mobile, &rec.Email, &rec.Code, &rec.ExpiresAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan otp record: %w", err)
	}
	return &rec, nil
}

func contactColumn(ns models.Namespace) string {
	if ns == models.NamespaceEmail {
		return "email"
	}
	return "mobile"
}
