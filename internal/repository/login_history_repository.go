package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/InternLink/portal-service/internal/models"
)

// LoginHistoryStore is append-only. Nothing in the OTP flow reads it; the
// only consumer is the newest-first listing endpoint.
type LoginHistoryStore interface {
	Append(ctx context.Context, rec models.LoginRecord) error
	ListNewestFirst(ctx context.Context) ([]models.LoginRecord, error)
}

type postgresLoginHistoryStore struct {
	db *sql.DB
}

func NewPostgresLoginHistoryStore(db *sql.DB) LoginHistoryStore {
	return &postgresLoginHistoryStore{db: db}
}

func (s *postgresLoginHistoryStore) Append(ctx context.Context, rec models.LoginRecord) error {
	const q = `
INSERT INTO login_history (id, browser_type, os_type, ip_address, login_time)
VALUES ($1, $2, $3, $4, $5)
`
	if _, err := s.db.ExecContext(ctx, q, rec.ID, rec.Browser, rec.OS, rec.IP, rec.LoginTime); err != nil {
		return fmt.Errorf("append login record: %w", err)
	}
	return nil
}

func (s *postgresLoginHistoryStore) ListNewestFirst(ctx context.Context) ([]models.LoginRecord, error) {
	const q = `
SELECT id, browser_type, os_type, ip_address, login_time
FROM login_history
ORDER BY login_time DESC
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list login history: %w", err)
	}
	defer rows.Close()

	var out []models.LoginRecord
	for rows.Next() {
		var rec models.LoginRecord
		if err := rows.Scan(&rec.ID, &rec.Browser, &rec.OS, &rec.IP, &rec.LoginTime); err != nil {
			return nil, fmt.Errorf("scan login record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
