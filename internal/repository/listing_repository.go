package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/InternLink/portal-service/internal/models"
)

var ErrNotFound = errors.New("record not found")

// ListingStore covers the plain persistence surface: applications,
// internships and jobs are written as sent and read back whole. The only
// guarded write is the application status update, which the handler
// validates against the fixed enumeration first.
type ListingStore interface {
	CreateApplication(ctx context.Context, a *models.Application) error
	ListApplications(ctx context.Context) ([]models.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) (*models.Application, error)

	CreateInternship(ctx context.Context, i *models.Internship) error
	ListInternships(ctx context.Context) ([]models.Internship, error)
	GetInternship(ctx context.Context, id uuid.UUID) (*models.Internship, error)

	CreateJob(ctx context.Context, j *models.Job) error
	ListJobs(ctx context.Context) ([]models.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

type postgresListingStore struct {
	db *sql.DB
}

func NewPostgresListingStore(db *sql.DB) ListingStore {
	return &postgresListingStore{db: db}
}

func (s *postgresListingStore) CreateApplication(ctx context.Context, a *models.Application) error {
	user := a.User
	if user == nil {
		user = json.RawMessage(`{}`)
	}
	const q = `
INSERT INTO applications (id, cover_letter, user_data, company, category, body, listing_id, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := s.db.ExecContext(ctx, q,
		a.ID, a.CoverLetter, []byte(user), a.Company, a.Category, a.Body, a.ListingID, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *postgresListingStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	const q = `
SELECT id, cover_letter, user_data, company, category, body, listing_id, status, created_at
FROM applications
ORDER BY created_at DESC
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *postgresListingStore) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	const q = `
SELECT id, cover_letter, user_data, company, category, body, listing_id, status, created_at
FROM applications
WHERE id = $1
`
	a, err := scanApplication(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *postgresListingStore) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) (*models.Application, error) {
	const q = `
UPDATE applications
SET status = $2
WHERE id = $1
RETURNING id, cover_letter, user_data, company, category, body, listing_id, status, created_at
`
	a, err := scanApplication(s.db.QueryRowContext(ctx, q, id, status))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var a models.Application
	var user []byte
	err := row.Scan(&a.ID, &a.CoverLetter, &user, &a.Company, &a.Category, &a.Body, &a.ListingID, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.User = json.RawMessage(user)
	return &a, nil
}

func (s *postgresListingStore) CreateInternship(ctx context.Context, i *models.Internship) error {
	const q = `
INSERT INTO internships (id, title, company, location, duration, category, about_company, about_role, who_can_apply, perks, additional_info, stipend, start_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`
	_, err := s.db.ExecContext(ctx, q,
		i.ID, i.Title, i.Company, i.Location, i.Duration, i.Category, i.AboutCompany, i.AboutRole,
		i.WhoCanApply, pq.Array(i.Perks), i.AdditionalInfo, i.Stipend, i.StartDate, i.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert internship: %w", err)
	}
	return nil
}

func (s *postgresListingStore) ListInternships(ctx context.Context) ([]models.Internship, error) {
	const q = `
SELECT id, title, company, location, duration, category, about_company, about_role, who_can_apply, perks, additional_info, stipend, start_date, created_at
FROM internships
ORDER BY created_at DESC
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list internships: %w", err)
	}
	defer rows.Close()

	var out []models.Internship
	for rows.Next() {
		i, err := scanInternship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

func (s *postgresListingStore) GetInternship(ctx context.Context, id uuid.UUID) (*models.Internship, error) {
	const q = `
SELECT id, title, company, location, duration, category, about_company, about_role, who_can_apply, perks, additional_info, stipend, start_date, created_at
FROM internships
WHERE id = $1
`
	i, err := scanInternship(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return i, err
}

func scanInternship(row rowScanner) (*models.Internship, error) {
	var i models.Internship
	err := row.Scan(&i.ID, &i.Title, &i.Company, &i.Location, &i.Duration, &i.Category, &i.AboutCompany,
		&i.AboutRole, &i.WhoCanApply, pq.Array(&i.Perks), &i.AdditionalInfo, &i.Stipend, &i.StartDate, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *postgresListingStore) CreateJob(ctx context.Context, j *models.Job) error {
	const q = `
INSERT INTO jobs (id, title, company, location, experience, category, about_company, about_role, who_can_apply, perks, additional_info, ctc, start_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`
	_, err := s.db.ExecContext(ctx, q,
		j.ID, j.Title, j.Company, j.Location, j.Experience, j.Category, j.AboutCompany, j.AboutRole,
		j.WhoCanApply, pq.Array(j.Perks), j.AdditionalInfo, j.CTC, j.StartDate, j.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *postgresListingStore) ListJobs(ctx context.Context) ([]models.Job, error) {
	const q = `
SELECT id, title, company, location, experience, category, about_company, about_role, who_can_apply, perks, additional_info, ctc, start_date, created_at
FROM jobs
ORDER BY created_at DESC
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (s *postgresListingStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	const q = `
SELECT id, title, company, location, experience, category, about_company, about_role, who_can_apply, perks, additional_info, ctc, start_date, created_at
FROM jobs
WHERE id = $1
`
	j, err := scanJob(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return j, err
}

func scanJob(row rowScanner) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Experience, &j.Category, &j.AboutCompany,
		&j.AboutRole, &j.WhoCanApply, pq.Array(&j.Perks), &j.AdditionalInfo, &j.CTC, &j.StartDate, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
