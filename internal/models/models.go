package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Namespace partitions OTP contacts by address kind. A contact containing
// "@" is an email address, anything else is treated as a phone number.
type Namespace string

const (
	NamespaceMobile Namespace = "mobile"
	NamespaceEmail  Namespace = "email"
)

func NamespaceOf(contact string) Namespace {
	if strings.Contains(contact, "@") {
		return NamespaceEmail
	}
	return NamespaceMobile
}

// OtpStatus is derived from ExpiresAt, never stored. Records move from
// Issued to Expired purely by time passing; verification observes the
// transition and triggers nothing.
type OtpStatus string

const (
	OtpIssued  OtpStatus = "issued"
	OtpExpired OtpStatus = "expired"
)

// OtpRecord holds the latest code issued for a contact. Stale records are
// tolerated and never actively evicted; expiry is a timestamp comparison
// at read time.
type OtpRecord struct {
	Mobile    string    `json:"mobile,omitempty"`
	Email     string    `json:"email,omitempty"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *OtpRecord) StatusAt(now time.Time) OtpStatus {
	if r.ExpiresAt.After(now) {
		return OtpIssued
	}
	return OtpExpired
}

// LoginRecord is one append-only audit entry per admitted request.
type LoginRecord struct {
	ID        uuid.UUID `json:"id"`
	Browser   string    `json:"browserType"`
	OS        string    `json:"osType"`
	IP        string    `json:"ipAddress"`
	LoginTime time.Time `json:"loginTime"`
}

// ApplicationStatus is the fixed review-state enumeration. Updates carrying
// any other value are rejected before a write happens.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

type Application struct {
	ID          uuid.UUID         `json:"id"`
	CoverLetter string            `json:"coverLetter"`
	User        json.RawMessage   `json:"user,omitempty"`
	Company     string            `json:"company"`
	Category    string            `json:"category"`
	Body        string            `json:"body"`
	ListingID   string            `json:"listingId"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type Internship struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	Duration       string    `json:"duration"`
	Category       string    `json:"category"`
	AboutCompany   string    `json:"aboutCompany"`
	AboutRole      string    `json:"aboutInternship"`
	WhoCanApply    string    `json:"whoCanApply"`
	Perks          []string  `json:"perks"`
	AdditionalInfo string    `json:"additionalInfo"`
	Stipend        string    `json:"stipend"`
	StartDate      string    `json:"startDate"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Job struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	Experience     string    `json:"experience"`
	Category       string    `json:"category"`
	AboutCompany   string    `json:"aboutCompany"`
	AboutRole      string    `json:"aboutJob"`
	WhoCanApply    string    `json:"whoCanApply"`
	Perks          []string  `json:"perks"`
	AdditionalInfo string    `json:"additionalInfo"`
	CTC            string    `json:"ctc"`
	StartDate      string    `json:"startDate"`
	CreatedAt      time.Time `json:"createdAt"`
}
