package domain

import (
	"time"

	"github.com/google/uuid"
)

// Internship is a long-lived root entity. The core reads its status and
// date range but never mutates it.
type Internship struct {
	ID           uuid.UUID
	StudentID    uuid.UUID
	SupervisorID uuid.UUID
	Status       InternshipStatus
	StartDate    time.Time
	EndDate      time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InternshipFilter narrows an internship listing. Zero values mean no
// constraint.
type InternshipFilter struct {
	StudentID    uuid.UUID
	SupervisorID uuid.UUID
	Status       InternshipStatus
}

// ContainsDate reports whether day falls within [StartDate, EndDate],
// compared at calendar-day precision.
func (i *Internship) ContainsDate(day time.Time) bool {
	d := truncateToDay(day)
	return !d.Before(truncateToDay(i.StartDate)) && !d.After(truncateToDay(i.EndDate))
}

// Ended reports whether the internship end date has passed relative to now.
func (i *Internship) Ended(now time.Time) bool {
	return truncateToDay(now).After(truncateToDay(i.EndDate))
}

// WeekNumber computes the 1-based calendar week of day relative to the
// internship start date: floor(days since start / 7) + 1. The caller is
// responsible for range-checking day against the internship dates first.
func WeekNumber(startDate, day time.Time) int {
	days := int(truncateToDay(day).Sub(truncateToDay(startDate)).Hours() / 24)
	return days/7 + 1
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Student holds the student profile along with its custodial key material.
// PublicKey is stored in clear; EncryptedPrivateKey is AES-GCM ciphertext
// decrypted only transiently during signing. A student has at most one
// keypair ever.
type Student struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	MatriculeNum        string
	PublicKey           string
	EncryptedPrivateKey []byte
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasKeypair reports whether a keypair has been issued for this student.
func (s *Student) HasKeypair() bool {
	return s.PublicKey != "" || len(s.EncryptedPrivateKey) > 0
}

// Supervisor is the company-side profile that approves logbook work.
type Supervisor struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Status    SupervisorStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
