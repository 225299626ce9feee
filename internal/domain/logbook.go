package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxEntriesPerWeek caps logbook entries per weekly log (one per weekday,
// Mon-Fri). Enforced as a count, not a weekday-identity constraint.
const MaxEntriesPerWeek = 5

// Logbook is the one-per-internship ledger root. Its stored status is a
// cache of DeriveLogbookStatus over its weeks, recomputed on every child
// transition and never set directly by a client.
type Logbook struct {
	ID           uuid.UUID
	InternshipID uuid.UUID
	Status       ApprovalStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WeeklyLog groups entries into a calendar week of the internship.
// WeekNo is derived from the internship start date at creation time,
// never client-chosen. Unique per (logbook, week_no).
type WeeklyLog struct {
	ID        uuid.UUID
	LogbookID uuid.UUID
	WeekNo    int
	Status    ApprovalStatus
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LogbookEntry is a day-level activity record. Once IsImmutable flips to
// true the entry is sealed: description, feedback, and signature become
// write-once outside the administrative path.
type LogbookEntry struct {
	ID          uuid.UUID
	WeeklyLogID uuid.UUID
	Description string
	Feedback    string
	IsImmutable bool
	// Signature is the current signature over the entry content.
	Signature string
	// OriginalSignature is the first signature ever produced for the
	// entry, retained for audit even if content is amended pre-approval.
	OriginalSignature string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SignedMessage returns the exact byte sequence bound by the entry's
// signature: description, supervisor feedback, and the creation timestamp
// at second precision. Binding the feedback makes post-signing tampering
// with either field detectable.
func (e *LogbookEntry) SignedMessage() []byte {
	ts := e.CreatedAt.UTC().Truncate(time.Second).Format(time.RFC3339)
	return []byte(e.Description + e.Feedback + ts)
}

// DeriveLogbookStatus computes the logbook status as a pure projection of
// its weekly log statuses: approved iff every week is approved, rejected
// if any week is rejected, pending otherwise. An empty logbook is pending.
func DeriveLogbookStatus(weeks []WeeklyLog) ApprovalStatus {
	if len(weeks) == 0 {
		return ApprovalStatusPending
	}
	allApproved := true
	for _, w := range weeks {
		switch w.Status {
		case ApprovalStatusRejected:
			return ApprovalStatusRejected
		case ApprovalStatusApproved:
		default:
			allApproved = false
		}
	}
	if allApproved {
		return ApprovalStatusApproved
	}
	return ApprovalStatusPending
}

// LogbookTree is the full read-only view consumed by the report
// generation collaborator.
type LogbookTree struct {
	Logbook Logbook
	Weeks   []WeekWithEntries
}

// WeekWithEntries pairs a weekly log with its entries ordered by creation.
type WeekWithEntries struct {
	WeeklyLog WeeklyLog
	Entries   []LogbookEntry
}
