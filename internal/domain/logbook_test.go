package domain

import (
	"testing"
	"time"
)

func week(status ApprovalStatus) WeeklyLog {
	return WeeklyLog{Status: status}
}

func TestDeriveLogbookStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		weeks []WeeklyLog
		want  ApprovalStatus
	}{
		{"empty", nil, ApprovalStatusPending},
		{"single approved", []WeeklyLog{week(ApprovalStatusApproved)}, ApprovalStatusApproved},
		{"single pending", []WeeklyLog{week(ApprovalStatusPending)}, ApprovalStatusPending},
		{"single rejected", []WeeklyLog{week(ApprovalStatusRejected)}, ApprovalStatusRejected},
		{
			"all approved",
			[]WeeklyLog{week(ApprovalStatusApproved), week(ApprovalStatusApproved), week(ApprovalStatusApproved)},
			ApprovalStatusApproved,
		},
		{
			"one pending among approved",
			[]WeeklyLog{week(ApprovalStatusApproved), week(ApprovalStatusPending), week(ApprovalStatusApproved)},
			ApprovalStatusPending,
		},
		{
			"rejection wins over approved",
			[]WeeklyLog{week(ApprovalStatusApproved), week(ApprovalStatusRejected)},
			ApprovalStatusRejected,
		},
		{
			"rejection wins over pending",
			[]WeeklyLog{week(ApprovalStatusPending), week(ApprovalStatusRejected), week(ApprovalStatusPending)},
			ApprovalStatusRejected,
		},
		{
			"rejection first in order",
			[]WeeklyLog{week(ApprovalStatusRejected), week(ApprovalStatusApproved)},
			ApprovalStatusRejected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DeriveLogbookStatus(tt.weeks); got != tt.want {
				t.Errorf("DeriveLogbookStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveLogbookStatus_OrderIndependent(t *testing.T) {
	t.Parallel()

	// Every permutation of {approved, approved, pending} must stay pending.
	statuses := []ApprovalStatus{ApprovalStatusApproved, ApprovalStatusApproved, ApprovalStatusPending}
	perms := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, p := range perms {
		weeks := []WeeklyLog{week(statuses[p[0]]), week(statuses[p[1]]), week(statuses[p[2]])}
		if got := DeriveLogbookStatus(weeks); got != ApprovalStatusPending {
			t.Errorf("permutation %v: got %v, want pending", p, got)
		}
	}
}

func TestLogbookEntry_SignedMessage(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 6, 3, 9, 30, 15, 987654321, time.UTC)
	entry := LogbookEntry{
		Description: "Configured the staging database",
		Feedback:    "Good work",
		CreatedAt:   createdAt,
	}

	want := "Configured the staging databaseGood work2025-06-03T09:30:15Z"
	if got := string(entry.SignedMessage()); got != want {
		t.Errorf("SignedMessage() = %q, want %q", got, want)
	}
}

func TestLogbookEntry_SignedMessage_BindsBothFields(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 6, 3, 9, 30, 15, 0, time.UTC)
	base := LogbookEntry{Description: "work", Feedback: "ok", CreatedAt: createdAt}

	changedDescription := base
	changedDescription.Description = "work!"
	changedFeedback := base
	changedFeedback.Feedback = "ok!"

	if string(base.SignedMessage()) == string(changedDescription.SignedMessage()) {
		t.Error("message must change when description changes")
	}
	if string(base.SignedMessage()) == string(changedFeedback.SignedMessage()) {
		t.Error("message must change when feedback changes")
	}
}
