package logbook

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/internal/notify"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

func TestCreateWeek_WeekNumberFromClock(t *testing.T) {
	t.Parallel()

	// Internship starts 2025-06-01.
	tests := []struct {
		name       string
		today      time.Time
		wantWeekNo int
	}{
		{"third day of first week", time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), 1},
		{"second week", time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC), 2},
		{"start day itself", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 1},
		{"last day of first week", time.Date(2025, 6, 7, 23, 59, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.weekList = nil // no pre-seeded week
			f.clock = tt.today

			week, err := f.svc.CreateWeek(context.Background(), f.studentActor(), f.logbook.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWeekNo, week.WeekNo)
			assert.Equal(t, domain.ApprovalStatusPending, week.Status)
		})
	}
}

func TestCreateWeek_SameWeekTwice(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.weekList = nil

	_, err := f.svc.CreateWeek(context.Background(), f.studentActor(), f.logbook.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateWeek(context.Background(), f.studentActor(), f.logbook.ID)
	assert.ErrorIs(t, err, domain.ErrWeekExists)
	assert.Len(t, f.weekList, 1, "exactly one row for the calendar week")
}

func TestCreateWeek_OutsideInternshipDates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		today time.Time
	}{
		{"before start", time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)},
		{"after end", time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.clock = tt.today

			_, err := f.svc.CreateWeek(context.Background(), f.studentActor(), f.logbook.ID)
			assert.ErrorIs(t, err, domain.ErrOutOfRange)
		})
	}
}

func TestCreateWeek_SupervisorForbidden(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.CreateWeek(context.Background(), f.supervisorActor(), f.logbook.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetWeek_WithEntries(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addEntry("monday", "", false)

	week, err := f.svc.GetWeek(context.Background(), f.studentActor(), f.week.ID)
	require.NoError(t, err)
	assert.Equal(t, f.week.ID, week.WeeklyLog.ID)
	require.Len(t, week.Entries, 1)
	assert.Equal(t, "monday", week.Entries[0].Description)
}

// ---------------------------------------------------------------------------
// ApproveWeek
// ---------------------------------------------------------------------------

func TestApproveWeek_Success(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addEntry("day one", "fine", true)
	f.addEntry("day two", "fine", true)

	err := f.svc.ApproveWeek(context.Background(), f.supervisorActor(), f.week.ID, "solid week")
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalStatusApproved, f.week.Status)
	assert.Equal(t, "solid week", f.week.Comment)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.EventWeekApproved, sent[0].Event)
	assert.Equal(t, f.student.ID, sent[0].RecipientID)
}

func TestApproveWeek_UnsealedEntryBlocks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addEntry("day one", "", true)
	f.addEntry("day two", "", false)

	err := f.svc.ApproveWeek(context.Background(), f.supervisorActor(), f.week.ID, "")
	assert.ErrorIs(t, err, domain.ErrIncompleteEntries)
	assert.Equal(t, domain.ApprovalStatusPending, f.week.Status)
}

func TestApproveWeek_DeterministicOnceAllSealed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	unsealed := f.addEntry("day one", "", false)

	err := f.svc.ApproveWeek(context.Background(), f.supervisorActor(), f.week.ID, "")
	require.ErrorIs(t, err, domain.ErrIncompleteEntries)

	unsealed.IsImmutable = true
	err = f.svc.ApproveWeek(context.Background(), f.supervisorActor(), f.week.ID, "")
	assert.NoError(t, err)
}

func TestApproveWeek_EmptyWeek(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.svc.ApproveWeek(context.Background(), f.supervisorActor(), f.week.ID, "")
	assert.NoError(t, err, "a week without entries has nothing unsealed")
}

func TestApproveWeek_StudentForbidden(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.svc.ApproveWeek(context.Background(), f.studentActor(), f.week.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApproveWeek_ForeignSupervisorForbidden(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	other := &domain.Supervisor{ID: uuid.New(), UserID: uuid.New()}
	f.svc.supervisors = &supervisorRepoMock{
		GetByUserIDFunc: func(ctx context.Context, userID uuid.UUID) (*domain.Supervisor, error) {
			return other, nil
		},
	}

	actor := ctxutil.Actor{UserID: other.UserID, Role: domain.RoleSupervisor.String()}
	err := f.svc.ApproveWeek(context.Background(), actor, f.week.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApproveWeek_AlreadyDecided(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.ApprovalStatus{domain.ApprovalStatusApproved, domain.ApprovalStatusRejected} {
		t.Run(status.String(), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.week.Status = status

			err := f.svc.ApproveWeek(context.Background(), f.supervisorActor(), f.week.ID, "")
			assert.ErrorIs(t, err, domain.ErrImmutable)
		})
	}
}

// Late approval of finished work stays valid after the internship ends.
func TestApproveWeek_AfterEndDateAllowed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addEntry("day one", "", true)
	f.clock = time.Date(2025, 9, 10, 10, 0, 0, 0, time.UTC)

	err := f.svc.ApproveWeek(context.Background(), f.supervisorActor(), f.week.ID, "late but earned")
	assert.NoError(t, err)
}

// ---------------------------------------------------------------------------
// RejectWeek
// ---------------------------------------------------------------------------

func TestRejectWeek_Success(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addEntry("day one", "", false) // unsealed entries do not block rejection

	err := f.svc.RejectWeek(context.Background(), f.supervisorActor(), f.week.ID, "needs detail")
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalStatusRejected, f.week.Status)
	assert.Equal(t, "needs detail", f.week.Comment)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.EventWeekRejected, sent[0].Event)
}

func TestRejectWeek_AfterEndDateBlocked(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.clock = time.Date(2025, 9, 10, 10, 0, 0, 0, time.UTC)

	err := f.svc.RejectWeek(context.Background(), f.supervisorActor(), f.week.ID, "")
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestRejectWeek_StudentForbidden(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.svc.RejectWeek(context.Background(), f.studentActor(), f.week.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
