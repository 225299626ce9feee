package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
)

type custodyServiceMock struct {
	IssueKeypairFunc func(ctx context.Context, studentID uuid.UUID) (string, error)
}

func (m *custodyServiceMock) IssueKeypair(ctx context.Context, studentID uuid.UUID) (string, error) {
	return m.IssueKeypairFunc(ctx, studentID)
}

var _ custodyService = &custodyServiceMock{}

func TestCustodyHandler_IssueKeypair(t *testing.T) {
	t.Parallel()

	studentID := uuid.New()
	svc := &custodyServiceMock{
		IssueKeypairFunc: func(_ context.Context, id uuid.UUID) (string, error) {
			if id != studentID {
				t.Errorf("expected student %s, got %s", studentID, id)
			}
			return "deadbeef", nil
		},
	}
	h := NewCustodyHandler(svc, testLogger())

	req := authedRequest(http.MethodPost, "/students/"+studentID.String()+"/keypair", nil, domain.RoleSuperAdmin)
	req.SetPathValue("studentID", studentID.String())
	rec := httptest.NewRecorder()

	h.IssueKeypair(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp keypairResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.PublicKey != "deadbeef" {
		t.Errorf("expected public key in response, got %q", resp.PublicKey)
	}
}

func TestCustodyHandler_IssueKeypair_NonAdmin(t *testing.T) {
	t.Parallel()

	called := false
	svc := &custodyServiceMock{
		IssueKeypairFunc: func(_ context.Context, _ uuid.UUID) (string, error) {
			called = true
			return "", nil
		},
	}
	h := NewCustodyHandler(svc, testLogger())

	studentID := uuid.New()
	req := authedRequest(http.MethodPost, "/students/"+studentID.String()+"/keypair", nil, domain.RoleStudent)
	req.SetPathValue("studentID", studentID.String())
	rec := httptest.NewRecorder()

	h.IssueKeypair(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if called {
		t.Error("service must not be called for non-admin")
	}
}

func TestCustodyHandler_IssueKeypair_AlreadyIssued(t *testing.T) {
	t.Parallel()

	svc := &custodyServiceMock{
		IssueKeypairFunc: func(_ context.Context, _ uuid.UUID) (string, error) {
			return "", domain.ErrKeypairExists
		},
	}
	h := NewCustodyHandler(svc, testLogger())

	studentID := uuid.New()
	req := authedRequest(http.MethodPost, "/students/"+studentID.String()+"/keypair", nil, domain.RoleSuperAdmin)
	req.SetPathValue("studentID", studentID.String())
	rec := httptest.NewRecorder()

	h.IssueKeypair(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}
