package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
)

// custodyService defines the minimal interface needed by CustodyHandler.
type custodyService interface {
	IssueKeypair(ctx context.Context, studentID uuid.UUID) (string, error)
}

// CustodyHandler serves key issuance. Issuance normally happens during
// student role activation; this endpoint is the administrative path for
// accounts that predate custody.
type CustodyHandler struct {
	svc custodyService
	log *slog.Logger
}

// NewCustodyHandler creates a CustodyHandler.
func NewCustodyHandler(svc custodyService, logger *slog.Logger) *CustodyHandler {
	return &CustodyHandler{svc: svc, log: logger.With("handler", "custody")}
}

type keypairResponse struct {
	PublicKey string `json:"publicKey"`
}

// IssueKeypair handles POST /students/{studentID}/keypair. Admin-only;
// a student already holding a keypair gets 409, never a new key.
func (h *CustodyHandler) IssueKeypair(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != domain.RoleSuperAdmin.String() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	studentID, ok := pathID(w, r, "studentID")
	if !ok {
		return
	}

	publicKey, err := h.svc.IssueKeypair(r.Context(), studentID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, keypairResponse{PublicKey: publicKey})
}
