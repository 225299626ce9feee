package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/internal/service/logbook"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

// logbookService defines the minimal interface needed by LogbookHandler.
type logbookService interface {
	GetOrCreate(ctx context.Context, actor ctxutil.Actor, internshipID uuid.UUID) (*domain.Logbook, error)
	GetLogbookTree(ctx context.Context, actor ctxutil.Actor, logbookID uuid.UUID) (*domain.LogbookTree, error)
	CreateWeek(ctx context.Context, actor ctxutil.Actor, logbookID uuid.UUID) (*domain.WeeklyLog, error)
	GetWeek(ctx context.Context, actor ctxutil.Actor, weeklyLogID uuid.UUID) (*domain.WeekWithEntries, error)
	ApproveWeek(ctx context.Context, actor ctxutil.Actor, weeklyLogID uuid.UUID, comment string) error
	RejectWeek(ctx context.Context, actor ctxutil.Actor, weeklyLogID uuid.UUID, comment string) error
	CreateEntry(ctx context.Context, actor ctxutil.Actor, weeklyLogID uuid.UUID, description string) (*domain.LogbookEntry, error)
	GetEntry(ctx context.Context, actor ctxutil.Actor, entryID uuid.UUID) (*domain.LogbookEntry, error)
	UpdateEntry(ctx context.Context, actor ctxutil.Actor, entryID uuid.UUID, input logbook.UpdateEntryInput) (*domain.LogbookEntry, error)
	ApproveEntry(ctx context.Context, actor ctxutil.Actor, entryID uuid.UUID) error
	DeleteEntry(ctx context.Context, actor ctxutil.Actor, entryID uuid.UUID) error
}

// LogbookHandler serves logbook, weekly log, and entry REST endpoints.
type LogbookHandler struct {
	svc logbookService
	log *slog.Logger
}

// NewLogbookHandler creates a LogbookHandler.
func NewLogbookHandler(svc logbookService, logger *slog.Logger) *LogbookHandler {
	return &LogbookHandler{svc: svc, log: logger.With("handler", "logbook")}
}

type logbookResponse struct {
	ID           string    `json:"id"`
	InternshipID string    `json:"internshipId"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type weeklyLogResponse struct {
	ID        string    `json:"id"`
	LogbookID string    `json:"logbookId"`
	WeekNo    int       `json:"weekNo"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type entryResponse struct {
	ID                string    `json:"id"`
	WeeklyLogID       string    `json:"weeklyLogId"`
	Description       string    `json:"description"`
	Feedback          string    `json:"feedback,omitempty"`
	IsImmutable       bool      `json:"isImmutable"`
	Signature         string    `json:"signature"`
	OriginalSignature string    `json:"originalSignature"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type weekWithEntriesResponse struct {
	weeklyLogResponse
	Entries []entryResponse `json:"entries"`
}

type logbookTreeResponse struct {
	logbookResponse
	Weeks []weekWithEntriesResponse `json:"weeks"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

type createEntryRequest struct {
	Description string `json:"description"`
}

type updateEntryRequest struct {
	Description *string `json:"description"`
	Feedback    *string `json:"feedback"`
}

// GetOrCreate handles POST /internships/{internshipID}/logbook.
// Idempotent: returns the existing logbook when one is already open.
func (h *LogbookHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	internshipID, ok := pathID(w, r, "internshipID")
	if !ok {
		return
	}

	lb, err := h.svc.GetOrCreate(r.Context(), actor, internshipID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLogbookResponse(lb))
}

// Tree handles GET /logbooks/{logbookID}/tree.
func (h *LogbookHandler) Tree(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	logbookID, ok := pathID(w, r, "logbookID")
	if !ok {
		return
	}

	tree, err := h.svc.GetLogbookTree(r.Context(), actor, logbookID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := logbookTreeResponse{
		logbookResponse: toLogbookResponse(&tree.Logbook),
		Weeks:           make([]weekWithEntriesResponse, 0, len(tree.Weeks)),
	}
	for _, wk := range tree.Weeks {
		resp.Weeks = append(resp.Weeks, toWeekWithEntriesResponse(&wk))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateWeek handles POST /logbooks/{logbookID}/weeks. The week number is
// derived from the server clock, never client-chosen.
func (h *LogbookHandler) CreateWeek(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	logbookID, ok := pathID(w, r, "logbookID")
	if !ok {
		return
	}

	week, err := h.svc.CreateWeek(r.Context(), actor, logbookID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWeeklyLogResponse(week))
}

// GetWeek handles GET /weeks/{weekID}.
func (h *LogbookHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	weekID, ok := pathID(w, r, "weekID")
	if !ok {
		return
	}

	week, err := h.svc.GetWeek(r.Context(), actor, weekID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toWeekWithEntriesResponse(week))
}

// ApproveWeek handles POST /weeks/{weekID}/approve.
func (h *LogbookHandler) ApproveWeek(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	weekID, ok := pathID(w, r, "weekID")
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.ApproveWeek(r.Context(), actor, weekID, req.Comment); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// RejectWeek handles POST /weeks/{weekID}/reject.
func (h *LogbookHandler) RejectWeek(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	weekID, ok := pathID(w, r, "weekID")
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.RejectWeek(r.Context(), actor, weekID, req.Comment); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// CreateEntry handles POST /weeks/{weekID}/entries.
func (h *LogbookHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	weekID, ok := pathID(w, r, "weekID")
	if !ok {
		return
	}

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.CreateEntry(r.Context(), actor, weekID, req.Description)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// GetEntry handles GET /entries/{entryID}.
func (h *LogbookHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}

	entry, err := h.svc.GetEntry(r.Context(), actor, entryID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// UpdateEntry handles PATCH /entries/{entryID}. Students patch the
// description, supervisors the feedback; the entry is re-signed on every
// successful update.
func (h *LogbookHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}

	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.UpdateEntry(r.Context(), actor, entryID, logbook.UpdateEntryInput{
		Description: req.Description,
		Feedback:    req.Feedback,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// ApproveEntry handles POST /entries/{entryID}/approve. A missing or
// unverifiable signature is a client-visible 400, not a conflict.
func (h *LogbookHandler) ApproveEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}

	if err := h.svc.ApproveEntry(r.Context(), actor, entryID); err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// DeleteEntry handles DELETE /entries/{entryID}.
func (h *LogbookHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}

	if err := h.svc.DeleteEntry(r.Context(), actor, entryID); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toLogbookResponse(lb *domain.Logbook) logbookResponse {
	return logbookResponse{
		ID:           lb.ID.String(),
		InternshipID: lb.InternshipID.String(),
		Status:       lb.Status.String(),
		CreatedAt:    lb.CreatedAt,
		UpdatedAt:    lb.UpdatedAt,
	}
}

func toWeeklyLogResponse(wl *domain.WeeklyLog) weeklyLogResponse {
	return weeklyLogResponse{
		ID:        wl.ID.String(),
		LogbookID: wl.LogbookID.String(),
		WeekNo:    wl.WeekNo,
		Status:    wl.Status.String(),
		Comment:   wl.Comment,
		CreatedAt: wl.CreatedAt,
		UpdatedAt: wl.UpdatedAt,
	}
}

func toEntryResponse(e *domain.LogbookEntry) entryResponse {
	return entryResponse{
		ID:                e.ID.String(),
		WeeklyLogID:       e.WeeklyLogID.String(),
		Description:       e.Description,
		Feedback:          e.Feedback,
		IsImmutable:       e.IsImmutable,
		Signature:         e.Signature,
		OriginalSignature: e.OriginalSignature,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func toWeekWithEntriesResponse(wk *domain.WeekWithEntries) weekWithEntriesResponse {
	resp := weekWithEntriesResponse{
		weeklyLogResponse: toWeeklyLogResponse(&wk.WeeklyLog),
		Entries:           make([]entryResponse, 0, len(wk.Entries)),
	}
	for i := range wk.Entries {
		resp.Entries = append(resp.Entries, toEntryResponse(&wk.Entries[i]))
	}
	return resp
}
