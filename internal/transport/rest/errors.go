package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/internlog/internlog-backend/internal/domain"
	"github.com/internlog/internlog-backend/pkg/ctxutil"
)

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleError maps domain errors to HTTP status codes. State-machine
// conflicts (sealed entries, unsealed children, duplicate weeks) are 409;
// bad input and out-of-range dates or scores are 400.
func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &vErr):
		fields := make([]map[string]string, 0, len(vErr.Errors))
		for _, fe := range vErr.Errors {
			fields = append(fields, map[string]string{"field": fe.Field, "message": fe.Message})
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation error",
			"fields": fields,
		})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrWeekExists),
		errors.Is(err, domain.ErrKeypairExists),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrImmutable),
		errors.Is(err, domain.ErrIncompleteEntries),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrInternshipNotCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDecryption):
		log.ErrorContext(r.Context(), "custodial key decryption failed",
			slog.String("path", r.URL.Path),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireActor extracts the authenticated actor or writes 401.
func requireActor(w http.ResponseWriter, r *http.Request) (ctxutil.Actor, bool) {
	actor, ok := ctxutil.ActorFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return ctxutil.Actor{}, false
	}
	return actor, true
}

// pathID parses the named path segment as a UUID or writes 400.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
