package frontend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/reliablemail/pkg/logger"
	"github.com/dmitrymomot/reliablemail/pkg/queue"
	"github.com/dmitrymomot/reliablemail/pkg/validator"
)

// Enqueuer accepts jobs into the pending list.
type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job, opts ...queue.CallOption) error
}

type submitHandler struct {
	enqueuer Enqueuer
	cfg      Config
	log      *slog.Logger
}

func (h *submitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	}

	fields, err := bindFields(r)
	if err != nil {
		h.bindError(w, err)
		return
	}

	msg := messageFromFields(fields, h.cfg)
	if err := validateSubmission(msg); err != nil {
		errs := validator.ExtractValidationErrors(err)
		writeError(w, http.StatusBadRequest, &ErrorDetail{
			Code:    CodeValidationFailed,
			Message: "missing required fields",
			Details: errs.Map(),
		})
		return
	}

	if err := h.enqueuer.Enqueue(ctx, msg.Job()); err != nil {
		if errors.Is(err, queue.ErrMalformedPayload) {
			writeError(w, http.StatusBadRequest, &ErrorDetail{
				Code:    CodeInvalidRequest,
				Message: "fields must be valid UTF-8",
			})
			return
		}
		if queue.IsUnavailable(err) {
			h.log.WarnContext(ctx, "enqueue failed: store unavailable", logger.Error(err))
			writeError(w, http.StatusServiceUnavailable, &ErrorDetail{
				Code:    CodeStoreUnavailable,
				Message: "queue is temporarily unavailable",
			})
			return
		}
		h.log.ErrorContext(ctx, "enqueue failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, &ErrorDetail{
			Code:    CodeInternalError,
			Message: http.StatusText(http.StatusInternalServerError),
		})
		return
	}

	writeJSON(w, http.StatusAccepted, JSONResponse{Data: map[string]string{"status": "queued"}})
}

func (h *submitHandler) bindError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRequestTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, &ErrorDetail{Code: CodeRequestTooLarge, Message: err.Error()})
	case errors.Is(err, ErrMissingContentType), errors.Is(err, ErrUnsupportedMediaType):
		writeError(w, http.StatusUnsupportedMediaType, &ErrorDetail{Code: CodeUnsupportedMedia, Message: err.Error()})
	default:
		writeError(w, http.StatusBadRequest, &ErrorDetail{Code: CodeInvalidRequest, Message: err.Error()})
	}
}
