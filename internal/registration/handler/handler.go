package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regform/internal/platform/middleware"
	"regform/internal/registration/models"
	dErrors "regform/pkg/domain-errors"
	"regform/pkg/platform/httputil"
)

// MsgInvalidBody is returned when the body is not a JSON object of strings.
const MsgInvalidBody = "Invalid request body"

const maxBodyBytes = 1 << 20

// Service defines the registration operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, sub models.Submission) (models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
	Count(ctx context.Context) (int, error)
}

// Handler serves the registration and query endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a registration Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Get("/users", h.handleListUsers)
	r.Get("/users/count", h.handleCountUsers)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var sub models.Submission
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&sub)
	// An empty body is an empty submission, reported as missing fields.
	if err != nil && !errors.Is(err, io.EOF) {
		h.logger.WarnContext(ctx, "invalid register request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, MsgInvalidBody))
		return
	}

	rec, err := h.service.Register(ctx, sub)
	if err != nil {
		h.logFailure(ctx, "registration rejected", "registration failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.RegisterResponse{
		Message: models.RegisteredMessage,
		UserID:  rec.ID,
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.logFailure(r.Context(), "list rejected", "failed to list users", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleCountUsers(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Count(r.Context())
	if err != nil {
		h.logFailure(r.Context(), "count rejected", "failed to count users", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.CountResponse{Count: n})
}

// logFailure logs client errors at warn and server errors, with their cause,
// at error. The cause never reaches the response.
func (h *Handler) logFailure(ctx context.Context, clientMsg, serverMsg string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if httputil.StatusFor(err) < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, clientMsg,
			"request_id", requestID,
			"error", err.Error(),
		)
		return
	}
	h.logger.ErrorContext(ctx, serverMsg,
		"request_id", requestID,
		"error", err.Error(),
	)
}
