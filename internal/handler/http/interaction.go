package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/remedyhub/review-service/internal/service"
	"github.com/remedyhub/review-service/pkg/httputil"
	"github.com/remedyhub/review-service/pkg/validator"
)

// InteractionHandler handles HTTP requests for likes and comments.
type InteractionHandler struct {
	service *service.InteractionService
	logger  *slog.Logger
}

// NewInteractionHandler creates a new interaction HTTP handler.
func NewInteractionHandler(svc *service.InteractionService, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddCommentRequest is the JSON request body for commenting on a review.
type AddCommentRequest struct {
	Content         string  `json:"content" validate:"required,min=1,max=2000"`
	ParentCommentID *string `json:"parent_comment_id" validate:"omitempty,uuid"`
}

// UpdateCommentRequest is the JSON request body for editing a comment.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// --- Handlers ---

// ToggleLike handles POST /api/v1/reviews/{reviewId}/like
func (h *InteractionHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-User-ID header is required"},
		})
		return
	}

	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	result, err := h.service.ToggleLike(r.Context(), reviewID.String(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// GetInteractions handles GET /api/v1/reviews/{reviewId}/interactions
func (h *InteractionHandler) GetInteractions(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	// The viewer id is optional here: anonymous visitors still see counts.
	userID := r.Header.Get("X-User-ID")

	counts, err := h.service.GetCounts(r.Context(), reviewID.String(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: counts})
}

// AddComment handles POST /api/v1/reviews/{reviewId}/comments
func (h *InteractionHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-User-ID header is required"},
		})
		return
	}

	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	comment, err := h.service.AddComment(r.Context(), reviewID.String(), userID, req.Content, req.ParentCommentID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: comment})
}

// ListComments handles GET /api/v1/reviews/{reviewId}/comments
func (h *InteractionHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	comments, err := h.service.ListComments(r.Context(), reviewID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: comments})
}

// UpdateComment handles PATCH /api/v1/comments/{commentId}
func (h *InteractionHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-User-ID header is required"},
		})
		return
	}

	commentID, ok := httputil.ParseUUID(w, chi.URLParam(r, "commentId"))
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), commentID.String(), req.Content, userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: comment})
}

// DeleteComment handles DELETE /api/v1/comments/{commentId}
func (h *InteractionHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-User-ID header is required"},
		})
		return
	}

	commentID, ok := httputil.ParseUUID(w, chi.URLParam(r, "commentId"))
	if !ok {
		return
	}

	if err := h.service.DeleteComment(r.Context(), commentID.String(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}
