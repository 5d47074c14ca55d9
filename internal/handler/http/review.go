package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/remedyhub/review-service/internal/domain"
	"github.com/remedyhub/review-service/internal/service"
	"github.com/remedyhub/review-service/pkg/httputil"
	"github.com/remedyhub/review-service/pkg/pagination"
	"github.com/remedyhub/review-service/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	submissions *service.SubmissionService
	lists       *service.ListService
	reviews     *service.ReviewService
	stats       *service.StatsService
	logger      *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(
	submissions *service.SubmissionService,
	lists *service.ListService,
	reviews *service.ReviewService,
	stats *service.StatsService,
	logger *slog.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		submissions: submissions,
		lists:       lists,
		reviews:     reviews,
		stats:       stats,
		logger:      logger,
	}
}

// --- Request DTOs ---

// SubmitReviewRequest is the JSON request body for submitting a review. The
// primary remedy comes from the URL; secondary remedies describe a
// combination treatment and each get their own review row.
type SubmitReviewRequest struct {
	SecondaryRemedyIDs []string `json:"secondary_remedy_ids" validate:"omitempty,dive,uuid"`

	AilmentID *string `json:"ailment_id" validate:"required,uuid"`

	StarCount              int     `json:"star_count" validate:"required,gte=1,lte=5"`
	Potency                *string `json:"potency" validate:"omitempty,max=100"`
	Potency2               *string `json:"potency_2" validate:"omitempty,max=100"`
	Dosage                 *string `json:"dosage" validate:"required,min=1,max=200"`
	DurationUsed           *string `json:"duration_used" validate:"required,min=1,max=200"`
	Effectiveness          *int    `json:"effectiveness" validate:"required,gte=0,lte=5"`
	Notes                  *string `json:"notes" validate:"omitempty,max=5000"`
	ExperiencedSideEffects bool    `json:"experienced_side_effects"`

	PerRemedyPotency map[string]*string `json:"per_remedy_potency"`
	PerRemedyNotes   map[string]*string `json:"per_remedy_notes"`
}

// UpdateReviewRequest is the JSON request body for patching a review. Absent
// fields are left unchanged.
type UpdateReviewRequest struct {
	StarCount              *int    `json:"star_count" validate:"omitempty,gte=1,lte=5"`
	Potency                *string `json:"potency" validate:"omitempty,max=100"`
	Potency2               *string `json:"potency_2" validate:"omitempty,max=100"`
	Dosage                 *string `json:"dosage" validate:"omitempty,max=200"`
	DurationUsed           *string `json:"duration_used" validate:"omitempty,max=200"`
	Effectiveness          *int    `json:"effectiveness" validate:"omitempty,gte=0,lte=5"`
	Notes                  *string `json:"notes" validate:"omitempty,max=5000"`
	ExperiencedSideEffects *bool   `json:"experienced_side_effects"`
}

// --- Handlers ---

// Submit handles POST /api/v1/remedies/{remedyId}/reviews
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-User-ID header is required"},
		})
		return
	}

	remedyID, ok := httputil.ParseUUID(w, chi.URLParam(r, "remedyId"))
	if !ok {
		return
	}

	var req SubmitReviewRequest
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

	input := &service.SubmissionInput{
		PrimaryRemedyID:        remedyID.String(),
		SecondaryRemedyIDs:     req.SecondaryRemedyIDs,
		UserID:                 userID,
		AilmentID:              req.AilmentID,
		StarCount:              req.StarCount,
		Potency:                req.Potency,
		Potency2:               req.Potency2,
		Dosage:                 req.Dosage,
		DurationUsed:           req.DurationUsed,
		Effectiveness:          req.Effectiveness,
		Notes:                  req.Notes,
		ExperiencedSideEffects: req.ExperiencedSideEffects,
		PerRemedyPotency:       req.PerRemedyPotency,
		PerRemedyNotes:         req.PerRemedyNotes,
	}

	result, err := h.submissions.Submit(r.Context(), input)
	if err != nil {
		// A partial failure still committed rows; report what succeeded and
		// which remedies need resubmission.
		var partial *service.PartialFailure
		if errors.As(err, &partial) {
			httputil.WriteJSON(w, http.StatusMultiStatus, httputil.Response{Data: result})
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// List handles GET /api/v1/remedies/{remedyId}/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	remedyID, ok := httputil.ParseUUID(w, chi.URLParam(r, "remedyId"))
	if !ok {
		return
	}

	spec, sortKey := filterFromQuery(r)
	params := pagination.FromRequest(r)

	page, err := h.lists.ListReviews(r.Context(), remedyID.String(), spec, sortKey, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// Stats handles GET /api/v1/remedies/{remedyId}/reviews/stats
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	remedyID, ok := httputil.ParseUUID(w, chi.URLParam(r, "remedyId"))
	if !ok {
		return
	}

	stats, err := h.stats.ComputeStats(r.Context(), remedyID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

// Get handles GET /api/v1/reviews/{reviewId}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	review, err := h.reviews.GetReview(r.Context(), reviewID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Update handles PATCH /api/v1/reviews/{reviewId}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateReviewRequest
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

	input := &service.UpdateReviewInput{
		StarCount:              req.StarCount,
		Potency:                req.Potency,
		Potency2:               req.Potency2,
		Dosage:                 req.Dosage,
		DurationUsed:           req.DurationUsed,
		Effectiveness:          req.Effectiveness,
		Notes:                  req.Notes,
		ExperiencedSideEffects: req.ExperiencedSideEffects,
	}

	review, err := h.reviews.UpdateReview(r.Context(), reviewID.String(), input, userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Delete handles DELETE /api/v1/reviews/{reviewId}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.reviews.DeleteReview(r.Context(), reviewID.String(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// filterFromQuery extracts the filter spec and sort key from list query
// parameters. Unrecognized values degrade to "no constraint" rather than
// erroring; the sort key falls back to newest.
func filterFromQuery(r *http.Request) (domain.FilterSpec, domain.SortKey) {
	q := r.URL.Query()

	spec := domain.FilterSpec{
		Ratings:           parseIntList(q.Get("ratings")),
		Potencies:         parseStringList(q.Get("potencies")),
		Forms:             parseStringList(q.Get("forms")),
		DateRange:         domain.DateRange(q.Get("date_range")),
		ReviewerNameQuery: strings.TrimSpace(q.Get("reviewer")),
		AilmentReference:  strings.TrimSpace(q.Get("ailment")),
		FreeTextQuery:     strings.TrimSpace(q.Get("q")),
	}

	sortKey := domain.SortKey(q.Get("sort"))
	if !sortKey.Valid() {
		sortKey = domain.SortNewest
	}

	return spec, sortKey
}

func parseStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIntList(raw string) []int {
	if raw == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		if v, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, v)
		}
	}
	return out
}
