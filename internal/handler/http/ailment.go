package http

import (
	"log/slog"
	"net/http"

	"github.com/remedyhub/review-service/internal/repository"
	"github.com/remedyhub/review-service/pkg/httputil"
)

// AilmentHandler serves the ailment directory.
type AilmentHandler struct {
	repo   repository.AilmentRepository
	logger *slog.Logger
}

// NewAilmentHandler creates a new ailment HTTP handler.
func NewAilmentHandler(repo repository.AilmentRepository, logger *slog.Logger) *AilmentHandler {
	return &AilmentHandler{
		repo:   repo,
		logger: logger,
	}
}

// List handles GET /api/v1/ailments
func (h *AilmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ailments, err := h.repo.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ailments})
}
