package reports

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brokerage/pkg/platform/httputil"
)

// ReportService is the surface the handler needs.
type ReportService interface {
	Generate(ctx context.Context, name string) (any, error)
	Export(ctx context.Context, name string) (string, error)
}

// Handler exposes report endpoints.
type Handler struct {
	service ReportService
	logger  *slog.Logger
}

func NewHandler(service ReportService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the report routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reports/{name}", h.handleGenerate)
	r.Post("/reports/{name}/export", h.handleExport)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Generate(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

type exportResponse struct {
	Report string `json:"report"`
	Path   string `json:"path"`
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := h.service.Export(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, exportResponse{Report: name, Path: path})
}
