package products

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brokerage/internal/domain"
	dErrors "brokerage/pkg/domain-errors"
	"brokerage/pkg/platform/httputil"
	"brokerage/pkg/requestcontext"
)

// ProductService is the surface the handler needs.
type ProductService interface {
	Create(ctx context.Context, input CreateInput) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Quote(ctx context.Context, id string) (float64, error)
}

// Handler exposes product endpoints.
type Handler struct {
	service ProductService
	logger  *slog.Logger
}

func NewHandler(service ProductService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the product routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/products", h.handleCreate)
	r.Get("/products", h.handleList)
	r.Get("/products/{id}", h.handleGet)
	r.Get("/products/{id}/premium", h.handleQuote)
}

// createRequest mirrors CreateInput; the record shape doubles as the API
// response so the variant fields keep one name everywhere.
type createRequest struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	CoverageValue float64 `json:"coverage_value"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`

	Make        string `json:"make,omitempty"`
	Model       string `json:"model,omitempty"`
	Year        int    `json:"year,omitempty"`
	Plate       string `json:"plate,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Usage       string `json:"usage,omitempty"`
	DriverCount int    `json:"driver_count,omitempty"`

	PropertyAddress string  `json:"property_address,omitempty"`
	Area            float64 `json:"area,omitempty"`
	AssessedValue   float64 `json:"assessed_value,omitempty"`
	Construction    string  `json:"construction,omitempty"`

	Beneficiaries []string `json:"beneficiaries,omitempty"`
	CoverageTypes []string `json:"coverage_types,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid product body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	product, err := h.service.Create(ctx, CreateInput{
		ID:              req.ID,
		Kind:            req.Kind,
		CoverageValue:   req.CoverageValue,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Make:            req.Make,
		Model:           req.Model,
		Year:            req.Year,
		Plate:           req.Plate,
		Condition:       req.Condition,
		Usage:           req.Usage,
		DriverCount:     req.DriverCount,
		PropertyAddress: req.PropertyAddress,
		Area:            req.Area,
		AssessedValue:   req.AssessedValue,
		Construction:    req.Construction,
		Beneficiaries:   req.Beneficiaries,
		CoverageTypes:   req.CoverageTypes,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, product.ToRecord())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product.ToRecord())
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	productsList, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]domain.ProductRecord, 0, len(productsList))
	for _, p := range productsList {
		out = append(out, p.ToRecord())
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type quoteResponse struct {
	ProductID string  `json:"product_id"`
	Premium   float64 `json:"premium"`
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	premium, err := h.service.Quote(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, quoteResponse{ProductID: id, Premium: premium})
}
