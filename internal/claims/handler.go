package claims

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

// ClaimService is the surface the handler needs.
type ClaimService interface {
	File(ctx context.Context, input FileInput) (*domain.Claim, error)
	Approve(ctx context.Context, id string) (*domain.Claim, error)
	Reject(ctx context.Context, id string) (*domain.Claim, error)
	Get(ctx context.Context, id string) (*domain.Claim, error)
	List(ctx context.Context) ([]*domain.Claim, error)
	ListByPolicy(ctx context.Context, policyNumber string) ([]*domain.Claim, error)
}

// Handler exposes claim endpoints.
type Handler struct {
	service ClaimService
	logger  *slog.Logger
}

func NewHandler(service ClaimService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the claim routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/claims", h.handleFile)
	r.Get("/claims", h.handleList)
	r.Get("/claims/{id}", h.handleGet)
	r.Post("/claims/{id}/approve", h.handleApprove)
	r.Post("/claims/{id}/reject", h.handleReject)
	r.Get("/policies/{number}/claims", h.handleListByPolicy)
}

type fileRequest struct {
	ID           string  `json:"id"`
	PolicyNumber string  `json:"policy_number"`
	OccurredOn   string  `json:"occurred_on"`
	Description  string  `json:"description"`
	LossAmount   float64 `json:"loss_amount"`
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req fileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid claim body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	claim, err := h.service.File(ctx, FileInput{
		ID:           req.ID,
		PolicyNumber: req.PolicyNumber,
		OccurredOn:   req.OccurredOn,
		Description:  req.Description,
		LossAmount:   req.LossAmount,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, claim.ToRecord())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	claim, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim.ToRecord())
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	claim, err := h.service.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim.ToRecord())
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	claim, err := h.service.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim.ToRecord())
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	claimsList, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecords(claimsList))
}

func (h *Handler) handleListByPolicy(w http.ResponseWriter, r *http.Request) {
	claimsList, err := h.service.ListByPolicy(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecords(claimsList))
}

func toRecords(claimsList []*domain.Claim) []domain.ClaimRecord {
	out := make([]domain.ClaimRecord, 0, len(claimsList))
	for _, c := range claimsList {
		out = append(out, c.ToRecord())
	}
	return out
}
