package policies

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

// PolicyService is the surface the handler needs.
type PolicyService interface {
	Issue(ctx context.Context, number, clientNationalID, productID string) (*domain.Policy, error)
	Get(ctx context.Context, number string) (*domain.Policy, error)
	List(ctx context.Context) ([]*domain.Policy, error)
	ListByClient(ctx context.Context, clientNationalID string) ([]*domain.Policy, error)
	Cancel(ctx context.Context, number, reason string) (*domain.Policy, error)
	Premium(ctx context.Context, number string) (float64, error)
	Indemnization(ctx context.Context, number, claimID string) (float64, error)
}

// Handler exposes policy endpoints.
type Handler struct {
	service PolicyService
	logger  *slog.Logger
}

func NewHandler(service PolicyService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the policy routes available to any authenticated user.
func (h *Handler) Register(r chi.Router) {
	r.Post("/policies", h.handleIssue)
	r.Get("/policies", h.handleList)
	r.Get("/policies/{number}", h.handleGet)
	r.Post("/policies/{number}/premium", h.handlePremium)
	r.Get("/policies/{number}/indemnization/{claimID}", h.handleIndemnization)
	r.Get("/clients/{nationalID}/policies", h.handleListByClient)
}

// RegisterAdmin mounts cancellation, which is restricted to the admin role.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/policies/{number}/cancel", h.handleCancel)
}

type issueRequest struct {
	Number           string `json:"number"`
	ClientNationalID string `json:"client_national_id"`
	ProductID        string `json:"product_id"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// policyResponse extends the stored record with the query-time effective
// status.
type policyResponse struct {
	domain.PolicyRecord
	EffectiveStatus string `json:"effective_status"`
}

func (h *Handler) toResponse(r *http.Request, p *domain.Policy) policyResponse {
	return policyResponse{
		PolicyRecord:    p.ToRecord(),
		EffectiveStatus: string(p.EffectiveStatus(requestcontext.Now(r.Context()))),
	}
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid policy body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Number == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "policy number is required"))
		return
	}

	policy, err := h.service.Issue(ctx, req.Number, req.ClientNationalID, req.ProductID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, h.toResponse(r, policy))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	policy, err := h.service.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponse(r, policy))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	policiesList, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponses(r, policiesList))
}

func (h *Handler) handleListByClient(w http.ResponseWriter, r *http.Request) {
	policiesList, err := h.service.ListByClient(r.Context(), chi.URLParam(r, "nationalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponses(r, policiesList))
}

func (h *Handler) toResponses(r *http.Request, policiesList []*domain.Policy) []policyResponse {
	out := make([]policyResponse, 0, len(policiesList))
	for _, p := range policiesList {
		out = append(out, h.toResponse(r, p))
	}
	return out
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	policy, err := h.service.Cancel(ctx, chi.URLParam(r, "number"), req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponse(r, policy))
}

type premiumResponse struct {
	PolicyNumber string  `json:"policy_number"`
	Premium      float64 `json:"premium"`
}

func (h *Handler) handlePremium(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	premium, err := h.service.Premium(r.Context(), number)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, premiumResponse{PolicyNumber: number, Premium: premium})
}

type indemnizationResponse struct {
	PolicyNumber string  `json:"policy_number"`
	ClaimID      string  `json:"claim_id"`
	Amount       float64 `json:"amount"`
}

func (h *Handler) handleIndemnization(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	claimID := chi.URLParam(r, "claimID")
	amount, err := h.service.Indemnization(r.Context(), number, claimID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, indemnizationResponse{
		PolicyNumber: number,
		ClaimID:      claimID,
		Amount:       amount,
	})
}
