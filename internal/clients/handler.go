package clients

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

// ClientService is the surface the handler needs; narrowed for stubbing in
// tests.
type ClientService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Client, error)
	Get(ctx context.Context, nationalID string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
}

// Handler exposes client endpoints.
type Handler struct {
	service ClientService
	logger  *slog.Logger
}

func NewHandler(service ClientService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the client routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/clients", h.handleRegister)
	r.Get("/clients", h.handleList)
	r.Get("/clients/{nationalID}", h.handleGet)
}

type registerRequest struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	BirthDate  string `json:"birth_date"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

type clientResponse struct {
	NationalID string `json:"national_id"`
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		NationalID: c.NationalID,
		Name:       c.Name,
		BirthDate:  c.BirthDate,
		Address:    c.Address,
		Phone:      c.Phone,
		Email:      c.Email,
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid client registration body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	client, err := h.service.Register(ctx, RegisterInput{
		Name:       req.Name,
		NationalID: req.NationalID,
		BirthDate:  req.BirthDate,
		Address:    req.Address,
		Phone:      req.Phone,
		Email:      req.Email,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toClientResponse(client))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.Get(r.Context(), chi.URLParam(r, "nationalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	clientsList, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]clientResponse, 0, len(clientsList))
	for _, c := range clientsList {
		out = append(out, toClientResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
