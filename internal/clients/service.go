// Package clients registers and serves policyholder records.
package clients

import (
	"context"
	"fmt"
	"log/slog"

	"brokerage/internal/audit"
	"brokerage/internal/domain"
	"brokerage/internal/storage"
	"brokerage/pkg/cpf"
	dErrors "brokerage/pkg/domain-errors"
	"brokerage/pkg/requestcontext"
)

// Service validates and persists clients. Orchestration stays here; the
// domain core never touches storage.
type Service struct {
	store   storage.ClientStore
	auditor *audit.Publisher
	logger  *slog.Logger
}

func NewService(store storage.ClientStore, auditor *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, auditor: auditor, logger: logger}
}

// RegisterInput carries the fields a new client registration needs. BirthDate
// uses DD/MM/YYYY.
type RegisterInput struct {
	Name       string
	NationalID string
	BirthDate  string
	Address    string
	Phone      string
	Email      string
}

// Register validates the national ID, email, and birth date, then saves the
// client. The national ID is stored normalized (digits only).
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.Client, error) {
	client, err := domain.NewClient(
		input.NationalID,
		input.Name,
		input.BirthDate,
		input.Address,
		input.Phone,
		input.Email,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, client.ToRecord()); err != nil {
		if storage.IsDuplicate(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict,
				fmt.Sprintf("client %s is already registered", client.NationalID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save client")
	}

	s.logger.InfoContext(ctx, "client registered", "national_id", client.NationalID)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      requestcontext.Username(ctx),
		Action:     audit.ActionClientRegistered,
		EntityKind: "client",
		EntityID:   client.NationalID,
	})
	return client, nil
}

// Get finds a client by national ID. The lookup accepts formatted or bare
// digits.
func (s *Service) Get(ctx context.Context, nationalID string) (*domain.Client, error) {
	rec, err := s.store.FindByNationalID(ctx, cpf.Normalize(nationalID))
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound,
				fmt.Sprintf("client %s not found", nationalID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find client")
	}
	return domain.ClientFromRecord(rec), nil
}

// List returns all registered clients ordered by national ID.
func (s *Service) List(ctx context.Context) ([]*domain.Client, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list clients")
	}
	out := make([]*domain.Client, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.ClientFromRecord(rec))
	}
	return out, nil
}
