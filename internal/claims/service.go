// Package claims files claims against policies and runs their review.
package claims

import (
	"context"
	"fmt"
	"log/slog"

	"brokerage/internal/audit"
	"brokerage/internal/domain"
	"brokerage/internal/storage"
	dErrors "brokerage/pkg/domain-errors"
	"brokerage/pkg/requestcontext"
)

// PolicyLoader resolves a policy with its product attached so occurrence
// dates can be checked against the coverage window.
type PolicyLoader interface {
	Get(ctx context.Context, number string) (*domain.Policy, error)
}

// Service orchestrates claim filing and review. Filing writes the claim and
// the policy's claim list together under the transactor.
type Service struct {
	claims   storage.ClaimStore
	policies storage.PolicyStore
	loader   PolicyLoader
	tx       storage.Transactor
	auditor  *audit.Publisher
	metrics  *Metrics
	logger   *slog.Logger
}

func NewService(
	claims storage.ClaimStore,
	policies storage.PolicyStore,
	loader PolicyLoader,
	tx storage.Transactor,
	auditor *audit.Publisher,
	metrics *Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		claims:   claims,
		policies: policies,
		loader:   loader,
		tx:       tx,
		auditor:  auditor,
		metrics:  metrics,
		logger:   logger,
	}
}

// FileInput carries a new claim. OccurredOn uses DD/MM/YYYY.
type FileInput struct {
	ID           string
	PolicyNumber string
	OccurredOn   string
	Description  string
	LossAmount   float64
}

// File validates the occurrence date against the policy's coverage window
// and registers the claim under review. A policy without a product accepts
// the claim with a logged warning.
func (s *Service) File(ctx context.Context, input FileInput) (*domain.Claim, error) {
	if _, err := s.claims.FindByID(ctx, input.ID); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("claim %s already exists", input.ID))
	} else if !storage.IsNotFound(err) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check claim id")
	}

	policy, err := s.loader.Get(ctx, input.PolicyNumber)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	claim, err := domain.NewClaim(input.ID, input.PolicyNumber, input.OccurredOn,
		input.Description, input.LossAmount, now)
	if err != nil {
		return nil, err
	}

	ok, diagnostic := claim.ValidateOccurrence(policy, now)
	if !ok {
		return nil, dErrors.New(dErrors.CodeOutOfCoverage, diagnostic)
	}
	if diagnostic != "" {
		s.logger.WarnContext(ctx, "claim accepted without coverage check",
			"claim_id", claim.ID,
			"policy_number", input.PolicyNumber,
			"diagnostic", diagnostic,
		)
	}

	policy.AttachClaim(claim)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.claims.Save(ctx, claim.ToRecord()); err != nil {
			return err
		}
		return s.policies.Save(ctx, policy.ToRecord())
	})
	if err != nil {
		if storage.IsDuplicate(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict,
				fmt.Sprintf("claim %s already exists", input.ID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save claim")
	}

	if s.metrics != nil {
		s.metrics.Filed.Inc()
	}
	s.logger.InfoContext(ctx, "claim filed",
		"claim_id", claim.ID,
		"policy_number", input.PolicyNumber,
		"loss_amount", input.LossAmount,
	)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      requestcontext.Username(ctx),
		Action:     audit.ActionClaimFiled,
		EntityKind: "claim",
		EntityID:   claim.ID,
		Detail:     "policy=" + input.PolicyNumber,
	})
	return claim, nil
}

// Approve marks a claim approved.
func (s *Service) Approve(ctx context.Context, id string) (*domain.Claim, error) {
	return s.review(ctx, id, domain.ClaimApproved)
}

// Reject marks a claim rejected.
func (s *Service) Reject(ctx context.Context, id string) (*domain.Claim, error) {
	return s.review(ctx, id, domain.ClaimRejected)
}

func (s *Service) review(ctx context.Context, id string, verdict domain.ClaimStatus) (*domain.Claim, error) {
	claim, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	action := audit.ActionClaimApproved
	if verdict == domain.ClaimApproved {
		claim.Approve()
	} else {
		claim.Reject()
		action = audit.ActionClaimRejected
	}

	if err := s.claims.Save(ctx, claim.ToRecord()); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save claim")
	}

	if s.metrics != nil {
		if verdict == domain.ClaimApproved {
			s.metrics.Approved.Inc()
		} else {
			s.metrics.Rejected.Inc()
		}
	}
	s.logger.InfoContext(ctx, "claim reviewed", "claim_id", id, "verdict", verdict)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      requestcontext.Username(ctx),
		Action:     action,
		EntityKind: "claim",
		EntityID:   id,
	})
	return claim, nil
}

// Get finds a claim by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Claim, error) {
	rec, err := s.claims.FindByID(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound,
				fmt.Sprintf("claim %s not found", id))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find claim")
	}
	return domain.ClaimFromRecord(rec), nil
}

// ListByPolicy returns all claims filed against a policy.
func (s *Service) ListByPolicy(ctx context.Context, policyNumber string) ([]*domain.Claim, error) {
	recs, err := s.claims.ListByPolicy(ctx, policyNumber)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list claims")
	}
	return fromRecords(recs), nil
}

// List returns every claim.
func (s *Service) List(ctx context.Context) ([]*domain.Claim, error) {
	recs, err := s.claims.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list claims")
	}
	return fromRecords(recs), nil
}

func fromRecords(recs []domain.ClaimRecord) []*domain.Claim {
	out := make([]*domain.Claim, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.ClaimFromRecord(rec))
	}
	return out
}
