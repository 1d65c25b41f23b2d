// Package policies issues policies and runs their lifecycle: activation,
// cancellation, premium, indemnization, and effective status.
package policies

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

// Service orchestrates policy operations. It resolves client, product, and
// claim references before handing the policy to the domain core.
type Service struct {
	policies storage.PolicyStore
	clientsS storage.ClientStore
	products storage.ProductStore
	claims   storage.ClaimStore
	auditor  *audit.Publisher
	metrics  *Metrics
	logger   *slog.Logger
}

func NewService(
	policies storage.PolicyStore,
	clients storage.ClientStore,
	products storage.ProductStore,
	claims storage.ClaimStore,
	auditor *audit.Publisher,
	metrics *Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		policies: policies,
		clientsS: clients,
		products: products,
		claims:   claims,
		auditor:  auditor,
		metrics:  metrics,
		logger:   logger,
	}
}

// Issue creates an active policy binding a registered client to an
// underwritten product, and computes the premium from the product.
func (s *Service) Issue(ctx context.Context, number, clientNationalID, productID string) (*domain.Policy, error) {
	nationalID := cpf.Normalize(clientNationalID)

	if _, err := s.policies.FindByNumber(ctx, number); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("policy %s already exists", number))
	} else if !storage.IsNotFound(err) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check policy number")
	}

	clientRec, err := s.clientsS.FindByNationalID(ctx, nationalID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound,
				fmt.Sprintf("client %s not found", clientNationalID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find client")
	}

	productRec, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound,
				fmt.Sprintf("product %s not found", productID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find product")
	}
	product, err := domain.ProductFromRecord(productRec)
	if err != nil {
		return nil, err
	}

	policy, err := domain.NewPolicy(number, nationalID, productID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	policy.AttachClient(domain.ClientFromRecord(clientRec))
	policy.AttachProduct(product)
	policy.CalculatePremium()

	if err := s.policies.Save(ctx, policy.ToRecord()); err != nil {
		if storage.IsDuplicate(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict,
				fmt.Sprintf("policy %s already exists", number))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save policy")
	}

	if s.metrics != nil {
		s.metrics.Issued.Inc()
	}
	s.logger.InfoContext(ctx, "policy issued",
		"policy_number", number,
		"national_id", nationalID,
		"product_id", productID,
		"premium", policy.Premium,
	)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      requestcontext.Username(ctx),
		Action:     audit.ActionPolicyIssued,
		EntityKind: "policy",
		EntityID:   number,
		Detail:     fmt.Sprintf("client=%s product=%s", nationalID, productID),
	})
	return policy, nil
}

// Get loads a policy with its client, product, and claims resolved.
func (s *Service) Get(ctx context.Context, number string) (*domain.Policy, error) {
	rec, err := s.policies.FindByNumber(ctx, number)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound,
				fmt.Sprintf("policy %s not found", number))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find policy")
	}
	return s.resolve(ctx, rec)
}

// resolve rebuilds the object graph around one policy record. Dangling
// references load as unattached rather than failing the whole policy.
func (s *Service) resolve(ctx context.Context, rec domain.PolicyRecord) (*domain.Policy, error) {
	var client *domain.Client
	if clientRec, err := s.clientsS.FindByNationalID(ctx, rec.ClientNationalID); err == nil {
		client = domain.ClientFromRecord(clientRec)
	} else if !storage.IsNotFound(err) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find client")
	}

	var product domain.Product
	if productRec, err := s.products.FindByID(ctx, rec.ProductID); err == nil {
		if product, err = domain.ProductFromRecord(productRec); err != nil {
			return nil, err
		}
	} else if !storage.IsNotFound(err) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find product")
	}

	policy := domain.PolicyFromRecord(rec, client, product)

	claimRecs, err := s.claims.ListByPolicy(ctx, rec.Number)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list claims")
	}
	for _, claimRec := range claimRecs {
		policy.AttachClaim(domain.ClaimFromRecord(claimRec))
	}
	return policy, nil
}

// ListByClient returns the client's policies with relations resolved.
func (s *Service) ListByClient(ctx context.Context, clientNationalID string) ([]*domain.Policy, error) {
	recs, err := s.policies.ListByClient(ctx, cpf.Normalize(clientNationalID))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list policies")
	}
	return s.resolveAll(ctx, recs)
}

// List returns every policy with relations resolved.
func (s *Service) List(ctx context.Context) ([]*domain.Policy, error) {
	recs, err := s.policies.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list policies")
	}
	return s.resolveAll(ctx, recs)
}

func (s *Service) resolveAll(ctx context.Context, recs []domain.PolicyRecord) ([]*domain.Policy, error) {
	out := make([]*domain.Policy, 0, len(recs))
	for _, rec := range recs {
		policy, err := s.resolve(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, policy)
	}
	return out, nil
}

// Cancel marks the policy cancelled with the given reason. Cancelling an
// already cancelled policy overwrites the reason and date.
func (s *Service) Cancel(ctx context.Context, number, reason string) (*domain.Policy, error) {
	policy, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}

	policy.Cancel(reason, requestcontext.Now(ctx))
	if err := s.policies.Save(ctx, policy.ToRecord()); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save policy")
	}

	if s.metrics != nil {
		s.metrics.Cancelled.Inc()
	}
	s.logger.InfoContext(ctx, "policy cancelled", "policy_number", number, "reason", reason)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      requestcontext.Username(ctx),
		Action:     audit.ActionPolicyCancelled,
		EntityKind: "policy",
		EntityID:   number,
		Detail:     "reason=" + reason,
	})
	return policy, nil
}

// Premium recomputes and persists the policy premium from the attached
// product.
func (s *Service) Premium(ctx context.Context, number string) (float64, error) {
	policy, err := s.Get(ctx, number)
	if err != nil {
		return 0, err
	}

	premium := policy.CalculatePremium()
	if err := s.policies.Save(ctx, policy.ToRecord()); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "save policy")
	}
	return premium, nil
}

// Indemnization computes the payout for one of the policy's claims, capped
// at the product coverage.
func (s *Service) Indemnization(ctx context.Context, number, claimID string) (float64, error) {
	policy, err := s.Get(ctx, number)
	if err != nil {
		return 0, err
	}

	claimRec, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		if storage.IsNotFound(err) {
			return 0, dErrors.Wrap(err, dErrors.CodeNotFound,
				fmt.Sprintf("claim %s not found", claimID))
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "find claim")
	}
	if claimRec.PolicyNumber != number {
		return 0, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("claim %s does not belong to policy %s", claimID, number))
	}

	return policy.CalculateIndemnization(domain.ClaimFromRecord(claimRec))
}

// EffectiveStatus reports the policy status with query-time expiry applied.
func (s *Service) EffectiveStatus(ctx context.Context, number string) (domain.PolicyStatus, error) {
	policy, err := s.Get(ctx, number)
	if err != nil {
		return "", err
	}
	return policy.EffectiveStatus(requestcontext.Now(ctx)), nil
}
