// Package products underwrites the insurance product variants.
package products

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

// CreateInput carries the union of product fields; Kind selects the variant
// and decides which of the optional blocks is read.
type CreateInput struct {
	ID            string
	Kind          string
	CoverageValue float64
	StartDate     string
	EndDate       string

	// Auto.
	Make        string
	Model       string
	Year        int
	Plate       string
	Condition   string
	Usage       string
	DriverCount int

	// Home.
	PropertyAddress string
	Area            float64
	AssessedValue   float64
	Construction    string

	// Life.
	Beneficiaries []string
	CoverageTypes []string
}

// Service validates and persists products.
type Service struct {
	store   storage.ProductStore
	auditor *audit.Publisher
	logger  *slog.Logger
}

func NewService(store storage.ProductStore, auditor *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, auditor: auditor, logger: logger}
}

// Create builds the variant selected by input.Kind, validates its terms, and
// saves it.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Product, error) {
	product, err := buildProduct(input)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, product.ToRecord()); err != nil {
		if storage.IsDuplicate(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict,
				fmt.Sprintf("product %s already exists", product.ID()))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save product")
	}

	s.logger.InfoContext(ctx, "product created",
		"product_id", product.ID(),
		"kind", product.Kind(),
	)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      requestcontext.Username(ctx),
		Action:     audit.ActionProductCreated,
		EntityKind: "product",
		EntityID:   product.ID(),
		Detail:     "kind=" + string(product.Kind()),
	})
	return product, nil
}

func buildProduct(input CreateInput) (domain.Product, error) {
	terms := domain.Terms{
		ProductID: input.ID,
		Coverage:  input.CoverageValue,
		Start:     input.StartDate,
		End:       input.EndDate,
	}
	switch domain.Kind(input.Kind) {
	case domain.KindAuto:
		return domain.NewAutoProduct(terms,
			input.Make, input.Model, input.Year, input.Plate,
			domain.VehicleCondition(input.Condition),
			domain.VehicleUsage(input.Usage),
			input.DriverCount,
		)
	case domain.KindHome:
		return domain.NewHomeProduct(terms,
			input.PropertyAddress, input.Area, input.AssessedValue,
			domain.ConstructionType(input.Construction),
		)
	case domain.KindLife:
		return domain.NewLifeProduct(terms, input.Beneficiaries, input.CoverageTypes)
	default:
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown product kind %q", input.Kind))
	}
}

// Get finds a product by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("product %s not found", id))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find product")
	}
	return domain.ProductFromRecord(rec)
}

// List returns all products ordered by ID.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list products")
	}
	out := make([]domain.Product, 0, len(recs))
	for _, rec := range recs {
		product, err := domain.ProductFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, product)
	}
	return out, nil
}

// Quote recomputes the premium for a stored product without touching any
// policy.
func (s *Service) Quote(ctx context.Context, id string) (float64, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return product.CalculatePremium(), nil
}
