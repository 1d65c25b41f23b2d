package storage

import (
	"context"

	"brokerage/internal/domain"
)

// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring business
// code. They exchange flat records; services translate to and from domain
// objects and resolve relations themselves, the core never looks anything up.
type ClientStore interface {
	Save(ctx context.Context, rec domain.ClientRecord) error
	FindByNationalID(ctx context.Context, nationalID string) (domain.ClientRecord, error)
	List(ctx context.Context) ([]domain.ClientRecord, error)
}

type ProductStore interface {
	Save(ctx context.Context, rec domain.ProductRecord) error
	FindByID(ctx context.Context, id string) (domain.ProductRecord, error)
	List(ctx context.Context) ([]domain.ProductRecord, error)
}

type PolicyStore interface {
	Save(ctx context.Context, rec domain.PolicyRecord) error
	FindByNumber(ctx context.Context, number string) (domain.PolicyRecord, error)
	ListByClient(ctx context.Context, nationalID string) ([]domain.PolicyRecord, error)
	List(ctx context.Context) ([]domain.PolicyRecord, error)
}

type ClaimStore interface {
	Save(ctx context.Context, rec domain.ClaimRecord) error
	FindByID(ctx context.Context, id string) (domain.ClaimRecord, error)
	ListByPolicy(ctx context.Context, policyNumber string) ([]domain.ClaimRecord, error)
	List(ctx context.Context) ([]domain.ClaimRecord, error)
}

// Transactor groups writes that must land together. The in-memory
// implementation is a passthrough; the PostgreSQL one opens a transaction
// and threads it through the context for the stores to pick up.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTransactor is the passthrough used with in-memory stores and in tests.
type NopTransactor struct{}

func (NopTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
