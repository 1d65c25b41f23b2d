package products

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage/internal/audit"
	"brokerage/internal/domain"
	"brokerage/internal/storage"
	dErrors "brokerage/pkg/domain-errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() (*Service, *audit.InMemoryStore) {
	auditStore := audit.NewInMemoryStore()
	svc := NewService(
		storage.NewInMemoryProductStore(),
		audit.NewPublisher(auditStore, nil, discardLogger()),
		discardLogger(),
	)
	return svc, auditStore
}

func autoInput() CreateInput {
	return CreateInput{
		ID:            "AUTO-1",
		Kind:          "auto",
		CoverageValue: 10000.0,
		StartDate:     "01/01/2025",
		EndDate:       "31/12/2025",
		Make:          "VW",
		Model:         "Gol",
		Year:          2020,
		Plate:         "ABC1D23",
		Condition:     "new",
		Usage:         "personal",
		DriverCount:   1,
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an auto product and audits", func(t *testing.T) {
		svc, auditStore := newTestService()

		product, err := svc.Create(ctx, autoInput())
		require.NoError(t, err)
		assert.Equal(t, domain.KindAuto, product.Kind())

		events := auditStore.All()
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionProductCreated, events[0].Action)
		assert.Equal(t, "kind=auto", events[0].Detail)
	})

	t.Run("creates home and life variants", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Create(ctx, CreateInput{
			ID:              "HOME-1",
			Kind:            "home",
			CoverageValue:   50000.0,
			StartDate:       "01/01/2025",
			EndDate:         "31/12/2025",
			PropertyAddress: "Rua A 1",
			Area:            120.0,
			AssessedValue:   300000.0,
			Construction:    "masonry",
		})
		require.NoError(t, err)

		life, err := svc.Create(ctx, CreateInput{
			ID:            "LIFE-1",
			Kind:          "life",
			CoverageValue: 200000.0,
			StartDate:     "01/01/2025",
			EndDate:       "31/12/2025",
			Beneficiaries: []string{"Ana", "Ana", "Bia"},
			CoverageTypes: []string{"death", "disability"},
		})
		require.NoError(t, err)

		rec := life.ToRecord()
		assert.Equal(t, []string{"Ana", "Bia"}, rec.Beneficiaries)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		svc, _ := newTestService()

		input := autoInput()
		input.Kind = "travel"
		_, err := svc.Create(ctx, input)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects inverted date range", func(t *testing.T) {
		svc, _ := newTestService()

		input := autoInput()
		input.StartDate = "31/12/2025"
		input.EndDate = "01/01/2025"
		_, err := svc.Create(ctx, input)
		require.Error(t, err)
	})

	t.Run("rejects duplicate ID", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Create(ctx, autoInput())
		require.NoError(t, err)

		_, err = svc.Create(ctx, autoInput())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestGetAndQuote(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Create(ctx, autoInput())
	require.NoError(t, err)

	t.Run("round-trips the variant", func(t *testing.T) {
		product, err := svc.Get(ctx, "AUTO-1")
		require.NoError(t, err)
		autoProduct, ok := product.(*domain.AutoProduct)
		require.True(t, ok)
		assert.Equal(t, "Gol", autoProduct.Model)
	})

	t.Run("quotes the premium from stored fields", func(t *testing.T) {
		premium, err := svc.Quote(ctx, "AUTO-1")
		require.NoError(t, err)
		assert.Equal(t, 500.0, premium)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		_, err := svc.Get(ctx, "AUTO-404")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
