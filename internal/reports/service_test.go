package reports

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage/internal/audit"
	"brokerage/internal/domain"
	"brokerage/internal/storage"
	dErrors "brokerage/pkg/domain-errors"
	"brokerage/pkg/requestcontext"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc        *Service
	auditStore *audit.InMemoryStore
}

// newFixture seeds two clients, two products, three policies across two
// months (one cancelled), and two claims.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	clientStore := storage.NewInMemoryClientStore()
	productStore := storage.NewInMemoryProductStore()
	policyStore := storage.NewInMemoryPolicyStore()
	claimStore := storage.NewInMemoryClaimStore()

	require.NoError(t, clientStore.Save(ctx, domain.ClientRecord{
		NationalID: "52998224725", Name: "Maria Souza", BirthDate: "15/03/1990",
		Email: "maria@example.com",
	}))
	require.NoError(t, clientStore.Save(ctx, domain.ClientRecord{
		NationalID: "11144477735", Name: "Joao Lima", BirthDate: "20/07/1985",
		Email: "joao@example.com",
	}))

	auto, err := domain.NewAutoProduct(domain.Terms{
		ProductID: "AUTO-1", Coverage: 10000.0, Start: "01/01/2025", End: "31/12/2025",
	}, "VW", "Gol", 2020, "ABC1D23", domain.ConditionNew, domain.UsagePersonal, 1)
	require.NoError(t, err)
	require.NoError(t, productStore.Save(ctx, auto.ToRecord()))

	home, err := domain.NewHomeProduct(domain.Terms{
		ProductID: "HOME-1", Coverage: 50000.0, Start: "01/01/2025", End: "31/12/2025",
	}, "Rua A 1", 120.0, 300000.0, domain.ConstructionMasonry)
	require.NoError(t, err)
	require.NoError(t, productStore.Save(ctx, home.ToRecord()))

	require.NoError(t, policyStore.Save(ctx, domain.PolicyRecord{
		Number: "POL-1", ClientNationalID: "52998224725", ProductID: "AUTO-1",
		IssuedAt: "05/05/2025", Status: "active", Premium: 500.0,
	}))
	require.NoError(t, policyStore.Save(ctx, domain.PolicyRecord{
		Number: "POL-2", ClientNationalID: "52998224725", ProductID: "HOME-1",
		IssuedAt: "01/06/2025", Status: "active", Premium: 1120.0,
	}))
	require.NoError(t, policyStore.Save(ctx, domain.PolicyRecord{
		Number: "POL-3", ClientNationalID: "11144477735", ProductID: "AUTO-1",
		IssuedAt: "02/06/2025", Status: "cancelled", Premium: 500.0,
		CancelReason: "client request", CancelledAt: "05/06/2025",
	}))

	require.NoError(t, claimStore.Save(ctx, domain.ClaimRecord{
		ID: "CLM-1", PolicyNumber: "POL-1", OccurredOn: "01/06/2025",
		Status: "under_review", LossAmount: 2000.0, RegisteredAt: "02/06/2025 09:00:00",
	}))
	require.NoError(t, claimStore.Save(ctx, domain.ClaimRecord{
		ID: "CLM-2", PolicyNumber: "POL-2", OccurredOn: "05/06/2025",
		Status: "approved", LossAmount: 8000.0, RegisteredAt: "06/06/2025 10:30:00",
	}))

	auditStore := audit.NewInMemoryStore()
	svc := NewService(
		NewStoreQueries(clientStore, productStore, policyStore, claimStore),
		audit.NewPublisher(auditStore, nil, discardLogger()),
		discardLogger(),
		t.TempDir(),
	)
	return &fixture{svc: svc, auditStore: auditStore}
}

func testCtx() context.Context {
	return requestcontext.WithTime(context.Background(), testNow)
}

func TestGenerate(t *testing.T) {
	ctx := testCtx()

	t.Run("monthly revenue groups by issue month", func(t *testing.T) {
		f := newFixture(t)

		rows, err := f.svc.Generate(ctx, ReportMonthlyRevenue)
		require.NoError(t, err)

		revenue := rows.([]MonthlyRevenueRow)
		require.Len(t, revenue, 2)
		assert.Equal(t, MonthlyRevenueRow{Month: "05/2025", PolicyCount: 1, TotalPremium: 500.0}, revenue[0])
		assert.Equal(t, MonthlyRevenueRow{Month: "06/2025", PolicyCount: 2, TotalPremium: 1620.0}, revenue[1])

		events := f.auditStore.All()
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionReportGenerated, events[0].Action)
	})

	t.Run("top clients rank by insured value", func(t *testing.T) {
		f := newFixture(t)

		rows, err := f.svc.Generate(ctx, ReportTopClients)
		require.NoError(t, err)

		top := rows.([]TopClientRow)
		require.Len(t, top, 2)
		assert.Equal(t, "52998224725", top[0].NationalID)
		assert.Equal(t, "Maria Souza", top[0].Name)
		assert.Equal(t, 2, top[0].PolicyCount)
		assert.Equal(t, 60000.0, top[0].TotalCoverage)
		assert.Equal(t, "11144477735", top[1].NationalID)
	})

	t.Run("claims by status totals losses", func(t *testing.T) {
		f := newFixture(t)

		rows, err := f.svc.Generate(ctx, ReportClaimsByStatus)
		require.NoError(t, err)

		byStatus := rows.([]ClaimsByStatusRow)
		require.Len(t, byStatus, 2)
		assert.Equal(t, ClaimsByStatusRow{Status: "approved", Count: 1, TotalLoss: 8000.0}, byStatus[0])
		assert.Equal(t, ClaimsByStatusRow{Status: "under_review", Count: 1, TotalLoss: 2000.0}, byStatus[1])
	})

	t.Run("active policies exclude cancelled", func(t *testing.T) {
		f := newFixture(t)

		rows, err := f.svc.Generate(ctx, ReportActivePolicies)
		require.NoError(t, err)

		active := rows.([]ActivePolicyRow)
		require.Len(t, active, 2)
		assert.Equal(t, "POL-1", active[0].Number)
		assert.Equal(t, "31/12/2025", active[0].EndDate)
		assert.Equal(t, "POL-2", active[1].Number)
	})

	t.Run("recent claims order newest first", func(t *testing.T) {
		f := newFixture(t)

		rows, err := f.svc.Generate(ctx, ReportRecentClaims)
		require.NoError(t, err)

		recent := rows.([]RecentClaimRow)
		require.Len(t, recent, 2)
		assert.Equal(t, "CLM-2", recent[0].ID)
		assert.Equal(t, "CLM-1", recent[1].ID)
	})

	t.Run("unknown report is a bad request", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Generate(ctx, "quarterly_synergy")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestExport(t *testing.T) {
	ctx := testCtx()
	f := newFixture(t)

	path, err := f.svc.Export(ctx, ReportMonthlyRevenue)
	require.NoError(t, err)
	assert.Equal(t, "monthly_revenue_20250610_120000.csv", filepath.Base(path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"month", "policy_count", "total_premium"}, records[0])
	assert.Equal(t, []string{"05/2025", "1", "500.00"}, records[1])
	assert.Equal(t, []string{"06/2025", "2", "1620.00"}, records[2])

	events := f.auditStore.All()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionReportExported, events[0].Action)
}
