package policies

import (
	"context"
	"io"
	"log/slog"
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
	claims     *storage.InMemoryClaimStore
	auditStore *audit.InMemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	clientStore := storage.NewInMemoryClientStore()
	productStore := storage.NewInMemoryProductStore()
	claimStore := storage.NewInMemoryClaimStore()
	auditStore := audit.NewInMemoryStore()

	client, err := domain.NewClient("52998224725", "Maria Souza", "15/03/1990",
		"Rua das Flores 100", "11 91234-5678", "maria@example.com", testNow)
	require.NoError(t, err)
	require.NoError(t, clientStore.Save(ctx, client.ToRecord()))

	auto, err := domain.NewAutoProduct(domain.Terms{
		ProductID: "AUTO-1",
		Coverage:  10000.0,
		Start:     "01/01/2025",
		End:       "31/12/2025",
	}, "VW", "Gol", 2020, "ABC1D23", domain.ConditionNew, domain.UsagePersonal, 1)
	require.NoError(t, err)
	require.NoError(t, productStore.Save(ctx, auto.ToRecord()))

	svc := NewService(
		storage.NewInMemoryPolicyStore(),
		clientStore,
		productStore,
		claimStore,
		audit.NewPublisher(auditStore, nil, discardLogger()),
		nil,
		discardLogger(),
	)
	return &fixture{svc: svc, claims: claimStore, auditStore: auditStore}
}

func testCtx() context.Context {
	return requestcontext.WithTime(context.Background(), testNow)
}

func TestIssue(t *testing.T) {
	ctx := testCtx()

	t.Run("issues active policy with computed premium", func(t *testing.T) {
		f := newFixture(t)

		policy, err := f.svc.Issue(ctx, "POL-1", "529.982.247-25", "AUTO-1")
		require.NoError(t, err)
		assert.Equal(t, domain.PolicyActive, policy.Status)
		assert.Equal(t, 500.0, policy.Premium)
		assert.Equal(t, "10/06/2025", policy.IssuedAt)

		events := f.auditStore.All()
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionPolicyIssued, events[0].Action)
	})

	t.Run("unknown client is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Issue(ctx, "POL-1", "111.444.777-35", "AUTO-1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Issue(ctx, "POL-1", "52998224725", "AUTO-404")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("duplicate number conflicts", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Issue(ctx, "POL-1", "52998224725", "AUTO-1")
		require.NoError(t, err)

		_, err = f.svc.Issue(ctx, "POL-1", "52998224725", "AUTO-1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestCancel(t *testing.T) {
	ctx := testCtx()

	t.Run("records reason and audits", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Issue(ctx, "POL-1", "52998224725", "AUTO-1")
		require.NoError(t, err)

		policy, err := f.svc.Cancel(ctx, "POL-1", "client request")
		require.NoError(t, err)
		assert.Equal(t, domain.PolicyCancelled, policy.Status)
		assert.Equal(t, "client request", policy.CancelReason)
		assert.Equal(t, "10/06/2025", policy.CancelledAt)

		events := f.auditStore.All()
		require.Len(t, events, 2)
		assert.Equal(t, audit.ActionPolicyCancelled, events[1].Action)
	})

	t.Run("second cancel overwrites the reason", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Issue(ctx, "POL-1", "52998224725", "AUTO-1")
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, "POL-1", "first reason")
		require.NoError(t, err)

		laterCtx := requestcontext.WithTime(context.Background(), testNow.AddDate(0, 0, 5))
		policy, err := f.svc.Cancel(laterCtx, "POL-1", "second reason")
		require.NoError(t, err)
		assert.Equal(t, "second reason", policy.CancelReason)
		assert.Equal(t, "15/06/2025", policy.CancelledAt)
	})
}

func TestGetResolvesRelations(t *testing.T) {
	ctx := testCtx()
	f := newFixture(t)

	_, err := f.svc.Issue(ctx, "POL-1", "52998224725", "AUTO-1")
	require.NoError(t, err)

	claim, err := domain.NewClaim("CLM-1", "POL-1", "01/06/2025", "rear-end collision", 2000.0, testNow)
	require.NoError(t, err)
	require.NoError(t, f.claims.Save(ctx, claim.ToRecord()))

	policy, err := f.svc.Get(ctx, "POL-1")
	require.NoError(t, err)

	client, ok := policy.Client()
	require.True(t, ok)
	assert.Equal(t, "Maria Souza", client.Name)

	product, ok := policy.Product()
	require.True(t, ok)
	assert.Equal(t, domain.KindAuto, product.Kind())

	require.Len(t, policy.Claims(), 1)
	assert.Equal(t, "CLM-1", policy.Claims()[0].ID)
}

func TestIndemnization(t *testing.T) {
	ctx := testCtx()

	file := func(t *testing.T, f *fixture, id string, loss float64) {
		t.Helper()
		claim, err := domain.NewClaim(id, "POL-1", "01/06/2025", "damage", loss, testNow)
		require.NoError(t, err)
		require.NoError(t, f.claims.Save(ctx, claim.ToRecord()))
	}

	t.Run("caps payout at coverage", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Issue(ctx, "POL-1", "52998224725", "AUTO-1")
		require.NoError(t, err)
		file(t, f, "CLM-1", 15000.0)

		amount, err := f.svc.Indemnization(ctx, "POL-1", "CLM-1")
		require.NoError(t, err)
		assert.Equal(t, 10000.0, amount)
	})

	t.Run("pays the loss when under coverage", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Issue(ctx, "POL-1", "52998224725", "AUTO-1")
		require.NoError(t, err)
		file(t, f, "CLM-1", 2000.0)

		amount, err := f.svc.Indemnization(ctx, "POL-1", "CLM-1")
		require.NoError(t, err)
		assert.Equal(t, 2000.0, amount)
	})

	t.Run("rejects claim from another policy", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Issue(ctx, "POL-1", "52998224725", "AUTO-1")
		require.NoError(t, err)

		claim, err := domain.NewClaim("CLM-X", "POL-2", "01/06/2025", "damage", 100.0, testNow)
		require.NoError(t, err)
		require.NoError(t, f.claims.Save(ctx, claim.ToRecord()))

		_, err = f.svc.Indemnization(ctx, "POL-1", "CLM-X")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestEffectiveStatus(t *testing.T) {
	ctx := testCtx()
	f := newFixture(t)

	_, err := f.svc.Issue(ctx, "POL-1", "52998224725", "AUTO-1")
	require.NoError(t, err)

	status, err := f.svc.EffectiveStatus(ctx, "POL-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyActive, status)

	expiredCtx := requestcontext.WithTime(context.Background(),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	status, err = f.svc.EffectiveStatus(expiredCtx, "POL-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyExpired, status)
}
