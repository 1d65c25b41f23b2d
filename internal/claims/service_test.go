package claims

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
	"brokerage/internal/policies"
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
	policySvc  *policies.Service
	policies   *storage.InMemoryPolicyStore
	auditStore *audit.InMemoryStore
}

// newFixture seeds a client, an auto product covering 2025, and policy POL-1.
func newFixture(t *testing.T, seedPolicy bool) *fixture {
	t.Helper()
	ctx := testCtx()

	clientStore := storage.NewInMemoryClientStore()
	productStore := storage.NewInMemoryProductStore()
	policyStore := storage.NewInMemoryPolicyStore()
	claimStore := storage.NewInMemoryClaimStore()
	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(auditStore, nil, discardLogger())

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

	policySvc := policies.NewService(policyStore, clientStore, productStore,
		claimStore, publisher, nil, discardLogger())
	if seedPolicy {
		_, err = policySvc.Issue(ctx, "POL-1", "52998224725", "AUTO-1")
		require.NoError(t, err)
	}

	svc := NewService(claimStore, policyStore, policySvc, storage.NopTransactor{},
		publisher, nil, discardLogger())
	return &fixture{svc: svc, policySvc: policySvc, policies: policyStore, auditStore: auditStore}
}

func testCtx() context.Context {
	return requestcontext.WithTime(context.Background(), testNow)
}

func fileInput() FileInput {
	return FileInput{
		ID:           "CLM-1",
		PolicyNumber: "POL-1",
		OccurredOn:   "01/06/2025",
		Description:  "rear-end collision",
		LossAmount:   2000.0,
	}
}

func TestFile(t *testing.T) {
	ctx := testCtx()

	t.Run("registers claim and attaches it to the policy", func(t *testing.T) {
		f := newFixture(t, true)

		claim, err := f.svc.File(ctx, fileInput())
		require.NoError(t, err)
		assert.Equal(t, domain.ClaimUnderReview, claim.Status)
		assert.Equal(t, "10/06/2025 12:00:00", claim.RegisteredAt)

		policy, err := f.policySvc.Get(ctx, "POL-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"CLM-1"}, policy.ClaimIDs)

		events := f.auditStore.All()
		assert.Equal(t, audit.ActionClaimFiled, events[len(events)-1].Action)
	})

	t.Run("rejects occurrence outside vigency", func(t *testing.T) {
		f := newFixture(t, true)

		input := fileInput()
		input.OccurredOn = "31/12/2024"
		_, err := f.svc.File(ctx, input)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeOutOfCoverage))
	})

	t.Run("rejects future occurrence", func(t *testing.T) {
		f := newFixture(t, true)

		input := fileInput()
		input.OccurredOn = "11/06/2025"
		_, err := f.svc.File(ctx, input)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeOutOfCoverage))
	})

	t.Run("accepts boundary dates inclusively", func(t *testing.T) {
		f := newFixture(t, true)

		input := fileInput()
		input.OccurredOn = "01/01/2025"
		_, err := f.svc.File(ctx, input)
		require.NoError(t, err)
	})

	t.Run("unknown policy is not found", func(t *testing.T) {
		f := newFixture(t, false)

		_, err := f.svc.File(ctx, fileInput())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("policy without product accepts the claim", func(t *testing.T) {
		f := newFixture(t, true)

		// Orphan the product reference to simulate an unattached policy.
		rec, err := f.policies.FindByNumber(ctx, "POL-1")
		require.NoError(t, err)
		rec.ProductID = "GONE-1"
		require.NoError(t, f.policies.Save(ctx, rec))

		claim, err := f.svc.File(ctx, fileInput())
		require.NoError(t, err)
		assert.Equal(t, domain.ClaimUnderReview, claim.Status)
	})

	t.Run("duplicate claim ID conflicts", func(t *testing.T) {
		f := newFixture(t, true)

		_, err := f.svc.File(ctx, fileInput())
		require.NoError(t, err)

		_, err = f.svc.File(ctx, fileInput())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestReview(t *testing.T) {
	ctx := testCtx()

	t.Run("approve and reject set the verdict", func(t *testing.T) {
		f := newFixture(t, true)
		_, err := f.svc.File(ctx, fileInput())
		require.NoError(t, err)

		claim, err := f.svc.Approve(ctx, "CLM-1")
		require.NoError(t, err)
		assert.Equal(t, domain.ClaimApproved, claim.Status)

		claim, err = f.svc.Reject(ctx, "CLM-1")
		require.NoError(t, err)
		assert.Equal(t, domain.ClaimRejected, claim.Status)

		events := f.auditStore.All()
		assert.Equal(t, audit.ActionClaimRejected, events[len(events)-1].Action)
	})

	t.Run("unknown claim is not found", func(t *testing.T) {
		f := newFixture(t, true)

		_, err := f.svc.Approve(ctx, "CLM-404")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestListByPolicy(t *testing.T) {
	ctx := testCtx()
	f := newFixture(t, true)

	_, err := f.svc.File(ctx, fileInput())
	require.NoError(t, err)

	second := fileInput()
	second.ID = "CLM-2"
	second.OccurredOn = "05/06/2025"
	_, err = f.svc.File(ctx, second)
	require.NoError(t, err)

	claimsList, err := f.svc.ListByPolicy(ctx, "POL-1")
	require.NoError(t, err)
	require.Len(t, claimsList, 2)
	assert.Equal(t, "CLM-1", claimsList[0].ID)
	assert.Equal(t, "CLM-2", claimsList[1].ID)
}
