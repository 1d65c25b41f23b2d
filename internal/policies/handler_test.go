package policies

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"brokerage/internal/domain"
	dErrors "brokerage/pkg/domain-errors"
	"brokerage/pkg/testutil"
)

type stubService struct {
	issueFn         func(ctx context.Context, number, clientNationalID, productID string) (*domain.Policy, error)
	getFn           func(ctx context.Context, number string) (*domain.Policy, error)
	listFn          func(ctx context.Context) ([]*domain.Policy, error)
	listByClientFn  func(ctx context.Context, clientNationalID string) ([]*domain.Policy, error)
	cancelFn        func(ctx context.Context, number, reason string) (*domain.Policy, error)
	premiumFn       func(ctx context.Context, number string) (float64, error)
	indemnizationFn func(ctx context.Context, number, claimID string) (float64, error)
}

func (s *stubService) Issue(ctx context.Context, number, clientNationalID, productID string) (*domain.Policy, error) {
	return s.issueFn(ctx, number, clientNationalID, productID)
}
func (s *stubService) Get(ctx context.Context, number string) (*domain.Policy, error) {
	return s.getFn(ctx, number)
}
func (s *stubService) List(ctx context.Context) ([]*domain.Policy, error) { return s.listFn(ctx) }
func (s *stubService) ListByClient(ctx context.Context, clientNationalID string) ([]*domain.Policy, error) {
	return s.listByClientFn(ctx, clientNationalID)
}
func (s *stubService) Cancel(ctx context.Context, number, reason string) (*domain.Policy, error) {
	return s.cancelFn(ctx, number, reason)
}
func (s *stubService) Premium(ctx context.Context, number string) (float64, error) {
	return s.premiumFn(ctx, number)
}
func (s *stubService) Indemnization(ctx context.Context, number, claimID string) (float64, error) {
	return s.indemnizationFn(ctx, number, claimID)
}

func newTestRouter(stub *stubService) http.Handler {
	r := chi.NewRouter()
	h := NewHandler(stub, discardLogger())
	h.Register(r)
	h.RegisterAdmin(r)
	return r
}

func samplePolicy(t *testing.T) *domain.Policy {
	t.Helper()
	policy, err := domain.NewPolicy("POL-1", "52998224725", "AUTO-1", testNow)
	if err != nil {
		t.Fatalf("build policy: %v", err)
	}
	return policy
}

func TestHandleIssue(t *testing.T) {
	t.Run("returns 201 with effective status", func(t *testing.T) {
		stub := &stubService{
			issueFn: func(_ context.Context, number, clientNationalID, productID string) (*domain.Policy, error) {
				assert.Equal(t, "POL-1", number)
				assert.Equal(t, "52998224725", clientNationalID)
				assert.Equal(t, "AUTO-1", productID)
				return samplePolicy(t), nil
			},
		}

		req := testutil.NewJSONRequest(t, http.MethodPost, "/policies", map[string]string{
			"number":             "POL-1",
			"client_national_id": "52998224725",
			"product_id":         "AUTO-1",
		})
		rr := testutil.DoRequest(newTestRouter(stub), req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[policyResponse](t, rr)
		assert.Equal(t, "POL-1", resp.Number)
		assert.Equal(t, "active", resp.EffectiveStatus)
	})

	t.Run("requires a policy number", func(t *testing.T) {
		stub := &stubService{}

		req := testutil.NewJSONRequest(t, http.MethodPost, "/policies", map[string]string{
			"client_national_id": "52998224725",
		})
		rr := testutil.DoRequest(newTestRouter(stub), req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestHandleCancel(t *testing.T) {
	stub := &stubService{
		cancelFn: func(_ context.Context, number, reason string) (*domain.Policy, error) {
			assert.Equal(t, "POL-1", number)
			assert.Equal(t, "client request", reason)
			policy := samplePolicy(t)
			policy.Cancel(reason, testNow)
			return policy, nil
		},
	}

	req := testutil.NewJSONRequest(t, http.MethodPost, "/policies/POL-1/cancel", map[string]string{
		"reason": "client request",
	})
	rr := testutil.DoRequest(newTestRouter(stub), req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[policyResponse](t, rr)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "cancelled", resp.EffectiveStatus)
	assert.Equal(t, "client request", resp.CancelReason)
}

func TestHandleIndemnization(t *testing.T) {
	t.Run("returns the computed amount", func(t *testing.T) {
		stub := &stubService{
			indemnizationFn: func(_ context.Context, number, claimID string) (float64, error) {
				assert.Equal(t, "POL-1", number)
				assert.Equal(t, "CLM-1", claimID)
				return 2000.0, nil
			},
		}

		req := testutil.NewRequest(t, http.MethodGet, "/policies/POL-1/indemnization/CLM-1")
		rr := testutil.DoRequest(newTestRouter(stub), req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[indemnizationResponse](t, rr)
		assert.Equal(t, 2000.0, resp.Amount)
	})

	t.Run("maps unattached product to 409", func(t *testing.T) {
		stub := &stubService{
			indemnizationFn: func(context.Context, string, string) (float64, error) {
				return 0, dErrors.New(dErrors.CodeProductNotAttached, "policy has no product attached")
			},
		}

		req := testutil.NewRequest(t, http.MethodGet, "/policies/POL-1/indemnization/CLM-1")
		rr := testutil.DoRequest(newTestRouter(stub), req)

		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "product_not_attached")
	})
}
