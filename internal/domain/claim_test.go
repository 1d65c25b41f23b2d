package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClaim(t *testing.T) {
	c, err := NewClaim("cl-1", "AP-1001", "15/03/2025", "collision", 1500, testNow)
	require.NoError(t, err)
	assert.Equal(t, ClaimUnderReview, c.Status)
	assert.Equal(t, "10/06/2025 12:00:00", c.RegisteredAt)

	_, err = NewClaim("", "AP-1001", "15/03/2025", "", 0, testNow)
	assert.Error(t, err)
	_, err = NewClaim("cl-1", "", "15/03/2025", "", 0, testNow)
	assert.Error(t, err)
	_, err = NewClaim("cl-1", "AP-1001", "15/03/2025", "", -1, testNow)
	assert.Error(t, err)

	_, err = NewClaim("cl-2", "AP-1001", "15/03/2025", "", 0, testNow)
	assert.NoError(t, err, "zero loss is allowed")
}

func TestClaimReviewTransitions(t *testing.T) {
	c, err := NewClaim("cl-1", "AP-1001", "15/03/2025", "collision", 1500, testNow)
	require.NoError(t, err)

	c.Approve()
	assert.Equal(t, ClaimApproved, c.Status)
	c.Approve()
	assert.Equal(t, ClaimApproved, c.Status, "approve is idempotent")
	c.Reject()
	assert.Equal(t, ClaimRejected, c.Status, "no transition guard, callable from any state")
}

func TestValidateOccurrence(t *testing.T) {
	policy := testPolicy(t)
	product := testAuto(t, 10000) // vigency 01/01/2025 - 01/01/2026

	newClaim := func(occurredOn string) *Claim {
		c, err := NewClaim("cl-x", policy.Number, occurredOn, "loss", 100, testNow)
		require.NoError(t, err)
		return c
	}

	t.Run("permissive with warning when product unattached", func(t *testing.T) {
		ok, diag := newClaim("15/03/2025").ValidateOccurrence(policy, testNow)
		assert.True(t, ok)
		assert.NotEmpty(t, diag, "best-effort pass still carries a diagnostic")
	})

	policy.AttachProduct(product)

	t.Run("inside the window", func(t *testing.T) {
		ok, diag := newClaim("15/03/2025").ValidateOccurrence(policy, testNow)
		assert.True(t, ok)
		assert.Empty(t, diag)
	})

	t.Run("start boundary inclusive", func(t *testing.T) {
		ok, _ := newClaim("01/01/2025").ValidateOccurrence(policy, testNow)
		assert.True(t, ok)
	})

	t.Run("end boundary inclusive", func(t *testing.T) {
		// Occurrence on the end date is inside the vigency; use a future
		// enough clock so the future-date check does not interfere.
		ok, _ := newClaim("01/01/2026").ValidateOccurrence(policy, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
		assert.True(t, ok)
	})

	t.Run("one day before start", func(t *testing.T) {
		ok, diag := newClaim("31/12/2024").ValidateOccurrence(policy, testNow)
		assert.False(t, ok)
		assert.Contains(t, diag, "outside policy vigency")
	})

	t.Run("one day after end", func(t *testing.T) {
		ok, diag := newClaim("02/01/2026").ValidateOccurrence(policy, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC))
		assert.False(t, ok)
		assert.Contains(t, diag, "outside policy vigency")
	})

	t.Run("future occurrence rejected", func(t *testing.T) {
		ok, diag := newClaim("11/06/2025").ValidateOccurrence(policy, testNow)
		assert.False(t, ok)
		assert.Contains(t, diag, "future")
	})

	t.Run("same day occurrence accepted", func(t *testing.T) {
		ok, _ := newClaim("10/06/2025").ValidateOccurrence(policy, testNow)
		assert.True(t, ok)
	})

	t.Run("unparseable occurrence date", func(t *testing.T) {
		ok, diag := newClaim("2025-03-15").ValidateOccurrence(policy, testNow)
		assert.False(t, ok)
		assert.Contains(t, diag, "DD/MM/YYYY")
	})
}

func TestClaimRecordRoundTrip(t *testing.T) {
	c, err := NewClaim("cl-9", "AP-1001", "15/03/2025", "hail damage", 780.5, testNow)
	require.NoError(t, err)
	c.Approve()

	got := ClaimFromRecord(c.ToRecord())
	assert.Equal(t, c, got)
}
