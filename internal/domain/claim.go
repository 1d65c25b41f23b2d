package domain

import (
	"fmt"
	"time"

	"brokerage/pkg/dates"
	dErrors "brokerage/pkg/domain-errors"
)

// ClaimStatus is the review state of a claim.
type ClaimStatus string

const (
	ClaimUnderReview ClaimStatus = "under_review"
	ClaimApproved    ClaimStatus = "approved"
	ClaimRejected    ClaimStatus = "rejected"
)

// Claim is a reported loss event filed against exactly one policy. The
// registration timestamp is set at creation and never changes; ownership of
// the object is shared between the policy's loaded-claims list and the
// claims store.
type Claim struct {
	ID           string
	PolicyNumber string
	OccurredOn   string // DD/MM/YYYY
	Description  string
	LossAmount   float64
	Status       ClaimStatus
	RegisteredAt string // DD/MM/YYYY HH:MM:SS
}

// NewClaim registers a claim under review. The occurrence date is kept as
// given; vigency validation happens against a policy via ValidateOccurrence.
func NewClaim(id, policyNumber, occurredOn, description string, lossAmount float64, now time.Time) (*Claim, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "claim ID is required")
	}
	if policyNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy number is required")
	}
	if lossAmount < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "loss amount cannot be negative")
	}
	return &Claim{
		ID:           id,
		PolicyNumber: policyNumber,
		OccurredOn:   occurredOn,
		Description:  description,
		LossAmount:   lossAmount,
		Status:       ClaimUnderReview,
		RegisteredAt: dates.FormatTimestamp(now),
	}, nil
}

// Approve marks the claim approved. Unconditional and idempotent.
func (c *Claim) Approve() { c.Status = ClaimApproved }

// Reject marks the claim rejected. Unconditional and idempotent.
func (c *Claim) Reject() { c.Status = ClaimRejected }

// ValidateOccurrence checks the occurrence date against the calendar and
// the policy's coverage window. It fails when the date does not parse, lies
// in the future, or falls outside [start, end] of the attached product's
// vigency (boundaries inclusive). When the policy has no product attached
// the vigency cannot be checked: validation passes with a warning
// diagnostic rather than blocking the filing. The diagnostic string is
// empty only on a fully clean pass; the caller decides where it is logged.
func (c *Claim) ValidateOccurrence(p *Policy, now time.Time) (bool, string) {
	occurred, err := dates.Parse(c.OccurredOn)
	if err != nil {
		return false, fmt.Sprintf("invalid claim occurrence date %q, expected DD/MM/YYYY", c.OccurredOn)
	}
	if dates.IsFuture(occurred, now) {
		return false, fmt.Sprintf("claim occurrence date %s lies in the future", c.OccurredOn)
	}

	product, ok := p.Product()
	if !ok {
		return true, fmt.Sprintf("policy %s has no product attached; vigency check skipped for claim %s", p.Number, c.ID)
	}

	start, end, err := CoverageWindow(product)
	if err != nil {
		return false, fmt.Sprintf("policy %s has unparseable coverage dates: %v", p.Number, err)
	}
	if !dates.InRange(occurred, start, end) {
		return false, fmt.Sprintf("claim occurrence date %s outside policy vigency (%s - %s)",
			c.OccurredOn, product.StartDate(), product.EndDate())
	}
	return true, ""
}

// ClaimRecord is the flat serialization exchanged with the storage layer.
type ClaimRecord struct {
	ID           string  `json:"id"`
	PolicyNumber string  `json:"policy_number"`
	OccurredOn   string  `json:"occurred_on"`
	Description  string  `json:"description"`
	LossAmount   float64 `json:"loss_amount"`
	Status       string  `json:"status"`
	RegisteredAt string  `json:"registered_at"`
}

func (c *Claim) ToRecord() ClaimRecord {
	return ClaimRecord{
		ID:           c.ID,
		PolicyNumber: c.PolicyNumber,
		OccurredOn:   c.OccurredOn,
		Description:  c.Description,
		LossAmount:   c.LossAmount,
		Status:       c.Status.String(),
		RegisteredAt: c.RegisteredAt,
	}
}

func (s ClaimStatus) String() string { return string(s) }

// ClaimFromRecord reconstructs a claim, keeping the persisted registration
// timestamp.
func ClaimFromRecord(rec ClaimRecord) *Claim {
	return &Claim{
		ID:           rec.ID,
		PolicyNumber: rec.PolicyNumber,
		OccurredOn:   rec.OccurredOn,
		Description:  rec.Description,
		LossAmount:   rec.LossAmount,
		Status:       ClaimStatus(rec.Status),
		RegisteredAt: rec.RegisteredAt,
	}
}
