package domain

import (
	"time"

	"brokerage/pkg/dates"
	dErrors "brokerage/pkg/domain-errors"
)

// PolicyStatus is the stored lifecycle state of a policy.
type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "active"
	PolicyCancelled PolicyStatus = "cancelled"
	PolicyExpired   PolicyStatus = "expired"
)

// Policy binds a client to an underwritten product. It owns no copy of
// either: it holds their identifiers plus, when the caller has loaded them,
// shared references used for computation. The core never loads relations
// itself.
//
// Cancellation is terminal in the sense that nothing here reactivates a
// cancelled policy, but Cancel itself is an unguarded idempotent overwrite:
// cancelling twice keeps Cancelled with the second reason and date. Expiry
// is a query-time classification (EffectiveStatus), not a stored transition.
type Policy struct {
	Number           string
	ClientNationalID string
	ProductID        string
	IssuedAt         string // DD/MM/YYYY
	Status           PolicyStatus
	Premium          float64
	ClaimIDs         []string
	CancelReason     string
	CancelledAt      string // DD/MM/YYYY, empty unless cancelled

	client  *Client
	product Product
	claims  []*Claim
}

// NewPolicy issues a policy in the Active state with the issuance date set
// to now. The premium stays 0 until a product is attached and computed.
func NewPolicy(number, clientNationalID, productID string, now time.Time) (*Policy, error) {
	if number == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy number is required")
	}
	if clientNationalID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client national ID is required")
	}
	if productID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "product ID is required")
	}
	return &Policy{
		Number:           number,
		ClientNationalID: clientNationalID,
		ProductID:        productID,
		IssuedAt:         dates.Format(now),
		Status:           PolicyActive,
	}, nil
}

// AttachClient shares an externally loaded client reference.
func (p *Policy) AttachClient(c *Client) { p.client = c }

// AttachProduct shares an externally loaded product reference.
func (p *Policy) AttachProduct(prod Product) { p.product = prod }

// Client returns the attached client reference, if any.
func (p *Policy) Client() (*Client, bool) {
	return p.client, p.client != nil
}

// Product returns the attached product reference, if any.
func (p *Policy) Product() (Product, bool) {
	return p.product, p.product != nil
}

// Claims returns the loaded claim references, in attachment order.
func (p *Policy) Claims() []*Claim {
	return p.claims
}

// Activate sets the policy active. Idempotent, allowed from any state.
func (p *Policy) Activate() {
	p.Status = PolicyActive
}

// Cancel sets the policy cancelled, recording the reason and the date. A
// repeated cancel overwrites both; there is no guard, the overwrite is the
// documented behavior.
func (p *Policy) Cancel(reason string, now time.Time) {
	p.Status = PolicyCancelled
	p.CancelReason = reason
	p.CancelledAt = dates.Format(now)
}

// AttachClaim appends the claim's ID to the policy's claim list and the
// object to the loaded-claims list, each only once. No status guard: claims
// attach to cancelled policies too, matching the legacy behavior.
func (p *Policy) AttachClaim(c *Claim) {
	if c == nil {
		return
	}
	known := false
	for _, id := range p.ClaimIDs {
		if id == c.ID {
			known = true
			break
		}
	}
	if !known {
		p.ClaimIDs = append(p.ClaimIDs, c.ID)
	}
	for _, loaded := range p.claims {
		if loaded == c {
			return
		}
	}
	p.claims = append(p.claims, c)
}

// CalculatePremium recomputes the premium from the attached product,
// stores it on the policy, and returns it. Returns 0 when no product is
// attached; never fails. The stored value is never served stale: every call
// recomputes.
func (p *Policy) CalculatePremium() float64 {
	if p.product == nil {
		return 0.0
	}
	p.Premium = p.product.CalculatePremium()
	return p.Premium
}

// CalculateIndemnization returns the payout owed for the claim: the loss
// amount capped at the product's coverage value. Without an attached product
// the payout cannot be determined and a ProductNotAttached error is
// returned alongside the zero value.
func (p *Policy) CalculateIndemnization(c *Claim) (float64, error) {
	if p.product == nil {
		return 0.0, dErrors.New(dErrors.CodeProductNotAttached, "no product attached to policy "+p.Number+"; indemnization unavailable")
	}
	if c.LossAmount <= p.product.CoverageValue() {
		return c.LossAmount, nil
	}
	return p.product.CoverageValue(), nil
}

// EffectiveStatus classifies the policy as of now. Cancelled is terminal;
// an active policy whose product's coverage window has closed reads as
// expired without any stored transition. Without an attached product the
// stored status stands.
func (p *Policy) EffectiveStatus(now time.Time) PolicyStatus {
	if p.Status == PolicyCancelled {
		return PolicyCancelled
	}
	if p.product == nil {
		return p.Status
	}
	_, end, err := CoverageWindow(p.product)
	if err != nil {
		return p.Status
	}
	if dates.IsFuture(now, end) {
		return PolicyExpired
	}
	return p.Status
}

// PolicyRecord is the flat serialization exchanged with the storage layer.
type PolicyRecord struct {
	Number           string   `json:"number"`
	ClientNationalID string   `json:"client_national_id"`
	ProductID        string   `json:"product_id"`
	IssuedAt         string   `json:"issued_at"`
	Status           string   `json:"status"`
	Premium          float64  `json:"premium"`
	ClaimIDs         []string `json:"claim_ids"`
	CancelReason     string   `json:"cancel_reason,omitempty"`
	CancelledAt      string   `json:"cancelled_at,omitempty"`
}

func (p *Policy) ToRecord() PolicyRecord {
	return PolicyRecord{
		Number:           p.Number,
		ClientNationalID: p.ClientNationalID,
		ProductID:        p.ProductID,
		IssuedAt:         p.IssuedAt,
		Status:           string(p.Status),
		Premium:          p.Premium,
		ClaimIDs:         append([]string(nil), p.ClaimIDs...),
		CancelReason:     p.CancelReason,
		CancelledAt:      p.CancelledAt,
	}
}

// PolicyFromRecord reconstructs a policy and attaches the already-resolved
// client and product references. Either reference may be nil when the caller
// has not loaded it; consumers handle the unattached case. The persisted
// premium is kept as-is until the next CalculatePremium call.
func PolicyFromRecord(rec PolicyRecord, client *Client, product Product) *Policy {
	p := &Policy{
		Number:           rec.Number,
		ClientNationalID: rec.ClientNationalID,
		ProductID:        rec.ProductID,
		IssuedAt:         rec.IssuedAt,
		Status:           PolicyStatus(rec.Status),
		Premium:          rec.Premium,
		ClaimIDs:         append([]string(nil), rec.ClaimIDs...),
		CancelReason:     rec.CancelReason,
		CancelledAt:      rec.CancelledAt,
	}
	p.client = client
	p.product = product
	return p
}
