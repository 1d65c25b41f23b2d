package audit

import "time"

// Event is emitted from the services to capture key actions: registrations,
// underwriting, policy issue/cancel, claim filing and review, logins, report
// generation. Kept transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID         string
	Timestamp  time.Time
	Actor      string // username, or "system"
	Action     string
	EntityKind string
	EntityID   string
	Detail     string
}

// Actions recorded by the services.
const (
	ActionClientRegistered = "client.registered"
	ActionProductCreated   = "product.created"
	ActionPolicyIssued     = "policy.issued"
	ActionPolicyCancelled  = "policy.cancelled"
	ActionClaimFiled       = "claim.filed"
	ActionClaimApproved    = "claim.approved"
	ActionClaimRejected    = "claim.rejected"
	ActionUserCreated      = "user.created"
	ActionUserLogin        = "user.login"
	ActionUserLoginFailed  = "user.login_failed"
	ActionUserLogout       = "user.logout"
	ActionReportGenerated  = "report.generated"
	ActionReportExported   = "report.exported"
)
