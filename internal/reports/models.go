// Package reports aggregates portfolio figures and exports them as CSV.
package reports

import (
	"context"
	"time"
)

// Report names accepted by Generate and Export.
const (
	ReportMonthlyRevenue = "monthly_revenue"
	ReportTopClients     = "top_clients"
	ReportClaimsByStatus = "claims_by_status"
	ReportActivePolicies = "active_policies"
	ReportRecentClaims   = "recent_claims"
)

// MonthlyRevenueRow aggregates issued premiums per calendar month.
type MonthlyRevenueRow struct {
	Month        string  `json:"month"` // MM/YYYY
	PolicyCount  int     `json:"policy_count"`
	TotalPremium float64 `json:"total_premium"`
}

// TopClientRow ranks clients by total insured value.
type TopClientRow struct {
	NationalID    string  `json:"national_id"`
	Name          string  `json:"name"`
	PolicyCount   int     `json:"policy_count"`
	TotalCoverage float64 `json:"total_coverage"`
}

// ClaimsByStatusRow counts claims per review status.
type ClaimsByStatusRow struct {
	Status    string  `json:"status"`
	Count     int     `json:"count"`
	TotalLoss float64 `json:"total_loss"`
}

// ActivePolicyRow lists policies whose effective status is active.
type ActivePolicyRow struct {
	Number           string  `json:"number"`
	ClientNationalID string  `json:"client_national_id"`
	ProductID        string  `json:"product_id"`
	Premium          float64 `json:"premium"`
	EndDate          string  `json:"end_date"`
}

// RecentClaimRow lists the latest registered claims.
type RecentClaimRow struct {
	ID           string  `json:"id"`
	PolicyNumber string  `json:"policy_number"`
	OccurredOn   string  `json:"occurred_on"`
	Status       string  `json:"status"`
	LossAmount   float64 `json:"loss_amount"`
	RegisteredAt string  `json:"registered_at"`
}

// Queries is the aggregation backend. The store-backed implementation walks
// the stores; the PostgreSQL one pushes the grouping into SQL.
type Queries interface {
	MonthlyRevenue(ctx context.Context) ([]MonthlyRevenueRow, error)
	TopClients(ctx context.Context, limit int) ([]TopClientRow, error)
	ClaimsByStatus(ctx context.Context) ([]ClaimsByStatusRow, error)
	ActivePolicies(ctx context.Context, now time.Time) ([]ActivePolicyRow, error)
	RecentClaims(ctx context.Context, limit int) ([]RecentClaimRow, error)
}
