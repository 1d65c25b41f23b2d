package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"brokerage/internal/reports"
)

// ReportQueries implements reports.Queries by pushing the aggregation into
// SQL. Dates are stored in wire form (DD/MM/YYYY) so ordering and window
// checks go through to_date.
type ReportQueries struct {
	db *sql.DB
}

func NewReportQueries(db *sql.DB) *ReportQueries {
	return &ReportQueries{db: db}
}

func (q *ReportQueries) MonthlyRevenue(ctx context.Context) ([]reports.MonthlyRevenueRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT substring(issued_at from 4 for 7) AS month,
		       count(*),
		       coalesce(sum(premium), 0)
		FROM policies
		GROUP BY month
		ORDER BY substring(issued_at from 7 for 4), substring(issued_at from 4 for 2)
	`)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	defer rows.Close()

	var out []reports.MonthlyRevenueRow
	for rows.Next() {
		var row reports.MonthlyRevenueRow
		if err := rows.Scan(&row.Month, &row.PolicyCount, &row.TotalPremium); err != nil {
			return nil, fmt.Errorf("scan monthly revenue: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (q *ReportQueries) TopClients(ctx context.Context, limit int) ([]reports.TopClientRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.national_id,
		       c.name,
		       count(p.number),
		       coalesce(sum(pr.coverage_value), 0) AS total_coverage
		FROM clients c
		JOIN policies p ON p.client_national_id = c.national_id
		JOIN products pr ON pr.id = p.product_id
		GROUP BY c.national_id, c.name
		ORDER BY total_coverage DESC, c.national_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top clients: %w", err)
	}
	defer rows.Close()

	var out []reports.TopClientRow
	for rows.Next() {
		var row reports.TopClientRow
		if err := rows.Scan(&row.NationalID, &row.Name, &row.PolicyCount, &row.TotalCoverage); err != nil {
			return nil, fmt.Errorf("scan top client: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (q *ReportQueries) ClaimsByStatus(ctx context.Context) ([]reports.ClaimsByStatusRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT status, count(*), coalesce(sum(loss_amount), 0)
		FROM claims
		GROUP BY status
		ORDER BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("claims by status: %w", err)
	}
	defer rows.Close()

	var out []reports.ClaimsByStatusRow
	for rows.Next() {
		var row reports.ClaimsByStatusRow
		if err := rows.Scan(&row.Status, &row.Count, &row.TotalLoss); err != nil {
			return nil, fmt.Errorf("scan claims by status: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (q *ReportQueries) ActivePolicies(ctx context.Context, now time.Time) ([]reports.ActivePolicyRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT p.number, p.client_national_id, p.product_id, p.premium, pr.end_date
		FROM policies p
		JOIN products pr ON pr.id = p.product_id
		WHERE p.status = 'active'
		  AND to_date(pr.end_date, 'DD/MM/YYYY') >= $1::date
		ORDER BY p.number
	`, now)
	if err != nil {
		return nil, fmt.Errorf("active policies: %w", err)
	}
	defer rows.Close()

	var out []reports.ActivePolicyRow
	for rows.Next() {
		var row reports.ActivePolicyRow
		err := rows.Scan(&row.Number, &row.ClientNationalID, &row.ProductID, &row.Premium, &row.EndDate)
		if err != nil {
			return nil, fmt.Errorf("scan active policy: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (q *ReportQueries) RecentClaims(ctx context.Context, limit int) ([]reports.RecentClaimRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, policy_number, occurred_on, status, loss_amount, registered_at
		FROM claims
		ORDER BY to_timestamp(registered_at, 'DD/MM/YYYY HH24:MI:SS') DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent claims: %w", err)
	}
	defer rows.Close()

	var out []reports.RecentClaimRow
	for rows.Next() {
		var row reports.RecentClaimRow
		err := rows.Scan(&row.ID, &row.PolicyNumber, &row.OccurredOn, &row.Status, &row.LossAmount, &row.RegisteredAt)
		if err != nil {
			return nil, fmt.Errorf("scan recent claim: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
