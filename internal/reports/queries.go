package reports

import (
	"context"
	"sort"
	"time"

	"brokerage/internal/domain"
	"brokerage/internal/storage"
	"brokerage/pkg/dates"
)

// StoreQueries aggregates in memory by walking the stores. It backs the
// report service when the server runs without PostgreSQL and doubles as the
// reference behavior for the SQL implementation.
type StoreQueries struct {
	clients  storage.ClientStore
	products storage.ProductStore
	policies storage.PolicyStore
	claims   storage.ClaimStore
}

func NewStoreQueries(
	clients storage.ClientStore,
	products storage.ProductStore,
	policies storage.PolicyStore,
	claims storage.ClaimStore,
) *StoreQueries {
	return &StoreQueries{clients: clients, products: products, policies: policies, claims: claims}
}

func (q *StoreQueries) MonthlyRevenue(ctx context.Context) ([]MonthlyRevenueRow, error) {
	recs, err := q.policies.List(ctx)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*MonthlyRevenueRow)
	for _, rec := range recs {
		issued, err := dates.Parse(rec.IssuedAt)
		if err != nil {
			continue
		}
		month := issued.Format("01/2006")
		row, ok := byMonth[month]
		if !ok {
			row = &MonthlyRevenueRow{Month: month}
			byMonth[month] = row
		}
		row.PolicyCount++
		row.TotalPremium += rec.Premium
	}

	out := make([]MonthlyRevenueRow, 0, len(byMonth))
	for _, row := range byMonth {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		// MM/YYYY sorts chronologically as YYYY then MM.
		return out[i].Month[3:]+out[i].Month[:2] < out[j].Month[3:]+out[j].Month[:2]
	})
	return out, nil
}

func (q *StoreQueries) TopClients(ctx context.Context, limit int) ([]TopClientRow, error) {
	policyRecs, err := q.policies.List(ctx)
	if err != nil {
		return nil, err
	}

	byClient := make(map[string]*TopClientRow)
	for _, rec := range policyRecs {
		row, ok := byClient[rec.ClientNationalID]
		if !ok {
			row = &TopClientRow{NationalID: rec.ClientNationalID}
			if clientRec, err := q.clients.FindByNationalID(ctx, rec.ClientNationalID); err == nil {
				row.Name = clientRec.Name
			}
			byClient[rec.ClientNationalID] = row
		}
		row.PolicyCount++
		if productRec, err := q.products.FindByID(ctx, rec.ProductID); err == nil {
			row.TotalCoverage += productRec.CoverageValue
		}
	}

	out := make([]TopClientRow, 0, len(byClient))
	for _, row := range byClient {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCoverage != out[j].TotalCoverage {
			return out[i].TotalCoverage > out[j].TotalCoverage
		}
		return out[i].NationalID < out[j].NationalID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (q *StoreQueries) ClaimsByStatus(ctx context.Context) ([]ClaimsByStatusRow, error) {
	recs, err := q.claims.List(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]*ClaimsByStatusRow)
	for _, rec := range recs {
		row, ok := byStatus[rec.Status]
		if !ok {
			row = &ClaimsByStatusRow{Status: rec.Status}
			byStatus[rec.Status] = row
		}
		row.Count++
		row.TotalLoss += rec.LossAmount
	}

	out := make([]ClaimsByStatusRow, 0, len(byStatus))
	for _, row := range byStatus {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (q *StoreQueries) ActivePolicies(ctx context.Context, now time.Time) ([]ActivePolicyRow, error) {
	recs, err := q.policies.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ActivePolicyRow, 0, len(recs))
	for _, rec := range recs {
		var product domain.Product
		if productRec, err := q.products.FindByID(ctx, rec.ProductID); err == nil {
			if product, err = domain.ProductFromRecord(productRec); err != nil {
				return nil, err
			}
		}
		policy := domain.PolicyFromRecord(rec, nil, product)
		if policy.EffectiveStatus(now) != domain.PolicyActive {
			continue
		}
		row := ActivePolicyRow{
			Number:           rec.Number,
			ClientNationalID: rec.ClientNationalID,
			ProductID:        rec.ProductID,
			Premium:          rec.Premium,
		}
		if product != nil {
			row.EndDate = product.EndDate()
		}
		out = append(out, row)
	}
	return out, nil
}

func (q *StoreQueries) RecentClaims(ctx context.Context, limit int) ([]RecentClaimRow, error) {
	recs, err := q.claims.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		ti, errI := time.Parse(dates.TimestampLayout, recs[i].RegisteredAt)
		tj, errJ := time.Parse(dates.TimestampLayout, recs[j].RegisteredAt)
		if errI != nil || errJ != nil {
			return recs[i].RegisteredAt > recs[j].RegisteredAt
		}
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return recs[i].ID < recs[j].ID
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	out := make([]RecentClaimRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, RecentClaimRow{
			ID:           rec.ID,
			PolicyNumber: rec.PolicyNumber,
			OccurredOn:   rec.OccurredOn,
			Status:       rec.Status,
			LossAmount:   rec.LossAmount,
			RegisteredAt: rec.RegisteredAt,
		})
	}
	return out, nil
}
