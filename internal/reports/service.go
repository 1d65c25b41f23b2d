package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"brokerage/internal/audit"
	dErrors "brokerage/pkg/domain-errors"
	"brokerage/pkg/requestcontext"
)

// Default row caps for the ranked reports.
const (
	defaultTopClientsLimit   = 10
	defaultRecentClaimsLimit = 20
)

// Service generates reports and exports them as CSV files.
type Service struct {
	queries   Queries
	auditor   *audit.Publisher
	logger    *slog.Logger
	exportDir string
}

func NewService(queries Queries, auditor *audit.Publisher, logger *slog.Logger, exportDir string) *Service {
	return &Service{queries: queries, auditor: auditor, logger: logger, exportDir: exportDir}
}

// Generate runs the named report and returns its rows. Each run is audited.
func (s *Service) Generate(ctx context.Context, name string) (any, error) {
	rows, _, err := s.run(ctx, name)
	if err != nil {
		return nil, err
	}

	s.auditor.Emit(ctx, audit.Event{
		Actor:      requestcontext.Username(ctx),
		Action:     audit.ActionReportGenerated,
		EntityKind: "report",
		EntityID:   name,
	})
	return rows, nil
}

// Export runs the named report and writes it to the export directory as CSV
// with a timestamped filename. Returns the written path.
func (s *Service) Export(ctx context.Context, name string) (string, error) {
	_, table, err := s.run(ctx, name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "create export directory")
	}

	stamp := requestcontext.Now(ctx).Format("20060102_150405")
	path := filepath.Join(s.exportDir, fmt.Sprintf("%s_%s.csv", name, stamp))

	f, err := os.Create(path)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "create export file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(table); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "write export file")
	}

	s.logger.InfoContext(ctx, "report exported", "report", name, "path", path)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      requestcontext.Username(ctx),
		Action:     audit.ActionReportExported,
		EntityKind: "report",
		EntityID:   name,
		Detail:     "path=" + path,
	})
	return path, nil
}

// run executes one report and renders both the row slice and its CSV table.
func (s *Service) run(ctx context.Context, name string) (any, [][]string, error) {
	switch name {
	case ReportMonthlyRevenue:
		rows, err := s.queries.MonthlyRevenue(ctx)
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "monthly revenue report")
		}
		table := [][]string{{"month", "policy_count", "total_premium"}}
		for _, r := range rows {
			table = append(table, []string{r.Month, strconv.Itoa(r.PolicyCount), formatAmount(r.TotalPremium)})
		}
		return rows, table, nil

	case ReportTopClients:
		rows, err := s.queries.TopClients(ctx, defaultTopClientsLimit)
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "top clients report")
		}
		table := [][]string{{"national_id", "name", "policy_count", "total_coverage"}}
		for _, r := range rows {
			table = append(table, []string{r.NationalID, r.Name, strconv.Itoa(r.PolicyCount), formatAmount(r.TotalCoverage)})
		}
		return rows, table, nil

	case ReportClaimsByStatus:
		rows, err := s.queries.ClaimsByStatus(ctx)
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "claims by status report")
		}
		table := [][]string{{"status", "count", "total_loss"}}
		for _, r := range rows {
			table = append(table, []string{r.Status, strconv.Itoa(r.Count), formatAmount(r.TotalLoss)})
		}
		return rows, table, nil

	case ReportActivePolicies:
		rows, err := s.queries.ActivePolicies(ctx, requestcontext.Now(ctx))
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "active policies report")
		}
		table := [][]string{{"number", "client_national_id", "product_id", "premium", "end_date"}}
		for _, r := range rows {
			table = append(table, []string{r.Number, r.ClientNationalID, r.ProductID, formatAmount(r.Premium), r.EndDate})
		}
		return rows, table, nil

	case ReportRecentClaims:
		rows, err := s.queries.RecentClaims(ctx, defaultRecentClaimsLimit)
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "recent claims report")
		}
		table := [][]string{{"id", "policy_number", "occurred_on", "status", "loss_amount", "registered_at"}}
		for _, r := range rows {
			table = append(table, []string{r.ID, r.PolicyNumber, r.OccurredOn, r.Status, formatAmount(r.LossAmount), r.RegisteredAt})
		}
		return rows, table, nil

	default:
		return nil, nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown report %q", name))
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
