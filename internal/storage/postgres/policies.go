package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"brokerage/internal/domain"
	"brokerage/internal/storage"
)

// PolicyStore implements storage.PolicyStore. Claim attachments are not a
// column; they are rebuilt from the claims table on every read so the two
// tables can never disagree.
type PolicyStore struct {
	db *sql.DB
}

func NewPolicyStore(db *sql.DB) *PolicyStore {
	return &PolicyStore{db: db}
}

// Save upserts. Cancellation, premium recalculation and claim attachment all
// re-save the full record; uniqueness of the number is enforced by the
// service before issuing.
func (s *PolicyStore) Save(ctx context.Context, rec domain.PolicyRecord) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO policies (number, client_national_id, product_id, issued_at, status, premium, cancel_reason, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (number) DO UPDATE SET
			status = EXCLUDED.status,
			premium = EXCLUDED.premium,
			cancel_reason = EXCLUDED.cancel_reason,
			cancelled_at = EXCLUDED.cancelled_at
	`, rec.Number, rec.ClientNationalID, rec.ProductID, rec.IssuedAt,
		rec.Status, rec.Premium, rec.CancelReason, rec.CancelledAt)
	return mapWrite(err, "save policy")
}

func (s *PolicyStore) FindByNumber(ctx context.Context, number string) (domain.PolicyRecord, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx, `
		SELECT number, client_national_id, product_id, issued_at, status, premium, cancel_reason, cancelled_at
		FROM policies WHERE number = $1
	`, number)

	var rec domain.PolicyRecord
	err := row.Scan(&rec.Number, &rec.ClientNationalID, &rec.ProductID, &rec.IssuedAt,
		&rec.Status, &rec.Premium, &rec.CancelReason, &rec.CancelledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PolicyRecord{}, storage.ErrNotFound
		}
		return domain.PolicyRecord{}, fmt.Errorf("find policy: %w", err)
	}
	if err := s.attachClaimIDs(ctx, &rec); err != nil {
		return domain.PolicyRecord{}, err
	}
	return rec, nil
}

func (s *PolicyStore) ListByClient(ctx context.Context, nationalID string) ([]domain.PolicyRecord, error) {
	return s.list(ctx, `
		SELECT number, client_national_id, product_id, issued_at, status, premium, cancel_reason, cancelled_at
		FROM policies WHERE client_national_id = $1 ORDER BY number
	`, nationalID)
}

func (s *PolicyStore) List(ctx context.Context) ([]domain.PolicyRecord, error) {
	return s.list(ctx, `
		SELECT number, client_national_id, product_id, issued_at, status, premium, cancel_reason, cancelled_at
		FROM policies ORDER BY number
	`)
}

func (s *PolicyStore) list(ctx context.Context, query string, args ...any) ([]domain.PolicyRecord, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	var out []domain.PolicyRecord
	for rows.Next() {
		var rec domain.PolicyRecord
		err := rows.Scan(&rec.Number, &rec.ClientNationalID, &rec.ProductID, &rec.IssuedAt,
			&rec.Status, &rec.Premium, &rec.CancelReason, &rec.CancelledAt)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.attachClaimIDs(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PolicyStore) attachClaimIDs(ctx context.Context, rec *domain.PolicyRecord) error {
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT id FROM claims WHERE policy_number = $1 ORDER BY id`, rec.Number)
	if err != nil {
		return fmt.Errorf("load claim ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan claim id: %w", err)
		}
		rec.ClaimIDs = append(rec.ClaimIDs, id)
	}
	return rows.Err()
}
