package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"brokerage/internal/domain"
	"brokerage/internal/storage"
)

type ClaimStore struct {
	db *sql.DB
}

func NewClaimStore(db *sql.DB) *ClaimStore {
	return &ClaimStore{db: db}
}

// Save upserts so review decisions can overwrite the stored status.
func (s *ClaimStore) Save(ctx context.Context, rec domain.ClaimRecord) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO claims (id, policy_number, occurred_on, description, loss_amount, status, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
	`, rec.ID, rec.PolicyNumber, rec.OccurredOn, rec.Description,
		rec.LossAmount, rec.Status, rec.RegisteredAt)
	return mapWrite(err, "save claim")
}

func (s *ClaimStore) FindByID(ctx context.Context, id string) (domain.ClaimRecord, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, policy_number, occurred_on, description, loss_amount, status, registered_at
		FROM claims WHERE id = $1
	`, id)

	var rec domain.ClaimRecord
	err := row.Scan(&rec.ID, &rec.PolicyNumber, &rec.OccurredOn, &rec.Description,
		&rec.LossAmount, &rec.Status, &rec.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ClaimRecord{}, storage.ErrNotFound
		}
		return domain.ClaimRecord{}, fmt.Errorf("find claim: %w", err)
	}
	return rec, nil
}

func (s *ClaimStore) ListByPolicy(ctx context.Context, policyNumber string) ([]domain.ClaimRecord, error) {
	return s.list(ctx, `
		SELECT id, policy_number, occurred_on, description, loss_amount, status, registered_at
		FROM claims WHERE policy_number = $1 ORDER BY id
	`, policyNumber)
}

func (s *ClaimStore) List(ctx context.Context) ([]domain.ClaimRecord, error) {
	return s.list(ctx, `
		SELECT id, policy_number, occurred_on, description, loss_amount, status, registered_at
		FROM claims ORDER BY id
	`)
}

func (s *ClaimStore) list(ctx context.Context, query string, args ...any) ([]domain.ClaimRecord, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var out []domain.ClaimRecord
	for rows.Next() {
		var rec domain.ClaimRecord
		err := rows.Scan(&rec.ID, &rec.PolicyNumber, &rec.OccurredOn, &rec.Description,
			&rec.LossAmount, &rec.Status, &rec.RegisteredAt)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
