package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"brokerage/internal/domain"
	"brokerage/internal/storage"
)

// ClientStore implements storage.ClientStore.
type ClientStore struct {
	db *sql.DB
}

func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) Save(ctx context.Context, rec domain.ClientRecord) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO clients (national_id, name, birth_date, address, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.NationalID, rec.Name, rec.BirthDate, rec.Address, rec.Phone, rec.Email)
	return mapWrite(err, "save client")
}

func (s *ClientStore) FindByNationalID(ctx context.Context, nationalID string) (domain.ClientRecord, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx, `
		SELECT national_id, name, birth_date, address, phone, email
		FROM clients WHERE national_id = $1
	`, nationalID)

	var rec domain.ClientRecord
	err := row.Scan(&rec.NationalID, &rec.Name, &rec.BirthDate, &rec.Address, &rec.Phone, &rec.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ClientRecord{}, storage.ErrNotFound
		}
		return domain.ClientRecord{}, fmt.Errorf("find client: %w", err)
	}
	return rec, nil
}

func (s *ClientStore) List(ctx context.Context) ([]domain.ClientRecord, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT national_id, name, birth_date, address, phone, email
		FROM clients ORDER BY national_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []domain.ClientRecord
	for rows.Next() {
		var rec domain.ClientRecord
		if err := rows.Scan(&rec.NationalID, &rec.Name, &rec.BirthDate, &rec.Address, &rec.Phone, &rec.Email); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
