package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"brokerage/internal/domain"
	"brokerage/internal/storage"
)

// ProductStore implements storage.ProductStore. Variant-specific fields live
// in a JSONB detail column; the common terms are first-class columns.
type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

// productDetail is the JSONB payload: everything beyond the shared terms.
type productDetail struct {
	Make        string `json:"make,omitempty"`
	Model       string `json:"model,omitempty"`
	Year        int    `json:"year,omitempty"`
	Plate       string `json:"plate,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Usage       string `json:"usage,omitempty"`
	DriverCount int    `json:"driver_count,omitempty"`

	PropertyAddress string  `json:"property_address,omitempty"`
	Area            float64 `json:"area,omitempty"`
	AssessedValue   float64 `json:"assessed_value,omitempty"`
	Construction    string  `json:"construction,omitempty"`

	Beneficiaries []string `json:"beneficiaries,omitempty"`
	CoverageTypes []string `json:"coverage_types,omitempty"`
}

func detailFromRecord(rec domain.ProductRecord) productDetail {
	return productDetail{
		Make:            rec.Make,
		Model:           rec.Model,
		Year:            rec.Year,
		Plate:           rec.Plate,
		Condition:       rec.Condition,
		Usage:           rec.Usage,
		DriverCount:     rec.DriverCount,
		PropertyAddress: rec.PropertyAddress,
		Area:            rec.Area,
		AssessedValue:   rec.AssessedValue,
		Construction:    rec.Construction,
		Beneficiaries:   rec.Beneficiaries,
		CoverageTypes:   rec.CoverageTypes,
	}
}

func (d productDetail) apply(rec *domain.ProductRecord) {
	rec.Make = d.Make
	rec.Model = d.Model
	rec.Year = d.Year
	rec.Plate = d.Plate
	rec.Condition = d.Condition
	rec.Usage = d.Usage
	rec.DriverCount = d.DriverCount
	rec.PropertyAddress = d.PropertyAddress
	rec.Area = d.Area
	rec.AssessedValue = d.AssessedValue
	rec.Construction = d.Construction
	rec.Beneficiaries = d.Beneficiaries
	rec.CoverageTypes = d.CoverageTypes
}

func (s *ProductStore) Save(ctx context.Context, rec domain.ProductRecord) error {
	detail, err := json.Marshal(detailFromRecord(rec))
	if err != nil {
		return fmt.Errorf("marshal product detail: %w", err)
	}
	_, err = execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO products (id, kind, coverage_value, start_date, end_date, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.Kind, rec.CoverageValue, rec.StartDate, rec.EndDate, detail)
	return mapWrite(err, "save product")
}

func (s *ProductStore) FindByID(ctx context.Context, id string) (domain.ProductRecord, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, kind, coverage_value, start_date, end_date, detail
		FROM products WHERE id = $1
	`, id)
	rec, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProductRecord{}, storage.ErrNotFound
		}
		return domain.ProductRecord{}, fmt.Errorf("find product: %w", err)
	}
	return rec, nil
}

func (s *ProductStore) List(ctx context.Context) ([]domain.ProductRecord, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT id, kind, coverage_value, start_date, end_date, detail
		FROM products ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductRecord
	for rows.Next() {
		rec, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.ProductRecord, error) {
	var rec domain.ProductRecord
	var detail []byte
	if err := row.Scan(&rec.ID, &rec.Kind, &rec.CoverageValue, &rec.StartDate, &rec.EndDate, &detail); err != nil {
		return domain.ProductRecord{}, err
	}
	var d productDetail
	if err := json.Unmarshal(detail, &d); err != nil {
		return domain.ProductRecord{}, fmt.Errorf("unmarshal product detail: %w", err)
	}
	d.apply(&rec)
	return rec, nil
}
