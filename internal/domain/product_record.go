package domain

import dErrors "brokerage/pkg/domain-errors"

// ProductRecord is the flat serialization for every product variant. The
// Kind field selects which variant fields are meaningful; the storage layer
// keeps the variant-specific columns in a detail document.
type ProductRecord struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	CoverageValue float64 `json:"coverage_value"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`

	// Auto fields.
	Make        string `json:"make,omitempty"`
	Model       string `json:"model,omitempty"`
	Year        int    `json:"year,omitempty"`
	Plate       string `json:"plate,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Usage       string `json:"usage,omitempty"`
	DriverCount int    `json:"driver_count,omitempty"`

	// Home fields.
	PropertyAddress string  `json:"property_address,omitempty"`
	Area            float64 `json:"area,omitempty"`
	AssessedValue   float64 `json:"assessed_value,omitempty"`
	Construction    string  `json:"construction,omitempty"`

	// Life fields.
	Beneficiaries []string `json:"beneficiaries,omitempty"`
	CoverageTypes []string `json:"coverage_types,omitempty"`
}

// ProductFromRecord reconstructs the variant selected by the record's kind
// tag. Records are trusted; constructors are bypassed so historical data
// loads even if current validation rules have tightened since underwriting.
func ProductFromRecord(rec ProductRecord) (Product, error) {
	terms := Terms{
		ProductID: rec.ID,
		Coverage:  rec.CoverageValue,
		Start:     rec.StartDate,
		End:       rec.EndDate,
	}
	switch Kind(rec.Kind) {
	case KindAuto:
		return &AutoProduct{
			Terms:       terms,
			Make:        rec.Make,
			Model:       rec.Model,
			Year:        rec.Year,
			Plate:       rec.Plate,
			Condition:   VehicleCondition(rec.Condition),
			Usage:       VehicleUsage(rec.Usage),
			DriverCount: rec.DriverCount,
		}, nil
	case KindHome:
		return &HomeProduct{
			Terms:           terms,
			PropertyAddress: rec.PropertyAddress,
			Area:            rec.Area,
			AssessedValue:   rec.AssessedValue,
			Construction:    ConstructionType(rec.Construction),
		}, nil
	case KindLife:
		return &LifeProduct{
			Terms:         terms,
			Beneficiaries: append([]string(nil), rec.Beneficiaries...),
			CoverageTypes: append([]string(nil), rec.CoverageTypes...),
		}, nil
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "unknown product kind: "+rec.Kind)
	}
}
