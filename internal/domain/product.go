package domain

import (
	"time"

	"brokerage/pkg/dates"
	dErrors "brokerage/pkg/domain-errors"
)

// Kind tags the product variant.
type Kind string

const (
	KindAuto Kind = "auto"
	KindHome Kind = "home"
	KindLife Kind = "life"
)

// Product is the underwritten coverage terms from which a premium is
// derived. Each variant carries only its own fields; the shared capability
// is premium calculation and vigency validation. Terms are immutable after
// underwriting; a change means reissuing a new product.
type Product interface {
	ID() string
	Kind() Kind
	CoverageValue() float64
	StartDate() string // DD/MM/YYYY
	EndDate() string   // DD/MM/YYYY

	// CalculatePremium returns the annual premium. Always non-negative; no
	// currency rounding happens here, presentation rounds for display.
	CalculatePremium() float64

	// ValidateDateRange reports whether both vigency dates parse and the end
	// falls strictly after the start.
	ValidateDateRange() bool

	ToRecord() ProductRecord
}

// Terms carries the fields common to every product variant.
type Terms struct {
	ProductID string
	Coverage  float64
	Start     string
	End       string
}

func (t Terms) ID() string             { return t.ProductID }
func (t Terms) CoverageValue() float64 { return t.Coverage }
func (t Terms) StartDate() string      { return t.Start }
func (t Terms) EndDate() string        { return t.End }

func (t Terms) ValidateDateRange() bool {
	return dates.ValidRange(t.Start, t.End)
}

// validate is shared by the variant constructors.
func (t Terms) validate() error {
	if t.ProductID == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "product ID is required")
	}
	if t.Coverage <= 0 {
		return dErrors.New(dErrors.CodeValidation, "coverage value must be positive")
	}
	if !t.ValidateDateRange() {
		return dErrors.New(dErrors.CodeInvalidDate, "coverage end date must fall strictly after start date, both DD/MM/YYYY")
	}
	return nil
}

// CoverageWindow parses the vigency interval. Callers needing the window for
// comparisons get both bounds or an error when either date is malformed.
func CoverageWindow(p Product) (start, end time.Time, err error) {
	start, err = dates.Parse(p.StartDate())
	if err != nil {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeInvalidDate, "invalid coverage start date: "+p.StartDate())
	}
	end, err = dates.Parse(p.EndDate())
	if err != nil {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeInvalidDate, "invalid coverage end date: "+p.EndDate())
	}
	return start, end, nil
}
