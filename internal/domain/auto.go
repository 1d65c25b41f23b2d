package domain

import dErrors "brokerage/pkg/domain-errors"

// VehicleCondition grades the insured vehicle's conservation state.
type VehicleCondition string

const (
	ConditionNew     VehicleCondition = "new"
	ConditionSemiNew VehicleCondition = "semi_new"
	ConditionUsed    VehicleCondition = "used"
)

// VehicleUsage tags how the vehicle is driven. Commercial sits outside the
// three-way factor table and stacks an extra surcharge on top of the default
// usage factor; see CalculatePremium.
type VehicleUsage string

const (
	UsagePersonal     VehicleUsage = "personal"
	UsageShared       VehicleUsage = "shared"
	UsageProfessional VehicleUsage = "professional"
	UsageCommercial   VehicleUsage = "commercial"
)

// AutoProduct covers a vehicle.
type AutoProduct struct {
	Terms
	Make        string
	Model       string
	Year        int
	Plate       string
	Condition   VehicleCondition
	Usage       VehicleUsage
	DriverCount int
}

// NewAutoProduct validates common terms plus the driver count.
func NewAutoProduct(terms Terms, make_, model string, year int, plate string, condition VehicleCondition, usage VehicleUsage, driverCount int) (*AutoProduct, error) {
	if err := terms.validate(); err != nil {
		return nil, err
	}
	if driverCount < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "driver count must be at least 1")
	}
	return &AutoProduct{
		Terms:       terms,
		Make:        make_,
		Model:       model,
		Year:        year,
		Plate:       plate,
		Condition:   condition,
		Usage:       usage,
		DriverCount: driverCount,
	}, nil
}

func (p *AutoProduct) Kind() Kind { return KindAuto }

var conditionFactors = map[VehicleCondition]float64{
	ConditionNew:     1.0,
	ConditionSemiNew: 1.2,
	ConditionUsed:    1.4,
}

var usageFactors = map[VehicleUsage]float64{
	UsagePersonal:     1.0,
	UsageShared:       1.3,
	UsageProfessional: 1.5,
}

// CalculatePremium starts from 5% of the coverage value, scaled by condition
// and usage factors (unknown tags fall back to the worst factor), plus 10%
// per driver beyond the first. A commercial usage tag stacks a further 20%
// on top of the fallback usage factor; the overlap is preserved as-is
// pending product-owner clarification.
func (p *AutoProduct) CalculatePremium() float64 {
	premium := p.Coverage * 0.05

	condition, ok := conditionFactors[p.Condition]
	if !ok {
		condition = 1.4
	}
	usage, ok := usageFactors[p.Usage]
	if !ok {
		usage = 1.5
	}

	premium *= condition
	premium *= usage
	premium *= 1 + float64(p.DriverCount-1)*0.1

	if p.Usage == UsageCommercial {
		premium *= 1.2
	}
	return premium
}

func (p *AutoProduct) ToRecord() ProductRecord {
	return ProductRecord{
		ID:            p.ProductID,
		Kind:          string(KindAuto),
		CoverageValue: p.Coverage,
		StartDate:     p.Start,
		EndDate:       p.End,
		Make:          p.Make,
		Model:         p.Model,
		Year:          p.Year,
		Plate:         p.Plate,
		Condition:     string(p.Condition),
		Usage:         string(p.Usage),
		DriverCount:   p.DriverCount,
	}
}
