package domain

// ConstructionType tags the insured property's build.
type ConstructionType string

const (
	ConstructionMasonry ConstructionType = "masonry"
	ConstructionWood    ConstructionType = "wood"
	ConstructionModular ConstructionType = "modular"
)

// HomeProduct covers a residential property.
type HomeProduct struct {
	Terms
	PropertyAddress string
	Area            float64 // m²
	AssessedValue   float64
	Construction    ConstructionType
}

func NewHomeProduct(terms Terms, propertyAddress string, area, assessedValue float64, construction ConstructionType) (*HomeProduct, error) {
	if err := terms.validate(); err != nil {
		return nil, err
	}
	return &HomeProduct{
		Terms:           terms,
		PropertyAddress: propertyAddress,
		Area:            area,
		AssessedValue:   assessedValue,
		Construction:    construction,
	}, nil
}

func (p *HomeProduct) Kind() Kind { return KindHome }

var constructionFactors = map[ConstructionType]float64{
	ConstructionMasonry: 1.0,
	ConstructionWood:    1.5,
	ConstructionModular: 1.2,
}

// CalculatePremium starts from 2% of the coverage value, scaled by the
// construction factor (unknown types fall back to 1.5) and by area (+0.1%
// per 10m²). Wood construction stacks a further 30% on top of its own
// construction factor; preserved as-is pending product-owner clarification.
func (p *HomeProduct) CalculatePremium() float64 {
	premium := p.Coverage * 0.02

	factor, ok := constructionFactors[p.Construction]
	if !ok {
		factor = 1.5
	}

	premium *= factor
	premium *= 1 + p.Area/1000

	if p.Construction == ConstructionWood {
		premium *= 1.3
	}
	return premium
}

func (p *HomeProduct) ToRecord() ProductRecord {
	return ProductRecord{
		ID:              p.ProductID,
		Kind:            string(KindHome),
		CoverageValue:   p.Coverage,
		StartDate:       p.Start,
		EndDate:         p.End,
		PropertyAddress: p.PropertyAddress,
		Area:            p.Area,
		AssessedValue:   p.AssessedValue,
		Construction:    string(p.Construction),
	}
}
