package domain

import platformstrings "brokerage/pkg/platform/strings"

// LifeProduct covers a life, paying out to the named beneficiaries.
type LifeProduct struct {
	Terms
	Beneficiaries []string
	CoverageTypes []string
}

// NewLifeProduct validates common terms; beneficiary and coverage-type lists
// are deduplicated and blank entries dropped.
func NewLifeProduct(terms Terms, beneficiaries, coverageTypes []string) (*LifeProduct, error) {
	if err := terms.validate(); err != nil {
		return nil, err
	}
	return &LifeProduct{
		Terms:         terms,
		Beneficiaries: platformstrings.DedupeAndTrim(beneficiaries),
		CoverageTypes: platformstrings.DedupeAndTrimLower(coverageTypes),
	}, nil
}

func (p *LifeProduct) Kind() Kind { return KindLife }

// CalculatePremium starts from 3% of the coverage value, adds 10% per
// contracted coverage type, then applies a flat 10% load.
func (p *LifeProduct) CalculatePremium() float64 {
	premium := p.Coverage * 0.03
	premium *= 1 + float64(len(p.CoverageTypes))*0.1
	return premium * 1.1
}

func (p *LifeProduct) ToRecord() ProductRecord {
	return ProductRecord{
		ID:            p.ProductID,
		Kind:          string(KindLife),
		CoverageValue: p.Coverage,
		StartDate:     p.Start,
		EndDate:       p.End,
		Beneficiaries: append([]string(nil), p.Beneficiaries...),
		CoverageTypes: append([]string(nil), p.CoverageTypes...),
	}
}
