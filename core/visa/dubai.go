package visa

// Dubai weights: financial 50% + professional (salary + position) 50%.
const (
	dubaiFinancialWeight    = 0.50
	dubaiProfessionalWeight = 0.50
)

type (
	DubaiInput struct {
		FinancialCategory string `json:"financial_category"` // eg. "PropertyInvestment2MPlus"
		SalaryCategory    string `json:"salary_category"`    // eg. "Salary30KPlus"
		PositionCategory  string `json:"position_category"`  // eg. "CEO/MD"
	}

	DubaiBreakdown struct {
		Financial    float64 `json:"financial"`
		Professional float64 `json:"professional"`
		FinalScore   float64 `json:"final_score"`
	}
)

// ScoreDubaiGoldenVisa computes the Dubai Golden Visa breakdown for one
// profile: finalScore = 0.5 x financial + 0.5 x (salary + position).
func ScoreDubaiGoldenVisa(in DubaiInput, r *DubaiRubric) (DubaiBreakdown, error) {
	if r == nil {
		return DubaiBreakdown{}, missingTable(ProgramDubaiGoldenVisa.DisplayName(), "criteria")
	}
	if err := r.Validate(); err != nil {
		return DubaiBreakdown{}, err
	}

	financialKey := mapDubaiFinancial(in.FinancialCategory)
	financialScore := r.FinancialCriteria[financialKey] * dubaiFinancialWeight

	salaryKey := mapDubaiSalary(in.SalaryCategory)
	positionKey := mapDubaiPosition(in.PositionCategory)
	professionalBase := r.ProfessionalCriteria[salaryKey] + r.ProfessionalCriteria[positionKey]
	professionalScore := professionalBase * dubaiProfessionalWeight

	return DubaiBreakdown{
		Financial:    financialScore,
		Professional: professionalScore,
		FinalScore:   financialScore + professionalScore,
	}, nil
}
