package visa

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/visado/backend/core"
)

type (
	ExperienceProfile struct {
		Years        int    `json:"years" validate:"gte=0"`
		ForeignYears int    `json:"foreign_years" validate:"gte=0"`
		Position     string `json:"position"`
	}

	AchievementProfile struct {
		Count  int    `json:"count" validate:"gte=0"`
		Impact string `json:"impact"`
	}

	// Profile is the free-form, program-agnostic input a client submits for
	// an assessment. Fields are optional per program; absent or unknown
	// values resolve to each mapper's fallback category, never an error.
	Profile struct {
		Education string `json:"education" validate:"required"`
		Field     string `json:"field"`
		Language  string `json:"language"`

		Experience  ExperienceProfile  `json:"experience"`
		Achievement AchievementProfile `json:"achievement"`

		FinancialCategory string `json:"financial_category"`
		SalaryCategory    string `json:"salary_category"`
		PositionCategory  string `json:"position_category"`
	}

	// Results holds one breakdown per scored program. A nil entry means the
	// program was not requested, never that scoring failed (failures abort
	// the assessment).
	Results struct {
		UK     *UKBreakdown     `json:"uk,omitempty"`
		US     *USBreakdown     `json:"us,omitempty"`
		Canada *CanadaBreakdown `json:"canada,omitempty"`
		Dubai  *DubaiBreakdown  `json:"dubai,omitempty"`
	}

	// Assessment is the persisted outcome of one submission: the profile as
	// submitted plus the final numbers. No intermediate scoring state is
	// kept.
	Assessment struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Profile   Profile   `json:"profile"`
		Results   Results   `json:"results"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}
)

func (p *Profile) Validate(validate *validator.Validate) error {
	p.Education = core.CleanString(p.Education)
	p.Field = core.CleanString(p.Field)
	p.Language = core.CleanString(p.Language)
	p.Experience.Position = core.CleanString(p.Experience.Position)
	p.Achievement.Impact = core.CleanString(p.Achievement.Impact)
	p.FinancialCategory = core.CleanString(p.FinancialCategory)
	p.SalaryCategory = core.CleanString(p.SalaryCategory)
	p.PositionCategory = core.CleanString(p.PositionCategory)
	return validate.Struct(p)
}

func (p Profile) UKInput() UKInput {
	return UKInput{
		Education: p.Education,
		Field:     p.Field,
		Experience: UKExperienceInput{
			Years:    p.Experience.Years,
			Position: p.Experience.Position,
		},
		Achievement: UKAchievementInput{
			Count:  p.Achievement.Count,
			Impact: p.Achievement.Impact,
		},
	}
}

func (p Profile) USInput() USInput {
	return USInput{
		Education: p.Education,
		Field:     p.Field,
		Experience: USExperienceInput{
			Years:    p.Experience.Years,
			Position: p.Experience.Position,
		},
		Achievement: USAchievementInput{
			Count:  p.Achievement.Count,
			Impact: p.Achievement.Impact,
		},
	}
}

func (p Profile) CanadaInput() CanadaInput {
	return CanadaInput{
		Education: p.Education,
		Language:  p.Language,
		Experience: CanadaExperienceInput{
			Years:        p.Experience.Years,
			ForeignYears: p.Experience.ForeignYears,
		},
	}
}

func (p Profile) DubaiInput() DubaiInput {
	return DubaiInput{
		FinancialCategory: p.FinancialCategory,
		SalaryCategory:    p.SalaryCategory,
		PositionCategory:  p.PositionCategory,
	}
}
