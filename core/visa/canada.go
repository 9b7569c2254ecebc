package visa

// Canada weights: education 25% + language 25% + work experience 50%.
// This program has no separate adjustment pass.
const (
	canadaEducationWeight  = 0.25
	canadaLanguageWeight   = 0.25
	canadaExperienceWeight = 0.50
)

type (
	CanadaExperienceInput struct {
		Years        int `json:"years"`         // Canadian work experience
		ForeignYears int `json:"foreign_years"` // foreign work experience (bonus)
	}

	CanadaInput struct {
		Education  string                `json:"education"`
		Language   string                `json:"language"` // CLB-coded, eg. "clb8", "below clb6"
		Experience CanadaExperienceInput `json:"experience"`
	}

	CanadaBreakdown struct {
		Education      float64 `json:"education"`
		Language       float64 `json:"language"`
		WorkExperience float64 `json:"work_experience"`
		FinalScore     float64 `json:"final_score"`
	}
)

// ScoreCanadaExpressEntry computes the Canada Express Entry breakdown for
// one profile. A language level below CLB6 makes the candidate ineligible:
// the whole assessment is zeroed, not just the language component.
func ScoreCanadaExpressEntry(in CanadaInput, r *CanadaRubric) (CanadaBreakdown, error) {
	if r == nil {
		return CanadaBreakdown{}, missingTable(ProgramCanadaExpressEntry.DisplayName(), "criteria")
	}
	if err := r.Validate(); err != nil {
		return CanadaBreakdown{}, err
	}

	eduKey := mapCanadaEducation(in.Education)
	educationScore := r.Education[eduKey] * canadaEducationWeight

	langKey := mapCanadaLanguage(in.Language)
	if langKey == CLBIneligible {
		return CanadaBreakdown{Education: educationScore}, nil
	}
	languageScore := r.LanguageProficiency[langKey] * canadaLanguageWeight

	workBase := r.WorkExperience.Scoring[canadaWorkBracket(in.Experience.Years)]
	var workBonus float64
	if bracket := canadaForeignBracket(in.Experience.ForeignYears); bracket != "" {
		workBonus = r.WorkExperience.ForeignBonus[bracket]
	}
	workExperienceScore := (workBase + workBonus) * canadaExperienceWeight

	return CanadaBreakdown{
		Education:      educationScore,
		Language:       languageScore,
		WorkExperience: workExperienceScore,
		FinalScore:     educationScore + languageScore + workExperienceScore,
	}, nil
}
