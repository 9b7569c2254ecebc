package visa

// Sub-score weights for the UK Global Talent program. The remaining 20%
// belongs to a program-criteria term that only the opt-in second stage
// (UKFinalScore) applies.
const (
	ukEducationWeight       = 0.25
	ukExperienceWeight      = 0.30
	ukAchievementsWeight    = 0.25
	ukProgramCriteriaWeight = 0.20
)

type (
	UKExperienceInput struct {
		Years    int    `json:"years"`
		Position string `json:"position"` // SeniorLevel | MidLevel | JuniorLevel
	}

	UKAchievementInput struct {
		Count  int    `json:"count"`
		Impact string `json:"impact"` // International | National | Regional
	}

	UKInput struct {
		Education   string             `json:"education"`
		Field       string             `json:"field"`
		Experience  UKExperienceInput  `json:"experience"`
		Achievement UKAchievementInput `json:"achievement"`
	}

	UKBreakdown struct {
		Education    float64 `json:"education"`
		Experience   float64 `json:"experience"`
		Achievements float64 `json:"achievements"`
		FinalScore   float64 `json:"final_score"`
	}
)

// ScoreUKGlobalTalent computes the UK Global Talent breakdown for one
// profile. Pure and stateless: the rubric and input are never mutated and
// identical inputs always yield identical output.
func ScoreUKGlobalTalent(in UKInput, r *UKRubric) (UKBreakdown, error) {
	if r == nil {
		return UKBreakdown{}, missingTable(ProgramUKGlobalTalent.DisplayName(), "criteria")
	}
	if err := r.Validate(); err != nil {
		return UKBreakdown{}, err
	}

	eduKey := mapUKEducation(in.Education)
	fieldKey := mapUKField(in.Field)

	eduBase := r.Education.Scoring[eduKey] +
		r.Education.FieldMultipliers[fieldKey] +
		r.Education.InstitutionRankings[ukInstitutionRanking]
	educationScore := eduBase * ukEducationWeight

	expBracket := ukExperienceBracket(in.Experience.Years)
	expBase := r.Experience.ExperiencePoints[expBracket] + r.Experience.PositionMultipliers[in.Experience.Position]
	experienceScore := expBase * ukExperienceWeight

	// The program requires at least 2 achievements; counts of 0 or 1
	// contribute no base points.
	var achBase float64
	switch {
	case in.Achievement.Count == 2:
		achBase = r.Achievements.Scoring["2Items"]
	case in.Achievement.Count == 3:
		achBase = r.Achievements.Scoring["3Items"]
	case in.Achievement.Count >= 4:
		achBase = r.Achievements.Scoring["4PlusItems"]
	}
	achBase += r.Achievements.ImpactMultipliers[in.Achievement.Impact]
	achievementsScore := achBase * ukAchievementsWeight

	return UKBreakdown{
		Education:    educationScore,
		Experience:   experienceScore,
		Achievements: achievementsScore,
		FinalScore:   educationScore + experienceScore + achievementsScore,
	}, nil
}

// Second-stage calculation: an opt-in aggregate pathway that re-weights raw
// sub-scores together with an explicit program-criteria term and applies
// success-factor adjustments. Kept separate from ScoreUKGlobalTalent on
// purpose; the per-request path never calls it.

type (
	UKBaseScores struct {
		Education       float64 `json:"education"`
		Experience      float64 `json:"experience"`
		Achievements    float64 `json:"achievements"`
		ProgramCriteria float64 `json:"program_criteria"`
	}

	UKAdjustments struct {
		InDemandSkills           bool    `json:"in_demand_skills"`
		MultipleQualifications   bool    `json:"multiple_qualifications"`
		LanguageProficiencyBonus float64 `json:"language_proficiency_bonus"` // percent, 5-15
		RegionalPriority         bool    `json:"regional_priority"`
		IncompleteDocumentation  bool    `json:"incomplete_documentation"`
		EmploymentGaps           bool    `json:"employment_gaps"`
		NonRelevantExperience    bool    `json:"non_relevant_experience"`
	}

	UKSuccessFactors struct {
		ProgramDifficulty     float64 `json:"program_difficulty"`
		HistoricalSuccessRate float64 `json:"historical_success_rate"`
		CurrentAcceptanceRate float64 `json:"current_acceptance_rate"`
	}
)

// UKFinalScore combines raw sub-scores at the stated program weights
// (25/30/25/20) and applies positive then negative adjustments
// multiplicatively, in a fixed order.
func UKFinalScore(base UKBaseScores, adj UKAdjustments) float64 {
	score := base.Education*ukEducationWeight +
		base.Experience*ukExperienceWeight +
		base.Achievements*ukAchievementsWeight +
		base.ProgramCriteria*ukProgramCriteriaWeight

	if adj.InDemandSkills {
		score *= 1.10
	}
	if adj.MultipleQualifications {
		score *= 1.05
	}
	if adj.LanguageProficiencyBonus != 0 {
		score *= 1 + adj.LanguageProficiencyBonus/100
	}
	if adj.RegionalPriority {
		score *= 1.05
	}

	if adj.IncompleteDocumentation {
		score *= 0.90
	}
	if adj.EmploymentGaps {
		score *= 0.95
	}
	if adj.NonRelevantExperience {
		score *= 0.90
	}

	return score
}

// UKSuccessProbability estimates the success probability for a final score:
// finalScore x programDifficulty x historicalSuccessRate x currentAcceptanceRate,
// capped at 100.
func UKSuccessProbability(finalScore float64, f UKSuccessFactors) float64 {
	probability := finalScore * f.ProgramDifficulty * f.HistoricalSuccessRate * f.CurrentAcceptanceRate
	if probability > 100 {
		return 100
	}
	return probability
}
