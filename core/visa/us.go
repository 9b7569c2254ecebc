package visa

const (
	usEducationWeight    = 0.25
	usExperienceWeight   = 0.30
	usAchievementsWeight = 0.25
)

type (
	USExperienceInput struct {
		Years    int    `json:"years"`
		Position string `json:"position"` // Executive | SeniorManagement | Expert | Other
	}

	USAchievementInput struct {
		// Count is collected but does not affect the score: the current
		// rubric scores recognition level only.
		Count  int    `json:"count"`
		Impact string `json:"impact"` // International | National | Industry
	}

	USInput struct {
		Education   string             `json:"education"`
		Field       string             `json:"field"`
		Experience  USExperienceInput  `json:"experience"`
		Achievement USAchievementInput `json:"achievement"`
	}

	USBreakdown struct {
		Education    float64 `json:"education"`
		Experience   float64 `json:"experience"`
		Achievements float64 `json:"achievements"`
		FinalScore   float64 `json:"final_score"`
	}
)

// ScoreUSEB1EB2 computes the US EB-1/EB-2 breakdown for one profile.
func ScoreUSEB1EB2(in USInput, r *USRubric) (USBreakdown, error) {
	if r == nil {
		return USBreakdown{}, missingTable(ProgramUSEB1EB2.DisplayName(), "criteria")
	}
	if err := r.Validate(); err != nil {
		return USBreakdown{}, err
	}

	eduKey := mapUSEducation(in.Education)
	fieldKey := mapUSField(in.Field)
	eduBase := r.Education.Scoring[eduKey] + r.Education.FieldMultipliers[fieldKey]
	educationScore := eduBase * usEducationWeight

	expBracket := usExperienceBracket(in.Experience.Years)
	expBase := r.Experience.ExperiencePoints[expBracket] + r.Positions[in.Experience.Position]
	experienceScore := expBase * usExperienceWeight

	achBase := r.Achievements.RecognitionLevels[in.Achievement.Impact]
	achievementsScore := achBase * usAchievementsWeight

	return USBreakdown{
		Education:    educationScore,
		Experience:   experienceScore,
		Achievements: achievementsScore,
		FinalScore:   educationScore + experienceScore + achievementsScore,
	}, nil
}
