package visa

import (
	"strings"
	"testing"
)

func TestScoreUKGlobalTalent(t *testing.T) {
	in := UKInput{
		Education:   "phd",
		Field:       "stem",
		Experience:  UKExperienceInput{Years: 9, Position: "SeniorLevel"},
		Achievement: UKAchievementInput{Count: 5, Impact: "International"},
	}

	got, err := ScoreUKGlobalTalent(in, testUKRubric())
	if err != nil {
		t.Fatalf("ScoreUKGlobalTalent() error = %v", err)
	}
	assertScore(t, "Education", got.Education, 30)        // (100+20+0) x 0.25
	assertScore(t, "Experience", got.Experience, 33)      // (100+10) x 0.30
	assertScore(t, "Achievements", got.Achievements, 17.5) // (50+20) x 0.25
	assertScore(t, "FinalScore", got.FinalScore, 80.5)
}

func TestScoreUKGlobalTalent_lowAchievementCount(t *testing.T) {
	r := testUKRubric()
	for _, count := range []int{0, 1} {
		in := UKInput{Achievement: UKAchievementInput{Count: count, Impact: "International"}}
		got, err := ScoreUKGlobalTalent(in, r)
		if err != nil {
			t.Fatalf("ScoreUKGlobalTalent() error = %v", err)
		}
		// base contributes 0; only the impact multiplier remains
		assertScore(t, "Achievements", got.Achievements, r.Achievements.ImpactMultipliers["International"]*0.25)
	}
}

func TestScoreUKGlobalTalent_zeroRubric(t *testing.T) {
	in := UKInput{
		Education:   "masters",
		Field:       "economics",
		Experience:  UKExperienceInput{Years: 6, Position: "MidLevel"},
		Achievement: UKAchievementInput{Count: 3, Impact: "National"},
	}
	got, err := ScoreUKGlobalTalent(in, zeroUKRubric())
	if err != nil {
		t.Fatalf("ScoreUKGlobalTalent() error = %v", err)
	}
	assertScore(t, "FinalScore", got.FinalScore, 0)
}

func TestScoreUKGlobalTalent_unknownCategories(t *testing.T) {
	// unknown free text resolves to defaults, never errors
	in := UKInput{Education: "xyz", Field: "alchemy"}
	got, err := ScoreUKGlobalTalent(in, testUKRubric())
	if err != nil {
		t.Fatalf("ScoreUKGlobalTalent() error = %v", err)
	}
	// Other=20 + OtherFields=0 + OtherAccredited=0
	assertScore(t, "Education", got.Education, 20*0.25)
}

func TestScoreUKGlobalTalent_contractViolations(t *testing.T) {
	if _, err := ScoreUKGlobalTalent(UKInput{}, nil); err == nil {
		t.Fatal("expected error for nil rubric")
	}

	r := testUKRubric()
	r.Education.InstitutionRankings = nil
	_, err := ScoreUKGlobalTalent(UKInput{}, r)
	if err == nil {
		t.Fatal("expected error for missing table")
	}
	if !strings.Contains(err.Error(), "institutionRankings") {
		t.Errorf("error should name the missing table, got %q", err)
	}
}

func TestUKFinalScore(t *testing.T) {
	base := UKBaseScores{Education: 100, Experience: 100, Achievements: 100, ProgramCriteria: 100}

	tests := []struct {
		name string
		adj  UKAdjustments
		want float64
	}{
		{name: "no adjustments", want: 100},
		{name: "in-demand skills", adj: UKAdjustments{InDemandSkills: true}, want: 110},
		{name: "multiple qualifications", adj: UKAdjustments{MultipleQualifications: true}, want: 105},
		{name: "language bonus", adj: UKAdjustments{LanguageProficiencyBonus: 10}, want: 110},
		{name: "regional priority", adj: UKAdjustments{RegionalPriority: true}, want: 105},
		{name: "incomplete documentation", adj: UKAdjustments{IncompleteDocumentation: true}, want: 90},
		{name: "employment gaps", adj: UKAdjustments{EmploymentGaps: true}, want: 95},
		{name: "non-relevant experience", adj: UKAdjustments{NonRelevantExperience: true}, want: 90},
		{
			name: "stacked",
			adj:  UKAdjustments{InDemandSkills: true, EmploymentGaps: true},
			want: 100 * 1.10 * 0.95,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertScore(t, "UKFinalScore", UKFinalScore(base, tt.adj), tt.want)
		})
	}
}

func TestUKSuccessProbability(t *testing.T) {
	f := UKSuccessFactors{ProgramDifficulty: 0.8, HistoricalSuccessRate: 0.9, CurrentAcceptanceRate: 0.7}
	assertScore(t, "UKSuccessProbability", UKSuccessProbability(80, f), 80*0.8*0.9*0.7)

	// capped at 100
	assertScore(t, "UKSuccessProbability", UKSuccessProbability(1000, UKSuccessFactors{ProgramDifficulty: 1, HistoricalSuccessRate: 1, CurrentAcceptanceRate: 1}), 100)
}
