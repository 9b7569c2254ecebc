package visa

import (
	"strings"
	"testing"
)

func TestScoreCanadaExpressEntry(t *testing.T) {
	in := CanadaInput{
		Education:  "masters",
		Language:   "clb9plus",
		Experience: CanadaExperienceInput{Years: 4, ForeignYears: 3},
	}

	got, err := ScoreCanadaExpressEntry(in, testCanadaRubric())
	if err != nil {
		t.Fatalf("ScoreCanadaExpressEntry() error = %v", err)
	}
	assertScore(t, "Education", got.Education, 90*0.25)
	assertScore(t, "Language", got.Language, 100*0.25)
	assertScore(t, "WorkExperience", got.WorkExperience, (80+20)*0.50)
	assertScore(t, "FinalScore", got.FinalScore, 22.5+25+50)
}

func TestScoreCanadaExpressEntry_belowCLB6Ineligible(t *testing.T) {
	r := testCanadaRubric()
	for _, lang := range []string{"below clb6", "Below CLB6", "BELOW CLB6"} {
		in := CanadaInput{
			Education:  "phd",
			Language:   lang,
			Experience: CanadaExperienceInput{Years: 6, ForeignYears: 5},
		}
		got, err := ScoreCanadaExpressEntry(in, r)
		if err != nil {
			t.Fatalf("ScoreCanadaExpressEntry() error = %v", err)
		}
		assertScore(t, "Education", got.Education, 100*0.25)
		assertScore(t, "Language", got.Language, 0)
		assertScore(t, "WorkExperience", got.WorkExperience, 0)
		assertScore(t, "FinalScore", got.FinalScore, 0)
	}
}

func TestScoreCanadaExpressEntry_foreignBonusBrackets(t *testing.T) {
	r := testCanadaRubric()
	in := CanadaInput{Education: "bachelors", Language: "clb7", Experience: CanadaExperienceInput{Years: 2}}

	tests := []struct {
		foreignYears int
		wantBonus    float64
	}{
		{foreignYears: 0, wantBonus: 0},
		{foreignYears: 1, wantBonus: 10}, // 1-2Years
		{foreignYears: 3, wantBonus: 20}, // 3-4Years
		{foreignYears: 5, wantBonus: 30}, // 5+Years
	}
	for _, tt := range tests {
		in.Experience.ForeignYears = tt.foreignYears
		got, err := ScoreCanadaExpressEntry(in, r)
		if err != nil {
			t.Fatalf("ScoreCanadaExpressEntry() error = %v", err)
		}
		assertScore(t, "WorkExperience", got.WorkExperience, (60+tt.wantBonus)*0.50)
	}
}

func TestScoreCanadaExpressEntry_zeroRubric(t *testing.T) {
	in := CanadaInput{
		Education:  "phd",
		Language:   "clb8",
		Experience: CanadaExperienceInput{Years: 6, ForeignYears: 5},
	}
	got, err := ScoreCanadaExpressEntry(in, zeroCanadaRubric())
	if err != nil {
		t.Fatalf("ScoreCanadaExpressEntry() error = %v", err)
	}
	assertScore(t, "FinalScore", got.FinalScore, 0)
}

func TestScoreCanadaExpressEntry_contractViolations(t *testing.T) {
	if _, err := ScoreCanadaExpressEntry(CanadaInput{}, nil); err == nil {
		t.Fatal("expected error for nil rubric")
	}

	r := testCanadaRubric()
	r.WorkExperience.ForeignBonus = nil
	_, err := ScoreCanadaExpressEntry(CanadaInput{}, r)
	if err == nil {
		t.Fatal("expected error for missing table")
	}
	if !strings.Contains(err.Error(), "foreignBonus") {
		t.Errorf("error should name the missing table, got %q", err)
	}
}
