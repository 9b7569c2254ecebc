package visa

import (
	"math"
	"testing"
)

// Shared rubric fixtures. zeroed() variants keep every table present (the
// structural contract holds) with all point values at 0.

func testUKRubric() *UKRubric {
	return &UKRubric{
		Education: UKEducationRubric{
			Scoring:             PointTable{"PhD": 100, "Masters": 80, "Bachelors": 60, "Diploma": 40, "Other": 20},
			FieldMultipliers:    PointTable{"STEMDigitalArts": 20, "BusinessEconomics": 10, "OtherFields": 0},
			InstitutionRankings: PointTable{"Top100Global": 20, "OtherAccredited": 0},
		},
		Experience: UKExperienceRubric{
			MinimumYearsRequired: 3,
			ExperiencePoints:     PointTable{"3-5Years": 60, "5-8Years": 80, "8+Years": 100},
			PositionMultipliers:  PointTable{"SeniorLevel": 10, "MidLevel": 5, "JuniorLevel": 0},
		},
		Achievements: UKAchievementsRubric{
			Required:          2,
			Scoring:           PointTable{"2Items": 30, "3Items": 40, "4PlusItems": 50},
			ImpactMultipliers: PointTable{"International": 20, "National": 10, "Regional": 5},
		},
	}
}

func zeroPointTable(t PointTable) PointTable {
	zeroed := make(PointTable, len(t))
	for key := range t {
		zeroed[key] = 0
	}
	return zeroed
}

func zeroUKRubric() *UKRubric {
	r := testUKRubric()
	r.Education.Scoring = zeroPointTable(r.Education.Scoring)
	r.Education.FieldMultipliers = zeroPointTable(r.Education.FieldMultipliers)
	r.Education.InstitutionRankings = zeroPointTable(r.Education.InstitutionRankings)
	r.Experience.ExperiencePoints = zeroPointTable(r.Experience.ExperiencePoints)
	r.Experience.PositionMultipliers = zeroPointTable(r.Experience.PositionMultipliers)
	r.Achievements.Scoring = zeroPointTable(r.Achievements.Scoring)
	r.Achievements.ImpactMultipliers = zeroPointTable(r.Achievements.ImpactMultipliers)
	return r
}

func testUSRubric() *USRubric {
	return &USRubric{
		Education: USEducationRubric{
			Scoring:          PointTable{"PhD": 100, "Masters": 80, "BachelorsExceptional": 60},
			FieldMultipliers: PointTable{"STEM": 20, "BusinessEconomics": 10, "ArtsCulture": 5},
		},
		Experience: USExperienceRubric{
			MinimumYearsRequired: 5,
			ExperiencePoints:     PointTable{"5-7Years": 60, "8-10Years": 80, "10+Years": 100},
		},
		Positions: PointTable{"Executive": 20, "SeniorManagement": 15, "Expert": 10, "Other": 0},
		Achievements: USAchievementsRubric{
			Required:          3,
			Scoring:           PointTable{"2Items": 30, "3Items": 40, "4PlusItems": 50},
			RecognitionLevels: PointTable{"International": 100, "National": 70, "Industry": 40},
		},
	}
}

func zeroUSRubric() *USRubric {
	r := testUSRubric()
	r.Education.Scoring = zeroPointTable(r.Education.Scoring)
	r.Education.FieldMultipliers = zeroPointTable(r.Education.FieldMultipliers)
	r.Experience.ExperiencePoints = zeroPointTable(r.Experience.ExperiencePoints)
	r.Positions = zeroPointTable(r.Positions)
	r.Achievements.Scoring = zeroPointTable(r.Achievements.Scoring)
	r.Achievements.RecognitionLevels = zeroPointTable(r.Achievements.RecognitionLevels)
	return r
}

func testCanadaRubric() *CanadaRubric {
	return &CanadaRubric{
		Education:           PointTable{"PhD": 100, "Masters": 90, "Bachelors": 80, "ThreeYearDiploma": 60, "OneTwoYearDiploma": 40},
		LanguageProficiency: PointTable{"CLB9Plus": 100, "CLB8": 80, "CLB7": 60, "CLB6": 40},
		WorkExperience: CanadaWorkExperienceRubric{
			Scoring:      PointTable{"1Year": 40, "2-3Years": 60, "4-5Years": 80, "6+Years": 100},
			ForeignBonus: PointTable{"1-2Years": 10, "3-4Years": 20, "5+Years": 30},
		},
	}
}

func zeroCanadaRubric() *CanadaRubric {
	r := testCanadaRubric()
	r.Education = zeroPointTable(r.Education)
	r.LanguageProficiency = zeroPointTable(r.LanguageProficiency)
	r.WorkExperience.Scoring = zeroPointTable(r.WorkExperience.Scoring)
	r.WorkExperience.ForeignBonus = zeroPointTable(r.WorkExperience.ForeignBonus)
	return r
}

func testDubaiRubric() *DubaiRubric {
	return &DubaiRubric{
		FinancialCriteria: PointTable{
			"PublicInvestment10MPlus":  100,
			"PublicInvestment5To10M":   80,
			"PrivateCompany5MPlus":     90,
			"PrivateCompany3To5M":      70,
			"PropertyInvestment2MPlus": 60,
			"PropertyInvestment1To2M":  40,
		},
		ProfessionalCriteria: PointTable{
			"Salary30KPlus":            100,
			"Salary20To30K":            70,
			"Salary15To20K":            40,
			"PositionCEOMD":            60,
			"PositionSeniorManagement": 40,
			"PositionDepartmentHead":   20,
		},
	}
}

func zeroDubaiRubric() *DubaiRubric {
	r := testDubaiRubric()
	r.FinancialCriteria = zeroPointTable(r.FinancialCriteria)
	r.ProfessionalCriteria = zeroPointTable(r.ProfessionalCriteria)
	return r
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func assertScore(t *testing.T, name string, got, want float64) {
	t.Helper()
	if !almostEqual(got, want) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
