package visa

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Program identifies a supported visa program.
type Program string

const (
	ProgramUKGlobalTalent     Program = "uk_global_talent"
	ProgramUSEB1EB2           Program = "us_eb1_eb2"
	ProgramCanadaExpressEntry Program = "canada_express_entry"
	ProgramDubaiGoldenVisa    Program = "dubai_golden_visa"
)

var Programs = []Program{
	ProgramUKGlobalTalent,
	ProgramUSEB1EB2,
	ProgramCanadaExpressEntry,
	ProgramDubaiGoldenVisa,
}

func (p Program) Valid() bool {
	for _, known := range Programs {
		if p == known {
			return true
		}
	}
	return false
}

// DisplayName returns the program name as shown to admins and end users.
func (p Program) DisplayName() string {
	switch p {
	case ProgramUKGlobalTalent:
		return "UK Global Talent Visa"
	case ProgramUSEB1EB2:
		return "US EB-1/EB-2 Visa"
	case ProgramCanadaExpressEntry:
		return "Canada Express Entry"
	case ProgramDubaiGoldenVisa:
		return "Dubai Golden Visa"
	}
	return string(p)
}

// Rubric is an admin-authored table of point values and multipliers for one
// visa program. Criteria holds the program-specific table as stored (JSONB);
// it is decoded into the typed per-program rubric before scoring.
// Rubrics are versioned by replacement only.
type Rubric struct {
	ID        string          `json:"id"`
	Program   Program         `json:"program"`
	Criteria  json.RawMessage `json:"criteria"`
	CreatedAt time.Time       `json:"created_at"` // UTC
	UpdatedAt time.Time       `json:"updated_at"` // UTC
}

// Validate decodes Criteria into the program's typed rubric and checks that
// every table the scorer reads is present. Called when an admin uploads a
// rubric and again before scoring; a failure here is a contract violation,
// never a scoring fallback.
func (r Rubric) Validate() error {
	switch r.Program {
	case ProgramUKGlobalTalent:
		ukr, err := r.UK()
		if err != nil {
			return err
		}
		return ukr.Validate()
	case ProgramUSEB1EB2:
		usr, err := r.US()
		if err != nil {
			return err
		}
		return usr.Validate()
	case ProgramCanadaExpressEntry:
		car, err := r.Canada()
		if err != nil {
			return err
		}
		return car.Validate()
	case ProgramDubaiGoldenVisa:
		dxr, err := r.Dubai()
		if err != nil {
			return err
		}
		return dxr.Validate()
	}
	return errors.Errorf("unknown visa program %q", r.Program)
}

func (r Rubric) UK() (*UKRubric, error) {
	var ukr UKRubric
	if err := json.Unmarshal(r.Criteria, &ukr); err != nil {
		return nil, errors.Wrap(err, "decoding uk global talent rubric")
	}
	return &ukr, nil
}

func (r Rubric) US() (*USRubric, error) {
	var usr USRubric
	if err := json.Unmarshal(r.Criteria, &usr); err != nil {
		return nil, errors.Wrap(err, "decoding us eb-1/eb-2 rubric")
	}
	return &usr, nil
}

func (r Rubric) Canada() (*CanadaRubric, error) {
	var car CanadaRubric
	if err := json.Unmarshal(r.Criteria, &car); err != nil {
		return nil, errors.Wrap(err, "decoding canada express entry rubric")
	}
	return &car, nil
}

func (r Rubric) Dubai() (*DubaiRubric, error) {
	var dxr DubaiRubric
	if err := json.Unmarshal(r.Criteria, &dxr); err != nil {
		return nil, errors.Wrap(err, "decoding dubai golden visa rubric")
	}
	return &dxr, nil
}

// PointTable is a flat rubric-key -> points lookup.
type PointTable map[string]float64

// UnmarshalJSON drops non-numeric entries instead of failing: legacy rubrics
// mark Canada's BelowCLB6 with the literal "Ineligible", which is policy, not
// points (the scorer short-circuits on that key before any lookup).
func (t *PointTable) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tbl := make(PointTable, len(raw))
	for key, val := range raw {
		var pts float64
		if err := json.Unmarshal(val, &pts); err != nil {
			continue
		}
		tbl[key] = pts
	}
	*t = tbl
	return nil
}

func missingTable(program, table string) error {
	return errors.Errorf("%s rubric: missing %s table", program, table)
}

type (
	UKEducationRubric struct {
		Scoring             PointTable `json:"scoring"`
		FieldMultipliers    PointTable `json:"fieldMultipliers"`
		InstitutionRankings PointTable `json:"institutionRankings"`
	}

	UKExperienceRubric struct {
		MinimumYearsRequired int        `json:"minimumYearsRequired"`
		ExperiencePoints     PointTable `json:"experiencePoints"`
		PositionMultipliers  PointTable `json:"positionMultipliers"`
	}

	UKAchievementsRubric struct {
		Required          int        `json:"required"`
		Scoring           PointTable `json:"scoring"`
		ImpactMultipliers PointTable `json:"impactMultipliers"`
	}

	UKRubric struct {
		Education    UKEducationRubric    `json:"education"`
		Experience   UKExperienceRubric   `json:"experience"`
		Achievements UKAchievementsRubric `json:"achievements"`
	}
)

func (r *UKRubric) Validate() error {
	program := ProgramUKGlobalTalent.DisplayName()
	switch {
	case r.Education.Scoring == nil:
		return missingTable(program, "education.scoring")
	case r.Education.FieldMultipliers == nil:
		return missingTable(program, "education.fieldMultipliers")
	case r.Education.InstitutionRankings == nil:
		return missingTable(program, "education.institutionRankings")
	case r.Experience.ExperiencePoints == nil:
		return missingTable(program, "experience.experiencePoints")
	case r.Experience.PositionMultipliers == nil:
		return missingTable(program, "experience.positionMultipliers")
	case r.Achievements.Scoring == nil:
		return missingTable(program, "achievements.scoring")
	case r.Achievements.ImpactMultipliers == nil:
		return missingTable(program, "achievements.impactMultipliers")
	}
	return nil
}

type (
	USEducationRubric struct {
		Scoring          PointTable `json:"scoring"`
		FieldMultipliers PointTable `json:"fieldMultipliers"`
	}

	USExperienceRubric struct {
		MinimumYearsRequired int        `json:"minimumYearsRequired"`
		ExperiencePoints     PointTable `json:"experiencePoints"`
	}

	// USAchievementsRubric models a required achievement count and a
	// per-count scoring table that the US scorer deliberately does not
	// read; only RecognitionLevels affects the score.
	USAchievementsRubric struct {
		Required          int        `json:"required"`
		Scoring           PointTable `json:"scoring"`
		RecognitionLevels PointTable `json:"recognitionLevels"`
	}

	USRubric struct {
		Education    USEducationRubric    `json:"education"`
		Experience   USExperienceRubric   `json:"experience"`
		Positions    PointTable           `json:"positions"`
		Achievements USAchievementsRubric `json:"achievements"`
	}
)

func (r *USRubric) Validate() error {
	program := ProgramUSEB1EB2.DisplayName()
	switch {
	case r.Education.Scoring == nil:
		return missingTable(program, "education.scoring")
	case r.Education.FieldMultipliers == nil:
		return missingTable(program, "education.fieldMultipliers")
	case r.Experience.ExperiencePoints == nil:
		return missingTable(program, "experience.experiencePoints")
	case r.Positions == nil:
		return missingTable(program, "positions")
	case r.Achievements.RecognitionLevels == nil:
		return missingTable(program, "achievements.recognitionLevels")
	}
	return nil
}

type (
	CanadaWorkExperienceRubric struct {
		Scoring      PointTable `json:"scoring"`
		ForeignBonus PointTable `json:"foreignBonus"`
	}

	CanadaRubric struct {
		Education           PointTable                 `json:"education"`
		LanguageProficiency PointTable                 `json:"languageProficiency"`
		WorkExperience      CanadaWorkExperienceRubric `json:"workExperience"`
	}
)

func (r *CanadaRubric) Validate() error {
	program := ProgramCanadaExpressEntry.DisplayName()
	switch {
	case r.Education == nil:
		return missingTable(program, "education")
	case r.LanguageProficiency == nil:
		return missingTable(program, "languageProficiency")
	case r.WorkExperience.Scoring == nil:
		return missingTable(program, "workExperience.scoring")
	case r.WorkExperience.ForeignBonus == nil:
		return missingTable(program, "workExperience.foreignBonus")
	}
	return nil
}

type DubaiRubric struct {
	FinancialCriteria    PointTable `json:"financialCriteria"`
	ProfessionalCriteria PointTable `json:"professionalCriteria"`
}

func (r *DubaiRubric) Validate() error {
	program := ProgramDubaiGoldenVisa.DisplayName()
	switch {
	case r.FinancialCriteria == nil:
		return missingTable(program, "financialCriteria")
	case r.ProfessionalCriteria == nil:
		return missingTable(program, "professionalCriteria")
	}
	return nil
}
