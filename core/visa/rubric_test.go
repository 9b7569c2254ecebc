package visa

import (
	"encoding/json"
	"testing"
)

func TestPointTableUnmarshalDropsNonNumeric(t *testing.T) {
	// legacy rubrics mark BelowCLB6 with a policy string, not points
	data := []byte(`{"CLB9Plus": 100, "CLB8": 80, "BelowCLB6": "Ineligible"}`)

	var tbl PointTable
	if err := json.Unmarshal(data, &tbl); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(tbl) != 2 {
		t.Errorf("len = %d, want 2", len(tbl))
	}
	if tbl["CLB9Plus"] != 100 || tbl["CLB8"] != 80 {
		t.Errorf("numeric entries lost: %v", tbl)
	}
	if _, ok := tbl["BelowCLB6"]; ok {
		t.Error("non-numeric entry should have been dropped")
	}
}

func TestRubricValidate(t *testing.T) {
	mustJSON := func(v interface{}) json.RawMessage {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		return data
	}

	tests := []struct {
		name    string
		rubric  Rubric
		wantErr bool
	}{
		{name: "uk valid", rubric: Rubric{Program: ProgramUKGlobalTalent, Criteria: mustJSON(testUKRubric())}},
		{name: "us valid", rubric: Rubric{Program: ProgramUSEB1EB2, Criteria: mustJSON(testUSRubric())}},
		{name: "canada valid", rubric: Rubric{Program: ProgramCanadaExpressEntry, Criteria: mustJSON(testCanadaRubric())}},
		{name: "dubai valid", rubric: Rubric{Program: ProgramDubaiGoldenVisa, Criteria: mustJSON(testDubaiRubric())}},
		{name: "uk missing tables", rubric: Rubric{Program: ProgramUKGlobalTalent, Criteria: []byte(`{}`)}, wantErr: true},
		{name: "dubai missing tables", rubric: Rubric{Program: ProgramDubaiGoldenVisa, Criteria: []byte(`{"financialCriteria":{"x":1}}`)}, wantErr: true},
		{name: "malformed json", rubric: Rubric{Program: ProgramUSEB1EB2, Criteria: []byte(`{`)}, wantErr: true},
		{name: "unknown program", rubric: Rubric{Program: "mars_colonist", Criteria: []byte(`{}`)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rubric.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProgramValid(t *testing.T) {
	for _, program := range Programs {
		if !program.Valid() {
			t.Errorf("%s should be valid", program)
		}
	}
	if Program("mars_colonist").Valid() {
		t.Error("unknown program should not be valid")
	}
}
