package echoapi

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"testing"

	"github.com/visado/backend/core/user"
	"github.com/visado/backend/core/visa"
)

func seedRubrics(t *testing.T, svc visa.Service) {
	t.Helper()

	criteria := map[visa.Program]json.RawMessage{
		visa.ProgramUKGlobalTalent: json.RawMessage(`{
			"education": {
				"scoring": {"PhD": 100, "Masters": 80, "Bachelors": 60, "Diploma": 40, "Other": 20},
				"fieldMultipliers": {"STEMDigitalArts": 20, "BusinessEconomics": 10, "OtherFields": 0},
				"institutionRankings": {"Top100Global": 20, "OtherAccredited": 0}
			},
			"experience": {
				"minimumYearsRequired": 3,
				"experiencePoints": {"3-5Years": 60, "5-8Years": 80, "8+Years": 100},
				"positionMultipliers": {"SeniorLevel": 10, "MidLevel": 5, "JuniorLevel": 0}
			},
			"achievements": {
				"required": 2,
				"scoring": {"2Items": 30, "3Items": 40, "4PlusItems": 50},
				"impactMultipliers": {"International": 20, "National": 10, "Regional": 5}
			}
		}`),
		visa.ProgramUSEB1EB2: json.RawMessage(`{
			"education": {
				"scoring": {"PhD": 100, "Masters": 80, "BachelorsExceptional": 60},
				"fieldMultipliers": {"STEM": 20, "BusinessEconomics": 10, "ArtsCulture": 5}
			},
			"experience": {
				"minimumYearsRequired": 5,
				"experiencePoints": {"5-7Years": 60, "8-10Years": 80, "10+Years": 100}
			},
			"positions": {"Executive": 20, "SeniorManagement": 15, "Expert": 10, "Other": 0},
			"achievements": {
				"required": 3,
				"scoring": {"2Items": 30, "3Items": 40, "4PlusItems": 50},
				"recognitionLevels": {"International": 100, "National": 70, "Industry": 40}
			}
		}`),
		visa.ProgramCanadaExpressEntry: json.RawMessage(`{
			"education": {"PhD": 100, "Masters": 90, "Bachelors": 80, "ThreeYearDiploma": 60, "OneTwoYearDiploma": 40},
			"languageProficiency": {"CLB9Plus": 100, "CLB8": 80, "CLB7": 60, "CLB6": 40, "BelowCLB6": "Ineligible"},
			"workExperience": {
				"scoring": {"1Year": 40, "2-3Years": 60, "4-5Years": 80, "6+Years": 100},
				"foreignBonus": {"1-2Years": 10, "3-4Years": 20, "5+Years": 30}
			}
		}`),
		visa.ProgramDubaiGoldenVisa: json.RawMessage(`{
			"financialCriteria": {
				"PublicInvestment10MPlus": 100, "PublicInvestment5To10M": 80, "PrivateCompany5MPlus": 90,
				"PrivateCompany3To5M": 70, "PropertyInvestment2MPlus": 60, "PropertyInvestment1To2M": 40
			},
			"professionalCriteria": {
				"Salary30KPlus": 100, "Salary20To30K": 70, "Salary15To20K": 40,
				"PositionCEOMD": 60, "PositionSeniorManagement": 40, "PositionDepartmentHead": 20
			}
		}`),
	}
	for program, raw := range criteria {
		if _, err := svc.UpsertRubric(context.Background(), program, raw); err != nil {
			t.Fatalf("seedRubrics(%s) failed: %v", program, err)
		}
	}
}

func testProfile() visa.Profile {
	return visa.Profile{
		Education: "phd",
		Field:     "stem",
		Language:  "clb9plus",
		Experience: visa.ExperienceProfile{
			Years:        9,
			ForeignYears: 3,
			Position:     "SeniorLevel",
		},
		Achievement:       visa.AchievementProfile{Count: 5, Impact: "International"},
		FinancialCategory: "PublicInvestment10MPlus",
		SalaryCategory:    "Salary30KPlus",
		PositionCategory:  "CEO/MD",
	}
}

func Test_assessmentApi_create(t *testing.T) {
	app := setup(t)
	seedRubrics(t, app.visaSvc)

	client := createUser(t, app.usrRepo, "Client", "aclient", "client@test.test", "", []string{user.RoleClient}, true)
	admin := createUser(t, app.usrRepo, "CAdmin", "clientadmin", "cadmin@test.test", "", []string{user.RoleClientAdmin}, true)

	t.Run("all programs", func(t *testing.T) {
		body := marchallObj(t, AssessmentRequest{Profile: testProfile()})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", getToken(t, client), body)
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; want %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var ass visa.Assessment
		if err := json.Unmarshal(rec.Body.Bytes(), &ass); err != nil {
			t.Fatalf("unmarshalling Assessment: %v", err)
		}
		if ass.UserID != client.ID {
			t.Errorf("failed! user_id = %v; want %v", ass.UserID, client.ID)
		}
		if ass.Results.UK == nil || math.Abs(ass.Results.UK.FinalScore-80.5) > 1e-9 {
			t.Errorf("failed! UK = %+v; want FinalScore 80.5", ass.Results.UK)
		}
		if ass.Results.Dubai == nil || math.Abs(ass.Results.Dubai.FinalScore-130) > 1e-9 {
			t.Errorf("failed! Dubai = %+v; want FinalScore 130", ass.Results.Dubai)
		}
		if ass.Results.US == nil || ass.Results.Canada == nil {
			t.Error("failed! missing US or Canada breakdown")
		}
	})

	t.Run("selected program only", func(t *testing.T) {
		body := marchallObj(t, AssessmentRequest{
			Profile:  testProfile(),
			Programs: []visa.Program{visa.ProgramCanadaExpressEntry},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", getToken(t, client), body)
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; want %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var ass visa.Assessment
		if err := json.Unmarshal(rec.Body.Bytes(), &ass); err != nil {
			t.Fatalf("unmarshalling Assessment: %v", err)
		}
		if ass.Results.Canada == nil || ass.Results.UK != nil || ass.Results.US != nil || ass.Results.Dubai != nil {
			t.Errorf("failed! results = %+v; want Canada only", ass.Results)
		}
	})

	t.Run("unknown program", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"programs": "unknown visa program"}),
		}
		body := marchallObj(t, AssessmentRequest{
			Profile:  testProfile(),
			Programs: []visa.Program{"mars_colonist"},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", getToken(t, client), body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("admins cannot take assessments", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		}
		body := marchallObj(t, AssessmentRequest{Profile: testProfile()})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", getToken(t, admin), body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_assessmentApi_createMissingRubric(t *testing.T) {
	app := setup(t) // no rubrics seeded

	client := createUser(t, app.usrRepo, "Client", "aclient", "client@test.test", "", []string{user.RoleClient}, true)

	body := marchallObj(t, AssessmentRequest{Profile: testProfile()})
	req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", getToken(t, client), body)
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("failed! code = %v; want %v; body %v", rec.Code, http.StatusConflict, rec.Body.String())
	}
}

func Test_assessmentApi_query(t *testing.T) {
	app := setup(t)
	seedRubrics(t, app.visaSvc)
	ctx := context.Background()

	superAdmin := createUser(t, app.usrRepo, "Super", "superadmin", "super@test.test", "", []string{user.RoleSuperAdmin}, true)
	clientAdmin := createUser(t, app.usrRepo, "CAdmin", "clientadmin", "cadmin@test.test", "", []string{user.RoleClientAdmin}, true)
	client1 := createUser(t, app.usrRepo, "Client One", "client1x", "c1@test.test", "", []string{user.RoleClient}, true)
	client2 := createUser(t, app.usrRepo, "Client Two", "client2x", "c2@test.test", "", []string{user.RoleClient}, true)

	if err := app.usrSvc.AssignClient(ctx, user.NewAssignment{AdminID: clientAdmin.ID, ClientID: client1.ID}); err != nil {
		t.Fatalf("assigning client: %v", err)
	}

	for _, usr := range []user.User{client1, client1, client2} {
		if _, err := app.visaSvc.TakeAssessment(ctx, usr, testProfile()); err != nil {
			t.Fatalf("taking assessment: %v", err)
		}
	}

	count := func(t *testing.T, rec []byte) int {
		var assessments []visa.Assessment
		if err := json.Unmarshal(rec, &assessments); err != nil {
			t.Fatalf("unmarshalling []Assessment: %v", err)
		}
		return len(assessments)
	}

	t.Run("client sees own history only", func(t *testing.T) {
		// user_id filter is ignored for clients
		path := "/v1/assessments?" + url.Values{"user_id": {client2.ID}}.Encode()
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, client1))
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; want %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		if n := count(t, rec.Body.Bytes()); n != 2 {
			t.Errorf("failed! len = %v; want 2", n)
		}
	})

	t.Run("client admin sees an assigned client's history", func(t *testing.T) {
		path := "/v1/assessments?" + url.Values{"user_id": {client1.ID}}.Encode()
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, clientAdmin))
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; want %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		if n := count(t, rec.Body.Bytes()); n != 2 {
			t.Errorf("failed! len = %v; want 2", n)
		}
	})

	t.Run("client admin cannot browse unassigned clients", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		}
		path := "/v1/assessments?" + url.Values{"user_id": {client2.ID}}.Encode()
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, clientAdmin))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("super admin sees everything", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assessments", getToken(t, superAdmin))
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; want %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		if n := count(t, rec.Body.Bytes()); n != 3 {
			t.Errorf("failed! len = %v; want 3", n)
		}
	})
}

func Test_assessmentApi_retrieve(t *testing.T) {
	app := setup(t)
	seedRubrics(t, app.visaSvc)
	ctx := context.Background()

	client1 := createUser(t, app.usrRepo, "Client One", "client1x", "c1@test.test", "", []string{user.RoleClient}, true)
	client2 := createUser(t, app.usrRepo, "Client Two", "client2x", "c2@test.test", "", []string{user.RoleClient}, true)

	ass, err := app.visaSvc.TakeAssessment(ctx, client1, testProfile())
	if err != nil {
		t.Fatalf("taking assessment: %v", err)
	}

	t.Run("owner", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assessments/"+ass.ID, getToken(t, client1))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; want %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}
	})

	t.Run("another client", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/assessments/"+ass.ID, getToken(t, client2))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
