package visa_test

import (
	"context"
	"encoding/json"
	"log"
	"net/mail"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visado/backend/core"
	"github.com/visado/backend/core/user"
	"github.com/visado/backend/core/visa"
	emailsvc "github.com/visado/backend/services/email"
	logsvc "github.com/visado/backend/services/logger"
	dummydb "github.com/visado/backend/storage/database/dummy"
)

var (
	ukCriteria = json.RawMessage(`{
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
}`)

	usCriteria = json.RawMessage(`{
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
}`)

	canadaCriteria = json.RawMessage(`{
  "education": {"PhD": 100, "Masters": 90, "Bachelors": 80, "ThreeYearDiploma": 60, "OneTwoYearDiploma": 40},
  "languageProficiency": {"CLB9Plus": 100, "CLB8": 80, "CLB7": 60, "CLB6": 40, "BelowCLB6": "Ineligible"},
  "workExperience": {
    "scoring": {"1Year": 40, "2-3Years": 60, "4-5Years": 80, "6+Years": 100},
    "foreignBonus": {"1-2Years": 10, "3-4Years": 20, "5+Years": 30}
  }
}`)

	dubaiCriteria = json.RawMessage(`{
  "financialCriteria": {
    "PublicInvestment10MPlus": 100, "PublicInvestment5To10M": 80, "PrivateCompany5MPlus": 90,
    "PrivateCompany3To5M": 70, "PropertyInvestment2MPlus": 60, "PropertyInvestment1To2M": 40
  },
  "professionalCriteria": {
    "Salary30KPlus": 100, "Salary20To30K": 70, "Salary15To20K": 40,
    "PositionCEOMD": 60, "PositionSeniorManagement": 40, "PositionDepartmentHead": 20
  }
}`)
)

func newTestService(t *testing.T) (visa.Service, visa.Repository, *core.Config) {
	t.Helper()

	conf := &core.Config{
		AppName:          "Visado",
		TestMode:         true,
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Visado", Address: "noreply@localhost"},
		WorkDir:          core.Getwd(),
	}
	core.ParseEmailTemplates(conf, logsvc.NewStdLogger(log.New(os.Stdout, "", 0)))

	db, err := dummydb.Open()
	require.NoError(t, err)

	repo := dummydb.NewVisaRepository(db)
	return visa.NewService(repo, emailsvc.NewConsoleServiceMock(conf)), repo, conf
}

func seedRubrics(t *testing.T, svc visa.Service) {
	t.Helper()
	ctx := context.Background()
	for program, criteria := range map[visa.Program]json.RawMessage{
		visa.ProgramUKGlobalTalent:     ukCriteria,
		visa.ProgramUSEB1EB2:           usCriteria,
		visa.ProgramCanadaExpressEntry: canadaCriteria,
		visa.ProgramDubaiGoldenVisa:    dubaiCriteria,
	} {
		_, err := svc.UpsertRubric(ctx, program, criteria)
		require.NoErrorf(t, err, "seeding %s rubric", program)
	}
}

func TestServiceUpsertRubric(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rub, err := svc.UpsertRubric(ctx, visa.ProgramUKGlobalTalent, ukCriteria)
	require.NoError(t, err)
	assert.NotEmpty(t, rub.ID)
	assert.Equal(t, visa.ProgramUKGlobalTalent, rub.Program)

	// replacing keeps identity
	rub2, err := svc.UpsertRubric(ctx, visa.ProgramUKGlobalTalent, ukCriteria)
	require.NoError(t, err)
	assert.Equal(t, rub.ID, rub2.ID)

	// unknown program
	_, err = svc.UpsertRubric(ctx, "mars_colonist", ukCriteria)
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)

	// structurally invalid criteria
	_, err = svc.UpsertRubric(ctx, visa.ProgramDubaiGoldenVisa, json.RawMessage(`{"financialCriteria": {"x": 1}}`))
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestServiceTakeAssessment(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedRubrics(t, svc)
	emailsvc.ClearSentMessages()
	ctx := context.Background()

	usr := user.User{ID: "client-1", Name: "T Client", Email: "client@test.test"}
	profile := visa.Profile{
		Education: "phd",
		Field:     "stem",
		Language:  "clb9plus",
		Experience: visa.ExperienceProfile{
			Years:        9,
			ForeignYears: 3,
			Position:     "SeniorLevel",
		},
		Achievement: visa.AchievementProfile{Count: 5, Impact: "International"},
		FinancialCategory: "PublicInvestment10MPlus",
		SalaryCategory:    "Salary30KPlus",
		PositionCategory:  "CEO/MD",
	}

	ass, err := svc.TakeAssessment(ctx, usr, profile)
	require.NoError(t, err)
	assert.NotEmpty(t, ass.ID)
	assert.Equal(t, usr.ID, ass.UserID)

	require.NotNil(t, ass.Results.UK)
	assert.InDelta(t, 80.5, ass.Results.UK.FinalScore, 1e-9)
	require.NotNil(t, ass.Results.US)
	require.NotNil(t, ass.Results.Canada)
	require.NotNil(t, ass.Results.Dubai)
	assert.InDelta(t, 130, ass.Results.Dubai.FinalScore, 1e-9)

	// persisted
	saved, err := repo.GetAssessment(ctx, ass.ID)
	require.NoError(t, err)
	assert.Equal(t, ass.ID, saved.ID)

	// client notified
	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, "assessment-completed", msg.TemplateName)
	assert.Contains(t, msg.TextContent, "80.5")
}

func TestServiceTakeAssessment_singleProgram(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedRubrics(t, svc)
	ctx := context.Background()

	usr := user.User{ID: "client-2", Name: "T", Email: "t@test.test"}
	ass, err := svc.TakeAssessment(ctx, usr, visa.Profile{Education: "masters"}, visa.ProgramCanadaExpressEntry)
	require.NoError(t, err)

	assert.NotNil(t, ass.Results.Canada)
	assert.Nil(t, ass.Results.UK)
	assert.Nil(t, ass.Results.US)
	assert.Nil(t, ass.Results.Dubai)
}

func TestServiceTakeAssessment_missingRubricAborts(t *testing.T) {
	svc, _, _ := newTestService(t) // no rubrics seeded

	_, err := svc.TakeAssessment(context.Background(), user.User{ID: "client-3"}, visa.Profile{Education: "phd"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "rubric not found"))
}

func TestServiceQueryAssessments(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedRubrics(t, svc)
	ctx := context.Background()

	usr1 := user.User{ID: "client-a", Name: "A", Email: "a@test.test"}
	usr2 := user.User{ID: "client-b", Name: "B", Email: "b@test.test"}
	_, err := svc.TakeAssessment(ctx, usr1, visa.Profile{Education: "phd"})
	require.NoError(t, err)
	_, err = svc.TakeAssessment(ctx, usr1, visa.Profile{Education: "masters"})
	require.NoError(t, err)
	_, err = svc.TakeAssessment(ctx, usr2, visa.Profile{Education: "bachelors"})
	require.NoError(t, err)

	all, err := svc.QueryAssessments(ctx, visa.AssessmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.QueryAssessments(ctx, visa.AssessmentFilter{UserID: usr1.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
