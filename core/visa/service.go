package visa

import (
	"context"
	"encoding/json"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/visado/backend/core"
	"github.com/visado/backend/core/user"
)

var (
	// errors
	ErrRubricNotFound     = errors.New("rubric not found")
	ErrAssessmentNotFound = errors.New("assessment not found")
)

type (
	AssessmentFilter struct {
		UserID      string    `query:"user_id"`
		CreatedFrom time.Time `query:"created_from"`
		CreatedTo   time.Time `query:"created_to"`
	}

	Repository interface {
		UpsertRubric(ctx context.Context, rub Rubric) (Rubric, error)
		GetRubric(ctx context.Context, program Program) (Rubric, error)
		QueryRubrics(ctx context.Context) ([]Rubric, error)
		CreateAssessment(ctx context.Context, ass Assessment) (Assessment, error)
		GetAssessment(ctx context.Context, id string) (Assessment, error)
		// QueryAssessments applies AND on available AssessmentFilter fields,
		// most recent first.
		QueryAssessments(ctx context.Context, filter AssessmentFilter) ([]Assessment, error)
	}

	Service interface {
		UpsertRubric(ctx context.Context, program Program, criteria json.RawMessage) (Rubric, error)
		GetRubric(ctx context.Context, program Program) (Rubric, error)
		QueryRubrics(ctx context.Context) ([]Rubric, error)
		// TakeAssessment scores the profile against the requested programs
		// (all of them when none is given), persists the outcome and mails
		// the client. A missing or malformed rubric aborts the whole
		// assessment.
		TakeAssessment(ctx context.Context, usr user.User, profile Profile, programs ...Program) (Assessment, error)
		GetAssessment(ctx context.Context, id string) (Assessment, error)
		QueryAssessments(ctx context.Context, filter AssessmentFilter) ([]Assessment, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
	}
}

func (svc *service) UpsertRubric(ctx context.Context, program Program, criteria json.RawMessage) (Rubric, error) {
	if !program.Valid() {
		return Rubric{}, core.NewValidationError(nil, core.FieldError{Field: "program", Error: "unknown visa program"})
	}

	now := time.Now().UTC()
	rub := Rubric{
		Program:   program,
		Criteria:  criteria,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := rub.Validate(); err != nil {
		return Rubric{}, core.NewValidationError(err, core.FieldError{Field: "criteria", Error: err.Error()})
	}
	return svc.repo.UpsertRubric(ctx, rub)
}

func (svc *service) GetRubric(ctx context.Context, program Program) (Rubric, error) {
	return svc.repo.GetRubric(ctx, program)
}

func (svc *service) QueryRubrics(ctx context.Context) ([]Rubric, error) {
	return svc.repo.QueryRubrics(ctx)
}

func (svc *service) TakeAssessment(ctx context.Context, usr user.User, profile Profile, programs ...Program) (Assessment, error) {
	if len(programs) == 0 {
		programs = Programs
	}

	ass := Assessment{
		UserID:    usr.ID,
		Profile:   profile,
		CreatedAt: time.Now().UTC(),
	}
	for _, program := range programs {
		rub, err := svc.repo.GetRubric(ctx, program)
		if err != nil {
			return Assessment{}, errors.Wrapf(err, "fetching %s rubric", program.DisplayName())
		}
		if err = svc.score(&ass, program, rub, profile); err != nil {
			return Assessment{}, err
		}
	}

	ass, err := svc.repo.CreateAssessment(ctx, ass)
	if err != nil {
		return Assessment{}, errors.Wrap(err, "persisting assessment")
	}

	svc.sendAssessmentCompletedMail(usr, ass)
	return ass, nil
}

// score runs the program's pure scorer and attaches the breakdown.
// Scorers never mutate or retain the rubric or profile; the only failure
// mode here is a rubric contract violation.
func (svc *service) score(ass *Assessment, program Program, rub Rubric, profile Profile) error {
	switch program {
	case ProgramUKGlobalTalent:
		ukr, err := rub.UK()
		if err != nil {
			return err
		}
		bd, err := ScoreUKGlobalTalent(profile.UKInput(), ukr)
		if err != nil {
			return err
		}
		ass.Results.UK = &bd
	case ProgramUSEB1EB2:
		usr, err := rub.US()
		if err != nil {
			return err
		}
		bd, err := ScoreUSEB1EB2(profile.USInput(), usr)
		if err != nil {
			return err
		}
		ass.Results.US = &bd
	case ProgramCanadaExpressEntry:
		car, err := rub.Canada()
		if err != nil {
			return err
		}
		bd, err := ScoreCanadaExpressEntry(profile.CanadaInput(), car)
		if err != nil {
			return err
		}
		ass.Results.Canada = &bd
	case ProgramDubaiGoldenVisa:
		dxr, err := rub.Dubai()
		if err != nil {
			return err
		}
		bd, err := ScoreDubaiGoldenVisa(profile.DubaiInput(), dxr)
		if err != nil {
			return err
		}
		ass.Results.Dubai = &bd
	default:
		return errors.Errorf("unknown visa program %q", program)
	}
	return nil
}

func (svc *service) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	return svc.repo.GetAssessment(ctx, id)
}

func (svc *service) QueryAssessments(ctx context.Context, filter AssessmentFilter) ([]Assessment, error) {
	return svc.repo.QueryAssessments(ctx, filter)
}

func (svc *service) sendAssessmentCompletedMail(usr user.User, ass Assessment) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Your eligibility assessment results",
		TemplateName: "assessment-completed",
		TemplateData: struct {
			Name    string
			Results Results
		}{usr.Name, ass.Results},
	})
}
