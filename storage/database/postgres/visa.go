package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/visado/backend/core/visa"
)

type dbRubric struct {
	ID        string          `db:"id"`
	Program   string          `db:"program"`
	Criteria  json.RawMessage `db:"criteria"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (dr dbRubric) toRubric() visa.Rubric {
	return visa.Rubric{
		ID:        dr.ID,
		Program:   visa.Program(dr.Program),
		Criteria:  dr.Criteria,
		CreatedAt: dr.CreatedAt,
		UpdatedAt: dr.UpdatedAt,
	}
}

type dbAssessment struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	Profile   json.RawMessage `db:"profile"`
	Results   json.RawMessage `db:"results"`
	CreatedAt time.Time       `db:"created_at"`
}

func (da dbAssessment) toAssessment() (visa.Assessment, error) {
	ass := visa.Assessment{
		ID:        da.ID,
		UserID:    da.UserID,
		CreatedAt: da.CreatedAt,
	}
	if err := json.Unmarshal(da.Profile, &ass.Profile); err != nil {
		return visa.Assessment{}, errors.Wrap(err, "decoding assessment profile")
	}
	if err := json.Unmarshal(da.Results, &ass.Results); err != nil {
		return visa.Assessment{}, errors.Wrap(err, "decoding assessment results")
	}
	return ass, nil
}

type visaRepository struct {
	db *sqlx.DB
}

var _ visa.Repository = (*visaRepository)(nil) // interface compliance check

func NewVisaRepository(db *sqlx.DB) visa.Repository {
	return &visaRepository{db: db}
}

func (repo *visaRepository) UpsertRubric(ctx context.Context, rub visa.Rubric) (visa.Rubric, error) {
	query := `
INSERT INTO rubric (program, criteria, created_at, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (program) DO UPDATE SET criteria = EXCLUDED.criteria, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	err := repo.db.QueryRowxContext(
		ctx, query,
		string(rub.Program), []byte(rub.Criteria), rub.CreatedAt, rub.UpdatedAt,
	).Scan(&rub.ID, &rub.CreatedAt)
	if err != nil {
		return visa.Rubric{}, errors.Wrap(err, "upserting rubric")
	}
	return rub, nil
}

func (repo *visaRepository) GetRubric(ctx context.Context, program visa.Program) (visa.Rubric, error) {
	var dr dbRubric
	if err := repo.db.GetContext(ctx, &dr, `SELECT * FROM rubric WHERE program = $1`, string(program)); err != nil {
		if err == sql.ErrNoRows {
			return visa.Rubric{}, visa.ErrRubricNotFound
		}
		return visa.Rubric{}, errors.Wrap(err, "getting rubric")
	}
	return dr.toRubric(), nil
}

func (repo *visaRepository) QueryRubrics(ctx context.Context) ([]visa.Rubric, error) {
	var dbRubrics []dbRubric
	if err := repo.db.SelectContext(ctx, &dbRubrics, `SELECT * FROM rubric ORDER BY program`); err != nil {
		return nil, errors.Wrap(err, "querying rubrics")
	}

	rubrics := make([]visa.Rubric, 0, len(dbRubrics))
	for _, dr := range dbRubrics {
		rubrics = append(rubrics, dr.toRubric())
	}
	return rubrics, nil
}

func (repo *visaRepository) CreateAssessment(ctx context.Context, ass visa.Assessment) (visa.Assessment, error) {
	profile, err := json.Marshal(ass.Profile)
	if err != nil {
		return visa.Assessment{}, errors.Wrap(err, "encoding assessment profile")
	}
	results, err := json.Marshal(ass.Results)
	if err != nil {
		return visa.Assessment{}, errors.Wrap(err, "encoding assessment results")
	}

	query := `
INSERT INTO assessment (user_id, profile, results, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err = repo.db.QueryRowxContext(ctx, query, ass.UserID, profile, results, ass.CreatedAt).Scan(&ass.ID)
	if err != nil {
		return visa.Assessment{}, errors.Wrap(err, "creating assessment")
	}
	return ass, nil
}

func (repo *visaRepository) GetAssessment(ctx context.Context, id string) (visa.Assessment, error) {
	var da dbAssessment
	if err := repo.db.GetContext(ctx, &da, `SELECT * FROM assessment WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return visa.Assessment{}, visa.ErrAssessmentNotFound
		}
		return visa.Assessment{}, errors.Wrap(err, "getting assessment")
	}
	return da.toAssessment()
}

func (repo *visaRepository) QueryAssessments(ctx context.Context, filter visa.AssessmentFilter) ([]visa.Assessment, error) {
	query := `SELECT * FROM assessment`
	var (
		clauses []string
		args    []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		clauses = append(clauses, "user_id = "+arg(filter.UserID))
	}
	if !filter.CreatedFrom.IsZero() {
		clauses = append(clauses, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		clauses = append(clauses, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var dbAssessments []dbAssessment
	if err := repo.db.SelectContext(ctx, &dbAssessments, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying assessments")
	}

	assessments := make([]visa.Assessment, 0, len(dbAssessments))
	for _, da := range dbAssessments {
		ass, err := da.toAssessment()
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, ass)
	}
	return assessments, nil
}
