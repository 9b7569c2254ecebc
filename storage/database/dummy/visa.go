package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/visado/backend/core/visa"
)

type visaRepository struct {
	db *visaTable
}

var _ visa.Repository = (*visaRepository)(nil) // interface compliance check

func NewVisaRepository(db *DB) visa.Repository {
	return &visaRepository{db: db.visa}
}

func (repo *visaRepository) UpsertRubric(_ context.Context, rub visa.Rubric) (visa.Rubric, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.rubrics[rub.Program]; ok {
		rub.ID = orig.ID
		rub.CreatedAt = orig.CreatedAt
	} else {
		rub.ID = uuid.New().String()
	}
	repo.db.rubrics[rub.Program] = &rub
	return rub, nil
}

func (repo *visaRepository) GetRubric(_ context.Context, program visa.Program) (visa.Rubric, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rub, ok := repo.db.rubrics[program]; ok {
		return *rub, nil
	}
	return visa.Rubric{}, visa.ErrRubricNotFound
}

func (repo *visaRepository) QueryRubrics(_ context.Context) ([]visa.Rubric, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rubrics := make([]visa.Rubric, 0, len(repo.db.rubrics))
	for _, rub := range repo.db.rubrics {
		rubrics = append(rubrics, *rub)
	}
	sort.Slice(rubrics, func(i, j int) bool { return rubrics[i].Program < rubrics[j].Program })
	return rubrics, nil
}

func (repo *visaRepository) CreateAssessment(_ context.Context, ass visa.Assessment) (visa.Assessment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ass.ID = uuid.New().String()
	repo.db.assessments[ass.ID] = &ass
	return ass, nil
}

func (repo *visaRepository) GetAssessment(_ context.Context, id string) (visa.Assessment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ass, ok := repo.db.assessments[id]; ok {
		return *ass, nil
	}
	return visa.Assessment{}, visa.ErrAssessmentNotFound
}

func (repo *visaRepository) QueryAssessments(_ context.Context, filter visa.AssessmentFilter) ([]visa.Assessment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assessments := make([]visa.Assessment, 0, len(repo.db.assessments))
	for _, ass := range repo.db.assessments {
		if filter.UserID != "" && ass.UserID != filter.UserID {
			continue
		}
		if !filter.CreatedFrom.IsZero() && ass.CreatedAt.Before(filter.CreatedFrom.UTC()) {
			continue
		}
		if !filter.CreatedTo.IsZero() && ass.CreatedAt.After(filter.CreatedTo.UTC()) {
			continue
		}
		assessments = append(assessments, *ass)
	}
	sort.Slice(assessments, func(i, j int) bool { return assessments[i].CreatedAt.After(assessments[j].CreatedAt) })
	return assessments, nil
}
