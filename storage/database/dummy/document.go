package dummydb

import (
	"context"
	"sort"

	"github.com/visado/backend/core"
	"github.com/visado/backend/core/document"
)

type documentRepository struct {
	db *documentTable
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *DB) document.Repository {
	return &documentRepository{db: db.document}
}

func (repo *documentRepository) CreateDocument(_ context.Context, doc document.Document) (document.Document, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[doc.ID] = &doc
	return doc, nil
}

func (repo *documentRepository) GetDocumentByID(_ context.Context, id string) (document.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if doc, ok := repo.db.table[id]; ok {
		return *doc, nil
	}
	return document.Document{}, document.ErrNotFound
}

func (repo *documentRepository) QueryDocuments(_ context.Context, filter *document.QueryFilter, _ []core.DBOrdering) ([]document.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	docs := make([]document.Document, 0, len(repo.db.table))
	for _, doc := range repo.db.table {
		if filter != nil {
			if filter.OwnerID != "" && doc.OwnerID != filter.OwnerID {
				continue
			}
			if filter.Status != "" && doc.Status != filter.Status {
				continue
			}
			if !filter.CreatedFrom.IsZero() && doc.CreatedAt.Before(filter.CreatedFrom.UTC()) {
				continue
			}
			if !filter.CreatedTo.IsZero() && doc.CreatedAt.After(filter.CreatedTo.UTC()) {
				continue
			}
		}
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs, nil
}

func (repo *documentRepository) UpdateDocument(_ context.Context, doc document.Document) (document.Document, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[doc.ID]
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	orig.Status = doc.Status
	orig.ReviewerID = doc.ReviewerID
	orig.ReviewNote = doc.ReviewNote
	orig.UpdatedAt = doc.UpdatedAt
	return *orig, nil
}

func (repo *documentRepository) DeleteDocumentsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
