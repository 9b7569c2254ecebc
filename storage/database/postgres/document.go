package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/visado/backend/core"
	"github.com/visado/backend/core/document"
)

type dbDocument struct {
	ID          string      `db:"id"`
	OwnerID     string      `db:"owner_id"`
	Filename    string      `db:"filename"`
	ContentType string      `db:"content_type"`
	Size        int64       `db:"size"`
	StorageKey  string      `db:"storage_key"`
	Status      string      `db:"status"`
	ReviewerID  null.String `db:"reviewer_id"`
	ReviewNote  null.String `db:"review_note"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (dd dbDocument) toDocument() document.Document {
	return document.Document{
		ID:          dd.ID,
		OwnerID:     dd.OwnerID,
		Filename:    dd.Filename,
		ContentType: dd.ContentType,
		Size:        dd.Size,
		StorageKey:  dd.StorageKey,
		Status:      dd.Status,
		ReviewerID:  dd.ReviewerID.String,
		ReviewNote:  dd.ReviewNote.String,
		CreatedAt:   dd.CreatedAt,
		UpdatedAt:   dd.UpdatedAt,
	}
}

type documentRepository struct {
	db *sqlx.DB
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *sqlx.DB) document.Repository {
	return &documentRepository{db: db}
}

func (repo *documentRepository) CreateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	query := `
INSERT INTO document (owner_id, filename, content_type, size, storage_key, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.QueryRowxContext(
		ctx, query,
		doc.OwnerID, doc.Filename, doc.ContentType, doc.Size, doc.StorageKey,
		doc.Status, doc.CreatedAt, doc.UpdatedAt,
	).Scan(&doc.ID)
	if err != nil {
		return document.Document{}, errors.Wrap(err, "creating document")
	}
	return doc, nil
}

func (repo *documentRepository) GetDocumentByID(ctx context.Context, id string) (document.Document, error) {
	var dd dbDocument
	if err := repo.db.GetContext(ctx, &dd, `SELECT * FROM document WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, errors.Wrap(err, "getting document")
	}
	return dd.toDocument(), nil
}

func (repo *documentRepository) QueryDocuments(ctx context.Context, filter *document.QueryFilter, ordering []core.DBOrdering) ([]document.Document, error) {
	query := `SELECT * FROM document`
	var (
		clauses []string
		args    []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.OwnerID != "" {
			clauses = append(clauses, "owner_id = "+arg(filter.OwnerID))
		}
		if filter.Status != "" {
			clauses = append(clauses, "status = "+arg(filter.Status))
		}
		if !filter.CreatedFrom.IsZero() {
			clauses = append(clauses, "created_at >= "+arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			clauses = append(clauses, "created_at <= "+arg(filter.CreatedTo.UTC()))
		}
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += orderBy(ordering, "created_at DESC")

	var dbDocs []dbDocument
	if err := repo.db.SelectContext(ctx, &dbDocs, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}

	docs := make([]document.Document, 0, len(dbDocs))
	for _, dd := range dbDocs {
		docs = append(docs, dd.toDocument())
	}
	return docs, nil
}

func (repo *documentRepository) UpdateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	query := `
UPDATE document
SET status = $1, reviewer_id = $2, review_note = $3, updated_at = $4
WHERE id = $5
RETURNING *`

	var dd dbDocument
	err := repo.db.GetContext(
		ctx, &dd, query,
		doc.Status, null.NewString(doc.ReviewerID, doc.ReviewerID != ""),
		null.NewString(doc.ReviewNote, doc.ReviewNote != ""), doc.UpdatedAt, doc.ID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, errors.Wrap(err, "updating document")
	}
	return dd.toDocument(), nil
}

func (repo *documentRepository) DeleteDocumentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM document WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting documents")
}
