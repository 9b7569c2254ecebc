package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/visado/backend/core"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrAlreadyReviewed = errors.New("document already reviewed")
)

type (
	Repository interface {
		CreateDocument(ctx context.Context, doc Document) (Document, error)
		GetDocumentByID(ctx context.Context, id string) (Document, error)
		// QueryDocuments applies AND operation on available QueryFilter fields.
		QueryDocuments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Document, error)
		UpdateDocument(ctx context.Context, doc Document) (Document, error)
		DeleteDocumentsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		// CreateUpload registers a pending Document for ownerID and returns it
		// along with a presigned PUT URL the client uploads the bytes to.
		CreateUpload(ctx context.Context, ownerID string, nd NewDocument) (Document, core.PresignedURL, error)
		GetByID(ctx context.Context, id string) (Document, error)
		GetDownloadURL(ctx context.Context, doc Document) (core.PresignedURL, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Document, error)
		// Review records a verdict on a pending Document. Reviewing twice fails.
		Review(ctx context.Context, id, reviewerID string, rd ReviewDocument) (Document, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo    Repository
		fileSvc core.FileStorage
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, fileSvc core.FileStorage) Service {
	return &service{
		repo:    repo,
		fileSvc: fileSvc,
	}
}

func (svc *service) CreateUpload(ctx context.Context, ownerID string, nd NewDocument) (Document, core.PresignedURL, error) {
	now := time.Now().UTC()
	doc := Document{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Filename:    nd.Filename,
		ContentType: nd.ContentType,
		Size:        nd.Size,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	doc.StorageKey = fmt.Sprintf("documents/%s/%s/%s", doc.OwnerID, doc.ID, doc.Filename)

	url, err := svc.fileSvc.PresignUpload(ctx, doc.StorageKey, doc.ContentType)
	if err != nil {
		return Document{}, core.PresignedURL{}, errors.Wrap(err, "presigning upload")
	}

	doc, err = svc.repo.CreateDocument(ctx, doc)
	if err != nil {
		return Document{}, core.PresignedURL{}, err
	}
	return doc, url, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Document, error) {
	return svc.repo.GetDocumentByID(ctx, id)
}

func (svc *service) GetDownloadURL(ctx context.Context, doc Document) (core.PresignedURL, error) {
	return svc.fileSvc.PresignDownload(ctx, doc.StorageKey)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Document, error) {
	return svc.repo.QueryDocuments(ctx, filter, ordering)
}

func (svc *service) Review(ctx context.Context, id, reviewerID string, rd ReviewDocument) (Document, error) {
	doc, err := svc.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if doc.Reviewed() {
		return Document{}, core.NewValidationError(ErrAlreadyReviewed, core.FieldError{Field: "status", Error: ErrAlreadyReviewed.Error()})
	}

	doc.Status = rd.Status
	doc.ReviewNote = rd.Note
	doc.ReviewerID = reviewerID
	doc.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDocument(ctx, doc)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		doc, err := svc.repo.GetDocumentByID(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return err
		}
		if err = svc.fileSvc.Delete(ctx, doc.StorageKey); err != nil {
			return errors.Wrap(err, "deleting stored object")
		}
	}
	return svc.repo.DeleteDocumentsByID(ctx, ids...)
}
