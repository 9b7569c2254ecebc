package document

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/visado/backend/core"
)

// Review statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected}

// Document is the metadata of an uploaded file. The bytes themselves live in
// object storage under StorageKey.
type Document struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"-"`
	Status      string    `json:"status"`
	ReviewerID  string    `json:"reviewer_id,omitempty"`
	ReviewNote  string    `json:"review_note,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (d *Document) Reviewed() bool {
	return d.Status == StatusApproved || d.Status == StatusRejected
}

// NewDocument contains information needed to register an upload.
type NewDocument struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	Size        int64  `json:"size" validate:"required,gt=0"`
}

func (nd *NewDocument) Validate(validate *validator.Validate) error {
	nd.Filename = core.CleanString(nd.Filename)
	nd.ContentType = core.CleanString(nd.ContentType, true /* lower */)
	return validate.Struct(nd)
}

// ReviewDocument records a client-admin's verdict on a pending Document.
type ReviewDocument struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note"`
}

func (rd *ReviewDocument) Validate(validate *validator.Validate) error {
	rd.Status = core.CleanString(rd.Status, true /* lower */)
	rd.Note = core.CleanString(rd.Note)
	return validate.Struct(rd)
}

type QueryFilter struct {
	OwnerID     string    `query:"owner_id"`
	Status      string    `query:"status"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.OwnerID == "" && qf.Status == "" && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.OwnerID = core.CleanString(qf.OwnerID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
