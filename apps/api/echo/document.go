package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/visado/backend/core"
	"github.com/visado/backend/core/document"
	"github.com/visado/backend/core/user"
)

type documentApi struct {
	usrSvc   user.Service
	docSvc   document.Service
	validate *validator.Validate
}

func registerDocumentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	usrSvc user.Service,
	docSvc document.Service,
	validate *validator.Validate,
) {
	api := documentApi{
		usrSvc:   usrSvc,
		docSvc:   docSvc,
		validate: validate,
	}

	dg := g.Group("/documents", jwt)
	dg.POST("", api.create, clientMiddleware())
	dg.GET("", api.query)
	dg.GET("/:id/download", api.download)
	dg.PUT("/:id/review", api.review, adminMiddleware())
	dg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *documentApi) create(ctx echo.Context) error {
	var data document.NewDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocument")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	doc, url, err := api.docSvc.CreateUpload(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating upload")
	}
	return ctx.JSON(http.StatusCreated, UploadResponse{Document: doc, Upload: url})
}

// query returns the caller's own documents; admins may filter by client.
func (api *documentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(document.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []document.Document{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	switch {
	case claims.IsSuperAdmin:
		// any filter goes
	case claims.IsClientAdmin:
		if filter.OwnerID == "" || !api.isAssignedClient(ctx, claims.Subject, filter.OwnerID) {
			return errHttpForbidden
		}
	default:
		filter.OwnerID = claims.Subject
	}

	docs, err := api.docSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying documents")
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *documentApi) download(ctx echo.Context) error {
	doc, err := api.getAccessibleDocument(ctx)
	if err != nil {
		return err
	}

	url, err := api.docSvc.GetDownloadURL(ctx.Request().Context(), doc)
	if err != nil {
		return errors.Wrap(err, "presigning download")
	}
	return ctx.JSON(http.StatusOK, url)
}

func (api *documentApi) review(ctx echo.Context) error {
	var data document.ReviewDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewDocument")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	doc, err := api.getAccessibleDocument(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	doc, err = api.docSvc.Review(ctx.Request().Context(), doc.ID, ctxUsr.ID, data)
	if err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return err
		}
		return errors.Wrap(err, "reviewing document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	doc, err := api.getAccessibleDocument(ctx)
	if err != nil {
		return err
	}
	// clients may only remove documents that are still pending review
	if !claims.IsSuperAdmin && doc.Reviewed() {
		return errHttpForbidden
	}

	if err := api.docSvc.Delete(ctx.Request().Context(), doc.ID); err != nil {
		return errors.Wrap(err, "deleting document")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getAccessibleDocument loads the document and enforces visibility: owners see
// their own, client-admins their assigned clients', super-admins everything.
func (api *documentApi) getAccessibleDocument(ctx echo.Context) (document.Document, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return document.Document{}, errors.Wrap(err, "getting context claims")
	}

	doc, err := api.docSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return document.Document{}, errHttpNotFound
		}
		return document.Document{}, errors.Wrap(err, "finding document")
	}

	switch {
	case claims.IsSuperAdmin:
	case claims.IsClientAdmin:
		if !api.isAssignedClient(ctx, claims.Subject, doc.OwnerID) {
			return document.Document{}, errHttpNotFound
		}
	default:
		if doc.OwnerID != claims.Subject {
			return document.Document{}, errHttpNotFound
		}
	}
	return doc, nil
}

func (api *documentApi) isAssignedClient(ctx echo.Context, adminID, clientID string) bool {
	clients, err := api.usrSvc.QueryAssignedClients(ctx.Request().Context(), adminID)
	if err != nil {
		return false
	}
	for _, client := range clients {
		if client.ID == clientID {
			return true
		}
	}
	return false
}

type UploadResponse struct {
	Document document.Document `json:"document"`
	Upload   core.PresignedURL `json:"upload"`
}
