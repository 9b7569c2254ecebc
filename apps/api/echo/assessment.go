package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/visado/backend/core"
	"github.com/visado/backend/core/user"
	"github.com/visado/backend/core/visa"
)

type assessmentApi struct {
	usrSvc   user.Service
	visaSvc  visa.Service
	validate *validator.Validate
}

func registerAssessmentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	usrSvc user.Service,
	visaSvc visa.Service,
	validate *validator.Validate,
) {
	api := assessmentApi{
		usrSvc:   usrSvc,
		visaSvc:  visaSvc,
		validate: validate,
	}

	ag := g.Group("/assessments", jwt)
	ag.POST("", api.create, clientMiddleware())
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
}

// Handlers

func (api *assessmentApi) create(ctx echo.Context) error {
	var data AssessmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssessmentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ass, err := api.visaSvc.TakeAssessment(ctx.Request().Context(), ctxUsr, data.Profile, data.Programs...)
	if err != nil {
		if errors.Cause(err) == visa.ErrRubricNotFound {
			return echo.NewHTTPError(http.StatusConflict, "assessment unavailable: scoring criteria not configured")
		}
		return errors.Wrap(err, "taking assessment")
	}
	return ctx.JSON(http.StatusCreated, ass)
}

// query returns the caller's own history; admins may filter by client.
func (api *assessmentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var filter visa.AssessmentFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []visa.Assessment{})
	}

	switch {
	case claims.IsSuperAdmin:
		// any filter goes
	case claims.IsClientAdmin:
		if filter.UserID == "" || !api.isAssignedClient(ctx, claims.Subject, filter.UserID) {
			return errHttpForbidden
		}
	default:
		filter.UserID = claims.Subject
	}

	assessments, err := api.visaSvc.QueryAssessments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	if assessments == nil {
		assessments = []visa.Assessment{}
	}
	return ctx.JSON(http.StatusOK, assessments)
}

func (api *assessmentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ass, err := api.visaSvc.GetAssessment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == visa.ErrAssessmentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding assessment")
	}

	switch {
	case claims.IsSuperAdmin:
	case claims.IsClientAdmin:
		if !api.isAssignedClient(ctx, claims.Subject, ass.UserID) {
			return errHttpNotFound
		}
	default:
		if ass.UserID != claims.Subject {
			return errHttpNotFound
		}
	}
	return ctx.JSON(http.StatusOK, ass)
}

func (api *assessmentApi) isAssignedClient(ctx echo.Context, adminID, clientID string) bool {
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

type AssessmentRequest struct {
	Profile  visa.Profile   `json:"profile"`
	Programs []visa.Program `json:"programs" validate:"omitempty,dive,required"`
}

func (ar *AssessmentRequest) Validate(validate *validator.Validate) error {
	for _, program := range ar.Programs {
		if !program.Valid() {
			return core.NewValidationError(nil, core.FieldError{Field: "programs", Error: "unknown visa program"})
		}
	}
	return ar.Profile.Validate(validate)
}
