package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/visado/backend/core"
	"github.com/visado/backend/core/user"
	"github.com/visado/backend/core/visa"
)

type adminApi struct {
	usrSvc   user.Service
	visaSvc  visa.Service
	validate *validator.Validate
}

func registerAdminAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	usrSvc user.Service,
	visaSvc visa.Service,
	validate *validator.Validate,
) {
	api := adminApi{
		usrSvc:   usrSvc,
		visaSvc:  visaSvc,
		validate: validate,
	}

	ag := g.Group("/admin", jwt)

	// client-admin management; super-admin only
	cag := ag.Group("/client-admins", adminMiddleware(user.RoleSuperAdmin))
	cag.POST("", api.createClientAdmin)
	cag.GET("", api.queryClientAdmins)
	cag.GET("/:id", api.retrieveClientAdmin)
	cag.DELETE("/:id", api.destroyClientAdmin)

	ag.POST("/assignments", api.assignClient, adminMiddleware(user.RoleSuperAdmin))
	ag.GET("/clients", api.queryClients, adminMiddleware())

	// rubric authoring; super-admin only
	rg := ag.Group("/rubrics", adminMiddleware(user.RoleSuperAdmin))
	rg.GET("", api.queryRubrics)
	rg.GET("/:program", api.retrieveRubric)
	rg.PUT("/:program", api.upsertRubric)
}

// Handlers

func (api *adminApi) createClientAdmin(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.Roles = []string{user.RoleClientAdmin}
	if err := data.Validate(api.validate, api.usrSvc); err != nil {
		return err
	}

	usr, err := api.usrSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating client admin")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *adminApi) queryClientAdmins(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	admins, err := api.usrSvc.Query(
		ctx.Request().Context(),
		&user.QueryFilter{Roles: []string{user.RoleClientAdmin}},
		ordering.Orderings,
	)
	if err != nil {
		return errors.Wrap(err, "querying client admins")
	}
	if admins == nil {
		admins = []user.User{}
	}
	return ctx.JSON(http.StatusOK, admins)
}

func (api *adminApi) retrieveClientAdmin(ctx echo.Context) error {
	admin, err := api.getClientAdmin(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, admin)
}

func (api *adminApi) destroyClientAdmin(ctx echo.Context) error {
	admin, err := api.getClientAdmin(ctx)
	if err != nil {
		return err
	}
	if err := api.usrSvc.Delete(ctx.Request().Context(), admin.ID); err != nil {
		return errors.Wrap(err, "deleting client admin")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) getClientAdmin(ctx echo.Context) (user.User, error) {
	usr, err := api.usrSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errHttpNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsClientAdmin() {
		return user.User{}, errHttpNotFound
	}
	return usr, nil
}

func (api *adminApi) assignClient(ctx echo.Context) error {
	var data user.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.usrSvc.AssignClient(ctx.Request().Context(), data); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "assigning client")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// queryClients lists a client-admin's assigned clients; super-admins see all clients.
func (api *adminApi) queryClients(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var clients []user.User
	if ctxUsr.IsSuperAdmin() {
		clients, err = api.usrSvc.Query(
			ctx.Request().Context(),
			&user.QueryFilter{Roles: []string{user.RoleClient}},
			nil,
		)
	} else {
		clients, err = api.usrSvc.QueryAssignedClients(ctx.Request().Context(), ctxUsr.ID)
	}
	if err != nil {
		return errors.Wrap(err, "querying clients")
	}
	if clients == nil {
		clients = []user.User{}
	}
	return ctx.JSON(http.StatusOK, clients)
}

func (api *adminApi) queryRubrics(ctx echo.Context) error {
	rubrics, err := api.visaSvc.QueryRubrics(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying rubrics")
	}
	if rubrics == nil {
		rubrics = []visa.Rubric{}
	}
	return ctx.JSON(http.StatusOK, rubrics)
}

func (api *adminApi) retrieveRubric(ctx echo.Context) error {
	rub, err := api.visaSvc.GetRubric(ctx.Request().Context(), visa.Program(ctx.Param("program")))
	if err != nil {
		if errors.Cause(err) == visa.ErrRubricNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding rubric")
	}
	return ctx.JSON(http.StatusOK, rub)
}

func (api *adminApi) upsertRubric(ctx echo.Context) error {
	var data RubricRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RubricRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	rub, err := api.visaSvc.UpsertRubric(ctx.Request().Context(), visa.Program(ctx.Param("program")), data.Criteria)
	if err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return err
		}
		return errors.Wrap(err, "upserting rubric")
	}
	return ctx.JSON(http.StatusOK, rub)
}

type RubricRequest struct {
	Criteria json.RawMessage `json:"criteria" validate:"required"`
}
