package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/session"
)

type classApi struct {
	svc      class.Service
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, api *classApi) {
	cg := g.Group("/classes")
	cg.GET("", api.query)
	cg.POST("", api.create) // reports a missing professional record itself
	cg.GET("/mine", api.queryMine, roleMiddleware(session.RoleProfessional))
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
}

func (api *classApi) query(ctx echo.Context) error {
	var q classQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to classQuery")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	classes, err := api.svc.List(ctx.Request().Context(), q.filter(*ordering))
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []class.Detail{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) queryMine(ctx echo.Context) error {
	classes, err := api.svc.ListMine(ctx.Request().Context(), getContextSession(ctx).UserID())
	if err != nil {
		return errors.Wrap(err, "querying own classes")
	}
	if classes == nil {
		classes = []class.Detail{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding class")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *classApi) update(ctx echo.Context) error {
	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}
