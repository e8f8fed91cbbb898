package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core/demand"
)

type demandApi struct {
	svc      demand.Service
	validate *validator.Validate
}

func registerDemandAPI(g *echo.Group, api *demandApi) {
	dg := g.Group("/demands")
	dg.GET("", api.query)
	dg.POST("", api.create)
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id", api.update)
	dg.DELETE("/:id", api.destroy)
	dg.POST("/:id/interest", api.interest)
}

func (api *demandApi) query(ctx echo.Context) error {
	demands, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying demands")
	}
	if demands == nil {
		demands = []demand.Demand{}
	}
	return ctx.JSON(http.StatusOK, demands)
}

func (api *demandApi) retrieve(ctx echo.Context) error {
	d, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding demand")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *demandApi) create(ctx echo.Context) error {
	var data demand.NewDemand
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDemand")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.Create(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "creating demand")
	}
	return ctx.JSON(http.StatusCreated, d)
}

func (api *demandApi) update(ctx echo.Context) error {
	var data demand.UpdateDemand
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDemand")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.Update(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating demand")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *demandApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting demand")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *demandApi) interest(ctx echo.Context) error {
	d, err := api.svc.ExpressInterest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "expressing interest")
	}
	return ctx.JSON(http.StatusOK, d)
}
