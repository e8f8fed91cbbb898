package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core/attendance"
	"github.com/fitsenior/backend/core/enrollment"
)

type enrollmentApi struct {
	svc           enrollment.Service
	attendanceSvc attendance.Service
	validate      *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, api *enrollmentApi) {
	eg := g.Group("/enrollments")
	eg.GET("", api.queryMine)
	eg.POST("", api.create)
	eg.GET("/class/:classId", api.queryClassMembers)
	eg.DELETE("/:id", api.destroy)
	eg.PUT("/:id/status", api.setStatus)
	eg.GET("/:id/attendance", api.frequency)
}

func (api *enrollmentApi) queryMine(ctx echo.Context) error {
	items, err := api.svc.ListMine(ctx.Request().Context(), getContextSession(ctx).UserID())
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if items == nil {
		items = []enrollment.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *enrollmentApi) queryClassMembers(ctx echo.Context) error {
	members, err := api.svc.ListClassMembers(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("classId"))
	if err != nil {
		return errors.Wrap(err, "querying class members")
	}
	if members == nil {
		members = []enrollment.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}

	e, err := api.svc.Enroll(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *enrollmentApi) setStatus(ctx echo.Context) error {
	var data enrollment.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	e, err := api.svc.SetStatus(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "setting enrollment status")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *enrollmentApi) frequency(ctx echo.Context) error {
	f, err := api.attendanceSvc.Frequency(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing frequency")
	}
	return ctx.JSON(http.StatusOK, f)
}
