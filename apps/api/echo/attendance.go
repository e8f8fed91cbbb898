package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core/attendance"
	reportsvc "github.com/fitsenior/backend/services/reports"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type attendanceApi struct {
	svc      attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, api *attendanceApi) {
	ag := g.Group("/classes/:id/attendance")
	ag.GET("", api.query)
	ag.PUT("", api.take)
	ag.GET("/export", api.export)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	date, err := dateQueryParam(ctx, "date")
	if err != nil {
		return err
	}

	records, err := api.svc.ListForClass(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"), date)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []attendance.ClassRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) take(ctx echo.Context) error {
	var data rollCallRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to rollCallRequest")
	}
	rc, err := data.rollCall()
	if err != nil {
		return err
	}
	if err := rc.Validate(api.validate); err != nil {
		return err
	}

	records, err := api.svc.Take(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"), rc)
	if err != nil {
		return errors.Wrap(err, "taking attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) export(ctx echo.Context) error {
	sheet, err := api.svc.Sheet(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "building attendance sheet")
	}

	var buf bytes.Buffer
	if err := reportsvc.WriteAttendance(&buf, sheet); err != nil {
		return errors.Wrap(err, "writing attendance sheet")
	}

	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(sheet.ClassTitle, "-"), "-")
	if name == "" {
		name = "class"
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="attendance-%s.xlsx"`, name))
	return ctx.Blob(http.StatusOK, reportsvc.ContentTypeXLSX, buf.Bytes())
}
