package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core/upload"
)

type uploadApi struct {
	svc upload.Service
}

func registerUploadAPI(g *echo.Group, api *uploadApi) {
	g.POST("/uploads", api.presign)
}

func (api *uploadApi) presign(ctx echo.Context) error {
	var data upload.Request
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to upload.Request")
	}

	t, err := api.svc.Presign(ctx.Request().Context(), getContextSession(ctx), data)
	if err != nil {
		return errors.Wrap(err, "presigning upload")
	}
	return ctx.JSON(http.StatusOK, t)
}
