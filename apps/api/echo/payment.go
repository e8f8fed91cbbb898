package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/payment"
	"github.com/fitsenior/backend/core/session"
)

type paymentApi struct {
	svc      payment.Service
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, api *paymentApi) {
	pg := g.Group("/payments")
	pg.GET("", api.query)
	pg.POST("", api.create)
	pg.GET("/summary", api.summary, roleMiddleware(session.RoleProfessional))
}

func (api *paymentApi) query(ctx echo.Context) error {
	classID := core.CleanString(ctx.QueryParam("class_id"))
	payments, err := api.svc.List(ctx.Request().Context(), getContextSession(ctx), classID)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) summary(ctx echo.Context) error {
	var year int
	if val := ctx.QueryParam("year"); val != "" {
		y, err := strconv.Atoi(val)
		if err != nil || y < 1900 || y > 9999 {
			return errInvalidYear
		}
		year = y
	}

	s, err := api.svc.Summary(ctx.Request().Context(), getContextSession(ctx), year)
	if err != nil {
		return errors.Wrap(err, "summarizing payments")
	}
	return ctx.JSON(http.StatusOK, s)
}
