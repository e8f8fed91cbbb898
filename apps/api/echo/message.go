package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core/message"
)

type messageApi struct {
	svc message.Service
}

func registerMessageAPI(g *echo.Group, api *messageApi) {
	mg := g.Group("/messages")
	mg.GET("/conversations", api.queryConversations)
	mg.GET("/contacts", api.queryContacts)
	mg.POST("", api.send)
	mg.GET("/:userId", api.queryThread)
	mg.PUT("/:id/read", api.markRead)
}

func (api *messageApi) queryConversations(ctx echo.Context) error {
	msgs, err := api.svc.Conversations(ctx.Request().Context(), getContextSession(ctx).UserID())
	if err != nil {
		return errors.Wrap(err, "querying conversations")
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) queryContacts(ctx echo.Context) error {
	contacts, err := api.svc.Contacts(ctx.Request().Context(), getContextSession(ctx))
	if err != nil {
		return errors.Wrap(err, "querying contacts")
	}
	if contacts == nil {
		contacts = []message.Contact{}
	}
	return ctx.JSON(http.StatusOK, contacts)
}

func (api *messageApi) queryThread(ctx echo.Context) error {
	msgs, err := api.svc.Thread(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "querying thread")
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) send(ctx echo.Context) error {
	var data message.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}

	m, err := api.svc.Send(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *messageApi) markRead(ctx echo.Context) error {
	m, err := api.svc.MarkRead(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "marking message read")
	}
	return ctx.JSON(http.StatusOK, m)
}
