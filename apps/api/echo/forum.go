package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core/forum"
)

type forumApi struct {
	svc      forum.Service
	validate *validator.Validate
}

func registerForumAPI(g *echo.Group, api *forumApi) {
	fg := g.Group("/forum/posts")
	fg.GET("", api.queryPosts)
	fg.POST("", api.createPost)
	fg.GET("/:id", api.retrieveThread)
	fg.DELETE("/:id", api.destroyPost)
	fg.POST("/:id/replies", api.reply)

	g.GET("/classes/:id/forum", api.queryClassMessages)
	g.POST("/classes/:id/forum", api.postClassMessage)
}

func (api *forumApi) queryPosts(ctx echo.Context) error {
	posts, err := api.svc.ListPosts(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying posts")
	}
	if posts == nil {
		posts = []forum.Post{}
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *forumApi) retrieveThread(ctx echo.Context) error {
	t, err := api.svc.GetThread(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding thread")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *forumApi) createPost(ctx echo.Context) error {
	var data forum.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.CreatePost(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *forumApi) reply(ctx echo.Context) error {
	var data forum.NewReply
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReply")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Reply(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "replying to post")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *forumApi) destroyPost(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeletePost(ctx.Request().Context(), claims.Subject, claims.IsAdmin, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *forumApi) queryClassMessages(ctx echo.Context) error {
	msgs, err := api.svc.ListClassMessages(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying class messages")
	}
	if msgs == nil {
		msgs = []forum.ClassMessage{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *forumApi) postClassMessage(ctx echo.Context) error {
	var data forum.NewClassMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.PostClassMessage(ctx.Request().Context(), getContextSession(ctx).UserID(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "posting class message")
	}
	return ctx.JSON(http.StatusCreated, m)
}
