package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core/professional"
	"github.com/fitsenior/backend/core/profile"
	"github.com/fitsenior/backend/core/session"
	"github.com/fitsenior/backend/core/student"
)

// meApi covers the caller's own records: profile, session and onboarding.
type meApi struct {
	sessionSvc      session.Service
	profileSvc      profile.Service
	studentSvc      student.Service
	professionalSvc professional.Service
	validate        *validator.Validate
}

func registerMeAPI(g *echo.Group, api *meApi) {
	g.GET("/me", api.retrieveSession)
	g.PUT("/me", api.updateProfile)

	sg := g.Group("/students")
	sg.POST("", api.onboardStudent)
	sg.GET("/me", api.retrieveStudent, roleMiddleware(session.RoleStudent))
	sg.PUT("/me", api.updateStudent, roleMiddleware(session.RoleStudent))

	pg := g.Group("/professionals")
	pg.POST("", api.onboardProfessional)
	pg.GET("/me", api.retrieveProfessional, roleMiddleware(session.RoleProfessional))
	pg.PUT("/me", api.updateProfessional, roleMiddleware(session.RoleProfessional))
	pg.GET("/:id", api.retrieveProfessionalCard)
}

func (api *meApi) retrieveSession(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, getContextSession(ctx))
}

func (api *meApi) updateProfile(ctx echo.Context) error {
	var data profile.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.profileSvc.Update(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *meApi) onboardStudent(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.sessionSvc.OnboardStudent(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "onboarding student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *meApi) retrieveStudent(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, getContextSession(ctx).Student)
}

func (api *meApi) updateStudent(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.studentSvc.Update(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *meApi) onboardProfessional(ctx echo.Context) error {
	var data professional.NewProfessional
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProfessional")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.sessionSvc.OnboardProfessional(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "onboarding professional")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *meApi) retrieveProfessional(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, getContextSession(ctx).Professional)
}

func (api *meApi) updateProfessional(ctx echo.Context) error {
	var data professional.UpdateProfessional
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfessional")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.professionalSvc.Update(ctx.Request().Context(), getContextSession(ctx).UserID(), data)
	if err != nil {
		return errors.Wrap(err, "updating professional")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *meApi) retrieveProfessionalCard(ctx echo.Context) error {
	p, err := api.professionalSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding professional")
	}
	return ctx.JSON(http.StatusOK, p.Card())
}
