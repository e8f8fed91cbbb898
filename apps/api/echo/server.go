package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/attendance"
	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/demand"
	"github.com/fitsenior/backend/core/enrollment"
	"github.com/fitsenior/backend/core/forum"
	"github.com/fitsenior/backend/core/message"
	"github.com/fitsenior/backend/core/payment"
	"github.com/fitsenior/backend/core/professional"
	"github.com/fitsenior/backend/core/profile"
	"github.com/fitsenior/backend/core/session"
	"github.com/fitsenior/backend/core/student"
	"github.com/fitsenior/backend/core/upload"
	"github.com/fitsenior/backend/core/user"
	metricsvc "github.com/fitsenior/backend/services/metrics"
	realtimesvc "github.com/fitsenior/backend/services/realtime"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Metrics    *metricsvc.Manager
		Hub        *realtimesvc.Hub // optional: no /ws route without it

		UserSvc         user.Service
		ProfileSvc      profile.Service
		SessionSvc      session.Service
		StudentSvc      student.Service
		ProfessionalSvc professional.Service
		ClassSvc        class.Service
		EnrollmentSvc   enrollment.Service
		AttendanceSvc   attendance.Service
		DemandSvc       demand.Service
		ForumSvc        forum.Service
		MessageSvc      message.Service
		PaymentSvc      payment.Service
		UploadSvc       upload.Service
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(ctx context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		auth     *Auth
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	if deps.Metrics == nil {
		deps.Metrics = metricsvc.NewManager()
	}

	s := &server{
		deps:     deps,
		auth:     NewAuth(deps.Conf),
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: conf.Server.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	s.app.Use(metricsMiddleware(s.deps.Metrics))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", s.home)
	s.app.GET("/health", health)
	s.app.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))

	api := s.app.Group(conf.Server.APIPrefix)
	jwt := s.auth.Middleware("header:" + echo.HeaderAuthorization)

	registerUserAPI(api, jwt, &userApi{svc: s.deps.UserSvc, auth: s.auth, validate: s.deps.Validate, logger: s.deps.Logger})
	if s.deps.Hub != nil {
		registerRealtimeAPI(api, s.auth, &realtimeApi{hub: s.deps.Hub})
	}

	// every other endpoint needs a token and a resolved session
	authed := api.Group("", jwt, sessionMiddleware(s.deps.SessionSvc))
	registerMeAPI(authed, &meApi{
		sessionSvc:      s.deps.SessionSvc,
		profileSvc:      s.deps.ProfileSvc,
		studentSvc:      s.deps.StudentSvc,
		professionalSvc: s.deps.ProfessionalSvc,
		validate:        s.deps.Validate,
	})
	registerClassAPI(authed, &classApi{svc: s.deps.ClassSvc, validate: s.deps.Validate})
	registerEnrollmentAPI(authed, &enrollmentApi{svc: s.deps.EnrollmentSvc, attendanceSvc: s.deps.AttendanceSvc, validate: s.deps.Validate})
	registerAttendanceAPI(authed, &attendanceApi{svc: s.deps.AttendanceSvc, validate: s.deps.Validate})
	registerDemandAPI(authed, &demandApi{svc: s.deps.DemandSvc, validate: s.deps.Validate})
	registerForumAPI(authed, &forumApi{svc: s.deps.ForumSvc, validate: s.deps.Validate})
	registerMessageAPI(authed, &messageApi{svc: s.deps.MessageSvc})
	registerPaymentAPI(authed, &paymentApi{svc: s.deps.PaymentSvc, validate: s.deps.Validate})
	registerUploadAPI(authed, &uploadApi{svc: s.deps.UploadSvc})
}

func (s *server) Start() {
	srv := &http.Server{
		Addr:         s.deps.Conf.Server.Address(),
		ReadTimeout:  s.deps.Conf.Server.ReadTimeout,
		WriteTimeout: s.deps.Conf.Server.WriteTimeout,
	}
	s.deps.Logger.Info("API listening on " + srv.Addr)
	if err := s.app.StartServer(srv); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // a shutdown is already pending
	}
}

func (s *server) home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Welcome to " + s.deps.Conf.AppName + " API!",
		"version": s.deps.Conf.Build,
		"endpoints": echo.Map{
			"health": "/health",
			"api":    s.deps.Conf.Server.APIPrefix,
		},
	})
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
