// Package di assembles the services of the API from their repositories and infrastructure.
package di

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/fitsenior/backend/apps/api/echo"
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
	"github.com/fitsenior/backend/storage/database"
	inmemdb "github.com/fitsenior/backend/storage/database/inmem"
	sqlxrepos "github.com/fitsenior/backend/storage/database/sqlx"
)

// Repositories is one storage engine.
type Repositories struct {
	Tx           core.Transactor
	User         user.Repository
	Profile      profile.Repository
	Student      student.Repository
	Professional professional.Repository
	Class        class.Repository
	Enrollment   enrollment.Repository
	Attendance   attendance.Repository
	Demand       demand.Repository
	Forum        forum.Repository
	Message      message.Repository
	Payment      payment.Repository
}

func MemoryRepositories(db *inmemdb.DB) Repositories {
	return Repositories{
		Tx:           inmemdb.NewTransactor(db),
		User:         inmemdb.NewUserRepository(db),
		Profile:      inmemdb.NewProfileRepository(db),
		Student:      inmemdb.NewStudentRepository(db),
		Professional: inmemdb.NewProfessionalRepository(db),
		Class:        inmemdb.NewClassRepository(db),
		Enrollment:   inmemdb.NewEnrollmentRepository(db),
		Attendance:   inmemdb.NewAttendanceRepository(db),
		Demand:       inmemdb.NewDemandRepository(db),
		Forum:        inmemdb.NewForumRepository(db),
		Message:      inmemdb.NewMessageRepository(db),
		Payment:      inmemdb.NewPaymentRepository(db),
	}
}

func PostgresRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Tx:           database.NewTransactor(db),
		User:         sqlxrepos.NewUserRepository(db),
		Profile:      sqlxrepos.NewProfileRepository(db),
		Student:      sqlxrepos.NewStudentRepository(db),
		Professional: sqlxrepos.NewProfessionalRepository(db),
		Class:        sqlxrepos.NewClassRepository(db),
		Enrollment:   sqlxrepos.NewEnrollmentRepository(db),
		Attendance:   sqlxrepos.NewAttendanceRepository(db),
		Demand:       sqlxrepos.NewDemandRepository(db),
		Forum:        sqlxrepos.NewForumRepository(db),
		Message:      sqlxrepos.NewMessageRepository(db),
		Payment:      sqlxrepos.NewPaymentRepository(db),
	}
}

// Infra holds what the services need besides storage. Publisher defaults to Hub, then to no-op.
type Infra struct {
	Conf      *core.Config
	Logger    core.Logger
	MailSvc   core.EmailService
	Storage   core.FileStorage
	Publisher core.EventPublisher
	Metrics   *metricsvc.Manager
	Hub       *realtimesvc.Hub
}

// NewValidator returns a validator with every custom rule and english messages registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// NewServerDeps wires the services on top of repos.
func NewServerDeps(infra Infra, repos Repositories) echoapi.ServerDeps {
	if infra.Metrics == nil {
		infra.Metrics = metricsvc.NewManager()
	}
	publisher := infra.Publisher
	if publisher == nil {
		if infra.Hub != nil {
			publisher = infra.Hub
		} else {
			publisher = core.NoopPublisher
		}
	}
	validate, translator := NewValidator()

	classSvc := class.NewService(repos.Class, repos.Professional)
	enrollmentSvc := enrollment.NewService(enrollment.Deps{
		Tx:          repos.Tx,
		Repo:        repos.Enrollment,
		ClassRepo:   repos.Class,
		ClassSvc:    classSvc,
		StudentRepo: repos.Student,
		UserRepo:    repos.User,
		ProfileRepo: repos.Profile,
		MailSvc:     infra.MailSvc,
		Recorder:    infra.Metrics,
	})

	return echoapi.ServerDeps{
		Conf:       infra.Conf,
		Logger:     infra.Logger,
		Validate:   validate,
		Translator: translator,
		Metrics:    infra.Metrics,
		Hub:        infra.Hub,

		UserSvc:         user.NewService(repos.Tx, repos.User, repos.Profile, infra.MailSvc, infra.Conf),
		ProfileSvc:      profile.NewService(repos.Profile),
		SessionSvc:      session.NewService(repos.Profile, repos.Student, repos.Professional),
		StudentSvc:      student.NewService(repos.Student),
		ProfessionalSvc: professional.NewService(repos.Professional),
		ClassSvc:        classSvc,
		EnrollmentSvc:   enrollmentSvc,
		AttendanceSvc:   attendance.NewService(repos.Tx, repos.Attendance, repos.Enrollment, classSvc),
		DemandSvc:       demand.NewService(repos.Demand),
		ForumSvc:        forum.NewService(repos.Forum, repos.Profile, enrollmentSvc, publisher, infra.Logger),
		MessageSvc:      message.NewService(repos.Message, repos.Profile, publisher, infra.Logger),
		PaymentSvc:      payment.NewService(repos.Payment, repos.Enrollment, classSvc),
		UploadSvc:       upload.NewService(infra.Storage),
	}
}
