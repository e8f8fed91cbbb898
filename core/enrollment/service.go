package enrollment

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/profile"
	"github.com/fitsenior/backend/core/student"
	"github.com/fitsenior/backend/core/user"
)

var (
	ErrNotFound        = errors.New("enrollment not found")
	ErrForbidden       = errors.New("permission denied")
	ErrClassIDRequired = errors.New("class_id is required")
	ErrAlreadyEnrolled = errors.New("already enrolled in this class")
	ErrClassFull       = errors.New("class is full")
)

type (
	Repository interface {
		CreateEnrollment(ctx context.Context, e Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		GetEnrollment(ctx context.Context, id string, exec ...core.DBExecutor) (Enrollment, error)
		FindEnrollment(ctx context.Context, userID, classID string, exec ...core.DBExecutor) (Enrollment, error)
		// CountActiveEnrollments counts the enrollments of a class that are not cancelled.
		CountActiveEnrollments(ctx context.Context, classID string, exec ...core.DBExecutor) (int, error)
		ListUserEnrollments(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Item, error)
		ListClassMembers(ctx context.Context, classID string, exec ...core.DBExecutor) ([]Member, error)
		UpdateEnrollment(ctx context.Context, e Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		DeleteEnrollment(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	// Recorder counts enroll attempts by result.
	Recorder interface {
		IncEnrollment(result string)
	}

	Service interface {
		// Enroll checks for duplicates and capacity, then creates the enrollment, all under a lock of the class row.
		Enroll(ctx context.Context, userID string, ne NewEnrollment) (Enrollment, error)
		ListMine(ctx context.Context, userID string) ([]Item, error)
		ListClassMembers(ctx context.Context, userID, classID string) ([]Member, error)
		Get(ctx context.Context, id string) (Enrollment, error)
		Delete(ctx context.Context, userID, id string) error
		SetStatus(ctx context.Context, userID, id string, us UpdateStatus) (Enrollment, error)
		// ClassAccess tells whether userID may see the members area of a class (roster, forum).
		// It returns ErrForbidden when the user neither owns the class nor is enrolled in it.
		ClassAccess(ctx context.Context, userID, classID string) (c class.Class, isOwner bool, err error)
		// MemberIDs returns the user IDs of the class owner and of its enrolled users.
		MemberIDs(ctx context.Context, classID string) ([]string, error)
	}

	service struct {
		tx          core.Transactor
		repo        Repository
		classRepo   class.Repository
		classSvc    class.Service
		studentRepo student.Repository
		userRepo    user.Repository
		profileRepo profile.Repository
		mailSvc     core.EmailService
		recorder    Recorder
	}
)

var _ Service = (*service)(nil)

type Deps struct {
	Tx          core.Transactor
	Repo        Repository
	ClassRepo   class.Repository
	ClassSvc    class.Service
	StudentRepo student.Repository
	UserRepo    user.Repository
	ProfileRepo profile.Repository
	MailSvc     core.EmailService
	Recorder    Recorder
}

func NewService(deps Deps) Service {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &service{
		tx:          deps.Tx,
		repo:        deps.Repo,
		classRepo:   deps.ClassRepo,
		classSvc:    deps.ClassSvc,
		studentRepo: deps.StudentRepo,
		userRepo:    deps.UserRepo,
		profileRepo: deps.ProfileRepo,
		mailSvc:     deps.MailSvc,
		recorder:    recorder,
	}
}

func (svc *service) Enroll(ctx context.Context, userID string, ne NewEnrollment) (Enrollment, error) {
	if err := ne.Validate(); err != nil {
		return Enrollment{}, err
	}

	var (
		e   Enrollment
		cls class.Class
	)
	err := svc.tx.WithTx(ctx, func(ctx context.Context, exec core.DBExecutor) error {
		var err error
		if cls, err = svc.classRepo.LockClass(ctx, ne.ClassID, exec); err != nil {
			return err
		}

		if _, err = svc.repo.FindEnrollment(ctx, userID, cls.ID, exec); err == nil {
			return ErrAlreadyEnrolled
		} else if err != ErrNotFound {
			return err
		}

		if limit := cls.EffectiveCapacity(); limit > 0 {
			count, err := svc.repo.CountActiveEnrollments(ctx, cls.ID, exec)
			if err != nil {
				return err
			}
			if count >= limit {
				return ErrClassFull
			}
		}

		e = Enrollment{
			UserID:    userID,
			ClassID:   cls.ID,
			Status:    StatusEnrolled,
			CreatedAt: time.Now().UTC(),
		}
		if s, err := svc.studentRepo.GetStudentByUserID(ctx, userID, exec); err == nil {
			e.StudentID = s.ID
		} else if err != student.ErrNotFound {
			return err
		}
		e, err = svc.repo.CreateEnrollment(ctx, e, exec)
		return err
	})
	svc.recorder.IncEnrollment(enrollResult(err))
	if err != nil {
		return Enrollment{}, err
	}

	svc.sendConfirmation(ctx, userID, cls)
	return e, nil
}

func enrollResult(err error) string {
	switch err {
	case nil:
		return ResultEnrolled
	case ErrClassFull:
		return ResultFull
	case ErrAlreadyEnrolled:
		return ResultDuplicate
	case class.ErrNotFound:
		return ResultNotFound
	default:
		return ResultError
	}
}

type confirmationData struct {
	Name       string
	ClassTitle string
	Date       string
	Schedule   string
	Location   string
}

// sendConfirmation is best effort: the enrollment is committed whatever happens here.
func (svc *service) sendConfirmation(ctx context.Context, userID string, cls class.Class) {
	if svc.mailSvc == nil {
		return
	}
	usr, err := svc.userRepo.GetUser(ctx, user.GetFilter{ID: userID})
	if err != nil {
		return
	}
	name := usr.Email
	if p, err := svc.profileRepo.GetProfile(ctx, userID); err == nil && p.FullName != "" {
		name = p.FullName
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: usr.Email}},
		Subject:      "Enrollment confirmed: " + cls.Title,
		TemplateName: "enrollment_confirmation",
		TemplateData: confirmationData{
			Name:       name,
			ClassTitle: cls.Title,
			Date:       cls.Date.Format("02/01/2006 15:04"),
			Schedule:   cls.Schedule,
			Location:   cls.Location,
		},
	})
}

func (svc *service) ListMine(ctx context.Context, userID string) ([]Item, error) {
	return svc.repo.ListUserEnrollments(ctx, userID)
}

func (svc *service) ListClassMembers(ctx context.Context, userID, classID string) ([]Member, error) {
	if _, _, err := svc.ClassAccess(ctx, userID, classID); err != nil {
		return nil, err
	}
	return svc.repo.ListClassMembers(ctx, classID)
}

func (svc *service) Get(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, id)
}

func (svc *service) Delete(ctx context.Context, userID, id string) error {
	e, err := svc.repo.GetEnrollment(ctx, id)
	if err != nil {
		return err
	}
	if e.UserID != userID {
		return ErrNotFound
	}
	return svc.repo.DeleteEnrollment(ctx, id)
}

func (svc *service) SetStatus(ctx context.Context, userID, id string, us UpdateStatus) (Enrollment, error) {
	e, err := svc.repo.GetEnrollment(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	if _, err = svc.classSvc.GetOwned(ctx, userID, e.ClassID); err != nil {
		if err == class.ErrForbidden {
			return Enrollment{}, ErrForbidden
		}
		return Enrollment{}, err
	}
	e.Status = us.Status
	return svc.repo.UpdateEnrollment(ctx, e)
}

func (svc *service) ClassAccess(ctx context.Context, userID, classID string) (class.Class, bool, error) {
	c, err := svc.classSvc.GetOwned(ctx, userID, classID)
	switch err {
	case nil:
		return c, true, nil
	case class.ErrForbidden:
	default:
		return class.Class{}, false, err
	}

	if _, err = svc.repo.FindEnrollment(ctx, userID, classID); err != nil {
		if err == ErrNotFound {
			return class.Class{}, false, ErrForbidden
		}
		return class.Class{}, false, err
	}
	c, err = svc.classRepo.GetClass(ctx, classID)
	return c, false, err
}

func (svc *service) MemberIDs(ctx context.Context, classID string) ([]string, error) {
	d, err := svc.classRepo.GetClassDetail(ctx, classID)
	if err != nil {
		return nil, err
	}
	members, err := svc.repo.ListClassMembers(ctx, classID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members)+1)
	ids = append(ids, d.ProfessionalUserID)
	for _, m := range members {
		if m.Status != StatusCancelled {
			ids = append(ids, m.UserID)
		}
	}
	return ids, nil
}

type nopRecorder struct{}

func (nopRecorder) IncEnrollment(string) {}
