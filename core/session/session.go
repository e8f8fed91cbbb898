package session

import (
	"context"
	"errors"

	"github.com/fitsenior/backend/core/professional"
	"github.com/fitsenior/backend/core/profile"
	"github.com/fitsenior/backend/core/student"
)

type Role string

const (
	RoleNone         Role = ""
	RoleStudent      Role = "student"
	RoleProfessional Role = "professional"
)

type State string

const (
	StateAnonymous  State = "anonymous"
	StateOnboarding State = "onboarding"
	StateReady      State = "ready"
)

var ErrRoleAssigned = errors.New("role already assigned")

// Session is what a client needs to boot: who the caller is and which side of the marketplace they are on.
type Session struct {
	Profile      profile.Profile            `json:"profile"`
	Role         Role                       `json:"role"`
	State        State                      `json:"state"`
	Student      *student.Student           `json:"student,omitempty"`
	Professional *professional.Professional `json:"professional,omitempty"`
}

func (s Session) UserID() string {
	return s.Profile.ID
}

func (s Session) IsStudent() bool {
	return s.Role == RoleStudent && s.Student != nil
}

func (s Session) IsProfessional() bool {
	return s.Role == RoleProfessional && s.Professional != nil
}

// StateOf tells where a client stands in the bootstrap sequence.
func StateOf(authenticated bool, role Role) State {
	switch {
	case !authenticated:
		return StateAnonymous
	case role == RoleNone:
		return StateOnboarding
	default:
		return StateReady
	}
}

type (
	Service interface {
		// Resolve loads the session of an authenticated user.
		// It returns profile.ErrNotFound when the account has no profile.
		Resolve(ctx context.Context, userID string) (Session, error)
		OnboardStudent(ctx context.Context, userID string, ns student.NewStudent) (student.Student, error)
		OnboardProfessional(ctx context.Context, userID string, np professional.NewProfessional) (professional.Professional, error)
	}

	service struct {
		profileRepo      profile.Repository
		studentRepo      student.Repository
		professionalRepo professional.Repository
		studentSvc       student.Service
		professionalSvc  professional.Service
	}
)

var _ Service = (*service)(nil)

func NewService(profileRepo profile.Repository, studentRepo student.Repository, professionalRepo professional.Repository) Service {
	return &service{
		profileRepo:      profileRepo,
		studentRepo:      studentRepo,
		professionalRepo: professionalRepo,
		studentSvc:       student.NewService(studentRepo),
		professionalSvc:  professional.NewService(professionalRepo),
	}
}

func (svc *service) Resolve(ctx context.Context, userID string) (Session, error) {
	p, err := svc.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	sess := Session{Profile: p}

	// a student record wins over a professional one
	s, err := svc.studentRepo.GetStudentByUserID(ctx, userID)
	switch {
	case err == nil:
		sess.Role = RoleStudent
		sess.Student = &s
	case errors.Is(err, student.ErrNotFound):
		pro, err := svc.professionalRepo.GetProfessionalByUserID(ctx, userID)
		if err == nil {
			sess.Role = RoleProfessional
			sess.Professional = &pro
		} else if !errors.Is(err, professional.ErrNotFound) {
			return Session{}, err
		}
	default:
		return Session{}, err
	}

	sess.State = StateOf(true, sess.Role)
	return sess, nil
}

func (svc *service) OnboardStudent(ctx context.Context, userID string, ns student.NewStudent) (student.Student, error) {
	sess, err := svc.Resolve(ctx, userID)
	if err != nil {
		return student.Student{}, err
	}
	if sess.Role != RoleNone {
		return student.Student{}, ErrRoleAssigned
	}
	return svc.studentSvc.Create(ctx, userID, ns)
}

func (svc *service) OnboardProfessional(ctx context.Context, userID string, np professional.NewProfessional) (professional.Professional, error) {
	sess, err := svc.Resolve(ctx, userID)
	if err != nil {
		return professional.Professional{}, err
	}
	if sess.Role != RoleNone {
		return professional.Professional{}, ErrRoleAssigned
	}
	return svc.professionalSvc.Create(ctx, userID, np)
}
