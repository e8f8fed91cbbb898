package inmemdb

import (
	"context"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/attendance"
	"github.com/fitsenior/backend/core/enrollment"
	"github.com/fitsenior/backend/core/payment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

// deleteEnrollment must be called with db.mu held for writing.
func (db *DB) deleteEnrollment(id string) bool {
	if !db.enrollments.delete(id) {
		return false
	}
	for _, r := range db.attendance.all(func(r attendance.Record) bool { return r.EnrollmentID == id }) {
		db.attendance.delete(r.ID)
	}
	for _, p := range db.payments.all(func(p payment.Payment) bool { return p.EnrollmentID == id }) {
		db.payments.delete(p.ID)
	}
	return true
}

// memberName must be called with db.mu held.
func (db *DB) memberName(e enrollment.Enrollment) (name, avatar string) {
	if s, ok := db.students.get(e.StudentID); ok {
		name, avatar = s.FullName, s.AvatarURL
	}
	p := db.summary(e.UserID)
	if name == "" {
		name = p.FullName
	}
	if avatar == "" {
		avatar = p.AvatarURL
	}
	return name, avatar
}

func (repo *enrollmentRepository) find(userID, classID string) (enrollment.Enrollment, bool) {
	for _, e := range repo.db.enrollments.all(nil) {
		if e.UserID == userID && e.ClassID == classID {
			return e, true
		}
	}
	return enrollment.Enrollment{}, false
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, e enrollment.Enrollment, _ ...core.DBExecutor) (enrollment.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.find(e.UserID, e.ClassID); ok {
		return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
	}
	e.ID = newID()
	repo.db.enrollments.put(e.ID, e)
	return e, nil
}

func (repo *enrollmentRepository) GetEnrollment(_ context.Context, id string, _ ...core.DBExecutor) (enrollment.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if e, ok := repo.db.enrollments.get(id); ok {
		return e, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) FindEnrollment(_ context.Context, userID, classID string, _ ...core.DBExecutor) (enrollment.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if e, ok := repo.find(userID, classID); ok {
		return e, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) CountActiveEnrollments(_ context.Context, classID string, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.activeCount(classID), nil
}

func (repo *enrollmentRepository) ListUserEnrollments(_ context.Context, userID string, _ ...core.DBExecutor) ([]enrollment.Item, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	enrollments := newestFirst(
		repo.db.enrollments.all(func(e enrollment.Enrollment) bool { return e.UserID == userID }),
		func(e enrollment.Enrollment) time.Time { return e.CreatedAt },
	)
	items := make([]enrollment.Item, 0, len(enrollments))
	for _, e := range enrollments {
		c, ok := repo.db.classes.get(e.ClassID)
		if !ok {
			continue
		}
		item := enrollment.Item{
			Enrollment: e,
			Class: enrollment.ClassSummary{
				ID:       c.ID,
				Title:    c.Title,
				Date:     c.Date,
				Schedule: c.Schedule,
				Location: c.Location,
				Category: c.Category,
				Level:    c.Level,
			},
		}
		if p, ok := repo.db.professionals.get(c.ProfessionalID); ok {
			item.ProfessionalName = p.FullName
		}
		items = append(items, item)
	}
	return items, nil
}

func (repo *enrollmentRepository) ListClassMembers(_ context.Context, classID string, _ ...core.DBExecutor) ([]enrollment.Member, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	enrollments := repo.db.enrollments.all(func(e enrollment.Enrollment) bool { return e.ClassID == classID })
	members := make([]enrollment.Member, 0, len(enrollments))
	for _, e := range enrollments {
		name, avatar := repo.db.memberName(e)
		members = append(members, enrollment.Member{Enrollment: e, StudentName: name, StudentAvatarURL: avatar})
	}
	return members, nil
}

func (repo *enrollmentRepository) UpdateEnrollment(_ context.Context, e enrollment.Enrollment, _ ...core.DBExecutor) (enrollment.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.enrollments.get(e.ID); !ok {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	repo.db.enrollments.put(e.ID, e)
	return e, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.deleteEnrollment(id) {
		return enrollment.ErrNotFound
	}
	return nil
}
