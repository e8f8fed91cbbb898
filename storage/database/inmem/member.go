package inmemdb

import (
	"context"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/professional"
	"github.com/fitsenior/backend/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

// studentOf must be called with db.mu held.
func (db *DB) studentOf(userID string) (student.Student, bool) {
	for _, s := range db.students.all(nil) {
		if s.UserID == userID {
			return s, true
		}
	}
	return student.Student{}, false
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.studentOf(s.UserID); ok {
		return student.Student{}, student.ErrExists
	}
	s.ID = newID()
	repo.db.students.put(s.ID, s)
	return s, nil
}

func (repo *studentRepository) GetStudentByUserID(_ context.Context, userID string, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.studentOf(userID); ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.students.get(s.ID); !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students.put(s.ID, s)
	return s, nil
}

type professionalRepository struct {
	db *DB
}

var _ professional.Repository = (*professionalRepository)(nil)

func NewProfessionalRepository(db *DB) professional.Repository {
	return &professionalRepository{db: db}
}

// professionalOf must be called with db.mu held.
func (db *DB) professionalOf(userID string) (professional.Professional, bool) {
	for _, p := range db.professionals.all(nil) {
		if p.UserID == userID {
			return p, true
		}
	}
	return professional.Professional{}, false
}

func (repo *professionalRepository) CreateProfessional(_ context.Context, p professional.Professional, _ ...core.DBExecutor) (professional.Professional, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.professionalOf(p.UserID); ok {
		return professional.Professional{}, professional.ErrExists
	}
	p.ID = newID()
	repo.db.professionals.put(p.ID, p)
	return p, nil
}

func (repo *professionalRepository) GetProfessional(_ context.Context, id string, _ ...core.DBExecutor) (professional.Professional, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.professionals.get(id); ok {
		return p, nil
	}
	return professional.Professional{}, professional.ErrNotFound
}

func (repo *professionalRepository) GetProfessionalByUserID(_ context.Context, userID string, _ ...core.DBExecutor) (professional.Professional, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.professionalOf(userID); ok {
		return p, nil
	}
	return professional.Professional{}, professional.ErrNotFound
}

func (repo *professionalRepository) UpdateProfessional(_ context.Context, p professional.Professional, _ ...core.DBExecutor) (professional.Professional, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.professionals.get(p.ID); !ok {
		return professional.Professional{}, professional.ErrNotFound
	}
	repo.db.professionals.put(p.ID, p)
	return p, nil
}
