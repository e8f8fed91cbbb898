package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/professional"
	"github.com/fitsenior/backend/core/profile"
	"github.com/fitsenior/backend/core/student"
	"github.com/fitsenior/backend/core/user"
)

// CreateUser stores a user and its profile. isAdmin is false unless given.
func CreateUser(
	t *testing.T,
	usrRepo user.Repository,
	profileRepo profile.Repository,
	name, email, pwd string,
	isActive bool,
	isAdmin ...bool,
) user.User {
	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		IsActive:  isActive,
		IsAdmin:   len(isAdmin) > 0 && isAdmin[0],
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	if _, err = profileRepo.CreateProfile(context.Background(), profile.Profile{
		ID:        usr.ID,
		FullName:  name,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, usr user.User, name string) student.Student {
	now := time.Now().UTC()
	s, err := repo.CreateStudent(context.Background(), student.Student{
		UserID:    usr.ID,
		FullName:  name,
		Gender:    "female",
		Phone:     "+55 11 99999-0000",
		Email:     usr.Email,
		CPF:       "529.982.247-25",
		Address:   "Rua das Flores, 10",
		BirthDate: time.Date(1950, time.March, 3, 0, 0, 0, 0, time.UTC),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return s
}

func CreateProfessional(t *testing.T, repo professional.Repository, usr user.User, name string) professional.Professional {
	now := time.Now().UTC()
	p, err := repo.CreateProfessional(context.Background(), professional.Professional{
		UserID:    usr.ID,
		FullName:  name,
		Email:     usr.Email,
		Phone:     "+55 11 98888-0000",
		CPF:       "529.982.247-25",
		CREF:      "123456-G/SP",
		Address:   "Av. Paulista, 1000",
		BirthDate: time.Date(1985, time.June, 12, 0, 0, 0, 0, time.UTC),
		Gender:    "male",
		Specialty: "Pilates",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createProfessional() failed: %v", err)
	}
	return p
}

// CreateClass stores a class of prof; capacity 0 means unlimited.
func CreateClass(t *testing.T, repo class.Repository, prof professional.Professional, title string, capacity int) class.Class {
	now := time.Now().UTC()
	c, err := repo.CreateClass(context.Background(), class.Class{
		ProfessionalID: prof.ID,
		Title:          title,
		Description:    title + " for seniors",
		Date:           now.Add(7 * 24 * time.Hour).Truncate(time.Second),
		Duration:       60,
		Capacity:       capacity,
		Location:       "Parque Ibirapuera",
		Category:       "Pilates",
		Level:          class.LevelBeginner,
		Schedule:       "Mon/Wed 09:00",
		Price:          80,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return c
}
