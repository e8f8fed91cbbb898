package inmemdb

import (
	"context"
	"strings"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/profile"
	"github.com/fitsenior/backend/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) emailTaken(email string, excludedIDs []string) bool {
	for _, usr := range repo.db.users.all(nil) {
		if !strings.EqualFold(usr.Email, email) {
			continue
		}
		excluded := false
		for _, id := range excludedIDs {
			if usr.ID == id {
				excluded = true
				break
			}
		}
		if !excluded {
			return true
		}
	}
	return false
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedIDs []string, _ ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if repo.emailTaken(email, excludedIDs) {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if repo.emailTaken(usr.Email, nil) {
		return user.User{}, user.ErrEmailExists
	}
	usr.ID = newID()
	repo.db.users.put(usr.ID, usr)
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users.all(nil) {
		if (filter.ID != "" && usr.ID == filter.ID) || (filter.ID == "" && filter.Email != "" && strings.EqualFold(usr.Email, filter.Email)) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.users.get(usr.ID); !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.emailTaken(usr.Email, []string{usr.ID}) {
		return user.User{}, user.ErrEmailExists
	}
	repo.db.users.put(usr.ID, usr)
	return usr, nil
}

type profileRepository struct {
	db *DB
}

var _ profile.Repository = (*profileRepository)(nil)

func NewProfileRepository(db *DB) profile.Repository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) CreateProfile(_ context.Context, p profile.Profile, _ ...core.DBExecutor) (profile.Profile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.profiles.put(p.ID, p)
	return p, nil
}

func (repo *profileRepository) GetProfile(_ context.Context, id string, _ ...core.DBExecutor) (profile.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.profiles.get(id); ok {
		return p, nil
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpdateProfile(_ context.Context, p profile.Profile, _ ...core.DBExecutor) (profile.Profile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.profiles.get(p.ID); !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	repo.db.profiles.put(p.ID, p)
	return p, nil
}

// summary must be called with db.mu held.
func (db *DB) summary(userID string) profile.Summary {
	if p, ok := db.profiles.get(userID); ok {
		return p.Summary()
	}
	return profile.Summary{ID: userID}
}
