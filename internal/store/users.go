package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"
	"golang.org/x/crypto/bcrypt"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/models"
)

// UserStore persists users in BadgerDB.
type UserStore struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewUserStore creates a user repository.
func NewUserStore(store *badgerhold.Store, logger *common.Logger) *UserStore {
	return &UserStore{store: store, logger: logger}
}

// Get returns a user by username.
func (s *UserStore) Get(_ context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.store.Get(username, &u); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("user not found: %s", username)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	return &u, nil
}

// Authenticate checks a username/password pair against the stored bcrypt hash.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials for user %s", username)
	}
	return u, nil
}

// usersFile represents the JSON structure of the users import file.
type usersFile struct {
	Users []models.User `json:"users"`
}

// ImportUsers reads users from a JSON file and imports them into BadgerDB.
// Existing users (matched by username key) are skipped.
// Passwords are bcrypt-hashed before storage.
func (s *UserStore) ImportUsers(jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to read users file %s: %w", jsonPath, err)
	}

	var file usersFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse users file %s: %w", jsonPath, err)
	}

	for _, u := range file.Users {
		var existing models.User
		err := s.store.Get(u.Username, &existing)
		if err == nil {
			s.logger.Debug().Str("username", u.Username).Msg("user already exists, skipping")
			continue
		}
		if err != badgerhold.ErrNotFound {
			return fmt.Errorf("failed to check user %s: %w", u.Username, err)
		}

		// bcrypt has a 72-byte input limit; truncate to avoid errors
		pwd := []byte(u.Password)
		if len(pwd) > 72 {
			pwd = pwd[:72]
		}
		hash, err := bcrypt.GenerateFromPassword(pwd, bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for user %s: %w", u.Username, err)
		}
		u.Password = string(hash)

		if err := s.store.Insert(u.Username, &u); err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.Username, err)
		}
		s.logger.Info().Str("username", u.Username).Str("role", u.Role).Msg("user imported")
	}

	return nil
}
