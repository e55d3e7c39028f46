package repositories

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/HA2077/SmartChef/models"
	"github.com/HA2077/SmartChef/pkg/logger"
)

// UserRepositoryInterface loads accounts and opens sessions.
type UserRepositoryInterface interface {
	GetAll() ([]*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Authenticate(username, password string) (*models.Session, error)
}

// UserRepository reads accounts from a JSON file. A missing or
// malformed file yields no accounts rather than a hard failure.
type UserRepository struct {
	mutex        sync.Mutex
	logger       *logger.Logger
	dataFilePath string
}

// NewUserRepository creates a user repository rooted at dataDir.
func NewUserRepository(log *logger.Logger, dataDir string) *UserRepository {
	return &UserRepository{
		logger:       log.WithComponent("user_repository"),
		dataFilePath: filepath.Join(dataDir, "users.json"),
	}
}

// GetAll retrieves every account.
func (r *UserRepository) GetAll() ([]*models.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.loadLocked()
}

// GetByUsername retrieves a single account.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	users, err := r.loadLocked()
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Username == username {
			found := *user
			return &found, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "user", ID: username}
}

// Authenticate checks credentials and opens a session carrying the
// user. The session, not any global, is what service operations accept.
func (r *UserRepository) Authenticate(username, password string) (*models.Session, error) {
	user, err := r.GetByUsername(username)
	if err != nil {
		r.logger.Warn("Login failed: unknown user", "username", username)
		return nil, err
	}
	if user.Password != password {
		r.logger.Warn("Login failed: wrong password", "username", username)
		return nil, &models.ValidationError{Field: "password", Reason: "invalid credentials"}
	}
	if !user.Role.Valid() {
		r.logger.Warn("Login failed: unknown role", "username", username, "role", user.Role)
		return nil, &models.ValidationError{Field: "role", Reason: "account has no recognized role"}
	}

	r.logger.Info("User logged in", "username", username, "role", user.Role)
	return &models.Session{User: *user, StartedAt: time.Now()}, nil
}

func (r *UserRepository) loadLocked() ([]*models.User, error) {
	data, err := os.ReadFile(r.dataFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*models.User{}, nil
		}
		return nil, &models.PersistenceError{Op: "load users", Err: err}
	}
	if len(data) == 0 {
		return []*models.User{}, nil
	}

	users := []*models.User{}
	if err := json.Unmarshal(data, &users); err != nil {
		r.logger.Warn("Malformed user data on load, no accounts available", "error", err)
		return []*models.User{}, nil
	}
	return users, nil
}
