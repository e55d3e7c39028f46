package repositories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HA2077/SmartChef/models"
)

const usersFixture = `[
	{"username": "alice", "password": "trays", "role": "waiter"},
	{"username": "bob", "password": "knives", "role": "chef"},
	{"username": "root", "password": "books", "role": "admin"},
	{"username": "ghost", "password": "x", "role": "dishwasher"}
]`

func seedUsers(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(usersFixture), 0o644))
	return dir
}

func TestUserRepositoryGetByUsername(t *testing.T) {
	repo := NewUserRepository(testLogger(), seedUsers(t))

	user, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleWaiter, user.Role)

	_, err = repo.GetByUsername("mallory")
	assert.True(t, models.IsNotFound(err))
}

func TestAuthenticate(t *testing.T) {
	repo := NewUserRepository(testLogger(), seedUsers(t))

	sess, err := repo.Authenticate("bob", "knives")
	require.NoError(t, err)
	assert.Equal(t, "bob", sess.User.Username)
	assert.Equal(t, models.RoleChef, sess.User.Role)
	assert.False(t, sess.StartedAt.IsZero())
	assert.True(t, sess.Can(models.CapAdvanceOrder))
	assert.False(t, sess.Can(models.CapCreateOrder))
}

func TestAuthenticateFailures(t *testing.T) {
	repo := NewUserRepository(testLogger(), seedUsers(t))

	_, err := repo.Authenticate("mallory", "whatever")
	assert.True(t, models.IsNotFound(err))

	_, err = repo.Authenticate("alice", "wrong")
	assert.True(t, models.IsValidation(err))

	// An account with an unrecognized role cannot open a session.
	_, err = repo.Authenticate("ghost", "x")
	assert.True(t, models.IsValidation(err))
}

func TestUserRepositoryMissingFile(t *testing.T) {
	repo := NewUserRepository(testLogger(), t.TempDir())

	users, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = repo.Authenticate("alice", "trays")
	assert.True(t, models.IsNotFound(err))
}
