package repositories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HA2077/SmartChef/models"
)

const menuFixture = `[
	{"product_id": "pizza", "name": "Pizza", "category": "main", "price": 12.00, "available": true},
	{"product_id": "burger", "name": "Burger", "category": "main", "price": 15.00, "available": true},
	{"product_id": "cola", "name": "Cola", "category": "drink", "price": 3.00, "available": true},
	{"product_id": "tiramisu", "name": "Tiramisu", "category": "dessert", "price": 7.50, "available": false}
]`

func seedMenu(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "menu.json"), []byte(menuFixture), 0o644))
	return dir
}

func TestMenuRepositoryGetAll(t *testing.T) {
	repo := NewMenuRepository(testLogger(), seedMenu(t))

	items, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, items, 4)

	// Sorted by name.
	assert.Equal(t, "Burger", items[0].Name)
	assert.Equal(t, "Cola", items[1].Name)
	assert.Equal(t, "Pizza", items[2].Name)
	assert.Equal(t, "Tiramisu", items[3].Name)
}

func TestMenuRepositoryGetAvailable(t *testing.T) {
	repo := NewMenuRepository(testLogger(), seedMenu(t))

	items, err := repo.GetAvailable()
	require.NoError(t, err)
	assert.Len(t, items, 3)
	for _, item := range items {
		assert.True(t, item.Available)
	}
}

func TestMenuRepositoryGetByID(t *testing.T) {
	repo := NewMenuRepository(testLogger(), seedMenu(t))

	item, err := repo.GetByID("pizza")
	require.NoError(t, err)
	assert.Equal(t, "Pizza", item.Name)
	assert.Equal(t, models.CategoryMain, item.Category)
	assert.InDelta(t, 12.00, item.Price, 1e-9)

	_, err = repo.GetByID("sushi")
	assert.True(t, models.IsNotFound(err))
}

func TestMenuRepositoryMissingFile(t *testing.T) {
	repo := NewMenuRepository(testLogger(), t.TempDir())

	items, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMenuRepositoryReloadsOnEveryCall(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	repo := NewMenuRepository(testLogger(), dir)

	items, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, os.WriteFile(path, []byte(menuFixture), 0o644))
	items, err = repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, items, 4)
}
