package repositories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HA2077/SmartChef/models"
	"github.com/HA2077/SmartChef/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stderr"})
}

func testOrder(t *testing.T, customerID string) *models.Order {
	t.Helper()
	order, err := models.NewOrder(customerID)
	require.NoError(t, err)
	require.NoError(t, order.AddItem("pizza", "Pizza", 12.00, 2))
	require.NoError(t, order.UpdateStatus(models.StatusPending))
	return order
}

func TestOrderStoreSaveAndGet(t *testing.T) {
	store := NewOrderStore(testLogger(), t.TempDir(), nil)
	order := testOrder(t, "table-1")

	require.NoError(t, store.Save(order))

	loaded, err := store.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, loaded.ID)
	assert.Equal(t, order.CustomerID, loaded.CustomerID)
	assert.Equal(t, models.StatusPending, loaded.Status)
	assert.InDelta(t, order.Total(), loaded.Total(), 1e-9)
	assert.Equal(t, order.Items, loaded.Items)
}

func TestOrderStoreGetMissing(t *testing.T) {
	store := NewOrderStore(testLogger(), t.TempDir(), nil)

	_, err := store.GetByID("ORD-DEADBEEF")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestOrderStoreSaveReplacesExisting(t *testing.T) {
	store := NewOrderStore(testLogger(), t.TempDir(), nil)
	order := testOrder(t, "table-1")
	require.NoError(t, store.Save(order))

	require.NoError(t, order.UpdateStatus(models.StatusProcessing))
	require.NoError(t, store.Save(order))

	loaded, err := store.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, loaded.Status)

	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOrderStoreUpsertPreservesOtherRecords(t *testing.T) {
	// Two separately constructed stores over the same directory stand
	// in for two uncoordinated processes. A save through one must not
	// drop a record saved through the other.
	dir := t.TempDir()
	storeA := NewOrderStore(testLogger(), dir, nil)
	storeB := NewOrderStore(testLogger(), dir, nil)

	orderA := testOrder(t, "table-1")
	orderB := testOrder(t, "table-2")

	require.NoError(t, storeA.Save(orderA))
	require.NoError(t, storeB.Save(orderB))

	require.NoError(t, orderA.UpdateStatus(models.StatusProcessing))
	require.NoError(t, storeA.Save(orderA))

	all, err := storeB.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 2)

	loadedB, err := storeA.GetByID(orderB.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, loadedB.Status)
	assert.InDelta(t, orderB.Total(), loadedB.Total(), 1e-9)
}

func TestOrderStoreListByStatus(t *testing.T) {
	store := NewOrderStore(testLogger(), t.TempDir(), nil)

	pending := testOrder(t, "table-1")
	processing := testOrder(t, "table-2")
	require.NoError(t, processing.UpdateStatus(models.StatusProcessing))
	completed := testOrder(t, "table-3")
	require.NoError(t, completed.UpdateStatus(models.StatusProcessing))
	require.NoError(t, completed.UpdateStatus(models.StatusCompleted))

	for _, order := range []*models.Order{pending, processing, completed} {
		require.NoError(t, store.Save(order))
	}

	active, err := store.ListByStatus(models.StatusPending, models.StatusProcessing)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	done, err := store.ListByStatus(models.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, completed.ID, done[0].ID)
}

func TestOrderStoreValidation(t *testing.T) {
	store := NewOrderStore(testLogger(), t.TempDir(), nil)

	assert.True(t, models.IsValidation(store.Save(nil)))

	order := testOrder(t, "table-1")
	order.ID = ""
	assert.True(t, models.IsValidation(store.Save(order)))

	// A non-draft order with no items never reaches the file.
	empty, err := models.NewOrder("table-2")
	require.NoError(t, err)
	empty.Status = models.StatusPending
	assert.True(t, models.IsValidation(store.Save(empty)))

	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOrderStoreMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte("{not json"), 0o644))

	store := NewOrderStore(testLogger(), dir, nil)
	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	// The store recovers: the next save rewrites a clean file.
	order := testOrder(t, "table-1")
	require.NoError(t, store.Save(order))
	all, err = store.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOrderStoreClearAll(t *testing.T) {
	store := NewOrderStore(testLogger(), t.TempDir(), nil)
	require.NoError(t, store.Save(testOrder(t, "table-1")))
	require.NoError(t, store.Save(testOrder(t, "table-2")))

	require.NoError(t, store.ClearAll())

	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOrderStoreReturnsCopies(t *testing.T) {
	store := NewOrderStore(testLogger(), t.TempDir(), nil)
	order := testOrder(t, "table-1")
	require.NoError(t, store.Save(order))

	loaded, err := store.GetByID(order.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.AddItem("cola", "Cola", 3.00, 5))

	again, err := store.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.UniqueItemCount())
}
