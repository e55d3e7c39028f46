package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HA2077/SmartChef/models"
)

func testReceipt(t *testing.T, customerID string, taxRate float64) *models.Receipt {
	t.Helper()
	order := testOrder(t, customerID)
	return &models.Receipt{
		ID:       models.NewReceiptID(),
		Order:    *order.Clone(),
		TaxRate:  taxRate,
		IssuedAt: time.Now(),
	}
}

func TestReceiptStoreAppendAndGet(t *testing.T) {
	store := NewReceiptStore(testLogger(), t.TempDir())
	receipt := testReceipt(t, "table-1", 0.08)

	require.NoError(t, store.Append(receipt))

	loaded, err := store.GetByID(receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.Order.ID, loaded.Order.ID)
	assert.InDelta(t, receipt.GrandTotal(), loaded.GrandTotal(), 1e-9)
}

func TestReceiptStoreAppendDuplicateRejected(t *testing.T) {
	store := NewReceiptStore(testLogger(), t.TempDir())
	receipt := testReceipt(t, "table-1", 0.08)

	require.NoError(t, store.Append(receipt))
	err := store.Append(receipt)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReceiptStoreAppendValidation(t *testing.T) {
	store := NewReceiptStore(testLogger(), t.TempDir())

	assert.True(t, models.IsValidation(store.Append(nil)))
	assert.True(t, models.IsValidation(store.Append(&models.Receipt{})))

	empty, err := models.NewOrder("table-1")
	require.NoError(t, err)
	noItems := &models.Receipt{ID: models.NewReceiptID(), Order: *empty}
	assert.True(t, models.IsValidation(store.Append(noItems)))
}

func TestReceiptStoreTotalRevenue(t *testing.T) {
	store := NewReceiptStore(testLogger(), t.TempDir())

	// Each test order is 2x Pizza at $12.00: subtotal 24.00, tax 1.92.
	require.NoError(t, store.Append(testReceipt(t, "table-1", 0.08)))
	require.NoError(t, store.Append(testReceipt(t, "table-2", 0.08)))

	revenue, err := store.TotalRevenue()
	require.NoError(t, err)
	assert.InDelta(t, 51.84, revenue, 1e-9)
}

func TestReceiptStoreMarkDelivered(t *testing.T) {
	store := NewReceiptStore(testLogger(), t.TempDir())
	receipt := testReceipt(t, "table-1", 0.08)
	receipt.Email = "guest@example.com"
	receipt.DeliveryStatus = models.DeliveryPending
	require.NoError(t, store.Append(receipt))

	require.NoError(t, store.MarkDelivered(receipt.ID))

	loaded, err := store.GetByID(receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliverySent, loaded.DeliveryStatus)
	require.NotNil(t, loaded.DeliveredAt)

	// Delivery is the only thing that moved.
	assert.InDelta(t, receipt.GrandTotal(), loaded.GrandTotal(), 1e-9)
	assert.Equal(t, receipt.Order.ID, loaded.Order.ID)

	assert.True(t, models.IsNotFound(store.MarkDelivered("RCP-DEADBEEF")))
}
