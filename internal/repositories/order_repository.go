package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/HA2077/SmartChef/models"
	"github.com/HA2077/SmartChef/pkg/logger"
	"github.com/HA2077/SmartChef/pkg/metrics"
)

// OrderStoreInterface is the shared durable order collection visible to
// every role.
type OrderStoreInterface interface {
	Save(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	ListAll() ([]*models.Order, error)
	ListByStatus(statuses ...models.OrderStatus) ([]*models.Order, error)
	ClearAll() error
}

// OrderStore persists orders in a single JSON file. Every operation
// reloads the persisted collection; there is no in-memory authority.
//
// Save performs a load-merge-write upsert: reload the current
// collection, replace (or append) the single record with the caller's
// id, write the merged collection back atomically. Two uncoordinated
// writers saving different orders at nearly the same instant therefore
// both survive; a whole-collection overwrite from a stale snapshot
// would silently drop one of them.
type OrderStore struct {
	mutex        sync.Mutex
	logger       *logger.Logger
	metrics      *metrics.CoordinatorMetrics
	dataFilePath string
}

// NewOrderStore creates an order store rooted at dataDir. Metrics may
// be nil.
func NewOrderStore(log *logger.Logger, dataDir string, m *metrics.CoordinatorMetrics) *OrderStore {
	return &OrderStore{
		logger:       log.WithComponent("order_store"),
		metrics:      m,
		dataFilePath: filepath.Join(dataDir, "orders.json"),
	}
}

// Save upserts a single order record. The caller's in-memory view of
// the rest of the collection is never written; round-tripping one
// record must not perturb any other record.
func (s *OrderStore) Save(order *models.Order) error {
	if err := s.validateOrder(order); err != nil {
		s.logger.Warn("Rejected invalid order on save", "error", err)
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	start := time.Now()
	records, err := s.loadLocked()
	if err != nil {
		s.metrics.ObserveSave("orders", "error", float64(time.Since(start).Milliseconds()))
		s.logger.Error("Failed to load orders before save", "error", err, "order_id", order.ID)
		return err
	}

	merged := order.Clone()
	replaced := false
	for idx := range records {
		if records[idx].ID == merged.ID {
			records[idx] = merged
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, merged)
	}

	if err := s.writeLocked(records); err != nil {
		s.metrics.ObserveSave("orders", "error", float64(time.Since(start).Milliseconds()))
		s.logger.Error("Failed to write orders after save", "error", err, "order_id", order.ID)
		return err
	}

	s.metrics.ObserveSave("orders", "ok", float64(time.Since(start).Milliseconds()))
	s.logger.Info("Saved order", "order_id", order.ID, "status", order.Status, "replaced", replaced)
	return nil
}

// GetByID retrieves a single order by id, reflecting the last
// successful save.
func (s *OrderStore) GetByID(id string) (*models.Order, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		s.logger.Error("Failed to load orders", "error", err)
		return nil, err
	}

	for _, record := range records {
		if record.ID == id {
			return record.Clone(), nil
		}
	}
	s.logger.Warn("Order not found", "order_id", id)
	return nil, &models.NotFoundError{Resource: "order", ID: id}
}

// ListAll retrieves every persisted order.
func (s *OrderStore) ListAll() ([]*models.Order, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		s.logger.Error("Failed to load orders", "error", err)
		return nil, err
	}

	orders := make([]*models.Order, 0, len(records))
	for _, record := range records {
		orders = append(orders, record.Clone())
	}

	s.logger.Debug("Retrieved all orders", "count", len(orders))
	return orders, nil
}

// ListByStatus filters the persisted collection to the given statuses.
func (s *OrderStore) ListByStatus(statuses ...models.OrderStatus) ([]*models.Order, error) {
	all, err := s.ListAll()
	if err != nil {
		return nil, err
	}

	wanted := make(map[models.OrderStatus]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}

	orders := make([]*models.Order, 0, len(all))
	for _, order := range all {
		if wanted[order.Status] {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

// ClearAll resets the store to an empty collection. Administrative
// only; never called concurrently with normal traffic.
func (s *OrderStore) ClearAll() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.writeLocked([]*models.Order{}); err != nil {
		s.logger.Error("Failed to clear order store", "error", err)
		return err
	}
	s.logger.Info("Cleared order store")
	return nil
}

// loadLocked reads the persisted collection. A missing file is an
// empty collection; malformed data degrades to an empty collection
// rather than a hard failure.
func (s *OrderStore) loadLocked() ([]*models.Order, error) {
	data, err := os.ReadFile(s.dataFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*models.Order{}, nil
		}
		return nil, &models.PersistenceError{Op: "load orders", Err: err}
	}

	if len(data) == 0 {
		return []*models.Order{}, nil
	}

	records := []*models.Order{}
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("Malformed order data on load, starting from empty collection", "error", err)
		return []*models.Order{}, nil
	}
	return records, nil
}

// writeLocked persists the collection atomically via temp file and
// rename, so a failed write never leaves a partially written file.
func (s *OrderStore) writeLocked(records []*models.Order) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &models.PersistenceError{Op: "marshal orders", Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(s.dataFilePath), 0o755); err != nil {
		return &models.PersistenceError{Op: "create data directory", Err: err}
	}

	tempFile := s.dataFilePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return &models.PersistenceError{Op: "write temporary order file", Err: err}
	}

	if err := os.Rename(tempFile, s.dataFilePath); err != nil {
		return &models.PersistenceError{Op: "replace order file", Err: err}
	}

	return nil
}

// validateOrder validates order data before it touches the file.
func (s *OrderStore) validateOrder(order *models.Order) error {
	if order == nil {
		return &models.ValidationError{Field: "order", Reason: "cannot be nil"}
	}
	if order.ID == "" {
		return &models.ValidationError{Field: "order_id", Reason: "cannot be empty"}
	}
	if order.CustomerID == "" {
		return &models.ValidationError{Field: "customer_id", Reason: "cannot be empty"}
	}
	if !order.Status.Valid() {
		return &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", order.Status)}
	}
	if order.Status != models.StatusDraft && len(order.Items) == 0 {
		return &models.ValidationError{Field: "items", Reason: "submitted order must have at least one item"}
	}

	for i, item := range order.Items {
		if item.ProductID == "" {
			return &models.ValidationError{Field: "items", Reason: fmt.Sprintf("item %d: product ID cannot be empty", i)}
		}
		if item.Quantity <= 0 {
			return &models.ValidationError{Field: "items", Reason: fmt.Sprintf("item %d: quantity must be positive", i)}
		}
	}

	return nil
}
