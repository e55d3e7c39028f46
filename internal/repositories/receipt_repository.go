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

// ReceiptStoreInterface is the append-only collection of issued
// receipts. A receipt is written once; only its delivery fields may
// change afterwards.
type ReceiptStoreInterface interface {
	Append(receipt *models.Receipt) error
	GetByID(id string) (*models.Receipt, error)
	GetAll() ([]*models.Receipt, error)
	TotalRevenue() (float64, error)
	MarkDelivered(id string) error
}

// ReceiptStore persists receipts in a single JSON file with the same
// load-merge-write discipline as the order store.
type ReceiptStore struct {
	mutex        sync.Mutex
	logger       *logger.Logger
	dataFilePath string
}

// NewReceiptStore creates a receipt store rooted at dataDir.
func NewReceiptStore(log *logger.Logger, dataDir string) *ReceiptStore {
	return &ReceiptStore{
		logger:       log.WithComponent("receipt_store"),
		dataFilePath: filepath.Join(dataDir, "receipts.json"),
	}
}

// Append persists a newly issued receipt. Re-appending an existing
// receipt id is rejected; receipts are never rewritten.
func (s *ReceiptStore) Append(receipt *models.Receipt) error {
	if receipt == nil {
		return &models.ValidationError{Field: "receipt", Reason: "cannot be nil"}
	}
	if receipt.ID == "" {
		return &models.ValidationError{Field: "receipt_id", Reason: "cannot be empty"}
	}
	if len(receipt.Order.Items) == 0 {
		return &models.ValidationError{Field: "order", Reason: "receipt snapshot has no items"}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		s.logger.Error("Failed to load receipts before append", "error", err)
		return err
	}

	for _, record := range records {
		if record.ID == receipt.ID {
			s.logger.Warn("Attempted to re-append existing receipt", "receipt_id", receipt.ID)
			return &models.ValidationError{Field: "receipt_id", Reason: "receipt already issued"}
		}
	}

	stored := *receipt
	records = append(records, &stored)
	if err := s.writeLocked(records); err != nil {
		s.logger.Error("Failed to write receipts after append", "error", err, "receipt_id", receipt.ID)
		return err
	}

	s.logger.Info("Appended receipt", "receipt_id", receipt.ID, "order_id", receipt.Order.ID)
	return nil
}

// GetByID retrieves a single receipt.
func (s *ReceiptStore) GetByID(id string) (*models.Receipt, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.ID == id {
			receipt := *record
			return &receipt, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "receipt", ID: id}
}

// GetAll retrieves every issued receipt.
func (s *ReceiptStore) GetAll() ([]*models.Receipt, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	receipts := make([]*models.Receipt, 0, len(records))
	for _, record := range records {
		receipt := *record
		receipts = append(receipts, &receipt)
	}
	return receipts, nil
}

// TotalRevenue sums the grand total of every issued receipt.
func (s *ReceiptStore) TotalRevenue() (float64, error) {
	receipts, err := s.GetAll()
	if err != nil {
		return 0, err
	}
	var revenue float64
	for _, receipt := range receipts {
		revenue += receipt.GrandTotal()
	}
	return revenue, nil
}

// MarkDelivered updates the delivery fields of an issued receipt, the
// sole mutable facet. Monetary fields are never touched.
func (s *ReceiptStore) MarkDelivered(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		return err
	}

	for _, record := range records {
		if record.ID != id {
			continue
		}
		now := time.Now()
		record.DeliveryStatus = models.DeliverySent
		record.DeliveredAt = &now
		if err := s.writeLocked(records); err != nil {
			s.logger.Error("Failed to write receipts after delivery update", "error", err, "receipt_id", id)
			return err
		}
		s.logger.Info("Marked receipt delivered", "receipt_id", id)
		return nil
	}
	return &models.NotFoundError{Resource: "receipt", ID: id}
}

func (s *ReceiptStore) loadLocked() ([]*models.Receipt, error) {
	data, err := os.ReadFile(s.dataFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*models.Receipt{}, nil
		}
		return nil, &models.PersistenceError{Op: "load receipts", Err: err}
	}
	if len(data) == 0 {
		return []*models.Receipt{}, nil
	}

	records := []*models.Receipt{}
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("Malformed receipt data on load, starting from empty collection", "error", err)
		return []*models.Receipt{}, nil
	}
	return records, nil
}

func (s *ReceiptStore) writeLocked(records []*models.Receipt) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &models.PersistenceError{Op: "marshal receipts", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(s.dataFilePath), 0o755); err != nil {
		return &models.PersistenceError{Op: "create data directory", Err: err}
	}

	tempFile := s.dataFilePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return &models.PersistenceError{Op: "write temporary receipt file", Err: err}
	}
	if err := os.Rename(tempFile, s.dataFilePath); err != nil {
		return &models.PersistenceError{Op: "replace receipt file", Err: err}
	}
	return nil
}
