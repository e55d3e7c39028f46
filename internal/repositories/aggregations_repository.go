package repositories

import (
	"github.com/HA2077/SmartChef/models"
	"github.com/HA2077/SmartChef/pkg/logger"
)

// ReportRepositoryInterface gathers the read-only snapshot reporting
// works from.
type ReportRepositoryInterface interface {
	GetReportData() (orders []*models.Order, receipts []*models.Receipt, menuItems []*models.MenuItem, err error)
}

// ReportRepository composes the three stores the reporting role reads.
// It never writes.
type ReportRepository struct {
	orderRepo   OrderStoreInterface
	receiptRepo ReceiptStoreInterface
	menuRepo    MenuRepositoryInterface
	logger      *logger.Logger
}

func NewReportRepository(orderRepo OrderStoreInterface, receiptRepo ReceiptStoreInterface, menuRepo MenuRepositoryInterface, log *logger.Logger) *ReportRepository {
	return &ReportRepository{
		orderRepo:   orderRepo,
		receiptRepo: receiptRepo,
		menuRepo:    menuRepo,
		logger:      log.WithComponent("report_repository"),
	}
}

func (r *ReportRepository) GetReportData() (orders []*models.Order, receipts []*models.Receipt, menuItems []*models.MenuItem, err error) {
	r.logger.Debug("Fetching data for reports")

	orders, err = r.orderRepo.ListAll()
	if err != nil {
		r.logger.Error("Failed to get orders for reporting", "error", err)
		return nil, nil, nil, err
	}

	receipts, err = r.receiptRepo.GetAll()
	if err != nil {
		r.logger.Error("Failed to get receipts for reporting", "error", err)
		return nil, nil, nil, err
	}

	menuItems, err = r.menuRepo.GetAll()
	if err != nil {
		r.logger.Error("Failed to get menu items for reporting", "error", err)
		return nil, nil, nil, err
	}

	return orders, receipts, menuItems, nil
}
