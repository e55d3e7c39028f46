package service

import (
	"sort"

	"github.com/HA2077/SmartChef/internal/repositories"
	"github.com/HA2077/SmartChef/models"
	"github.com/HA2077/SmartChef/pkg/logger"
)

type ReportServiceInterface interface {
	GetTotalSales(sess *models.Session) (*TotalSales, error)
	GetPopularItems(sess *models.Session) ([]PopularItem, error)
	GetStatusCounts(sess *models.Session) (map[models.OrderStatus]int, error)
	GetRecentOrders(sess *models.Session, limit int) ([]*models.Order, error)
	GetReceiptRevenue(sess *models.Session) (float64, error)
}

type TotalSales struct {
	TotalRevenue float64    `json:"total_revenue"`
	ItemSales    []ItemSale `json:"item_sales"`
}

type ItemSale struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	QuantitySold int     `json:"quantity_sold"`
	TotalValue   float64 `json:"total_value"`
}

type PopularItem struct {
	models.MenuItem
	SalesCount int `json:"sales_count"`
}

type ReportService struct {
	reportRepo repositories.ReportRepositoryInterface
	logger     *logger.Logger
}

func NewReportService(reportRepo repositories.ReportRepositoryInterface, log *logger.Logger) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		logger:     log.WithComponent("report_service"),
	}
}

// GetTotalSales aggregates revenue and per-product sales over
// completed orders. Line items carry their own name and price at order
// time, so no catalog join is needed.
func (s *ReportService) GetTotalSales(sess *models.Session) (*TotalSales, error) {
	if !sess.Can(models.CapViewReports) {
		return nil, &models.PermissionError{Role: roleOf(sess), Capability: models.CapViewReports}
	}
	s.logger.Info("Calculating total sales report")

	orders, _, _, err := s.reportRepo.GetReportData()
	if err != nil {
		s.logger.Error("Failed to get data for sales report", "error", err)
		return nil, err
	}

	report := &TotalSales{
		ItemSales: make([]ItemSale, 0),
	}
	itemSalesMap := make(map[string]*ItemSale)

	for _, order := range orders {
		if order.Status != models.StatusCompleted {
			continue
		}
		for _, orderItem := range order.Items {
			itemValue := orderItem.Price * float64(orderItem.Quantity)
			report.TotalRevenue += itemValue

			if sale, exists := itemSalesMap[orderItem.ProductID]; exists {
				sale.QuantitySold += orderItem.Quantity
				sale.TotalValue += itemValue
			} else {
				itemSalesMap[orderItem.ProductID] = &ItemSale{
					ProductID:    orderItem.ProductID,
					ProductName:  orderItem.Name,
					QuantitySold: orderItem.Quantity,
					TotalValue:   itemValue,
				}
			}
		}
	}

	for _, sale := range itemSalesMap {
		report.ItemSales = append(report.ItemSales, *sale)
	}

	sort.Slice(report.ItemSales, func(i, j int) bool {
		return report.ItemSales[i].ProductName < report.ItemSales[j].ProductName
	})

	s.logger.Info("Total sales report calculated", "total_revenue", report.TotalRevenue)
	return report, nil
}

// GetPopularItems ranks catalog items by quantity sold across
// completed orders.
func (s *ReportService) GetPopularItems(sess *models.Session) ([]PopularItem, error) {
	if !sess.Can(models.CapViewReports) {
		return nil, &models.PermissionError{Role: roleOf(sess), Capability: models.CapViewReports}
	}
	s.logger.Info("Calculating popular items report")

	orders, _, menuItems, err := s.reportRepo.GetReportData()
	if err != nil {
		s.logger.Error("Failed to get data for popular items report", "error", err)
		return nil, err
	}

	salesCount := make(map[string]int)
	for _, order := range orders {
		if order.Status != models.StatusCompleted {
			continue
		}
		for _, item := range order.Items {
			salesCount[item.ProductID] += item.Quantity
		}
	}

	var popularItems []PopularItem
	for _, menuItem := range menuItems {
		popularItems = append(popularItems, PopularItem{
			MenuItem:   *menuItem,
			SalesCount: salesCount[menuItem.ID],
		})
	}

	sort.Slice(popularItems, func(i, j int) bool {
		return popularItems[i].SalesCount > popularItems[j].SalesCount
	})

	return popularItems, nil
}

// GetStatusCounts tallies the persisted orders by lifecycle state.
func (s *ReportService) GetStatusCounts(sess *models.Session) (map[models.OrderStatus]int, error) {
	if !sess.Can(models.CapViewReports) {
		return nil, &models.PermissionError{Role: roleOf(sess), Capability: models.CapViewReports}
	}

	orders, _, _, err := s.reportRepo.GetReportData()
	if err != nil {
		return nil, err
	}

	counts := make(map[models.OrderStatus]int)
	for _, order := range orders {
		counts[order.Status]++
	}
	return counts, nil
}

// GetRecentOrders returns the most recently updated orders, newest
// first.
func (s *ReportService) GetRecentOrders(sess *models.Session, limit int) ([]*models.Order, error) {
	if !sess.Can(models.CapViewReports) {
		return nil, &models.PermissionError{Role: roleOf(sess), Capability: models.CapViewReports}
	}
	if limit <= 0 {
		return nil, &models.ValidationError{Field: "limit", Reason: "must be positive"}
	}

	orders, _, _, err := s.reportRepo.GetReportData()
	if err != nil {
		return nil, err
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].UpdatedAt.After(orders[j].UpdatedAt)
	})
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// GetReceiptRevenue sums the grand totals of every issued receipt,
// tax and tip included.
func (s *ReportService) GetReceiptRevenue(sess *models.Session) (float64, error) {
	if !sess.Can(models.CapViewReports) {
		return 0, &models.PermissionError{Role: roleOf(sess), Capability: models.CapViewReports}
	}

	_, receipts, _, err := s.reportRepo.GetReportData()
	if err != nil {
		return 0, err
	}

	var revenue float64
	for _, receipt := range receipts {
		revenue += receipt.GrandTotal()
	}
	return revenue, nil
}

func roleOf(sess *models.Session) models.Role {
	if sess == nil {
		return ""
	}
	return sess.User.Role
}
