package service

import (
	"context"

	"github.com/HA2077/SmartChef/internal/audit"
	"github.com/HA2077/SmartChef/internal/repositories"
	"github.com/HA2077/SmartChef/models"
	"github.com/HA2077/SmartChef/pkg/logger"
	"github.com/HA2077/SmartChef/pkg/metrics"
)

// OrderServiceInterface drives orders through their lifecycle. Every
// operation takes the caller's session; there is no ambient user.
type OrderServiceInterface interface {
	CreateOrder(sess *models.Session, customerID string) (*models.Order, error)
	AddItem(sess *models.Session, order *models.Order, productID string, quantity int) error
	RemoveItem(sess *models.Session, order *models.Order, productID string) error
	ReduceItem(sess *models.Session, order *models.Order, productID string, quantity int) error
	SubmitOrder(sess *models.Session, order *models.Order) error
	ClaimOrder(sess *models.Session, orderID string) (*models.Order, error)
	CompleteOrder(sess *models.Session, orderID string, tipPercent float64) (*models.Receipt, error)
	CancelOrder(sess *models.Session, orderID string) (*models.Order, error)
	GetOrderByID(id string) (*models.Order, error)
	GetAllOrders() ([]*models.Order, error)
	KitchenQueue() ([]*models.Order, error)
	CompletedOrders() ([]*models.Order, error)
	ClearStore(sess *models.Session) error
}

// OrderService struct
type OrderService struct {
	orderRepo repositories.OrderStoreInterface
	menuRepo  repositories.MenuRepositoryInterface
	receipts  ReceiptServiceInterface
	recorder  audit.Recorder
	metrics   *metrics.CoordinatorMetrics
	logger    *logger.Logger
}

// NewOrderService creates a new OrderService with the given
// collaborators. recorder and m may be nil-equivalent (NopRecorder,
// nil metrics).
func NewOrderService(orderRepo repositories.OrderStoreInterface, menuRepo repositories.MenuRepositoryInterface, receipts ReceiptServiceInterface, recorder audit.Recorder, m *metrics.CoordinatorMetrics, log *logger.Logger) *OrderService {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &OrderService{
		orderRepo: orderRepo,
		menuRepo:  menuRepo,
		receipts:  receipts,
		recorder:  recorder,
		metrics:   m,
		logger:    log.WithComponent("order_service"),
	}
}

// CreateOrder opens a draft order. Drafts live with the producer until
// submission; only SubmitOrder makes them visible to other roles.
func (s *OrderService) CreateOrder(sess *models.Session, customerID string) (*models.Order, error) {
	if !sess.Can(models.CapCreateOrder) {
		return nil, s.denied(sess, models.CapCreateOrder)
	}

	order, err := models.NewOrder(customerID)
	if err != nil {
		s.logger.Warn("Create failed: invalid data", "error", err)
		return nil, err
	}

	s.logger.Info("Order created", "order_id", order.ID, "customer_id", customerID)
	return order, nil
}

// AddItem resolves the product against the catalog and merges it into
// the order. Item changes on orders past DRAFT are permitted (the
// kitchen correcting a mistaken order) but logged.
func (s *OrderService) AddItem(sess *models.Session, order *models.Order, productID string, quantity int) error {
	if !sess.Can(models.CapEditItems) {
		return s.denied(sess, models.CapEditItems)
	}

	menuItem, err := s.menuRepo.GetByID(productID)
	if err != nil {
		s.logger.Warn("Add item failed: unknown product", "product_id", productID, "error", err)
		return err
	}
	if !menuItem.Available {
		s.logger.Warn("Add item failed: product unavailable", "product_id", productID)
		return &models.ValidationError{Field: "product_id", Reason: "item is not currently available"}
	}

	if order.Status != models.StatusDraft {
		s.logger.Warn("Item change on submitted order", "order_id", order.ID, "status", order.Status)
	}

	if err := order.AddItem(menuItem.ID, menuItem.Name, menuItem.Price, quantity); err != nil {
		return err
	}
	s.logger.Info("Added item", "order_id", order.ID, "product_id", productID, "quantity", quantity)

	return s.persistIfSubmitted(sess, order)
}

// RemoveItem deletes a line from the order.
func (s *OrderService) RemoveItem(sess *models.Session, order *models.Order, productID string) error {
	if !sess.Can(models.CapEditItems) {
		return s.denied(sess, models.CapEditItems)
	}

	if order.Status != models.StatusDraft {
		s.logger.Warn("Item change on submitted order", "order_id", order.ID, "status", order.Status)
	}

	if err := order.RemoveItem(productID); err != nil {
		s.logger.Warn("Remove item failed", "order_id", order.ID, "product_id", productID, "error", err)
		return err
	}
	s.logger.Info("Removed item", "order_id", order.ID, "product_id", productID)

	return s.persistIfSubmitted(sess, order)
}

// ReduceItem decrements a line, deleting it when the reduction covers
// the current quantity.
func (s *OrderService) ReduceItem(sess *models.Session, order *models.Order, productID string, quantity int) error {
	if !sess.Can(models.CapEditItems) {
		return s.denied(sess, models.CapEditItems)
	}

	if order.Status != models.StatusDraft {
		s.logger.Warn("Item change on submitted order", "order_id", order.ID, "status", order.Status)
	}

	if err := order.ReduceItem(productID, quantity); err != nil {
		s.logger.Warn("Reduce item failed", "order_id", order.ID, "product_id", productID, "error", err)
		return err
	}
	s.logger.Info("Reduced item", "order_id", order.ID, "product_id", productID, "quantity", quantity)

	return s.persistIfSubmitted(sess, order)
}

// SubmitOrder moves a draft to PENDING and makes it visible to the
// fulfillment role through the shared store.
func (s *OrderService) SubmitOrder(sess *models.Session, order *models.Order) error {
	if !sess.Can(models.CapSubmitOrder) {
		return s.denied(sess, models.CapSubmitOrder)
	}

	from := order.Status
	if err := order.UpdateStatus(models.StatusPending); err != nil {
		s.logger.Warn("Submit rejected", "order_id", order.ID, "error", err)
		return err
	}

	if err := s.orderRepo.Save(order); err != nil {
		// The transition is not committed; put the draft back.
		order.Status = from
		s.logger.Error("Failed to persist submitted order", "order_id", order.ID, "error", err)
		return err
	}

	s.metrics.ObserveTransition(string(from), string(models.StatusPending))
	s.record(sess, audit.Event{
		OrderID: order.ID, Kind: audit.EventTransitioned,
		FromStatus: from, ToStatus: models.StatusPending,
	})
	s.logger.Info("Order submitted", "order_id", order.ID, "total", order.Total())
	return nil
}

// ClaimOrder advances PENDING -> PROCESSING for the fulfillment role.
func (s *OrderService) ClaimOrder(sess *models.Session, orderID string) (*models.Order, error) {
	return s.transition(sess, orderID, models.StatusProcessing, models.CapAdvanceOrder)
}

// CompleteOrder advances PROCESSING -> COMPLETED and issues the
// receipt from the completed snapshot. The order stays in the store as
// history.
func (s *OrderService) CompleteOrder(sess *models.Session, orderID string, tipPercent float64) (*models.Receipt, error) {
	if !sess.Can(models.CapIssueReceipt) {
		return nil, s.denied(sess, models.CapIssueReceipt)
	}

	order, err := s.transition(sess, orderID, models.StatusCompleted, models.CapAdvanceOrder)
	if err != nil {
		return nil, err
	}

	receipt, err := s.receipts.Issue(order, tipPercent)
	if err != nil {
		s.logger.Error("Order completed but receipt issue failed", "order_id", orderID, "error", err)
		return nil, err
	}

	s.record(sess, audit.Event{
		OrderID: order.ID, Kind: audit.EventReceiptIssued,
		FromStatus: models.StatusCompleted, ToStatus: models.StatusCompleted,
		Detail: receipt.ID,
	})
	return receipt, nil
}

// CancelOrder cancels a persisted order from any non-terminal state.
// No receipt is ever issued for a cancelled order.
func (s *OrderService) CancelOrder(sess *models.Session, orderID string) (*models.Order, error) {
	return s.transition(sess, orderID, models.StatusCancelled, models.CapCancelOrder)
}

// GetOrderByID retrieves a specific order by ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	if id == "" {
		return nil, &models.ValidationError{Field: "order_id", Reason: "cannot be empty"}
	}
	return s.orderRepo.GetByID(id)
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]*models.Order, error) {
	return s.orderRepo.ListAll()
}

// KitchenQueue retrieves the orders the fulfillment view polls for.
func (s *OrderService) KitchenQueue() ([]*models.Order, error) {
	return s.orderRepo.ListByStatus(models.StatusPending, models.StatusProcessing)
}

// CompletedOrders retrieves the orders the reporting view polls for.
func (s *OrderService) CompletedOrders() ([]*models.Order, error) {
	return s.orderRepo.ListByStatus(models.StatusCompleted)
}

// ClearStore resets the order collection. Used only at controlled
// lifecycle boundaries, never during normal operation.
func (s *OrderService) ClearStore(sess *models.Session) error {
	if !sess.Can(models.CapResetStore) {
		return s.denied(sess, models.CapResetStore)
	}
	if err := s.orderRepo.ClearAll(); err != nil {
		return err
	}
	s.record(sess, audit.Event{Kind: audit.EventStoreCleared})
	return nil
}

// transition re-reads the order from the store immediately before
// transitioning so the caller never acts on a stale snapshot
// (read-verify-transition-write, not blind overwrite).
func (s *OrderService) transition(sess *models.Session, orderID string, next models.OrderStatus, capability models.Capability) (*models.Order, error) {
	if !sess.Can(capability) {
		return nil, s.denied(sess, capability)
	}
	if orderID == "" {
		return nil, &models.ValidationError{Field: "order_id", Reason: "cannot be empty"}
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		s.logger.Warn("Order not found for transition", "order_id", orderID, "error", err)
		return nil, err
	}

	from := order.Status
	if err := order.UpdateStatus(next); err != nil {
		s.logger.Warn("Transition rejected", "order_id", orderID, "from", from, "to", next, "error", err)
		return nil, err
	}

	if err := s.orderRepo.Save(order); err != nil {
		s.logger.Error("Failed to persist transition", "order_id", orderID, "from", from, "to", next, "error", err)
		return nil, err
	}

	s.metrics.ObserveTransition(string(from), string(next))
	s.record(sess, audit.Event{
		OrderID: order.ID, Kind: audit.EventTransitioned,
		FromStatus: from, ToStatus: next,
	})
	s.logger.Info("Order transitioned", "order_id", orderID, "from", from, "to", next)
	return order, nil
}

// persistIfSubmitted writes item changes straight through for orders
// already visible in the shared store. Drafts stay with the producer.
func (s *OrderService) persistIfSubmitted(sess *models.Session, order *models.Order) error {
	if order.Status == models.StatusDraft {
		return nil
	}
	if err := s.orderRepo.Save(order); err != nil {
		s.logger.Error("Failed to persist item change", "order_id", order.ID, "error", err)
		return err
	}
	s.record(sess, audit.Event{
		OrderID: order.ID, Kind: audit.EventSaved,
		FromStatus: order.Status, ToStatus: order.Status,
		Detail: "item change after submission",
	})
	return nil
}

func (s *OrderService) denied(sess *models.Session, capability models.Capability) error {
	var role models.Role
	if sess != nil {
		role = sess.User.Role
	}
	s.logger.Warn("Capability denied", "role", role, "capability", capability)
	return &models.PermissionError{Role: role, Capability: capability}
}

func (s *OrderService) record(sess *models.Session, event audit.Event) {
	if sess != nil {
		event.Actor = sess.User.Username
	}
	if err := s.recorder.Record(context.Background(), event); err != nil {
		s.logger.Warn("Failed to record audit event", "order_id", event.OrderID, "kind", event.Kind, "error", err)
	}
}
