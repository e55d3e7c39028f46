// Package tui is the terminal dashboard: a POS view for composing and
// submitting orders, a kitchen view for advancing them, and a reports
// view. It is a pure consumer of the refresh contract: every tick it
// rebuilds its lists from the store and renders; it holds no authority
// of its own.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HA2077/SmartChef/internal/service"
	"github.com/HA2077/SmartChef/models"
	"github.com/HA2077/SmartChef/pkg/logger"
	"github.com/HA2077/SmartChef/pkg/metrics"
)

type view int

const (
	viewPOS view = iota
	viewKitchen
	viewReports
)

var viewNames = map[view]string{
	viewPOS:     "POS",
	viewKitchen: "KITCHEN",
	viewReports: "REPORTS",
}

type tickMsg time.Time

// snapshot is what one poll of the store yields.
type snapshot struct {
	menu   []*models.MenuItem
	queue  []*models.Order
	sales  *service.TotalSales
	counts map[models.OrderStatus]int
	recent []*models.Order
	err    error
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	sess       *models.Session
	orders     service.OrderServiceInterface
	receipts   service.ReceiptServiceInterface
	reports    service.ReportServiceInterface
	menuSource func() ([]*models.MenuItem, error)
	metrics    *metrics.CoordinatorMetrics
	logger     *logger.Logger
	interval   time.Duration
	tipPercent float64

	current      view
	menu         []*models.MenuItem
	queue        []*models.Order
	sales        *service.TotalSales
	counts       map[models.OrderStatus]int
	recent       []*models.Order
	draft        *models.Order
	selectedItem int
	selectedOrd  int
	status       string
	lastReceipt  string
}

// New creates the dashboard model.
func New(sess *models.Session, orders service.OrderServiceInterface, receipts service.ReceiptServiceInterface, reports service.ReportServiceInterface, menuSource func() ([]*models.MenuItem, error), m *metrics.CoordinatorMetrics, log *logger.Logger, interval time.Duration, tipPercent float64) Model {
	return Model{
		sess:       sess,
		orders:     orders,
		receipts:   receipts,
		reports:    reports,
		menuSource: menuSource,
		metrics:    m,
		logger:     log.WithComponent("tui"),
		interval:   interval,
		tipPercent: tipPercent,
		status:     "Ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), tick(m.interval))
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// pollCmd reloads everything the three views show. The full rebuild on
// every tick is the refresh contract: no incremental state, no pushes.
func (m Model) pollCmd() tea.Cmd {
	orders := m.orders
	reports := m.reports
	menuSource := m.menuSource
	sess := m.sess
	return func() tea.Msg {
		var snap snapshot
		snap.menu, snap.err = menuSource()
		if snap.err != nil {
			return snap
		}
		snap.queue, snap.err = orders.KitchenQueue()
		if snap.err != nil {
			return snap
		}
		if sess.Can(models.CapViewReports) {
			if snap.sales, snap.err = reports.GetTotalSales(sess); snap.err != nil {
				return snap
			}
			if snap.counts, snap.err = reports.GetStatusCounts(sess); snap.err != nil {
				return snap
			}
			snap.recent, snap.err = reports.GetRecentOrders(sess, 10)
		}
		return snap
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.metrics.ObserveRefresh("dashboard")
		return m, tea.Batch(m.pollCmd(), tick(m.interval))

	case snapshot:
		if msg.err != nil {
			m.status = fmt.Sprintf("Refresh failed: %v", msg.err)
			return m, nil
		}
		m.menu = msg.menu
		m.queue = msg.queue
		m.sales = msg.sales
		m.counts = msg.counts
		m.recent = msg.recent
		if m.selectedOrd >= len(m.queue) {
			m.selectedOrd = 0
		}
		if m.selectedItem >= len(m.menu) {
			m.selectedItem = 0
		}
		counts := make(map[string]int, len(msg.counts))
		for status, count := range msg.counts {
			counts[string(status)] = count
		}
		m.metrics.SetOrdersByStatus(counts)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		m.current = (m.current + 1) % 3
		m.status = "Ready"
		return m, nil
	}

	switch m.current {
	case viewPOS:
		return m.handlePOSKey(msg)
	case viewKitchen:
		return m.handleKitchenKey(msg)
	}
	return m, nil
}

func (m Model) handlePOSKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		if m.selectedItem > 0 {
			m.selectedItem--
		}
	case "down":
		if m.selectedItem < len(m.menu)-1 {
			m.selectedItem++
		}
	case "n":
		order, err := m.orders.CreateOrder(m.sess, fmt.Sprintf("table-%s", time.Now().Format("150405")))
		if err != nil {
			m.status = fmt.Sprintf("New order failed: %v", err)
			return m, nil
		}
		m.draft = order
		m.status = fmt.Sprintf("Composing order %s", order.ID)
	case "enter", "+":
		if m.draft == nil || len(m.menu) == 0 {
			m.status = "Press n to start an order first"
			return m, nil
		}
		item := m.menu[m.selectedItem]
		if err := m.orders.AddItem(m.sess, m.draft, item.ID, 1); err != nil {
			m.status = fmt.Sprintf("Add failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Added %s", item.Name)
	case "-":
		if m.draft == nil || len(m.menu) == 0 {
			return m, nil
		}
		item := m.menu[m.selectedItem]
		if err := m.orders.ReduceItem(m.sess, m.draft, item.ID, 1); err != nil {
			m.status = fmt.Sprintf("Reduce failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Reduced %s", item.Name)
	case "s":
		if m.draft == nil {
			m.status = "Nothing to submit"
			return m, nil
		}
		if err := m.orders.SubmitOrder(m.sess, m.draft); err != nil {
			m.status = fmt.Sprintf("Submit failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Sent %s to kitchen ($%.2f)", m.draft.ID, m.draft.Total())
		m.draft = nil
		return m, m.pollCmd()
	}
	return m, nil
}

func (m Model) handleKitchenKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		if m.selectedOrd > 0 {
			m.selectedOrd--
		}
	case "down":
		if m.selectedOrd < len(m.queue)-1 {
			m.selectedOrd++
		}
	case "enter":
		if len(m.queue) == 0 {
			return m, nil
		}
		order := m.queue[m.selectedOrd]
		switch order.Status {
		case models.StatusPending:
			if _, err := m.orders.ClaimOrder(m.sess, order.ID); err != nil {
				m.status = fmt.Sprintf("Claim failed: %v", err)
				return m, nil
			}
			m.status = fmt.Sprintf("Preparing %s", order.ID)
		case models.StatusProcessing:
			receipt, err := m.orders.CompleteOrder(m.sess, order.ID, m.tipPercent)
			if err != nil {
				m.status = fmt.Sprintf("Complete failed: %v", err)
				return m, nil
			}
			m.lastReceipt = m.receipts.RenderSimple(receipt)
			m.status = fmt.Sprintf("Completed %s, receipt %s", order.ID, receipt.ID)
		}
		return m, m.pollCmd()
	case "c":
		if len(m.queue) == 0 {
			return m, nil
		}
		order := m.queue[m.selectedOrd]
		if _, err := m.orders.CancelOrder(m.sess, order.ID); err != nil {
			m.status = fmt.Sprintf("Cancel failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Cancelled %s", order.ID)
		return m, m.pollCmd()
	}
	return m, nil
}

func (m Model) View() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "SmartChef | %s (%s)\n", m.sess.User.Username, m.sess.User.Role)

	for v := viewPOS; v <= viewReports; v++ {
		if v == m.current {
			fmt.Fprintf(b, " [%s]", viewNames[v])
		} else {
			fmt.Fprintf(b, "  %s ", viewNames[v])
		}
	}
	fmt.Fprintln(b, "\n"+strings.Repeat("=", 60))

	switch m.current {
	case viewPOS:
		m.renderPOS(b)
	case viewKitchen:
		m.renderKitchen(b)
	case viewReports:
		m.renderReports(b)
	}

	fmt.Fprintf(b, "\nStatus: %s\n", m.status)
	fmt.Fprintln(b, "Controls: tab switch view, up/down select, q quit")
	return b.String()
}

func (m Model) renderPOS(b *strings.Builder) {
	fmt.Fprintln(b, "MENU")
	if len(m.menu) == 0 {
		fmt.Fprintln(b, "  (no items on the menu)")
	}
	for i, item := range m.menu {
		marker := " "
		if i == m.selectedItem {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %-24s %-10s $%6.2f\n", marker, item.Name, item.Category, item.Price)
	}

	fmt.Fprintln(b, "\nCURRENT ORDER")
	if m.draft == nil {
		fmt.Fprintln(b, "  (press n to start a new order)")
		return
	}
	fmt.Fprintf(b, "  #%s for %s\n", m.draft.ID, m.draft.CustomerID)
	for _, item := range m.draft.Items {
		fmt.Fprintf(b, "  %dx %-22s $%6.2f\n", item.Quantity, item.Name, item.Subtotal)
	}
	fmt.Fprintf(b, "  TOTAL: $%.2f\n", m.draft.Total())
	fmt.Fprintln(b, "  enter/+ add, - reduce, s send to kitchen")
}

func (m Model) renderKitchen(b *strings.Builder) {
	fmt.Fprintln(b, "ACTIVE ORDERS")
	if len(m.queue) == 0 {
		fmt.Fprintln(b, "  (no active orders)")
		return
	}
	for i, order := range m.queue {
		marker := " "
		if i == m.selectedOrd {
			marker = ">"
		}
		age := time.Since(order.CreatedAt).Round(time.Second)
		fmt.Fprintf(b, " %s %-14s %-11s %2d items $%7.2f  %s\n",
			marker, order.ID, order.Status, order.ItemCount(), order.Total(), age)
	}
	fmt.Fprintln(b, "\n  enter: claim/complete, c: cancel")

	if m.lastReceipt != "" {
		fmt.Fprintln(b, "\nLAST RECEIPT")
		for _, line := range strings.Split(m.lastReceipt, "\n") {
			fmt.Fprintf(b, "  %s\n", line)
		}
	}
}

func (m Model) renderReports(b *strings.Builder) {
	if !m.sess.Can(models.CapViewReports) {
		fmt.Fprintln(b, "  (your role cannot view reports)")
		return
	}

	fmt.Fprintln(b, "ORDERS BY STATUS")
	for _, status := range []models.OrderStatus{models.StatusPending, models.StatusProcessing, models.StatusCompleted, models.StatusCancelled} {
		fmt.Fprintf(b, "  %-11s %d\n", status, m.counts[status])
	}

	if m.sales != nil {
		fmt.Fprintf(b, "\nREVENUE (completed orders): $%.2f\n", m.sales.TotalRevenue)
		fmt.Fprintln(b, "TOP SELLERS")
		for i, sale := range m.sales.ItemSales {
			if i >= 5 {
				break
			}
			fmt.Fprintf(b, "  %-24s x%-4d $%8.2f\n", sale.ProductName, sale.QuantitySold, sale.TotalValue)
		}
	}

	fmt.Fprintln(b, "\nRECENT ORDERS")
	for _, order := range m.recent {
		fmt.Fprintf(b, "  %s  %-14s %-11s $%7.2f\n",
			order.UpdatedAt.Format("15:04:05"), order.ID, order.Status, order.Total())
	}
}
