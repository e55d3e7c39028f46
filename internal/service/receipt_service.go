package service

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/HA2077/SmartChef/internal/repositories"
	"github.com/HA2077/SmartChef/models"
	"github.com/HA2077/SmartChef/pkg/logger"
)

// Pure receipt arithmetic. Everything here derives from the order
// snapshot; nothing mutates it.

// CalculateSubtotal is the order amount before tax and tip.
func CalculateSubtotal(order *models.Order) float64 {
	return order.Total()
}

// CalculateTax applies the tax rate to the subtotal.
func CalculateTax(order *models.Order, taxRate float64) float64 {
	return CalculateSubtotal(order) * taxRate
}

// CalculateTip applies the tip percentage to the subtotal.
func CalculateTip(order *models.Order, tipPercent float64) float64 {
	return CalculateSubtotal(order) * tipPercent
}

// CalculateTotal is subtotal + tax + tip.
func CalculateTotal(order *models.Order, taxRate, tipPercent float64) float64 {
	subtotal := CalculateSubtotal(order)
	return subtotal + subtotal*taxRate + subtotal*tipPercent
}

// ReceiptServiceInterface issues, renders and delivers receipts.
type ReceiptServiceInterface interface {
	Issue(order *models.Order, tipPercent float64) (*models.Receipt, error)
	IssueDigital(order *models.Order, tipPercent float64, email string) (*models.Receipt, error)
	Send(receiptID string) error
	RenderSimple(receipt *models.Receipt) string
	RenderDetailed(receipt *models.Receipt) string
	RenderHTML(receipt *models.Receipt) (string, error)
}

// ReceiptService struct
type ReceiptService struct {
	receiptRepo repositories.ReceiptStoreInterface
	taxRate     float64
	logger      *logger.Logger
}

// NewReceiptService creates a receipt service with the configured tax
// rate.
func NewReceiptService(receiptRepo repositories.ReceiptStoreInterface, taxRate float64, log *logger.Logger) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		taxRate:     taxRate,
		logger:      log.WithComponent("receipt_service"),
	}
}

// Issue derives a receipt from the order and appends it to the receipt
// store. The embedded order is a snapshot: later changes to the live
// order cannot drift the receipt's numbers.
func (s *ReceiptService) Issue(order *models.Order, tipPercent float64) (*models.Receipt, error) {
	return s.issue(order, tipPercent, "")
}

// IssueDigital issues a receipt destined for email delivery.
func (s *ReceiptService) IssueDigital(order *models.Order, tipPercent float64, email string) (*models.Receipt, error) {
	if email == "" {
		return nil, &models.ValidationError{Field: "email", Reason: "digital receipt requires an email address"}
	}
	return s.issue(order, tipPercent, email)
}

func (s *ReceiptService) issue(order *models.Order, tipPercent float64, email string) (*models.Receipt, error) {
	if order == nil || len(order.Items) == 0 {
		s.logger.Warn("Refused receipt for empty order")
		return nil, &models.ValidationError{Field: "order", Reason: "cannot create receipt for empty order"}
	}
	if s.taxRate < 0 || s.taxRate > 1 {
		return nil, &models.ValidationError{Field: "tax_rate", Reason: "must be between 0 and 1"}
	}
	if tipPercent < 0 || tipPercent > 1 {
		return nil, &models.ValidationError{Field: "tip_percent", Reason: "must be between 0 and 1"}
	}

	receipt := &models.Receipt{
		ID:         models.NewReceiptID(),
		Order:      *order.Clone(),
		TaxRate:    s.taxRate,
		TipPercent: tipPercent,
		IssuedAt:   time.Now(),
		Email:      email,
	}
	if email != "" {
		receipt.DeliveryStatus = models.DeliveryPending
	}

	if err := s.receiptRepo.Append(receipt); err != nil {
		s.logger.Error("Failed to append receipt", "receipt_id", receipt.ID, "order_id", order.ID, "error", err)
		return nil, err
	}

	s.logger.Info("Receipt issued", "receipt_id", receipt.ID, "order_id", order.ID, "total", receipt.GrandTotal())
	return receipt, nil
}

// Send marks a digital receipt delivered. Delivery status is the sole
// facet of an issued receipt that may change.
func (s *ReceiptService) Send(receiptID string) error {
	receipt, err := s.receiptRepo.GetByID(receiptID)
	if err != nil {
		return err
	}
	if receipt.Email == "" {
		return &models.ValidationError{Field: "email", Reason: "receipt has no delivery address"}
	}

	if err := s.receiptRepo.MarkDelivered(receiptID); err != nil {
		s.logger.Error("Failed to mark receipt delivered", "receipt_id", receiptID, "error", err)
		return err
	}
	s.logger.Info("Receipt sent", "receipt_id", receiptID, "email", receipt.Email)
	return nil
}

// RenderSimple produces the short till printout.
func (s *ReceiptService) RenderSimple(receipt *models.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RECEIPT #%s\n", receipt.ID)
	fmt.Fprintf(&b, "Order: #%s\n", receipt.Order.ID)
	fmt.Fprintf(&b, "Date: %s\n", receipt.IssuedAt.Format("2006-01-02 15:04"))
	b.WriteString(strings.Repeat("-", 40) + "\n")

	for _, item := range receipt.Order.Items {
		fmt.Fprintf(&b, "%s x%d = $%.2f\n", item.Name, item.Quantity, item.Subtotal)
	}

	b.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "Subtotal: $%.2f\n", receipt.Subtotal())
	fmt.Fprintf(&b, "Tax (%.1f%%): $%.2f\n", receipt.TaxRate*100, receipt.Tax())
	if receipt.TipPercent > 0 {
		fmt.Fprintf(&b, "Tip (%.1f%%): $%.2f\n", receipt.TipPercent*100, receipt.Tip())
	}
	fmt.Fprintf(&b, "TOTAL: $%.2f\n", receipt.GrandTotal())
	b.WriteString(strings.Repeat("=", 40) + "\n")
	b.WriteString("Thank you for your business!")
	return b.String()
}

// RenderDetailed produces the itemized invoice layout.
func (s *ReceiptService) RenderDetailed(receipt *models.Receipt) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", 15) + "INVOICE / RECEIPT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Receipt: #%-20s Order: #%s\n", receipt.ID, receipt.Order.ID)
	fmt.Fprintf(&b, "Customer: %s\n", receipt.Order.CustomerID)
	fmt.Fprintf(&b, "Date: %s\n", receipt.IssuedAt.Format("2006-01-02 03:04 PM"))
	b.WriteString(strings.Repeat("=", 50) + "\n")

	fmt.Fprintf(&b, "%-20s %5s %8s %10s\n", "Item", "Qty", "Price", "Total")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, item := range receipt.Order.Items {
		name := item.Name
		if len(name) > 19 {
			name = name[:19]
		}
		fmt.Fprintf(&b, "%-20s %5d $%7.2f $%9.2f\n", name, item.Quantity, item.Price, item.Subtotal)
	}
	b.WriteString(strings.Repeat("-", 50) + "\n")

	fmt.Fprintf(&b, "%-35s $%10.2f\n", "Subtotal:", receipt.Subtotal())
	fmt.Fprintf(&b, "%-35s $%10.2f\n", fmt.Sprintf("Tax (%.1f%%):", receipt.TaxRate*100), receipt.Tax())
	if receipt.TipPercent > 0 {
		fmt.Fprintf(&b, "%-35s $%10.2f\n", fmt.Sprintf("Tip (%.1f%%):", receipt.TipPercent*100), receipt.Tip())
	}
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "%-35s $%10.2f\n", "GRAND TOTAL:", receipt.GrandTotal())
	b.WriteString(strings.Repeat("=", 50) + "\n")

	fmt.Fprintf(&b, "Items: %d | Unique: %d\n", receipt.Order.ItemCount(), receipt.Order.UniqueItemCount())
	fmt.Fprintf(&b, "Order Status: %s\n", receipt.Order.Status)
	b.WriteString("\nThank you for your purchase!\n")
	b.WriteString("Please retain this receipt for your records")
	return b.String()
}

var htmlReceiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
.header { background-color: #f4f4f4; padding: 20px; text-align: center; }
.items { width: 100%; border-collapse: collapse; margin: 20px 0; }
.items th, .items td { border: 1px solid #ddd; padding: 8px; text-align: left; }
.total { font-size: 18px; font-weight: bold; margin-top: 20px; }
.footer { margin-top: 30px; color: #666; font-size: 12px; }
</style>
</head>
<body>
<div class="header">
<h1>INVOICE / RECEIPT</h1>
<p>Receipt: #{{.Receipt.ID}} | Order: #{{.Receipt.Order.ID}}</p>
</div>
<div class="details">
<p><strong>Customer:</strong> {{.Receipt.Order.CustomerID}}</p>
{{if .Receipt.Email}}<p><strong>Email:</strong> {{.Receipt.Email}}</p>{{end}}
<p><strong>Date:</strong> {{.IssuedAt}}</p>
</div>
<table class="items">
<thead><tr><th>Item</th><th>Quantity</th><th>Price</th><th>Total</th></tr></thead>
<tbody>
{{range .Receipt.Order.Items}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>${{printf "%.2f" .Price}}</td><td>${{printf "%.2f" .Subtotal}}</td></tr>
{{end}}</tbody>
</table>
<div class="total">
<p>Subtotal: ${{printf "%.2f" .Subtotal}}</p>
<p>Tax ({{printf "%.1f" .TaxPct}}%): ${{printf "%.2f" .Tax}}</p>
{{if gt .Receipt.TipPercent 0.0}}<p>Tip ({{printf "%.1f" .TipPct}}%): ${{printf "%.2f" .Tip}}</p>{{end}}
<p><strong>GRAND TOTAL: ${{printf "%.2f" .GrandTotal}}</strong></p>
</div>
<div class="footer">
<p>This is a digital receipt. Please retain for your records.</p>
<p>Order Status: {{.Receipt.Order.Status}}</p>
<p>Thank you for your business!</p>
</div>
</body>
</html>`))

// RenderHTML produces the email body for digital delivery.
func (s *ReceiptService) RenderHTML(receipt *models.Receipt) (string, error) {
	data := struct {
		Receipt    *models.Receipt
		IssuedAt   string
		Subtotal   float64
		Tax        float64
		Tip        float64
		GrandTotal float64
		TaxPct     float64
		TipPct     float64
	}{
		Receipt:    receipt,
		IssuedAt:   receipt.IssuedAt.Format("2006-01-02 15:04"),
		Subtotal:   receipt.Subtotal(),
		Tax:        receipt.Tax(),
		Tip:        receipt.Tip(),
		GrandTotal: receipt.GrandTotal(),
		TaxPct:     receipt.TaxRate * 100,
		TipPct:     receipt.TipPercent * 100,
	}

	var b strings.Builder
	if err := htmlReceiptTemplate.Execute(&b, data); err != nil {
		s.logger.Error("Failed to render HTML receipt", "receipt_id", receipt.ID, "error", err)
		return "", err
	}
	return b.String(), nil
}
