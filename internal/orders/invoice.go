package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// InvoiceLine is a billed order line.
type InvoiceLine struct {
	Product    string          `json:"product"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Amount     decimal.Decimal `json:"amount"`
}

// Invoice is the billing document issued for an order.
type Invoice struct {
	Number     string          `json:"number"`
	OrderID    int64           `json:"order_id"`
	Customer   string          `json:"customer"`
	IssuedAt   time.Time       `json:"issued_at"`
	Lines      []InvoiceLine   `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

// BuildInvoice bills every line at quantity times unit price. Line amounts and
// the tax are rounded to paise before summing.
func BuildInvoice(order Order, taxPercent float64, issuedAt time.Time) Invoice {
	inv := Invoice{
		Number:     InvoiceNumber(issuedAt),
		OrderID:    order.ID,
		Customer:   order.Customer,
		IssuedAt:   issuedAt,
		Lines:      make([]InvoiceLine, 0, len(order.Lines)),
		Subtotal:   decimal.Zero,
		TaxPercent: decimal.NewFromFloat(taxPercent),
	}

	for _, l := range order.Lines {
		qty := decimal.NewFromFloat(l.QuantityKg)
		price := decimal.NewFromFloat(l.UnitPrice)
		amount := qty.Mul(price).Round(moneyPlaces)
		inv.Lines = append(inv.Lines, InvoiceLine{
			Product:    l.Product,
			QuantityKg: qty,
			UnitPrice:  price,
			Amount:     amount,
		})
		inv.Subtotal = inv.Subtotal.Add(amount)
	}

	inv.Tax = inv.Subtotal.Mul(inv.TaxPercent).Div(decimal.NewFromInt(100)).Round(moneyPlaces)
	inv.Total = inv.Subtotal.Add(inv.Tax)
	return inv
}

// InvoiceNumber returns a number of the form INV-YYYYMM-XXXXXXXX.
func InvoiceNumber(issuedAt time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", issuedAt.Format("200601"), suffix)
}
