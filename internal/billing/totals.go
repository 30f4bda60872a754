// Package billing holds the invoice arithmetic and the composition of the typed invoices (timesheet, recurring,
// credit note) that callers hand to the invoice store.
package billing

import (
	"strconv"
	"strings"

	"invoicer/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculateTotals derives the invoice amounts from the item totals. Rates are percentages.
// Nothing is clamped: negative rates or a discount above 100 produce negative amounts.
func CalculateTotals(items []types.InvoiceItem, taxRate, discountRate float64) types.Totals {
	subtotal := 0.0
	for _, it := range items {
		subtotal += it.Total
	}
	tax := subtotal * taxRate / 100
	discount := subtotal * discountRate / 100
	return types.Totals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: discount,
		Total:          subtotal + tax - discount,
	}
}

// Recalculate builds a patch carrying items, rates and the totals derived from them, for callers that
// change items through InvoiceStore.Update.
func Recalculate(items []types.InvoiceItem, taxRate, discountRate float64) types.InvoicePatch {
	t := CalculateTotals(items, taxRate, discountRate)
	if items == nil {
		items = []types.InvoiceItem{}
	}
	return types.InvoicePatch{
		Items:          items,
		Subtotal:       &t.Subtotal,
		TaxRate:        &taxRate,
		TaxAmount:      &t.TaxAmount,
		DiscountRate:   &discountRate,
		DiscountAmount: &t.DiscountAmount,
		Total:          &t.Total,
	}
}

func ItemTotal(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// NewItem returns an item with a fresh id and its total computed from quantity and unit price.
func NewItem(description string, quantity, unitPrice float64) types.InvoiceItem {
	return types.InvoiceItem{
		ID:          uuid.NewString(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       ItemTotal(quantity, unitPrice),
	}
}

// WithQuantity and WithUnitPrice mirror the item editor: changing either input refreshes the total.
func WithQuantity(it types.InvoiceItem, quantity float64) types.InvoiceItem {
	it.Quantity = quantity
	it.Total = ItemTotal(it.Quantity, it.UnitPrice)
	return it
}

func WithUnitPrice(it types.InvoiceItem, unitPrice float64) types.InvoiceItem {
	it.UnitPrice = unitPrice
	it.Total = ItemTotal(it.Quantity, it.UnitPrice)
	return it
}

// ValidItems drops items with a blank description.
func ValidItems(items []types.InvoiceItem) []types.InvoiceItem {
	out := make([]types.InvoiceItem, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Description) != "" {
			out = append(out, it)
		}
	}
	return out
}

// Money renders an amount with two decimals, without currency symbol.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// number renders hours and rates the short way: 2, 2.5, 0.25.
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
