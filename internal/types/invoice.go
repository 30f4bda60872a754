package types

import (
	"slices"
	"strings"
	"time"
)

// InvoiceType determines how the caller composed the items; the stored schema is the same for every type.
type InvoiceType string

const (
	TypeStandard   InvoiceType = "standard"
	TypeProforma   InvoiceType = "proforma"
	TypeTimesheet  InvoiceType = "timesheet"
	TypeRecurring  InvoiceType = "recurring"
	TypeCreditNote InvoiceType = "credit_note"
)

// Label is the display name used in shared summaries.
func (t InvoiceType) Label() string {
	switch t {
	case TypeStandard:
		return "Standard Invoice"
	case TypeProforma:
		return "Proforma Invoice"
	case TypeTimesheet:
		return "Timesheet Invoice"
	case TypeRecurring:
		return "Recurring Invoice"
	case TypeCreditNote:
		return "Credit Note"
	default:
		return "Invoice"
	}
}

func (t InvoiceType) IsValid() bool {
	switch t {
	case TypeStandard, TypeProforma, TypeTimesheet, TypeRecurring, TypeCreditNote:
		return true
	}
	return false
}

// Status is the lifecycle tag of an invoice.
//
//	draft -> sent -> paid
//	          |       ^
//	          v       |
//	        overdue --+
//
// paid is terminal. overdue -> sent is tolerated (re-sending a reminder).
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool { return s == StatusPaid }

// CanTransition reports whether an explicit action may move an invoice from s to next.
func (s Status) CanTransition(next Status) bool {
	switch next {
	case StatusSent:
		return s == StatusDraft || s == StatusOverdue
	case StatusPaid:
		return s == StatusSent || s == StatusOverdue
	case StatusOverdue:
		return s == StatusSent
	}
	return false
}

// InvoiceItem is one billed line. Total is expected to equal Quantity*UnitPrice but the store does not enforce it.
type InvoiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// TimesheetEntry is a unit of worked time. It is converted to invoice items and never persisted itself.
type TimesheetEntry struct {
	ID          string
	Date        time.Time
	Description string
	Hours       float64
	HourlyRate  float64
	Total       float64
}

type Invoice struct {
	ID             string        `json:"id"`
	InvoiceNumber  string        `json:"invoiceNumber"`
	Type           InvoiceType   `json:"type"`
	ClientID       string        `json:"clientId"`
	Client         *Client       `json:"client,omitempty"` // never populated by the store; join on ClientID instead
	Items          []InvoiceItem `json:"items"`
	Subtotal       float64       `json:"subtotal"`
	TaxRate        float64       `json:"taxRate"`
	TaxAmount      float64       `json:"taxAmount"`
	DiscountRate   float64       `json:"discountRate"`
	DiscountAmount float64       `json:"discountAmount"`
	Total          float64       `json:"total"`
	Status         Status        `json:"status"`
	DueDate        *time.Time    `json:"dueDate,omitempty"`
	IssueDate      time.Time     `json:"issueDate"`
	Notes          string        `json:"notes,omitempty"`
	PaymentTerms   string        `json:"paymentTerms,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Matches reports whether the lower-cased query is a substring of the invoice number or the notes.
func (inv Invoice) Matches(lowerQuery string) bool {
	return strings.Contains(strings.ToLower(inv.InvoiceNumber), lowerQuery) ||
		strings.Contains(strings.ToLower(inv.Notes), lowerQuery)
}

// Clone returns a deep copy so callers never alias store state.
func (inv Invoice) Clone() Invoice {
	inv.Items = slices.Clone(inv.Items)
	if inv.DueDate != nil {
		d := *inv.DueDate
		inv.DueDate = &d
	}
	if inv.Client != nil {
		c := inv.Client.Clone()
		inv.Client = &c
	}
	return inv
}

// InvoiceInput carries the caller supplied fields of a new invoice. Totals are derived by the store.
type InvoiceInput struct {
	Type         InvoiceType
	ClientID     string
	Items        []InvoiceItem
	TaxRate      float64
	DiscountRate float64
	DueDate      *time.Time
	Notes        string
	PaymentTerms string
	// Status defaults to draft when empty.
	Status Status
}

// InvoicePatch is a partial update. Nil fields are left untouched. Derived totals are NOT recomputed
// from Items/TaxRate/DiscountRate; callers send them explicitly (see billing.Recalculate).
type InvoicePatch struct {
	Type           *InvoiceType
	ClientID       *string
	Items          []InvoiceItem
	Subtotal       *float64
	TaxRate        *float64
	TaxAmount      *float64
	DiscountRate   *float64
	DiscountAmount *float64
	Total          *float64
	Status         *Status
	DueDate        *time.Time
	Notes          *string
	PaymentTerms   *string
}

// Apply merges the patch onto inv. ID, InvoiceNumber, IssueDate and CreatedAt are never touched.
func (p InvoicePatch) Apply(inv *Invoice) {
	if p.Type != nil {
		inv.Type = *p.Type
	}
	if p.ClientID != nil {
		inv.ClientID = *p.ClientID
	}
	if p.Items != nil {
		inv.Items = slices.Clone(p.Items)
	}
	setFloat(&inv.Subtotal, p.Subtotal)
	setFloat(&inv.TaxRate, p.TaxRate)
	setFloat(&inv.TaxAmount, p.TaxAmount)
	setFloat(&inv.DiscountRate, p.DiscountRate)
	setFloat(&inv.DiscountAmount, p.DiscountAmount)
	setFloat(&inv.Total, p.Total)
	if p.Status != nil {
		inv.Status = *p.Status
	}
	if p.DueDate != nil {
		d := *p.DueDate
		inv.DueDate = &d
	}
	if p.Notes != nil {
		inv.Notes = *p.Notes
	}
	if p.PaymentTerms != nil {
		inv.PaymentTerms = *p.PaymentTerms
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Totals is the derived arithmetic of an invoice.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	TaxAmount      float64 `json:"taxAmount"`
	DiscountAmount float64 `json:"discountAmount"`
	Total          float64 `json:"total"`
}

// Metrics are aggregate figures computed on demand over the invoice collection.
type Metrics struct {
	TotalInvoices    int     `json:"totalInvoices"`
	PaidCount        int     `json:"paidCount"`
	PendingCount     int     `json:"pendingCount"`
	OverdueCount     int     `json:"overdueCount"`
	TotalRevenue     float64 `json:"totalRevenue"`
	PendingAmount    float64 `json:"pendingAmount"`
	OverdueAmount    float64 `json:"overdueAmount"`
	ThisMonthRevenue float64 `json:"thisMonthRevenue"`
}
