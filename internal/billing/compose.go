package billing

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"invoicer/internal/types"

	"github.com/google/uuid"
)

const (
	// DefaultTermDays is used when a sent invoice needs a due date and nothing else decides it.
	DefaultTermDays = 30

	dateLayout = "1/2/2006"
)

// NewTimesheetEntry returns an entry with a fresh id and total = hours * hourlyRate.
func NewTimesheetEntry(date time.Time, description string, hours, hourlyRate float64) types.TimesheetEntry {
	return types.TimesheetEntry{
		ID:          uuid.NewString(),
		Date:        date,
		Description: description,
		Hours:       hours,
		HourlyRate:  hourlyRate,
		Total:       hours * hourlyRate,
	}
}

// ValidEntries keeps entries that have a description and positive hours.
func ValidEntries(entries []types.TimesheetEntry) []types.TimesheetEntry {
	out := make([]types.TimesheetEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Description) != "" && e.Hours > 0 {
			out = append(out, e)
		}
	}
	return out
}

// TimesheetItems converts valid entries into invoice items, one per entry.
func TimesheetItems(entries []types.TimesheetEntry) []types.InvoiceItem {
	valid := ValidEntries(entries)
	items := make([]types.InvoiceItem, 0, len(valid))
	for _, e := range valid {
		items = append(items, types.InvoiceItem{
			ID:          e.ID,
			Description: fmt.Sprintf("%s - %s (%sh @ $%s/hr)", e.Date.Format(dateLayout), e.Description, number(e.Hours), number(e.HourlyRate)),
			Quantity:    e.Hours,
			UnitPrice:   e.HourlyRate,
			Total:       e.Total,
		})
	}
	return items
}

// TimesheetNotes renders the per-session breakdown stored in the invoice notes.
func TimesheetNotes(entries []types.TimesheetEntry, extra string) string {
	var b strings.Builder
	b.WriteString("TIMESHEET INVOICE\n\nDetailed breakdown by session:\n")
	for i, e := range ValidEntries(entries) {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "• %s - %s: %sh @ $%s/hr = $%s",
			e.Date.Format(dateLayout), e.Description, number(e.Hours), number(e.HourlyRate), Money(e.Total))
	}
	b.WriteString("\n")
	if extra = strings.TrimSpace(extra); extra != "" {
		b.WriteString("\nAdditional Notes: " + extra)
	}
	return b.String()
}

// TimesheetInvoice composes a timesheet invoice. Sending it sets status sent and a due date DefaultTermDays after now.
func TimesheetInvoice(clientID string, entries []types.TimesheetEntry, taxRate, discountRate float64, extra string, send bool, now time.Time) (types.InvoiceInput, error) {
	if clientID == "" {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, nil, "client is required")
	}
	items := TimesheetItems(entries)
	if len(items) == 0 {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, nil, "at least one timesheet entry is required")
	}
	in := types.InvoiceInput{
		Type:         types.TypeTimesheet,
		ClientID:     clientID,
		Items:        items,
		TaxRate:      taxRate,
		DiscountRate: discountRate,
		Notes:        TimesheetNotes(entries, extra),
		Status:       types.StatusDraft,
	}
	if send {
		due := now.AddDate(0, 0, DefaultTermDays)
		in.Status = types.StatusSent
		in.DueDate = &due
	}
	return in, nil
}

// NextDueDate returns the first due date of a recurring invoice issued at from.
// Weekly adds seven days; the calendar frequencies land on the same day of the month at midnight,
// with overflow normalized the way time.Date does (Jan 31 + 1 month is Mar 2 or 3).
func NextDueDate(freq types.Frequency, from time.Time) time.Time {
	y, m, d := from.Date()
	switch freq {
	case types.Weekly:
		return from.AddDate(0, 0, 7)
	case types.Monthly:
		return time.Date(y, m+1, d, 0, 0, 0, 0, from.Location())
	case types.Quarterly:
		return time.Date(y, m+3, d, 0, 0, 0, 0, from.Location())
	case types.Yearly:
		return time.Date(y+1, m, d, 0, 0, 0, 0, from.Location())
	default:
		return from.AddDate(0, 0, DefaultTermDays)
	}
}

// RecurringNotes renders the schedule description stored in the notes of a recurring invoice.
func RecurringNotes(r types.RecurringSettings, next time.Time, extra string) string {
	var b strings.Builder
	b.WriteString("RECURRING INVOICE - " + strings.ToUpper(string(r.Frequency)))
	if r.Active {
		b.WriteString(" (ACTIVE)")
	}
	fmt.Fprintf(&b, "\n\nThis invoice will be automatically generated %s.\nNext invoice date: %s\n", r.Frequency, next.Format(dateLayout))
	if r.EndDate != nil {
		b.WriteString("End date: " + r.EndDate.Format(dateLayout) + "\n")
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		b.WriteString("\nNotes: " + extra)
	}
	return b.String()
}

// RecurringInvoice composes a recurring invoice. Its due date is the settings' next due date, or one derived
// from the frequency. Active settings create the invoice as sent. Nothing schedules later occurrences.
func RecurringInvoice(clientID string, items []types.InvoiceItem, taxRate, discountRate float64, r types.RecurringSettings, extra string, now time.Time) (types.InvoiceInput, error) {
	if clientID == "" {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, nil, "client is required")
	}
	if err := r.Validate(); err != nil {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, err, "")
	}
	valid := ValidItems(items)
	if len(valid) == 0 {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, nil, "at least one item is required")
	}
	next := NextDueDate(r.Frequency, now)
	if r.NextDueDate != nil {
		next = *r.NextDueDate
	}
	status := types.StatusDraft
	if r.Active {
		status = types.StatusSent
	}
	return types.InvoiceInput{
		Type:         types.TypeRecurring,
		ClientID:     clientID,
		Items:        valid,
		TaxRate:      taxRate,
		DiscountRate: discountRate,
		DueDate:      &next,
		Notes:        RecurringNotes(r, next, extra),
		Status:       status,
	}, nil
}

// CreditNote composes a credit note against original. Tax and discount are always zero and the item totals
// are stored as given; only the notes present the credit as negative. Issuing it sets status sent.
func CreditNote(original types.Invoice, items []types.InvoiceItem, reason, extra string, issue bool) (types.InvoiceInput, error) {
	if original.Type == types.TypeCreditNote {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, nil, "%s is a credit note itself", original.InvoiceNumber)
	}
	valid := ValidItems(items)
	if len(valid) == 0 {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, nil, "at least one credit item is required")
	}
	credit := CalculateTotals(valid, 0, 0).Total

	var b strings.Builder
	fmt.Fprintf(&b, "CREDIT NOTE\n\nOriginal Invoice: %s\nOriginal Amount: $%s\nCredit Amount: -$%s\n\n",
		original.InvoiceNumber, Money(original.Total), Money(credit))
	if reason != "" {
		b.WriteString("Reason: " + reason + "\n")
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		b.WriteString("\nAdditional Notes: " + extra)
	}

	status := types.StatusDraft
	if issue {
		status = types.StatusSent
	}
	return types.InvoiceInput{
		Type:     types.TypeCreditNote,
		ClientID: original.ClientID,
		Items:    valid,
		Notes:    b.String(),
		Status:   status,
	}, nil
}

// ItemInvoice composes a standard or proforma invoice from edited items. Sending it sets status sent and,
// unless dueDate is given, a due date DefaultTermDays after now.
func ItemInvoice(t types.InvoiceType, clientID string, items []types.InvoiceItem, taxRate, discountRate float64, dueDate *time.Time, notes, paymentTerms string, send bool, now time.Time) (types.InvoiceInput, error) {
	if t != types.TypeStandard && t != types.TypeProforma {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, nil, "%s invoices have their own composer", t)
	}
	if clientID == "" {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, nil, "client is required")
	}
	valid := ValidItems(items)
	if len(valid) == 0 {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, nil, "at least one item is required")
	}
	in := types.InvoiceInput{
		Type:         t,
		ClientID:     clientID,
		Items:        valid,
		TaxRate:      taxRate,
		DiscountRate: discountRate,
		DueDate:      dueDate,
		Notes:        strings.TrimSpace(notes),
		PaymentTerms: paymentTerms,
		Status:       types.StatusDraft,
	}
	if send {
		in.Status = types.StatusSent
		if in.DueDate == nil {
			due := now.AddDate(0, 0, DefaultTermDays)
			in.DueDate = &due
		}
	}
	return in, nil
}

// ConvertProforma prefills a draft standard invoice from a proforma: same client, items and rates.
func ConvertProforma(proforma types.Invoice) (types.InvoiceInput, error) {
	if proforma.Type != types.TypeProforma {
		return types.InvoiceInput{}, types.Err(types.ErrInvalidInput, nil, "%s is not a proforma invoice", proforma.InvoiceNumber)
	}
	return types.InvoiceInput{
		Type:         types.TypeStandard,
		ClientID:     proforma.ClientID,
		Items:        slices.Clone(proforma.Items),
		TaxRate:      proforma.TaxRate,
		DiscountRate: proforma.DiscountRate,
		Status:       types.StatusDraft,
	}, nil
}
