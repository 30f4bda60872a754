package billing

import (
	"errors"
	"time"

	"invoicer/internal/types"
)

var now = time.Date(2025, 1, 31, 15, 4, 5, 0, time.UTC)

func (s *BillingTestSuite) TestTimesheetItems() {
	entries := []types.TimesheetEntry{
		NewTimesheetEntry(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), "Design review", 2.5, 80),
		NewTimesheetEntry(time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC), "  ", 4, 80),
		NewTimesheetEntry(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), "Nothing", 0, 80),
		NewTimesheetEntry(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), "Build", 3, 92.5),
	}
	s.Equal(200.0, entries[0].Total)

	got := TimesheetItems(entries)
	s.Len(got, 2)
	s.Equal(entries[0].ID, got[0].ID)
	s.Equal("3/5/2025 - Design review (2.5h @ $80/hr)", got[0].Description)
	s.Equal(2.5, got[0].Quantity)
	s.Equal(80.0, got[0].UnitPrice)
	s.Equal(200.0, got[0].Total)
	s.Equal("3/12/2025 - Build (3h @ $92.5/hr)", got[1].Description)
	s.Equal(277.5, got[1].Total)
}

func (s *BillingTestSuite) TestTimesheetNotes() {
	entries := []types.TimesheetEntry{
		NewTimesheetEntry(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), "Design", 2, 80),
		NewTimesheetEntry(time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC), "Build", 1.5, 100),
	}
	s.Equal("TIMESHEET INVOICE\n\nDetailed breakdown by session:\n"+
		"• 3/5/2025 - Design: 2h @ $80/hr = $160.00\n"+
		"• 3/6/2025 - Build: 1.5h @ $100/hr = $150.00\n",
		TimesheetNotes(entries, ""))
	s.Equal("TIMESHEET INVOICE\n\nDetailed breakdown by session:\n"+
		"• 3/5/2025 - Design: 2h @ $80/hr = $160.00\n"+
		"• 3/6/2025 - Build: 1.5h @ $100/hr = $150.00\n"+
		"\nAdditional Notes: Thanks!",
		TimesheetNotes(entries, "  Thanks!  "))
}

func (s *BillingTestSuite) TestTimesheetInvoice() {
	entries := []types.TimesheetEntry{NewTimesheetEntry(now, "Support", 1, 50)}

	in, err := TimesheetInvoice("c1", entries, 10, 0, "", false, now)
	s.NoError(err)
	s.Equal(types.TypeTimesheet, in.Type)
	s.Equal(types.StatusDraft, in.Status)
	s.Nil(in.DueDate)
	s.Len(in.Items, 1)

	in, err = TimesheetInvoice("c1", entries, 10, 0, "", true, now)
	s.NoError(err)
	s.Equal(types.StatusSent, in.Status)
	s.True(in.DueDate.Equal(now.AddDate(0, 0, 30)))

	_, err = TimesheetInvoice("c1", []types.TimesheetEntry{NewTimesheetEntry(now, "", 1, 50)}, 0, 0, "", false, now)
	s.True(errors.Is(err, types.ErrInvalidInput))
	_, err = TimesheetInvoice("", entries, 0, 0, "", false, now)
	s.True(errors.Is(err, types.ErrInvalidInput))
}

func (s *BillingTestSuite) TestNextDueDate() {
	cases := []struct {
		freq types.Frequency
		from time.Time
		want time.Time
	}{
		{types.Weekly, now, time.Date(2025, 2, 7, 15, 4, 5, 0, time.UTC)},
		{types.Monthly, time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC), time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)},
		{types.Monthly, now, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)},
		{types.Quarterly, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)},
		{types.Yearly, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{types.Frequency("daily"), now, now.AddDate(0, 0, 30)},
	}
	for _, c := range cases {
		s.True(c.want.Equal(NextDueDate(c.freq, c.from)), "%s from %s: got %s", c.freq, c.from, NextDueDate(c.freq, c.from))
	}
}

func (s *BillingTestSuite) TestRecurringNotes() {
	next := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	s.Equal("RECURRING INVOICE - MONTHLY\n\nThis invoice will be automatically generated monthly.\nNext invoice date: 2/28/2025\n",
		RecurringNotes(types.RecurringSettings{Frequency: types.Monthly}, next, ""))
	s.Equal("RECURRING INVOICE - WEEKLY (ACTIVE)\n\nThis invoice will be automatically generated weekly.\nNext invoice date: 2/28/2025\nEnd date: 12/31/2025\n\nNotes: retainer",
		RecurringNotes(types.RecurringSettings{Frequency: types.Weekly, EndDate: &end, Active: true}, next, " retainer "))
}

func (s *BillingTestSuite) TestRecurringInvoice() {
	lines := []types.InvoiceItem{NewItem("Retainer", 1, 1000), {Description: ""}}

	in, err := RecurringInvoice("c1", lines, 0, 0, types.RecurringSettings{Frequency: types.Quarterly}, "", now)
	s.NoError(err)
	s.Equal(types.TypeRecurring, in.Type)
	s.Equal(types.StatusDraft, in.Status)
	s.Len(in.Items, 1)
	s.True(in.DueDate.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))

	next := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	in, err = RecurringInvoice("c1", lines, 0, 0, types.RecurringSettings{Frequency: types.Monthly, NextDueDate: &next, Active: true}, "", now)
	s.NoError(err)
	s.Equal(types.StatusSent, in.Status)
	s.True(in.DueDate.Equal(next))
	s.Contains(in.Notes, "(ACTIVE)")
	s.Contains(in.Notes, "Next invoice date: 2/14/2025")

	_, err = RecurringInvoice("c1", lines, 0, 0, types.RecurringSettings{Frequency: "hourly"}, "", now)
	s.True(errors.Is(err, types.ErrInvalidInput))
	_, err = RecurringInvoice("c1", []types.InvoiceItem{{}}, 0, 0, types.RecurringSettings{Frequency: types.Weekly}, "", now)
	s.True(errors.Is(err, types.ErrInvalidInput))
}

func (s *BillingTestSuite) TestCreditNote() {
	original := types.Invoice{InvoiceNumber: "INV-004", ClientID: "c1", Type: types.TypeStandard, Total: 250, Status: types.StatusPaid}
	lines := []types.InvoiceItem{NewItem("Refund A", 1, 25), NewItem("Refund B", 3, 5)}

	in, err := CreditNote(original, lines, "Damaged goods", "Sorry", false)
	s.NoError(err)
	s.Equal(types.TypeCreditNote, in.Type)
	s.Equal("c1", in.ClientID)
	s.Equal(types.StatusDraft, in.Status)
	s.Equal(0.0, in.TaxRate)
	s.Equal(0.0, in.DiscountRate)
	s.Equal("CREDIT NOTE\n\nOriginal Invoice: INV-004\nOriginal Amount: $250.00\nCredit Amount: -$40.00\n\nReason: Damaged goods\n\nAdditional Notes: Sorry", in.Notes)

	totals := CalculateTotals(in.Items, in.TaxRate, in.DiscountRate)
	s.Equal(40.0, totals.Subtotal)
	s.Equal(40.0, totals.Total)

	in, err = CreditNote(original, lines, "", "", true)
	s.NoError(err)
	s.Equal(types.StatusSent, in.Status)
	s.Equal("CREDIT NOTE\n\nOriginal Invoice: INV-004\nOriginal Amount: $250.00\nCredit Amount: -$40.00\n\n", in.Notes)

	_, err = CreditNote(types.Invoice{Type: types.TypeCreditNote}, lines, "", "", false)
	s.True(errors.Is(err, types.ErrInvalidInput))
	_, err = CreditNote(original, nil, "", "", false)
	s.True(errors.Is(err, types.ErrInvalidInput))
}

func (s *BillingTestSuite) TestItemInvoice() {
	lines := []types.InvoiceItem{NewItem("Logo", 1, 300)}

	in, err := ItemInvoice(types.TypeProforma, "c1", lines, 0, 0, nil, " quote ", "Net 15", false, now)
	s.NoError(err)
	s.Equal(types.TypeProforma, in.Type)
	s.Equal(types.StatusDraft, in.Status)
	s.Equal("quote", in.Notes)
	s.Nil(in.DueDate)

	in, err = ItemInvoice(types.TypeStandard, "c1", lines, 0, 0, nil, "", "", true, now)
	s.NoError(err)
	s.Equal(types.StatusSent, in.Status)
	s.True(in.DueDate.Equal(now.AddDate(0, 0, 30)))

	_, err = ItemInvoice(types.TypeTimesheet, "c1", lines, 0, 0, nil, "", "", false, now)
	s.True(errors.Is(err, types.ErrInvalidInput))
}

func (s *BillingTestSuite) TestConvertProforma() {
	proforma := types.Invoice{InvoiceNumber: "INV-002", Type: types.TypeProforma, ClientID: "c9",
		Items: []types.InvoiceItem{NewItem("Logo", 1, 300)}, TaxRate: 8, DiscountRate: 2, Status: types.StatusSent}

	in, err := ConvertProforma(proforma)
	s.NoError(err)
	s.Equal(types.TypeStandard, in.Type)
	s.Equal("c9", in.ClientID)
	s.Equal(types.StatusDraft, in.Status)
	s.Equal(8.0, in.TaxRate)
	s.Equal(proforma.Items, in.Items)

	_, err = ConvertProforma(types.Invoice{Type: types.TypeStandard})
	s.True(errors.Is(err, types.ErrInvalidInput))
}
