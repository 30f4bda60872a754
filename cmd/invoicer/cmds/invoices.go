package cmds

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"invoicer/internal/billing"
	"invoicer/internal/types"
)

func (a *App) runInvoices(ctx context.Context, args []string) error {
	sub, err := needArg(args, "invoices subcommand")
	if err != nil {
		return err
	}
	args = args[1:]
	switch sub {
	case "create":
		return a.invoiceCreate(ctx, args)
	case "timesheet":
		return a.invoiceTimesheet(ctx, args)
	case "recurring":
		return a.invoiceRecurring(ctx, args)
	case "credit-note":
		return a.invoiceCreditNote(ctx, args)
	case "convert":
		return a.invoiceConvert(ctx, args)
	case "list":
		return a.invoiceList(args)
	case "show":
		inv, err := a.invoice(args)
		if err != nil {
			return err
		}
		return a.printJSON(inv)
	case "search":
		a.printInvoices(a.Invoices.Search(strings.Join(args, " ")))
		return nil
	case "query":
		if _, err := needArg(args, "JMESPath expression"); err != nil {
			return err
		}
		invs, err := a.Invoices.Filter(strings.Join(args, " "))
		if err != nil {
			return err
		}
		a.printInvoices(invs)
		return nil
	case "metrics":
		return a.printJSON(a.Invoices.Metrics())
	case "next-number":
		fmt.Fprintln(a.Out, a.Invoices.GenerateInvoiceNumber())
		return nil
	case "mark-sent", "mark-paid":
		return a.invoiceMark(ctx, sub, args)
	case "sweep-overdue":
		return a.invoiceSweep(ctx, args)
	case "delete":
		id, err := needArg(args, "invoice id")
		if err != nil {
			return err
		}
		ok, err := a.Invoices.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(a.Out, "no invoice %s\n", id)
			return nil
		}
		fmt.Fprintf(a.Out, "deleted invoice %s\n", id)
		return nil
	case "share", "export":
		return a.invoiceShare(ctx, sub, args)
	}
	return fmt.Errorf("%w: unknown invoices subcommand %q", ErrUsage, sub)
}

// requireClient is the client selection check every creation screen performs.
func (a *App) requireClient(id string) (types.Client, error) {
	if id == "" {
		return types.Client{}, types.Err(types.ErrInvalidInput, nil, "please select a client")
	}
	c, ok := a.Clients.GetByID(id)
	if !ok {
		return types.Client{}, types.Err(types.ErrNotFound, nil, "client %s", id)
	}
	return c, nil
}

func (a *App) create(ctx context.Context, in types.InvoiceInput) error {
	inv, err := a.Invoices.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "created %s %s (%s, %s) total %s\n",
		inv.Type.Label(), inv.InvoiceNumber, inv.ID, inv.Status, billing.Money(inv.Total))
	return nil
}

func (a *App) invoiceCreate(ctx context.Context, args []string) error {
	fs := newFlagSet("invoices create", a.Out)
	typ := fs.String("type", string(types.TypeStandard), "standard or proforma")
	clientID := fs.String("client", "", "client id (required)")
	var items itemsFlag
	fs.Var(&items, "item", `line item "description|quantity|unit price", repeatable`)
	tax := fs.Float64("tax", 0, "tax rate in percent")
	discount := fs.Float64("discount", 0, "discount rate in percent")
	var due dateFlag
	fs.Var(&due, "due", "due date YYYY-MM-DD")
	notes := fs.String("notes", "", "notes")
	terms := fs.String("terms", "", "payment terms")
	send := fs.Bool("send", false, "send instead of saving a draft")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if _, err := a.requireClient(*clientID); err != nil {
		return err
	}
	in, err := billing.ItemInvoice(types.InvoiceType(*typ), *clientID, items, *tax, *discount, due.t, *notes, *terms, *send, a.Now())
	if err != nil {
		return err
	}
	return a.create(ctx, in)
}

func (a *App) invoiceTimesheet(ctx context.Context, args []string) error {
	fs := newFlagSet("invoices timesheet", a.Out)
	clientID := fs.String("client", "", "client id (required)")
	var entries entriesFlag
	fs.Var(&entries, "entry", `time entry "YYYY-MM-DD|description|hours|hourly rate", repeatable`)
	tax := fs.Float64("tax", 0, "tax rate in percent")
	discount := fs.Float64("discount", 0, "discount rate in percent")
	notes := fs.String("notes", "", "additional notes")
	send := fs.Bool("send", false, "send instead of saving a draft")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if _, err := a.requireClient(*clientID); err != nil {
		return err
	}
	in, err := billing.TimesheetInvoice(*clientID, entries, *tax, *discount, *notes, *send, a.Now())
	if err != nil {
		return err
	}
	return a.create(ctx, in)
}

func (a *App) invoiceRecurring(ctx context.Context, args []string) error {
	fs := newFlagSet("invoices recurring", a.Out)
	clientID := fs.String("client", "", "client id (required)")
	var items itemsFlag
	fs.Var(&items, "item", `line item "description|quantity|unit price", repeatable`)
	freq := fs.String("frequency", string(types.Monthly), "weekly, monthly, quarterly or yearly")
	var next, end dateFlag
	fs.Var(&next, "next", "next due date YYYY-MM-DD, derived from the frequency when omitted")
	fs.Var(&end, "end", "end date YYYY-MM-DD")
	active := fs.Bool("active", false, "activate now: the first invoice is created as sent")
	tax := fs.Float64("tax", 0, "tax rate in percent")
	discount := fs.Float64("discount", 0, "discount rate in percent")
	notes := fs.String("notes", "", "notes")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if _, err := a.requireClient(*clientID); err != nil {
		return err
	}
	settings := types.RecurringSettings{
		Frequency:   types.Frequency(strings.ToLower(*freq)),
		NextDueDate: next.t,
		EndDate:     end.t,
		Active:      *active,
	}
	in, err := billing.RecurringInvoice(*clientID, items, *tax, *discount, settings, *notes, a.Now())
	if err != nil {
		return err
	}
	return a.create(ctx, in)
}

func (a *App) invoiceCreditNote(ctx context.Context, args []string) error {
	fs := newFlagSet("invoices credit-note", a.Out)
	originalID := fs.String("original", "", "id of the invoice to adjust (required)")
	var items itemsFlag
	fs.Var(&items, "item", `credit item "description|quantity|unit price", repeatable`)
	reason := fs.String("reason", "", "reason for the credit")
	notes := fs.String("notes", "", "additional notes")
	issue := fs.Bool("issue", false, "issue instead of saving a draft")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *originalID == "" {
		return types.Err(types.ErrInvalidInput, nil, "please select the original invoice to adjust")
	}
	original, ok := a.Invoices.GetByID(*originalID)
	if !ok {
		return types.Err(types.ErrNotFound, nil, "invoice %s", *originalID)
	}
	creditable := a.Invoices.CreditableInvoices(original.ClientID)
	if !slices.ContainsFunc(creditable, func(inv types.Invoice) bool { return inv.ID == original.ID }) {
		return types.Err(types.ErrInvalidInput, nil, "%s (%s %s) cannot be credited", original.InvoiceNumber, original.Type, original.Status)
	}
	in, err := billing.CreditNote(original, items, *reason, *notes, *issue)
	if err != nil {
		return err
	}
	return a.create(ctx, in)
}

func (a *App) invoiceConvert(ctx context.Context, args []string) error {
	proforma, err := a.invoice(args)
	if err != nil {
		return err
	}
	in, err := billing.ConvertProforma(proforma)
	if err != nil {
		return err
	}
	return a.create(ctx, in)
}

func (a *App) invoiceList(args []string) error {
	fs := newFlagSet("invoices list", a.Out)
	status := fs.String("status", "", "only invoices with this status")
	clientID := fs.String("client", "", "only invoices of this client")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	var invs []types.Invoice
	switch {
	case *status != "":
		s := types.Status(strings.ToLower(*status))
		if !s.IsValid() {
			return types.Err(types.ErrInvalidInput, nil, "unknown status %q", *status)
		}
		invs = a.Invoices.GetByStatus(s)
	case *clientID != "":
		invs = a.Invoices.GetByClient(*clientID)
	default:
		invs = a.Invoices.List()
	}
	if *status != "" && *clientID != "" {
		invs = slices.DeleteFunc(invs, func(inv types.Invoice) bool { return inv.ClientID != *clientID })
	}
	a.printInvoices(invs)
	return nil
}

func (a *App) invoiceMark(ctx context.Context, sub string, args []string) error {
	id, err := needArg(args, "invoice id")
	if err != nil {
		return err
	}
	var inv types.Invoice
	if sub == "mark-paid" {
		inv, err = a.Invoices.MarkPaid(ctx, id)
	} else {
		inv, err = a.Invoices.MarkSent(ctx, id)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%s is %s\n", inv.InvoiceNumber, inv.Status)
	return nil
}

func (a *App) invoiceSweep(ctx context.Context, args []string) error {
	fs := newFlagSet("invoices sweep-overdue", a.Out)
	var at dateFlag
	fs.Var(&at, "at", "reference date YYYY-MM-DD, now when omitted")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	now := a.Now()
	if at.t != nil {
		now = *at.t
	}
	changed, err := a.Invoices.MarkOverdue(ctx, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%d invoice(s) marked overdue\n", len(changed))
	a.printInvoices(changed)
	return nil
}

func (a *App) invoiceShare(ctx context.Context, sub string, args []string) error {
	inv, err := a.invoice(args)
	if err != nil {
		return err
	}
	c, ok := a.Clients.GetByID(inv.ClientID)
	if !ok {
		return types.Err(types.ErrNotFound, nil, "client %s of %s", inv.ClientID, inv.InvoiceNumber)
	}
	var text string
	if sub == "export" {
		text, err = a.Sharer.Export(ctx, inv, c)
	} else {
		text, err = a.Sharer.Share(ctx, inv, c)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, text)
	return nil
}

func (a *App) invoice(args []string) (types.Invoice, error) {
	id, err := needArg(args, "invoice id")
	if err != nil {
		return types.Invoice{}, err
	}
	inv, ok := a.Invoices.GetByID(id)
	if !ok {
		return types.Invoice{}, types.Err(types.ErrNotFound, nil, "invoice %s", id)
	}
	return inv, nil
}
