// Package cmds implements the invoicer subcommands over injected stores, so the same code backs the binary
// and the tests.
package cmds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"invoicer/internal/share"
	"invoicer/internal/store"
	"invoicer/internal/types"

	"github.com/goccy/go-json"
)

// ErrUsage is returned for unknown commands and bad flags.
var ErrUsage = errors.New("usage")

// App holds the dependencies of every subcommand.
type App struct {
	Clients  *store.ClientStore
	Invoices *store.InvoiceStore
	Sharer   *share.Sharer
	Out      io.Writer
	Now      func() time.Time
}

const usage = `usage: invoicer <command> [flags]

commands:
  clients   add | list | search | show | update | delete
  invoices  create | timesheet | recurring | credit-note | convert | list | show | search | query |
            metrics | next-number | mark-sent | mark-paid | sweep-overdue | delete | share | export
  seed      load sample clients when there are none`

// Run dispatches args (without the program name) to a subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if a.Now == nil {
		a.Now = time.Now
	}
	if len(args) == 0 {
		fmt.Fprintln(a.Out, usage)
		return ErrUsage
	}
	switch args[0] {
	case "clients":
		return a.runClients(ctx, args[1:])
	case "invoices":
		return a.runInvoices(ctx, args[1:])
	case "seed":
		return a.runSeed(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprintln(a.Out, usage)
		return nil
	}
	fmt.Fprintln(a.Out, usage)
	return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
}

func (a *App) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.Out, string(b))
	return err
}

func (a *App) printClients(cs []types.Client) {
	for _, c := range cs {
		fmt.Fprintf(a.Out, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Company, c.Email)
	}
}

func (a *App) printInvoices(invs []types.Invoice) {
	for _, inv := range invs {
		fmt.Fprintf(a.Out, "%s\t%s\t%s\t%s\t%.2f\n", inv.ID, inv.InvoiceNumber, inv.Type, inv.Status, inv.Total)
	}
}

func needArg(args []string, what string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", fmt.Errorf("%w: %s is required", ErrUsage, what)
	}
	return args[0], nil
}
