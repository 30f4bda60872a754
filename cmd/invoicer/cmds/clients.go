package cmds

import (
	"context"
	"fmt"
	"strings"

	"invoicer/internal/types"
)

func (a *App) runClients(ctx context.Context, args []string) error {
	sub, err := needArg(args, "clients subcommand")
	if err != nil {
		return err
	}
	args = args[1:]
	switch sub {
	case "add":
		return a.clientAdd(ctx, args)
	case "list":
		a.printClients(a.Clients.List())
		return nil
	case "search":
		a.printClients(a.Clients.Search(strings.Join(args, " ")))
		return nil
	case "show":
		id, err := needArg(args, "client id")
		if err != nil {
			return err
		}
		c, ok := a.Clients.GetByID(id)
		if !ok {
			return types.Err(types.ErrNotFound, nil, "client %s", id)
		}
		return a.printJSON(c)
	case "update":
		return a.clientUpdate(ctx, args)
	case "delete":
		id, err := needArg(args, "client id")
		if err != nil {
			return err
		}
		ok, err := a.Clients.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(a.Out, "no client %s\n", id)
			return nil
		}
		fmt.Fprintf(a.Out, "deleted client %s\n", id)
		return nil
	}
	return fmt.Errorf("%w: unknown clients subcommand %q", ErrUsage, sub)
}

func (a *App) clientAdd(ctx context.Context, args []string) error {
	fs := newFlagSet("clients add", a.Out)
	name := fs.String("name", "", "client name (required)")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone")
	company := fs.String("company", "", "company")
	taxID := fs.String("tax-id", "", "tax id")
	var addr address
	addr.bind(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if strings.TrimSpace(*name) == "" {
		return types.Err(types.ErrInvalidInput, nil, "client name is required")
	}

	c, err := a.Clients.Add(ctx, types.ClientInput{
		Name:    strings.TrimSpace(*name),
		Email:   *email,
		Phone:   *phone,
		Company: *company,
		TaxID:   *taxID,
		Address: addr.value(nil),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "added client %s %s\n", c.ID, c.Name)
	return nil
}

func (a *App) clientUpdate(ctx context.Context, args []string) error {
	id, err := needArg(args, "client id")
	if err != nil {
		return err
	}
	fs := newFlagSet("clients update", a.Out)
	var name, email, phone, company, taxID optString
	fs.Var(&name, "name", "client name")
	fs.Var(&email, "email", "email")
	fs.Var(&phone, "phone", "phone")
	fs.Var(&company, "company", "company")
	fs.Var(&taxID, "tax-id", "tax id")
	var addr address
	addr.bind(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	patch := types.ClientPatch{
		Name:    name.v,
		Email:   email.v,
		Phone:   phone.v,
		Company: company.v,
		TaxID:   taxID.v,
	}
	if addr.touched() {
		var current *types.Address
		if c, ok := a.Clients.GetByID(id); ok {
			current = c.Address
		}
		patch.Address = addr.value(current)
	}
	ok, err := a.Clients.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(a.Out, "no client %s\n", id)
		return nil
	}
	fmt.Fprintf(a.Out, "updated client %s\n", id)
	return nil
}
