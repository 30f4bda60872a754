package cmds

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"invoicer/internal/billing"
	"invoicer/internal/types"
)

const dateLayout = "2006-01-02"

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// itemsFlag collects repeated -item "description|quantity|unit price" values.
type itemsFlag []types.InvoiceItem

func (f *itemsFlag) String() string { return fmt.Sprintf("%d items", len(*f)) }

func (f *itemsFlag) Set(v string) error {
	parts := strings.Split(v, "|")
	if len(parts) != 3 {
		return fmt.Errorf("item must be description|quantity|unit price: %q", v)
	}
	qty, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return fmt.Errorf("item quantity: %w", err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return fmt.Errorf("item unit price: %w", err)
	}
	*f = append(*f, billing.NewItem(strings.TrimSpace(parts[0]), qty, price))
	return nil
}

// entriesFlag collects repeated -entry "YYYY-MM-DD|description|hours|hourly rate" values.
type entriesFlag []types.TimesheetEntry

func (f *entriesFlag) String() string { return fmt.Sprintf("%d entries", len(*f)) }

func (f *entriesFlag) Set(v string) error {
	parts := strings.Split(v, "|")
	if len(parts) != 4 {
		return fmt.Errorf("entry must be date|description|hours|hourly rate: %q", v)
	}
	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(parts[0]), time.Local)
	if err != nil {
		return fmt.Errorf("entry date: %w", err)
	}
	hours, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return fmt.Errorf("entry hours: %w", err)
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return fmt.Errorf("entry hourly rate: %w", err)
	}
	*f = append(*f, billing.NewTimesheetEntry(date, strings.TrimSpace(parts[1]), hours, rate))
	return nil
}

// dateFlag is an optional YYYY-MM-DD date.
type dateFlag struct{ t *time.Time }

func (f *dateFlag) String() string {
	if f.t == nil {
		return ""
	}
	return f.t.Format(dateLayout)
}

func (f *dateFlag) Set(v string) error {
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return err
	}
	f.t = &t
	return nil
}

// optString records whether a string flag was given, so updates can tell "empty" from "untouched".
type optString struct{ v *string }

func (f *optString) String() string {
	if f.v == nil {
		return ""
	}
	return *f.v
}

func (f *optString) Set(v string) error {
	f.v = &v
	return nil
}

// address binds the -street, -city, -state, -zip and -country flags.
type address struct {
	street, city, state, zip, country optString
}

func (f *address) bind(fs *flag.FlagSet) {
	fs.Var(&f.street, "street", "street")
	fs.Var(&f.city, "city", "city")
	fs.Var(&f.state, "state", "state")
	fs.Var(&f.zip, "zip", "zip code")
	fs.Var(&f.country, "country", "country")
}

func (f *address) touched() bool {
	return f.street.v != nil || f.city.v != nil || f.state.v != nil || f.zip.v != nil || f.country.v != nil
}

// value overlays the given flags on base. It returns nil when neither exists.
func (f *address) value(base *types.Address) *types.Address {
	if !f.touched() {
		return base
	}
	var out types.Address
	if base != nil {
		out = *base
	}
	set := func(dst *string, v optString) {
		if v.v != nil {
			*dst = *v.v
		}
	}
	set(&out.Street, f.street)
	set(&out.City, f.city)
	set(&out.State, f.state)
	set(&out.ZipCode, f.zip)
	set(&out.Country, f.country)
	return &out
}
