package types

import (
	"fmt"
	"time"
)

type Frequency string

const (
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// RecurringSettings describe how often a recurring invoice is meant to be issued. They only shape the
// due date and the notes of the invoice created from them; nothing re-issues the invoice per period.
// An Active invoice is created as sent instead of draft.
type RecurringSettings struct {
	Frequency   Frequency
	NextDueDate *time.Time // nil: derived from Frequency
	EndDate     *time.Time
	Active      bool
}

func (r RecurringSettings) Validate() error {
	switch r.Frequency {
	case Weekly, Monthly, Quarterly, Yearly:
	default:
		return fmt.Errorf("frequency must be one of weekly, monthly, quarterly, yearly: %q", r.Frequency)
	}
	if r.EndDate != nil && r.NextDueDate != nil && r.EndDate.Before(*r.NextDueDate) {
		return fmt.Errorf("end date must not be before the next due date")
	}
	return nil
}
