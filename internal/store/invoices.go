package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"invoicer/internal/billing"
	"invoicer/internal/ports"
	"invoicer/internal/types"

	log "github.com/sirupsen/logrus"
)

// Numbering selects how invoice numbers are generated.
type Numbering int

const (
	// NumberingSequence draws from a persisted counter that never goes back, so deleted numbers are not reused.
	NumberingSequence Numbering = iota
	// NumberingCount derives the number from the collection size. Numbers repeat after deletions.
	NumberingCount
)

func ParseNumbering(s string) (Numbering, error) {
	switch strings.ToLower(s) {
	case "", "sequence":
		return NumberingSequence, nil
	case "count":
		return NumberingCount, nil
	}
	return 0, types.Err(types.ErrInvalidInput, nil, "unknown numbering %q", s)
}

type InvoiceOption func(*InvoiceStore)

func WithNumbering(n Numbering) InvoiceOption {
	return func(s *InvoiceStore) { s.numbering = n }
}

// InvoiceStore owns the invoice collection. Construct one per session and share it.
type InvoiceStore struct {
	col       *collection[types.Invoice]
	gw        ports.Gateway
	numbering Numbering
	seq       int // last number handed out in sequence mode, guarded by col.mu
}

func NewInvoiceStore(gw ports.Gateway, opts ...InvoiceOption) *InvoiceStore {
	s := &InvoiceStore{col: newCollection[types.Invoice](gw, InvoicesKey), gw: gw}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads the persisted invoices, replacing whatever is in memory. In sequence mode it also restores the
// counter, never letting it fall below the collection size or the highest INV-n number already issued.
func (s *InvoiceStore) Load(ctx context.Context) (types.LoadOutcome, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	out, err := s.col.load(ctx)
	if err != nil {
		return out, err
	}
	if s.numbering == NumberingSequence {
		if err := s.loadSequence(ctx); err != nil {
			return out, err
		}
	}
	log.WithFields(log.Fields{"state": out.State, "count": out.Count, "seq": s.seq}).Debug("invoices loaded")
	return out, nil
}

func (s *InvoiceStore) loadSequence(ctx context.Context) error {
	raw, found, err := s.gw.Get(ctx, SequenceKey)
	if errors.Is(err, types.ErrCorruptData) {
		log.WithError(err).WithField("key", SequenceKey).Warn("ignoring undecodable invoice sequence")
		found, err = false, nil
	}
	if err != nil {
		return types.Err(types.ErrGatewayAccess, err, "read %s", SequenceKey)
	}
	stored := 0
	if found {
		stored, err = strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			log.WithError(err).WithField("key", SequenceKey).Warn("ignoring unreadable invoice sequence")
			stored = 0
		}
	}
	s.seq = max(stored, len(s.col.items), highestNumber(s.col.items))
	return nil
}

// GenerateInvoiceNumber previews the number the next Create will assign.
func (s *InvoiceStore) GenerateInvoiceNumber() string {
	s.col.mu.RLock()
	defer s.col.mu.RUnlock()
	return FormatInvoiceNumber(s.nextNumber())
}

// FormatInvoiceNumber renders n as INV-NNN. Numbers above 999 simply grow wider.
func FormatInvoiceNumber(n int) string {
	return fmt.Sprintf("INV-%03d", n)
}

func (s *InvoiceStore) nextNumber() int {
	if s.numbering == NumberingCount {
		return len(s.col.items) + 1
	}
	return s.seq + 1
}

// Create derives totals, assigns id and number, stamps dates and persists the new invoice.
// Status defaults to draft. Inputs are not validated.
func (s *InvoiceStore) Create(ctx context.Context, in types.InvoiceInput) (types.Invoice, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	n := s.nextNumber()
	if s.numbering == NumberingSequence {
		// The counter is written first: a number is burnt rather than ever issued twice.
		if err := s.gw.Set(ctx, SequenceKey, strconv.Itoa(n)); err != nil {
			log.WithError(err).WithField("key", SequenceKey).Error("failed to advance invoice sequence")
			return types.Invoice{}, types.Err(types.ErrGatewayAccess, err, "write %s", SequenceKey)
		}
		s.seq = n
	}

	now := timeNow()
	totals := billing.CalculateTotals(in.Items, in.TaxRate, in.DiscountRate)
	status := in.Status
	if status == "" {
		status = types.StatusDraft
	}
	inv := types.Invoice{
		ID:             newID(),
		InvoiceNumber:  FormatInvoiceNumber(n),
		Type:           in.Type,
		ClientID:       in.ClientID,
		Items:          slices.Clone(in.Items),
		Subtotal:       totals.Subtotal,
		TaxRate:        in.TaxRate,
		TaxAmount:      totals.TaxAmount,
		DiscountRate:   in.DiscountRate,
		DiscountAmount: totals.DiscountAmount,
		Total:          totals.Total,
		Status:         status,
		IssueDate:      now,
		Notes:          in.Notes,
		PaymentTerms:   in.PaymentTerms,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if inv.Items == nil {
		inv.Items = []types.InvoiceItem{}
	}
	if in.DueDate != nil {
		d := *in.DueDate
		inv.DueDate = &d
	}

	if err := s.col.commit(ctx, append(s.col.snapshot(), inv)); err != nil {
		return types.Invoice{}, err
	}
	log.WithFields(log.Fields{
		"invoice": inv.InvoiceNumber,
		"type":    inv.Type,
		"total":   inv.Total,
	}).Debug("invoice created")
	return inv.Clone(), nil
}

// Update merges patch onto the invoice and refreshes UpdatedAt. Totals are not recomputed.
// It reports false, without writing, when no invoice has that id.
func (s *InvoiceStore) Update(ctx context.Context, id string, patch types.InvoicePatch) (bool, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	_, err := s.modify(ctx, id, func(inv *types.Invoice) error {
		patch.Apply(inv)
		return nil
	})
	if errors.Is(err, types.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Delete removes the invoice. Its number is not handed out again in sequence mode.
func (s *InvoiceStore) Delete(ctx context.Context, id string) (bool, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	i := s.col.indexOf(byInvoiceID(id))
	if i < 0 {
		return false, nil
	}
	if err := s.col.commit(ctx, slices.Delete(s.col.snapshot(), i, i+1)); err != nil {
		return false, err
	}
	return true, nil
}

// MarkSent moves a draft or overdue invoice to sent. Marking a sent invoice again is a no-op.
func (s *InvoiceStore) MarkSent(ctx context.Context, id string) (types.Invoice, error) {
	return s.transition(ctx, id, types.StatusSent)
}

// MarkPaid moves a sent or overdue invoice to paid. Marking a paid invoice again is a no-op.
func (s *InvoiceStore) MarkPaid(ctx context.Context, id string) (types.Invoice, error) {
	return s.transition(ctx, id, types.StatusPaid)
}

func (s *InvoiceStore) transition(ctx context.Context, id string, to types.Status) (types.Invoice, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	i := s.col.indexOf(byInvoiceID(id))
	if i < 0 {
		return types.Invoice{}, types.Err(types.ErrNotFound, nil, "invoice %s", id)
	}
	if s.col.items[i].Status == to {
		return s.col.items[i].Clone(), nil
	}
	return s.modify(ctx, id, func(inv *types.Invoice) error {
		if !inv.Status.CanTransition(to) {
			return types.Err(types.ErrInvalidTransition, nil, "%s: %s -> %s", inv.InvoiceNumber, inv.Status, to)
		}
		inv.Status = to
		return nil
	})
}

// MarkOverdue turns every sent invoice whose due date is before now into overdue, in one write.
// Invoices without a due date are never overdue. It returns the invoices it changed.
func (s *InvoiceStore) MarkOverdue(ctx context.Context, now time.Time) ([]types.Invoice, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	next := s.col.snapshot()
	var changed []types.Invoice
	for i, inv := range next {
		if inv.Status != types.StatusSent || inv.DueDate == nil || !inv.DueDate.Before(now) {
			continue
		}
		inv = inv.Clone()
		inv.Status = types.StatusOverdue
		inv.UpdatedAt = stamp(inv.UpdatedAt)
		next[i] = inv
		changed = append(changed, inv.Clone())
	}
	if len(changed) == 0 {
		return nil, nil
	}
	if err := s.col.commit(ctx, next); err != nil {
		return nil, err
	}
	log.WithField("count", len(changed)).Info("invoices marked overdue")
	return changed, nil
}

// modify applies fn to a copy of the invoice, stamps UpdatedAt and persists. The caller must hold the write lock.
func (s *InvoiceStore) modify(ctx context.Context, id string, fn func(*types.Invoice) error) (types.Invoice, error) {
	i := s.col.indexOf(byInvoiceID(id))
	if i < 0 {
		return types.Invoice{}, types.Err(types.ErrNotFound, nil, "invoice %s", id)
	}
	next := s.col.snapshot()
	inv := next[i].Clone()
	if err := fn(&inv); err != nil {
		return types.Invoice{}, err
	}
	inv.UpdatedAt = stamp(inv.UpdatedAt)
	next[i] = inv
	if err := s.col.commit(ctx, next); err != nil {
		return types.Invoice{}, err
	}
	return inv.Clone(), nil
}

func (s *InvoiceStore) GetByID(id string) (types.Invoice, bool) {
	s.col.mu.RLock()
	defer s.col.mu.RUnlock()
	i := s.col.indexOf(byInvoiceID(id))
	if i < 0 {
		return types.Invoice{}, false
	}
	return s.col.items[i].Clone(), true
}

func (s *InvoiceStore) GetByStatus(status types.Status) []types.Invoice {
	return s.filter(func(inv types.Invoice) bool { return inv.Status == status })
}

func (s *InvoiceStore) GetByClient(clientID string) []types.Invoice {
	return s.filter(func(inv types.Invoice) bool { return inv.ClientID == clientID })
}

// CreditableInvoices lists the client's invoices a credit note may be issued against: sent or paid, and not
// credit notes themselves.
func (s *InvoiceStore) CreditableInvoices(clientID string) []types.Invoice {
	return s.filter(func(inv types.Invoice) bool {
		return inv.ClientID == clientID &&
			inv.Type != types.TypeCreditNote &&
			(inv.Status == types.StatusSent || inv.Status == types.StatusPaid)
	})
}

// Search matches query case-insensitively against the invoice number and notes.
// A blank query returns every invoice in stored order.
func (s *InvoiceStore) Search(query string) []types.Invoice {
	if strings.TrimSpace(query) == "" {
		return s.List()
	}
	q := strings.ToLower(query)
	return s.filter(func(inv types.Invoice) bool { return inv.Matches(q) })
}

func (s *InvoiceStore) List() []types.Invoice {
	return s.filter(func(types.Invoice) bool { return true })
}

// Metrics aggregates the collection. This month starts on the first day of the current month in local time.
func (s *InvoiceStore) Metrics() types.Metrics {
	s.col.mu.RLock()
	defer s.col.mu.RUnlock()

	now := timeNow()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	m := types.Metrics{TotalInvoices: len(s.col.items)}
	for _, inv := range s.col.items {
		switch inv.Status {
		case types.StatusPaid:
			m.PaidCount++
			m.TotalRevenue += inv.Total
			if !inv.IssueDate.Before(monthStart) {
				m.ThisMonthRevenue += inv.Total
			}
		case types.StatusSent:
			m.PendingCount++
			m.PendingAmount += inv.Total
		case types.StatusOverdue:
			m.OverdueCount++
			m.OverdueAmount += inv.Total
		}
	}
	return m
}

func (s *InvoiceStore) filter(keep func(types.Invoice) bool) []types.Invoice {
	s.col.mu.RLock()
	defer s.col.mu.RUnlock()
	out := make([]types.Invoice, 0, len(s.col.items))
	for _, inv := range s.col.items {
		if keep(inv) {
			out = append(out, inv.Clone())
		}
	}
	return out
}

func byInvoiceID(id string) func(types.Invoice) bool {
	return func(inv types.Invoice) bool { return inv.ID == id }
}

// highestNumber returns the largest n among INV-n numbers, ignoring numbers in any other format.
func highestNumber(items []types.Invoice) int {
	hi := 0
	for _, inv := range items {
		digits, ok := strings.CutPrefix(inv.InvoiceNumber, "INV-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(digits); err == nil && n > hi {
			hi = n
		}
	}
	return hi
}
