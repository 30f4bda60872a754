package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"invoicer/internal/ports"
	"invoicer/internal/types"

	log "github.com/sirupsen/logrus"
)

// ClientStore owns the client collection. Construct one per session and share it.
type ClientStore struct {
	col *collection[types.Client]
}

func NewClientStore(gw ports.Gateway) *ClientStore {
	return &ClientStore{col: newCollection[types.Client](gw, ClientsKey)}
}

// Load reads the persisted clients, replacing whatever is in memory.
// A gateway failure is returned as an error; an unreadable blob yields a LoadDegraded outcome and no clients.
func (s *ClientStore) Load(ctx context.Context) (types.LoadOutcome, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	out, err := s.col.load(ctx)
	if err == nil {
		log.WithFields(log.Fields{"state": out.State, "count": out.Count}).Debug("clients loaded")
	}
	return out, err
}

// Add stamps identity and timestamps on a new client and persists the collection.
// On failure nothing changes and the zero Client is returned.
func (s *ClientStore) Add(ctx context.Context, in types.ClientInput) (types.Client, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	c := newClient(in, timeNow())
	next := append(s.col.snapshot(), c)
	if err := s.col.commit(ctx, next); err != nil {
		return types.Client{}, err
	}
	return c.Clone(), nil
}

// Update merges patch onto the client with the given id and refreshes UpdatedAt.
// It reports false, without writing, when no client has that id.
func (s *ClientStore) Update(ctx context.Context, id string, patch types.ClientPatch) (bool, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	i := s.col.indexOf(func(c types.Client) bool { return c.ID == id })
	if i < 0 {
		return false, nil
	}
	next := s.col.snapshot()
	c := next[i].Clone()
	patch.Apply(&c)
	c.UpdatedAt = stamp(c.UpdatedAt)
	next[i] = c

	if err := s.col.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the client. Invoices referencing it are left alone.
func (s *ClientStore) Delete(ctx context.Context, id string) (bool, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	i := s.col.indexOf(func(c types.Client) bool { return c.ID == id })
	if i < 0 {
		return false, nil
	}
	next := slices.Delete(s.col.snapshot(), i, i+1)
	if err := s.col.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ClientStore) GetByID(id string) (types.Client, bool) {
	s.col.mu.RLock()
	defer s.col.mu.RUnlock()
	i := s.col.indexOf(func(c types.Client) bool { return c.ID == id })
	if i < 0 {
		return types.Client{}, false
	}
	return s.col.items[i].Clone(), true
}

// Search matches query case-insensitively against name, email and company.
// A blank query returns every client in stored order.
func (s *ClientStore) Search(query string) []types.Client {
	if strings.TrimSpace(query) == "" {
		return s.List()
	}
	q := strings.ToLower(query)
	return s.filter(func(c types.Client) bool { return c.Matches(q) })
}

func (s *ClientStore) List() []types.Client {
	return s.filter(func(types.Client) bool { return true })
}

func (s *ClientStore) Len() int {
	s.col.mu.RLock()
	defer s.col.mu.RUnlock()
	return len(s.col.items)
}

// SeedIfEmpty adds the given clients in one write when the collection has none. It returns how many were added.
func (s *ClientStore) SeedIfEmpty(ctx context.Context, seed []types.ClientInput) (int, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	if len(s.col.items) > 0 || len(seed) == 0 {
		return 0, nil
	}
	now := timeNow()
	next := make([]types.Client, 0, len(seed))
	for _, in := range seed {
		next = append(next, newClient(in, now))
	}
	if err := s.col.commit(ctx, next); err != nil {
		return 0, err
	}
	log.WithField("count", len(next)).Info("seeded sample clients")
	return len(next), nil
}

func (s *ClientStore) filter(keep func(types.Client) bool) []types.Client {
	s.col.mu.RLock()
	defer s.col.mu.RUnlock()
	out := make([]types.Client, 0, len(s.col.items))
	for _, c := range s.col.items {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

func newClient(in types.ClientInput, now time.Time) types.Client {
	c := types.Client{
		ID:        newID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Company:   in.Company,
		TaxID:     in.TaxID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Address != nil {
		addr := *in.Address
		c.Address = &addr
	}
	return c
}
