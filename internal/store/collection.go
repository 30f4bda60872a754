package store

import (
	"context"
	"errors"
	"sync"

	"invoicer/internal/ports"
	"invoicer/internal/types"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// Gateway keys. Both are shared with existing data, do not rename.
const (
	ClientsKey  = "invoice_clients"
	InvoicesKey = "invoice_invoices"
	SequenceKey = "invoice_sequence"
)

// collection owns one JSON array persisted under a single gateway key.
//
// Mutations hold mu for the whole compute-persist-commit cycle, so there is a single writer per collection.
// items is only replaced after the gateway accepted the new blob.
type collection[T any] struct {
	key string
	gw  ports.Gateway

	mu    sync.RWMutex
	items []T
}

func newCollection[T any](gw ports.Gateway, key string) *collection[T] {
	return &collection[T]{key: key, gw: gw}
}

// load replaces the in-memory items with the persisted blob. The caller must hold mu.
func (c *collection[T]) load(ctx context.Context) (types.LoadOutcome, error) {
	raw, found, err := c.gw.Get(ctx, c.key)
	if errors.Is(err, types.ErrCorruptData) {
		return c.degrade(types.Err(types.ErrCorruptData, err, "decode %s", c.key), len(raw)), nil
	}
	if err != nil {
		log.WithError(err).WithField("key", c.key).Error("failed to read collection")
		return types.LoadOutcome{}, types.Err(types.ErrGatewayAccess, err, "read %s", c.key)
	}
	if !found {
		c.items = nil
		return types.LoadOutcome{State: types.LoadEmpty}, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return c.degrade(types.Err(types.ErrCorruptData, err, "parse %s", c.key), len(raw)), nil
	}

	c.items = items
	return types.LoadOutcome{State: types.LoadOK, Count: len(items)}, nil
}

// degrade drops the in-memory items after an unreadable blob. The caller must hold mu.
func (c *collection[T]) degrade(cause error, size int) types.LoadOutcome {
	log.WithError(cause).WithFields(log.Fields{
		"key":   c.key,
		"bytes": size,
	}).Warn("persisted collection is unreadable, serving an empty one")
	c.items = nil
	return types.LoadOutcome{State: types.LoadDegraded, Cause: cause}
}

// commit writes next as the whole collection and adopts it on success. The caller must hold mu.
func (c *collection[T]) commit(ctx context.Context, next []T) error {
	if next == nil {
		next = []T{}
	}
	b, err := json.Marshal(next)
	if err != nil {
		return types.Err(types.ErrInvalidInput, err, "encode %s", c.key)
	}
	if err := c.gw.Set(ctx, c.key, string(b)); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"key":   c.key,
			"count": len(next),
		}).Error("failed to persist collection")
		return types.Err(types.ErrGatewayAccess, err, "write %s", c.key)
	}
	c.items = next
	return nil
}

// snapshot copies the current items. The caller must hold at least a read lock.
func (c *collection[T]) snapshot() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) indexOf(match func(T) bool) int {
	for i, it := range c.items {
		if match(it) {
			return i
		}
	}
	return -1
}
