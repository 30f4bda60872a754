package store

import (
	"invoicer/internal/types"

	"github.com/goccy/go-json"
	"github.com/jmespath/go-jmespath"
)

// Filter returns the invoices for which the JMESPath expression evaluates to true against the invoice's
// JSON form, e.g. "status == 'sent' && total > `100`". Non-boolean results count as no match.
func (s *InvoiceStore) Filter(expression string) ([]types.Invoice, error) {
	q, err := jmespath.Compile(expression)
	if err != nil {
		return nil, types.Err(types.ErrInvalidInput, err, "jmespath %q", expression)
	}

	s.col.mu.RLock()
	defer s.col.mu.RUnlock()

	out := make([]types.Invoice, 0)
	for _, inv := range s.col.items {
		doc, err := asDocument(inv)
		if err != nil {
			return nil, err
		}
		v, err := q.Search(doc)
		if err != nil {
			return nil, types.Err(types.ErrInvalidInput, err, "jmespath %q on %s", expression, inv.InvoiceNumber)
		}
		if matched, ok := v.(bool); ok && matched {
			out = append(out, inv.Clone())
		}
	}
	return out, nil
}

// asDocument converts v to the generic map form JMESPath walks.
func asDocument(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
