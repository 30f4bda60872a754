package billing

import (
	"invoicer/internal/types"
)

func items(totals ...float64) []types.InvoiceItem {
	out := make([]types.InvoiceItem, 0, len(totals))
	for _, t := range totals {
		out = append(out, types.InvoiceItem{Description: "line", Quantity: 1, UnitPrice: t, Total: t})
	}
	return out
}

func (s *BillingTestSuite) TestCalculateTotalsLaw() {
	cases := []struct {
		items    []types.InvoiceItem
		tax      float64
		discount float64
	}{
		{items(), 0, 0},
		{items(100), 0, 0},
		{items(100, 50.5, 0.25), 8.25, 0},
		{items(100, 200), 10, 5},
		{items(19.99, 0.01, 3), -5, 0},
		{items(40), 0, 150},
		{items(-40, 10), 20, -10},
		{items(0.1, 0.2), 33.333, 12.5},
	}
	for _, c := range cases {
		sum := 0.0
		for _, it := range c.items {
			sum += it.Total
		}
		got := CalculateTotals(c.items, c.tax, c.discount)
		s.Equal(sum, got.Subtotal)
		s.Equal(sum*c.tax/100, got.TaxAmount)
		s.Equal(sum*c.discount/100, got.DiscountAmount)
		s.Equal(sum+sum*c.tax/100-sum*c.discount/100, got.Total)
	}
}

func (s *BillingTestSuite) TestCalculateTotalsNoClamping() {
	got := CalculateTotals(items(40), 0, 150)
	s.Equal(-20.0, got.Total)

	got = CalculateTotals(items(40), 0, 0)
	s.Equal(types.Totals{Subtotal: 40, Total: 40}, got)
}

func (s *BillingTestSuite) TestItemEditing() {
	it := NewItem("Consulting", 3, 120)
	s.NotEmpty(it.ID)
	s.Equal(360.0, it.Total)

	it = WithQuantity(it, 2)
	s.Equal(240.0, it.Total)
	it = WithUnitPrice(it, 100)
	s.Equal(200.0, it.Total)
	s.Equal(2.0, it.Quantity)
}

func (s *BillingTestSuite) TestValidItems() {
	in := []types.InvoiceItem{
		{Description: "Design"},
		{Description: "   "},
		{Description: ""},
		{Description: "Hosting"},
	}
	got := ValidItems(in)
	s.Len(got, 2)
	s.Equal("Hosting", got[1].Description)
}

func (s *BillingTestSuite) TestRecalculate() {
	p := Recalculate(items(100, 50), 10, 20)
	s.Len(p.Items, 2)
	s.Equal(150.0, *p.Subtotal)
	s.Equal(15.0, *p.TaxAmount)
	s.Equal(30.0, *p.DiscountAmount)
	s.Equal(135.0, *p.Total)
	s.Equal(10.0, *p.TaxRate)
	s.Equal(20.0, *p.DiscountRate)
	s.Nil(p.Status)

	inv := types.Invoice{Total: 1, Items: items(1)}
	Recalculate(nil, 0, 0).Apply(&inv)
	s.NotNil(inv.Items)
	s.Empty(inv.Items)
	s.Equal(0.0, inv.Total)
}

func (s *BillingTestSuite) TestMoney() {
	s.Equal("0.00", Money(0))
	s.Equal("40.00", Money(40))
	s.Equal("0.30", Money(0.1+0.2))
	s.Equal("1234.57", Money(1234.567))
	s.Equal("-12.50", Money(-12.5))
}
