package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product line of a sale.
type LineItem struct {
	Product string
	Qty     int
}

// SaleRecord is a read-only sale as delivered by the record store.
// An invalid Total counts as zero.
type SaleRecord struct {
	Timestamp time.Time
	Total     decimal.NullDecimal
	Items     []LineItem
}

// ProductQuantity pairs a product with its cumulative quantity.
type ProductQuantity struct {
	Product  string
	Quantity int
}

// Summary is the folded result of one day's sales. It is never mutated after Fold.
type Summary struct {
	Date         string
	TotalSales   int
	TotalRevenue decimal.Decimal

	// first-encounter order
	products []ProductQuantity
}

// Fold aggregates records in the order given.
func Fold(date string, records []SaleRecord) Summary {
	revenue := decimal.Zero
	index := make(map[string]int)
	var products []ProductQuantity

	for _, rec := range records {
		if rec.Total.Valid {
			revenue = revenue.Add(rec.Total.Decimal)
		}
		for _, item := range rec.Items {
			i, seen := index[item.Product]
			if !seen {
				i = len(products)
				index[item.Product] = i
				products = append(products, ProductQuantity{Product: item.Product})
			}
			products[i].Quantity += item.Qty
		}
	}

	return Summary{
		Date:         date,
		TotalSales:   len(records),
		TotalRevenue: revenue,
		products:     products,
	}
}

// ProductQuantities returns a fresh product -> quantity map.
func (s Summary) ProductQuantities() map[string]int {
	out := make(map[string]int, len(s.products))
	for _, p := range s.products {
		out[p.Product] = p.Quantity
	}
	return out
}

// Products returns the products in the order they were first seen.
func (s Summary) Products() []ProductQuantity {
	return slices.Clone(s.products)
}

// Ranked returns the products by quantity descending; ties keep first-encounter order.
func (s Summary) Ranked() []ProductQuantity {
	ranked := s.Products()
	slices.SortStableFunc(ranked, func(a, b ProductQuantity) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})
	return ranked
}
