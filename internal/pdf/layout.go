// Package pdf renders daily report summaries into PDF documents.
package pdf

import (
	"strconv"

	"go-pos-report/internal/report"

	"github.com/shopspring/decimal"
)

// Labels are the fixed texts of the report.
type Labels struct {
	Title       string
	Date        string
	Orders      string
	Revenue     string
	TopProducts string
	ProductName string
	Quantity    string
}

// DefaultLabels returns the labels used when the configuration leaves them empty.
func DefaultLabels() Labels {
	return Labels{
		Title:       "KAHVECİM - GÜNLÜK RAPOR",
		Date:        "Date",
		Orders:      "Total Orders",
		Revenue:     "Total Revenue",
		TopProducts: "BEST SELLING PRODUCTS",
		ProductName: "Product Name",
		Quantity:    "Quantity",
	}
}

// Options configures what goes on the page.
type Options struct {
	Labels         Labels
	CurrencySymbol string
}

func (o Options) withDefaults() Options {
	def := DefaultLabels()
	l := &o.Labels
	l.Title = orDefault(l.Title, def.Title)
	l.Date = orDefault(l.Date, def.Date)
	l.Orders = orDefault(l.Orders, def.Orders)
	l.Revenue = orDefault(l.Revenue, def.Revenue)
	l.TopProducts = orDefault(l.TopProducts, def.TopProducts)
	l.ProductName = orDefault(l.ProductName, def.ProductName)
	l.Quantity = orDefault(l.Quantity, def.Quantity)
	return o
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Row is one line of the product table.
type Row struct {
	Product  string
	Quantity string
}

// Content is everything a renderer puts on the page, in reading order.
type Content struct {
	Title      string
	Facts      []string
	TableTitle string
	Header     Row
	Rows       []Row
}

// BuildContent lays out a summary. The same summary always yields the same content.
func BuildContent(s report.Summary, opts Options) Content {
	opts = opts.withDefaults()
	l := opts.Labels

	ranked := s.Ranked()
	rows := make([]Row, 0, len(ranked))
	for _, p := range ranked {
		rows = append(rows, Row{Product: p.Product, Quantity: strconv.Itoa(p.Quantity)})
	}

	return Content{
		Title: l.Title,
		Facts: []string{
			l.Date + ": " + s.Date,
			l.Orders + ": " + strconv.Itoa(s.TotalSales),
			l.Revenue + ": " + FormatRevenue(s.TotalRevenue, opts.CurrencySymbol),
		},
		TableTitle: l.TopProducts + ":",
		Header:     Row{Product: l.ProductName, Quantity: l.Quantity},
		Rows:       rows,
	}
}

// FormatRevenue prints the exact amount followed by the currency symbol.
func FormatRevenue(amount decimal.Decimal, currency string) string {
	return amount.String() + currency
}
