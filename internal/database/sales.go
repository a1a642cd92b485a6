package database

import (
	"context"
	"fmt"
	"time"

	"go-pos-report/internal/models"
	"go-pos-report/internal/report"

	"gorm.io/gorm"
)

// Ensure SaleStore implements report.SaleSource
var _ report.SaleSource = (*SaleStore)(nil)

// SaleStore reads recorded sales for reporting.
type SaleStore struct {
	db *gorm.DB
}

func NewSaleStore(db *gorm.DB) *SaleStore {
	return &SaleStore{db: db}
}

// SalesBetween returns every sale with start <= sale_time <= end, oldest
// first, with its line items in entry order.
func (s *SaleStore) SalesBetween(ctx context.Context, start, end time.Time) ([]report.SaleRecord, error) {
	var sales []models.Sale
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sale_items.id")
		}).
		Where("sale_time BETWEEN ? AND ?", start, end).
		Order("sale_time, id").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}

	records := make([]report.SaleRecord, 0, len(sales))
	for _, sale := range sales {
		records = append(records, toRecord(sale))
	}
	return records, nil
}

func toRecord(sale models.Sale) report.SaleRecord {
	items := make([]report.LineItem, 0, len(sale.Items))
	for _, it := range sale.Items {
		items = append(items, report.LineItem{Product: it.ProductName, Qty: it.Quantity})
	}
	return report.SaleRecord{
		Timestamp: sale.SaleTime,
		Total:     sale.TotalAmount,
		Items:     items,
	}
}
