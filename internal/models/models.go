package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User - an operator who can log in and request reports
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`                         // Never return this in JSON
	Role         string    `gorm:"size:30;index" json:"role"` // e.g. 'yonetici' (manager), 'kasiyer' (cashier)
	CreatedAt    time.Time `json:"created_at"`
}

// Sale - the transaction header. TotalAmount is NULL when the till never
// recorded a total; such sales still count as orders.
type Sale struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	UserID      uint                `json:"user_id"` // Who processed it
	TotalAmount decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	SaleTime    time.Time           `gorm:"index" json:"sale_time"`
	Items       []SaleItem          `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem - one line of a sale. ProductName is a snapshot taken at sale time.
type SaleItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SaleID      uint   `gorm:"index" json:"sale_id"`
	ProductName string `gorm:"size:150" json:"product_name"`
	Quantity    int    `json:"quantity"`
}
