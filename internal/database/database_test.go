package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-pos-report/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return db, mock, mockDB
}

func TestSaleStore_SalesBetween(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	start := time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 28, 23, 59, 59, int(999*time.Millisecond), time.UTC)

	mock.ExpectQuery("SELECT \\* FROM `sales` WHERE sale_time BETWEEN \\? AND \\? ORDER BY sale_time, id").
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "sale_time"}).
			AddRow(1, 3, "50.00", start.Add(9*time.Hour)).
			AddRow(2, 3, nil, start.Add(10*time.Hour)))
	mock.ExpectQuery("SELECT \\* FROM `sale_items` WHERE `sale_items`.`sale_id` IN \\(\\?,\\?\\) ORDER BY sale_items.id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sale_id", "product_name", "quantity"}).
			AddRow(10, 1, "Latte", 2).
			AddRow(11, 2, "Latte", 1).
			AddRow(12, 2, "Tea", 1))

	records, err := NewSaleStore(db).SalesBetween(context.Background(), start, end)

	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].Total.Valid)
	assert.True(t, decimal.NewFromInt(50).Equal(records[0].Total.Decimal))
	assert.Equal(t, start.Add(9*time.Hour), records[0].Timestamp)
	assert.Equal(t, "Latte", records[0].Items[0].Product)
	assert.Equal(t, 2, records[0].Items[0].Qty)

	assert.False(t, records[1].Total.Valid, "missing total stays missing")
	require.Len(t, records[1].Items, 2)
	assert.Equal(t, "Tea", records[1].Items[1].Product)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleStore_SalesBetween_Empty(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT \\* FROM `sales`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "sale_time"}))

	records, err := NewSaleStore(db).SalesBetween(context.Background(), time.Now(), time.Now())

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleStore_SalesBetween_Error(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT \\* FROM `sales`").WillReturnError(errors.New("connection reset"))

	_, err := NewSaleStore(db).SalesBetween(context.Background(), time.Now(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestUserStore_FindByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\? ORDER BY `users`.`id` LIMIT .*").
			WithArgs("ayse", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role"}).
				AddRow(4, "ayse", "hash", "yonetici"))

		user, err := NewUserStore(db).FindByUsername(context.Background(), "ayse")

		require.NoError(t, err)
		assert.Equal(t, uint(4), user.ID)
		assert.Equal(t, "yonetici", user.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery("SELECT \\* FROM `users`").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role"}))

		_, err := NewUserStore(db).FindByUsername(context.Background(), "nobody")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserStore_Create(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(9, 1))

	user := &models.User{Username: "mehmet", PasswordHash: "hash", Role: "kasiyer"}
	err := NewUserStore(db).Create(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, uint(9), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
