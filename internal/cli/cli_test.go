package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avishkin/pharmacy/internal/models"
	"github.com/avishkin/pharmacy/internal/service"
)

func runScript(t *testing.T, script string) (*gorm.DB, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Medication{}, &models.Order{}, &models.User{}))

	require.NoError(t, db.Create(&models.Medication{
		Code: "M101", Name: "Paracetamol", Price: 25.0, Stock: 100,
	}).Error)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := service.NewCatalog(db, log)
	ledger := service.NewLedger(db, log)
	inventory := service.NewInventory(db, catalog, ledger, log)

	var out bytes.Buffer
	app := New(db, catalog, inventory, log, strings.NewReader(script), &out)
	require.NoError(t, app.Run(context.Background()))
	return db, out.String()
}

func TestBuyerSession_OrderAndCancel(t *testing.T) {
	script := strings.Join([]string{
		"buyer",
		"bob", "pw", // register
		"bob", "pw", // login
		"2",             // order medication
		"M101", "10",    // id, quantity
		"123 St",        // delivery address
		"6",             // invalid rating
		"3",             // view orders
		"4", "1",        // cancel order #1
		"5",             // logout
	}, "\n") + "\n"

	db, out := runScript(t, script)

	require.Contains(t, out, "Registration successful for buyer")
	require.Contains(t, out, "Login successful!")
	require.Contains(t, out, "Order placed, total = $250")
	require.Contains(t, out, "Invalid rating.")
	require.Contains(t, out, "Order cancelled.")
	require.Contains(t, out, "Logged out.")

	var med models.Medication
	require.NoError(t, db.Where("code = ?", "M101").First(&med).Error)
	require.EqualValues(t, 100, med.Stock)
	require.Nil(t, med.Rating)

	var order models.Order
	require.NoError(t, db.First(&order, 1).Error)
	require.True(t, order.Canceled)
	require.Equal(t, "123 St", order.Address)
}

func TestSellerSession_AddAndRestock(t *testing.T) {
	script := strings.Join([]string{
		"seller",
		"sally", "pw",
		"sally", "pw",
		"1",                            // add medication
		"Ibuprofen", "M102", "35", "80",
		"1",                            // duplicate id rejected
		"Ibuprofen Forte", "M102", "40", "10",
		"2", "M102", "-30",             // update stock
		"3",                            // display
		"4",                            // logout
	}, "\n") + "\n"

	db, out := runScript(t, script)

	require.Contains(t, out, "Medication added: Ibuprofen")
	require.Contains(t, out, "medication code already exists")
	require.Contains(t, out, "Updated stock for Ibuprofen: 50")
	require.Contains(t, out, "id=M102")

	var med models.Medication
	require.NoError(t, db.Where("code = ?", "M102").First(&med).Error)
	require.EqualValues(t, 50, med.Stock)
	require.Equal(t, "Ibuprofen", med.Name)
}

func TestBuyerSession_BadNumericInputReprompted(t *testing.T) {
	script := strings.Join([]string{
		"buyer",
		"bob", "pw",
		"bob", "pw",
		"2",
		"M101",
		"ten", "10", // malformed quantity, then valid
		"addr",
		"5", // valid rating
		"5", // logout
	}, "\n") + "\n"

	db, out := runScript(t, script)

	require.Contains(t, out, "Invalid number, try again.")
	require.Contains(t, out, "Thank you for rating!")

	var med models.Medication
	require.NoError(t, db.Where("code = ?", "M101").First(&med).Error)
	require.EqualValues(t, 90, med.Stock)
	require.NotNil(t, med.Rating)
	require.Equal(t, 5.0, *med.Rating)
}

func TestInvalidRoleExits(t *testing.T) {
	_, out := runScript(t, "admin\n")
	require.Contains(t, out, "Invalid role. Exiting.")
}

func TestBuyerSession_InsufficientStock(t *testing.T) {
	script := strings.Join([]string{
		"buyer",
		"bob", "pw",
		"bob", "pw",
		"2", "M101", "500",
		"5",
	}, "\n") + "\n"

	db, out := runScript(t, script)

	require.Contains(t, out, "Insufficient stock.")

	var med models.Medication
	require.NoError(t, db.Where("code = ?", "M101").First(&med).Error)
	require.EqualValues(t, 100, med.Stock)
}
