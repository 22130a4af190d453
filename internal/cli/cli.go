package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/avishkin/pharmacy/internal/hash"
	"github.com/avishkin/pharmacy/internal/models"
	"github.com/avishkin/pharmacy/internal/service"
	"github.com/avishkin/pharmacy/internal/session"
)

// CLI is the interactive console frontend. It owns no business rules: every
// mutation goes through the catalog and inventory services, and malformed
// numeric input is caught here before it can reach them.
type CLI struct {
	DB        *gorm.DB
	Catalog   *service.Catalog
	Inventory *service.Inventory
	Log       *slog.Logger

	in  *bufio.Scanner
	out io.Writer
}

func New(db *gorm.DB, catalog *service.Catalog, inventory *service.Inventory, log *slog.Logger, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		DB:        db,
		Catalog:   catalog,
		Inventory: inventory,
		Log:       log,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

func (a *CLI) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *CLI) readLine(label string) (string, bool) {
	a.printf("%s", label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// readInt re-prompts until the input parses; bad input never reaches the core.
func (a *CLI) readInt(label string) (int64, bool) {
	for {
		line, ok := a.readLine(label)
		if !ok {
			return 0, false
		}
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			a.printf("Invalid number, try again.\n")
			continue
		}
		return v, true
	}
}

func (a *CLI) readFloat(label string) (float64, bool) {
	for {
		line, ok := a.readLine(label)
		if !ok {
			return 0, false
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			a.printf("Invalid number, try again.\n")
			continue
		}
		return v, true
	}
}

func (a *CLI) Run(ctx context.Context) error {
	role, ok := a.readLine("Enter your role (seller/buyer): ")
	if !ok {
		return nil
	}
	role = strings.ToLower(role)
	if role != models.RoleSeller && role != models.RoleBuyer {
		a.printf("Invalid role. Exiting.\n")
		return nil
	}

	if err := a.register(role); err != nil {
		return err
	}

	sess, ok := a.login()
	if !ok {
		return nil
	}

	if sess.IsSeller() {
		a.sellerMenu(ctx)
	} else {
		a.buyerMenu(ctx)
	}
	return nil
}

func (a *CLI) register(role string) error {
	username, ok := a.readLine("Register - Enter username: ")
	if !ok {
		return nil
	}
	password, ok := a.readLine("Enter password: ")
	if !ok {
		return nil
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	user := models.User{Username: username, PasswordHash: pwHash, Role: role}
	if err := a.DB.Create(&user).Error; err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	a.printf("Registration successful for %s\n", role)
	return nil
}

func (a *CLI) login() (*session.Session, bool) {
	a.printf("\nLogin to continue:\n")
	for {
		username, ok := a.readLine("Username: ")
		if !ok {
			return nil, false
		}
		password, ok := a.readLine("Password: ")
		if !ok {
			return nil, false
		}

		var user models.User
		err := a.DB.Where("username = ?", username).First(&user).Error
		if err == nil && hash.CheckPassword(user.PasswordHash, password) {
			a.printf("Login successful!\n")
			return &session.Session{User: user}, true
		}
		a.printf("Invalid credentials. Try again.\n")
	}
}

func (a *CLI) sellerMenu(ctx context.Context) {
	for {
		a.printf("\n--- Seller Menu ---\n")
		a.printf("1. Add Medication\n2. Update Stock\n3. Display Medications\n4. Logout\n")
		choice, ok := a.readInt("Choose: ")
		if !ok {
			return
		}
		switch choice {
		case 1:
			a.addMedication(ctx)
		case 2:
			a.updateStock(ctx)
		case 3:
			a.displayMedications(ctx)
		case 4:
			a.printf("Logged out.\n")
			return
		default:
			a.printf("Invalid choice.\n")
		}
	}
}

func (a *CLI) buyerMenu(ctx context.Context) {
	for {
		a.printf("\n--- Buyer Menu ---\n")
		a.printf("1. Display Medications\n2. Order Medication\n3. View Orders\n4. Cancel Order\n5. Logout\n")
		choice, ok := a.readInt("Choose: ")
		if !ok {
			return
		}
		switch choice {
		case 1:
			a.displayMedications(ctx)
		case 2:
			a.orderMedication(ctx)
		case 3:
			a.displayOrders(ctx)
		case 4:
			a.cancelOrder(ctx)
		case 5:
			a.printf("Logged out.\n")
			return
		default:
			a.printf("Invalid choice.\n")
		}
	}
}

func (a *CLI) addMedication(ctx context.Context) {
	name, ok := a.readLine("Name: ")
	if !ok {
		return
	}
	code, ok := a.readLine("ID: ")
	if !ok {
		return
	}
	price, ok := a.readFloat("Price: ")
	if !ok {
		return
	}
	stock, ok := a.readInt("Stock: ")
	if !ok {
		return
	}

	med, err := a.Catalog.Add(ctx, name, code, price, stock)
	if err != nil {
		a.printf("Error: %v\n", err)
		return
	}
	a.printf("Medication added: %s\n", med.Name)
}

func (a *CLI) updateStock(ctx context.Context) {
	code, ok := a.readLine("Enter ID to update stock: ")
	if !ok {
		return
	}
	delta, ok := a.readInt("Amount (+/-): ")
	if !ok {
		return
	}

	med, err := a.Inventory.UpdateStock(ctx, code, delta)
	if err != nil {
		if errors.Is(err, service.ErrMedicationNotFound) {
			a.printf("Medication not found.\n")
		} else {
			a.printf("Error: %v\n", err)
		}
		return
	}
	a.printf("Updated stock for %s: %d\n", med.Name, med.Stock)
}

func (a *CLI) displayMedications(ctx context.Context) {
	meds, err := a.Catalog.List(ctx)
	if err != nil {
		a.printf("Error: %v\n", err)
		return
	}
	for _, m := range meds {
		rating := "No rating yet"
		if m.Rating != nil {
			rating = strconv.FormatFloat(*m.Rating, 'g', -1, 64)
		}
		a.printf("Medication{name=%s, id=%s, price=%g, stock=%d, rating=%s}\n",
			m.Name, m.Code, m.Price, m.Stock, rating)
	}
}

func (a *CLI) orderMedication(ctx context.Context) {
	code, ok := a.readLine("Enter Medication ID: ")
	if !ok {
		return
	}
	qty, ok := a.readInt("Quantity: ")
	if !ok {
		return
	}

	order, err := a.Inventory.PlaceOrder(ctx, code, qty, "")
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMedicationNotFound):
			a.printf("Medication not found.\n")
		case errors.Is(err, service.ErrInsufficientStock):
			a.printf("Insufficient stock.\n")
		default:
			a.printf("Error: %v\n", err)
		}
		return
	}
	a.printf("Order placed, total = $%g\n", order.TotalCost)

	address, ok := a.readLine("Enter delivery address: ")
	if ok {
		if _, err := a.Inventory.SetDeliveryAddress(ctx, order.ID, address); err != nil {
			a.printf("Error: %v\n", err)
		}
	}

	rating, ok := a.readFloat("Rate this medication (1 to 5): ")
	if ok {
		if err := a.Inventory.RateMedication(ctx, code, rating); err != nil {
			a.printf("Invalid rating.\n")
		} else {
			a.printf("Thank you for rating!\n")
		}
	}
}

func (a *CLI) displayOrders(ctx context.Context) {
	orders, err := a.Inventory.ActiveOrders(ctx)
	if err != nil {
		a.printf("Error: %v\n", err)
		return
	}
	if len(orders) == 0 {
		a.printf("No orders placed.\n")
		return
	}
	a.printOrders(ctx, orders)
}

func (a *CLI) printOrders(ctx context.Context, orders []models.Order) {
	for _, o := range orders {
		var med models.Medication
		name := "?"
		if err := a.DB.WithContext(ctx).First(&med, o.MedicationID).Error; err == nil {
			name = med.Name
		}
		a.printf("#%d Order{medication=%s, quantity=%d, totalCost=$%g, deliveryAddress=%s, canceled=%t}\n",
			o.ID, name, o.Quantity, o.TotalCost, o.Address, o.Canceled)
	}
}

func (a *CLI) cancelOrder(ctx context.Context) {
	orders, err := a.Inventory.ActiveOrders(ctx)
	if err != nil {
		a.printf("Error: %v\n", err)
		return
	}
	if len(orders) == 0 {
		a.printf("No active orders.\n")
		return
	}
	a.printOrders(ctx, orders)

	id, ok := a.readInt("Enter order number to cancel: ")
	if !ok {
		return
	}
	if id < 0 {
		a.printf("Invalid order number.\n")
		return
	}
	if _, err := a.Inventory.CancelOrder(ctx, uint(id)); err != nil {
		if errors.Is(err, service.ErrInvalidOrder) {
			a.printf("Invalid order number.\n")
		} else {
			a.printf("Error: %v\n", err)
		}
		return
	}
	a.printf("Order cancelled.\n")
}
