package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date format used in every exported table.
const DateLayout = "2006-01-02"

// Product is a catalog entry. Prices do not vary over the simulation window.
type Product struct {
	ID       string          `json:"product_id" db:"product_id"`
	Name     string          `json:"product_name" db:"product_name"`
	Category string          `json:"category" db:"category"`
	Cost     decimal.Decimal `json:"product_cost" db:"product_cost"`
	Price    decimal.Decimal `json:"sale_price" db:"sale_price"`
}

// Channel is a sales channel such as a marketplace or a physical store.
type Channel struct {
	ID   int    `json:"channel_id" db:"channel_id"`
	Name string `json:"channel_name" db:"channel_name"`
}

// CalendarDay is one row of the date dimension.
type CalendarDay struct {
	Date      time.Time `json:"date" db:"date"`
	Year      int       `json:"year" db:"year"`
	Month     int       `json:"month" db:"month"`
	Day       int       `json:"day" db:"day"`
	MonthName string    `json:"month_name" db:"month_name"`
	Quarter   int       `json:"quarter" db:"quarter"`
}

// Sale is a stock-backed sales transaction.
type Sale struct {
	ID        int64           `json:"sale_id" db:"sale_id"`
	Date      time.Time       `json:"date" db:"date"`
	ProductID string          `json:"product_id" db:"product_id"`
	ChannelID int             `json:"channel_id" db:"channel_id"`
	Quantity  int             `json:"quantity_sold" db:"quantity_sold"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	Total     decimal.Decimal `json:"total_sale" db:"total_sale"`
}

// MovementKind classifies an inventory ledger entry.
type MovementKind int

const (
	MovementInitial MovementKind = iota + 1
	MovementSale
	MovementPurchase
)

func (k MovementKind) String() string {
	switch k {
	case MovementInitial:
		return "initial"
	case MovementSale:
		return "sale"
	case MovementPurchase:
		return "purchase"
	default:
		return "unknown"
	}
}

// Sign is the direction the kind moves stock: +1 for inflows, -1 for outflows.
func (k MovementKind) Sign() int {
	if k == MovementSale {
		return -1
	}
	return 1
}

// Movement is one inventory ledger entry. Quantity is always a positive magnitude;
// the direction comes from Kind.
type Movement struct {
	ID        int64        `json:"movement_id" db:"movement_id"`
	Date      time.Time    `json:"date" db:"date"`
	ProductID string       `json:"product_id" db:"product_id"`
	Kind      MovementKind `json:"movement_type" db:"movement_type"`
	Quantity  int          `json:"quantity" db:"quantity"`
}

// Signed returns the quantity with the direction of its kind applied.
func (m Movement) Signed() int {
	return m.Kind.Sign() * m.Quantity
}

// Dataset is every table produced for one locale.
type Dataset struct {
	Products  []Product
	Channels  []Channel
	Days      []CalendarDay
	Sales     []Sale
	Movements []Movement

	// Closing is the inventory state at the end of the window, keyed by product ID.
	Closing map[string]int
}
