package export

import (
	"strconv"

	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/andresuchdata/shopgen/internal/locale"
)

// Table names. Each is written as <name>.csv.
const (
	TableProducts  = "dim_products"
	TableChannels  = "dim_channels"
	TableDates     = "dim_dates"
	TableSales     = "fact_sales"
	TableMovements = "fact_inventory_movements"
)

// TableNames lists the tables in export order.
var TableNames = []string{TableProducts, TableChannels, TableDates, TableSales, TableMovements}

// Headers are identical for every locale so downstream reports can switch datasets
// without remapping columns.
var Headers = map[string][]string{
	TableProducts:  {"Product_ID", "Product_Name", "Category", "Product_Cost", "Sale_Price"},
	TableChannels:  {"Channel_ID", "Channel_Name"},
	TableDates:     {"Date", "Year", "Month", "Day", "Month_Name", "Quarter"},
	TableSales:     {"Sale_ID", "Date", "Product_ID", "Channel_ID", "Quantity_Sold", "Unit_Price", "Unit_Cost", "Total_Sale"},
	TableMovements: {"Movement_ID", "Date", "Product_ID", "Movement_Type", "Quantity"},
}

// Table is a rendered, rectangular table.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// FileName returns the CSV file name of the table.
func (t Table) FileName() string {
	return FileName(t.Name)
}

// FileName returns the CSV file name for a table name.
func FileName(table string) string {
	return table + ".csv"
}

// IsTable reports whether name is one of the exported tables.
func IsTable(name string) bool {
	_, ok := Headers[name]
	return ok
}

// Render formats every table of ds. Values are formatted only; nothing is recomputed.
func Render(ds *domain.Dataset, loc *locale.Locale) []Table {
	return []Table{
		renderProducts(ds.Products),
		renderChannels(ds.Channels),
		renderDates(ds.Days),
		renderSales(ds.Sales),
		renderMovements(ds.Movements, loc),
	}
}

func renderProducts(products []domain.Product) Table {
	rows := make([][]string, len(products))
	for i, p := range products {
		rows[i] = []string{p.ID, p.Name, p.Category, p.Cost.StringFixed(2), p.Price.StringFixed(2)}
	}
	return Table{Name: TableProducts, Header: Headers[TableProducts], Rows: rows}
}

func renderChannels(channels []domain.Channel) Table {
	rows := make([][]string, len(channels))
	for i, c := range channels {
		rows[i] = []string{strconv.Itoa(c.ID), c.Name}
	}
	return Table{Name: TableChannels, Header: Headers[TableChannels], Rows: rows}
}

func renderDates(days []domain.CalendarDay) Table {
	rows := make([][]string, len(days))
	for i, d := range days {
		rows[i] = []string{
			d.Date.Format(domain.DateLayout),
			strconv.Itoa(d.Year),
			strconv.Itoa(d.Month),
			strconv.Itoa(d.Day),
			d.MonthName,
			strconv.Itoa(d.Quarter),
		}
	}
	return Table{Name: TableDates, Header: Headers[TableDates], Rows: rows}
}

func renderSales(sales []domain.Sale) Table {
	rows := make([][]string, len(sales))
	for i, s := range sales {
		rows[i] = []string{
			strconv.FormatInt(s.ID, 10),
			s.Date.Format(domain.DateLayout),
			s.ProductID,
			strconv.Itoa(s.ChannelID),
			strconv.Itoa(s.Quantity),
			s.UnitPrice.StringFixed(2),
			s.UnitCost.StringFixed(2),
			s.Total.StringFixed(2),
		}
	}
	return Table{Name: TableSales, Header: Headers[TableSales], Rows: rows}
}

func renderMovements(movements []domain.Movement, loc *locale.Locale) Table {
	rows := make([][]string, len(movements))
	for i, m := range movements {
		rows[i] = []string{
			strconv.FormatInt(m.ID, 10),
			m.Date.Format(domain.DateLayout),
			m.ProductID,
			loc.MovementLabel(m.Kind),
			strconv.Itoa(m.Quantity),
		}
	}
	return Table{Name: TableMovements, Header: Headers[TableMovements], Rows: rows}
}
