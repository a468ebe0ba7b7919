package simulation

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/andresuchdata/shopgen/internal/random"
)

// Input is the immutable dimension data a run walks over.
type Input struct {
	Products []domain.Product
	Channels []domain.Channel
	Days     []domain.CalendarDay // chronological

	// Start is the first day of the window. Opening stock is dated the day before.
	Start time.Time
}

// Result holds the two fact streams of a run and the closing inventory.
type Result struct {
	Sales     []domain.Sale
	Movements []domain.Movement
	Closing   map[string]int
	Stats     Stats
}

// Stats counts what happened during a run.
type Stats struct {
	SaleAttempts   int
	StockOuts      int
	Replenishments int
}

// DayHook observes the inventory after every product has been processed for a day.
// ledger is every movement emitted so far and must not be modified.
type DayHook func(day domain.CalendarDay, inv *Inventory, ledger []domain.Movement)

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithDayHook(h DayHook) Option {
	return func(e *Engine) { e.dayClosed = h }
}

// Engine walks the calendar x catalog cross product and emits stock-backed sales and the
// movement ledger that explains every stock change.
type Engine struct {
	params    Params
	src       random.Source
	log       zerolog.Logger
	dayClosed DayHook
}

func NewEngine(src random.Source, params Params, opts ...Option) *Engine {
	e := &Engine{
		params: params,
		src:    src,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Simulate draws an opening stock for every product and runs the window.
func (e *Engine) Simulate(in Input) Result {
	opening := make(map[string]int, len(in.Products))
	for _, p := range in.Products {
		opening[p.ID] = random.IntBetween(e.src, e.params.InitialStockMin, e.params.InitialStockMax)
	}
	return e.SimulateFrom(in, opening)
}

// SimulateFrom runs the window from an explicit opening stock. Products missing from
// opening start at zero.
func (e *Engine) SimulateFrom(in Input, opening map[string]int) Result {
	r := &run{
		params:    e.params,
		src:       e.src,
		inv:       newInventory(len(in.Products)),
		channels:  in.Channels,
		movements: make([]domain.Movement, 0, len(in.Products)*(len(in.Days)/4+1)),
	}

	openingDate := in.Start.AddDate(0, 0, -1)
	for _, p := range in.Products {
		qty := opening[p.ID]
		r.inv.set(p.ID, qty)
		// an empty shelf has nothing to record; quantities are positive magnitudes
		if qty > 0 {
			r.emitMovement(openingDate, p.ID, domain.MovementInitial, qty)
		}
	}

	for _, day := range in.Days {
		for i := range in.Products {
			r.step(day.Date, &in.Products[i])
		}
		if e.dayClosed != nil {
			e.dayClosed(day, r.inv, r.movements)
		}
	}

	e.log.Debug().
		Int("products", len(in.Products)).
		Int("days", len(in.Days)).
		Int("sales", len(r.sales)).
		Int("movements", len(r.movements)).
		Int("stock_outs", r.stats.StockOuts).
		Int("replenishments", r.stats.Replenishments).
		Msg("simulation finished")

	return Result{
		Sales:     r.sales,
		Movements: r.movements,
		Closing:   r.inv.Snapshot(),
		Stats:     r.stats,
	}
}

// run is the mutable state of one simulation. It is never shared between runs.
type run struct {
	params   Params
	src      random.Source
	inv      *Inventory
	channels []domain.Channel

	sales        []domain.Sale
	movements    []domain.Movement
	lastSale     int64
	lastMovement int64
	stats        Stats
}

// step processes one product for one day: the sale attempt, then the reorder check.
func (r *run) step(date time.Time, p *domain.Product) {
	if random.Chance(r.src, r.params.SaleProbability) {
		r.stats.SaleAttempts++
		qty := random.IntBetween(r.src, r.params.MinQuantity, r.params.MaxQuantity)
		if r.inv.Level(p.ID) >= qty && len(r.channels) > 0 {
			channel := random.Pick(r.src, r.channels)
			r.emitSale(date, p, channel.ID, qty)
			r.emitMovement(date, p.ID, domain.MovementSale, qty)
			r.inv.add(p.ID, -qty)
		} else {
			r.stats.StockOuts++
		}
	}

	if r.inv.Level(p.ID) < r.params.ReorderThreshold {
		r.emitMovement(date, p.ID, domain.MovementPurchase, r.params.ReorderQuantity)
		r.inv.add(p.ID, r.params.ReorderQuantity)
		r.stats.Replenishments++
	}
}

func (r *run) emitSale(date time.Time, p *domain.Product, channelID, qty int) {
	r.lastSale++
	r.sales = append(r.sales, domain.Sale{
		ID:        r.lastSale,
		Date:      date,
		ProductID: p.ID,
		ChannelID: channelID,
		Quantity:  qty,
		UnitPrice: p.Price,
		UnitCost:  p.Cost,
		Total:     LineTotal(p.Price, qty),
	})
}

func (r *run) emitMovement(date time.Time, productID string, kind domain.MovementKind, qty int) {
	r.lastMovement++
	r.movements = append(r.movements, domain.Movement{
		ID:        r.lastMovement,
		Date:      date,
		ProductID: productID,
		Kind:      kind,
		Quantity:  qty,
	})
}

// LineTotal is quantity x unit price, rounded to cents.
func LineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}
