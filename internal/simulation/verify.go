package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/shopgen/internal/domain"
)

var (
	ErrNegativeStock     = errors.New("negative stock")
	ErrLedgerMismatch    = errors.New("ledger does not reconcile")
	ErrIllegalSale       = errors.New("sale not backed by stock")
	ErrReorderRule       = errors.New("reorder rule violated")
	ErrDanglingReference = errors.New("dangling reference")
)

// Verify replays the movement ledger of ds and checks it against the sales stream, the
// dimension tables and the closing inventory. It returns the first violation found.
func Verify(ds *domain.Dataset, p Params) error {
	products := make(map[string]*domain.Product, len(ds.Products))
	for i := range ds.Products {
		products[ds.Products[i].ID] = &ds.Products[i]
	}
	channels := make(map[int]bool, len(ds.Channels))
	for _, c := range ds.Channels {
		channels[c.ID] = true
	}

	if err := verifySales(ds, products, channels, p); err != nil {
		return err
	}

	level, err := replayLedger(ds, products, p)
	if err != nil {
		return err
	}

	if ds.Closing != nil {
		for id := range products {
			if level[id] != ds.Closing[id] {
				return fmt.Errorf("%w: %s replays to %d, closing stock is %d", ErrLedgerMismatch, id, level[id], ds.Closing[id])
			}
		}
	}
	return nil
}

func verifySales(ds *domain.Dataset, products map[string]*domain.Product, channels map[int]bool, p Params) error {
	days := make(map[time.Time]bool, len(ds.Days))
	for _, d := range ds.Days {
		days[d.Date] = true
	}

	var lastID int64
	for _, s := range ds.Sales {
		if s.ID <= lastID {
			return fmt.Errorf("%w: sale %d out of order after %d", ErrLedgerMismatch, s.ID, lastID)
		}
		lastID = s.ID

		product, ok := products[s.ProductID]
		if !ok {
			return fmt.Errorf("%w: sale %d references product %s", ErrDanglingReference, s.ID, s.ProductID)
		}
		if !channels[s.ChannelID] {
			return fmt.Errorf("%w: sale %d references channel %d", ErrDanglingReference, s.ID, s.ChannelID)
		}
		if !days[s.Date] {
			return fmt.Errorf("%w: sale %d dated %s outside calendar", ErrDanglingReference, s.ID, s.Date.Format(domain.DateLayout))
		}
		if s.Quantity < p.MinQuantity || s.Quantity > p.MaxQuantity {
			return fmt.Errorf("%w: sale %d quantity %d outside [%d,%d]", ErrIllegalSale, s.ID, s.Quantity, p.MinQuantity, p.MaxQuantity)
		}
		if !s.UnitPrice.Equal(product.Price) || !s.UnitCost.Equal(product.Cost) {
			return fmt.Errorf("%w: sale %d prices differ from product %s", ErrIllegalSale, s.ID, s.ProductID)
		}
		if !s.Total.Equal(LineTotal(s.UnitPrice, s.Quantity)) {
			return fmt.Errorf("%w: sale %d total %s != %d x %s", ErrIllegalSale, s.ID, s.Total, s.Quantity, s.UnitPrice)
		}
	}
	return nil
}

// replayLedger walks the movements day by day, checking each entry against the running
// stock and the end-of-day reorder rule. It returns the final stock per product.
func replayLedger(ds *domain.Dataset, products map[string]*domain.Product, p Params) (map[string]int, error) {
	level := make(map[string]int, len(products))
	opened := make(map[string]bool, len(products))
	movements := ds.Movements

	var (
		lastID  int64
		next    int
		saleIdx int
	)
	apply := func(m domain.Movement, reordered map[string]bool) error {
		if m.ID <= lastID {
			return fmt.Errorf("%w: movement %d out of order after %d", ErrLedgerMismatch, m.ID, lastID)
		}
		lastID = m.ID
		if _, ok := products[m.ProductID]; !ok {
			return fmt.Errorf("%w: movement %d references product %s", ErrDanglingReference, m.ID, m.ProductID)
		}

		before := level[m.ProductID]
		switch m.Kind {
		case domain.MovementInitial:
			if reordered != nil || opened[m.ProductID] || m.Quantity <= 0 {
				return fmt.Errorf("%w: unexpected opening movement %d for %s", ErrLedgerMismatch, m.ID, m.ProductID)
			}
			opened[m.ProductID] = true
		case domain.MovementSale:
			if m.Quantity <= 0 || before < m.Quantity {
				return fmt.Errorf("%w: movement %d sells %d of %s with %d in stock", ErrIllegalSale, m.ID, m.Quantity, m.ProductID, before)
			}
			if saleIdx >= len(ds.Sales) {
				return fmt.Errorf("%w: movement %d has no matching sale", ErrLedgerMismatch, m.ID)
			}
			s := ds.Sales[saleIdx]
			if s.ProductID != m.ProductID || s.Quantity != m.Quantity || !s.Date.Equal(m.Date) {
				return fmt.Errorf("%w: movement %d does not match sale %d", ErrLedgerMismatch, m.ID, s.ID)
			}
			saleIdx++
		case domain.MovementPurchase:
			if reordered == nil || reordered[m.ProductID] || before >= p.ReorderThreshold || m.Quantity != p.ReorderQuantity {
				return fmt.Errorf("%w: movement %d restocks %s at level %d", ErrReorderRule, m.ID, m.ProductID, before)
			}
			reordered[m.ProductID] = true
		default:
			return fmt.Errorf("%w: movement %d has unknown kind %d", ErrLedgerMismatch, m.ID, m.Kind)
		}

		level[m.ProductID] = before + m.Signed()
		if level[m.ProductID] < 0 {
			return fmt.Errorf("%w: %s at %d after movement %d", ErrNegativeStock, m.ProductID, level[m.ProductID], m.ID)
		}
		return nil
	}

	var first time.Time
	if len(ds.Days) > 0 {
		first = ds.Days[0].Date
	}
	for next < len(movements) && (len(ds.Days) == 0 || movements[next].Date.Before(first)) {
		if err := apply(movements[next], nil); err != nil {
			return nil, err
		}
		next++
	}

	for _, day := range ds.Days {
		reordered := make(map[string]bool)
		for next < len(movements) && movements[next].Date.Equal(day.Date) {
			if err := apply(movements[next], reordered); err != nil {
				return nil, err
			}
			next++
		}
		for id := range products {
			if level[id] < p.ReorderThreshold && !reordered[id] {
				return nil, fmt.Errorf("%w: %s closed %s at %d without a reorder", ErrReorderRule, id, day.Date.Format(domain.DateLayout), level[id])
			}
		}
	}

	if next < len(movements) {
		m := movements[next]
		return nil, fmt.Errorf("%w: movement %d dated %s outside calendar", ErrDanglingReference, m.ID, m.Date.Format(domain.DateLayout))
	}
	if saleIdx != len(ds.Sales) {
		return nil, fmt.Errorf("%w: %d sales without a depletion movement", ErrLedgerMismatch, len(ds.Sales)-saleIdx)
	}
	return level, nil
}
