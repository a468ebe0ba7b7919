package simulation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/andresuchdata/shopgen/internal/simulation"
)

func Test_Verify_DetectsTampering(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(ds *domain.Dataset)
		want   error
	}{
		{
			name: "oversized_sale_depletion",
			tamper: func(ds *domain.Dataset) {
				for i, m := range ds.Movements {
					if m.Kind == domain.MovementSale {
						ds.Movements[i].Quantity = 10_000
						return
					}
				}
			},
			want: simulation.ErrIllegalSale,
		},
		{
			name: "unknown_channel",
			tamper: func(ds *domain.Dataset) {
				ds.Sales[0].ChannelID = 42
			},
			want: simulation.ErrDanglingReference,
		},
		{
			name: "unknown_product_on_movement",
			tamper: func(ds *domain.Dataset) {
				ds.Movements[0].ProductID = "SKU-9999"
			},
			want: simulation.ErrDanglingReference,
		},
		{
			name: "closing_stock_disagrees",
			tamper: func(ds *domain.Dataset) {
				ds.Closing[ds.Products[0].ID]++
			},
			want: simulation.ErrLedgerMismatch,
		},
		{
			name: "replenishment_removed",
			tamper: func(ds *domain.Dataset) {
				for i, m := range ds.Movements {
					if m.Kind == domain.MovementPurchase {
						ds.Movements = append(ds.Movements[:i:i], ds.Movements[i+1:]...)
						return
					}
				}
			},
			want: simulation.ErrReorderRule,
		},
		{
			name: "sale_total_rewritten",
			tamper: func(ds *domain.Dataset) {
				ds.Sales[0].Total = ds.Sales[0].Total.Add(ds.Sales[0].UnitCost)
			},
			want: simulation.ErrIllegalSale,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ds, _ := simulateCatalog(t, 11, 20, 180, nil)
			require.NoError(t, simulation.Verify(ds, simulation.DefaultParams()))

			tc.tamper(ds)

			err := simulation.Verify(ds, simulation.DefaultParams())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func Test_Verify_AcceptsEmptyWindow(t *testing.T) {
	ds, _ := simulateCatalog(t, 1, 5, 0, nil)

	assert.Empty(t, ds.Sales)
	assert.Len(t, ds.Movements, 5)
	assert.NoError(t, simulation.Verify(ds, simulation.DefaultParams()))
}

func Test_Verify_BelowThresholdAtDayCloseWithoutReorder(t *testing.T) {
	in := fixture(t, 2)
	ds := &domain.Dataset{
		Products: in.Products,
		Channels: in.Channels,
		Days:     in.Days,
		Movements: []domain.Movement{{
			ID:        1,
			Date:      windowStart.AddDate(0, 0, -1),
			ProductID: in.Products[0].ID,
			Kind:      domain.MovementInitial,
			Quantity:  10,
		}},
	}

	err := simulation.Verify(ds, simulation.DefaultParams())

	require.Error(t, err)
	assert.ErrorIs(t, err, simulation.ErrReorderRule)
	assert.Contains(t, err.Error(), "without a reorder")
}

func Test_Verify_AcceptsEmptyOpeningShelf(t *testing.T) {
	in := fixture(t, 3)
	res := simulation.NewEngine(&scriptedSource{}, simulation.DefaultParams()).
		SimulateFrom(in, map[string]int{"SKU-0001": 0})

	ds := &domain.Dataset{
		Products:  in.Products,
		Channels:  in.Channels,
		Days:      in.Days,
		Sales:     res.Sales,
		Movements: res.Movements,
		Closing:   res.Closing,
	}
	assert.NoError(t, simulation.Verify(ds, simulation.DefaultParams()))

	require.Len(t, res.Movements, 1)
	restock := res.Movements[0]
	restock.ID = 2
	ds.Movements = []domain.Movement{
		{ID: 1, Date: windowStart.AddDate(0, 0, -1), ProductID: "SKU-0001", Kind: domain.MovementInitial},
		restock,
	}
	assert.ErrorIs(t, simulation.Verify(ds, simulation.DefaultParams()), simulation.ErrLedgerMismatch)
}
