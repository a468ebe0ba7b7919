package simulation

// Params are the tunable constants of the simulation.
type Params struct {
	InitialStockMin  int
	InitialStockMax  int
	ReorderThreshold int // reorder fires when stock is strictly below this
	ReorderQuantity  int
	SaleProbability  float64
	MinQuantity      int
	MaxQuantity      int
}

// DefaultParams returns the constants the published datasets are generated with.
func DefaultParams() Params {
	return Params{
		InitialStockMin:  20,
		InitialStockMax:  100,
		ReorderThreshold: 15,
		ReorderQuantity:  50,
		SaleProbability:  0.3,
		MinQuantity:      1,
		MaxQuantity:      5,
	}
}
