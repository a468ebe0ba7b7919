package simulation

// Inventory is the per-product stock ledger state of a single run.
type Inventory struct {
	stock map[string]int
}

func newInventory(size int) *Inventory {
	return &Inventory{stock: make(map[string]int, size)}
}

// Level returns the current stock of a product.
func (inv *Inventory) Level(productID string) int {
	return inv.stock[productID]
}

// Snapshot copies the current state.
func (inv *Inventory) Snapshot() map[string]int {
	out := make(map[string]int, len(inv.stock))
	for id, qty := range inv.stock {
		out[id] = qty
	}
	return out
}

func (inv *Inventory) set(productID string, qty int) {
	inv.stock[productID] = qty
}

func (inv *Inventory) add(productID string, delta int) int {
	inv.stock[productID] += delta
	return inv.stock[productID]
}
