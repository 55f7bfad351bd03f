package transfer

import (
	"math"

	"pipeworks/server/catalog"
	"pipeworks/server/internal/fluid"
	"pipeworks/server/internal/ledger"
	"pipeworks/server/internal/state"
)

// IsTankEmpty reports whether the tank holds no fluid.
func IsTankEmpty(tank *ledger.Tank) bool {
	return tank.Amount() == 0
}

// IsStorageEmpty reports whether the storage's primary view is empty. A
// storage with no views counts as empty.
func IsStorageEmpty(storage ledger.Storage) bool {
	view, ok := ledger.FirstView(storage)
	if !ok {
		return true
	}
	return view.Amount() == 0
}

// IsEmptyBucket reports whether the slot holds empty buckets.
func IsEmptyBucket(inv *state.Inventory, slot int) bool {
	return inv.GetStack(slot).Type == state.ItemTypeBucket
}

// SameFluidInTank reports whether the slot's container holds the same fluid
// kind as the tank. Metadata is ignored; two blanks match.
func SameFluidInTank(c *catalog.Catalog, inv *state.Inventory, slot int, tank *ledger.Tank) bool {
	slotStorage, ok := c.ItemStorage(inv.GetStack(slot))
	if !ok {
		return false
	}
	view, ok := ledger.FirstView(slotStorage)
	if !ok {
		return false
	}
	return tank.Resource().SameFluid(view.Resource())
}

// SameFluidInStorage is the multi-view form of SameFluidInTank: it matches
// when any view of the storage holds the slot container's fluid kind.
func SameFluidInStorage(c *catalog.Catalog, inv *state.Inventory, slot int, storage ledger.Storage) bool {
	slotStorage, ok := c.ItemStorage(inv.GetStack(slot))
	if !ok {
		return false
	}
	slotView, ok := ledger.FirstView(slotStorage)
	if !ok {
		return false
	}
	for _, view := range storage.Views() {
		if view.Resource().SameFluid(slotView.Resource()) {
			return true
		}
	}
	return false
}

// IsTankFull reports whether the tank cannot accept any more of its current
// fluid, judged against the fluid held by the given slot. A slot/tank fluid
// mismatch counts as full.
func IsTankFull(c *catalog.Catalog, inv *state.Inventory, slot int, tank *ledger.Tank) bool {
	if !SameFluidInTank(c, inv, slot, tank) {
		return true
	}
	tx := ledger.OpenOuter()
	defer tx.Close()
	return ledger.SimulateInsertion(tank, tank.Resource(), math.MaxInt64, tx) == 0
}

// IsStorageFull reports whether every view of the storage is at capacity.
// Every view is probed; the result is the conjunction across views.
func IsStorageFull(storage ledger.Storage) bool {
	full := true
	for _, view := range storage.Views() {
		tx := ledger.OpenOuter()
		insertable := ledger.SimulateInsertion(storage, view.Resource(), math.MaxInt64, tx)
		tx.Close()
		full = full && insertable == 0
	}
	return full
}

// HasCapacityForBucket reports whether the tank can accept at least one full
// bucket of the fluid held by the given slot.
func HasCapacityForBucket(c *catalog.Catalog, inv *state.Inventory, slot int, tank *ledger.Tank) bool {
	if !SameFluidInTank(c, inv, slot, tank) {
		return false
	}
	tx := ledger.OpenOuter()
	defer tx.Close()
	return ledger.SimulateInsertion(tank, tank.Resource(), math.MaxInt64, tx) >= fluid.Bucket
}

// StorageHasCapacityForBucket reports whether any view of the storage can
// accept a full bucket of its own fluid. Stops at the first view with room.
func StorageHasCapacityForBucket(storage ledger.Storage) bool {
	for _, view := range storage.Views() {
		tx := ledger.OpenOuter()
		insertable := ledger.SimulateInsertion(storage, view.Resource(), math.MaxInt64, tx)
		tx.Close()
		if insertable >= fluid.Bucket {
			return true
		}
	}
	return false
}

// IsOutputReceivable reports whether the output slot can take one more
// container item after a transfer. An empty slot always accepts. When
// acceptEmpty is set, a stack of empty buckets below its limit accepts.
// Items exposing no fluid capability accept unconditionally; the engine
// relies on the inventory's own filtering for those. Otherwise the slot
// accepts only when acceptEmpty is unset, its container holds exactly the
// given variant, and the stack is below its limit.
func IsOutputReceivable(c *catalog.Catalog, inv *state.Inventory, slot int, acceptEmpty bool, variant fluid.Variant) bool {
	stack := inv.GetStack(slot)
	if stack.IsEmpty() {
		return true
	}
	if acceptEmpty && IsEmptyBucket(inv, slot) && stack.Quantity < state.MaxStackFor(stack.Type) {
		return true
	}
	slotStorage, ok := c.ItemStorage(stack)
	if !ok {
		return true
	}
	view, ok := ledger.FirstView(slotStorage)
	if !ok {
		return true
	}
	return !acceptEmpty && view.Resource().Equal(variant) && stack.Quantity < state.MaxStackFor(stack.Type)
}
