package transfer

import (
	"pipeworks/server/catalog"
	"pipeworks/server/internal/fluid"
	"pipeworks/server/internal/ledger"
	"pipeworks/server/internal/state"
)

// Sounds receives the audible cues emitted when a bucket transfer commits.
type Sounds interface {
	PlaySound(id catalog.SoundID)
}

// SoundsFunc adapts a function to the Sounds interface.
type SoundsFunc func(id catalog.SoundID)

func (f SoundsFunc) PlaySound(id catalog.SoundID) {
	if f == nil {
		return
	}
	f(id)
}

// Deps bundles the collaborators the transfer operations need.
type Deps struct {
	Catalog *catalog.Catalog
	Sounds  Sounds
}

func (d Deps) playSound(id catalog.SoundID) {
	if d.Sounds == nil || id == "" {
		return
	}
	d.Sounds.PlaySound(id)
}

// HandleTankTransfer attempts a bucket-sized move between the inventory
// slots and the tank: slot into tank first, then tank into slot. The first
// direction that succeeds wins. Returns false when nothing moved.
func HandleTankTransfer(deps Deps, tank *ledger.Tank, inputInv, outputInv *state.Inventory, inputSlot, outputSlot int) bool {
	if TransferToTank(deps, tank, inputInv, outputInv, inputSlot, outputSlot) {
		return true
	}
	return TransferFromTank(deps, tank, inputInv, outputInv, inputSlot, outputSlot)
}

// TransferToTank moves exactly one bucket of fluid from the input slot's
// container into the tank. On success the consumed container becomes an
// empty bucket in the output slot. The move is all-or-nothing: unless the
// container gives up a full bucket and the tank accepts a full bucket, the
// transaction aborts and false is returned.
func TransferToTank(deps Deps, tank *ledger.Tank, inputInv, outputInv *state.Inventory, inputSlot, outputSlot int) bool {
	if !IsOutputReceivable(deps.Catalog, outputInv, outputSlot, true, fluid.Blank) {
		return false
	}

	slotStorage, ok := deps.Catalog.ItemStorage(inputInv.GetStack(inputSlot))
	if !ok {
		return false
	}
	view, ok := ledger.FirstView(slotStorage)
	if !ok {
		return false
	}
	resource := view.Resource()
	if resource.IsBlank() {
		return false
	}

	tx := ledger.OpenOuter()
	defer tx.Close()

	fromSlot := slotStorage.Extract(resource, fluid.Bucket, tx)
	intoTank := tank.Insert(resource, fluid.Bucket, tx)
	if fromSlot != intoTank {
		return false
	}
	tx.Commit()

	deps.playSound(deps.Catalog.EmptySound(resource.ID))
	inputInv.RemoveStack(inputSlot, 1)
	current := outputInv.GetStack(outputSlot)
	outputInv.SetStack(outputSlot, state.ItemStack{Type: state.ItemTypeBucket, Quantity: current.Quantity + 1})
	inputInv.MarkDirty()
	outputInv.MarkDirty()
	return true
}

// TransferFromTank moves exactly one bucket of fluid from the tank into the
// input slot's container. On success the consumed empty bucket becomes the
// fluid's filled bucket item in the output slot. Like TransferToTank the
// move commits only when both sides agree on a full bucket, so a tank
// holding less than one bucket moves nothing.
func TransferFromTank(deps Deps, tank *ledger.Tank, inputInv, outputInv *state.Inventory, inputSlot, outputSlot int) bool {
	resource := tank.Resource()
	if !IsOutputReceivable(deps.Catalog, outputInv, outputSlot, false, resource) {
		return false
	}
	if resource.IsBlank() {
		return false
	}
	def, ok := deps.Catalog.Definition(resource.ID)
	if !ok {
		return false
	}

	slotStorage, ok := deps.Catalog.ItemStorage(inputInv.GetStack(inputSlot))
	if !ok {
		return false
	}

	tx := ledger.OpenOuter()
	defer tx.Close()

	intoSlot := slotStorage.Insert(resource, fluid.Bucket, tx)
	fromTank := tank.Extract(resource, fluid.Bucket, tx)
	if intoSlot != fromTank {
		return false
	}
	tx.Commit()

	deps.playSound(def.FillSound)
	inputInv.RemoveStack(inputSlot, 1)
	current := outputInv.GetStack(outputSlot)
	outputInv.SetStack(outputSlot, state.ItemStack{Type: def.BucketItem, Quantity: current.Quantity + 1})
	inputInv.MarkDirty()
	outputInv.MarkDirty()
	return true
}
