package state

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotOutOfRange signals a slot index outside the inventory.
	ErrSlotOutOfRange = errors.New("state: slot out of range")
	// ErrInventoryFull signals that no slot can take the stack.
	ErrInventoryFull = errors.New("state: inventory full")
)

// Inventory is a fixed-size indexed container of item stacks. Mutations
// never leave a zero-quantity stack behind. The dirty callback, when set,
// fires on MarkDirty so owners can stage patches.
type Inventory struct {
	slots []ItemStack
	dirty func()
}

// NewInventory constructs an inventory with the given slot count.
func NewInventory(size int) *Inventory {
	if size < 0 {
		size = 0
	}
	return &Inventory{slots: make([]ItemStack, size)}
}

// OnDirty registers the callback invoked by MarkDirty.
func (inv *Inventory) OnDirty(fn func()) {
	inv.dirty = fn
}

// Size returns the slot count.
func (inv *Inventory) Size() int {
	if inv == nil {
		return 0
	}
	return len(inv.slots)
}

// GetStack returns the stack at slot, or an empty stack when the slot is out
// of range.
func (inv *Inventory) GetStack(slot int) ItemStack {
	if inv == nil || slot < 0 || slot >= len(inv.slots) {
		return ItemStack{}
	}
	return inv.slots[slot]
}

// SetStack replaces the stack at slot. A non-positive quantity clears it.
func (inv *Inventory) SetStack(slot int, stack ItemStack) error {
	if inv == nil || slot < 0 || slot >= len(inv.slots) {
		return ErrSlotOutOfRange
	}
	if stack.IsEmpty() {
		stack = ItemStack{}
	}
	inv.slots[slot] = stack
	return nil
}

// RemoveStack removes up to quantity items from slot and returns what was
// removed.
func (inv *Inventory) RemoveStack(slot, quantity int) ItemStack {
	if inv == nil || slot < 0 || slot >= len(inv.slots) || quantity <= 0 {
		return ItemStack{}
	}
	current := inv.slots[slot]
	if current.IsEmpty() {
		return ItemStack{}
	}
	if quantity > current.Quantity {
		quantity = current.Quantity
	}
	current.Quantity -= quantity
	if current.Quantity == 0 {
		inv.slots[slot] = ItemStack{}
	} else {
		inv.slots[slot] = current
	}
	return ItemStack{Type: current.Type, Quantity: quantity}
}

// AddStack merges the stack into an existing slot of the same type when the
// combined quantity stays within the stack limit, otherwise takes the first
// empty slot. Returns the slot used.
func (inv *Inventory) AddStack(stack ItemStack) (int, error) {
	if inv == nil {
		return 0, ErrInventoryFull
	}
	if stack.IsEmpty() {
		return 0, fmt.Errorf("state: cannot add an empty stack")
	}
	limit := MaxStackFor(stack.Type)
	if stack.Quantity > limit {
		return 0, fmt.Errorf("state: stack of %d %s exceeds limit %d", stack.Quantity, stack.Type, limit)
	}
	for i, existing := range inv.slots {
		if existing.Type == stack.Type && existing.Quantity+stack.Quantity <= limit {
			inv.slots[i].Quantity += stack.Quantity
			return i, nil
		}
	}
	for i, existing := range inv.slots {
		if existing.IsEmpty() {
			inv.slots[i] = stack
			return i, nil
		}
	}
	return 0, ErrInventoryFull
}

// Clone returns a deep copy without the dirty callback.
func (inv *Inventory) Clone() *Inventory {
	if inv == nil {
		return nil
	}
	cloned := &Inventory{slots: make([]ItemStack, len(inv.slots))}
	copy(cloned.slots, inv.slots)
	return cloned
}

// Snapshot returns a copy of the slots for serialization.
func (inv *Inventory) Snapshot() []ItemStack {
	if inv == nil || len(inv.slots) == 0 {
		return nil
	}
	slots := make([]ItemStack, len(inv.slots))
	copy(slots, inv.slots)
	return slots
}

// DrainAll empties every slot and returns the non-empty stacks in slot
// order.
func (inv *Inventory) DrainAll() []ItemStack {
	if inv == nil {
		return nil
	}
	drained := make([]ItemStack, 0, len(inv.slots))
	for i, stack := range inv.slots {
		if stack.IsEmpty() {
			continue
		}
		drained = append(drained, stack)
		inv.slots[i] = ItemStack{}
	}
	return drained
}

// MarkDirty signals the owner that the contents changed.
func (inv *Inventory) MarkDirty() {
	if inv == nil || inv.dirty == nil {
		return
	}
	inv.dirty()
}
