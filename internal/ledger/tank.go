package ledger

import "pipeworks/server/internal/fluid"

// Tank is a single-variant storage: it holds at most one fluid kind at a
// time, up to a fixed capacity. Draining to zero resets the resource to
// Blank so the next insert can switch kinds.
type Tank struct {
	resource fluid.Variant
	amount   int64
	capacity int64
}

type tankSnapshot struct {
	resource fluid.Variant
	amount   int64
}

// NewTank constructs an empty tank with the given capacity in droplets.
func NewTank(capacity int64) *Tank {
	if capacity < 0 {
		capacity = 0
	}
	return &Tank{capacity: capacity}
}

func (t *Tank) Resource() fluid.Variant { return t.resource }
func (t *Tank) Amount() int64           { return t.amount }
func (t *Tank) Capacity() int64         { return t.capacity }

func (t *Tank) SupportsInsertion() bool  { return true }
func (t *Tank) SupportsExtraction() bool { return true }

// Views exposes the tank itself as its only view.
func (t *Tank) Views() []View {
	return []View{t}
}

func (t *Tank) Insert(resource fluid.Variant, maxAmount int64, tx *Transaction) int64 {
	if resource.IsBlank() || maxAmount <= 0 {
		return 0
	}
	if !t.resource.IsBlank() && !t.resource.Equal(resource) {
		return 0
	}
	inserted := t.capacity - t.amount
	if maxAmount < inserted {
		inserted = maxAmount
	}
	if inserted <= 0 {
		return 0
	}
	tx.Join(t)
	t.resource = resource
	t.amount += inserted
	return inserted
}

func (t *Tank) Extract(resource fluid.Variant, maxAmount int64, tx *Transaction) int64 {
	if resource.IsBlank() || maxAmount <= 0 {
		return 0
	}
	if t.amount == 0 || !t.resource.Equal(resource) {
		return 0
	}
	extracted := t.amount
	if maxAmount < extracted {
		extracted = maxAmount
	}
	tx.Join(t)
	t.amount -= extracted
	if t.amount == 0 {
		t.resource = fluid.Blank
	}
	return extracted
}

// CreateSnapshot satisfies ledger.Participant.
func (t *Tank) CreateSnapshot() any {
	return tankSnapshot{resource: t.resource, amount: t.amount}
}

// ReadSnapshot satisfies ledger.Participant.
func (t *Tank) ReadSnapshot(snapshot any) {
	s, ok := snapshot.(tankSnapshot)
	if !ok {
		return
	}
	t.resource = s.resource
	t.amount = s.amount
}

// Fill sets the tank contents directly, clamping to capacity. Used for world
// seeding and admin commands; gameplay mutation goes through Insert/Extract.
func (t *Tank) Fill(resource fluid.Variant, amount int64) {
	if resource.IsBlank() || amount <= 0 {
		t.resource = fluid.Blank
		t.amount = 0
		return
	}
	if amount > t.capacity {
		amount = t.capacity
	}
	t.resource = resource
	t.amount = amount
}
