package ledger

import "pipeworks/server/internal/fluid"

// View is a read-only window over one slot of a storage.
type View interface {
	Resource() fluid.Variant
	Amount() int64
	Capacity() int64
}

// Storage is the capability surface for anything that holds fluid: tanks,
// container items, machine buffers. All mutation happens inside a
// transaction; the returned amounts are what actually moved.
type Storage interface {
	SupportsInsertion() bool
	SupportsExtraction() bool

	// Insert moves up to maxAmount droplets of resource into the storage
	// and returns the amount accepted. Zero means nothing fit.
	Insert(resource fluid.Variant, maxAmount int64, tx *Transaction) int64

	// Extract moves up to maxAmount droplets of resource out of the
	// storage and returns the amount removed.
	Extract(resource fluid.Variant, maxAmount int64, tx *Transaction) int64

	// Views lists the storage's slots in a stable order.
	Views() []View
}

// FirstView returns the storage's primary view, or ok=false when the storage
// exposes no slots.
func FirstView(storage Storage) (View, bool) {
	views := storage.Views()
	if len(views) == 0 {
		return nil, false
	}
	return views[0], true
}

// SimulateInsertion probes how much of resource the storage would accept by
// inserting inside a nested transaction that is always aborted. The outer
// transaction is left untouched, so probing is idempotent.
func SimulateInsertion(storage Storage, resource fluid.Variant, maxAmount int64, outer *Transaction) int64 {
	nested := outer.OpenNested()
	defer nested.Close()
	return storage.Insert(resource, maxAmount, nested)
}
