package catalog

import (
	"testing"

	"pipeworks/server/internal/fluid"
	"pipeworks/server/internal/ledger"
	"pipeworks/server/internal/state"
)

func TestItemStorageResolution(t *testing.T) {
	c := Default().MustIndex()

	if _, ok := c.ItemStorage(state.ItemStack{}); ok {
		t.Fatalf("empty stack should expose no capability")
	}
	if _, ok := c.ItemStorage(state.ItemStack{Type: "cobblestone", Quantity: 1}); ok {
		t.Fatalf("non-container item should expose no capability")
	}

	storage, ok := c.ItemStorage(state.ItemStack{Type: "water_bucket", Quantity: 1})
	if !ok {
		t.Fatalf("water bucket should expose a capability")
	}
	view, ok := ledger.FirstView(storage)
	if !ok {
		t.Fatalf("container storage has no view")
	}
	if !view.Resource().IsOf("water") || view.Amount() != fluid.Bucket {
		t.Fatalf("filled bucket view = %v / %d", view.Resource(), view.Amount())
	}

	storage, ok = c.ItemStorage(state.ItemStack{Type: state.ItemTypeBucket, Quantity: 1})
	if !ok {
		t.Fatalf("empty bucket should expose a capability")
	}
	view, _ = ledger.FirstView(storage)
	if !view.Resource().IsBlank() || view.Amount() != 0 || view.Capacity() != fluid.Bucket {
		t.Fatalf("empty bucket view = %v / %d / %d", view.Resource(), view.Amount(), view.Capacity())
	}
}

func TestContainerExtractIsAllOrNothing(t *testing.T) {
	c := Default().MustIndex()
	storage, _ := c.ItemStorage(state.ItemStack{Type: "lava_bucket", Quantity: 1})

	tx := ledger.OpenOuter()
	defer tx.Close()

	if moved := storage.Extract(fluid.Of("lava"), fluid.Bucket-1, tx); moved != 0 {
		t.Fatalf("partial extract moved %d, want 0", moved)
	}
	if moved := storage.Extract(fluid.Of("water"), fluid.Bucket, tx); moved != 0 {
		t.Fatalf("wrong-fluid extract moved %d, want 0", moved)
	}
	if moved := storage.Extract(fluid.Of("lava"), fluid.Bucket, tx); moved != fluid.Bucket {
		t.Fatalf("full extract moved %d, want %d", moved, fluid.Bucket)
	}
	// Now empty; a second extract finds nothing.
	if moved := storage.Extract(fluid.Of("lava"), fluid.Bucket, tx); moved != 0 {
		t.Fatalf("extract from emptied container moved %d", moved)
	}
}

func TestContainerInsertIsAllOrNothing(t *testing.T) {
	c := Default().MustIndex()
	storage, _ := c.ItemStorage(state.ItemStack{Type: state.ItemTypeBucket, Quantity: 1})

	tx := ledger.OpenOuter()
	defer tx.Close()

	if moved := storage.Insert(fluid.Of("water"), fluid.Bucket-1, tx); moved != 0 {
		t.Fatalf("partial insert moved %d, want 0", moved)
	}
	if moved := storage.Insert(fluid.Of("milk"), fluid.Bucket, tx); moved != 0 {
		t.Fatalf("uncataloged insert moved %d, want 0", moved)
	}
	if moved := storage.Insert(fluid.Of("water"), fluid.Bucket, tx); moved != fluid.Bucket {
		t.Fatalf("full insert moved %d, want %d", moved, fluid.Bucket)
	}
	if moved := storage.Insert(fluid.Of("water"), fluid.Bucket, tx); moved != 0 {
		t.Fatalf("insert into filled container moved %d", moved)
	}
}

func TestContainerTransactionRollback(t *testing.T) {
	c := Default().MustIndex()
	storage, _ := c.ItemStorage(state.ItemStack{Type: state.ItemTypeBucket, Quantity: 1})

	tx := ledger.OpenOuter()
	storage.Insert(fluid.Of("water"), fluid.Bucket, tx)
	tx.Abort()

	view, _ := ledger.FirstView(storage)
	if !view.Resource().IsBlank() {
		t.Fatalf("abort left content %v in the container", view.Resource())
	}
}
