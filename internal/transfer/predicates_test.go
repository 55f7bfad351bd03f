package transfer

import (
	"testing"

	"pipeworks/server/catalog"
	"pipeworks/server/internal/fluid"
	"pipeworks/server/internal/ledger"
	"pipeworks/server/internal/state"
)

func TestSameFluidInTank(t *testing.T) {
	c := catalog.Default().MustIndex()
	inv := state.NewInventory(1)
	tank := ledger.NewTank(fluid.CapacityDefault)
	tank.Fill(fluid.Of("water"), fluid.Bucket)

	inv.SetStack(0, state.ItemStack{Type: "water_bucket", Quantity: 1})
	if !SameFluidInTank(c, inv, 0, tank) {
		t.Fatalf("water bucket vs water tank should match")
	}

	inv.SetStack(0, state.ItemStack{Type: "lava_bucket", Quantity: 1})
	if SameFluidInTank(c, inv, 0, tank) {
		t.Fatalf("lava bucket vs water tank should not match")
	}

	inv.SetStack(0, state.ItemStack{Type: "cobblestone", Quantity: 1})
	if SameFluidInTank(c, inv, 0, tank) {
		t.Fatalf("a non-container item never matches")
	}

	// Blank matches blank: an empty bucket against an empty tank.
	empty := ledger.NewTank(fluid.CapacityDefault)
	inv.SetStack(0, state.ItemStack{Type: state.ItemTypeBucket, Quantity: 1})
	if !SameFluidInTank(c, inv, 0, empty) {
		t.Fatalf("empty bucket vs empty tank should match")
	}
}

func TestIsTankFull(t *testing.T) {
	c := catalog.Default().MustIndex()
	inv := state.NewInventory(1)
	inv.SetStack(0, state.ItemStack{Type: "water_bucket", Quantity: 1})

	tank := ledger.NewTank(2 * fluid.Bucket)
	tank.Fill(fluid.Of("water"), fluid.Bucket)
	if IsTankFull(c, inv, 0, tank) {
		t.Fatalf("half-full tank reported full")
	}

	tank.Fill(fluid.Of("water"), 2*fluid.Bucket)
	if !IsTankFull(c, inv, 0, tank) {
		t.Fatalf("tank at capacity reported not full")
	}

	// Mismatched fluid counts as full.
	tank.Fill(fluid.Of("lava"), fluid.Bucket)
	if !IsTankFull(c, inv, 0, tank) {
		t.Fatalf("mismatched fluid should count as full")
	}
}

func TestHasCapacityForBucket(t *testing.T) {
	c := catalog.Default().MustIndex()
	inv := state.NewInventory(1)
	inv.SetStack(0, state.ItemStack{Type: "water_bucket", Quantity: 1})

	tank := ledger.NewTank(2 * fluid.Bucket)
	tank.Fill(fluid.Of("water"), fluid.Bucket)
	if !HasCapacityForBucket(c, inv, 0, tank) {
		t.Fatalf("tank with a bucket of room reported no capacity")
	}

	tank.Fill(fluid.Of("water"), 2*fluid.Bucket-fluid.MilliBucket)
	if HasCapacityForBucket(c, inv, 0, tank) {
		t.Fatalf("tank with less than a bucket of room reported capacity")
	}

	tank.Fill(fluid.Of("lava"), fluid.Bucket)
	if HasCapacityForBucket(c, inv, 0, tank) {
		t.Fatalf("mismatched fluid reported capacity")
	}
}

func TestIsOutputReceivable(t *testing.T) {
	c := catalog.Default().MustIndex()
	water := fluid.Of("water")

	cases := []struct {
		name        string
		stack       state.ItemStack
		acceptEmpty bool
		variant     fluid.Variant
		want        bool
	}{
		{"empty slot", state.ItemStack{}, true, fluid.Blank, true},
		{"empty slot strict", state.ItemStack{}, false, water, true},
		{"empty buckets below limit", state.ItemStack{Type: state.ItemTypeBucket, Quantity: 3}, true, fluid.Blank, true},
		{"empty buckets at limit", state.ItemStack{Type: state.ItemTypeBucket, Quantity: state.BucketMaxStack}, true, fluid.Blank, false},
		{"empty buckets without acceptEmpty", state.ItemStack{Type: state.ItemTypeBucket, Quantity: 3}, false, water, false},
		{"no fluid capability", state.ItemStack{Type: "cobblestone", Quantity: 64}, false, water, true},
		{"no fluid capability acceptEmpty", state.ItemStack{Type: "cobblestone", Quantity: 64}, true, fluid.Blank, true},
		{"matching filled bucket", state.ItemStack{Type: "water_bucket", Quantity: 2}, false, water, true},
		{"matching filled bucket at limit", state.ItemStack{Type: "water_bucket", Quantity: state.BucketMaxStack}, false, water, false},
		{"mismatched filled bucket", state.ItemStack{Type: "lava_bucket", Quantity: 1}, false, water, false},
		{"filled bucket with acceptEmpty", state.ItemStack{Type: "water_bucket", Quantity: 1}, true, fluid.Blank, false},
	}
	for _, tc := range cases {
		inv := state.NewInventory(1)
		if !tc.stack.IsEmpty() {
			inv.SetStack(0, tc.stack)
		}
		if got := IsOutputReceivable(c, inv, 0, tc.acceptEmpty, tc.variant); got != tc.want {
			t.Fatalf("%s: IsOutputReceivable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEmptinessPredicates(t *testing.T) {
	tank := ledger.NewTank(fluid.CapacityDefault)
	if !IsTankEmpty(tank) || !IsStorageEmpty(tank) {
		t.Fatalf("fresh tank should be empty")
	}
	tank.Fill(fluid.Of("water"), fluid.MilliBucket)
	if IsTankEmpty(tank) || IsStorageEmpty(tank) {
		t.Fatalf("tank with fluid reported empty")
	}

	inv := state.NewInventory(1)
	inv.SetStack(0, state.ItemStack{Type: state.ItemTypeBucket, Quantity: 1})
	if !IsEmptyBucket(inv, 0) {
		t.Fatalf("bucket slot not recognized")
	}
	inv.SetStack(0, state.ItemStack{Type: "water_bucket", Quantity: 1})
	if IsEmptyBucket(inv, 0) {
		t.Fatalf("filled bucket misread as empty bucket")
	}
}

func TestStorageWidePredicates(t *testing.T) {
	c := catalog.Default().MustIndex()

	// A filled container is a single-view storage at capacity.
	full, _ := c.ItemStorage(state.ItemStack{Type: "water_bucket", Quantity: 1})
	if !IsStorageFull(full) {
		t.Fatalf("filled container reported not full")
	}
	if StorageHasCapacityForBucket(full) {
		t.Fatalf("filled container reported bucket capacity")
	}

	// An empty bucket has exactly one bucket of room for its blank view's
	// fluid; blank inserts move nothing, so the probe reports no room.
	empty, _ := c.ItemStorage(state.ItemStack{Type: state.ItemTypeBucket, Quantity: 1})
	if !IsStorageFull(empty) {
		t.Fatalf("blank-view probe should report no insertable amount")
	}

	tank := ledger.NewTank(fluid.CapacityDefault)
	tank.Fill(fluid.Of("lava"), fluid.Bucket)
	if IsStorageFull(tank) {
		t.Fatalf("tank with room reported full")
	}
	if !StorageHasCapacityForBucket(tank) {
		t.Fatalf("tank with room reported no bucket capacity")
	}
}
