package spread

import (
	"testing"

	"pipeworks/server/internal/fluid"
	"pipeworks/server/internal/grid"
	"pipeworks/server/internal/ledger"
)

func neighborResolver(tanks map[grid.Direction]*ledger.Tank) Resolver {
	return func(dir grid.Direction) ledger.Storage {
		tank, ok := tanks[dir]
		if !ok {
			return nil
		}
		return tank
	}
}

func totalFluid(source *ledger.Tank, tanks map[grid.Direction]*ledger.Tank) int64 {
	total := source.Amount()
	for _, tank := range tanks {
		total += tank.Amount()
	}
	return total
}

func TestSpreadEqualSplit(t *testing.T) {
	source := ledger.NewTank(fluid.CapacityDefault)
	source.Fill(fluid.Of("water"), 4*fluid.Bucket)
	neighbors := map[grid.Direction]*ledger.Tank{
		grid.North: ledger.NewTank(fluid.CapacityDefault),
		grid.South: ledger.NewTank(fluid.CapacityDefault),
	}

	Spread(source, neighborResolver(neighbors), true, nil)

	if source.Amount() != 0 {
		t.Fatalf("source kept %d droplets, want 0", source.Amount())
	}
	for dir, tank := range neighbors {
		if tank.Amount() != 2*fluid.Bucket {
			t.Fatalf("%s received %d, want %d", dir, tank.Amount(), 2*fluid.Bucket)
		}
	}
}

func TestSpreadEqualSplitReturnsUndeliveredShare(t *testing.T) {
	source := ledger.NewTank(20 * fluid.Bucket)
	source.Fill(fluid.Of("water"), 10*fluid.Bucket)
	cramped := ledger.NewTank(1 * fluid.Bucket)
	roomy := ledger.NewTank(fluid.CapacityDefault)
	neighbors := map[grid.Direction]*ledger.Tank{
		grid.Down: cramped,
		grid.Up:   roomy,
	}
	before := totalFluid(source, neighbors)

	Spread(source, neighborResolver(neighbors), true, nil)

	if cramped.Amount() != fluid.Bucket {
		t.Fatalf("cramped neighbor holds %d, want %d", cramped.Amount(), fluid.Bucket)
	}
	if roomy.Amount() != 5*fluid.Bucket {
		t.Fatalf("roomy neighbor holds %d, want its equal share %d", roomy.Amount(), 5*fluid.Bucket)
	}
	if source.Amount() != 4*fluid.Bucket {
		t.Fatalf("source holds %d, want the returned remainder %d", source.Amount(), 4*fluid.Bucket)
	}
	if after := totalFluid(source, neighbors); after != before {
		t.Fatalf("fluid not conserved: %d -> %d", before, after)
	}
}

func TestSpreadGreedyFollowsDirectionOrder(t *testing.T) {
	source := ledger.NewTank(20 * fluid.Bucket)
	source.Fill(fluid.Of("lava"), 10*fluid.Bucket)
	first := ledger.NewTank(2 * fluid.Bucket) // down enumerates before up
	second := ledger.NewTank(fluid.CapacityDefault)
	neighbors := map[grid.Direction]*ledger.Tank{
		grid.Down: first,
		grid.Up:   second,
	}
	before := totalFluid(source, neighbors)

	Spread(source, neighborResolver(neighbors), false, nil)

	if first.Amount() != 2*fluid.Bucket {
		t.Fatalf("first neighbor holds %d, want its full capacity %d", first.Amount(), 2*fluid.Bucket)
	}
	if second.Amount() != 8*fluid.Bucket {
		t.Fatalf("second neighbor holds %d, want the remaining %d", second.Amount(), 8*fluid.Bucket)
	}
	if source.Amount() != 0 {
		t.Fatalf("source holds %d, want 0", source.Amount())
	}
	if after := totalFluid(source, neighbors); after != before {
		t.Fatalf("fluid not conserved: %d -> %d", before, after)
	}
}

func TestSpreadGreedyNeverFabricatesFluid(t *testing.T) {
	// Six eager neighbors and a small source: the amount offered must shrink
	// as earlier neighbors accept, so the sum of deliveries equals the
	// extracted amount.
	source := ledger.NewTank(fluid.CapacityDefault)
	source.Fill(fluid.Of("water"), 3*fluid.Bucket)
	neighbors := make(map[grid.Direction]*ledger.Tank, len(grid.Directions))
	for _, dir := range grid.Directions {
		neighbors[dir] = ledger.NewTank(fluid.CapacityDefault)
	}
	before := totalFluid(source, neighbors)

	Spread(source, neighborResolver(neighbors), false, nil)

	if neighbors[grid.Down].Amount() != 3*fluid.Bucket {
		t.Fatalf("first neighbor holds %d, want everything", neighbors[grid.Down].Amount())
	}
	for _, dir := range grid.Directions[1:] {
		if neighbors[dir].Amount() != 0 {
			t.Fatalf("%s received %d, want 0", dir, neighbors[dir].Amount())
		}
	}
	if after := totalFluid(source, neighbors); after != before {
		t.Fatalf("fluid not conserved: %d -> %d", before, after)
	}
}

func TestSpreadSkipsIneligibleNeighbors(t *testing.T) {
	source := ledger.NewTank(fluid.CapacityDefault)
	source.Fill(fluid.Of("water"), 2*fluid.Bucket)

	full := ledger.NewTank(fluid.Bucket)
	full.Fill(fluid.Of("water"), fluid.Bucket)
	open := ledger.NewTank(fluid.CapacityDefault)
	neighbors := map[grid.Direction]*ledger.Tank{
		grid.Down: full,
		grid.East: open,
	}

	Spread(source, neighborResolver(neighbors), true, nil)

	if full.Amount() != fluid.Bucket {
		t.Fatalf("full neighbor changed to %d", full.Amount())
	}
	// The full neighbor is excluded before the split, so the open one gets
	// the whole equal share.
	if open.Amount() != 2*fluid.Bucket {
		t.Fatalf("open neighbor holds %d, want %d", open.Amount(), 2*fluid.Bucket)
	}
}

func TestSpreadNoEligibleNeighborsIsNoop(t *testing.T) {
	source := ledger.NewTank(fluid.CapacityDefault)
	source.Fill(fluid.Of("water"), fluid.Bucket)

	fired := false
	Spread(source, func(grid.Direction) ledger.Storage { return nil }, false, func() { fired = true })

	if source.Amount() != fluid.Bucket {
		t.Fatalf("source changed to %d with no neighbors", source.Amount())
	}
	if fired {
		t.Fatalf("state-change callback fired on a no-op")
	}
}

func TestSpreadEmptySourceIsNoop(t *testing.T) {
	source := ledger.NewTank(fluid.CapacityDefault)
	open := ledger.NewTank(fluid.CapacityDefault)

	fired := false
	Spread(source, neighborResolver(map[grid.Direction]*ledger.Tank{grid.Up: open}), false, func() { fired = true })

	if fired || open.Amount() != 0 {
		t.Fatalf("spread from an empty source moved fluid or fired callback")
	}
}

func TestSpreadCallbackFiresOnlyOnChange(t *testing.T) {
	source := ledger.NewTank(fluid.CapacityDefault)
	source.Fill(fluid.Of("water"), 2*fluid.Bucket)
	open := ledger.NewTank(fluid.CapacityDefault)

	fired := 0
	resolver := neighborResolver(map[grid.Direction]*ledger.Tank{grid.North: open})
	Spread(source, resolver, false, func() { fired++ })
	if fired != 1 {
		t.Fatalf("callback fired %d times after a real move, want 1", fired)
	}

	// Mismatched neighbor: extraction happens but everything is returned.
	blocked := ledger.NewTank(fluid.CapacityDefault)
	blocked.Fill(fluid.Of("lava"), fluid.Bucket)
	source.Fill(fluid.Of("water"), 2*fluid.Bucket)
	fired = 0
	Spread(source, neighborResolver(map[grid.Direction]*ledger.Tank{grid.North: blocked}), false, func() { fired++ })
	if fired != 0 {
		t.Fatalf("callback fired %d times with no net change", fired)
	}
	if source.Amount() != 2*fluid.Bucket {
		t.Fatalf("source lost fluid to a mismatched neighbor: %d", source.Amount())
	}
}
