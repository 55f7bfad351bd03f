package spread

import (
	"math"

	"pipeworks/server/internal/grid"
	"pipeworks/server/internal/ledger"
)

// Resolver returns the storage reachable one step in the given direction, or
// nil when nothing there can participate.
type Resolver func(dir grid.Direction) ledger.Storage

// Spread distributes the source's fluid across its neighbors inside a single
// transaction. With equalSplit each accepting neighbor is offered an equal
// share of the extracted amount; otherwise neighbors are offered everything
// still undelivered, in direction enumeration order. Whatever no neighbor
// accepted is returned to the source before the commit, so the total amount
// of fluid is conserved exactly.
//
// onStateChanged fires after the commit, and only when the source's amount
// actually changed.
func Spread(source ledger.Storage, resolve Resolver, equalSplit bool, onStateChanged func()) {
	view, ok := ledger.FirstView(source)
	if !ok {
		return
	}
	resource := view.Resource()
	if resource.IsBlank() || view.Amount() == 0 {
		return
	}

	neighbors := make([]ledger.Storage, 0, len(grid.Directions))
	for _, dir := range grid.Directions {
		neighbor := resolve(dir)
		if neighbor == nil || !neighbor.SupportsInsertion() {
			continue
		}
		nview, ok := ledger.FirstView(neighbor)
		if !ok || nview.Amount() >= nview.Capacity() {
			continue
		}
		neighbors = append(neighbors, neighbor)
	}
	if len(neighbors) == 0 {
		return
	}

	tx := ledger.OpenOuter()
	defer tx.Close()

	before := view.Amount()
	extracted := source.Extract(resource, math.MaxInt64, tx)

	var totalInserted int64
	for _, neighbor := range neighbors {
		offer := extracted - totalInserted
		if equalSplit {
			offer = extracted / int64(len(neighbors))
		}
		if offer <= 0 {
			break
		}
		insertable := ledger.SimulateInsertion(neighbor, resource, offer, tx)
		totalInserted += neighbor.Insert(resource, insertable, tx)
	}

	if totalInserted < extracted {
		source.Insert(resource, extracted-totalInserted, tx)
	}

	tx.Commit()

	if onStateChanged != nil && view.Amount() != before {
		onStateChanged()
	}
}
