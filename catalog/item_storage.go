package catalog

import (
	"pipeworks/server/internal/fluid"
	"pipeworks/server/internal/ledger"
	"pipeworks/server/internal/state"
)

// containerStorage exposes one container item's fluid content through the
// ledger capability surface. Containers move fluid in whole buckets only: a
// filled bucket yields exactly one Bucket, an empty bucket accepts exactly
// one Bucket of a cataloged fluid.
type containerStorage struct {
	content fluid.Variant
	catalog *Catalog
}

// ItemStorage resolves the fluid capability of an item stack. ok is false
// when the item is not a recognized fluid container; callers treat that as
// "no capability", not an error.
func (c *Catalog) ItemStorage(stack state.ItemStack) (ledger.Storage, bool) {
	if stack.IsEmpty() {
		return nil, false
	}
	if def, ok := c.byBucket[stack.Type]; ok {
		return &containerStorage{content: fluid.Of(def.ID), catalog: c}, true
	}
	if stack.Type == state.ItemTypeBucket {
		return &containerStorage{catalog: c}, true
	}
	return nil, false
}

// Content returns the container's current fluid. Exposed for callers that
// hold the concrete type after a transfer.
func (s *containerStorage) Content() fluid.Variant {
	return s.content
}

func (s *containerStorage) SupportsInsertion() bool {
	return s.content.IsBlank()
}

func (s *containerStorage) SupportsExtraction() bool {
	return !s.content.IsBlank()
}

func (s *containerStorage) Insert(resource fluid.Variant, maxAmount int64, tx *ledger.Transaction) int64 {
	if resource.IsBlank() || maxAmount < fluid.Bucket {
		return 0
	}
	if !s.content.IsBlank() {
		return 0
	}
	if _, ok := s.catalog.Definition(resource.ID); !ok {
		return 0
	}
	tx.Join(s)
	s.content = fluid.Of(resource.ID)
	return fluid.Bucket
}

func (s *containerStorage) Extract(resource fluid.Variant, maxAmount int64, tx *ledger.Transaction) int64 {
	if resource.IsBlank() || maxAmount < fluid.Bucket {
		return 0
	}
	if s.content.IsBlank() || !s.content.SameFluid(resource) {
		return 0
	}
	tx.Join(s)
	s.content = fluid.Blank
	return fluid.Bucket
}

func (s *containerStorage) Views() []ledger.View {
	return []ledger.View{(*containerView)(s)}
}

// CreateSnapshot satisfies ledger.Participant.
func (s *containerStorage) CreateSnapshot() any {
	return s.content
}

// ReadSnapshot satisfies ledger.Participant.
func (s *containerStorage) ReadSnapshot(snapshot any) {
	if content, ok := snapshot.(fluid.Variant); ok {
		s.content = content
	}
}

type containerView containerStorage

func (v *containerView) Resource() fluid.Variant {
	return v.content
}

func (v *containerView) Amount() int64 {
	if v.content.IsBlank() {
		return 0
	}
	return fluid.Bucket
}

func (v *containerView) Capacity() int64 {
	return fluid.Bucket
}
