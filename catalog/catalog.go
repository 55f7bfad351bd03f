package catalog

import (
	"errors"
	"fmt"
	"strings"

	"pipeworks/server/internal/fluid"
	"pipeworks/server/internal/state"
)

// SoundID names a client-side sound cue.
type SoundID string

var (
	errEmptyFluidID     = errors.New("fluid id must not be empty")
	errEmptyDisplayName = errors.New("display name must not be empty")
	errEmptyBucketItem  = errors.New("bucket item must not be empty")
	errReservedBucket   = errors.New("bucket item must not be the empty bucket")
)

// Definition binds a fluid kind to its display metadata and the container
// item that carries it.
type Definition struct {
	ID          fluid.ID       `json:"id" jsonschema:"required"`
	DisplayName string         `json:"displayName" jsonschema:"required"`
	BucketItem  state.ItemType `json:"bucketItem" jsonschema:"required"`
	FillSound   SoundID        `json:"fillSound,omitempty"`
	EmptySound  SoundID        `json:"emptySound,omitempty"`
}

// Registry is a collection of fluid definitions. Callers should Validate
// before use.
type Registry []Definition

// Document is the designer-facing file layout exported by the schema tool.
type Document struct {
	Fluids Registry `json:"fluids"`
}

// Validate ensures the registry contains unique, structurally valid
// definitions.
func (r Registry) Validate() error {
	seenFluids := make(map[fluid.ID]struct{}, len(r))
	seenBuckets := make(map[state.ItemType]struct{}, len(r))
	for _, def := range r {
		if err := def.validate(); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		if _, exists := seenFluids[def.ID]; exists {
			return fmt.Errorf("catalog: duplicate fluid id %q", def.ID)
		}
		seenFluids[def.ID] = struct{}{}
		if _, exists := seenBuckets[def.BucketItem]; exists {
			return fmt.Errorf("catalog: duplicate bucket item %q", def.BucketItem)
		}
		seenBuckets[def.BucketItem] = struct{}{}
	}
	return nil
}

func (d Definition) validate() error {
	if strings.TrimSpace(string(d.ID)) == "" {
		return errEmptyFluidID
	}
	if strings.TrimSpace(d.DisplayName) == "" {
		return fmt.Errorf("%q: %w", d.ID, errEmptyDisplayName)
	}
	if strings.TrimSpace(string(d.BucketItem)) == "" {
		return fmt.Errorf("%q: %w", d.ID, errEmptyBucketItem)
	}
	if d.BucketItem == state.ItemTypeBucket {
		return fmt.Errorf("%q: %w", d.ID, errReservedBucket)
	}
	return nil
}

// Catalog is the validated lookup view of a registry.
type Catalog struct {
	byFluid  map[fluid.ID]Definition
	byBucket map[state.ItemType]Definition
}

// Index materialises the catalog after validation and registers each bucket
// item's stack definition.
func (r Registry) Index() (*Catalog, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	c := &Catalog{
		byFluid:  make(map[fluid.ID]Definition, len(r)),
		byBucket: make(map[state.ItemType]Definition, len(r)),
	}
	for _, def := range r {
		c.byFluid[def.ID] = def
		c.byBucket[def.BucketItem] = def
		state.RegisterItemDefinition(state.ItemDefinition{
			Type:        def.BucketItem,
			DisplayName: def.DisplayName + " Bucket",
			MaxStack:    state.BucketMaxStack,
		})
	}
	return c, nil
}

// MustIndex materialises the catalog and panics if validation fails. Useful
// for tests and static default wiring.
func (r Registry) MustIndex() *Catalog {
	c, err := r.Index()
	if err != nil {
		panic(err)
	}
	return c
}

// Definition looks up a fluid kind.
func (c *Catalog) Definition(id fluid.ID) (Definition, bool) {
	def, ok := c.byFluid[id]
	return def, ok
}

// ByBucketItem looks up the fluid carried by a container item.
func (c *Catalog) ByBucketItem(itemType state.ItemType) (Definition, bool) {
	def, ok := c.byBucket[itemType]
	return def, ok
}

// DisplayName resolves a fluid's display name, falling back to the raw id
// for uncataloged fluids.
func (c *Catalog) DisplayName(id fluid.ID) string {
	if def, ok := c.byFluid[id]; ok {
		return def.DisplayName
	}
	return string(id)
}

// FillSound returns the cue played when a bucket is filled from a tank.
func (c *Catalog) FillSound(id fluid.ID) SoundID {
	return c.byFluid[id].FillSound
}

// EmptySound returns the cue played when a bucket is emptied into a tank.
func (c *Catalog) EmptySound(id fluid.ID) SoundID {
	return c.byFluid[id].EmptySound
}

// Default returns the built-in registry.
func Default() Registry {
	return Registry{
		{
			ID:          "water",
			DisplayName: "Water",
			BucketItem:  "water_bucket",
			FillSound:   "item.bucket.fill",
			EmptySound:  "item.bucket.empty",
		},
		{
			ID:          "lava",
			DisplayName: "Lava",
			BucketItem:  "lava_bucket",
			FillSound:   "item.bucket.fill_lava",
			EmptySound:  "item.bucket.empty_lava",
		},
	}
}
