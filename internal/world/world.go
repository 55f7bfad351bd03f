package world

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"pipeworks/server/catalog"
	"pipeworks/server/internal/fluid"
	"pipeworks/server/internal/grid"
	journalpkg "pipeworks/server/internal/journal"
	"pipeworks/server/internal/ledger"
	"pipeworks/server/internal/spread"
	"pipeworks/server/internal/state"
	"pipeworks/server/internal/transfer"
	"pipeworks/server/logging"
	"pipeworks/server/logging/fluids"
)

const (
	defaultJournalKeyframeCapacity = 8
	defaultJournalKeyframeMaxAge   = 5 * time.Second
	envJournalCapacity             = "KEYFRAME_JOURNAL_CAPACITY"
	envJournalMaxAgeMS             = "KEYFRAME_JOURNAL_MAX_AGE_MS"
)

var (
	// ErrOutOfBounds signals a position outside the configured grid.
	ErrOutOfBounds = errors.New("world: position out of bounds")
	// ErrPositionOccupied signals that a tank already sits at the position.
	ErrPositionOccupied = errors.New("world: position occupied")
	// ErrNoTank signals that no tank sits at the position.
	ErrNoTank = errors.New("world: no tank at position")
)

// Deps bundles runtime dependencies required to construct a World instance.
type Deps struct {
	Publisher        logging.Publisher
	Catalog          *catalog.Catalog
	JournalRetention func() (int, time.Duration)
	JournalTelemetry journalpkg.Telemetry
}

// TankEntity is one placed tank: its storage, its attached item inventory,
// and its distribution settings.
type TankEntity struct {
	ID         string
	Pos        grid.Pos
	Tank       *ledger.Tank
	Inventory  *state.Inventory
	AutoSpread bool
	EqualSplit bool
	Version    uint64
}

// TankSnapshot is the wire form of a tank entity.
type TankSnapshot struct {
	ID         string            `json:"id"`
	Pos        grid.Pos          `json:"pos"`
	Fluid      string            `json:"fluid"`
	Amount     int64             `json:"amount"`
	AmountMb   int64             `json:"amountMb"`
	Capacity   int64             `json:"capacity"`
	Slots      []state.ItemStack `json:"slots"`
	AutoSpread bool              `json:"autoSpread"`
	EqualSplit bool              `json:"equalSplit"`
	Version    uint64            `json:"version"`
}

// World owns the placed tanks, the patch journal, and the tick counter. The
// hub serializes access; the world itself is not safe for concurrent use.
type World struct {
	config Config
	seed   string

	publisher logging.Publisher
	catalog   *catalog.Catalog

	tanks      map[grid.Pos]*TankEntity
	nextTankID uint64
	tick       uint64

	journal *journalpkg.Journal
}

// New constructs a world instance with normalized configuration.
func New(cfg Config, deps Deps) *World {
	normalized := cfg.normalized()

	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	cat := deps.Catalog
	if cat == nil {
		cat = catalog.Default().MustIndex()
	}

	capacity, maxAge := journalRetention()
	if deps.JournalRetention != nil {
		capacity, maxAge = normalizeJournalRetention(deps.JournalRetention())
	}

	world := &World{
		config:    normalized,
		seed:      normalized.Seed,
		publisher: publisher,
		catalog:   cat,
		tanks:     make(map[grid.Pos]*TankEntity),
		journal:   journalpkg.New(capacity, maxAge),
	}
	if deps.JournalTelemetry != nil {
		world.journal.AttachTelemetry(deps.JournalTelemetry)
	}
	return world
}

// Config returns the normalized configuration captured at construction time.
func (w *World) Config() Config {
	if w == nil {
		return Config{}
	}
	return w.config
}

// Seed reports the world seed.
func (w *World) Seed() string {
	if w == nil {
		return ""
	}
	return w.seed
}

// Tick reports the current tick counter.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Catalog exposes the fluid catalog the world was built with.
func (w *World) Catalog() *catalog.Catalog {
	if w == nil {
		return nil
	}
	return w.catalog
}

func (w *World) inBounds(pos grid.Pos) bool {
	return pos.X >= 0 && pos.X < w.config.Width &&
		pos.Y >= 0 && pos.Y < w.config.Height &&
		pos.Z >= 0 && pos.Z < w.config.Depth
}

// PlaceTank creates a tank at the position. A non-positive capacity falls
// back to the configured default.
func (w *World) PlaceTank(pos grid.Pos, capacity int64, autoSpread, equalSplit bool) (*TankEntity, error) {
	if w == nil {
		return nil, ErrOutOfBounds
	}
	if !w.inBounds(pos) {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, pos)
	}
	if _, exists := w.tanks[pos]; exists {
		return nil, fmt.Errorf("%w: %v", ErrPositionOccupied, pos)
	}
	if capacity <= 0 {
		capacity = w.config.TankCapacity
	}

	w.nextTankID++
	entity := &TankEntity{
		ID:         fmt.Sprintf("tank-%d", w.nextTankID),
		Pos:        pos,
		Tank:       ledger.NewTank(capacity),
		Inventory:  state.NewInventory(DefaultTankSlots),
		AutoSpread: autoSpread,
		EqualSplit: equalSplit,
	}
	entity.Inventory.OnDirty(func() { w.markTankInventoryDirty(entity) })
	w.tanks[pos] = entity

	w.markTankFluidDirty(entity)
	return entity, nil
}

// RemoveTank deletes the tank at the position and purges its staged patches
// so clients only see the removal.
func (w *World) RemoveTank(pos grid.Pos) bool {
	if w == nil {
		return false
	}
	entity, ok := w.tanks[pos]
	if !ok {
		return false
	}
	delete(w.tanks, pos)
	w.journal.PurgeEntity(entity.ID)
	w.journal.AppendPatch(journalpkg.Patch{Kind: journalpkg.PatchTankRemoved, EntityID: entity.ID})
	return true
}

// TankAt returns the tank entity at the position.
func (w *World) TankAt(pos grid.Pos) (*TankEntity, bool) {
	if w == nil {
		return nil, false
	}
	entity, ok := w.tanks[pos]
	return entity, ok
}

// StorageAt resolves the fluid capability at a position approached from the
// given side. Tanks are side-agnostic, so side (including grid.NoDirection)
// does not change the answer today; absence is a valid non-error outcome.
func (w *World) StorageAt(pos grid.Pos, side grid.Direction) (ledger.Storage, bool) {
	entity, ok := w.TankAt(pos)
	if !ok {
		return nil, false
	}
	return entity.Tank, true
}

// FillTank overwrites the tank contents at the position. Used by seeding and
// admin commands.
func (w *World) FillTank(pos grid.Pos, resource fluid.Variant, amount int64) error {
	entity, ok := w.TankAt(pos)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoTank, pos)
	}
	if !resource.IsBlank() {
		if _, known := w.catalog.Definition(resource.ID); !known {
			return fmt.Errorf("world: unknown fluid %q", resource.ID)
		}
	}
	entity.Tank.Fill(resource, amount)
	w.markTankFluidDirty(entity)
	return nil
}

// InsertItem places a stack into a slot of the tank's inventory.
func (w *World) InsertItem(pos grid.Pos, slot int, stack state.ItemStack) error {
	entity, ok := w.TankAt(pos)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoTank, pos)
	}
	if err := entity.Inventory.SetStack(slot, stack); err != nil {
		return err
	}
	entity.Inventory.MarkDirty()
	return nil
}

// SpreadFrom distributes the fluid of the tank at pos across its neighbors
// and returns the amount that left the source. Positions in excluded are
// skipped during neighbor collection.
func (w *World) SpreadFrom(pos grid.Pos, excluded map[grid.Pos]struct{}, equalSplit bool) int64 {
	source, ok := w.TankAt(pos)
	if !ok {
		return 0
	}

	neighborsBefore := make(map[*TankEntity]int64, len(grid.Directions))
	eligible := 0
	resolver := func(dir grid.Direction) ledger.Storage {
		adjacent := dir.Offset(pos)
		if excluded != nil {
			if _, skip := excluded[adjacent]; skip {
				return nil
			}
		}
		entity, ok := w.tanks[adjacent]
		if !ok {
			return nil
		}
		neighborsBefore[entity] = entity.Tank.Amount()
		eligible++
		return entity.Tank
	}

	before := source.Tank.Amount()
	resource := source.Tank.Resource()
	spread.Spread(source.Tank, resolver, equalSplit, func() { w.markTankFluidDirty(source) })

	moved := before - source.Tank.Amount()
	for entity, amountBefore := range neighborsBefore {
		if entity.Tank.Amount() != amountBefore {
			w.markTankFluidDirty(entity)
		}
	}

	if moved > 0 {
		fluids.Spread(context.Background(), w.publisher, w.tick,
			logging.EntityRef{ID: source.ID, Kind: logging.EntityKindTank},
			fluids.SpreadPayload{
				Fluid:      string(resource.ID),
				Moved:      moved,
				Neighbors:  eligible,
				EqualSplit: equalSplit,
			}, nil)
	}
	return moved
}

// HandleTankTransfer runs the bucket transfer engine against the tank at
// pos, using the tank's own inventory for both input and output slots.
func (w *World) HandleTankTransfer(pos grid.Pos) bool {
	entity, ok := w.TankAt(pos)
	if !ok {
		return false
	}

	actor := logging.EntityRef{ID: entity.ID, Kind: logging.EntityKindTank}
	deps := transfer.Deps{
		Catalog: w.catalog,
		Sounds: transfer.SoundsFunc(func(id catalog.SoundID) {
			w.journal.AppendPatch(journalpkg.Patch{
				Kind:     journalpkg.PatchSoundCue,
				EntityID: entity.ID,
				Payload:  journalpkg.SoundCuePayload{Sound: string(id)},
			})
		}),
	}

	amountBefore := entity.Tank.Amount()
	resourceBefore := entity.Tank.Resource()
	moved := transfer.HandleTankTransfer(deps, entity.Tank, entity.Inventory, entity.Inventory, TankSlotInput, TankSlotOutput)
	if !moved {
		fluids.TransferFailed(context.Background(), w.publisher, w.tick, actor,
			fluids.TransferFailedPayload{Reason: "nothing to move"}, nil)
		return false
	}

	w.markTankFluidDirty(entity)
	delta := entity.Tank.Amount() - amountBefore
	if delta > 0 {
		fluids.BucketEmptied(context.Background(), w.publisher, w.tick, actor,
			fluids.BucketEmptiedPayload{Fluid: string(entity.Tank.Resource().ID), Amount: delta}, nil)
	} else {
		fluids.BucketFilled(context.Background(), w.publisher, w.tick, actor,
			fluids.BucketFilledPayload{Fluid: string(resourceBefore.ID), Amount: -delta}, nil)
	}
	return true
}

// Advance runs one tick: every auto-spreading tank distributes in sorted
// position order so results are deterministic.
func (w *World) Advance(now time.Time) {
	if w == nil {
		return
	}
	w.tick++
	for _, pos := range w.sortedTankPositions() {
		entity, ok := w.tanks[pos]
		if !ok || !entity.AutoSpread {
			continue
		}
		w.SpreadFrom(pos, nil, entity.EqualSplit)
	}
}

func (w *World) sortedTankPositions() []grid.Pos {
	positions := make([]grid.Pos, 0, len(w.tanks))
	for pos := range w.tanks {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Less(positions[j]) })
	return positions
}

// TanksSnapshot copies every tank for broadcasting, in sorted position
// order.
func (w *World) TanksSnapshot() []TankSnapshot {
	if w == nil {
		return nil
	}
	snapshots := make([]TankSnapshot, 0, len(w.tanks))
	for _, pos := range w.sortedTankPositions() {
		entity := w.tanks[pos]
		snapshots = append(snapshots, TankSnapshot{
			ID:         entity.ID,
			Pos:        entity.Pos,
			Fluid:      string(entity.Tank.Resource().ID),
			Amount:     entity.Tank.Amount(),
			AmountMb:   fluid.DropletsToMb(entity.Tank.Amount()),
			Capacity:   entity.Tank.Capacity(),
			Slots:      entity.Inventory.Snapshot(),
			AutoSpread: entity.AutoSpread,
			EqualSplit: entity.EqualSplit,
			Version:    entity.Version,
		})
	}
	return snapshots
}

func (w *World) markTankFluidDirty(entity *TankEntity) {
	entity.Version++
	w.journal.AppendPatch(journalpkg.Patch{
		Kind:     journalpkg.PatchTankFluid,
		EntityID: entity.ID,
		Payload: journalpkg.TankFluidPayload{
			Fluid:    string(entity.Tank.Resource().ID),
			Amount:   entity.Tank.Amount(),
			AmountMb: fluid.DropletsToMb(entity.Tank.Amount()),
			Capacity: entity.Tank.Capacity(),
		},
	})
}

func (w *World) markTankInventoryDirty(entity *TankEntity) {
	entity.Version++
	stacks := entity.Inventory.Snapshot()
	slots := make([]journalpkg.SlotPayload, len(stacks))
	for i, stack := range stacks {
		slots[i] = journalpkg.SlotPayload{Type: string(stack.Type), Quantity: stack.Quantity}
	}
	w.journal.AppendPatch(journalpkg.Patch{
		Kind:     journalpkg.PatchTankInventory,
		EntityID: entity.ID,
		Payload:  journalpkg.TankInventoryPayload{Slots: slots},
	})
}

// AppendPatch exposes the journal for callers that stage their own diffs.
func (w *World) AppendPatch(p journalpkg.Patch) {
	if w == nil {
		return
	}
	w.journal.AppendPatch(p)
}

// PurgeEntity drops staged patches for the entity.
func (w *World) PurgeEntity(entityID string) {
	if w == nil {
		return
	}
	w.journal.PurgeEntity(entityID)
}

// DrainPatches hands the staged patches to the broadcast layer.
func (w *World) DrainPatches() []journalpkg.Patch {
	if w == nil {
		return nil
	}
	return w.journal.DrainPatches()
}

// SnapshotPatches copies the staged patches without clearing them.
func (w *World) SnapshotPatches() []journalpkg.Patch {
	if w == nil {
		return nil
	}
	return w.journal.SnapshotPatches()
}

// RestorePatches reinserts drained patches after a failed broadcast.
func (w *World) RestorePatches(patches []journalpkg.Patch) {
	if w == nil {
		return
	}
	w.journal.RestorePatches(patches)
}

// RecordKeyframe stores a keyframe in the journal's retention window.
func (w *World) RecordKeyframe(frame journalpkg.Keyframe) journalpkg.KeyframeRecordResult {
	if w == nil {
		return journalpkg.KeyframeRecordResult{}
	}
	return w.journal.RecordKeyframe(frame)
}

// Keyframes lists the retained keyframes.
func (w *World) Keyframes() []journalpkg.Keyframe {
	if w == nil {
		return nil
	}
	return w.journal.Keyframes()
}

// KeyframeBySequence fetches a retained keyframe.
func (w *World) KeyframeBySequence(sequence uint64) (journalpkg.Keyframe, bool) {
	if w == nil {
		return journalpkg.Keyframe{}, false
	}
	return w.journal.KeyframeBySequence(sequence)
}

// KeyframeWindow reports the journal's retention window.
func (w *World) KeyframeWindow() (int, uint64, uint64) {
	if w == nil {
		return 0, 0, 0
	}
	return w.journal.KeyframeWindow()
}

// AttachJournalTelemetry wires the journal drop counters.
func (w *World) AttachJournalTelemetry(t journalpkg.Telemetry) {
	if w == nil {
		return
	}
	w.journal.AttachTelemetry(t)
}

func journalRetention() (int, time.Duration) {
	capacity := defaultJournalKeyframeCapacity
	if raw := os.Getenv(envJournalCapacity); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			capacity = parsed
		}
	}

	maxAge := defaultJournalKeyframeMaxAge
	if raw := os.Getenv(envJournalMaxAgeMS); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			maxAge = time.Duration(parsed) * time.Millisecond
		}
	}

	return normalizeJournalRetention(capacity, maxAge)
}

func normalizeJournalRetention(capacity int, maxAge time.Duration) (int, time.Duration) {
	if capacity < 0 {
		capacity = 0
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return capacity, maxAge
}
