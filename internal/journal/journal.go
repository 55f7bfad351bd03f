package journal

import (
	"sync"
	"time"
)

// Telemetry captures the metrics adapter used by the journal to report
// evictions and drops.
type Telemetry interface {
	RecordJournalDrop(metric string)
}

// PatchKind identifies the type of diff entry.
type PatchKind string

const (
	// PatchTankFluid updates a tank's fluid contents.
	PatchTankFluid PatchKind = "tank_fluid"
	// PatchTankInventory updates a tank's attached inventory slots.
	PatchTankInventory PatchKind = "tank_inventory"
	// PatchTankRemoved signals that a tank left the world.
	PatchTankRemoved PatchKind = "tank_removed"
	// PatchSoundCue instructs clients to play a sound at a tank.
	PatchSoundCue PatchKind = "sound_cue"
)

// Patch is a diff entry applied to client state.
type Patch struct {
	Kind     PatchKind `json:"kind"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload,omitempty"`
}

// TankFluidPayload carries the new contents of a tank.
type TankFluidPayload struct {
	Fluid    string `json:"fluid"`
	Amount   int64  `json:"amount"`
	AmountMb int64  `json:"amountMb"`
	Capacity int64  `json:"capacity"`
}

// SlotPayload carries one inventory slot for a tank inventory patch.
type SlotPayload struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

// TankInventoryPayload carries the new slots of a tank inventory.
type TankInventoryPayload struct {
	Slots []SlotPayload `json:"slots"`
}

// SoundCuePayload carries a client sound cue.
type SoundCuePayload struct {
	Sound string `json:"sound"`
}

// Keyframe captures a full world snapshot for client resynchronisation.
type Keyframe struct {
	Sequence   uint64    `json:"sequence"`
	Tick       uint64    `json:"tick"`
	Tanks      any       `json:"tanks"`
	Config     any       `json:"config,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// KeyframeEviction describes one frame dropped from the retention window.
type KeyframeEviction struct {
	Sequence uint64
	Tick     uint64
	Reason   string
}

// KeyframeRecordResult summarises the retention window after a record.
type KeyframeRecordResult struct {
	Size           int
	OldestSequence uint64
	NewestSequence uint64
	Evicted        []KeyframeEviction
}

const (
	metricKeyframeExpired  = "journal_keyframe_expired"
	metricKeyframeOverflow = "journal_keyframe_overflow"
)

// Journal accumulates patches generated during a tick and keeps a rolling
// buffer of recent keyframes so clients can rehydrate after missed diffs.
type Journal struct {
	mu        sync.RWMutex
	patches   []Patch
	keyframes []Keyframe
	maxFrames int
	maxAge    time.Duration
	telemetry Telemetry
}

// New constructs a journal with storage for the configured number of
// keyframes and retention window.
func New(keyframeCapacity int, maxAge time.Duration) *Journal {
	if keyframeCapacity < 0 {
		keyframeCapacity = 0
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return &Journal{
		patches:   make([]Patch, 0),
		keyframes: make([]Keyframe, 0, keyframeCapacity),
		maxFrames: keyframeCapacity,
		maxAge:    maxAge,
	}
}

// AttachTelemetry wires the drop counter hook.
func (j *Journal) AttachTelemetry(t Telemetry) {
	j.mu.Lock()
	j.telemetry = t
	j.mu.Unlock()
}

// AppendPatch records a patch for the current tick.
func (j *Journal) AppendPatch(p Patch) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.patches = append(j.patches, p)
}

// DrainPatches returns all staged patches and clears the in-memory slice.
func (j *Journal) DrainPatches() []Patch {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.patches) == 0 {
		return nil
	}
	drained := make([]Patch, len(j.patches))
	copy(drained, j.patches)
	j.patches = j.patches[:0]
	return drained
}

// SnapshotPatches returns a copy of the staged patches without clearing the
// journal.
func (j *Journal) SnapshotPatches() []Patch {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.patches) == 0 {
		return nil
	}
	snapshot := make([]Patch, len(j.patches))
	copy(snapshot, j.patches)
	return snapshot
}

// RestorePatches prepends the provided patches back into the journal. Used
// when a caller drains the journal but the broadcast fails and the diffs
// must survive until the next attempt.
func (j *Journal) RestorePatches(p []Patch) {
	if len(p) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	restored := make([]Patch, 0, len(p)+len(j.patches))
	restored = append(restored, p...)
	restored = append(restored, j.patches...)
	j.patches = restored
}

// PurgeEntity drops all staged patches that reference the provided entity.
// It keeps the journal consistent when a tank is removed before the next
// broadcast.
func (j *Journal) PurgeEntity(entityID string) {
	if entityID == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.patches) == 0 {
		return
	}
	filtered := j.patches[:0]
	for _, patch := range j.patches {
		if patch.EntityID == entityID {
			continue
		}
		filtered = append(filtered, patch)
	}
	j.patches = filtered
}

// RecordKeyframe stores a keyframe enforcing retention limits by count and
// age.
func (j *Journal) RecordKeyframe(frame Keyframe) KeyframeRecordResult {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.maxFrames == 0 {
		j.keyframes = j.keyframes[:0]
		return KeyframeRecordResult{}
	}

	frame.RecordedAt = time.Now()
	j.keyframes = append(j.keyframes, frame)

	evicted := make([]KeyframeEviction, 0)
	if j.maxAge > 0 {
		cutoff := frame.RecordedAt.Add(-j.maxAge)
		idx := 0
		for idx < len(j.keyframes) {
			if !j.keyframes[idx].RecordedAt.Before(cutoff) {
				break
			}
			evicted = append(evicted, KeyframeEviction{
				Sequence: j.keyframes[idx].Sequence,
				Tick:     j.keyframes[idx].Tick,
				Reason:   "expired",
			})
			j.recordDropLocked(metricKeyframeExpired)
			idx++
		}
		if idx > 0 {
			copy(j.keyframes, j.keyframes[idx:])
			j.keyframes = j.keyframes[:len(j.keyframes)-idx]
		}
	}

	if len(j.keyframes) > j.maxFrames {
		overflow := len(j.keyframes) - j.maxFrames
		for i := 0; i < overflow; i++ {
			evicted = append(evicted, KeyframeEviction{
				Sequence: j.keyframes[i].Sequence,
				Tick:     j.keyframes[i].Tick,
				Reason:   "count",
			})
			j.recordDropLocked(metricKeyframeOverflow)
		}
		copy(j.keyframes, j.keyframes[overflow:])
		j.keyframes = j.keyframes[:len(j.keyframes)-overflow]
	}

	size := len(j.keyframes)
	result := KeyframeRecordResult{Size: size, Evicted: evicted}
	if size > 0 {
		result.OldestSequence = j.keyframes[0].Sequence
		result.NewestSequence = j.keyframes[size-1].Sequence
	}
	return result
}

// Keyframes exposes the current buffer contents in chronological order.
// Callers receive a copy.
func (j *Journal) Keyframes() []Keyframe {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.keyframes) == 0 {
		return nil
	}
	frames := make([]Keyframe, len(j.keyframes))
	copy(frames, j.keyframes)
	return frames
}

// KeyframeBySequence returns the keyframe matching the provided sequence.
func (j *Journal) KeyframeBySequence(sequence uint64) (Keyframe, bool) {
	if sequence == 0 {
		return Keyframe{}, false
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, frame := range j.keyframes {
		if frame.Sequence == sequence {
			return frame, true
		}
	}
	return Keyframe{}, false
}

// KeyframeWindow reports the current retention window.
func (j *Journal) KeyframeWindow() (size int, oldest, newest uint64) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	size = len(j.keyframes)
	if size == 0 {
		return size, 0, 0
	}
	return size, j.keyframes[0].Sequence, j.keyframes[size-1].Sequence
}

func (j *Journal) recordDropLocked(metric string) {
	if j.telemetry == nil || metric == "" {
		return
	}
	j.telemetry.RecordJournalDrop(metric)
}
