package journal

import (
	"testing"
	"time"
)

type dropCounter struct {
	metrics map[string]int
}

func (c *dropCounter) RecordJournalDrop(metric string) {
	if c.metrics == nil {
		c.metrics = make(map[string]int)
	}
	c.metrics[metric]++
}

func TestDrainPatchesClearsJournal(t *testing.T) {
	j := New(4, 0)
	j.AppendPatch(Patch{Kind: PatchTankFluid, EntityID: "tank-1"})
	j.AppendPatch(Patch{Kind: PatchSoundCue, EntityID: "tank-1"})

	drained := j.DrainPatches()
	if len(drained) != 2 {
		t.Fatalf("drained %d patches, want 2", len(drained))
	}
	if again := j.DrainPatches(); again != nil {
		t.Fatalf("second drain returned %d patches", len(again))
	}
}

func TestSnapshotDoesNotClear(t *testing.T) {
	j := New(4, 0)
	j.AppendPatch(Patch{Kind: PatchTankFluid, EntityID: "tank-1"})

	if got := j.SnapshotPatches(); len(got) != 1 {
		t.Fatalf("snapshot returned %d patches", len(got))
	}
	if got := j.DrainPatches(); len(got) != 1 {
		t.Fatalf("snapshot cleared the journal")
	}
}

func TestRestorePatchesPrepends(t *testing.T) {
	j := New(4, 0)
	j.AppendPatch(Patch{Kind: PatchTankFluid, EntityID: "tank-1"})
	drained := j.DrainPatches()

	j.AppendPatch(Patch{Kind: PatchTankFluid, EntityID: "tank-2"})
	j.RestorePatches(drained)

	patches := j.DrainPatches()
	if len(patches) != 2 {
		t.Fatalf("journal holds %d patches, want 2", len(patches))
	}
	if patches[0].EntityID != "tank-1" {
		t.Fatalf("restored patch not first: %+v", patches[0])
	}
}

func TestPurgeEntity(t *testing.T) {
	j := New(4, 0)
	j.AppendPatch(Patch{Kind: PatchTankFluid, EntityID: "tank-1"})
	j.AppendPatch(Patch{Kind: PatchTankFluid, EntityID: "tank-2"})
	j.AppendPatch(Patch{Kind: PatchSoundCue, EntityID: "tank-1"})

	j.PurgeEntity("tank-1")

	patches := j.DrainPatches()
	if len(patches) != 1 || patches[0].EntityID != "tank-2" {
		t.Fatalf("purge left %+v", patches)
	}
}

func TestKeyframeCountRetention(t *testing.T) {
	j := New(2, 0)
	counter := &dropCounter{}
	j.AttachTelemetry(counter)

	for seq := uint64(1); seq <= 3; seq++ {
		j.RecordKeyframe(Keyframe{Sequence: seq, Tick: seq * 10})
	}

	size, oldest, newest := j.KeyframeWindow()
	if size != 2 || oldest != 2 || newest != 3 {
		t.Fatalf("window = %d [%d, %d], want 2 [2, 3]", size, oldest, newest)
	}
	if counter.metrics[metricKeyframeOverflow] != 1 {
		t.Fatalf("overflow drops = %d, want 1", counter.metrics[metricKeyframeOverflow])
	}
	if _, ok := j.KeyframeBySequence(1); ok {
		t.Fatalf("evicted keyframe still retrievable")
	}
	if frame, ok := j.KeyframeBySequence(3); !ok || frame.Tick != 30 {
		t.Fatalf("keyframe 3 lookup = %+v, %v", frame, ok)
	}
}

func TestKeyframeZeroCapacityKeepsNothing(t *testing.T) {
	j := New(0, time.Minute)
	result := j.RecordKeyframe(Keyframe{Sequence: 1})
	if result.Size != 0 || len(j.Keyframes()) != 0 {
		t.Fatalf("zero-capacity journal stored a keyframe")
	}
}

func TestKeyframeRecordResultWindow(t *testing.T) {
	j := New(8, 0)
	j.RecordKeyframe(Keyframe{Sequence: 5, Tick: 50})
	result := j.RecordKeyframe(Keyframe{Sequence: 6, Tick: 60})
	if result.Size != 2 || result.OldestSequence != 5 || result.NewestSequence != 6 {
		t.Fatalf("record result = %+v", result)
	}
	if len(result.Evicted) != 0 {
		t.Fatalf("unexpected evictions %+v", result.Evicted)
	}
}
