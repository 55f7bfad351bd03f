package server

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

type telemetryCounters struct {
	bytesSent              atomic.Uint64
	tanksSent              atomic.Uint64
	patchesSent            atomic.Uint64
	tickDurationMillis     atomic.Int64
	lastBroadcastBytes     atomic.Uint64
	debug                  bool
	keyframeJournalSize    atomic.Uint64
	keyframeOldestSequence atomic.Uint64
	keyframeNewestSequence atomic.Uint64
}

type telemetrySnapshot struct {
	BytesSent              uint64 `json:"bytesSent"`
	TanksSent              uint64 `json:"tanksSent"`
	PatchesSent            uint64 `json:"patchesSent"`
	TickDuration           int64  `json:"tickDurationMillis"`
	KeyframeJournalSize    uint64 `json:"keyframeJournalSize"`
	KeyframeOldestSequence uint64 `json:"keyframeOldestSequence"`
	KeyframeNewestSequence uint64 `json:"keyframeNewestSequence"`
}

func newTelemetryCounters() *telemetryCounters {
	t := &telemetryCounters{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		t.debug = true
	}
	return t
}

func (t *telemetryCounters) RecordBroadcast(bytes, tanks, patches int) {
	if bytes < 0 {
		bytes = 0
	}
	if tanks < 0 {
		tanks = 0
	}
	if patches < 0 {
		patches = 0
	}
	t.bytesSent.Add(uint64(bytes))
	t.tanksSent.Add(uint64(tanks))
	t.patchesSent.Add(uint64(patches))
	t.lastBroadcastBytes.Store(uint64(bytes))
}

func (t *telemetryCounters) RecordTickDuration(duration time.Duration) {
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	t.tickDurationMillis.Store(millis)
	if t.debug {
		fmt.Printf(
			"[telemetry] tick=%dms bytes=%d totalBytes=%d patches=%d\n",
			millis,
			t.lastBroadcastBytes.Load(),
			t.bytesSent.Load(),
			t.patchesSent.Load(),
		)
	}
}

func (t *telemetryCounters) RecordKeyframeJournal(size int, oldest, newest uint64) {
	if size < 0 {
		size = 0
	}
	t.keyframeJournalSize.Store(uint64(size))
	t.keyframeOldestSequence.Store(oldest)
	t.keyframeNewestSequence.Store(newest)
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		BytesSent:              t.bytesSent.Load(),
		TanksSent:              t.tanksSent.Load(),
		PatchesSent:            t.patchesSent.Load(),
		TickDuration:           t.tickDurationMillis.Load(),
		KeyframeJournalSize:    t.keyframeJournalSize.Load(),
		KeyframeOldestSequence: t.keyframeOldestSequence.Load(),
		KeyframeNewestSequence: t.keyframeNewestSequence.Load(),
	}
}
