package fluids

import (
	"context"

	"pipeworks/server/logging"
)

const (
	// EventSpread is emitted when a tank pushes fluid to its neighbors.
	EventSpread logging.EventType = "fluids.spread"
	// EventBucketEmptied is emitted when a container empties into a tank.
	EventBucketEmptied logging.EventType = "fluids.bucket_emptied"
	// EventBucketFilled is emitted when a container fills from a tank.
	EventBucketFilled logging.EventType = "fluids.bucket_filled"
	// EventTransferFailed is emitted when a bucket transfer moves nothing.
	EventTransferFailed logging.EventType = "fluids.transfer_failed"
)

// SpreadPayload describes a completed distribution pass.
type SpreadPayload struct {
	Fluid      string `json:"fluid"`
	Moved      int64  `json:"moved"`
	Neighbors  int    `json:"neighbors"`
	EqualSplit bool   `json:"equalSplit"`
}

// BucketEmptiedPayload describes fluid moved from a container into a tank.
type BucketEmptiedPayload struct {
	Fluid  string `json:"fluid"`
	Amount int64  `json:"amount"`
}

// BucketFilledPayload describes fluid moved from a tank into a container.
type BucketFilledPayload struct {
	Fluid  string `json:"fluid"`
	Amount int64  `json:"amount"`
}

// TransferFailedPayload describes why a transfer attempt moved nothing.
type TransferFailedPayload struct {
	Reason string `json:"reason"`
}

// Spread publishes a distribution event.
func Spread(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SpreadPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSpread,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryFluids,
		Payload:  payload,
		Extra:    extra,
	})
}

// BucketEmptied publishes a slot-to-tank transfer event.
func BucketEmptied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BucketEmptiedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBucketEmptied,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryFluids,
		Payload:  payload,
		Extra:    extra,
	})
}

// BucketFilled publishes a tank-to-slot transfer event.
func BucketFilled(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BucketFilledPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBucketFilled,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryFluids,
		Payload:  payload,
		Extra:    extra,
	})
}

// TransferFailed publishes a no-op transfer attempt.
func TransferFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TransferFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTransferFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryFluids,
		Payload:  payload,
		Extra:    extra,
	})
}
