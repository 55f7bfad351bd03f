package server

import "time"

// ProtocolVersion is bumped whenever the wire format changes in a way old
// clients cannot parse.
const ProtocolVersion = 1

const (
	writeWait         = 10 * time.Second
	tickRate          = 15
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval
)

// TickRate reports the simulation frequency in ticks per second.
func TickRate() int {
	return tickRate
}

// HeartbeatInterval reports how often clients are expected to heartbeat.
func HeartbeatInterval() time.Duration {
	return heartbeatInterval
}
