package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"pipeworks/server/internal/fluid"
	"pipeworks/server/internal/journal"
	"pipeworks/server/internal/state"
	"pipeworks/server/internal/world"
	"pipeworks/server/logging"
)

// DefaultKeyframeInterval is how many ticks pass between full snapshots when
// the hub config does not override it.
const DefaultKeyframeInterval = 30

var (
	errUnknownPlayer  = errors.New("unknown player")
	errUnknownCommand = errors.New("unknown command")
	errMissingPos     = errors.New("command requires a position")
)

// Hub owns all live sessions, subscribers, and the simulated tank world.
type Hub struct {
	mu               sync.Mutex
	world            *world.World
	sessions         map[string]*playerSession
	subscribers      map[string]*subscriber
	nextID           atomic.Uint64
	keyframeInterval int
	keyframeSeq      uint64
	telemetry        *telemetryCounters
}

type playerSession struct {
	id            string
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WriteMessage serializes writes to the underlying connection and applies
// the shared write deadline.
func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// HubConfig controls hub construction. Zero values fall back to defaults.
type HubConfig struct {
	World            *world.World
	KeyframeInterval int
}

// DefaultHubConfig returns the configuration used by NewHub.
func DefaultHubConfig() HubConfig {
	return HubConfig{KeyframeInterval: DefaultKeyframeInterval}
}

// NewHub creates a hub with a default world wired to the publisher.
func NewHub(publisher logging.Publisher) *Hub {
	return NewHubWithConfig(DefaultHubConfig(), publisher)
}

// NewHubWithConfig creates a hub from explicit configuration. When cfg.World
// is nil a default world is constructed around the publisher.
func NewHubWithConfig(cfg HubConfig, publisher logging.Publisher) *Hub {
	w := cfg.World
	if w == nil {
		w = world.New(world.DefaultConfig(), world.Deps{Publisher: publisher})
	}
	interval := cfg.KeyframeInterval
	if interval <= 0 {
		interval = DefaultKeyframeInterval
	}
	return &Hub{
		world:            w,
		sessions:         make(map[string]*playerSession),
		subscribers:      make(map[string]*subscriber),
		keyframeInterval: interval,
		telemetry:        newTelemetryCounters(),
	}
}

// World exposes the simulated world, mainly for tests and seeding.
func (h *Hub) World() *world.World {
	return h.world
}

// Join registers a new player session and returns the latest snapshot.
func (h *Hub) Join() joinResponse {
	id := h.nextID.Add(1)
	playerID := fmt.Sprintf("player-%d", id)

	h.mu.Lock()
	h.sessions[playerID] = &playerSession{id: playerID, lastHeartbeat: time.Now()}
	resp := joinResponse{
		Ver:              ProtocolVersion,
		ID:               playerID,
		Tanks:            h.world.TanksSnapshot(),
		Config:           h.world.Config(),
		Tick:             h.world.Tick(),
		KeyframeInterval: h.keyframeInterval,
	}
	h.mu.Unlock()

	return resp
}

// Subscribe associates a WebSocket connection with an existing session.
func (h *Hub) Subscribe(playerID string, conn *websocket.Conn) (*subscriber, []world.TankSnapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[playerID]
	if !ok {
		return nil, nil, false
	}

	session.lastHeartbeat = time.Now()

	if existing, ok := h.subscribers[playerID]; ok {
		existing.conn.Close()
	}

	sub := &subscriber{conn: conn}
	h.subscribers[playerID] = sub
	return sub, h.world.TanksSnapshot(), true
}

// Disconnect removes a session and closes any active subscriber connection.
func (h *Hub) Disconnect(playerID string) bool {
	h.mu.Lock()
	sub, subOK := h.subscribers[playerID]
	if subOK {
		delete(h.subscribers, playerID)
	}
	_, sessionOK := h.sessions[playerID]
	if sessionOK {
		delete(h.sessions, playerID)
	}
	h.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}
	return sessionOK
}

// UpdateHeartbeat records the most recent heartbeat time and RTT for a session.
func (h *Hub) UpdateHeartbeat(playerID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[playerID]
	if !ok {
		return 0, false
	}

	session.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			session.lastRTT = rtt
		}
	}

	return session.lastRTT, true
}

// HandleCommand applies one client command to the world. The heartbeat
// command is handled by UpdateHeartbeat so the socket loop can reply with
// the measured RTT.
func (h *Hub) HandleCommand(playerID string, msg ClientCommand) error {
	if msg.Type == "heartbeat" {
		if _, ok := h.UpdateHeartbeat(playerID, time.Now(), msg.SentAt); !ok {
			return fmt.Errorf("%w: %s", errUnknownPlayer, playerID)
		}
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[playerID]; !ok {
		return fmt.Errorf("%w: %s", errUnknownPlayer, playerID)
	}

	switch msg.Type {
	case "place_tank":
		if msg.Pos == nil {
			return errMissingPos
		}
		autoSpread := false
		if msg.AutoSpread != nil {
			autoSpread = *msg.AutoSpread
		}
		equalSplit := h.world.Config().EqualSplit
		if msg.EqualSplit != nil {
			equalSplit = *msg.EqualSplit
		}
		_, err := h.world.PlaceTank(*msg.Pos, msg.Capacity, autoSpread, equalSplit)
		return err
	case "remove_tank":
		if msg.Pos == nil {
			return errMissingPos
		}
		if !h.world.RemoveTank(*msg.Pos) {
			return fmt.Errorf("no tank at %v", *msg.Pos)
		}
		return nil
	case "fill_tank":
		if msg.Pos == nil {
			return errMissingPos
		}
		return h.world.FillTank(*msg.Pos, fluid.Of(fluid.ID(msg.Fluid)), fluid.MbToDroplets(msg.AmountMb))
	case "insert_item":
		if msg.Pos == nil {
			return errMissingPos
		}
		stack := state.ItemStack{Type: state.ItemType(msg.Item), Quantity: msg.Quantity}
		return h.world.InsertItem(*msg.Pos, msg.Slot, stack)
	case "transfer":
		if msg.Pos == nil {
			return errMissingPos
		}
		h.world.HandleTankTransfer(*msg.Pos)
		return nil
	case "spread":
		if msg.Pos == nil {
			return errMissingPos
		}
		equalSplit := h.world.Config().EqualSplit
		if msg.EqualSplit != nil {
			equalSplit = *msg.EqualSplit
		}
		h.world.SpreadFrom(*msg.Pos, nil, equalSplit)
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, msg.Type)
	}
}

// advance runs a single simulation step and returns the broadcast message
// plus stale subscribers to close.
func (h *Hub) advance(now time.Time) (stateMessage, []*subscriber) {
	h.mu.Lock()

	toClose := make([]*subscriber, 0)
	for id, session := range h.sessions {
		if now.Sub(session.lastHeartbeat) > disconnectAfter {
			if sub, ok := h.subscribers[id]; ok {
				toClose = append(toClose, sub)
				delete(h.subscribers, id)
			}
			delete(h.sessions, id)
			log.Printf("disconnecting %s due to heartbeat timeout", id)
		}
	}

	h.world.Advance(now)
	tick := h.world.Tick()

	msg := stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Patches:    h.world.DrainPatches(),
		Tick:       tick,
		ServerTime: now.UnixMilli(),
	}

	if h.keyframeInterval > 0 && tick%uint64(h.keyframeInterval) == 0 {
		h.keyframeSeq++
		tanks := h.world.TanksSnapshot()
		result := h.world.RecordKeyframe(journal.Keyframe{
			Sequence: h.keyframeSeq,
			Tick:     tick,
			Tanks:    tanks,
			Config:   h.world.Config(),
		})
		h.telemetry.RecordKeyframeJournal(result.Size, result.OldestSequence, result.NewestSequence)
		msg.Tanks = tanks
		msg.KeyframeSeq = h.keyframeSeq
	}

	h.mu.Unlock()
	return msg, toClose
}

// RunSimulation drives the fixed-rate tick loop until the stop channel closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			started := time.Now()
			msg, toClose := h.advance(now)
			for _, sub := range toClose {
				sub.conn.Close()
			}
			h.broadcastState(msg)
			h.telemetry.RecordTickDuration(time.Since(started))
		}
	}
}

// broadcastState sends the tick's message to every subscriber. When the
// message cannot be marshalled the drained patches go back into the journal
// so the next tick retries them.
func (h *Hub) broadcastState(msg stateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		h.world.RestorePatches(msg.Patches)
		return
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	h.telemetry.RecordBroadcast(len(data)*len(subs), len(msg.Tanks), len(msg.Patches))

	for id, sub := range subs {
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			h.Disconnect(id)
		}
	}
}

// DiagnosticsSnapshot exposes heartbeat data for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsPlayer {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := make([]diagnosticsPlayer, 0, len(h.sessions))
	for _, session := range h.sessions {
		players = append(players, diagnosticsPlayer{
			Ver:           ProtocolVersion,
			ID:            session.id,
			LastHeartbeat: session.lastHeartbeat.UnixMilli(),
			RTTMillis:     session.lastRTT.Milliseconds(),
		})
	}
	return players
}

// TelemetrySnapshot exposes the hub's broadcast counters.
func (h *Hub) TelemetrySnapshot() telemetrySnapshot {
	return h.telemetry.Snapshot()
}
