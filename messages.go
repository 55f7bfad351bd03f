package server

import (
	"pipeworks/server/internal/grid"
	"pipeworks/server/internal/journal"
	"pipeworks/server/internal/world"
)

type joinResponse struct {
	Ver              int                  `json:"ver"`
	ID               string               `json:"id"`
	Tanks            []world.TankSnapshot `json:"tanks"`
	Config           world.Config         `json:"config"`
	Tick             uint64               `json:"t"`
	KeyframeInterval int                  `json:"keyframeInterval,omitempty"`
}

type stateMessage struct {
	Ver         int                  `json:"ver"`
	Type        string               `json:"type"`
	Tanks       []world.TankSnapshot `json:"tanks,omitempty"`
	Patches     []journal.Patch      `json:"patches"`
	Tick        uint64               `json:"t"`
	KeyframeSeq uint64               `json:"keyframeSeq,omitempty"`
	ServerTime  int64                `json:"serverTime"`
}

type heartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	RTTMillis  int64  `json:"rttMillis,omitempty"`
}

// ClientCommand is the union of every command a client can send over the
// socket. Type selects which fields are meaningful.
type ClientCommand struct {
	Type       string    `json:"type"`
	Pos        *grid.Pos `json:"pos,omitempty"`
	Capacity   int64     `json:"capacity,omitempty"`
	Fluid      string    `json:"fluid,omitempty"`
	AmountMb   int64     `json:"amountMb,omitempty"`
	Slot       int       `json:"slot,omitempty"`
	Item       string    `json:"item,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	AutoSpread *bool     `json:"autoSpread,omitempty"`
	EqualSplit *bool     `json:"equalSplit,omitempty"`
	SentAt     int64     `json:"sentAt,omitempty"`
}

type diagnosticsPlayer struct {
	Ver           int    `json:"ver"`
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}
