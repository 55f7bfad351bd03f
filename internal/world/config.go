package world

import (
	"strings"

	"pipeworks/server/internal/fluid"
)

const (
	DefaultSeed   = "prototype"
	DefaultWidth  = 16
	DefaultHeight = 16
	DefaultDepth  = 16
)

// DefaultTankSlots is the inventory size attached to every tank: one input
// slot and one output slot.
const DefaultTankSlots = 2

// Inventory slot roles for tank inventories.
const (
	TankSlotInput  = 0
	TankSlotOutput = 1
)

type Config struct {
	Seed         string `json:"seed"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Depth        int    `json:"depth"`
	TankCapacity int64  `json:"tankCapacity"`
	EqualSplit   bool   `json:"equalSplit"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.Width <= 0 {
		normalized.Width = DefaultWidth
	}
	if normalized.Height <= 0 {
		normalized.Height = DefaultHeight
	}
	if normalized.Depth <= 0 {
		normalized.Depth = DefaultDepth
	}
	if normalized.TankCapacity <= 0 {
		normalized.TankCapacity = fluid.CapacityDefault
	}
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func DefaultConfig() Config {
	return Config{
		Seed:         DefaultSeed,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Depth:        DefaultDepth,
		TankCapacity: fluid.CapacityDefault,
		EqualSplit:   false,
	}
}
