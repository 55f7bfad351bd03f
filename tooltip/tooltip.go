package tooltip

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pipeworks/server/internal/fluid"
)

// Mode selects how tank contents are rendered.
type Mode int

const (
	// ShowAmount renders the held amount in droplets.
	ShowAmount Mode = iota
	// ShowAmountAndCapacity renders amount and capacity in droplets.
	ShowAmountAndCapacity
	// ShowAmountMb renders the held amount in millibuckets.
	ShowAmountMb
	// ShowAmountAndCapacityMb renders amount and capacity in millibuckets.
	ShowAmountAndCapacityMb
)

// Namer resolves a fluid id to its display name.
type Namer func(id fluid.ID) string

var printer = message.NewPrinter(language.English)

// Lines renders the tooltip for a tank's contents: the fluid's display name
// followed by the quantity line for the chosen mode. A blank variant renders
// nothing.
func Lines(resource fluid.Variant, amount, capacity int64, mode Mode, name Namer) []string {
	if resource.IsBlank() {
		return nil
	}

	display := string(resource.ID)
	if name != nil {
		display = name(resource.ID)
	}

	var quantity string
	switch mode {
	case ShowAmountAndCapacity:
		quantity = printer.Sprintf("%d / %d droplets", amount, capacity)
	case ShowAmountMb:
		quantity = printer.Sprintf("%d mB", fluid.DropletsToMb(amount))
	case ShowAmountAndCapacityMb:
		quantity = printer.Sprintf("%d mB / %d mB", fluid.DropletsToMb(amount), fluid.DropletsToMb(capacity))
	default:
		quantity = printer.Sprintf("%d droplets", amount)
	}

	return []string{display, quantity}
}
