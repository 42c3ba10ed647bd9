// Package highlight derives the visual emphasis of a part from its
// interaction state. Resolve is a pure function of its Input.
package highlight

import (
	"time"

	"github.com/chazu/mechtrainer/pkg/catalog"
)

// Kind is the emphasis class.
type Kind string

const (
	None     Kind = "none"
	Valid    Kind = "valid"
	Invalid  Kind = "invalid"
	Dragging Kind = "dragging"
	Inspect  Kind = "inspect"
)

// Emissive colours per kind.
const (
	ColorValid    = "#3b82f6"
	ColorInvalid  = "#ef4444"
	ColorDragging = "#eab308"
	ColorInspect  = "#06b6d4"
)

// Intensities.
const (
	DefaultIntensity = 0.5
	IdleIntensity    = 0.2
	InspectIntensity = 0.6
)

// Scale factors.
const (
	HoverScale  = 1.05
	PulseAmount = 0.02
	PulsePeriod = time.Second // one way; the pulse reverses every period
)

// Input is everything the emphasis depends on. Required is the tool for
// the current mode: the assembly tool when assembling.
type Input struct {
	Mode          catalog.ActionMode
	Removed       bool
	CanInteract   bool
	Hovered       bool
	Dragging      bool
	Annotation    bool
	InspectTarget bool
	Tool          catalog.Tool
	Required      catalog.Tool
}

// Result is the resolved emphasis.
type Result struct {
	Kind      Kind    `json:"kind"`
	Color     string  `json:"color,omitempty"`
	Intensity float64 `json:"intensity"`
	Pulse     bool    `json:"pulse"`
}

var (
	none     = Result{Kind: None}
	valid    = Result{Kind: Valid, Color: ColorValid, Intensity: DefaultIntensity}
	idle     = Result{Kind: Valid, Color: ColorValid, Intensity: IdleIntensity}
	invalid  = Result{Kind: Invalid, Color: ColorInvalid, Intensity: DefaultIntensity}
	dragging = Result{Kind: Dragging, Color: ColorDragging, Intensity: DefaultIntensity}
	inspect  = Result{Kind: Inspect, Color: ColorInspect, Intensity: InspectIntensity, Pulse: true}
)

// Resolve returns the emphasis for in. Annotation mode suppresses every
// highlight.
func Resolve(in Input) Result {
	if in.Annotation {
		return none
	}
	if in.Mode == catalog.ModeInspect {
		switch {
		case in.InspectTarget:
			return inspect
		case in.Hovered:
			return idle
		}
		return none
	}
	if in.Dragging {
		return dragging
	}

	// Disassembly acts on installed parts, assembly on removed ones.
	actionable := !in.Removed
	if in.Mode == catalog.ModeAssemble {
		actionable = in.Removed
	}
	switch {
	case !actionable:
		return none
	case !in.CanInteract:
		if in.Hovered {
			return invalid
		}
		return none
	case !in.Hovered:
		if in.Mode == catalog.ModeAssemble {
			return idle
		}
		return none
	case in.Tool != catalog.ToolNone && in.Tool != in.Required:
		return invalid
	}
	return valid
}

// PulseScale returns the inspect pulse factor after elapsed time. It
// rises linearly to 1+PulseAmount over PulsePeriod and falls back over
// the next.
func PulseScale(elapsed time.Duration) float64 {
	if elapsed < 0 {
		elapsed = -elapsed
	}
	phase := elapsed % (2 * PulsePeriod)
	t := float64(phase) / float64(PulsePeriod)
	if t > 1 {
		t = 2 - t
	}
	return 1 + PulseAmount*t
}

// Scale returns the uniform scale factor applied on top of the part's own
// scale: the pulse for inspect targets, the hover bump for interactable
// hovered parts, 1 otherwise.
func Scale(in Input, elapsed time.Duration) float64 {
	if in.Mode == catalog.ModeInspect && in.InspectTarget {
		return PulseScale(elapsed)
	}
	if in.CanInteract && in.Hovered && !in.Dragging && !in.Annotation {
		return HoverScale
	}
	return 1
}
