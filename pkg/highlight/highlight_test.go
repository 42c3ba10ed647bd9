package highlight

import (
	"testing"
	"time"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	const (
		dis = catalog.ModeDisassemble
		asm = catalog.ModeAssemble
		ins = catalog.ModeInspect
	)
	wrench := catalog.ToolWrenchLarge
	hammer := catalog.ToolHammer

	tests := []struct {
		name string
		in   Input
		want Result
	}{
		{"annotation wins", Input{Mode: dis, Hovered: true, CanInteract: true, Annotation: true, Dragging: true}, none},
		{"annotation hides inspect", Input{Mode: ins, InspectTarget: true, Annotation: true}, none},
		{"inspect target", Input{Mode: ins, InspectTarget: true}, inspect},
		{"inspect hover", Input{Mode: ins, Hovered: true}, idle},
		{"inspect idle", Input{Mode: ins}, none},
		{"dragging", Input{Mode: asm, Removed: true, Dragging: true, Tool: hammer, Required: wrench}, dragging},

		{"dis removed", Input{Mode: dis, Removed: true, Hovered: true, CanInteract: true}, none},
		{"dis ineligible hovered", Input{Mode: dis, Hovered: true}, invalid},
		{"dis ineligible", Input{Mode: dis}, none},
		{"dis eligible not hovered", Input{Mode: dis, CanInteract: true}, none},
		{"dis wrong tool", Input{Mode: dis, CanInteract: true, Hovered: true, Tool: hammer, Required: wrench}, invalid},
		{"dis no tool", Input{Mode: dis, CanInteract: true, Hovered: true, Tool: catalog.ToolNone, Required: wrench}, valid},
		{"dis right tool", Input{Mode: dis, CanInteract: true, Hovered: true, Tool: wrench, Required: wrench}, valid},

		{"asm installed", Input{Mode: asm, Hovered: true, CanInteract: true}, none},
		{"asm ineligible hovered", Input{Mode: asm, Removed: true, Hovered: true}, invalid},
		{"asm ineligible", Input{Mode: asm, Removed: true}, none},
		{"asm eligible idle", Input{Mode: asm, Removed: true, CanInteract: true}, idle},
		{"asm wrong tool", Input{Mode: asm, Removed: true, CanInteract: true, Hovered: true, Tool: wrench, Required: hammer}, invalid},
		{"asm right tool", Input{Mode: asm, Removed: true, CanInteract: true, Hovered: true, Tool: hammer, Required: hammer}, valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in))
		})
	}
}

func TestPulseScale(t *testing.T) {
	assert.InDelta(t, 1.0, PulseScale(0), 1e-12)
	assert.InDelta(t, 1.01, PulseScale(500*time.Millisecond), 1e-12)
	assert.InDelta(t, 1.02, PulseScale(time.Second), 1e-12)
	assert.InDelta(t, 1.01, PulseScale(1500*time.Millisecond), 1e-12)
	assert.InDelta(t, 1.0, PulseScale(2*time.Second), 1e-12)
	assert.InDelta(t, 1.01, PulseScale(2500*time.Millisecond), 1e-12, "loops")

	for d := time.Duration(0); d < 5*time.Second; d += 37 * time.Millisecond {
		s := PulseScale(d)
		assert.GreaterOrEqual(t, s, 1.0)
		assert.LessOrEqual(t, s, 1+PulseAmount)
	}
}

func TestScale(t *testing.T) {
	hover := Input{Mode: catalog.ModeDisassemble, CanInteract: true, Hovered: true}
	assert.Equal(t, HoverScale, Scale(hover, 0))

	hover.Dragging = true
	assert.Equal(t, 1.0, Scale(hover, 0))

	hover.Dragging, hover.Annotation = false, true
	assert.Equal(t, 1.0, Scale(hover, 0))

	target := Input{Mode: catalog.ModeInspect, InspectTarget: true, CanInteract: true, Hovered: true}
	assert.InDelta(t, 1.02, Scale(target, time.Second), 1e-12)
}
