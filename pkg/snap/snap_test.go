package snap

import (
	"testing"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func part(id string, typ catalog.PartType, tool catalog.Tool, x float64) catalog.Part {
	return catalog.Part{
		ID: id, Type: typ, RequiredTool: tool,
		Home: catalog.Transform{Position: mgl64.Vec3{x, 0, 0}},
	}
}

func testParts() []catalog.Part {
	return []catalog.Part{
		part("bolt_1", catalog.TypeBolt, catalog.ToolWrenchLarge, -2.6),
		part("bolt_2", catalog.TypeBolt, catalog.ToolWrenchLarge, 2.6),
		part("obs_bolt", catalog.TypeBolt, catalog.ToolWrenchSmall, 2.5),
		part("cover", catalog.TypeCover, catalog.ToolWrenchLarge, 2.6),
	}
}

func TestResolveNearestSlot(t *testing.T) {
	parts := testParts()
	removed := map[string]bool{"bolt_1": true, "bolt_2": true, "obs_bolt": true, "cover": true}
	r := New(0)

	// Dragging bolt_1 next to bolt_2's home installs bolt_2.
	slot, ok := r.Resolve(parts, parts[0], mgl64.Vec3{2.5, 0.2, 0}, removed)
	assert.True(t, ok)
	assert.Equal(t, "bolt_2", slot)

	slot, ok = r.Resolve(parts, parts[0], mgl64.Vec3{-2.4, 0, 0}, removed)
	assert.True(t, ok)
	assert.Equal(t, "bolt_1", slot)
}

func TestResolveIgnoresInstalledAndMismatched(t *testing.T) {
	parts := testParts()
	r := New(DefaultThreshold)

	// bolt_2 is installed; the small-wrench bolt and the cover never match.
	removed := map[string]bool{"bolt_1": true, "obs_bolt": true, "cover": true}
	slot, ok := r.Resolve(parts, parts[0], mgl64.Vec3{2.6, 0, 0}, removed)
	assert.False(t, ok, "got %q", slot)
}

func TestResolveThresholdIsExclusive(t *testing.T) {
	parts := testParts()
	removed := map[string]bool{"bolt_2": true}
	r := New(2)

	_, ok := r.Resolve(parts, parts[1], mgl64.Vec3{2.6, 2, 0}, removed)
	assert.False(t, ok)
	_, ok = r.Resolve(parts, parts[1], mgl64.Vec3{2.6, 1.99, 0}, removed)
	assert.True(t, ok)
}

func TestResolveTieUsesCatalogOrder(t *testing.T) {
	parts := testParts()
	removed := map[string]bool{"bolt_1": true, "bolt_2": true}
	slot, ok := New(0).Resolve(parts, parts[1], mgl64.Vec3{0, 0, 0}, removed)
	assert.True(t, ok)
	assert.Equal(t, "bolt_1", slot)
}

func TestCandidates(t *testing.T) {
	parts := testParts()
	removed := map[string]bool{"bolt_1": true, "bolt_2": true, "obs_bolt": true}
	got := Candidates(parts, parts[1], removed)
	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"bolt_1", "bolt_2"}, ids)
	assert.Empty(t, Candidates(parts, parts[1], nil))
}
