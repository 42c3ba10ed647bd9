// Package snap finds the empty slot a dragged part drops into.
//
// Identical parts are fungible: a slot is any removed part with the same
// type and required tool as the dragged one, including the dragged part's
// own slot. The resolver only answers which slot; installing it is up to
// the session.
package snap

import (
	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultThreshold is the largest distance, exclusive, at which a part
// still snaps into a slot.
const DefaultThreshold = 3.5

// Resolver matches drop positions to slots.
type Resolver struct {
	Threshold float64
}

// New returns a resolver with the given threshold. A non-positive
// threshold uses DefaultThreshold.
func New(threshold float64) Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Resolver{Threshold: threshold}
}

// Matches reports whether slot can receive dragged.
func Matches(dragged, slot catalog.Part) bool {
	return slot.Type == dragged.Type && slot.RequiredTool == dragged.RequiredTool
}

// Candidates returns the removed parts that could receive dragged, in
// catalog order.
func Candidates(parts []catalog.Part, dragged catalog.Part, removed map[string]bool) []catalog.Part {
	var out []catalog.Part
	for _, p := range parts {
		if removed[p.ID] && Matches(dragged, p) {
			out = append(out, p)
		}
	}
	return out
}

// Resolve returns the id of the slot whose home position is nearest to
// at, provided it lies strictly within the threshold. Equal distances
// resolve to the earlier part in catalog order.
func (r Resolver) Resolve(parts []catalog.Part, dragged catalog.Part, at mgl64.Vec3, removed map[string]bool) (string, bool) {
	best, bestDist := "", r.Threshold
	for _, slot := range Candidates(parts, dragged, removed) {
		if d := at.Sub(slot.Home.Position).Len(); d < bestDist {
			best, bestDist = slot.ID, d
		}
	}
	return best, best != ""
}
