package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/geometry"
	"github.com/chazu/mechtrainer/pkg/interact"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ geometry.BuildObserver = (*Metrics)(nil)

func TestObserveEvent(t *testing.T) {
	m := New()
	m.ObserveEvent("REDUCER", interact.Event{Outcome: interact.WrongTool, Tool: catalog.ToolHammer, Needed: catalog.ToolWrenchLarge})
	m.ObserveEvent("REDUCER", interact.Event{Outcome: interact.WrongTool, Tool: catalog.ToolHammer, Needed: catalog.ToolWrenchLarge})
	m.ObserveEvent("REDUCER", interact.Event{Outcome: interact.Removal, PartID: "bolt_1"})
	m.ObserveEvent("REDUCER", interact.Event{Outcome: interact.Install, PartID: "bolt_1", SlotID: "bolt_2"})
	m.ObserveEvent("REDUCER", interact.Event{Outcome: interact.Install, PartID: "bolt_1", SlotID: "bolt_1"})
	m.ObserveEvent("REDUCER", interact.Event{Outcome: interact.SnapMiss, PartID: "bolt_1"})
	m.ObserveEvent("REDUCER", interact.Event{Outcome: interact.Ineligible, PartID: "bolt_1"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.wrongTool.WithLabelValues("REDUCER", "HAMMER", "WRENCH_LARGE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.removals.WithLabelValues("REDUCER")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.installs.WithLabelValues("REDUCER", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.installs.WithLabelValues("REDUCER", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapMisses.WithLabelValues("REDUCER")))
}

func TestObserveSession(t *testing.T) {
	m := New()
	m.ObserveRemoved("ENGINE", 3)
	m.ObserveRemoved("ENGINE", 2)
	m.ObserveStep("ENGINE")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.removedParts.WithLabelValues("ENGINE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.steps.WithLabelValues("ENGINE")))
}

func TestObserveBuild(t *testing.T) {
	m := New()
	m.ObserveBuild("gear", 0.01, false)
	m.ObserveBuild("gear", 0.02, false)
	m.ObserveBuild("housing_upper", 0.5, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.geometry.WithLabelValues("gear", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.geometry.WithLabelValues("housing_upper", "fallback")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.geometryTimes))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveStep("REDUCER")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `mechtrainer_session_steps_completed_total{module="REDUCER"} 1`))
}
