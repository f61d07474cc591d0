package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/voicecore/internal/state"
)

func laneWith(points ...state.Point) state.Lane {
	return state.Lane{Min: 0, Max: 1000, Points: points}
}

func TestValueAtBeforeFirstPoint(t *testing.T) {
	lane := laneWith(state.Point{Tick: 100, Value: 5})
	assert.Equal(t, 5.0, ValueAt(lane, 0))
}

func TestValueAtAfterLastPoint(t *testing.T) {
	lane := laneWith(state.Point{Tick: 0, Value: 1}, state.Point{Tick: 100, Value: 9})
	assert.Equal(t, 9.0, ValueAt(lane, 500))
}

func TestValueAtLinearMidpoint(t *testing.T) {
	lane := laneWith(
		state.Point{Tick: 0, Value: 0, Curve: state.CurveLinear},
		state.Point{Tick: 100, Value: 10},
	)
	assert.InDelta(t, 5.0, ValueAt(lane, 50), 1e-9)
}

func TestValueAtExponentialIsU2(t *testing.T) {
	lane := laneWith(
		state.Point{Tick: 0, Value: 0, Curve: state.CurveExponential},
		state.Point{Tick: 100, Value: 100},
	)
	// u = 0.5 -> u^2 = 0.25 -> value = 25
	assert.InDelta(t, 25.0, ValueAt(lane, 50), 1e-9)
}

func TestValueAtStepHoldsUntilNextPoint(t *testing.T) {
	lane := laneWith(
		state.Point{Tick: 0, Value: 1, Curve: state.CurveStep},
		state.Point{Tick: 100, Value: 9},
	)
	assert.Equal(t, 1.0, ValueAt(lane, 50))
	assert.Equal(t, 9.0, ValueAt(lane, 100))
}

func TestValueAtSCurveMidpointIsHalfway(t *testing.T) {
	lane := laneWith(
		state.Point{Tick: 0, Value: 0, Curve: state.CurveSCurve},
		state.Point{Tick: 100, Value: 100},
	)
	// smoothstep(0.5) = 3*0.25 - 2*0.125 = 0.5
	assert.InDelta(t, 50.0, ValueAt(lane, 50), 1e-9)
}

type fakeDispatcher struct {
	calls []state.AutomationTarget
	last  float64
}

func (f *fakeDispatcher) ApplyAutomation(target state.AutomationTarget, value float64) error {
	f.calls = append(f.calls, target)
	f.last = value
	return nil
}

type fakeBPM struct {
	bpm float64
}

func (f *fakeBPM) SetBPM(bpm float64) { f.bpm = bpm }

func TestEvaluateRoutesBPMSeparately(t *testing.T) {
	automationSet := state.Automation{Lanes: []state.Lane{
		{Enabled: true, Target: state.AutomationTarget{Kind: state.TargetBPM}, Min: 0, Max: 300,
			Points: []state.Point{{Tick: 0, Value: 140}}},
		{Enabled: true, Target: state.AutomationTarget{Kind: state.TargetFilterCutoff, InstrumentID: 1}, Min: 0, Max: 2000,
			Points: []state.Point{{Tick: 0, Value: 800}}},
	}}

	dispatcher := &fakeDispatcher{}
	bpmSetter := &fakeBPM{}
	require.NoError(t, Evaluate(automationSet, 0, dispatcher, bpmSetter))

	assert.Equal(t, 140.0, bpmSetter.bpm)
	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, state.TargetFilterCutoff, dispatcher.calls[0].Kind)
	assert.Equal(t, 800.0, dispatcher.last)
}

func TestEvaluateSkipsDisabledLanes(t *testing.T) {
	automationSet := state.Automation{Lanes: []state.Lane{
		{Enabled: false, Target: state.AutomationTarget{Kind: state.TargetFilterCutoff}, Points: []state.Point{{Tick: 0, Value: 1}}},
	}}
	dispatcher := &fakeDispatcher{}
	require.NoError(t, Evaluate(automationSet, 0, dispatcher, nil))
	assert.Empty(t, dispatcher.calls)
}

func TestClampBounds(t *testing.T) {
	lane := state.Lane{Min: 0, Max: 10}
	assert.Equal(t, 10.0, Clamp(lane, 50))
	assert.Equal(t, 0.0, Clamp(lane, -5))
	assert.Equal(t, 4.0, Clamp(lane, 4))
}
