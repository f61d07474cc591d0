// Package automation evaluates automation lanes into concrete values at a
// tick, and dispatches them to their routed targets once per tick (spec.md
// §4.5). Grounded on spec.md §4.5's exact interpolation formulas; shaped
// after the donor's internal/modulation/modulation.go convention of pure,
// stateless functions operating on a settings/lane struct with no hidden
// state — the donor has no automation lanes itself, so the interpolation
// logic here is new (SPEC_FULL.md §C supplemented feature).
package automation

import "github.com/schollz/voicecore/internal/state"

// ValueAt evaluates lane at tick per spec.md §4.5:
//   - before the first point: the first point's value
//   - after the last point: the last point's value
//   - otherwise, interpolate between the bracketing points per their left
//     point's curve kind
func ValueAt(lane state.Lane, tick int64) float64 {
	points := lane.Points
	if len(points) == 0 {
		return 0
	}
	if tick <= points[0].Tick {
		return points[0].Value
	}
	last := points[len(points)-1]
	if tick >= last.Tick {
		return last.Value
	}

	for i := 0; i < len(points)-1; i++ {
		p0, p1 := points[i], points[i+1]
		if tick >= p0.Tick && tick <= p1.Tick {
			if p1.Tick == p0.Tick {
				return p0.Value
			}
			u := float64(tick-p0.Tick) / float64(p1.Tick-p0.Tick)
			return interpolate(p0.Curve, u, p0.Value, p1.Value)
		}
	}
	return last.Value
}

func interpolate(curve state.CurveKind, u, v0, v1 float64) float64 {
	switch curve {
	case state.CurveExponential:
		return v0 + (u*u)*(v1-v0)
	case state.CurveStep:
		if u < 1 {
			return v0
		}
		return v1
	case state.CurveSCurve:
		s := 3*u*u - 2*u*u*u
		return v0 + s*(v1-v0)
	default: // CurveLinear
		return v0 + u*(v1-v0)
	}
}

// Clamp forces v into the lane's configured [Min, Max] range.
func Clamp(lane state.Lane, v float64) float64 {
	if lane.Max > lane.Min {
		if v < lane.Min {
			return lane.Min
		}
		if v > lane.Max {
			return lane.Max
		}
	}
	return v
}

// Dispatcher applies an evaluated automation value to its routed target.
// Implemented by internal/routing.Builder; kept as a narrow interface here
// so this package doesn't need to import routing.
type Dispatcher interface {
	ApplyAutomation(target state.AutomationTarget, value float64) error
}

// BPMSetter receives BPM-target automation directly, since BPM affects
// local tick arithmetic rather than a remote node (spec.md §4.5).
type BPMSetter interface {
	SetBPM(bpm float64)
}

// Evaluate runs every enabled lane in automation at tick and dispatches its
// value: BPM lanes go to bpm, everything else through dispatcher
// (spec.md §4.5 "Application"). Duplicate writes at unchanged values are
// permitted; callers need not dedupe.
func Evaluate(automation state.Automation, tick int64, dispatcher Dispatcher, bpm BPMSetter) error {
	for _, lane := range automation.Lanes {
		if !lane.Enabled || len(lane.Points) == 0 {
			continue
		}
		value := Clamp(lane, ValueAt(lane, tick))
		if lane.Target.Kind == state.TargetBPM {
			if bpm != nil {
				bpm.SetBPM(value)
			}
			continue
		}
		if dispatcher == nil {
			continue
		}
		if err := dispatcher.ApplyAutomation(lane.Target, value); err != nil {
			return err
		}
	}
	return nil
}
