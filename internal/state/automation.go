package state

// CurveKind tags how a point interpolates towards the next point.
type CurveKind int

const (
	CurveLinear CurveKind = iota
	CurveExponential
	CurveStep
	CurveSCurve
)

// AutomationTargetKind tags what an automation lane drives.
type AutomationTargetKind int

const (
	TargetFilterCutoff AutomationTargetKind = iota
	TargetFilterResonance
	TargetEffectParam
	TargetEQBandParam
	TargetSendLevel
	TargetBusLevel
	TargetMasterLevel
	TargetBPM
)

// AutomationTarget addresses a routable parameter. Not every field is used
// by every Kind; each kind reads only the fields it needs (spec.md §3.1:
// "a tagged variant ... each carrying the necessary addressing").
type AutomationTarget struct {
	Kind         AutomationTargetKind
	InstrumentID int
	EffectIndex  int
	EQBandIndex  int
	ParamName    string
	SendBusID    int
	BusID        int
}

// Point is one control point in an automation lane.
type Point struct {
	Tick  int64
	Value float64
	Curve CurveKind
}

// Lane is an ordered, time-sorted sequence of automation points driving one
// target.
type Lane struct {
	ID      int
	Target  AutomationTarget
	Enabled bool
	Min     float64
	Max     float64
	Points  []Point // sorted by Tick, non-decreasing (spec.md §8 invariant)
}

// Automation is the full set of automation lanes carried in a snapshot.
type Automation struct {
	Lanes []Lane
}

// Clone returns a value copy safe to hand across the bus.
func (a Automation) Clone() Automation {
	out := Automation{Lanes: make([]Lane, len(a.Lanes))}
	for i, l := range a.Lanes {
		l.Points = append([]Point(nil), l.Points...)
		out.Lanes[i] = l
	}
	return out
}

// InsertPoint inserts or replaces the point at the given tick, maintaining
// tick order (spec.md §8 round-trip: "inserting a point at an existing tick
// replaces its value").
func (l *Lane) InsertPoint(tick int64, value float64, curve CurveKind) {
	for i := range l.Points {
		if l.Points[i].Tick == tick {
			l.Points[i].Value = value
			l.Points[i].Curve = curve
			return
		}
		if l.Points[i].Tick > tick {
			l.Points = append(l.Points, Point{})
			copy(l.Points[i+1:], l.Points[i:])
			l.Points[i] = Point{Tick: tick, Value: value, Curve: curve}
			return
		}
	}
	l.Points = append(l.Points, Point{Tick: tick, Value: value, Curve: curve})
}

// RemovePoint removes the point at the given tick, if one exists
// (spec.md §8: "removing the only point at a tick clears it").
func (l *Lane) RemovePoint(tick int64) {
	for i := range l.Points {
		if l.Points[i].Tick == tick {
			l.Points = append(l.Points[:i], l.Points[i+1:]...)
			return
		}
	}
}
