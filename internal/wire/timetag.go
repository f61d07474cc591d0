package wire

import "time"

// TimeFromOffset returns the absolute wall-clock time offsetSecs in the
// future from now, suitable for osc.NewBundle — go-osc encodes the NTP
// 64-bit timetag (seconds since 1900 + 32-bit fraction) from a time.Time
// internally, so callers work in time.Time rather than raw NTP fields.
func TimeFromOffset(offsetSecs float64) time.Time {
	return time.Now().Add(time.Duration(offsetSecs * float64(time.Second)))
}

// Immediate returns the "execute as soon as received" bundle time.
func Immediate() time.Time {
	return time.Time{}
}
