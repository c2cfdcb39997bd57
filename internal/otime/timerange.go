package otime

import (
	"fmt"
	"iter"
	"math"
)

// TimeRange is a start time plus a duration.
type TimeRange struct {
	Start    RationalTime
	Duration RationalTime
}

// InvalidRange marks "no range".
var InvalidRange = TimeRange{}

// NewRange creates a range from a start and a duration.
func NewRange(start, duration RationalTime) TimeRange {
	return TimeRange{Start: start, Duration: duration.RescaledTo(start.Rate)}
}

// RangeFromStartEndInclusive creates a range covering start through end,
// end being the last unit inside the range.
func RangeFromStartEndInclusive(start, end RationalTime) TimeRange {
	d := end.Sub(start.RescaledTo(end.Rate))
	return TimeRange{
		Start:    start,
		Duration: New(d.Value+1, end.Rate).RescaledTo(start.Rate),
	}
}

// RangeFromStartEndExclusive creates a range covering [start, end).
func RangeFromStartEndExclusive(start, end RationalTime) TimeRange {
	return TimeRange{Start: start, Duration: end.Sub(start).RescaledTo(start.Rate)}
}

// IsValid reports whether the range has a usable rate and a positive
// duration.
func (r TimeRange) IsValid() bool {
	return r.Start.IsValid() && r.Duration.Value > 0
}

// Rate returns the rate of the range's start time.
func (r TimeRange) Rate() float64 { return r.Start.Rate }

// EndExclusive returns the first time after the range.
func (r TimeRange) EndExclusive() RationalTime {
	return r.Start.Add(r.Duration)
}

// EndInclusive returns the last whole unit inside the range. A duration of
// one unit or less returns the start time.
func (r TimeRange) EndInclusive() RationalTime {
	end := r.EndExclusive()
	if r.Duration.ValueRescaledTo(r.Start.Rate) <= 1 {
		return r.Start
	}
	if r.Duration.Value != math.Floor(r.Duration.Value) {
		return end.Floor()
	}
	return New(end.Value-1, end.Rate)
}

// Contains reports whether start <= t < endExclusive.
func (r TimeRange) Contains(t RationalTime) bool {
	return !t.Less(r.Start) && t.Less(r.EndExclusive())
}

// ContainsRange reports whether o lies entirely inside r.
func (r TimeRange) ContainsRange(o TimeRange) bool {
	return !o.Start.Less(r.Start) && !r.EndExclusive().Less(o.EndExclusive())
}

// Intersects reports whether the ranges share any time.
func (r TimeRange) Intersects(o TimeRange) bool {
	return r.Start.Less(o.EndExclusive()) && o.Start.Less(r.EndExclusive())
}

// Intersection returns the shared part of both ranges in r's rate, and false
// when they do not overlap.
func (r TimeRange) Intersection(o TimeRange) (TimeRange, bool) {
	if !r.Intersects(o) {
		return InvalidRange, false
	}
	start := Max(r.Start, o.Start).RescaledTo(r.Rate())
	end := Min(r.EndExclusive(), o.EndExclusive()).RescaledTo(r.Rate())
	return RangeFromStartEndExclusive(start, end), true
}

// RescaledTo returns the range expressed at rate.
func (r TimeRange) RescaledTo(rate float64) TimeRange {
	return TimeRange{Start: r.Start.RescaledTo(rate), Duration: r.Duration.RescaledTo(rate)}
}

// Equal reports whether both ranges cover the same interval.
func (r TimeRange) Equal(o TimeRange) bool {
	return r.Start.Equal(o.Start) && r.Duration.Equal(o.Duration)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s - %s]", r.Start, r.EndInclusive())
}

// Frames yields every whole unit in the range, in r's rate.
func (r TimeRange) Frames() iter.Seq[RationalTime] {
	return func(yield func(RationalTime) bool) {
		end := r.EndExclusive().Value
		for v := math.Ceil(r.Start.Value); v < end; v++ {
			if !yield(New(v, r.Start.Rate)) {
				return
			}
		}
	}
}

// FrameCount returns the number of whole units Frames yields.
func (r TimeRange) FrameCount() int {
	n := math.Ceil(r.EndExclusive().Value) - math.Ceil(r.Start.Value)
	if n < 0 {
		return 0
	}
	return int(n)
}

// Seconds yields every integer second the range touches.
func (r TimeRange) Seconds() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		if !r.IsValid() {
			return
		}
		first := int64(math.Floor(r.Start.Seconds()))
		last := int64(math.Floor(r.EndInclusive().Seconds()))
		for s := first; s <= last; s++ {
			if !yield(s) {
				return
			}
		}
	}
}

// SecondRange returns the one-second window starting at integer second s.
func SecondRange(s int64) TimeRange {
	return TimeRange{Start: New(float64(s), 1), Duration: New(1, 1)}
}

// Clamp limits t to [start, endInclusive] of r.
func Clamp(t RationalTime, r TimeRange) RationalTime {
	start := r.Start.RescaledTo(t.Rate)
	end := r.EndInclusive().RescaledTo(t.Rate)
	if t.Less(start) {
		return start
	}
	if end.Less(t) {
		return end
	}
	return t
}

// Loop wraps t into r. The result is start + ((t - start) mod duration),
// expressed in t's rate. The flag reports whether t lay outside
// [start, endInclusive].
func Loop(t RationalTime, r TimeRange) (RationalTime, bool) {
	start := r.Start.RescaledTo(t.Rate)
	end := r.EndInclusive().RescaledTo(t.Rate)
	if !t.Less(start) && !end.Less(t) {
		return t, false
	}
	dur := r.Duration.ValueRescaledTo(t.Rate)
	if dur <= 0 {
		return start, true
	}
	off := math.Mod(t.Value-start.Value, dur)
	if off < 0 {
		off += dur
	}
	out := New(start.Value+off, t.Rate)
	if end.Less(out) {
		out = start
	}
	return out, true
}

// LoopRange splits r against bound, returning zero, one or two disjoint
// ranges inside bound in ascending order:
//   - r inside bound: r itself
//   - r entirely outside bound: nothing
//   - r at least as long as bound: bound
//   - r straddling an edge of bound: the part inside bound plus the overflow
//     wrapped around to the opposite edge
//
// The results are expressed in bound's rate.
func LoopRange(r, bound TimeRange) []TimeRange {
	if !r.IsValid() || !bound.IsValid() {
		return nil
	}
	rate := bound.Rate()
	r = r.RescaledTo(rate)

	bStart, bEnd := bound.Start.Value, bound.EndExclusive().Value
	rStart, rEnd := r.Start.Value, r.EndExclusive().Value

	span := func(a, b float64) TimeRange {
		return RangeFromStartEndExclusive(New(a, rate), New(b, rate))
	}

	switch {
	case rStart >= bStart && rEnd <= bEnd:
		return []TimeRange{r}
	case rEnd <= bStart || rStart >= bEnd:
		return nil
	case r.Duration.Value >= bound.Duration.Value:
		return []TimeRange{bound}
	case rStart < bStart:
		return []TimeRange{
			span(bStart, rEnd),
			span(bEnd-(bStart-rStart), bEnd),
		}
	default:
		return []TimeRange{
			span(bStart, bStart+(rEnd-bEnd)),
			span(rStart, bEnd),
		}
	}
}
