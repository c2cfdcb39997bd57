package player

import (
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/otime"
)

// window is the input of the active range computation
type window struct {
	current     otime.RationalTime
	direction   domain.CacheDirection
	readAhead   time.Duration
	readBehind  time.Duration
	audioOffset float64
	inOut       otime.TimeRange
	global      otime.TimeRange
}

// activeRanges returns the ranges that should be resident: a window around
// the current time oriented by the cache direction, widened by the audio
// offset and wrapped into the in/out range.
func activeRanges(w window) []otime.TimeRange {
	rate := w.current.Rate
	before, after := w.readBehind, w.readAhead
	if w.direction == domain.CacheReverse {
		before, after = after, before
	}
	early := max(w.audioOffset, 0)
	late := max(-w.audioOffset, 0)

	start := w.current.
		Sub(otime.FromSeconds(before.Seconds(), rate)).
		Sub(otime.FromSeconds(early, rate)).
		Floor()
	end := w.current.
		Add(otime.FromSeconds(after.Seconds(), rate).Floor()).
		Add(otime.FromSeconds(late, rate)).
		Floor()
	span := otime.RangeFromStartEndInclusive(start, end)

	bound := otime.RangeFromStartEndInclusive(
		w.inOut.Start.Sub(otime.FromSeconds(early, rate)).Floor(),
		w.inOut.EndInclusive().Add(otime.FromSeconds(late, rate)).Ceil(),
	)
	if clipped, ok := bound.Intersection(w.global); ok {
		bound = clipped
	} else {
		bound = w.inOut
	}
	return otime.LoopRange(span, bound)
}

func inRanges(t otime.RationalTime, ranges []otime.TimeRange) bool {
	return slices.ContainsFunc(ranges, func(r otime.TimeRange) bool { return r.Contains(t) })
}

func secondInRanges(s int64, ranges []otime.TimeRange) bool {
	sr := otime.SecondRange(s)
	return slices.ContainsFunc(ranges, func(r otime.TimeRange) bool { return r.Intersects(sr) })
}

// coalesceFrames merges a set of frame times into contiguous ranges at rate
func coalesceFrames[V any](frames map[otime.RationalTime]V, rate float64) []otime.TimeRange {
	values := lo.Map(lo.Keys(frames), func(t otime.RationalTime, _ int) float64 {
		return t.ValueRescaledTo(rate)
	})
	slices.Sort(values)
	return coalesce(values, func(first, last float64) otime.TimeRange {
		return otime.RangeFromStartEndInclusive(otime.New(first, rate), otime.New(last, rate))
	})
}

// coalesceSeconds merges cached seconds into contiguous ranges expressed at rate
func coalesceSeconds[V any](seconds map[int64]V, rate float64) []otime.TimeRange {
	values := lo.Map(lo.Keys(seconds), func(s int64, _ int) float64 { return float64(s) })
	slices.Sort(values)
	return coalesce(values, func(first, last float64) otime.TimeRange {
		return otime.RangeFromStartEndExclusive(otime.FromSeconds(first, rate), otime.FromSeconds(last+1, rate))
	})
}

func coalesce(sorted []float64, mk func(first, last float64) otime.TimeRange) []otime.TimeRange {
	var out []otime.TimeRange
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1]-sorted[j] <= 1 {
			j++
		}
		out = append(out, mk(sorted[i], sorted[j]))
		i = j + 1
	}
	return out
}

// fillPercentage is the share of frames of the active ranges present in
// the cache, in [0, 100].
func fillPercentage[V any](frames map[otime.RationalTime]V, ranges []otime.TimeRange) float64 {
	total := lo.SumBy(ranges, func(r otime.TimeRange) int { return r.FrameCount() })
	if total == 0 {
		return 0
	}
	resident := lo.CountBy(lo.Keys(frames), func(t otime.RationalTime) bool { return inRanges(t, ranges) })
	return math.Max(0, math.Min(100, float64(resident)/float64(total)*100))
}
