// Package otime provides rational time values and time ranges.
//
// A RationalTime is a value counted at a rate (frames per second for video,
// 1 for seconds). Values of different rates are rescaled before they are
// combined, so arithmetic never fails on a rate mismatch.
package otime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sentinel errors for parsing
var (
	// ErrInvalidRate indicates a rate that is zero, negative or not finite
	ErrInvalidRate = errors.New("invalid time rate")

	// ErrInvalidTimecode indicates a malformed timecode string
	ErrInvalidTimecode = errors.New("invalid timecode")
)

// RationalTime is an immutable time value expressed as Value units at Rate
// units per second.
type RationalTime struct {
	Value float64
	Rate  float64
}

// Invalid is the zero-rate time used to mark "no time".
var Invalid = RationalTime{}

// New creates a time value.
func New(value, rate float64) RationalTime {
	return RationalTime{Value: value, Rate: rate}
}

// FromSeconds creates a time value of s seconds expressed at rate.
func FromSeconds(s, rate float64) RationalTime {
	return RationalTime{Value: s * rate, Rate: rate}
}

// IsValid reports whether the rate is usable.
func (t RationalTime) IsValid() bool {
	return t.Rate > 0 && !math.IsInf(t.Rate, 0) && !math.IsNaN(t.Value)
}

// Seconds returns the time in seconds.
func (t RationalTime) Seconds() float64 {
	if t.Rate == 0 {
		return 0
	}
	return t.Value / t.Rate
}

// RescaledTo returns the same instant expressed at rate.
func (t RationalTime) RescaledTo(rate float64) RationalTime {
	return RationalTime{Value: t.ValueRescaledTo(rate), Rate: rate}
}

// ValueRescaledTo returns the value the time would have at rate.
func (t RationalTime) ValueRescaledTo(rate float64) float64 {
	if rate == t.Rate || t.Rate == 0 {
		return t.Value
	}
	return t.Value * rate / t.Rate
}

// Add returns t + o in t's rate.
func (t RationalTime) Add(o RationalTime) RationalTime {
	return RationalTime{Value: t.Value + o.ValueRescaledTo(t.Rate), Rate: t.Rate}
}

// Sub returns t - o in t's rate.
func (t RationalTime) Sub(o RationalTime) RationalTime {
	return RationalTime{Value: t.Value - o.ValueRescaledTo(t.Rate), Rate: t.Rate}
}

// Neg returns -t.
func (t RationalTime) Neg() RationalTime {
	return RationalTime{Value: -t.Value, Rate: t.Rate}
}

// Floor rounds the value down to a whole unit.
func (t RationalTime) Floor() RationalTime {
	return RationalTime{Value: math.Floor(t.Value), Rate: t.Rate}
}

// Ceil rounds the value up to a whole unit.
func (t RationalTime) Ceil() RationalTime {
	return RationalTime{Value: math.Ceil(t.Value), Rate: t.Rate}
}

// Round rounds the value to the nearest whole unit.
func (t RationalTime) Round() RationalTime {
	return RationalTime{Value: math.Round(t.Value), Rate: t.Rate}
}

// Compare returns -1, 0 or 1. Times of different rates are compared by
// cross multiplication so no rounding is introduced.
func (t RationalTime) Compare(o RationalTime) int {
	a := t.Value * o.Rate
	b := o.Value * t.Rate
	if t.Rate == o.Rate {
		a, b = t.Value, o.Value
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports whether both times denote the same instant.
func (t RationalTime) Equal(o RationalTime) bool { return t.Compare(o) == 0 }

// Less reports whether t is strictly before o.
func (t RationalTime) Less(o RationalTime) bool { return t.Compare(o) < 0 }

// Min returns the earlier of two times.
func Min(a, b RationalTime) RationalTime {
	if b.Less(a) {
		return b
	}
	return a
}

// Max returns the later of two times.
func Max(a, b RationalTime) RationalTime {
	if a.Less(b) {
		return b
	}
	return a
}

// String formats the time as a timecode HH:MM:SS:FF.
func (t RationalTime) String() string {
	if !t.IsValid() {
		return "--:--:--:--"
	}
	fps := int64(math.Round(t.Rate))
	if fps <= 0 {
		fps = 1
	}
	frames := int64(math.Floor(t.Value))
	sign := ""
	if frames < 0 {
		sign = "-"
		frames = -frames
	}
	ff := frames % fps
	totalSeconds := frames / fps
	return fmt.Sprintf("%s%02d:%02d:%02d:%02d",
		sign, totalSeconds/3600, (totalSeconds/60)%60, totalSeconds%60, ff)
}

// Parse reads a timecode (HH:MM:SS:FF), a frame number, or seconds with an
// "s" suffix, returning a time at rate.
func Parse(s string, rate float64) (RationalTime, error) {
	if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
		return Invalid, ErrInvalidRate
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Invalid, ErrInvalidTimecode
	}

	if strings.HasSuffix(s, "s") {
		secs, err := strconv.ParseFloat(strings.TrimSuffix(s, "s"), 64)
		if err != nil {
			return Invalid, fmt.Errorf("%w: %q", ErrInvalidTimecode, s)
		}
		return FromSeconds(secs, rate).Floor(), nil
	}

	if !strings.Contains(s, ":") {
		frame, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Invalid, fmt.Errorf("%w: %q", ErrInvalidTimecode, s)
		}
		return New(frame, rate), nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Invalid, fmt.Errorf("%w: %q", ErrInvalidTimecode, s)
	}
	var fields [4]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return Invalid, fmt.Errorf("%w: %q", ErrInvalidTimecode, s)
		}
		fields[i] = n
	}
	fps := math.Round(rate)
	seconds := float64(fields[0]*3600 + fields[1]*60 + fields[2])
	return New(seconds*fps+float64(fields[3]), rate), nil
}
