// Package timerange provides minute-precision arithmetic over "HH:MM"
// clock times and half-open [start, end) ranges within a single day.
package timerange

import (
	"errors"
	"fmt"
	"sort"
)

// Minutes counts minutes from midnight. The valid span is 0 through
// EndOfDay inclusive; EndOfDay (24:00) is only meaningful as a range end.
type Minutes int

const (
	EndOfDay Minutes = 24 * 60
	Hour     Minutes = 60
)

var (
	ErrBadFormat       = errors.New("time must be in HH:MM format")
	ErrCrossesMidnight = errors.New("time range crosses midnight")
)

// Parse converts an "HH:MM" string to Minutes. "24:00" is accepted as the
// end-of-day boundary.
func Parse(s string) (Minutes, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrBadFormat, s)
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadFormat, s)
	}
	return Minutes(h*60 + m), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

func (m Minutes) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

func (m Minutes) Valid() bool {
	return m >= 0 && m <= EndOfDay
}

// ComputeEnd adds a whole number of hours to a start time. Ranges that
// would extend past midnight are rejected rather than wrapped; a range
// ending exactly at 24:00 is allowed.
func ComputeEnd(start Minutes, hours int) (Minutes, error) {
	if hours <= 0 {
		return 0, fmt.Errorf("hours must be positive, got %d", hours)
	}
	end := start + Minutes(hours)*Hour
	if end > EndOfDay {
		return 0, fmt.Errorf("%w: %s + %dh", ErrCrossesMidnight, start, hours)
	}
	return end, nil
}

// Range is a half-open interval [Start, End) within one day.
type Range struct {
	Start Minutes
	End   Minutes
}

func (r Range) IsValid() bool {
	return r.Start >= 0 && r.End <= EndOfDay && r.Start < r.End
}

func (r Range) Duration() Minutes {
	return r.End - r.Start
}

// Overlaps reports whether two half-open ranges intersect:
// a.Start < b.End && b.Start < a.End.
func Overlaps(a, b Range) bool {
	return a.Start < b.End && b.Start < a.End
}

// Contains reports whether inner lies entirely within r.
func (r Range) Contains(inner Range) bool {
	return r.Start <= inner.Start && inner.End <= r.End
}

// Subtract removes every busy range from the window and returns the free
// sub-windows in ascending order. Busy ranges may overlap each other and
// may extend beyond the window.
func Subtract(window Range, busy []Range) []Range {
	if !window.IsValid() {
		return nil
	}

	sorted := make([]Range, 0, len(busy))
	for _, b := range busy {
		if Overlaps(window, b) {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	free := make([]Range, 0, len(sorted)+1)
	cursor := window.Start
	for _, b := range sorted {
		if b.Start > cursor {
			free = append(free, Range{Start: cursor, End: min(b.Start, window.End)})
		}
		if b.End > cursor {
			cursor = b.End
		}
		if cursor >= window.End {
			return free
		}
	}
	if cursor < window.End {
		free = append(free, Range{Start: cursor, End: window.End})
	}
	return free
}

// StartsWithin returns the start times stepped every step minutes from the
// beginning of each window such that a slot of the given duration still
// fits inside that window.
func StartsWithin(windows []Range, duration, step Minutes) []Minutes {
	if duration <= 0 || step <= 0 {
		return nil
	}
	var starts []Minutes
	for _, w := range windows {
		for s := w.Start; s+duration <= w.End; s += step {
			starts = append(starts, s)
		}
	}
	return starts
}
