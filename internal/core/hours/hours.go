// Package hours evaluates loosely structured venue schedules against a
// reference instant. It is pure: callers always pass the instant, the package
// never reads a clock of its own.
package hours

import "time"

// minutesPerDay is the size of the minute-of-day domain [0, 1440)
const minutesPerDay = 24 * 60

// Segment is one open span on a given day in minute-of-day integers.
// A segment whose close is numerically at or before its open crosses midnight
// and its tail belongs to the following day.
type Segment struct {
	Start           int
	End             int
	CrossesMidnight bool
}

// Schedule carries the raw schedule source plus timezone hints.
// Source accepts three shapes: a map keyed by weekday name, an array of
// {day, value} entries, or a single string applied to every day.
type Schedule struct {
	Source           any
	Timezone         string
	UTCOffsetMinutes *int
}

// Status reports the evaluated operating state at the reference instant
type Status struct {
	IsOpen          bool   `json:"is_open"`
	ClosesAtDisplay string `json:"closes_at_display,omitempty"`
	ClosesInMinutes int    `json:"closes_in_minutes,omitempty"`
	NextOpenDisplay string `json:"next_open_display,omitempty"`
}

// Evaluate resolves the venue-local weekday and minute at ref and walks the
// parsed schedule. It returns nil when no timezone information is available
// or the source parses to an empty week; callers must treat nil as
// indeterminate, not as closed.
func Evaluate(s Schedule, ref time.Time) *Status {
	local, ok := localTime(s, ref)
	if !ok {
		return nil
	}
	week := parseWeek(s.Source)
	if week.empty() {
		return nil
	}

	day := int(local.Weekday())
	minute := local.Hour()*60 + local.Minute()

	// open via one of today's non-crossing segments
	for _, seg := range week[day] {
		if seg.zero() {
			continue
		}
		if !seg.CrossesMidnight && minute >= seg.Start && minute < seg.End {
			return &Status{
				IsOpen:          true,
				ClosesAtDisplay: formatClock(seg.End),
				ClosesInMinutes: seg.End - minute,
			}
		}
		if seg.CrossesMidnight && minute >= seg.Start {
			// crossing segment that started today; closes tomorrow
			return &Status{
				IsOpen:          true,
				ClosesAtDisplay: formatClock(seg.End),
				ClosesInMinutes: minutesPerDay - minute + seg.End,
			}
		}
	}

	// open via the tail of yesterday's crossing segment
	yesterday := (day + 6) % 7
	for _, seg := range week[yesterday] {
		if seg.zero() || !seg.CrossesMidnight {
			continue
		}
		if minute < seg.End {
			return &Status{
				IsOpen:          true,
				ClosesAtDisplay: formatClock(seg.End),
				ClosesInMinutes: seg.End - minute,
			}
		}
	}

	return &Status{IsOpen: false, NextOpenDisplay: nextOpen(week, day, minute)}
}

// nextOpen scans forward from day/minute for the first upcoming segment start
// and formats it with a relative day label. The scan covers eight days so a
// venue open only once a week, evaluated after close, lands on the same
// weekday next week.
func nextOpen(week week, day, minute int) string {
	for ahead := 0; ahead <= 7; ahead++ {
		d := (day + ahead) % 7
		best := -1
		for _, seg := range week[d] {
			if seg.zero() {
				continue
			}
			if ahead == 0 && seg.Start <= minute {
				continue
			}
			if best < 0 || seg.Start < best {
				best = seg.Start
			}
		}
		if best >= 0 {
			return formatClock(best) + dayLabel(ahead, d)
		}
	}
	return ""
}

// localTime resolves ref into the venue's local wall time.
// An IANA zone wins over the raw UTC offset; with neither there is no answer.
func localTime(s Schedule, ref time.Time) (time.Time, bool) {
	if s.Timezone != "" {
		if loc, err := time.LoadLocation(s.Timezone); err == nil {
			return ref.In(loc), true
		}
	}
	if s.UTCOffsetMinutes != nil {
		off := *s.UTCOffsetMinutes
		return ref.UTC().Add(time.Duration(off) * time.Minute), true
	}
	return time.Time{}, false
}

// week indexes segments by time.Weekday (Sunday = 0)
type week [7][]Segment

func (w week) empty() bool {
	for _, segs := range w {
		if len(segs) > 0 {
			return false
		}
	}
	return true
}

func (s Segment) zero() bool { return s.Start == 0 && s.End == 0 && !s.CrossesMidnight }
