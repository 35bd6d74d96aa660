package hours

import (
	"strconv"
	"strings"
)

// weekdayIndex maps lowercase weekday names and 3-letter prefixes to
// time.Weekday values (Sunday = 0)
var weekdayIndex = map[string]int{
	"sunday": 0, "sun": 0,
	"monday": 1, "mon": 1,
	"tuesday": 2, "tue": 2, "tues": 2,
	"wednesday": 3, "wed": 3,
	"thursday": 4, "thu": 4, "thur": 4, "thurs": 4,
	"friday": 5, "fri": 5,
	"saturday": 6, "sat": 6,
}

// parseWeek normalizes any accepted schedule shape into per-day segments.
// Unknown shapes and unknown days are skipped, never rejected.
func parseWeek(source any) week {
	var w week
	switch v := source.(type) {
	case map[string]any:
		for day, val := range v {
			d, ok := weekdayIndex[strings.ToLower(strings.TrimSpace(day))]
			if !ok {
				continue
			}
			w[d] = append(w[d], parseDayValue(val)...)
		}
	case []any:
		for _, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			day, _ := m["day"].(string)
			d, ok := weekdayIndex[strings.ToLower(strings.TrimSpace(day))]
			if !ok {
				continue
			}
			if val, ok := m["value"]; ok {
				w[d] = append(w[d], parseDayValue(val)...)
				continue
			}
			w[d] = append(w[d], parseDayValue(m)...)
		}
	case string:
		segs := parseDayValue(v)
		if len(segs) > 0 {
			for d := range w {
				w[d] = append(w[d], segs...)
			}
		}
	}
	return w
}

// parseDayValue parses one day's value: a "9:00 AM - 10:00 PM" style range
// string or a structured {open, close} pair
func parseDayValue(val any) []Segment {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" || strings.EqualFold(s, "closed") {
			return nil
		}
		return []Segment{parseRange(s)}
	case map[string]any:
		open, _ := v["open"].(string)
		close, _ := v["close"].(string)
		if open == "" && close == "" {
			return nil
		}
		return []Segment{makeSegment(parseClock(open), parseClock(close))}
	}
	return nil
}

// parseRange splits "9:00 AM - 10:00 PM" on the first dash variant.
// A malformed range degrades to a zero-length segment that matches nothing.
func parseRange(s string) Segment {
	for _, dash := range []string{"–", "—", " - ", "-"} {
		if i := strings.Index(s, dash); i > 0 {
			open := parseClock(s[:i])
			close := parseClock(s[i+len(dash):])
			return makeSegment(open, close)
		}
	}
	return Segment{}
}

// makeSegment marks close <= open as crossing midnight, except the
// zero-length case produced by malformed input
func makeSegment(open, close int) Segment {
	if open == 0 && close == 0 {
		return Segment{}
	}
	return Segment{Start: open, End: close, CrossesMidnight: close <= open}
}

// parseClock turns "9:00 AM", "9 PM", "21:00" or "930pm" style text into a
// minute of day. Malformed input yields 0.
func parseClock(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	if s == "midnight" {
		return 0
	}
	if s == "noon" {
		return 12 * 60
	}

	pm := strings.Contains(s, "pm") || strings.Contains(s, "p.m")
	am := strings.Contains(s, "am") || strings.Contains(s, "a.m")
	for _, suffix := range []string{"a.m.", "p.m.", "a.m", "p.m", "am", "pm"} {
		s = strings.TrimSuffix(strings.TrimSpace(s), suffix)
	}
	s = strings.TrimSpace(s)

	var hh, mm int
	if i := strings.IndexByte(s, ':'); i >= 0 {
		h, err1 := strconv.Atoi(strings.TrimSpace(s[:i]))
		m, err2 := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err1 != nil || err2 != nil {
			return 0
		}
		hh, mm = h, m
	} else {
		h, err := strconv.Atoi(s)
		if err != nil {
			return 0
		}
		// compact "930" style: trailing two digits are the minutes
		if h >= 100 {
			hh, mm = h/100, h%100
		} else {
			hh = h
		}
	}

	if hh < 0 || hh > 24 || mm < 0 || mm > 59 {
		return 0
	}
	if pm && hh < 12 {
		hh += 12
	}
	if am && hh == 12 {
		hh = 0
	}
	if hh >= 24 {
		hh -= 24
	}
	return hh*60 + mm
}
