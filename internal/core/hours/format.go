package hours

import (
	"fmt"
	"time"
)

// formatClock renders a minute of day as 12-hour clock text, e.g. "5:00 PM"
func formatClock(minute int) string {
	minute %= minutesPerDay
	if minute < 0 {
		minute += minutesPerDay
	}
	hh := minute / 60
	mm := minute % 60

	suffix := "AM"
	switch {
	case hh == 0:
		hh = 12
	case hh == 12:
		suffix = "PM"
	case hh > 12:
		hh -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hh, mm, suffix)
}

// dayLabel renders a relative day suffix: nothing for today, "tomorrow" for
// one day out, a 3-letter weekday beyond that
func dayLabel(ahead, weekday int) string {
	switch ahead {
	case 0:
		return ""
	case 1:
		return " tomorrow"
	default:
		return " " + time.Weekday(weekday).String()[:3]
	}
}
