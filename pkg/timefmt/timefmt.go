// Package timefmt holds display helpers for wall-clock times and day names.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds clock values produced by ParseClock.
const MinutesPerDay = 24 * 60

// ParseClock converts "HH:MM", "HH:MM:SS", "h:mm am" or "9pm" into minutes after midnight.
func ParseClock(raw string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	meridiem := ""
	switch {
	case strings.HasSuffix(s, "am"):
		meridiem = "am"
	case strings.HasSuffix(s, "pm"):
		meridiem = "pm"
	}
	if meridiem != "" {
		s = strings.TrimSpace(strings.TrimSuffix(s, meridiem))
		s = strings.TrimSuffix(s, ".")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minute := 0
	if len(parts) >= 2 {
		if len(parts[1]) != 2 {
			return 0, false
		}
		if minute, err = strconv.Atoi(parts[1]); err != nil {
			return 0, false
		}
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, false
		}
	}
	if minute < 0 || minute > 59 {
		return 0, false
	}

	switch meridiem {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour == 12 {
			hour = 0
		}
		if meridiem == "pm" {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, false
		}
	}

	return hour*60 + minute, true
}

// FormatClock renders minutes after midnight as zero padded "HH:MM".
func FormatClock(minutes int) string {
	if minutes < 0 || minutes >= MinutesPerDay {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Normalize rewrites any accepted clock notation into "HH:MM".
func Normalize(raw string) (string, bool) {
	minutes, ok := ParseClock(raw)
	if !ok {
		return "", false
	}
	return FormatClock(minutes), true
}

// To12Hour renders a 24h clock string as "h:mm AM". Unparsable input is returned unchanged.
func To12Hour(raw string) string {
	minutes, ok := ParseClock(raw)
	if !ok {
		return raw
	}
	hour := minutes / 60
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minutes%60, suffix)
}

// CapitalizeDay turns "monday" into "Monday".
func CapitalizeDay(day string) string {
	day = strings.TrimSpace(day)
	if day == "" {
		return ""
	}
	return strings.ToUpper(day[:1]) + strings.ToLower(day[1:])
}
