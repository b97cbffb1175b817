package models

import (
	"strings"

	"github.com/noah-isme/swimlink-api/pkg/timefmt"
)

// Weekday is a canonical lower-case day name.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists days in canonical order, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday accepts full day names or three letter abbreviations in any case.
func ParseWeekday(raw string) (Weekday, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if len(s) < 3 {
		return "", false
	}
	for _, day := range Weekdays {
		if s == string(day) || s == string(day)[:3] {
			return day, true
		}
	}
	return "", false
}

// Index returns the canonical position of the day, or -1 when unknown.
func (d Weekday) Index() int {
	for i, day := range Weekdays {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the seven canonical days.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// TimeRange is one bookable block inside a day. 0 <= Enrolled <= Capacity is trusted from upstream.
type TimeRange struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Capacity int    `json:"capacity"`
	Enrolled int    `json:"enrolled"`
}

// AvailableSpots is the remaining capacity of the range.
func (r TimeRange) AvailableSpots() int {
	return r.Capacity - r.Enrolled
}

// DayAvailability holds the ranges offered on a single weekday.
type DayAvailability struct {
	Selected bool        `json:"selected"`
	Ranges   []TimeRange `json:"ranges"`
}

// WeeklyAvailability maps every weekday to its offered ranges.
type WeeklyAvailability map[Weekday]DayAvailability

// EmptyWeek returns an availability map with all seven days present and unselected.
func EmptyWeek() WeeklyAvailability {
	week := make(WeeklyAvailability, len(Weekdays))
	for _, day := range Weekdays {
		week[day] = DayAvailability{Ranges: []TimeRange{}}
	}
	return week
}

// Availability is the normalized schedule of a course.
type Availability struct {
	Days      WeeklyAvailability `json:"days"`
	Flexible  bool               `json:"flexible"`
	Anomalies []string           `json:"anomalies,omitempty"`
}

// BookableSlot flattens a range together with its day for presentation.
type BookableSlot struct {
	DayOfWeek      Weekday `json:"dayOfWeek"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	Capacity       int     `json:"capacity"`
	Enrolled       int     `json:"enrolled"`
	AvailableSpots int     `json:"availableSpots"`
}

// Slots lists every range of the selected days in canonical order, full ranges included.
func (a Availability) Slots() []BookableSlot {
	slots := make([]BookableSlot, 0)
	for _, day := range Weekdays {
		entry, ok := a.Days[day]
		if !ok || !entry.Selected {
			continue
		}
		for _, r := range entry.Ranges {
			slots = append(slots, BookableSlot{
				DayOfWeek:      day,
				StartTime:      r.Start,
				EndTime:        r.End,
				Capacity:       r.Capacity,
				Enrolled:       r.Enrolled,
				AvailableSpots: r.AvailableSpots(),
			})
		}
	}
	return slots
}

// Lookup finds the range matching the slot triple on a selected day.
func (a Availability) Lookup(slot SelectedSlot) (TimeRange, bool) {
	entry, ok := a.Days[slot.DayOfWeek]
	if !ok || !entry.Selected {
		return TimeRange{}, false
	}
	for _, r := range entry.Ranges {
		if sameClock(r.Start, slot.StartTime) && sameClock(r.End, slot.EndTime) {
			return r, true
		}
	}
	return TimeRange{}, false
}

// IsBookable reports whether the slot exists and still has free spots.
func (a Availability) IsBookable(slot SelectedSlot) bool {
	r, ok := a.Lookup(slot)
	return ok && r.AvailableSpots() > 0
}

func sameClock(a, b string) bool {
	am, okA := timefmt.ParseClock(a)
	bm, okB := timefmt.ParseClock(b)
	return okA && okB && am == bm
}
