package models

import (
	"sort"

	"github.com/noah-isme/swimlink-api/pkg/timefmt"
)

// SelectedSlot identifies a chosen slot. Two slots are the same slot when all three fields match.
type SelectedSlot struct {
	DayOfWeek Weekday `json:"dayOfWeek"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
}

// Before orders slots by canonical day, then start time, then end time.
func (s SelectedSlot) Before(other SelectedSlot) bool {
	if di, dj := s.DayOfWeek.Index(), other.DayOfWeek.Index(); di != dj {
		return di < dj
	}
	si, _ := timefmt.ParseClock(s.StartTime)
	sj, _ := timefmt.ParseClock(other.StartTime)
	if si != sj {
		return si < sj
	}
	ei, _ := timefmt.ParseClock(s.EndTime)
	ej, _ := timefmt.ParseClock(other.EndTime)
	return ei < ej
}

// SortSlots returns a sorted copy of slots.
func SortSlots(slots []SelectedSlot) []SelectedSlot {
	sorted := make([]SelectedSlot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})
	return sorted
}
