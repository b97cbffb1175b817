package service

import (
	"fmt"

	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
	"github.com/noah-isme/swimlink-api/pkg/timefmt"
)

const (
	defaultMaxTotalSlots  = 4
	defaultMaxSlotsPerDay = 2
)

// SelectionLimits caps how many slots a student may pick.
type SelectionLimits struct {
	MaxTotal  int
	MaxPerDay int
}

// SelectionEngine applies toggles to a selection while enforcing the caps. It holds no
// selection state of its own; every call takes the current selection and returns a new one.
type SelectionEngine struct {
	limits SelectionLimits
}

// NewSelectionEngine constructs a SelectionEngine, falling back to 4 total / 2 per day.
func NewSelectionEngine(limits SelectionLimits) *SelectionEngine {
	if limits.MaxTotal <= 0 {
		limits.MaxTotal = defaultMaxTotalSlots
	}
	if limits.MaxPerDay <= 0 {
		limits.MaxPerDay = defaultMaxSlotsPerDay
	}
	return &SelectionEngine{limits: limits}
}

// Limits exposes the caps in effect.
func (e *SelectionEngine) Limits() SelectionLimits {
	return e.limits
}

// Toggle removes the candidate when selected and otherwise tries to add it. The returned
// selection is always a fresh slice; on rejection it equals current and the error is
// ErrTotalCapExceeded or ErrDailyCapExceeded. Unavailable candidates are ignored.
func (e *SelectionEngine) Toggle(current []models.SelectedSlot, candidate models.SelectedSlot, isAvailable bool) ([]models.SelectedSlot, *appErrors.Error) {
	next := cloneSlots(current)
	if !isAvailable {
		return next, nil
	}

	if idx := indexOfSlot(current, candidate); idx >= 0 {
		return append(next[:idx], next[idx+1:]...), nil
	}

	if len(current) >= e.limits.MaxTotal {
		return next, appErrors.Clone(appErrors.ErrTotalCapExceeded,
			fmt.Sprintf("you can select at most %d time slots", e.limits.MaxTotal))
	}
	if CountForDay(current, candidate.DayOfWeek) >= e.limits.MaxPerDay {
		return next, appErrors.Clone(appErrors.ErrDailyCapExceeded,
			fmt.Sprintf("you can select at most %d time slots on %s", e.limits.MaxPerDay, timefmt.CapitalizeDay(string(candidate.DayOfWeek))))
	}

	return append(next, candidate), nil
}

// Clear empties the selection.
func (e *SelectionEngine) Clear() []models.SelectedSlot {
	return []models.SelectedSlot{}
}

// Remaining reports how many more slots may be added in total.
func (e *SelectionEngine) Remaining(current []models.SelectedSlot) int {
	remaining := e.limits.MaxTotal - len(current)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CountForDay counts selected slots on day.
func CountForDay(current []models.SelectedSlot, day models.Weekday) int {
	count := 0
	for _, s := range current {
		if s.DayOfWeek == day {
			count++
		}
	}
	return count
}

// IsSelected reports whether the triple is part of the selection.
func IsSelected(current []models.SelectedSlot, slot models.SelectedSlot) bool {
	return indexOfSlot(current, slot) >= 0
}

// DayCounts returns per-day counts for all seven days.
func DayCounts(current []models.SelectedSlot) map[models.Weekday]int {
	counts := make(map[models.Weekday]int, len(models.Weekdays))
	for _, day := range models.Weekdays {
		counts[day] = 0
	}
	for _, s := range current {
		counts[s.DayOfWeek]++
	}
	return counts
}

func indexOfSlot(current []models.SelectedSlot, slot models.SelectedSlot) int {
	for i, s := range current {
		if s == slot {
			return i
		}
	}
	return -1
}

func cloneSlots(slots []models.SelectedSlot) []models.SelectedSlot {
	out := make([]models.SelectedSlot, len(slots), len(slots)+1)
	copy(out, slots)
	return out
}
