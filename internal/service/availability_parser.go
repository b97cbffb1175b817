package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/swimlink-api/internal/models"
	"github.com/noah-isme/swimlink-api/pkg/timefmt"
)

const (
	defaultRangeCapacity = 10
	legacyDayNames       = `monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues|tue|wed|thurs|thur|thu|fri|sat|sun`
)

var (
	flexibleMarkers = []string{"flexible", "no fixed", "by appointment", "anytime", "tbd", "to be arranged"}

	legacyDayPattern   = regexp.MustCompile(`\b(` + legacyDayNames + `|weekdays|weekends)s?\b`)
	legacySpanPattern  = regexp.MustCompile(`\b(` + legacyDayNames + `)\s*(?:-|–|to|through|thru)\s*(` + legacyDayNames + `)\b`)
	legacyRangePattern = regexp.MustCompile(`(\d{1,2}(?::\d{2})?)\s*(am|pm)?\s*(?:-|–|to)\s*(\d{1,2}(?::\d{2})?)\s*(am|pm)?`)
)

// AvailabilityParserConfig tunes defaults applied to incomplete schedules.
type AvailabilityParserConfig struct {
	DefaultCapacity int
}

// AvailabilityParser normalizes raw course schedules into weekly availability. It never fails:
// anything it cannot understand degrades to a flexible schedule and is logged.
type AvailabilityParser struct {
	defaultCapacity int
	logger          *zap.Logger
}

// NewAvailabilityParser constructs an AvailabilityParser.
func NewAvailabilityParser(cfg AvailabilityParserConfig, logger *zap.Logger) *AvailabilityParser {
	if cfg.DefaultCapacity <= 0 {
		cfg.DefaultCapacity = defaultRangeCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityParser{defaultCapacity: cfg.DefaultCapacity, logger: logger}
}

type rawDay struct {
	Selected *bool      `json:"selected"`
	Ranges   []rawRange `json:"ranges"`
}

type rawRange struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Capacity  *int   `json:"capacity"`
	Enrolled  *int   `json:"enrolled"`
}

type parseState struct {
	anomalies []string
}

func (s *parseState) anomaly(format string, args ...interface{}) {
	s.anomalies = append(s.anomalies, fmt.Sprintf(format, args...))
}

// Parse interprets a structured schedule, a flexible marker, or legacy free text.
func (p *AvailabilityParser) Parse(courseID string, raw json.RawMessage) models.Availability {
	state := &parseState{}
	result := p.parse(state, bytes.TrimSpace(raw))
	result.Anomalies = state.anomalies
	for _, a := range state.anomalies {
		p.logger.Warn("schedule parse anomaly", zap.String("course_id", courseID), zap.String("anomaly", a))
	}
	return result
}

func (p *AvailabilityParser) parse(state *parseState, raw []byte) models.Availability {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return flexibleAvailability()
	}

	switch raw[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			state.anomaly("schedule is not valid json: %v", err)
			return flexibleAvailability()
		}
		return p.parseStructured(state, fields)
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			state.anomaly("schedule string is not valid json: %v", err)
			return flexibleAvailability()
		}
		return p.parseText(state, text)
	default:
		state.anomaly("unsupported schedule shape starting with %q", raw[0])
		return flexibleAvailability()
	}
}

func (p *AvailabilityParser) parseStructured(state *parseState, fields map[string]json.RawMessage) models.Availability {
	for key, value := range fields {
		if !strings.EqualFold(key, "flexible") {
			continue
		}
		var flexible bool
		if err := json.Unmarshal(value, &flexible); err != nil {
			state.anomaly("flexible marker is not a boolean")
			return flexibleAvailability()
		}
		if flexible {
			return flexibleAvailability()
		}
	}

	week := models.EmptyWeek()
	seen := make(map[models.Weekday]string, len(fields))
	for _, key := range sortedKeys(fields) {
		if strings.EqualFold(key, "flexible") {
			continue
		}
		day, ok := models.ParseWeekday(key)
		if !ok {
			state.anomaly("unknown day %q ignored", key)
			continue
		}
		if prev, dup := seen[day]; dup {
			state.anomaly("day %q duplicates %q and was ignored", key, prev)
			continue
		}
		seen[day] = key

		var entry rawDay
		if err := json.Unmarshal(fields[key], &entry); err != nil {
			state.anomaly("day %s is malformed: %v", day, err)
			continue
		}
		ranges := p.normalizeRanges(state, day, entry.Ranges)
		selected := len(entry.Ranges) > 0
		if entry.Selected != nil {
			selected = *entry.Selected
		}
		week[day] = models.DayAvailability{Selected: selected, Ranges: ranges}
	}

	return models.Availability{Days: week}
}

func (p *AvailabilityParser) normalizeRanges(state *parseState, day models.Weekday, input []rawRange) []models.TimeRange {
	ranges := make([]models.TimeRange, 0, len(input))
	for i, r := range input {
		startRaw, endRaw := r.Start, r.End
		if startRaw == "" {
			startRaw = r.StartTime
		}
		if endRaw == "" {
			endRaw = r.EndTime
		}
		start, okStart := timefmt.ParseClock(startRaw)
		end, okEnd := timefmt.ParseClock(endRaw)
		if !okStart || !okEnd {
			state.anomaly("%s range %d has unparsable times %q-%q", day, i, startRaw, endRaw)
			continue
		}
		if start >= end {
			state.anomaly("%s range %d starts at or after its end", day, i)
			continue
		}
		capacity := p.defaultCapacity
		if r.Capacity != nil {
			capacity = *r.Capacity
		}
		enrolled := 0
		if r.Enrolled != nil {
			enrolled = *r.Enrolled
		}
		if capacity < 0 || enrolled < 0 {
			state.anomaly("%s range %d has negative capacity or enrollment", day, i)
			continue
		}
		ranges = append(ranges, models.TimeRange{
			Start:    timefmt.FormatClock(start),
			End:      timefmt.FormatClock(end),
			Capacity: capacity,
			Enrolled: enrolled,
		})
	}
	return ranges
}

// parseText handles legacy free-text schedules such as "Mon & Wed 9:00-10:00".
func (p *AvailabilityParser) parseText(state *parseState, text string) models.Availability {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return flexibleAvailability()
	}

	days := extractLegacyDays(lower)
	ranges := extractLegacyRanges(lower)
	if len(days) == 0 || len(ranges) == 0 {
		// markers only decide when nothing bookable was found, so "Sat 9-10am, anytime by request" keeps its slot
		for _, marker := range flexibleMarkers {
			if strings.Contains(lower, marker) {
				return flexibleAvailability()
			}
		}
		state.anomaly("could not extract days and times from legacy schedule %q", text)
		return flexibleAvailability()
	}

	week := models.EmptyWeek()
	for _, day := range days {
		dayRanges := make([]models.TimeRange, 0, len(ranges))
		for _, r := range ranges {
			dayRanges = append(dayRanges, models.TimeRange{
				Start:    timefmt.FormatClock(r[0]),
				End:      timefmt.FormatClock(r[1]),
				Capacity: p.defaultCapacity,
			})
		}
		week[day] = models.DayAvailability{Selected: true, Ranges: dayRanges}
	}
	return models.Availability{Days: week}
}

// extractLegacyDays collects the days named in text. Spans such as "mon-fri" or "fri to mon"
// cover every day in between, wrapping past Sunday.
func extractLegacyDays(text string) []models.Weekday {
	found := make(map[models.Weekday]bool)
	rest := legacySpanPattern.ReplaceAllStringFunc(text, func(span string) string {
		match := legacySpanPattern.FindStringSubmatch(span)
		from, okFrom := models.ParseWeekday(match[1][:3])
		to, okTo := models.ParseWeekday(match[2][:3])
		if !okFrom || !okTo {
			return span
		}
		for i := from.Index(); ; i = (i + 1) % len(models.Weekdays) {
			found[models.Weekdays[i]] = true
			if i == to.Index() {
				break
			}
		}
		return " "
	})
	for _, match := range legacyDayPattern.FindAllStringSubmatch(rest, -1) {
		switch token := match[1]; token {
		case "weekdays":
			for _, d := range models.Weekdays[:5] {
				found[d] = true
			}
		case "weekends":
			found[models.Saturday] = true
			found[models.Sunday] = true
		default:
			if day, ok := models.ParseWeekday(token[:3]); ok {
				found[day] = true
			}
		}
	}
	days := make([]models.Weekday, 0, len(found))
	for _, d := range models.Weekdays {
		if found[d] {
			days = append(days, d)
		}
	}
	return days
}

func extractLegacyRanges(text string) [][2]int {
	var ranges [][2]int
	seen := make(map[[2]int]bool)
	for _, match := range legacyRangePattern.FindAllStringSubmatch(text, -1) {
		startClock, startMeridiem, endClock, endMeridiem := match[1], match[2], match[3], match[4]
		end, ok := timefmt.ParseClock(endClock + endMeridiem)
		if !ok {
			continue
		}
		start, ok := timefmt.ParseClock(startClock + startMeridiem)
		if startMeridiem == "" && endMeridiem != "" {
			// "9-10am": the start borrows the end's meridiem when that keeps the range ordered.
			if borrowed, okBorrowed := timefmt.ParseClock(startClock + endMeridiem); okBorrowed && borrowed < end {
				start, ok = borrowed, true
			}
		}
		if !ok || start >= end {
			continue
		}
		key := [2]int{start, end}
		if seen[key] {
			continue
		}
		seen[key] = true
		ranges = append(ranges, key)
	}
	return ranges
}

func flexibleAvailability() models.Availability {
	return models.Availability{Days: models.EmptyWeek(), Flexible: true}
}

func sortedKeys(fields map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	// canonical day order, then key text, so duplicate days resolve the same way every time
	sort.Slice(keys, func(i, j int) bool {
		di, _ := models.ParseWeekday(keys[i])
		dj, _ := models.ParseWeekday(keys[j])
		if di.Index() != dj.Index() {
			return di.Index() < dj.Index()
		}
		return keys[i] < keys[j]
	})
	return keys
}
