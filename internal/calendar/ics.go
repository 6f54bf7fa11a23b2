package calendar

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseCalendarText extracts events from iCalendar text in a tolerant,
// line-oriented way. Only SUMMARY, DTSTART and DTEND are read; property
// parameters before the colon are ignored. Blocks without a DTSTART are
// dropped, a missing DTEND defaults to one hour after the start and a
// missing SUMMARY becomes "Untitled". Unparseable lines are skipped
// rather than failing the whole import.
func ParseCalendarText(text string) []Event {
	var (
		events  []Event
		inBlock bool
		title   string
		start   time.Time
		end     time.Time
	)

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		switch {
		case strings.HasPrefix(line, "BEGIN:VEVENT"):
			inBlock = true
			title, start, end = "", time.Time{}, time.Time{}
		case strings.HasPrefix(line, "END:VEVENT"):
			if inBlock && !start.IsZero() {
				if end.IsZero() {
					end = start.Add(time.Hour)
				}
				if title == "" {
					title = "Untitled"
				}
				events = append(events, Event{
					ID:     uuid.NewString(),
					Title:  title,
					Start:  start,
					End:    end,
					Source: SourceImport,
				})
			}
			inBlock = false
		case !inBlock:
		case strings.HasPrefix(line, "SUMMARY"):
			title = propValue(line)
		case strings.HasPrefix(line, "DTSTART"):
			start = parseICSTime(propValue(line))
		case strings.HasPrefix(line, "DTEND"):
			end = parseICSTime(propValue(line))
		}
	}
	return events
}

func propValue(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}

// parseICSTime reads the two iCalendar date shapes used on import: a
// bare 8-digit date becomes local midnight of that day, anything longer
// is read as a UTC timestamp whether or not it carries the Z suffix.
func parseICSTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if len(value) == 8 {
		if t, err := time.ParseInLocation("20060102", value, time.Local); err == nil {
			return t
		}
		return time.Time{}
	}
	value = strings.TrimSuffix(value, "Z")
	if t, err := time.Parse("20060102T150405", value); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
