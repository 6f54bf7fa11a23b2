package calendar

import (
	"fmt"
	"time"
)

// Source marks where an event came from. Busy events are owned by the
// upstream blade API and get replaced wholesale on refresh, the other
// two kinds live only in the user's calendar here.
type Source string

const (
	SourceManual Source = "manual"
	SourceBusy   Source = "busy"
	SourceImport Source = "import"
)

type Event struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Notes  string    `json:"notes,omitempty"`
	AllDay bool      `json:"allDay,omitempty"`
	Source Source    `json:"source"`
}

func (e Event) DurationMinutes() int {
	return int(e.End.Sub(e.Start).Minutes())
}

func (e Event) Validate() error {
	if e.Start.IsZero() {
		return fmt.Errorf("event %q: start must be set", e.Title)
	}
	if e.AllDay {
		return nil
	}
	if e.End.IsZero() {
		return fmt.Errorf("event %q: end must be set", e.Title)
	}
	if !e.End.After(e.Start) {
		return fmt.Errorf("event %q: end must be after start", e.Title)
	}
	return nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func dedupKey(start time.Time, title string) string {
	return start.UTC().Format(time.RFC3339) + "|" + title
}

// MergeImported adds incoming events to existing, skipping any incoming
// event whose (start, title) pair already exists. Existing events are
// never modified or reordered, new events keep their incoming order.
// Merging the same batch twice yields the same result as merging once.
func MergeImported(existing, incoming []Event) []Event {
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[dedupKey(e.Start, e.Title)] = struct{}{}
	}

	merged := make([]Event, len(existing), len(existing)+len(incoming))
	copy(merged, existing)
	for _, e := range incoming {
		key := dedupKey(e.Start, e.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, e)
	}
	return merged
}
