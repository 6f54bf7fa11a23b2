package calendar

import "time"

// WeekWindow is a Monday-start week: [Start, End) where End is exactly
// seven days after Start, both at local midnight.
type WeekWindow struct {
	Start time.Time
	End   time.Time
}

// SelectWeek returns the week window containing ref. Sunday belongs to
// the week that started the previous Monday.
func SelectWeek(ref time.Time) WeekWindow {
	day := StartOfDay(ref)
	offset := int(day.Weekday()) - 1
	if day.Weekday() == time.Sunday {
		offset = 6
	}
	start := day.AddDate(0, 0, -offset)
	return WeekWindow{Start: start, End: start.AddDate(0, 0, 7)}
}

func (w WeekWindow) Next() WeekWindow {
	return WeekWindow{Start: w.Start.AddDate(0, 0, 7), End: w.End.AddDate(0, 0, 7)}
}

func (w WeekWindow) Prev() WeekWindow {
	return WeekWindow{Start: w.Start.AddDate(0, 0, -7), End: w.End.AddDate(0, 0, -7)}
}

// Days lists the seven day-start timestamps of the window, Monday first.
func (w WeekWindow) Days() []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// EventsInWindow keeps every event that overlaps the window: events
// starting inside it, events ending inside it, and events that span
// the whole window. Events touching only the boundary instant are out.
func EventsInWindow(events []Event, w WeekWindow) []Event {
	var in []Event
	for _, e := range events {
		startsInside := w.Contains(e.Start)
		endsInside := e.End.After(w.Start) && !e.End.After(w.End)
		spans := e.Start.Before(w.Start) && e.End.After(w.End)
		if startsInside || endsInside || spans {
			in = append(in, e)
		}
	}
	return in
}
