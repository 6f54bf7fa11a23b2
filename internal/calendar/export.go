package calendar

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
)

// ExportICS renders the given events as an iCalendar document. Titles,
// notes and times survive a round trip through ParseCalendarText.
func ExportICS(events []Event) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//bladehub//calendar//EN")

	now := time.Now().UTC()
	for _, e := range events {
		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, e.ID)
		vevent.Props.SetText(ical.PropSummary, e.Title)
		if e.Notes != "" {
			vevent.Props.SetText(ical.PropDescription, e.Notes)
		}
		if e.AllDay {
			vevent.Props.SetDate(ical.PropDateTimeStart, e.Start)
			vevent.Props.SetDate(ical.PropDateTimeEnd, e.End)
		} else {
			vevent.Props.SetDateTime(ical.PropDateTimeStart, e.Start.UTC())
			vevent.Props.SetDateTime(ical.PropDateTimeEnd, e.End.UTC())
		}
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, now)
		cal.Children = append(cal.Children, vevent.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}
