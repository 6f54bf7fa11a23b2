package calendar

import (
	"sort"
	"time"
)

const (
	minutesPerDay   = 24 * 60
	snapMinutes     = 15
	minEventMinutes = 15
)

// LaneAssignment places one event in a horizontal lane of a day column.
// Events sharing a lane never overlap in time.
type LaneAssignment struct {
	Event     Event `json:"event"`
	Lane      int   `json:"lane"`
	LaneCount int   `json:"laneCount"`
}

// LayoutDay assigns overlapping events of a single day to lanes. Events
// are taken in start order (stable, so equal starts keep input order)
// and each goes into the first lane whose last event has already ended;
// a new lane opens only when none fits. LaneCount on every assignment
// is the total number of lanes used so columns can be sized uniformly.
func LayoutDay(events []Event) []LaneAssignment {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var laneEnds []time.Time
	assignments := make([]LaneAssignment, 0, len(sorted))
	for _, e := range sorted {
		lane := -1
		for i, end := range laneEnds {
			if !end.After(e.Start) {
				lane = i
				break
			}
		}
		if lane == -1 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, e.End)
		} else {
			laneEnds[lane] = e.End
		}
		assignments = append(assignments, LaneAssignment{Event: e, Lane: lane})
	}

	for i := range assignments {
		assignments[i].LaneCount = len(laneEnds)
	}
	return assignments
}

// MapPixelToMinutes converts a vertical pixel offset within a day
// column of the given height to minutes since midnight, snapped to the
// nearest quarter hour. Offsets outside the column clamp to its edges.
func MapPixelToMinutes(offsetPx, columnHeightPx float64) int {
	if columnHeightPx <= 0 {
		return 0
	}
	if offsetPx < 0 {
		offsetPx = 0
	}
	if offsetPx > columnHeightPx {
		offsetPx = columnHeightPx
	}
	mins := offsetPx / columnHeightPx * minutesPerDay
	snapped := int(mins/snapMinutes+0.5) * snapMinutes
	if snapped > minutesPerDay {
		snapped = minutesPerDay
	}
	return snapped
}
