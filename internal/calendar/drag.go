package calendar

import (
	"errors"
	"time"
)

var (
	ErrDragInProgress = errors.New("drag already in progress")
	ErrNoDrag         = errors.New("no drag in progress")
)

// DragSession tracks a single drag-to-create interaction on one day
// column. It moves Idle -> Dragging -> Committed; Cancel returns it to
// Idle from any state. Only one drag per session can be active.
type DragSession struct {
	day        time.Time
	startMin   int
	endMin     int
	dragging   bool
	anchorMin  int
	lastUpdate time.Time
}

// Begin starts a drag at the given minute of the given day. The
// provisional event initially runs for 30 minutes from the anchor.
func (d *DragSession) Begin(day time.Time, minute int) error {
	if d.dragging {
		return ErrDragInProgress
	}
	minute = clampMinute(minute)
	d.day = StartOfDay(day)
	d.startMin = minute
	d.anchorMin = minute
	d.endMin = minute + 30
	d.dragging = true
	d.lastUpdate = time.Now()
	return nil
}

// Move extends the provisional event to the given minute. Dragging
// upward past the anchor swaps the edges: the anchor becomes the end
// and the pointer position becomes both the start and the new anchor,
// so a later downward move grows from there. Dragging downward keeps
// the anchor as start and never lets the event shrink below 15 minutes.
func (d *DragSession) Move(minute int) error {
	if !d.dragging {
		return ErrNoDrag
	}
	minute = clampMinute(minute)
	if minute < d.anchorMin {
		d.startMin = minute
		d.endMin = d.anchorMin
		d.anchorMin = minute
	} else {
		d.startMin = d.anchorMin
		d.endMin = minute
		if d.endMin < d.startMin+minEventMinutes {
			d.endMin = d.startMin + minEventMinutes
		}
	}
	d.lastUpdate = time.Now()
	return nil
}

// End commits the drag and returns the resulting event times. The
// committed span is never shorter than 15 minutes regardless of where
// the drag stopped.
func (d *DragSession) End() (start, end time.Time, err error) {
	if !d.dragging {
		return time.Time{}, time.Time{}, ErrNoDrag
	}
	startMin, endMin := d.startMin, d.endMin
	if endMin < startMin+minEventMinutes {
		endMin = startMin + minEventMinutes
	}
	d.dragging = false
	return d.day.Add(time.Duration(startMin) * time.Minute),
		d.day.Add(time.Duration(endMin) * time.Minute),
		nil
}

// Cancel abandons the drag without producing an event.
func (d *DragSession) Cancel() {
	d.dragging = false
}

func (d *DragSession) Active() bool { return d.dragging }

// Provisional reports the current drag span for rendering, in minutes
// since midnight of the drag day.
func (d *DragSession) Provisional() (day time.Time, startMin, endMin int, ok bool) {
	if !d.dragging {
		return time.Time{}, 0, 0, false
	}
	return d.day, d.startMin, d.endMin, true
}

func clampMinute(m int) int {
	if m < 0 {
		return 0
	}
	if m > minutesPerDay {
		return minutesPerDay
	}
	return m
}
