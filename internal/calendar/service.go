package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bladehq/bladehub/internal/telemetry/metrics"
	"github.com/bladehq/bladehub/internal/telemetry/tracing"
	"github.com/bladehq/bladehub/internal/upstream"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("event not found")

//go:generate mockgen -source=service.go -destination=service_mocks_test.go -package=calendar

// BusyAPI is the slice of the blade API the calendar needs.
type BusyAPI interface {
	BusyEvents(ctx context.Context, email string) ([]upstream.BusyEvent, error)
	AddBusyEvent(ctx context.Context, email string, event upstream.BusyEvent) (string, error)
	UpdateBusyEvent(ctx context.Context, email string, event upstream.BusyEvent) error
	DeleteBusyEvent(ctx context.Context, email, id string) error
	SyncGoogleCalendar(ctx context.Context, email string) error
}

// userState holds one user's calendar. All access goes through the
// state mutex; refreshGen lets a finished fetch detect that a newer
// refresh or mutation superseded it.
type userState struct {
	mu         sync.Mutex
	events     []Event
	drag       DragSession
	refreshGen uint64
	loaded     bool
}

type Service struct {
	api     BusyAPI
	metrics *metrics.Manager

	statesMu sync.Mutex
	states   map[string]*userState
}

func NewService(api BusyAPI, metricsManager *metrics.Manager) *Service {
	return &Service{
		api:     api,
		metrics: metricsManager,
		states:  map[string]*userState{},
	}
}

func (s *Service) stateFor(user string) *userState {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	st, ok := s.states[user]
	if !ok {
		st = &userState{}
		s.states[user] = st
	}
	return st
}

// DayView is one day column of a week view. All-day events are listed
// separately and never occupy a lane.
type DayView struct {
	Day    time.Time        `json:"day"`
	Events []LaneAssignment `json:"events"`
	AllDay []Event          `json:"allDay,omitempty"`
}

type WeekView struct {
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
	Days      []DayView `json:"days"`
}

// Week builds the laid-out view of the week containing ref. The first
// call for a user pulls their busy events from upstream; a failed pull
// is logged and the view is built from whatever is local.
func (s *Service) Week(ctx context.Context, user string, ref time.Time) WeekView {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calendar.service.week")
	defer span.End()

	st := s.stateFor(user)
	st.mu.Lock()
	loaded := st.loaded
	st.mu.Unlock()
	if !loaded {
		if err := s.Refresh(ctx, user); err != nil {
			log.Errorf("initial busy events fetch for %s: %s", user, err)
		}
	}

	st.mu.Lock()
	events := make([]Event, len(st.events))
	copy(events, st.events)
	st.mu.Unlock()

	window := SelectWeek(ref)
	inWindow := EventsInWindow(events, window)

	view := WeekView{WeekStart: window.Start, WeekEnd: window.End}
	for _, day := range window.Days() {
		var timed, allDay []Event
		for _, e := range inWindow {
			if !SameDay(e.Start, day) {
				continue
			}
			if e.AllDay {
				allDay = append(allDay, e)
			} else {
				timed = append(timed, e)
			}
		}
		view.Days = append(view.Days, DayView{Day: day, Events: LayoutDay(timed), AllDay: allDay})
	}
	return view
}

func (s *Service) Events(user string) []Event {
	st := s.stateFor(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	events := make([]Event, len(st.events))
	copy(events, st.events)
	return events
}

// Refresh replaces the user's busy events with the upstream truth.
// Manual and imported events survive. If another refresh or mutation
// lands while the fetch is in flight, the fetched result is stale and
// gets dropped.
func (s *Service) Refresh(ctx context.Context, user string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calendar.service.refresh")
	defer span.End()

	st := s.stateFor(user)
	st.mu.Lock()
	st.refreshGen++
	gen := st.refreshGen
	st.mu.Unlock()

	busy, err := s.api.BusyEvents(ctx, user)
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return fmt.Errorf("fetch busy events: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.loaded = true
	if st.refreshGen != gen {
		log.Tracef("calendar refresh for %s superseded, dropping %d events", user, len(busy))
		s.metrics.CounterStaleFetchesDropped.Inc()
		return nil
	}

	kept := st.events[:0:0]
	for _, e := range st.events {
		if e.Source != SourceBusy {
			kept = append(kept, e)
		}
	}
	for _, b := range busy {
		kept = append(kept, Event{
			ID:     b.ID,
			Title:  b.Title,
			Start:  b.Start,
			End:    b.End,
			Notes:  b.Notes,
			AllDay: b.AllDay,
			Source: SourceBusy,
		})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start.Before(kept[j].Start) })
	st.events = kept
	return nil
}

// AddEvent inserts the event immediately under a temporary id, then
// persists it upstream. On success the temporary id is swapped for the
// one the API assigned; on failure the event is removed again.
func (s *Service) AddEvent(ctx context.Context, user string, event Event) (Event, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calendar.service.addEvent")
	defer span.End()

	if err := event.Validate(); err != nil {
		return Event{}, err
	}
	if event.Source == "" {
		event.Source = SourceManual
	}

	tempID := uuid.NewString()
	event.ID = tempID

	st := s.stateFor(user)
	st.mu.Lock()
	st.refreshGen++
	st.events = append(st.events, event)
	st.mu.Unlock()

	savedID, err := s.api.AddBusyEvent(ctx, user, upstream.BusyEvent{
		Title:  event.Title,
		Start:  event.Start,
		End:    event.End,
		Notes:  event.Notes,
		AllDay: event.AllDay,
	})
	if err != nil {
		st.mu.Lock()
		st.events = removeEvent(st.events, tempID)
		st.mu.Unlock()
		s.metrics.CounterOptimisticRollbacks.Inc()
		tracing.EndSpanWithErrCheck(span, err)
		return Event{}, fmt.Errorf("persist event: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.events {
		if st.events[i].ID == tempID {
			if savedID != "" {
				st.events[i].ID = savedID
			}
			return st.events[i], nil
		}
	}
	// removed while the request was in flight
	event.ID = savedID
	return event, nil
}

// UpdateEvent applies the change locally, then persists it. A failed
// persist re-syncs the user from upstream instead of patching back the
// snapshot, so the calendar always lands on the server truth.
func (s *Service) UpdateEvent(ctx context.Context, user string, event Event) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calendar.service.updateEvent")
	defer span.End()

	if err := event.Validate(); err != nil {
		return err
	}

	st := s.stateFor(user)
	st.mu.Lock()
	st.refreshGen++
	found := false
	for i := range st.events {
		if st.events[i].ID == event.ID {
			event.Source = st.events[i].Source
			st.events[i] = event
			found = true
			break
		}
	}
	st.mu.Unlock()
	if !found {
		return ErrEventNotFound
	}

	err := s.api.UpdateBusyEvent(ctx, user, upstream.BusyEvent{
		ID:     event.ID,
		Title:  event.Title,
		Start:  event.Start,
		End:    event.End,
		Notes:  event.Notes,
		AllDay: event.AllDay,
	})
	if err != nil {
		s.metrics.CounterOptimisticRollbacks.Inc()
		tracing.EndSpanWithErrCheck(span, err)
		if refreshErr := s.Refresh(ctx, user); refreshErr != nil {
			log.Errorf("refresh after failed update for %s: %s", user, refreshErr)
		}
		return fmt.Errorf("persist event update: %w", err)
	}
	return nil
}

func (s *Service) DeleteEvent(ctx context.Context, user, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calendar.service.deleteEvent")
	defer span.End()

	st := s.stateFor(user)
	st.mu.Lock()
	st.refreshGen++
	before := len(st.events)
	st.events = removeEvent(st.events, id)
	found := len(st.events) != before
	st.mu.Unlock()
	if !found {
		return ErrEventNotFound
	}

	if err := s.api.DeleteBusyEvent(ctx, user, id); err != nil {
		s.metrics.CounterOptimisticRollbacks.Inc()
		tracing.EndSpanWithErrCheck(span, err)
		if refreshErr := s.Refresh(ctx, user); refreshErr != nil {
			log.Errorf("refresh after failed delete for %s: %s", user, refreshErr)
		}
		return fmt.Errorf("persist event delete: %w", err)
	}
	return nil
}

// Import merges events parsed from iCalendar text into the calendar,
// skipping duplicates. Returns how many events were actually added.
func (s *Service) Import(ctx context.Context, user, icsText string) (int, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "calendar.service.import")
	defer span.End()

	parsed := ParseCalendarText(icsText)
	if len(parsed) == 0 {
		return 0, nil
	}

	st := s.stateFor(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.refreshGen++
	before := len(st.events)
	st.events = MergeImported(st.events, parsed)
	added := len(st.events) - before

	s.metrics.CounterEventsImported.Add(float64(added))
	log.Debugf("imported %d of %d parsed events for %s", added, len(parsed), user)
	return added, nil
}

func (s *Service) Export(ctx context.Context, user string) ([]byte, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "calendar.service.export")
	defer span.End()
	return ExportICS(s.Events(user))
}

// SyncGoogle triggers a google calendar sync upstream, then refreshes
// so the new busy events show up right away.
func (s *Service) SyncGoogle(ctx context.Context, user string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calendar.service.syncGoogle")
	defer span.End()

	if err := s.api.SyncGoogleCalendar(ctx, user); err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return fmt.Errorf("sync google calendar: %w", err)
	}
	s.metrics.CounterGoogleSyncs.Inc()
	return s.Refresh(ctx, user)
}

func (s *Service) DragBegin(user string, day time.Time, minute int) error {
	st := s.stateFor(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.drag.Begin(day, minute)
}

func (s *Service) DragMove(user string, minute int) (startMin, endMin int, err error) {
	st := s.stateFor(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.drag.Move(minute); err != nil {
		return 0, 0, err
	}
	_, startMin, endMin, _ = st.drag.Provisional()
	return startMin, endMin, nil
}

// DragEnd commits the active drag as a new event with the given title.
func (s *Service) DragEnd(ctx context.Context, user, title string) (Event, error) {
	st := s.stateFor(user)
	st.mu.Lock()
	start, end, err := st.drag.End()
	st.mu.Unlock()
	if err != nil {
		return Event{}, err
	}

	if title == "" {
		title = "Busy"
	}
	return s.AddEvent(ctx, user, Event{
		Title:  title,
		Start:  start,
		End:    end,
		Source: SourceManual,
	})
}

func (s *Service) DragCancel(user string) {
	st := s.stateFor(user)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.drag.Cancel()
}

func removeEvent(events []Event, id string) []Event {
	for i := range events {
		if events[i].ID == id {
			return append(events[:i], events[i+1:]...)
		}
	}
	return events
}
