package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bladehq/bladehub/internal/telemetry/tracing"
	"github.com/bladehq/bladehub/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// userResolver turns an authenticated request into the user's email.
type userResolver interface {
	UserEmail(r *http.Request) (string, error)
}

type Handler struct {
	service *Service
	users   userResolver
}

func NewHandler(service *Service, users userResolver) *Handler {
	return &Handler{service: service, users: users}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/week", handler.HandleWeek).Methods("GET").Name("calendar-week")
	router.HandleFunc("/events", handler.HandleAdd).Methods("POST", "OPTIONS").Name("calendar-add")
	router.HandleFunc("/events/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("calendar-update")
	router.HandleFunc("/events/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("calendar-delete")
	router.HandleFunc("/refresh", handler.HandleRefresh).Methods("POST", "OPTIONS").Name("calendar-refresh")
	router.HandleFunc("/import", handler.HandleImport).Methods("POST", "OPTIONS").Name("calendar-import")
	router.HandleFunc("/export", handler.HandleExport).Methods("GET").Name("calendar-export")
	router.HandleFunc("/sync-google", handler.HandleSyncGoogle).Methods("POST", "OPTIONS").Name("calendar-sync-google")
	router.HandleFunc("/drag/begin", handler.HandleDragBegin).Methods("POST", "OPTIONS").Name("calendar-drag-begin")
	router.HandleFunc("/drag/move", handler.HandleDragMove).Methods("POST", "OPTIONS").Name("calendar-drag-move")
	router.HandleFunc("/drag/end", handler.HandleDragEnd).Methods("POST", "OPTIONS").Name("calendar-drag-end")
	router.HandleFunc("/drag/cancel", handler.HandleDragCancel).Methods("POST", "OPTIONS").Name("calendar-drag-cancel")
}

func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.week")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	ref := time.Now()
	if refParam := r.URL.Query().Get("ref"); refParam != "" {
		parsed, err := time.Parse(time.RFC3339, refParam)
		if err != nil {
			http.Error(w, "invalid ref time", http.StatusBadRequest)
			return
		}
		ref = parsed.Local()
	}

	view := handler.service.Week(ctx, user, ref)
	viewJson, err := json.Marshal(view)
	if err != nil {
		log.Errorf("failed to marshal week view: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, viewJson)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.add")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var event Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Tracef("add event, unmarshal json params: %s", err)
		http.Error(w, "add event failed", http.StatusBadRequest)
		return
	}

	added, err := handler.service.AddEvent(ctx, user, event)
	if err != nil {
		log.Errorf("failed to add event [%s] for %s: %s", event.Title, user, err)
		http.Error(w, "error, failed to add event", http.StatusInternalServerError)
		return
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("failed to marshal added event: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.update")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var event Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "update event failed", http.StatusBadRequest)
		return
	}
	event.ID = mux.Vars(r)["id"]
	if event.ID == "" {
		http.Error(w, "error, event id empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.UpdateEvent(ctx, user, event); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update event %s for %s: %s", event.ID, user, err)
		http.Error(w, "error, failed to update event", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"updatedId":%q}`, event.ID))
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.delete")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, event id empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.DeleteEvent(ctx, user, id); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete event %s for %s: %s", id, user, err)
		http.Error(w, "error, failed to delete event", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"deletedId":%q}`, id))
}

func (handler *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.refresh")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	if err := handler.service.Refresh(ctx, user); err != nil {
		log.Errorf("failed to refresh calendar for %s: %s", user, err)
		http.Error(w, "error, failed to refresh calendar", http.StatusInternalServerError)
		return
	}
	pkg.WriteTextResponseOK(w, "refreshed")
}

func (handler *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.import")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	icsBytes, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read calendar data", http.StatusBadRequest)
		return
	}

	added, err := handler.service.Import(ctx, user, string(icsBytes))
	if err != nil {
		log.Errorf("failed to import calendar for %s: %s", user, err)
		http.Error(w, "error, failed to import calendar", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"imported":%d}`, added))
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.export")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	icsBytes, err := handler.service.Export(ctx, user)
	if err != nil {
		log.Errorf("failed to export calendar for %s: %s", user, err)
		http.Error(w, "error, failed to export calendar", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.Calendar, icsBytes)
}

func (handler *Handler) HandleSyncGoogle(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.syncGoogle")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	if err := handler.service.SyncGoogle(ctx, user); err != nil {
		log.Errorf("failed google sync for %s: %s", user, err)
		http.Error(w, "error, google sync failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteTextResponseOK(w, "synced")
}

type dragBeginRequest struct {
	Day    time.Time `json:"day"`
	Minute int       `json:"minute"`
}

func (handler *Handler) HandleDragBegin(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.dragBegin")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var req dragBeginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid drag params", http.StatusBadRequest)
		return
	}

	if err := handler.service.DragBegin(user, req.Day, req.Minute); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	pkg.WriteTextResponseOK(w, "drag started")
}

func (handler *Handler) HandleDragMove(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.dragMove")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var req struct {
		Minute int `json:"minute"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid drag params", http.StatusBadRequest)
		return
	}

	startMin, endMin, err := handler.service.DragMove(user, req.Minute)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"startMin":%d,"endMin":%d}`, startMin, endMin))
}

func (handler *Handler) HandleDragEnd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.dragEnd")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid drag params", http.StatusBadRequest)
		return
	}

	event, err := handler.service.DragEnd(ctx, user, req.Title)
	if err != nil {
		if errors.Is(err, ErrNoDrag) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Errorf("failed to commit drag for %s: %s", user, err)
		http.Error(w, "error, failed to create event", http.StatusInternalServerError)
		return
	}

	eventJson, err := json.Marshal(event)
	if err != nil {
		log.Errorf("failed to marshal drag event: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, eventJson, http.StatusCreated)
}

func (handler *Handler) HandleDragCancel(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.dragCancel")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	handler.service.DragCancel(user)
	pkg.WriteTextResponseOK(w, "drag cancelled")
}
