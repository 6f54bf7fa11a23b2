package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bladehq/bladehub/internal/telemetry/metrics"
	"github.com/bladehq/bladehub/internal/telemetry/tracing"
	"github.com/bladehq/bladehub/internal/upstream"
	"github.com/bladehq/bladehub/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=stats

type workoutsAPI interface {
	Workouts(ctx context.Context, squad string) ([]upstream.Workout, error)
	EnterWorkout(ctx context.Context, workout upstream.Workout) (upstream.Workout, error)
	FindUserByEmail(ctx context.Context, email string) (*upstream.User, error)
}

type userResolver interface {
	UserEmail(r *http.Request) (string, error)
}

type Handler struct {
	api     workoutsAPI
	users   userResolver
	metrics *metrics.Manager
}

func NewHandler(api workoutsAPI, users userResolver, metricsManager *metrics.Manager) *Handler {
	return &Handler{api: api, users: users, metrics: metricsManager}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/me", handler.HandleMyStats).Methods("GET").Name("stats-me")
	router.HandleFunc("/team", handler.HandleTeamStats).Methods("GET").Name("stats-team")
}

func (handler *Handler) SetupWorkoutRoutes(router *mux.Router) {
	router.HandleFunc("", handler.HandleListWorkouts).Methods("GET").Name("workouts-list")
	router.HandleFunc("", handler.HandleEnterWorkout).Methods("POST", "OPTIONS").Name("workouts-enter")
}

// HandleMyStats aggregates the caller's own workouts. The workouts
// endpoint is fetched unfiltered and narrowed to the caller here, since
// the blade API has no per-user filter.
func (handler *Handler) HandleMyStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.me")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	workouts, err := handler.api.Workouts(ctx, "")
	if err != nil {
		log.Errorf("failed to fetch workouts for %s: %s", user, err)
		http.Error(w, "error, failed to fetch workouts", http.StatusInternalServerError)
		return
	}

	var mine []upstream.Workout
	for _, workout := range workouts {
		if workout.User.Email == user || workout.User.Label() == user {
			mine = append(mine, workout)
		}
	}

	personalStats := Aggregate(mine, time.Now())
	statsJson, err := json.Marshal(personalStats)
	if err != nil {
		log.Errorf("failed to marshal personal stats: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, statsJson)
}

// HandleTeamStats aggregates the caller's squad. The squad is resolved
// server-side from the user record, never trusted from the request; a
// coach sees all squads.
func (handler *Handler) HandleTeamStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.team")
	defer span.End()

	userEmail, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	user, err := handler.api.FindUserByEmail(ctx, userEmail)
	if err != nil {
		log.Errorf("failed to resolve user %s: %s", userEmail, err)
		http.Error(w, "error, failed to resolve user", http.StatusInternalServerError)
		return
	}
	if user == nil || user.Squad == "" {
		http.Error(w, "no squad selected", http.StatusBadRequest)
		return
	}

	squadFilter := user.Squad
	if squadFilter == "Coach" {
		squadFilter = ""
	}

	workouts, err := handler.api.Workouts(ctx, squadFilter)
	if err != nil {
		log.Errorf("failed to fetch team workouts for squad %q: %s", user.Squad, err)
		http.Error(w, "error, failed to fetch workouts", http.StatusInternalServerError)
		return
	}

	teamStats := AggregateTeam(workouts, time.Now())
	statsJson, err := json.Marshal(teamStats)
	if err != nil {
		log.Errorf("failed to marshal team stats: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, statsJson)
}

func (handler *Handler) HandleListWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	if _, err := handler.users.UserEmail(r); err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	workouts, err := handler.api.Workouts(ctx, r.URL.Query().Get("squad"))
	if err != nil {
		log.Errorf("failed to list workouts: %s", err)
		http.Error(w, "error, failed to list workouts", http.StatusInternalServerError)
		return
	}

	workoutsJson, err := json.Marshal(workouts)
	if err != nil {
		log.Errorf("failed to marshal workouts: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, workoutsJson)
}

func (handler *Handler) HandleEnterWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.enter")
	defer span.End()

	user, err := handler.users.UserEmail(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var workout upstream.Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		log.Tracef("enter workout, unmarshal json params: %s", err)
		http.Error(w, "enter workout failed", http.StatusBadRequest)
		return
	}
	if workout.Sport == "" {
		http.Error(w, "error, sport empty", http.StatusBadRequest)
		return
	}
	if workout.Type == "" {
		http.Error(w, "error, type empty", http.StatusBadRequest)
		return
	}
	if workout.Intensity == "" {
		http.Error(w, "error, intensity empty", http.StatusBadRequest)
		return
	}
	if !workout.DurationMin.Valid || workout.DurationMin.Value <= 0 {
		http.Error(w, "error, duration invalid", http.StatusBadRequest)
		return
	}
	workout.User = upstream.MemberRef{Email: user}
	if !workout.Date.Valid {
		workout.Date = upstream.FlexTime{Value: time.Now(), Valid: true}
	}

	saved, err := handler.api.EnterWorkout(ctx, workout)
	if err != nil {
		log.Errorf("failed to enter workout for %s: %s", user, err)
		http.Error(w, "error, failed to enter workout", http.StatusInternalServerError)
		return
	}
	handler.metrics.CounterWorkoutsEntered.Inc()

	savedJson, err := json.Marshal(saved)
	if err != nil {
		log.Errorf("failed to marshal entered workout: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, savedJson, http.StatusCreated)
}
