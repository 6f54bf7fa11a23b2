package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bladehq/bladehub/internal/telemetry/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client(), metrics.NewTestManager()), srv
}

func TestClient_Workouts_CachesResponses(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/workouts", r.URL.Path)
		assert.Equal(t, "M1", r.URL.Query().Get("squad"))
		_, _ = w.Write([]byte(`[{"sport":"Rowing","user":"ana@blade.app","duration":60,"date":"2024-06-10T08:00:00Z"}]`))
	}))

	ctx := context.Background()
	workouts, err := client.Workouts(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, "Rowing", workouts[0].Sport)
	assert.Equal(t, "ana@blade.app", workouts[0].User.Email)

	// second call is served from cache
	workouts, err = client.Workouts(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_Workouts_NoSquadFilter(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workouts", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`[]`))
	}))

	workouts, err := client.Workouts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, workouts)
}

func TestClient_Workouts_UpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))

	_, err := client.Workouts(context.Background(), "M1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClient_EnterWorkout_InvalidatesCache(t *testing.T) {
	var listHits int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/workouts":
			atomic.AddInt32(&listHits, 1)
			_, _ = w.Write([]byte(`[]`))
		case "/enter_workout":
			assert.Equal(t, http.MethodPost, r.Method)
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "Cycling", payload["sport"])
			_, _ = w.Write([]byte(`{"_id":"w-1"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	ctx := context.Background()
	_, err := client.Workouts(ctx, "")
	require.NoError(t, err)

	saved, err := client.EnterWorkout(ctx, Workout{
		User:  MemberRef{Email: "ana@blade.app"},
		Sport: "Cycling",
	})
	require.NoError(t, err)
	assert.Equal(t, "w-1", saved.ID)
	assert.Equal(t, "Cycling", saved.Sport)

	// cache was cleared, the list goes back upstream
	_, err = client.Workouts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&listHits))
}

func TestClient_EnterWorkout_PlainTextResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`workout saved`))
	}))

	saved, err := client.EnterWorkout(context.Background(), Workout{Sport: "Running"})
	require.NoError(t, err)
	assert.Equal(t, "Running", saved.Sport)
}

func TestClient_FindUserByEmail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "bo@blade.app", r.URL.Query().Get("email"))
		_, _ = w.Write([]byte(`[{"email":"ana@blade.app","squad":"W1"},{"email":"bo@blade.app","squad":"M2"}]`))
	}))

	user, err := client.FindUserByEmail(context.Background(), "bo@blade.app")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "M2", user.Squad)
}

func TestClient_FindUserByEmail_SingleObjectResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email":"bo@blade.app","squad":"M2"}`))
	}))

	user, err := client.FindUserByEmail(context.Background(), "bo@blade.app")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "M2", user.Squad)
}

func TestClient_FindUserByEmail_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))

	user, err := client.FindUserByEmail(context.Background(), "ghost@blade.app")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestClient_UpdateUserSquad(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/add_user", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ana@blade.app", payload["email"])
		assert.Equal(t, "W3", payload["squad"])
	}))

	require.NoError(t, client.UpdateUserSquad(context.Background(), "ana@blade.app", "W3"))
}

func TestClient_BusyEventsRoundTrip(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/busy_events" && r.Method == http.MethodGet:
			assert.Equal(t, "ana@blade.app", r.URL.Query().Get("email"))
			_, _ = w.Write([]byte(`[{"_id":"b-1","title":"Lecture","start":"2024-06-10T10:00:00Z","end":"2024-06-10T12:00:00Z"}]`))
		case r.URL.Path == "/add_busy_event" && r.Method == http.MethodPost:
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "ana@blade.app", payload["email"])
			assert.Equal(t, "Gym", payload["title"])
			_, _ = w.Write([]byte(`{"_id":"b-2"}`))
		case r.URL.Path == "/busy_events/b-1" && r.Method == http.MethodPut:
			assert.Equal(t, "ana@blade.app", r.URL.Query().Get("email"))
		case r.URL.Path == "/busy_events/b-1" && r.Method == http.MethodDelete:
			assert.Equal(t, "ana@blade.app", r.URL.Query().Get("email"))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	ctx := context.Background()
	events, err := client.BusyEvents(ctx, "ana@blade.app")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "b-1", events[0].ID)

	start := time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)
	id, err := client.AddBusyEvent(ctx, "ana@blade.app", BusyEvent{
		Title: "Gym",
		Start: start,
		End:   start.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "b-2", id)

	require.NoError(t, client.UpdateBusyEvent(ctx, "ana@blade.app", BusyEvent{ID: "b-1", Title: "Moved", Start: start, End: start.Add(time.Hour)}))
	require.NoError(t, client.DeleteBusyEvent(ctx, "ana@blade.app", "b-1"))
}

func TestClient_AddBusyEvent_NoServerID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`ok`))
	}))

	id, err := client.AddBusyEvent(context.Background(), "ana@blade.app", BusyEvent{
		ID:    "local-1",
		Title: "Gym",
		Start: time.Now(),
		End:   time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "local-1", id)
}

func TestClient_SyncGoogleCalendar(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sync_google_calendar", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ana@blade.app", payload["user"])
	}))

	require.NoError(t, client.SyncGoogleCalendar(context.Background(), "ana@blade.app"))
}
