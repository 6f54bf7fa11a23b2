package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bladehq/bladehub/internal/telemetry/metrics"
	"github.com/bladehq/bladehub/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const workoutsCacheExpireSeconds = 60

// Client talks to the blade API. Workout list responses are cached
// briefly in freecache since stats pages hammer the same endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *freecache.Cache
	metrics    *metrics.Manager
}

func NewClient(baseURL string, httpClient *http.Client, metricsManager *metrics.Manager) *Client {
	megabyte := 1024 * 1024
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      freecache.NewCache(10 * megabyte),
		metrics:    metricsManager,
	}
}

// Workouts lists workouts, optionally filtered to one squad. An empty
// squad returns everything the caller can see.
func (c *Client) Workouts(ctx context.Context, squad string) (workouts []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "upstream.workouts")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	path := "/workouts"
	if squad != "" {
		path += "?squad=" + url.QueryEscape(squad)
	}

	cacheKey := []byte("workouts::" + squad)
	if cached, err := c.cache.Get(cacheKey); err == nil {
		if err := json.Unmarshal(cached, &workouts); err == nil {
			log.Tracef("workouts for squad %q served from cache", squad)
			return workouts, nil
		}
		log.Errorf("failed to unmarshal cached workouts for squad %q: %s", squad, err)
	}

	respBytes, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(respBytes, &workouts); err != nil {
		return nil, fmt.Errorf("unmarshal workouts: %w", err)
	}

	if err := c.cache.Set(cacheKey, respBytes, workoutsCacheExpireSeconds); err != nil {
		log.Errorf("failed to cache workouts for squad %q: %s", squad, err)
	}
	return workouts, nil
}

func (c *Client) EnterWorkout(ctx context.Context, workout Workout) (Workout, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "upstream.enterWorkout")
	defer span.End()

	body, err := json.Marshal(workout)
	if err != nil {
		return Workout{}, fmt.Errorf("marshal workout: %w", err)
	}
	respBytes, err := c.do(ctx, http.MethodPost, "/enter_workout", body)
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return Workout{}, err
	}
	c.cache.Clear()

	saved := workout
	// best effort, the API occasionally responds with plain text
	if err := json.Unmarshal(respBytes, &saved); err != nil {
		log.Tracef("enter workout: non-json response: %s", err)
	}
	return saved, nil
}

func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "upstream.findUserByEmail")
	defer span.End()

	respBytes, err := c.do(ctx, http.MethodGet, "/users?email="+url.QueryEscape(email), nil)
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return nil, err
	}

	var users []User
	if err := json.Unmarshal(respBytes, &users); err != nil {
		var single User
		if err2 := json.Unmarshal(respBytes, &single); err2 != nil {
			return nil, fmt.Errorf("unmarshal users: %w", err)
		}
		users = []User{single}
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (c *Client) AddUser(ctx context.Context, user User) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "upstream.addUser")
	defer span.End()

	body, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/add_user", body)
	tracing.EndSpanWithErrCheck(span, err)
	return err
}

func (c *Client) UpdateUserSquad(ctx context.Context, email, squad string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "upstream.updateUserSquad")
	defer span.End()

	body, err := json.Marshal(map[string]string{"email": email, "squad": squad})
	if err != nil {
		return fmt.Errorf("marshal squad update: %w", err)
	}
	// add_user upserts, so squad changes go through the same endpoint
	_, err = c.do(ctx, http.MethodPost, "/add_user", body)
	tracing.EndSpanWithErrCheck(span, err)
	return err
}

func (c *Client) BusyEvents(ctx context.Context, email string) ([]BusyEvent, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "upstream.busyEvents")
	defer span.End()

	respBytes, err := c.do(ctx, http.MethodGet, "/busy_events?email="+url.QueryEscape(email), nil)
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return nil, err
	}
	var events []BusyEvent
	if err := json.Unmarshal(respBytes, &events); err != nil {
		return nil, fmt.Errorf("unmarshal busy events: %w", err)
	}
	return events, nil
}

// AddBusyEvent stores a new busy event and returns the identifier the
// API assigned to it.
func (c *Client) AddBusyEvent(ctx context.Context, email string, event BusyEvent) (string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "upstream.addBusyEvent")
	defer span.End()

	payload := struct {
		Email  string    `json:"email"`
		Title  string    `json:"title"`
		Start  time.Time `json:"start"`
		End    time.Time `json:"end"`
		Notes  string    `json:"notes,omitempty"`
		AllDay bool      `json:"allDay,omitempty"`
	}{email, event.Title, event.Start, event.End, event.Notes, event.AllDay}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal busy event: %w", err)
	}

	respBytes, err := c.do(ctx, http.MethodPost, "/add_busy_event", body)
	if err != nil {
		tracing.EndSpanWithErrCheck(span, err)
		return "", err
	}

	var saved BusyEvent
	if err := json.Unmarshal(respBytes, &saved); err != nil || saved.ID == "" {
		return event.ID, nil
	}
	return saved.ID, nil
}

func (c *Client) UpdateBusyEvent(ctx context.Context, email string, event BusyEvent) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "upstream.updateBusyEvent")
	defer span.End()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal busy event: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, "/busy_events/"+url.PathEscape(event.ID)+"?email="+url.QueryEscape(email), body)
	tracing.EndSpanWithErrCheck(span, err)
	return err
}

func (c *Client) DeleteBusyEvent(ctx context.Context, email, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "upstream.deleteBusyEvent")
	defer span.End()

	_, err := c.do(ctx, http.MethodDelete, "/busy_events/"+url.PathEscape(id)+"?email="+url.QueryEscape(email), nil)
	tracing.EndSpanWithErrCheck(span, err)
	return err
}

// SyncGoogleCalendar asks the blade API to pull the user's google
// calendar into their busy events.
func (c *Client) SyncGoogleCalendar(ctx context.Context, email string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "upstream.syncGoogleCalendar")
	defer span.End()

	body, err := json.Marshal(map[string]string{"user": email})
	if err != nil {
		return fmt.Errorf("marshal sync request: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/sync_google_calendar", body)
	tracing.EndSpanWithErrCheck(span, err)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	endpoint := path
	if i := strings.Index(endpoint, "?"); i >= 0 {
		endpoint = endpoint[:i]
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.HistogramUpstreamDuration.
			WithLabelValues(endpoint).
			Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("blade api: %s %s: status %d", method, path, resp.StatusCode)
	}
	return respBytes, nil
}
