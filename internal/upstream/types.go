package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlexFloat reads a numeric field that the blade API sometimes sends as
// a JSON number and sometimes as a string. Anything unparseable leaves
// the value invalid instead of failing the whole document.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	f.Value, f.Valid = 0, false
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value, f.Valid = num, true
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return nil
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return nil
	}
	f.Value, f.Valid = num, true
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// FlexTime tolerates the handful of timestamp shapes the blade API
// produces: RFC 3339, RFC 3339 without zone, and plain dates.
type FlexTime struct {
	Value time.Time
	Valid bool
}

var flexTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	t.Value, t.Valid = time.Time{}, false
	var str string
	if err := json.Unmarshal(data, &str); err != nil || str == "" {
		return nil
	}
	for _, layout := range flexTimeLayouts {
		if parsed, err := time.Parse(layout, str); err == nil {
			t.Value, t.Valid = parsed, true
			return nil
		}
	}
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value.Format(time.RFC3339))
}

// MemberRef is the workout member field, which arrives either as a bare
// email string or as an embedded user object.
type MemberRef struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (m *MemberRef) UnmarshalJSON(data []byte) error {
	*m = MemberRef{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var email string
		if err := json.Unmarshal(data, &email); err != nil {
			return nil
		}
		m.Email = email
		return nil
	}
	type alias MemberRef
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return nil
	}
	*m = MemberRef(a)
	return nil
}

// MarshalJSON writes a bare email string when that is all there is,
// which is the shape enter_workout expects.
func (m MemberRef) MarshalJSON() ([]byte, error) {
	if m.Name == "" && m.Username == "" {
		return json.Marshal(m.Email)
	}
	type alias MemberRef
	return json.Marshal(alias(m))
}

// Label picks the best display name for a member.
func (m MemberRef) Label() string {
	switch {
	case m.Name != "":
		return m.Name
	case m.Username != "":
		return m.Username
	case m.Email != "":
		return m.Email
	default:
		return "Unknown"
	}
}

type Workout struct {
	ID             string    `json:"_id,omitempty"`
	User           MemberRef `json:"user"`
	Sport          string    `json:"sport"`
	Type           string    `json:"type,omitempty"`
	Intensity      string    `json:"intensity"`
	Squad          string    `json:"squad,omitempty"`
	DurationMin    FlexFloat `json:"duration"`
	DistanceMeters FlexFloat `json:"distance"`
	Date           FlexTime  `json:"date"`
	Notes          string    `json:"notes,omitempty"`
}

// BusyEvent is a calendar entry as the blade API stores it. The API is
// inconsistent about field names, so decoding accepts "_id" or "id" for
// the identifier and "start" or "date" for the start time; an event
// without a title becomes "Busy".
type BusyEvent struct {
	ID     string
	Title  string
	Start  time.Time
	End    time.Time
	Notes  string
	AllDay bool
}

func (b *BusyEvent) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID     string   `json:"_id"`
		AltID  string   `json:"id"`
		Title  string   `json:"title"`
		Start  FlexTime `json:"start"`
		Date   FlexTime `json:"date"`
		End    FlexTime `json:"end"`
		Notes  string   `json:"notes"`
		AllDay bool     `json:"allDay"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	b.ID = aux.ID
	if b.ID == "" {
		b.ID = aux.AltID
	}
	b.Title = aux.Title
	if b.Title == "" {
		b.Title = "Busy"
	}
	if aux.Start.Valid {
		b.Start = aux.Start.Value
	} else if aux.Date.Valid {
		b.Start = aux.Date.Value
	}
	if aux.End.Valid {
		b.End = aux.End.Value
	} else if !b.Start.IsZero() {
		b.End = b.Start.Add(time.Hour)
	}
	b.Notes = aux.Notes
	b.AllDay = aux.AllDay
	return nil
}

func (b BusyEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string    `json:"_id,omitempty"`
		Title  string    `json:"title"`
		Start  time.Time `json:"start"`
		End    time.Time `json:"end"`
		Notes  string    `json:"notes,omitempty"`
		AllDay bool      `json:"allDay,omitempty"`
	}{b.ID, b.Title, b.Start, b.End, b.Notes, b.AllDay})
}

type User struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Squad    string `json:"squad,omitempty"`
}
