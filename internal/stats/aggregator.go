package stats

import (
	"math"
	"strings"
	"time"

	"github.com/bladehq/bladehub/internal/calendar"
	"github.com/bladehq/bladehub/internal/upstream"
)

// The canonical catalogs. Workouts with other sports still count in
// overall totals, they just get no sport bucket (team views fold them
// into OTHER instead).
var (
	Sports = []string{"Rowing", "Cycling", "Weights", "Running", "Walking", "OTHER"}

	IntensityOrder = []string{"Very Low", "Low", "Medium", "High", "Very High"}
)

// NormalizeIntensity title-cases the raw value word by word and checks
// it against the canonical levels. Anything else returns "" and stays
// out of intensity buckets.
func NormalizeIntensity(raw string) string {
	if raw == "" {
		return ""
	}
	words := strings.Fields(strings.ToLower(raw))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	normalized := strings.Join(words, " ")
	for _, level := range IntensityOrder {
		if normalized == level {
			return level
		}
	}
	return ""
}

func knownSport(sport string) bool {
	for _, s := range Sports {
		if s == sport {
			return true
		}
	}
	return false
}

// PersonalStats keeps raw minute and meter buckets; hour values and
// percentages are derived at the output boundary via Round2.
type PersonalStats struct {
	PerSportMinutes             map[string]float64            `json:"perSportMinutes"`
	PerIntensityMinutes         map[string]float64            `json:"perIntensityMinutes"`
	PerSportIntensityMinutes    map[string]map[string]float64 `json:"perSportIntensityMinutes"`
	PerIntensityMinutesThisWeek map[string]float64            `json:"perIntensityMinutesThisWeek"`

	TotalMinutes                float64 `json:"totalMinutes"`
	TotalHours                  float64 `json:"totalHours"`
	TotalDistanceMeters         float64 `json:"totalDistanceMeters"`
	TotalDistanceMetersThisWeek float64 `json:"totalDistanceMetersThisWeek"`
	SpanWeeks                   float64 `json:"spanWeeks"`
	AvgHoursPerWeek             float64 `json:"avgHoursPerWeek"`
	WorkoutCount                int     `json:"workoutCount"`
	ThisWeekWorkoutCount        int     `json:"thisWeekWorkoutCount"`

	IntensityBands map[string]float64 `json:"intensityBands"`
}

// Round2 rounds for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregate folds an unordered workout list into minute buckets over
// sport, intensity and the Monday-start week containing now. A workout
// needs a valid date and a positive duration to count toward time
// totals; distance accumulates on its own whenever it parses, so a
// garbled duration never hides the kilometers. Bad records are skipped,
// never fatal, but every record counts toward WorkoutCount.
func Aggregate(workouts []upstream.Workout, now time.Time) PersonalStats {
	stats := PersonalStats{
		WorkoutCount:                len(workouts),
		PerSportMinutes:             map[string]float64{},
		PerIntensityMinutes:         map[string]float64{},
		PerSportIntensityMinutes:    map[string]map[string]float64{},
		PerIntensityMinutesThisWeek: map[string]float64{},
		IntensityBands:              map[string]float64{},
	}
	for _, s := range Sports {
		stats.PerSportMinutes[s] = 0
		stats.PerSportIntensityMinutes[s] = map[string]float64{}
		for _, i := range IntensityOrder {
			stats.PerSportIntensityMinutes[s][i] = 0
		}
	}
	for _, i := range IntensityOrder {
		stats.PerIntensityMinutes[i] = 0
		stats.PerIntensityMinutesThisWeek[i] = 0
	}

	week := calendar.SelectWeek(now)

	var firstDate, lastDate time.Time
	for _, w := range workouts {
		if !w.Date.Valid {
			continue
		}
		date := w.Date.Value

		if w.DurationMin.Valid && w.DurationMin.Value > 0 {
			mins := w.DurationMin.Value
			stats.TotalMinutes += mins
			if firstDate.IsZero() || date.Before(firstDate) {
				firstDate = date
			}
			if lastDate.IsZero() || date.After(lastDate) {
				lastDate = date
			}

			inWeek := week.Contains(date)
			if inWeek {
				stats.ThisWeekWorkoutCount++
			}

			intensity := NormalizeIntensity(w.Intensity)
			if knownSport(w.Sport) {
				stats.PerSportMinutes[w.Sport] += mins
				if intensity != "" {
					stats.PerSportIntensityMinutes[w.Sport][intensity] += mins
				}
			}
			if intensity != "" {
				stats.PerIntensityMinutes[intensity] += mins
				if inWeek {
					stats.PerIntensityMinutesThisWeek[intensity] += mins
				}
			}
		}

		if w.DistanceMeters.Valid && w.DistanceMeters.Value > 0 {
			stats.TotalDistanceMeters += w.DistanceMeters.Value
			if week.Contains(date) {
				stats.TotalDistanceMetersThisWeek += w.DistanceMeters.Value
			}
		}
	}

	stats.SpanWeeks = 1
	if !firstDate.IsZero() && lastDate.After(firstDate) {
		span := lastDate.Sub(firstDate).Hours() / (24 * 7)
		if span > 1 {
			stats.SpanWeeks = span
		}
	}

	stats.TotalHours = Round2(stats.TotalMinutes / 60)
	stats.AvgHoursPerWeek = Round2(stats.TotalMinutes / 60 / stats.SpanWeeks)
	stats.IntensityBands = intensityBands(stats.PerIntensityMinutes)
	return stats
}

// intensityBands folds the five levels into three summary bands. Each
// percentage is over intensity-tagged minutes only, so untagged
// workouts do not drag every band toward zero.
func intensityBands(perIntensity map[string]float64) map[string]float64 {
	var tagged float64
	for _, mins := range perIntensity {
		tagged += mins
	}
	bands := map[string]float64{"low": 0, "medium": 0, "high": 0}
	if tagged == 0 {
		return bands
	}
	low := perIntensity["Very Low"] + perIntensity["Low"]
	medium := perIntensity["Medium"]
	high := perIntensity["High"] + perIntensity["Very High"]
	bands["low"] = Round2(low / tagged * 100)
	bands["medium"] = Round2(medium / tagged * 100)
	bands["high"] = Round2(high / tagged * 100)
	return bands
}
