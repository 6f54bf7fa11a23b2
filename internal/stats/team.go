package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/bladehq/bladehub/internal/calendar"
	"github.com/bladehq/bladehub/internal/upstream"
)

const weeklySeriesWeeks = 5

type MemberStats struct {
	Member            string             `json:"member"`
	Minutes           float64            `json:"minutes"`
	TotalHours        float64            `json:"totalHours"`
	DistanceMeters    float64            `json:"distanceMeters"`
	Workouts          int                `json:"workouts"`
	PerIntensityHours map[string]float64 `json:"perIntensityHours"`
	PerSportHours     map[string]float64 `json:"perSportHours"`
}

// WeekSeriesRow is one week of the per-member hours series, labeled
// with the month/day of its Monday.
type WeekSeriesRow struct {
	Week        string             `json:"week"`
	MemberHours map[string]float64 `json:"memberHours"`
}

type TeamStats struct {
	Members               []MemberStats   `json:"members"`
	MemberCount           int             `json:"memberCount"`
	TotalHours            float64         `json:"totalHours"`
	TotalDistanceMeters   float64         `json:"totalDistanceMeters"`
	WorkoutCount          int             `json:"workoutCount"`
	AvgHoursPerAthlete    float64         `json:"avgHoursPerAthlete"`
	AvgDistancePerAthlete float64         `json:"avgDistancePerAthlete"`
	WeeklySeries          []WeekSeriesRow `json:"weeklySeries"`
}

// AggregateTeam buckets workouts per member. Unlike the personal view,
// unknown sports count here under OTHER so every minute lands in some
// member column. Members are sorted by label for stable output.
func AggregateTeam(workouts []upstream.Workout, now time.Time) TeamStats {
	type memberAcc struct {
		minutes      float64
		distance     float64
		workouts     int
		perIntensity map[string]float64
		perSport     map[string]float64
	}
	accs := map[string]*memberAcc{}
	accFor := func(label string) *memberAcc {
		acc, ok := accs[label]
		if !ok {
			acc = &memberAcc{
				perIntensity: map[string]float64{},
				perSport:     map[string]float64{},
			}
			for _, i := range IntensityOrder {
				acc.perIntensity[i] = 0
			}
			for _, s := range Sports {
				acc.perSport[s] = 0
			}
			accs[label] = acc
		}
		return acc
	}

	for _, w := range workouts {
		label := w.User.Label()
		acc := accFor(label)

		if w.DurationMin.Valid && w.DurationMin.Value > 0 {
			mins := w.DurationMin.Value
			acc.minutes += mins
			acc.workouts++

			if intensity := NormalizeIntensity(w.Intensity); intensity != "" {
				acc.perIntensity[intensity] += mins
			}
			sport := w.Sport
			if !knownSport(sport) {
				sport = "OTHER"
			}
			acc.perSport[sport] += mins
		}
		if w.DistanceMeters.Valid && w.DistanceMeters.Value > 0 {
			acc.distance += w.DistanceMeters.Value
		}
	}

	labels := make([]string, 0, len(accs))
	for label := range accs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	team := TeamStats{MemberCount: len(labels)}
	var totalMinutes float64
	for _, label := range labels {
		acc := accs[label]
		totalMinutes += acc.minutes
		team.TotalDistanceMeters += acc.distance
		team.WorkoutCount += acc.workouts

		member := MemberStats{
			Member:            label,
			Minutes:           acc.minutes,
			TotalHours:        Round2(acc.minutes / 60),
			DistanceMeters:    acc.distance,
			Workouts:          acc.workouts,
			PerIntensityHours: map[string]float64{},
			PerSportHours:     map[string]float64{},
		}
		for i, mins := range acc.perIntensity {
			member.PerIntensityHours[i] = Round2(mins / 60)
		}
		for s, mins := range acc.perSport {
			member.PerSportHours[s] = Round2(mins / 60)
		}
		team.Members = append(team.Members, member)
	}

	team.TotalHours = Round2(totalMinutes / 60)
	if team.MemberCount > 0 {
		team.AvgHoursPerAthlete = Round2(totalMinutes / 60 / float64(team.MemberCount))
		team.AvgDistancePerAthlete = Round2(team.TotalDistanceMeters / float64(team.MemberCount))
	}
	team.WeeklySeries = weeklySeries(workouts, labels, now)
	return team
}

// weeklySeries computes per-member hours for the last five Monday-start
// weeks, current week last.
func weeklySeries(workouts []upstream.Workout, labels []string, now time.Time) []WeekSeriesRow {
	currentWeek := calendar.SelectWeek(now)

	rows := make([]WeekSeriesRow, 0, weeklySeriesWeeks)
	for i := weeklySeriesWeeks - 1; i >= 0; i-- {
		weekStart := currentWeek.Start.AddDate(0, 0, -i*7)
		window := calendar.WeekWindow{Start: weekStart, End: weekStart.AddDate(0, 0, 7)}

		row := WeekSeriesRow{
			Week:        weekLabel(weekStart),
			MemberHours: map[string]float64{},
		}
		for _, label := range labels {
			row.MemberHours[label] = 0
		}
		for _, w := range workouts {
			if !w.Date.Valid || !window.Contains(w.Date.Value) {
				continue
			}
			if !w.DurationMin.Valid || w.DurationMin.Value <= 0 {
				continue
			}
			label := w.User.Label()
			if _, ok := row.MemberHours[label]; ok {
				row.MemberHours[label] = Round2(row.MemberHours[label] + w.DurationMin.Value/60)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func weekLabel(weekStart time.Time) string {
	return fmt.Sprintf("%d/%d", int(weekStart.Month()), weekStart.Day())
}
