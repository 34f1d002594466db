package util

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"mealsnap/models"
)

// DEFAULT_WEEKLY_CALORIES is shown instead of an empty chart.
var DEFAULT_WEEKLY_CALORIES = [7]float64{2100, 1950, 2230, 2010, 1890, 2400, 2150}

// WEEKDAY_LABELS are the chart labels, Monday first.
var WEEKDAY_LABELS = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

const (
	UNKNOWN_DATE      = "Unknown date"
	MEAL_DATE_LAYOUT  = "Jan 2, 2006"
	DEFAULT_MEAL_NAME = "Meal"
	RECENT_MEALS      = 3
)

// Accepted meal timestamp layouts. Layouts without a zone are read in the
// caller's location.
var mealDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02",
}

// ParseMealDate parses a backend timestamp. Zoneless values are taken in loc.
// That includes date-only values such as "2026-10-14", which mean local
// midnight here rather than UTC midnight as a browser's Date parser reads
// them, so a meal logged for a day always lands on that weekday.
func ParseMealDate(value string, loc *time.Location) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range mealDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatMealDate renders value as "Jan 2, 2006" in loc, or "Unknown date".
func FormatMealDate(value string, loc *time.Location) string {
	t, ok := ParseMealDate(value, loc)
	if !ok {
		return UNKNOWN_DATE
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(MEAL_DATE_LAYOUT)
}

// weekdayIndex maps Monday to 0 and Sunday to 6.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// civilDay counts calendar days, independent of DST.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// ComputeWeeklySeries sums calories per weekday for meals dated within the
// six days before ref (inclusive of ref's day). When no meal contributes a
// positive value the default baseline is returned.
func ComputeWeeklySeries(meals []models.MealRecord, ref time.Time) [7]float64 {
	if len(meals) == 0 {
		return DEFAULT_WEEKLY_CALORIES
	}
	loc := ref.Location()
	today := civilDay(ref)

	var totals [7]float64
	hasValues := false
	for _, meal := range meals {
		if meal.Calories == nil {
			continue
		}
		calories := *meal.Calories
		date, ok := ParseMealDate(meal.DateValue(), loc)
		if !ok {
			continue
		}
		date = date.In(loc)

		diff := today - civilDay(date)
		if diff < 0 || diff > 6 {
			continue
		}
		totals[weekdayIndex(date.Weekday())] += calories
		hasValues = hasValues || calories > 0
	}
	if !hasValues {
		return DEFAULT_WEEKLY_CALORIES
	}
	return totals
}

// MealView is a display row for a meal.
type MealView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Calories string `json:"calories"`
	Date     string `json:"date"`
	Image    string `json:"image"`
}

// ImageResolver turns a stored image reference into a URL.
type ImageResolver func(string) string

func newMealView(meal models.MealRecord, index int, loc *time.Location, resolve ImageResolver) MealView {
	view := MealView{
		ID:       meal.ID,
		Name:     meal.Name,
		Calories: "-",
		Date:     FormatMealDate(meal.DateValue(), loc),
		Image:    meal.Image,
	}
	if view.Name == "" {
		view.Name = DEFAULT_MEAL_NAME
	}
	if view.ID == "" {
		view.ID = fmt.Sprintf("%s-%d", view.Name, index)
	}
	if meal.Calories != nil {
		view.Calories = strconv.FormatFloat(*meal.Calories, 'f', -1, 64)
	}
	if resolve != nil {
		view.Image = resolve(meal.Image)
	}
	return view
}

// RecentMeals returns the n most recent meals, newest first. Meals without
// a parseable date sort as if dated at minus their list index in
// milliseconds from the epoch.
func RecentMeals(meals []models.MealRecord, n int, loc *time.Location, resolve ImageResolver) []MealView {
	type entry struct {
		view     MealView
		sortTime int64
	}
	entries := make([]entry, 0, len(meals))
	for i, meal := range meals {
		sortTime := int64(-i)
		if t, ok := ParseMealDate(meal.DateValue(), loc); ok {
			sortTime = t.UnixMilli()
		}
		entries = append(entries, entry{view: newMealView(meal, i, loc, resolve), sortTime: sortTime})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].sortTime > entries[b].sortTime
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	out := make([]MealView, len(entries))
	for i, e := range entries {
		out[i] = e.view
	}
	return out
}

// TableRows returns every meal as a display row in backend order.
func TableRows(meals []models.MealRecord, loc *time.Location, resolve ImageResolver) []MealView {
	rows := make([]MealView, len(meals))
	for i, meal := range meals {
		rows[i] = newMealView(meal, i, loc, resolve)
	}
	return rows
}
