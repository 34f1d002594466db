package util

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mealsnap/models"
)

var testLoc = time.FixedZone("test", 2*60*60)

// Wednesday.
var testRef = time.Date(2026, 10, 14, 15, 30, 0, 0, testLoc)

func kcal(v float64) *float64 { return &v }

func TestComputeWeeklySeries_EmptyIsBaseline(t *testing.T) {
	assert.Equal(t, DEFAULT_WEEKLY_CALORIES, ComputeWeeklySeries(nil, testRef))
	assert.Equal(t, DEFAULT_WEEKLY_CALORIES, ComputeWeeklySeries([]models.MealRecord{}, testRef))
}

func TestComputeWeeklySeries_UnparseableDatesIsBaseline(t *testing.T) {
	meals := []models.MealRecord{
		{Name: "a", Calories: kcal(500), Date: "yesterday-ish"},
		{Name: "b", Calories: kcal(300)},
	}

	assert.Equal(t, DEFAULT_WEEKLY_CALORIES, ComputeWeeklySeries(meals, testRef))
}

func TestComputeWeeklySeries_SameDaySums(t *testing.T) {
	meals := []models.MealRecord{
		{Name: "lunch", Calories: kcal(300), Date: "2026-10-14T12:00:00"},
		{Name: "dinner", Calories: kcal(200), Date: "2026-10-14"},
	}

	series := ComputeWeeklySeries(meals, testRef)

	assert.Equal(t, [7]float64{0, 0, 500, 0, 0, 0, 0}, series)
}

func TestComputeWeeklySeries_WindowAndWeekdayBuckets(t *testing.T) {
	meals := []models.MealRecord{
		{Calories: kcal(420), Date: "2026-10-12"},               // Monday
		{Calories: kcal(780), CreatedAt: "2026-10-13T19:02:44"}, // Tuesday
		{Calories: kcal(100), Date: "2026-10-08"},               // Thursday, 6 days back
		{Calories: kcal(999), Date: "2026-10-06"},               // 8 days back
		{Calories: kcal(999), Date: "2026-10-15"},               // tomorrow
		{Calories: nil, Date: "2026-10-14"},
	}

	series := ComputeWeeklySeries(meals, testRef)

	assert.Equal(t, [7]float64{420, 780, 0, 100, 0, 0, 0}, series)
}

func TestComputeWeeklySeries_EightDaysAgoExcluded(t *testing.T) {
	meals := []models.MealRecord{{Calories: kcal(650), Date: "2026-10-06T09:00:00"}}

	assert.Equal(t, DEFAULT_WEEKLY_CALORIES, ComputeWeeklySeries(meals, testRef))
}

func TestComputeWeeklySeries_ZeroTotalsAreBaseline(t *testing.T) {
	meals := []models.MealRecord{{Calories: kcal(0), Date: "2026-10-14"}}

	assert.Equal(t, DEFAULT_WEEKLY_CALORIES, ComputeWeeklySeries(meals, testRef))
}

func TestComputeWeeklySeries_ZonedTimestampUsesReferenceZone(t *testing.T) {
	// 23:30 UTC on Sunday is 01:30 Monday in the reference zone.
	meals := []models.MealRecord{{Calories: kcal(250), Date: "2026-10-11T23:30:00Z"}}

	series := ComputeWeeklySeries(meals, testRef)

	assert.Equal(t, [7]float64{250, 0, 0, 0, 0, 0, 0}, series)
}

func TestParseMealDate(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"2026-10-14", true},
		{"2026-10-14T07:45:10", true},
		{"2026-10-14T07:45:10.123456", true},
		{"2026-10-14 07:45:10", true},
		{"2026-10-14T07:45:10+02:00", true},
		{"Wed, 14 Oct 2026 07:45:10 GMT", true},
		{"", false},
		{"not a date", false},
	}
	for _, c := range cases {
		_, ok := ParseMealDate(c.value, testLoc)
		assert.Equal(t, c.ok, ok, c.value)
	}
}

func TestParseMealDate_DateOnlyIsLocalMidnight(t *testing.T) {
	got, ok := ParseMealDate("2026-10-14", testLoc)

	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, testLoc), got)
	assert.Equal(t, time.Wednesday, got.Weekday())
}

func TestFormatMealDate(t *testing.T) {
	assert.Equal(t, "Oct 14, 2026", FormatMealDate("2026-10-14T07:45:10", testLoc))
	assert.Equal(t, UNKNOWN_DATE, FormatMealDate("", testLoc))
	assert.Equal(t, UNKNOWN_DATE, FormatMealDate("soon", testLoc))
}

func TestRecentMeals(t *testing.T) {
	meals := []models.MealRecord{
		{ID: "1", Name: "Salad", Calories: kcal(420), Date: "2026-10-12"},
		{ID: "2", Name: "Pasta", Calories: kcal(780), Date: "2026-10-13"},
		{Name: "", Date: "whenever"},
		{ID: "4", Name: "Oatmeal", Calories: kcal(310), CreatedAt: "2026-10-14T07:45:10", Image: "oats.jpg"},
	}
	resolve := func(v string) string { return "img:" + v }

	recent := RecentMeals(meals, RECENT_MEALS, testLoc, resolve)

	if assert.Len(t, recent, 3) {
		assert.Equal(t, "Oatmeal", recent[0].Name)
		assert.Equal(t, "310", recent[0].Calories)
		assert.Equal(t, "Oct 14, 2026", recent[0].Date)
		assert.Equal(t, "img:oats.jpg", recent[0].Image)
		assert.Equal(t, "Pasta", recent[1].Name)
		assert.Equal(t, "Salad", recent[2].Name)
	}
}

func TestRecentMeals_UndatedKeepIndexOrder(t *testing.T) {
	meals := []models.MealRecord{{Name: "first"}, {Name: "second"}, {Name: ""}}

	recent := RecentMeals(meals, 5, testLoc, nil)

	if assert.Len(t, recent, 3) {
		assert.Equal(t, "first", recent[0].Name)
		assert.Equal(t, "second", recent[1].Name)
		assert.Equal(t, DEFAULT_MEAL_NAME, recent[2].Name)
		assert.Equal(t, "Meal-2", recent[2].ID)
		assert.Equal(t, "-", recent[2].Calories)
		assert.Equal(t, UNKNOWN_DATE, recent[2].Date)
	}
}

func TestTableRows(t *testing.T) {
	meals := []models.MealRecord{
		{ID: "2", Name: "Pasta", Calories: kcal(780.5), Date: "2026-10-13"},
		{ID: "1", Name: "Salad", Calories: kcal(420), Date: "2026-10-12"},
	}

	rows := TableRows(meals, testLoc, nil)

	assert.Equal(t, []MealView{
		{ID: "2", Name: "Pasta", Calories: "780.5", Date: "Oct 13, 2026"},
		{ID: "1", Name: "Salad", Calories: "420", Date: "Oct 12, 2026"},
	}, rows)
}

func TestRenderWeeklyChart(t *testing.T) {
	var buf bytes.Buffer

	err := RenderWeeklyChart(&buf, DEFAULT_WEEKLY_CALORIES)

	assert.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, WEEKLY_CHART_TITLE)
	assert.Contains(t, html, "Mon")
	assert.Contains(t, html, "2400")
}
