package menu

import (
	"fmt"
	"time"
)

// ResolveWeekStart maps an arbitrary date to the Monday of the week
// that applies to it: weekday dates resolve to the week containing
// them, weekend dates roll forward to the following week. The same
// rule drives both serving and the choice of scrape target for
// scheduled runs.
func ResolveWeekStart(d Date) Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(2)
	case time.Sunday:
		return d.AddDays(1)
	default:
		return WeekStart(d)
	}
}

// WeekFor resolves the week applying to d within weeks. A miss is a
// normal "no data yet" state, reported through ok=false rather than an
// error.
func WeekFor(weeks []WeeklyMenu, d Date) (WeeklyMenu, bool) {
	start := ResolveWeekStart(d)
	for _, w := range weeks {
		if w.StartDate.Equal(start.Time) {
			return w, true
		}
	}
	return WeeklyMenu{}, false
}

// WeekFor resolves against this month's weeks.
func (m MonthlyMenu) WeekFor(d Date) (WeeklyMenu, bool) {
	return WeekFor(m.Weeks, d)
}

// DayMeals partitions one weekday's menus by meal type. Each slot is
// nil when that meal has no record in the week.
type DayMeals struct {
	Breakfast *DailyMenu `json:"breakfast,omitempty"`
	Lunch     *DailyMenu `json:"lunch,omitempty"`
	Snack     *DailyMenu `json:"snack,omitempty"`
}

// MealsOn returns the meals recorded for the given weekday of this
// week. Saturday and Sunday are excluded from day-level queries.
func (w *WeeklyMenu) MealsOn(weekday time.Weekday) (DayMeals, error) {
	if weekday == time.Saturday || weekday == time.Sunday {
		return DayMeals{}, fmt.Errorf("day-level lookup not defined for %s", weekday)
	}

	var out DayMeals
	for i := range w.Days {
		day := &w.Days[i]
		if day.Date.Weekday() != weekday {
			continue
		}
		switch day.Meal {
		case MealBreakfast:
			out.Breakfast = day
		case MealLunch:
			out.Lunch = day
		case MealSnack:
			out.Snack = day
		}
	}
	return out, nil
}

// MealsOn resolves the week for d and then the weekday meals of d
// itself. ok is false when no week covers d or d is a weekend date.
func (m MonthlyMenu) MealsOn(d Date) (DayMeals, bool) {
	week, ok := m.WeekFor(d)
	if !ok {
		return DayMeals{}, false
	}
	meals, err := week.MealsOn(d.Weekday())
	if err != nil {
		return DayMeals{}, false
	}
	return meals, true
}
