package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"menucal/internal/menu"
)

const productID = "-//menucal//school menu calendar//EN"

// WeeklyCalendar renders one week of menus as an iCalendar with one
// all-day event per daily menu.
func WeeklyCalendar(week menu.WeeklyMenu, calName string) *ics.Calendar {
	cal := newCalendar(calName)
	addWeek(cal, week)
	return cal
}

// MonthlyCalendar renders a whole monthly snapshot.
func MonthlyCalendar(m menu.MonthlyMenu, calName string) *ics.Calendar {
	cal := newCalendar(calName)
	for _, week := range m.Weeks {
		addWeek(cal, week)
	}
	return cal
}

func newCalendar(name string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetName(name)
	}
	return cal
}

func addWeek(cal *ics.Calendar, week menu.WeeklyMenu) {
	for _, day := range week.Days {
		uid := fmt.Sprintf("%s-%s@menucal", day.Date, day.Meal)

		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(time.Now().UTC())
		ev.SetAllDayStartAt(day.Date.Time)
		ev.SetAllDayEndAt(day.Date.AddDays(1).Time)
		ev.SetSummary(summaryFor(day))
		ev.SetDescription(descriptionFor(day))
	}
}

// summaryFor is the one-line event title: the meal type plus the item
// names.
func summaryFor(day menu.DailyMenu) string {
	names := make([]string, 0, len(day.Items))
	for _, item := range day.Items {
		names = append(names, item.Name)
	}
	return fmt.Sprintf("%s: %s", mealLabel(day.Meal), strings.Join(names, ", "))
}

// descriptionFor lists the full item descriptions, one per line, plus
// any special notes.
func descriptionFor(day menu.DailyMenu) string {
	lines := make([]string, 0, len(day.Items)+len(day.Notes))
	for _, item := range day.Items {
		lines = append(lines, item.Description)
	}
	lines = append(lines, day.Notes...)
	return strings.Join(lines, "\n")
}

func mealLabel(meal menu.MealType) string {
	switch meal {
	case menu.MealBreakfast:
		return "Breakfast"
	case menu.MealLunch:
		return "Lunch"
	case menu.MealSnack:
		return "Snack"
	default:
		return string(meal)
	}
}
