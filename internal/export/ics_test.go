package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menucal/internal/menu"
)

func weekFixture(t *testing.T) menu.WeeklyMenu {
	t.Helper()

	lunch := menu.NewDailyMenu(menu.NewDate(2024, time.January, 3), menu.MealLunch)
	lunch.Append(menu.NewMenuItem("Chicken & Waffles", "Chicken & Waffles with Syrup", menu.CategoryMainEntree))
	lunch.Append(menu.NewMenuItem("Garden Salad", "", menu.CategorySideDish))

	weeks := menu.BucketWeeks([]menu.DailyMenu{*lunch})
	require.Len(t, weeks, 1)
	return weeks[0]
}

func TestWeeklyCalendar(t *testing.T) {
	cal := WeeklyCalendar(weekFixture(t), "School Menus")
	serialized := cal.Serialize()

	assert.Contains(t, serialized, "BEGIN:VCALENDAR")
	assert.Contains(t, serialized, "BEGIN:VEVENT")
	assert.Contains(t, serialized, "2024-01-03-lunch@menucal")
	// All-day event for the menu's calendar date.
	assert.Contains(t, serialized, "DTSTART;VALUE=DATE:20240103")
	assert.Contains(t, serialized, "DTEND;VALUE=DATE:20240104")
	assert.Contains(t, serialized, "Lunch: Chicken & Waffles")
}

func TestMonthlyCalendarOneEventPerDailyMenu(t *testing.T) {
	day1 := menu.NewDailyMenu(menu.NewDate(2024, time.January, 3), menu.MealLunch)
	day1.Append(menu.NewMenuItem("Pizza", "", menu.CategoryMainEntree))
	day2 := menu.NewDailyMenu(menu.NewDate(2024, time.January, 10), menu.MealBreakfast)
	day2.Append(menu.NewMenuItem("Oatmeal", "", menu.CategoryOther))

	monthly := menu.NewMonthlyMenu(2024, time.January, []menu.DailyMenu{*day1, *day2})
	serialized := MonthlyCalendar(monthly, "").Serialize()

	assert.Equal(t, 2, strings.Count(serialized, "BEGIN:VEVENT"))
	assert.Contains(t, serialized, "Breakfast: Oatmeal")
	assert.Contains(t, serialized, "Lunch: Pizza")
}
