package menu

import "sort"

// BucketWeeks groups an unordered flat list of daily menus into
// Monday-to-Sunday weeks. One WeeklyMenu is produced per distinct week
// present in the input, in ascending order; absent weeks are not
// filled in. The input order is irrelevant since the days are sorted
// by date first.
func BucketWeeks(days []DailyMenu) []WeeklyMenu {
	if len(days) == 0 {
		return []WeeklyMenu{}
	}

	sorted := make([]DailyMenu, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	weeks := make([]WeeklyMenu, 0)
	var current *WeeklyMenu

	for _, day := range sorted {
		start := WeekStart(day.Date)
		if current == nil || !start.Equal(current.StartDate.Time) {
			if current != nil {
				weeks = append(weeks, *current)
			}
			// start is Monday-aligned by construction, so this
			// cannot fail.
			current, _ = NewWeeklyMenu(start)
		}
		_ = current.Add(day)
	}
	weeks = append(weeks, *current)

	return weeks
}

// WeekStart returns the Monday on or before d.
func WeekStart(d Date) Date {
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}
