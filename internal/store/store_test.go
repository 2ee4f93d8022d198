package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menucal/internal/menu"
)

func monthlyFixture(year int, month time.Month, day int) menu.MonthlyMenu {
	d := menu.NewDailyMenu(menu.NewDate(year, month, day), menu.MealLunch)
	d.Append(menu.NewMenuItem("Vegan Corn & Chile Tamales", "", menu.CategoryMainEntree))
	return menu.NewMonthlyMenu(year, month, []menu.DailyMenu{*d})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())

	original := monthlyFixture(2024, time.January, 3)
	require.NoError(t, st.SaveMonthly(original))

	loaded, err := st.LoadMonthly(2024, time.January)
	require.NoError(t, err)

	assert.Equal(t, original.Year, loaded.Year)
	assert.Equal(t, original.Month, loaded.Month)
	require.Len(t, loaded.Weeks, 1)
	require.Len(t, loaded.Weeks[0].Days, 1)

	// Derived fields survive the round trip through the model's
	// deserialization.
	item := loaded.Weeks[0].Days[0].Items[0]
	assert.True(t, item.Vegan)
	assert.True(t, item.Vegetarian)
}

func TestLoadMonthlyNotFound(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.LoadMonthly(2024, time.February)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveMonthlyReplacesWholesale(t *testing.T) {
	st := New(t.TempDir())

	require.NoError(t, st.SaveMonthly(monthlyFixture(2024, time.January, 3)))
	require.NoError(t, st.SaveMonthly(monthlyFixture(2024, time.January, 10)))

	loaded, err := st.LoadMonthly(2024, time.January)
	require.NoError(t, err)
	require.Len(t, loaded.Weeks, 1)
	assert.Equal(t, menu.NewDate(2024, time.January, 8), loaded.Weeks[0].StartDate)
}

func TestWeeksFlattensAllSnapshotsSorted(t *testing.T) {
	st := New(t.TempDir())

	require.NoError(t, st.SaveMonthly(monthlyFixture(2024, time.February, 7)))
	require.NoError(t, st.SaveMonthly(monthlyFixture(2024, time.January, 3)))

	weeks, err := st.Weeks()
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, menu.NewDate(2024, time.January, 1), weeks[0].StartDate)
	assert.Equal(t, menu.NewDate(2024, time.February, 5), weeks[1].StartDate)
}

func TestWeeksMissingDirIsEmpty(t *testing.T) {
	st := New(t.TempDir() + "/does-not-exist")

	weeks, err := st.Weeks()
	require.NoError(t, err)
	assert.Empty(t, weeks)
}
