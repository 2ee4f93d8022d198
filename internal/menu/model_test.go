package menu

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMenuItemDietInference(t *testing.T) {
	tests := []struct {
		name           string
		itemName       string
		category       Category
		wantVegan      bool
		wantVegetarian bool
	}{
		{
			name:           "vegan name implies both flags",
			itemName:       "Vegan Corn & Chile Tamales",
			category:       CategoryMainEntree,
			wantVegan:      true,
			wantVegetarian: true,
		},
		{
			name:           "vegetarian name",
			itemName:       "Vegetarian Chili",
			category:       CategoryMainEntree,
			wantVegetarian: true,
		},
		{
			name:           "veggie name",
			itemName:       "Veggie Burger",
			category:       CategorySecondChoice,
			wantVegetarian: true,
		},
		{
			name:           "vegetarian category",
			itemName:       "Cheese Enchiladas",
			category:       CategoryVegetarianEntree,
			wantVegetarian: true,
		},
		{
			name:     "plain entree",
			itemName: "Chicken Tenders",
			category: CategoryMainEntree,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := NewMenuItem(tc.itemName, "", tc.category)
			assert.Equal(t, tc.wantVegan, item.Vegan)
			assert.Equal(t, tc.wantVegetarian, item.Vegetarian)
			if item.Vegan {
				assert.True(t, item.Vegetarian, "vegan must imply vegetarian")
			}
		})
	}
}

func TestNewMenuItemDefaults(t *testing.T) {
	item := NewMenuItem("Pizza", "", "")
	assert.Equal(t, CategoryOther, item.Category)
	assert.Equal(t, "Pizza", item.Description, "description defaults to name")
}

func TestMenuItemRoundTripReinfersDietFlags(t *testing.T) {
	// Flags intentionally absent from the payload: deserialization must
	// rerun the name-based inference, not copy zero values.
	payload := `{"name":"Vegan Corn & Chile Tamales","description":"Vegan Corn & Chile Tamales","category":"main_entree"}`

	var item MenuItem
	require.NoError(t, json.Unmarshal([]byte(payload), &item))
	assert.True(t, item.Vegan)
	assert.True(t, item.Vegetarian)
}

func TestMenuItemRoundTripPreservesExplicitFlags(t *testing.T) {
	original := NewMenuItem("Vegan Corn & Chile Tamales", "", CategoryMainEntree)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded MenuItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestMenuItemUnmarshalEnforcesVeganImpliesVegetarian(t *testing.T) {
	payload := `{"name":"Tofu Scramble","category":"other","vegan":true,"vegetarian":false}`

	var item MenuItem
	require.NoError(t, json.Unmarshal([]byte(payload), &item))
	assert.True(t, item.Vegan)
	assert.True(t, item.Vegetarian)
}

func TestDateJSONFormat(t *testing.T) {
	d := NewDate(2024, time.March, 5)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05"`, string(data))

	var decoded Date
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(d.Time))
}

func TestDailyMenuSchoolDayDefaultsTrue(t *testing.T) {
	payload := `{"date":"2024-01-02","meal":"lunch","items":[]}`

	var day DailyMenu
	require.NoError(t, json.Unmarshal([]byte(payload), &day))
	assert.True(t, day.SchoolDay)

	payload = `{"date":"2024-01-02","meal":"lunch","items":[],"school_day":false}`
	require.NoError(t, json.Unmarshal([]byte(payload), &day))
	assert.False(t, day.SchoolDay)
}

func TestNewWeeklyMenuRequiresMonday(t *testing.T) {
	_, err := NewWeeklyMenu(NewDate(2024, time.January, 2)) // a Tuesday
	require.Error(t, err)

	week, err := NewWeeklyMenu(NewDate(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.January, 7), week.EndDate)
}

func TestWeeklyMenuAddEnforcesWindow(t *testing.T) {
	week, err := NewWeeklyMenu(NewDate(2024, time.January, 1))
	require.NoError(t, err)

	inside := *NewDailyMenu(NewDate(2024, time.January, 3), MealLunch)
	require.NoError(t, week.Add(inside))

	outside := *NewDailyMenu(NewDate(2024, time.January, 8), MealLunch)
	require.Error(t, week.Add(outside))
}

func TestParseMealType(t *testing.T) {
	meal, err := ParseMealType(" Lunch ")
	require.NoError(t, err)
	assert.Equal(t, MealLunch, meal)

	_, err = ParseMealType("supper")
	require.Error(t, err)
}
