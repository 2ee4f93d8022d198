package menu

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day meaning. The embedded
// time.Time is always midnight UTC so that values compare cleanly.
type Date struct {
	time.Time
}

// NewDate constructs a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MealType identifies which meal of the day a menu covers.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealSnack     MealType = "snack"
)

// ParseMealType validates a meal type string from config or a query
// parameter.
func ParseMealType(s string) (MealType, error) {
	switch MealType(strings.ToLower(strings.TrimSpace(s))) {
	case MealBreakfast:
		return MealBreakfast, nil
	case MealLunch:
		return MealLunch, nil
	case MealSnack:
		return MealSnack, nil
	default:
		return "", fmt.Errorf("unknown meal type %q", s)
	}
}

// Category is the food category of a single menu item.
type Category string

const (
	CategoryMainEntree       Category = "main_entree"
	CategoryVegetarianEntree Category = "vegetarian_entree"
	CategorySecondChoice     Category = "second_choice_entree"
	CategorySideDish         Category = "side_dish"
	// CategorySnack covers the afterschool / preschool / SAC snack slots.
	CategorySnack Category = "snack"
	CategoryOther Category = "other"
)

// MenuItem is a single food offering. Construct via NewMenuItem so the
// vegetarian/vegan flags are derived consistently; treat values as
// immutable afterwards.
type MenuItem struct {
	Name        string
	Description string
	Category    Category
	Vegetarian  bool
	Vegan       bool
	Allergens   []string
	Nutrition   map[string]string
}

// NewMenuItem builds a MenuItem, inferring the vegetarian/vegan flags
// from the item name and category. Vegan always implies vegetarian.
func NewMenuItem(name, description string, category Category) MenuItem {
	if category == "" {
		category = CategoryOther
	}
	if description == "" {
		description = name
	}
	vegan, vegetarian := inferDiet(name, category)
	return MenuItem{
		Name:        name,
		Description: description,
		Category:    category,
		Vegetarian:  vegetarian,
		Vegan:       vegan,
	}
}

// inferDiet derives (vegan, vegetarian) from the item name and category.
func inferDiet(name string, category Category) (bool, bool) {
	lower := strings.ToLower(name)
	vegan := strings.Contains(lower, "vegan")
	vegetarian := vegan ||
		strings.Contains(lower, "vegetarian") ||
		strings.Contains(lower, "veggie") ||
		category == CategoryVegetarianEntree
	return vegan, vegetarian
}

// menuItemJSON is the wire shape for MenuItem. The diet flags are
// pointers so that deserialization can tell "absent" from "false" and
// re-run the inference rule for absent flags.
type menuItemJSON struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    Category          `json:"category"`
	Vegetarian  *bool             `json:"vegetarian,omitempty"`
	Vegan       *bool             `json:"vegan,omitempty"`
	Allergens   []string          `json:"allergens,omitempty"`
	Nutrition   map[string]string `json:"nutrition,omitempty"`
}

func (m MenuItem) MarshalJSON() ([]byte, error) {
	vegetarian := m.Vegetarian
	vegan := m.Vegan
	return json.Marshal(menuItemJSON{
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Vegetarian:  &vegetarian,
		Vegan:       &vegan,
		Allergens:   m.Allergens,
		Nutrition:   m.Nutrition,
	})
}

func (m *MenuItem) UnmarshalJSON(b []byte) error {
	var raw menuItemJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	category := raw.Category
	if category == "" {
		category = CategoryOther
	}

	inferredVegan, inferredVegetarian := inferDiet(raw.Name, category)
	vegan := inferredVegan
	if raw.Vegan != nil {
		vegan = *raw.Vegan
	}
	vegetarian := inferredVegetarian
	if raw.Vegetarian != nil {
		vegetarian = *raw.Vegetarian
	}
	if vegan {
		vegetarian = true
	}

	description := raw.Description
	if description == "" {
		description = raw.Name
	}

	*m = MenuItem{
		Name:        raw.Name,
		Description: description,
		Category:    category,
		Vegetarian:  vegetarian,
		Vegan:       vegan,
		Allergens:   raw.Allergens,
		Nutrition:   raw.Nutrition,
	}
	return nil
}

// DailyMenu is one meal type on one calendar date. Items are appended
// during construction and the value is treated as read-only afterwards.
type DailyMenu struct {
	Date      Date       `json:"date"`
	Meal      MealType   `json:"meal"`
	Items     []MenuItem `json:"items"`
	Notes     []string   `json:"notes,omitempty"`
	SchoolDay bool       `json:"school_day"`
}

// NewDailyMenu starts an empty DailyMenu for the given date and meal.
func NewDailyMenu(date Date, meal MealType) *DailyMenu {
	return &DailyMenu{
		Date:      date,
		Meal:      meal,
		Items:     []MenuItem{},
		SchoolDay: true,
	}
}

// Append adds an item during construction.
func (d *DailyMenu) Append(item MenuItem) {
	d.Items = append(d.Items, item)
}

func (d *DailyMenu) UnmarshalJSON(b []byte) error {
	// SchoolDay defaults to true when absent, so decode through a shape
	// that can tell the difference.
	type alias DailyMenu
	raw := struct {
		*alias
		SchoolDay *bool `json:"school_day"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.SchoolDay = raw.SchoolDay == nil || *raw.SchoolDay
	return nil
}

// WeeklyMenu is a Monday-to-Sunday window of daily menus.
type WeeklyMenu struct {
	StartDate Date        `json:"start_date"`
	EndDate   Date        `json:"end_date"`
	Days      []DailyMenu `json:"days"`
}

// NewWeeklyMenu starts an empty week at the given Monday.
func NewWeeklyMenu(start Date) (*WeeklyMenu, error) {
	if start.Weekday() != time.Monday {
		return nil, fmt.Errorf("week start %s is a %s, not a Monday", start, start.Weekday())
	}
	return &WeeklyMenu{
		StartDate: start,
		EndDate:   start.AddDays(6),
		Days:      []DailyMenu{},
	}, nil
}

// Contains reports whether d falls within [StartDate, EndDate].
func (w *WeeklyMenu) Contains(d Date) bool {
	return !d.Before(w.StartDate.Time) && !d.After(w.EndDate.Time)
}

// Add appends a daily menu, enforcing the window invariant.
func (w *WeeklyMenu) Add(day DailyMenu) error {
	if !w.Contains(day.Date) {
		return fmt.Errorf("date %s outside week %s..%s", day.Date, w.StartDate, w.EndDate)
	}
	w.Days = append(w.Days, day)
	return nil
}

// MonthlyMenu is a year+month label plus the weeks that intersect it.
// The label is informational and set by the caller; a week may span a
// month boundary and still belong here.
type MonthlyMenu struct {
	Year  int          `json:"year"`
	Month time.Month   `json:"month"`
	Weeks []WeeklyMenu `json:"weeks"`
}

// NewMonthlyMenu buckets the given flat day list into weeks under the
// supplied year/month label.
func NewMonthlyMenu(year int, month time.Month, days []DailyMenu) MonthlyMenu {
	return MonthlyMenu{
		Year:  year,
		Month: month,
		Weeks: BucketWeeks(days),
	}
}
