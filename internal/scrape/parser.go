package scrape

import (
	"html"
	"strconv"
	"time"

	"menucal/internal/menu"
)

// Element identities emitted by the district's calendar widget. These
// are the widget's rendering contract, not anything configurable.
const (
	classDayBox    = "day-box"
	classWeekend   = "weekend"
	classDayNumber = "day-number"
	classItemInfo  = "item-info"
	classItemColor = "item-color"
	classItemTitle = "item-title"

	attrDay   = "data-day"
	attrMonth = "data-month"
	attrYear  = "data-year"
	attrTitle = "title"
	attrStyle = "style"
)

// dayAccumulator collects one day box's date and completed items while
// its container is being traversed.
type dayAccumulator struct {
	date    menu.Date
	hasDate bool
	items   []menu.MenuItem
}

// itemAccumulator collects one item's fields between item-info opens.
type itemAccumulator struct {
	name        string
	description string
	category    menu.Category
	allergens   []string
	nutrition   map[string]string
}

// Parser reconstructs daily menu records for one meal type from the
// widget's flat, document-order tag-open event stream. A day (or item)
// is only fully known once its whole container has been traversed, so
// completion is triggered by the next sibling's open event, with an
// explicit Finish flush for the final one.
//
// A Parser is single-use and not safe for concurrent feeding; create
// one per meal-type request.
type Parser struct {
	meal        menu.MealType
	currentDay  *dayAccumulator
	currentItem *itemAccumulator
	completed   []menu.DailyMenu
}

func NewParser(meal menu.MealType) *Parser {
	return &Parser{
		meal:      meal,
		completed: []menu.DailyMenu{},
	}
}

// ParseFragment feeds every event into a fresh Parser and returns the
// completed daily menus.
func ParseFragment(events []TagEvent, meal menu.MealType) []menu.DailyMenu {
	p := NewParser(meal)
	for _, ev := range events {
		p.Feed(ev)
	}
	return p.Finish()
}

// Feed applies one tag-open event. Events must arrive in document
// order.
func (p *Parser) Feed(ev TagEvent) {
	switch {
	case ev.HasClass(classDayBox):
		if ev.HasClass(classWeekend) {
			// The preceding box's day still completes as usual, but
			// nothing from the weekend box itself ever will: no day is
			// opened for it, so its contents accumulate into nowhere.
			p.completeDay()
			p.currentItem = nil
			return
		}
		p.completeDay()
		p.currentDay = &dayAccumulator{items: []menu.MenuItem{}}

	case ev.HasClass(classDayNumber):
		p.resolveDate(ev)

	case ev.HasClass(classItemInfo):
		p.completeItem()
		p.currentItem = &itemAccumulator{category: menu.CategoryOther}

	case ev.HasClass(classItemColor):
		if p.currentItem != nil {
			p.currentItem.category = CategoryForColor(BackgroundColor(ev.Attr(attrStyle)))
		}

	case ev.HasClass(classItemTitle):
		if p.currentItem == nil {
			return
		}
		decoded := html.UnescapeString(ev.Attr(attrTitle))
		if IsAnnouncement(decoded) {
			// Administrative announcements are not food. Clearing the
			// name makes the completion check drop this item without
			// disturbing accumulation of the next one.
			p.currentItem.name = ""
			p.currentItem.description = ""
			return
		}
		p.currentItem.name, p.currentItem.description = NormalizeTitle(decoded)
	}
}

// Finish flushes the still-open item and day (there is no further
// day-box event to trigger their completion) and returns the output.
func (p *Parser) Finish() []menu.DailyMenu {
	p.completeDay()
	return p.completed
}

// resolveDate extracts the day box's date from the widget's data
// attributes. Months are zero-based in the source and adjusted here.
// Malformed components leave the date unresolved, which causes the day
// to be dropped at completion.
func (p *Parser) resolveDate(ev TagEvent) {
	day, _ := strconv.Atoi(ev.Attr(attrDay))
	month, _ := strconv.Atoi(ev.Attr(attrMonth))
	year, _ := strconv.Atoi(ev.Attr(attrYear))
	month++

	if day <= 0 || month <= 0 || year <= 0 {
		return
	}
	if p.currentDay == nil {
		return
	}
	p.currentDay.date = menu.NewDate(year, time.Month(month), day)
	p.currentDay.hasDate = true
}

// completeItem closes the open item, appending it to the open day only
// when it has a non-empty name. Items accumulated without an open day
// (e.g. inside a discarded box) go nowhere.
func (p *Parser) completeItem() {
	item := p.currentItem
	p.currentItem = nil
	if item == nil || item.name == "" || p.currentDay == nil {
		return
	}
	built := menu.NewMenuItem(item.name, item.description, item.category)
	built.Allergens = item.allergens
	built.Nutrition = item.nutrition
	p.currentDay.items = append(p.currentDay.items, built)
}

// completeDay closes the open day: with a resolved date and at least
// one item it becomes a DailyMenu, otherwise it is dropped silently.
// Trailing/leading boxes from adjacent months routinely arrive with
// partial data, so the drop is an expected condition, not an error.
func (p *Parser) completeDay() {
	p.completeItem()
	day := p.currentDay
	p.currentDay = nil
	if day == nil || !day.hasDate || len(day.items) == 0 {
		return
	}
	built := menu.NewDailyMenu(day.date, p.meal)
	for _, item := range day.items {
		built.Append(item)
	}
	p.completed = append(p.completed, *built)
}
