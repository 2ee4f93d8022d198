package scrape

import (
	"strings"

	"menucal/internal/menu"
)

// colorCategories is the fixed legend the source site uses for its
// item color chips. The table is part of the contract with that site;
// it is not derived from anything.
var colorCategories = map[string]menu.Category{
	"#CC3333": menu.CategoryMainEntree,
	"#669933": menu.CategoryVegetarianEntree,
	"#FF9900": menu.CategorySecondChoice,
	"#3366CC": menu.CategorySideDish,
	"#993399": menu.CategorySnack,
}

// CategoryForColor maps an uppercase hex color to its food category.
// Unknown colors degrade to "other"; a new legend color on the site
// must never be fatal.
func CategoryForColor(color string) menu.Category {
	if cat, ok := colorCategories[color]; ok {
		return cat
	}
	return menu.CategoryOther
}

// BackgroundColor extracts the background-color value from an inline
// style attribute, normalized to uppercase. Returns "" when the style
// carries no background color.
func BackgroundColor(style string) string {
	for _, decl := range strings.Split(style, ";") {
		key, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		if strings.TrimSpace(strings.ToLower(key)) != "background-color" {
			continue
		}
		return strings.ToUpper(strings.TrimSpace(value))
	}
	return ""
}
