package models

import (
	"sort"
	"strings"
)

// Category is one of the fixed spending categories shared by budgets and
// transactions.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryUtilities     Category = "utilities"
	CategoryShopping      Category = "shopping"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryOther         Category = "other"
)

var categoryIcons = map[Category]string{
	CategoryFood:          "🍔",
	CategoryTransport:     "🚗",
	CategoryEntertainment: "🎬",
	CategoryUtilities:     "💡",
	CategoryShopping:      "🛍️",
	CategoryHealth:        "🏥",
	CategoryEducation:     "📚",
	CategoryOther:         "📦",
}

// ParseCategory normalizes s (trimmed, lower-cased) and reports whether it
// names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	_, ok := categoryIcons[c]
	return c, ok
}

// Categories returns every known category in alphabetical order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryIcons))
	for c := range categoryIcons {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Icon returns the default emoji for the category.
func (c Category) Icon() string {
	return categoryIcons[c]
}
