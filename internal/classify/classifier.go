// Package classify assigns expense categories to transaction
// descriptions by ordered keyword matching.
package classify

import "strings"

// FallbackCategory is returned when no keyword rule matches. It is also
// a valid category in its own right.
const FallbackCategory = "Other Expenses"

// ExpenseCategories is the fixed enumeration of expense categories, in
// display order. Settings may configure a limit for any of these.
var ExpenseCategories = []string{
	"Food",
	"Transportation",
	"Housing",
	"Utilities",
	"Entertainment",
	"Health",
	"Education",
	"Shopping",
}

// Rule maps a category to the keywords that select it.
type Rule struct {
	Category string
	Keywords []string
}

// rules is scanned in declared order and the first match wins, so the
// order below is part of the classifier's contract. "train" must hit
// Transportation even though a gym "training" description exists, which
// is why Health lists "gym" rather than "train".
var rules = []Rule{
	{Category: "Food", Keywords: []string{
		"grocery", "supermarket", "restaurant", "cafe", "coffee",
		"bakery", "pizza", "lunch", "dinner", "takeaway",
	}},
	{Category: "Transportation", Keywords: []string{
		"bus", "train", "metro", "taxi", "uber", "fuel", "gas station",
		"parking", "toll",
	}},
	{Category: "Housing", Keywords: []string{
		"rent", "mortgage", "furniture", "repair", "maintenance",
	}},
	{Category: "Utilities", Keywords: []string{
		"electricity", "water bill", "internet", "phone", "heating",
	}},
	{Category: "Entertainment", Keywords: []string{
		"cinema", "movie", "concert", "game", "streaming", "netflix",
		"spotify",
	}},
	{Category: "Health", Keywords: []string{
		"pharmacy", "doctor", "dentist", "hospital", "gym", "medicine",
	}},
	{Category: "Education", Keywords: []string{
		"book", "course", "tuition", "school", "university",
	}},
	{Category: "Shopping", Keywords: []string{
		"clothes", "shoes", "electronics", "amazon", "gift",
	}},
}

// Rules returns a copy of the ordered keyword rules, mainly for
// presentation layers that want to show what drives auto-assignment.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Classify returns the first category whose keyword list contains a
// case-insensitive substring of description, or FallbackCategory when
// nothing matches.
func Classify(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, strings.ToLower(kw)) {
				return rule.Category
			}
		}
	}
	return FallbackCategory
}

// ValidExpenseCategory reports whether name is one of the enumerated
// expense categories or the fallback.
func ValidExpenseCategory(name string) bool {
	if name == FallbackCategory {
		return true
	}
	for _, c := range ExpenseCategories {
		if c == name {
			return true
		}
	}
	return false
}
