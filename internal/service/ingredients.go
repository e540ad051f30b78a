package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PreferenceAll means no dietary constraint.
const PreferenceAll = "all"

// Preferences lists the dietary preferences the UI offers. Other free text is
// accepted and passed through to the prompt unchanged.
var Preferences = []string{PreferenceAll, "vegan", "veg", "non-veg", "gluten-free", "dairy-free", "nut-free"}

// nonFood are inputs that never make it into a prompt.
var nonFood = toSet(
	"petrol", "gasoline", "diesel", "wood", "plastic", "metal", "glass",
	"rubber", "paper", "cardboard", "styrofoam", "aluminum", "copper", "lead",
	"zinc", "iron", "steel", "tin", "nickel", "clothes", "fabric", "leather",
	"fur", "wool", "silk", "nylon", "polyester", "acrylic", "spandex", "rayon",
	"acetate",
)

// conflicts maps an ingredient keyword to the preferences it violates.
var conflicts = map[string][]string{
	"chicken":   {"vegan", "veg"},
	"beef":      {"vegan", "veg"},
	"pork":      {"vegan", "veg"},
	"lamb":      {"vegan", "veg"},
	"meat":      {"vegan", "veg"},
	"turkey":    {"vegan", "veg"},
	"duck":      {"vegan", "veg"},
	"tofu":      {"non-veg"},
	"shrimp":    {"vegan", "veg"},
	"crab":      {"vegan", "veg"},
	"lobster":   {"vegan", "veg"},
	"prawn":     {"vegan", "veg"},
	"squid":     {"vegan", "veg"},
	"fish":      {"vegan", "veg"},
	"egg":       {"vegan"},
	"milk":      {"vegan", "dairy-free"},
	"cheese":    {"vegan", "dairy-free"},
	"butter":    {"vegan", "dairy-free"},
	"wheat":     {"gluten-free"},
	"barley":    {"gluten-free"},
	"rye":       {"gluten-free"},
	"oats":      {"gluten-free"},
	"bread":     {"gluten-free"},
	"pasta":     {"gluten-free"},
	"cereal":    {"gluten-free"},
	"flour":     {"gluten-free"},
	"almond":    {"nut-free"},
	"peanut":    {"nut-free"},
	"cashew":    {"nut-free"},
	"walnut":    {"nut-free"},
	"hazelnut":  {"nut-free"},
	"pistachio": {"nut-free"},
	"pecan":     {"nut-free"},
	"coconut":   {"nut-free"},
}

// Casers carry state and must not be shared between goroutines.
func foldKey(s string) string { return cases.Fold().String(s) }

func lowerString(s string) string { return cases.Lower(language.Und).String(s) }

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, i := range items {
		set[i] = struct{}{}
	}
	return set
}

// NormalizePreference lower-cases and trims; empty means PreferenceAll.
func NormalizePreference(p string) string {
	p = lowerString(strings.TrimSpace(p))
	if p == "" {
		return PreferenceAll
	}
	return p
}

// SanitizeIngredients trims and de-duplicates the input, drops non-food items
// and anything that conflicts with preference. Order is preserved. The second
// result lists what was dropped.
func SanitizeIngredients(ingredients []string, preference string) (kept, dropped []string) {
	preference = NormalizePreference(preference)
	seen := make(map[string]struct{}, len(ingredients))

	for _, raw := range ingredients {
		ing := strings.Join(strings.Fields(raw), " ")
		if ing == "" {
			continue
		}
		key := foldKey(ing)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		name := lowerString(ing)
		if isNonFood(name) || conflictsWith(name, preference) {
			dropped = append(dropped, ing)
			continue
		}
		kept = append(kept, ing)
	}
	return kept, dropped
}

// isNonFood matches whole inputs only so "glass noodles" or "rice paper" survive.
func isNonFood(ingredient string) bool {
	_, ok := nonFood[ingredient]
	return ok
}

func conflictsWith(ingredient, preference string) bool {
	if preference == PreferenceAll {
		return false
	}
	for _, w := range words(ingredient) {
		for _, kw := range keywordForms(w) {
			for _, p := range conflicts[kw] {
				if p == preference {
					return true
				}
			}
		}
	}
	return false
}

// keywordForms maps a plural word back to its candidate singulars.
func keywordForms(w string) []string {
	forms := []string{w}
	if strings.HasSuffix(w, "es") {
		forms = append(forms, strings.TrimSuffix(w, "es"))
	}
	if strings.HasSuffix(w, "s") {
		forms = append(forms, strings.TrimSuffix(w, "s"))
	}
	return forms
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
