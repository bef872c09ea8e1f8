// Package classifier tags free-text product titles with a component category.
package classifier

import "strings"

// Other is returned for empty or unmatched titles.
const Other = "Other"

type rule struct {
	category string
	keywords []string
}

// rules is matched top to bottom; the first category with a keyword
// contained in the lower-cased title wins.
var rules = []rule{
	{"CPU", []string{"i3", "i5", "i7", "i9", "ryzen", "core", "pentium", "celeron", "xeon"}},
	{"GPU", []string{"rtx", "gtx", "radeon", "arc", "gpu", "graphics card"}},
	{"RAM", []string{"ddr3", "ddr4", "ddr5", "ram", "memory"}},
	{"Motherboard", []string{"motherboard", "mainboard", "h61", "b450", "b660", "x570", "z690", "z790", "h610"}},
	{"Storage", []string{"ssd", "nvme", "hdd", "hard disk", "m.2"}},
	{"PSU", []string{"psu", "power supply", "smps"}},
	{"Case", []string{"case", "chassis", "cabinet"}},
	{"Cooling", []string{"cooler", "cooling", "aio", "fan", "heatsink"}},
	{"Monitor", []string{"monitor", "display", "screen"}},
	{"Accessories", []string{"keyboard", "mouse", "headset", "accessory"}},
}

// Classify returns the category for title. It is case-insensitive and
// has no side effects.
func Classify(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))
	if lower == "" {
		return Other
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	return Other
}

// Categories lists every category in match order, followed by Other.
func Categories() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.category)
	}
	return append(out, Other)
}

// IsKnown reports whether category (case-insensitive) is one Classify can return.
func IsKnown(category string) bool {
	for _, c := range Categories() {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}
