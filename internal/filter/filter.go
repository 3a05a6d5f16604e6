package filter

import (
	"strings"

	"github.com/rsilvagit/examwatch/internal/model"
)

// Options holds all filter criteria. Empty fields mean "no filter".
type Options struct {
	Locations string // comma-separated terms matched against the location name
}

// Apply returns the offers matching all criteria, keeping their order.
func Apply(offers []model.NormalizedOffer, opts Options) []model.NormalizedOffer {
	if opts.isEmpty() {
		return offers
	}

	var result []model.NormalizedOffer
	for _, o := range offers {
		if matchOffer(o, opts) {
			result = append(result, o)
		}
	}
	return result
}

func matchOffer(o model.NormalizedOffer, opts Options) bool {
	if opts.Locations != "" && !containsAny(strings.ToLower(o.LocationName), opts.Locations) {
		return false
	}
	return true
}

// containsAny checks if text contains any of the comma-separated terms.
func containsAny(text, terms string) bool {
	for _, term := range strings.Split(terms, ",") {
		term = strings.TrimSpace(strings.ToLower(term))
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func (o Options) isEmpty() bool {
	return strings.Trim(o.Locations, " ,") == ""
}
