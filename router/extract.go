package router

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hupe1980/planmesh/core"
)

// DefaultDays is used when a meal request names no duration.
const DefaultDays = 7

var dayPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*days?`),
	regexp.MustCompile(`(\d+)-day`),
	regexp.MustCompile(`for\s+(\d+)\s+days?`),
}

// ExtractDays returns the day count named in message. Patterns are tried in
// order on the lower-cased message; "week" means 7. It reports false when
// nothing matched or the number is not positive.
func ExtractDays(message string) (int, bool) {
	lower := strings.ToLower(message)
	for _, re := range dayPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}
	if strings.Contains(lower, "week") {
		return 7, true
	}
	return 0, false
}

const placeName = `([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`

var destinationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`to\s+` + placeName),
	regexp.MustCompile(`visit\s+` + placeName),
	regexp.MustCompile(`trip\s+to\s+` + placeName),
	regexp.MustCompile(`in\s+` + placeName),
}

// ExtractDestination returns the one- or two-word capitalized place following
// "to", "visit", "trip to" or "in". Matching is case-sensitive.
func ExtractDestination(message string) (string, bool) {
	for _, re := range destinationPatterns {
		if m := re.FindStringSubmatch(message); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// subDomain is one sub-route of a multi-domain request.
type subDomain struct {
	words  []string
	intent core.Intent
}

func (d subDomain) presentIn(lower string) bool {
	for _, w := range d.words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// fanOutDomains lists the multi-domain sub-routes in result order. The words
// are narrower than the classifier vocabularies.
var fanOutDomains = []subDomain{
	{words: []string{"meal"}, intent: core.IntentMealPlanning},
	{words: []string{"shop"}, intent: core.IntentShopping},
	{words: []string{"travel", "trip"}, intent: core.IntentTravel},
}
