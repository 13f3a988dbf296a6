package intent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/planmesh/core"
)

// Vocabulary is the keyword set of one domain intent.
type Vocabulary struct {
	Intent   core.Intent
	Keywords []string
}

// DefaultVocabularies returns the built-in vocabularies in priority order.
func DefaultVocabularies() []Vocabulary {
	return []Vocabulary{
		{Intent: core.IntentMealPlanning, Keywords: []string{"meal", "recipe", "cook", "eat", "food", "dinner", "lunch", "breakfast"}},
		{Intent: core.IntentShopping, Keywords: []string{"shop", "grocery", "groceries", "buy", "ingredient", "store"}},
		{Intent: core.IntentTravel, Keywords: []string{"travel", "trip", "vacation", "visit", "hotel", "flight"}},
	}
}

// Classifier labels messages using an ordered list of vocabularies.
type Classifier struct {
	vocab []Vocabulary
}

// NewClassifier builds a classifier over vocab, whose order is the priority
// order of Domains. Vocabularies must name distinct domain intents and must
// not share keywords.
func NewClassifier(vocab ...Vocabulary) (*Classifier, error) {
	if len(vocab) == 0 {
		return nil, core.NewValidationError("vocabulary", "at least one vocabulary required")
	}
	seenIntent := map[core.Intent]bool{}
	owner := map[string]core.Intent{}
	out := make([]Vocabulary, 0, len(vocab))
	for _, v := range vocab {
		if v.Intent == core.IntentMultiDomain || v.Intent == core.IntentAmbiguous || !v.Intent.IsValid() {
			return nil, core.NewValidationError("vocabulary", fmt.Sprintf("%q is not a domain intent", v.Intent))
		}
		if seenIntent[v.Intent] {
			return nil, core.NewValidationError("vocabulary", fmt.Sprintf("duplicate vocabulary for %s", v.Intent))
		}
		seenIntent[v.Intent] = true

		kws := make([]string, 0, len(v.Keywords))
		for _, kw := range v.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if other, ok := owner[kw]; ok && other != v.Intent {
				return nil, core.NewValidationError("vocabulary", fmt.Sprintf("keyword %q shared by %s and %s", kw, other, v.Intent))
			}
			owner[kw] = v.Intent
			kws = append(kws, kw)
		}
		if len(kws) == 0 {
			return nil, core.NewValidationError("vocabulary", fmt.Sprintf("no keywords for %s", v.Intent))
		}
		out = append(out, Vocabulary{Intent: v.Intent, Keywords: kws})
	}
	return &Classifier{vocab: out}, nil
}

// Default returns a classifier over DefaultVocabularies.
func Default() *Classifier {
	c, err := NewClassifier(DefaultVocabularies()...)
	if err != nil {
		panic(err) // built-in vocabularies are disjoint
	}
	return c
}

// Classify returns the intent of message.
func (c *Classifier) Classify(message string) core.Intent {
	domains := c.Domains(message)
	switch len(domains) {
	case 0:
		return core.IntentAmbiguous
	case 1:
		return domains[0]
	default:
		return core.IntentMultiDomain
	}
}

// Domains returns the domain intents present in message in priority order.
func (c *Classifier) Domains(message string) []core.Intent {
	lower := strings.ToLower(message)
	var present []core.Intent
	for _, v := range c.vocab {
		for _, kw := range v.Keywords {
			if strings.Contains(lower, kw) {
				present = append(present, v.Intent)
				break
			}
		}
	}
	return present
}

// Vocabulary returns a copy of the classifier's vocabularies.
func (c *Classifier) Vocabulary() []Vocabulary {
	out := make([]Vocabulary, len(c.vocab))
	for i, v := range c.vocab {
		out[i] = Vocabulary{Intent: v.Intent, Keywords: append([]string(nil), v.Keywords...)}
	}
	return out
}

var defaultClassifier = Default()

// Classify labels message with the built-in vocabularies.
func Classify(message string) core.Intent { return defaultClassifier.Classify(message) }

// Domains lists the domains present in message using the built-in vocabularies.
func Domains(message string) []core.Intent { return defaultClassifier.Domains(message) }
