package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/planmesh/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    core.Intent
	}{
		{"meal plan", "Create a 5-day vegetarian meal plan", core.IntentMealPlanning},
		{"recipe upper case", "Any RECIPE ideas?", core.IntentMealPlanning},
		{"shopping", "I need to go to the grocery", core.IntentShopping},
		{"travel", "Plan a trip to Tokyo for 5 days", core.IntentTravel},
		{"hotel", "Find me a hotel", core.IntentTravel},
		{"meal and shopping", "Plan meals and buy groceries", core.IntentMultiDomain},
		{"all three", "Meal plan, grocery list and a trip to Rome", core.IntentMultiDomain},
		{"nothing", "hello there", core.IntentAmbiguous},
		{"empty", "", core.IntentAmbiguous},
		// substring presence: "create" contains "eat"
		{"substring", "create something", core.IntentMealPlanning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message))
		})
	}
}

func TestDomains_PriorityOrder(t *testing.T) {
	got := Domains("book a flight, buy snacks and cook dinner")
	assert.Equal(t, []core.Intent{core.IntentMealPlanning, core.IntentShopping, core.IntentTravel}, got)
	assert.Empty(t, Domains("good morning"))
}

func TestDefaultVocabularies_Disjoint(t *testing.T) {
	seen := map[string]core.Intent{}
	for _, v := range DefaultVocabularies() {
		for _, kw := range v.Keywords {
			other, dup := seen[kw]
			assert.False(t, dup, "keyword %q in %s and %s", kw, other, v.Intent)
			seen[kw] = v.Intent
		}
	}
}

func TestNewClassifier_Validation(t *testing.T) {
	_, err := NewClassifier()
	assert.True(t, core.IsValidation(err))

	_, err = NewClassifier(Vocabulary{Intent: core.IntentAmbiguous, Keywords: []string{"x"}})
	assert.True(t, core.IsValidation(err))

	_, err = NewClassifier(
		Vocabulary{Intent: core.IntentMealPlanning, Keywords: []string{"eat"}},
		Vocabulary{Intent: core.IntentShopping, Keywords: []string{"EAT"}},
	)
	assert.True(t, core.IsValidation(err))

	_, err = NewClassifier(
		Vocabulary{Intent: core.IntentTravel, Keywords: []string{"fly"}},
		Vocabulary{Intent: core.IntentTravel, Keywords: []string{"sail"}},
	)
	assert.True(t, core.IsValidation(err))
}

func TestNewClassifier_CustomVocabulary(t *testing.T) {
	c, err := NewClassifier(
		Vocabulary{Intent: core.IntentTravel, Keywords: []string{" Cruise "}},
		Vocabulary{Intent: core.IntentMealPlanning, Keywords: []string{"brunch"}},
	)
	require.NoError(t, err)

	assert.Equal(t, core.IntentTravel, c.Classify("book a cruise"))
	assert.Equal(t, core.IntentAmbiguous, c.Classify("meal plan"))
	assert.Equal(t, []core.Intent{core.IntentTravel, core.IntentMealPlanning}, c.Domains("cruise brunch"))

	vocab := c.Vocabulary()
	vocab[0].Keywords[0] = "mutated"
	assert.Equal(t, "cruise", c.Vocabulary()[0].Keywords[0])
}
