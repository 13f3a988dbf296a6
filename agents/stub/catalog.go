package stub

import "github.com/hupe1980/planmesh/core"

type recipe struct {
	id          string
	name        string
	cuisine     string
	tags        []string // dietary tags the recipe satisfies
	prepTime    int
	cookTime    int
	ingredients []core.Ingredient
}

func (r recipe) satisfies(restrictions []string) bool {
	for _, want := range restrictions {
		found := false
		for _, tag := range r.tags {
			if tag == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func ing(name string, qty float64, unit string) core.Ingredient {
	return core.Ingredient{Name: name, Quantity: qty, Unit: unit}
}

var recipes = []recipe{
	{id: "r001", name: "Vegetable Stir Fry", cuisine: "asian", tags: []string{"vegetarian", "vegan", "dairy-free"}, prepTime: 15, cookTime: 10,
		ingredients: []core.Ingredient{ing("rice", 1, "cup"), ing("bell peppers", 2, "pcs"), ing("broccoli", 1, "head"), ing("garlic", 2, "cloves")}},
	{id: "r002", name: "Chickpea Salad", cuisine: "mediterranean", tags: []string{"vegetarian", "vegan", "gluten-free", "dairy-free"}, prepTime: 10,
		ingredients: []core.Ingredient{ing("chickpeas", 1, "can"), ing("cucumber", 1, "pcs"), ing("tomato", 2, "pcs"), ing("olive oil", 2, "tbsp")}},
	{id: "r003", name: "Teriyaki Salmon", cuisine: "asian", tags: []string{"gluten-free", "dairy-free"}, prepTime: 10, cookTime: 15,
		ingredients: []core.Ingredient{ing("salmon fillets", 2, "pcs"), ing("teriyaki sauce", 3, "tbsp"), ing("rice", 1, "cup")}},
	{id: "r004", name: "Veggie Omelette", cuisine: "american", tags: []string{"vegetarian", "gluten-free"}, prepTime: 5, cookTime: 10,
		ingredients: []core.Ingredient{ing("eggs", 3, "pcs"), ing("bell peppers", 1, "pcs"), ing("cheddar cheese", 50, "g")}},
	{id: "r005", name: "Chicken Tacos", cuisine: "mexican", tags: []string{"dairy-free"}, prepTime: 15, cookTime: 15,
		ingredients: []core.Ingredient{ing("chicken breast", 2, "pcs"), ing("corn tortillas", 8, "pcs"), ing("avocado", 1, "pcs"), ing("lime", 1, "pcs")}},
	{id: "r006", name: "Pasta Primavera", cuisine: "italian", tags: []string{"vegetarian"}, prepTime: 10, cookTime: 20,
		ingredients: []core.Ingredient{ing("pasta", 250, "g"), ing("zucchini", 1, "pcs"), ing("cherry tomatoes", 200, "g"), ing("parmesan cheese", 30, "g")}},
	{id: "r007", name: "Sweet Potato Bowl", cuisine: "american", tags: []string{"vegetarian", "vegan", "gluten-free", "dairy-free"}, prepTime: 10, cookTime: 30,
		ingredients: []core.Ingredient{ing("sweet potato", 2, "pcs"), ing("kale", 1, "bunch"), ing("quinoa", 1, "cup"), ing("tahini", 2, "tbsp")}},
}

// categories maps ingredient names to store sections.
var categories = map[string]string{
	"pasta":           "Grains & Pasta",
	"rice":            "Grains & Pasta",
	"quinoa":          "Grains & Pasta",
	"corn tortillas":  "Bakery",
	"chicken breast":  "Meat & Poultry",
	"salmon fillets":  "Seafood",
	"eggs":            "Dairy & Eggs",
	"cheddar cheese":  "Dairy & Eggs",
	"parmesan cheese": "Dairy & Eggs",
	"bell peppers":    "Produce",
	"broccoli":        "Produce",
	"garlic":          "Produce",
	"cucumber":        "Produce",
	"tomato":          "Produce",
	"cherry tomatoes": "Produce",
	"avocado":         "Produce",
	"lime":            "Produce",
	"zucchini":        "Produce",
	"sweet potato":    "Produce",
	"kale":            "Produce",
	"chickpeas":       "Canned Goods",
	"olive oil":       "Oils & Condiments",
	"teriyaki sauce":  "Oils & Condiments",
	"tahini":          "Oils & Condiments",
}

// unitPrices is the price per unit used for estimates.
var unitPrices = map[string]float64{
	"cup": 0.6, "pcs": 0.9, "head": 2.0, "cloves": 0.1, "can": 1.2, "tbsp": 0.25, "g": 0.02, "bunch": 2.5,
}

const (
	defaultCategory  = "Other"
	defaultUnitPrice = 1.0
)

type lodging struct {
	name         string
	kind         string
	costPerNight float64
	amenities    []string
}

// lodgings is ordered by preference; the first affordable one is chosen.
var lodgings = []lodging{
	{name: "Grand Central Hotel", kind: "hotel", costPerNight: 220, amenities: []string{"wifi", "breakfast", "gym"}},
	{name: "City Loft", kind: "airbnb", costPerNight: 140, amenities: []string{"wifi", "kitchen"}},
	{name: "Backpackers Inn", kind: "hostel", costPerNight: 45, amenities: []string{"wifi"}},
}

var activities = []core.Activity{
	{Name: "Old town walking tour", Duration: 120, EstimatedCost: 25},
	{Name: "Museum visit", Duration: 180, EstimatedCost: 20},
	{Name: "Local food market", Duration: 90, EstimatedCost: 35},
	{Name: "Park and viewpoint", Duration: 120, EstimatedCost: 0},
}
