package config

// CategoryWeights orders command categories in help output; unknown
// categories sort last.
var CategoryWeights = map[string]int{
	"🕯️ Information": 0,
	"📢 Utilities":    10,
	"🛠️ Maintenance": 60,
}

const DefaultCategory = "📢 Utilities"

// CategoryWeight returns the sort weight of a category.
func CategoryWeight(category string) int {
	if w, ok := CategoryWeights[category]; ok {
		return w
	}
	return 1000
}
