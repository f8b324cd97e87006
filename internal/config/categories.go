package config

// Command categories, in help order.
const (
	CategoryInformation = "🕯️ Information"
	CategoryCustom      = "📜 Custom commands"
	CategorySettings    = "⚙️ Settings"
)

var CategoryWeights = map[string]int{
	CategoryInformation: 0,
	CategoryCustom:      10,
	CategorySettings:    50,
}
