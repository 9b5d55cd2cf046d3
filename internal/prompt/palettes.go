package prompt

import "gemma/internal/types"

// PresetPalettes are the four emotional-archetype palettes offered when
// the model has not generated a custom one.
var PresetPalettes = map[string]types.BrandingData{
	"GROWTH": {
		PaletteName: "Growth & Health",
		Mood:        "Fresh, Vital, Organic",
		Colors: []types.Color{
			{Role: "Primary", Hex: "#2F80ED", Name: "Trust Blue"},
			{Role: "Secondary", Hex: "#6FCF97", Name: "Growth Green"},
			{Role: "Accent", Hex: "#F2F2F2", Name: "Clean White"},
			{Role: "Text", Hex: "#333333", Name: "Charcoal"},
		},
	},
	"EMPATHY": {
		PaletteName: "Empathy & Care",
		Mood:        "Warm, Urgent, Loving",
		Colors: []types.Color{
			{Role: "Primary", Hex: "#FF6B6B", Name: "Coral Heart"},
			{Role: "Secondary", Hex: "#2D3436", Name: "Solid Navy"},
			{Role: "Accent", Hex: "#FFD93D", Name: "Hope Yellow"},
			{Role: "Background", Hex: "#FFF5F5", Name: "Soft Blush"},
		},
	},
	"BOLD": {
		PaletteName: "Bold Future",
		Mood:        "Innovative, Strong, Loud",
		Colors: []types.Color{
			{Role: "Primary", Hex: "#8E44AD", Name: "Vision Purple"},
			{Role: "Secondary", Hex: "#00CEC9", Name: "Action Teal"},
			{Role: "Accent", Hex: "#2D3436", Name: "Midnight"},
			{Role: "Background", Hex: "#F8F9FA", Name: "Tech Grey"},
		},
	},
	"TEXAS": {
		PaletteName: "Lone Star Pride",
		Mood:        "Local, Loyal, Texan",
		Colors: []types.Color{
			{Role: "Primary", Hex: "#1C3F94", Name: "Texas Blue"},
			{Role: "Secondary", Hex: "#F2994A", Name: "Sunset Orange"},
			{Role: "Accent", Hex: "#BF0A30", Name: "Lone Star Red"},
			{Role: "Background", Hex: "#FFFFFF", Name: "Pure White"},
		},
	},
}
