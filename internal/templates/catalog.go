package templates

// builtin is the shipped template catalog. Durations are in frames at the
// declared fps; all compositions render at 1920x1080.
var builtin = []Template{
	{
		ID:   "HelloWorld",
		Name: "Hello World",
		Description: "A simple animated greeting video with customizable title " +
			"and logo colors. Perfect for welcome messages and introductions.",
		DurationFrames: 150,
		FPS:            30,
		Width:          1920,
		Height:         1080,
		Props: []Prop{
			{
				Name:        "titleText",
				Kind:        PropString,
				Description: "The main title text displayed in the video",
				Default:     "Welcome to ClipForge",
			},
			{
				Name:        "titleColor",
				Kind:        PropColor,
				Description: "Color of the title text",
				Default:     "#000000",
			},
			{
				Name:        "logoColor1",
				Kind:        PropColor,
				Description: "First gradient color for the logo",
				Default:     "#91EAE4",
			},
			{
				Name:        "logoColor2",
				Kind:        PropColor,
				Description: "Second gradient color for the logo",
				Default:     "#86A8E7",
			},
		},
	},
	{
		ID:   "ProductDemo",
		Name: "Product Demo",
		Description: "A professional product demo video template (19 seconds). " +
			"Includes intro, tagline, features showcase, stats, and call-to-action scenes.",
		DurationFrames: 570,
		FPS:            30,
		Width:          1920,
		Height:         1080,
		Props: []Prop{
			{
				Name:        "accentColor",
				Kind:        PropColor,
				Description: "Brand accent color used throughout the video",
				Default:     "#2563EB",
			},
		},
	},
	{
		ID:   "MagazineExplainer",
		Name: "Magazine Explainer",
		Description: "A magazine-style educational video (90 seconds). Features " +
			"title scene, content sections, verse highlight, analogies, and closing.",
		DurationFrames: 2700,
		FPS:            30,
		Width:          1920,
		Height:         1080,
		Props: []Prop{
			{
				Name:        "primaryColor",
				Kind:        PropColor,
				Description: "Primary theme color",
				Default:     "#F4A460",
			},
			{
				Name:        "accentColor",
				Kind:        PropColor,
				Description: "Secondary accent color",
				Default:     "#8B0000",
			},
		},
	},
}
