package colors

// Color is the full set of shades used to render one category
type Color struct {
	Name        string `json:"name"`
	Bg          string `json:"bg"`
	BgHover     string `json:"bgHover"`
	BgActive    string `json:"bgActive"`
	Border      string `json:"border"`
	BorderHover string `json:"borderHover"`
	Text        string `json:"text"`
}

// muted builds a palette entry from a base RGB and its lighter text RGB.
func muted(name, base, text string) Color {
	return Color{
		Name:        name,
		Bg:          "rgba(" + base + ", 0.12)",
		BgHover:     "rgba(" + base + ", 0.18)",
		BgActive:    "rgba(" + base + ", 0.25)",
		Border:      "rgba(" + base + ", 0.35)",
		BorderHover: "rgba(" + base + ", 0.5)",
		Text:        "rgb(" + text + ")",
	}
}

// Palette is the fixed, ordered list of category colors.
// Reordering or resizing it shifts the color of existing categories.
var Palette = [...]Color{
	muted("Muted Blue", "91, 124, 153", "107, 140, 174"),
	muted("Muted Purple", "139, 123, 155", "155, 138, 171"),
	muted("Muted Mauve", "155, 138, 155", "171, 154, 171"),
	muted("Muted Rose", "184, 155, 155", "200, 171, 171"),
	muted("Muted Terracotta", "166, 123, 123", "182, 139, 139"),
	muted("Muted Coral", "182, 139, 123", "198, 155, 139"),
	muted("Muted Sand", "171, 155, 139", "187, 171, 155"),
	muted("Muted Olive", "139, 155, 123", "155, 171, 139"),
	muted("Muted Sage", "123, 155, 139", "139, 171, 155"),
	muted("Muted Mint", "123, 155, 147", "139, 171, 163"),
	muted("Muted Teal", "107, 147, 147", "123, 163, 163"),
	muted("Muted Cyan", "107, 140, 155", "123, 156, 171"),
	muted("Muted Sky", "115, 131, 155", "131, 147, 171"),
	muted("Muted Indigo", "115, 123, 155", "131, 139, 171"),
	muted("Muted Lavender", "131, 123, 155", "147, 139, 171"),
	muted("Muted Plum", "147, 123, 147", "163, 139, 163"),
	muted("Muted Orchid", "163, 131, 155", "179, 147, 171"),
	muted("Muted Dusty Rose", "171, 139, 147", "187, 155, 163"),
	muted("Muted Taupe", "147, 139, 131", "163, 155, 147"),
	muted("Muted Warm Gray", "155, 147, 139", "171, 163, 155"),
}
