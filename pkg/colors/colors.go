package colors

import (
	"unicode/utf16"

	"github.com/patrickmn/go-cache"
)

// Styles are the inline styles for a category badge
type Styles struct {
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	Color           string `json:"color"`
}

// HoverStyles are the CSS custom properties used for hover states
type HoverStyles struct {
	HoverBg     string `json:"--hover-bg"`
	HoverBorder string `json:"--hover-border"`
}

// Hash computes the 32-bit string hash of name over its UTF-16 code units
func Hash(name string) int32 {
	var h int32
	for _, code := range utf16.Encode([]rune(name)) {
		h = int32(code) + ((h << 5) - h)
	}
	return h
}

// Index returns the palette position for name
func Index(name string) int {
	h := int64(Hash(name))
	if h < 0 {
		h = -h
	}
	return int(h % int64(len(Palette)))
}

// Assigner maps category names to palette colors, memoizing results
type Assigner struct {
	cache *cache.Cache
}

// NewAssigner creates an assigner with an unbounded, non-expiring memo
func NewAssigner() *Assigner {
	return &Assigner{cache: cache.New(cache.NoExpiration, 0)}
}

// ColorFor returns the palette color for a category
func (a *Assigner) ColorFor(name string) Color {
	if c, found := a.cache.Get(name); found {
		return c.(Color)
	}
	c := Palette[Index(name)]
	a.cache.Set(name, c, cache.NoExpiration)
	return c
}

// StylesFor returns badge styles, using the active shades when active is set
func (a *Assigner) StylesFor(name string, active bool) Styles {
	c := a.ColorFor(name)
	if active {
		return Styles{BackgroundColor: c.BgActive, BorderColor: c.BorderHover, Color: c.Text}
	}
	return Styles{BackgroundColor: c.Bg, BorderColor: c.Border, Color: c.Text}
}

// HoverStylesFor returns the hover custom properties for a category
func (a *Assigner) HoverStylesFor(name string) HoverStyles {
	c := a.ColorFor(name)
	return HoverStyles{HoverBg: c.BgHover, HoverBorder: c.BorderHover}
}

// Len reports how many names have been memoized
func (a *Assigner) Len() int {
	return a.cache.ItemCount()
}

var defaultAssigner = NewAssigner()

// ColorFor returns the palette color for a category using the shared assigner
func ColorFor(name string) Color { return defaultAssigner.ColorFor(name) }

// StylesFor returns badge styles using the shared assigner
func StylesFor(name string, active bool) Styles { return defaultAssigner.StylesFor(name, active) }

// HoverStylesFor returns hover properties using the shared assigner
func HoverStylesFor(name string) HoverStyles { return defaultAssigner.HoverStylesFor(name) }
