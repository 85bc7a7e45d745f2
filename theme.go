package grandtree

import (
	"fmt"
	"strings"
)

// Theme selects the color collection used by ornaments, lights and ribbon.
type Theme uint8

const (
	ThemeGold    Theme = iota // warm golds and ambers
	ThemeDiamond              // cool whites
	ThemePatriot              // alternating red and blue
)

// Themes lists every theme in control panel order.
var Themes = []Theme{ThemeGold, ThemePatriot, ThemeDiamond}

// String returns the theme's wire name.
func (t Theme) String() string {
	switch t {
	case ThemeGold:
		return "gold"
	case ThemeDiamond:
		return "diamond"
	case ThemePatriot:
		return "patriot"
	default:
		return fmt.Sprintf("Theme(%d)", uint8(t))
	}
}

// Label returns the human-readable collection name shown in the panel.
func (t Theme) Label() string {
	s := t.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseTheme parses a theme wire name, case-insensitively.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gold":
		return ThemeGold, nil
	case "diamond":
		return ThemeDiamond, nil
	case "patriot":
		return ThemePatriot, nil
	}
	return 0, fmt.Errorf("%w: unknown theme %q", ErrInvalidValue, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Theme) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Theme) UnmarshalText(b []byte) error {
	v, err := ParseTheme(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Palette is the set of theme-dependent colors.
type Palette struct {
	Theme Theme
	// Ornament colors even-indexed ornaments; OrnamentAlt colors odd ones.
	Ornament    Color
	OrnamentAlt Color
	// Ribbon and RibbonEmissive color the ribbon tube.
	Ribbon         Color
	RibbonEmissive Color
	// Light colors the string lights.
	Light Color
	// Ambient tints the ambient light.
	Ambient Color
	// FillLeft and FillRight color the two rear fill lights.
	FillLeft  Color
	FillRight Color
	// Snow colors the falling snow.
	Snow Color
}

var (
	colorGold      = Hex("#D4AF37")
	colorAmbient   = Hex("#002211")
	colorSilver    = Hex("#E5E5E5")
	colorSilverEm  = Hex("#222222")
	colorWarmLight = Hex("#FFDD88")
)

// ResolvePalette returns the palette for theme. It panics on a value outside
// the Theme constants.
func ResolvePalette(theme Theme) Palette {
	switch theme {
	case ThemeGold:
		return Palette{
			Theme:          theme,
			Ornament:       colorGold,
			OrnamentAlt:    colorGold,
			Ribbon:         Hex("#C5B358"),
			RibbonEmissive: Hex("#554400"),
			Light:          colorWarmLight,
			Ambient:        colorAmbient,
			FillLeft:       colorGold,
			FillRight:      colorGold,
			Snow:           Hex("#FFD700"),
		}
	case ThemeDiamond:
		return Palette{
			Theme:          theme,
			Ornament:       Hex("#E0FFFF"),
			OrnamentAlt:    Hex("#E0FFFF"),
			Ribbon:         colorSilver,
			RibbonEmissive: colorSilverEm,
			Light:          ColorWhite,
			Ambient:        colorAmbient,
			FillLeft:       colorGold,
			FillRight:      colorGold,
			Snow:           ColorWhite,
		}
	case ThemePatriot:
		return Palette{
			Theme:          theme,
			Ornament:       Hex("#B22234"),
			OrnamentAlt:    Hex("#3C3B6E"),
			Ribbon:         colorSilver,
			RibbonEmissive: colorSilverEm,
			Light:          colorWarmLight,
			Ambient:        colorAmbient,
			FillLeft:       Hex("#FF0000"),
			FillRight:      Hex("#0000FF"),
			Snow:           ColorWhite,
		}
	}
	panic(fmt.Sprintf("grandtree: no palette for %v", theme))
}

// OrnamentColor returns the color of ornament i. Even indices take Ornament,
// odd indices OrnamentAlt.
func (p Palette) OrnamentColor(i int) Color {
	if i%2 == 0 {
		return p.Ornament
	}
	return p.OrnamentAlt
}
