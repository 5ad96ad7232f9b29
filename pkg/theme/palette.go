package theme

import gotheme "github.com/goliatone/go-theme"

// Tier is the severity band of the character counter.
type Tier int

const (
	TierNormal Tier = iota
	TierWarning
	TierCritical
)

func (t Tier) String() string {
	switch t {
	case TierWarning:
		return "warning"
	case TierCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Palette maps counter tiers to colours.
type Palette struct {
	Normal   string
	Warning  string
	Critical string
}

// DefaultPalette returns the stock counter colours.
func DefaultPalette() Palette {
	return Palette{
		Normal:   "#27ae60",
		Warning:  "#f39c12",
		Critical: "#e74c3c",
	}
}

// Color returns the colour for tier.
func (p Palette) Color(tier Tier) string {
	switch tier {
	case TierWarning:
		return p.Warning
	case TierCritical:
		return p.Critical
	default:
		return p.Normal
	}
}

// PaletteFrom reads the counter tokens of a resolved theme, keeping the
// defaults for missing tokens.
func PaletteFrom(cfg *gotheme.RendererConfig) Palette {
	palette := DefaultPalette()
	if cfg == nil {
		return palette
	}
	if v := cfg.Tokens[TokenCounterNormal]; v != "" {
		palette.Normal = v
	}
	if v := cfg.Tokens[TokenCounterWarning]; v != "" {
		palette.Warning = v
	}
	if v := cfg.Tokens[TokenCounterCritical]; v != "" {
		palette.Critical = v
	}
	return palette
}

// Thresholds split message lengths into tiers: above Warning is the warning
// tier, above Critical the critical tier.
type Thresholds struct {
	Warning  int `yaml:"warning" validate:"gte=0"`
	Critical int `yaml:"critical" validate:"gtfield=Warning"`
}

// DefaultThresholds returns 300/450.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 300, Critical: 450}
}

// TierFor classifies a character count.
func (t Thresholds) TierFor(count int) Tier {
	switch {
	case count > t.Critical:
		return TierCritical
	case count > t.Warning:
		return TierWarning
	default:
		return TierNormal
	}
}
