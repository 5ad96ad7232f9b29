package theme

import (
	"fmt"
	"sort"
	"strings"

	gotheme "github.com/goliatone/go-theme"
)

// Token keys read by the form controller and the page template.
const (
	TokenCounterNormal   = "counter.normal"
	TokenCounterWarning  = "counter.warning"
	TokenCounterCritical = "counter.critical"
	TokenBrand           = "brand"
	TokenError           = "error"
	TokenOverlay         = "overlay.backdrop"
)

const (
	DefaultName    = "feedback"
	DefaultVariant = "light"
)

// DefaultManifest describes the stock feedback theme.
func DefaultManifest() *gotheme.Manifest {
	return &gotheme.Manifest{
		Name:    DefaultName,
		Version: "1.0.0",
		Tokens: map[string]string{
			TokenBrand:           "#3498db",
			TokenError:           "#e74c3c",
			TokenOverlay:         "rgba(0, 0, 0, 0.6)",
			TokenCounterNormal:   "#27ae60",
			TokenCounterWarning:  "#f39c12",
			TokenCounterCritical: "#e74c3c",
		},
		Variants: map[string]gotheme.Variant{
			"light": {
				Tokens: map[string]string{
					TokenOverlay: "rgba(0, 0, 0, 0.6)",
				},
			},
			"dark": {
				Tokens: map[string]string{
					TokenBrand:   "#5dade2",
					TokenOverlay: "rgba(0, 0, 0, 0.8)",
				},
			},
		},
	}
}

// Catalog keeps the manifests known to the form. Every manifest is also
// registered with a go-theme registry, which rejects invalid or duplicate
// manifests.
type Catalog struct {
	registry  registrar
	manifests map[string]*gotheme.Manifest
}

type registrar interface {
	Register(manifest *gotheme.Manifest) error
}

// NewCatalog returns a catalog seeded with the default manifest and any extra
// manifests.
func NewCatalog(extra ...*gotheme.Manifest) (*Catalog, error) {
	c := &Catalog{
		registry:  gotheme.NewRegistry(),
		manifests: make(map[string]*gotheme.Manifest),
	}
	manifests := append([]*gotheme.Manifest{DefaultManifest()}, extra...)
	for _, manifest := range manifests {
		if err := c.Add(manifest); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers a manifest.
func (c *Catalog) Add(manifest *gotheme.Manifest) error {
	if manifest == nil {
		return ErrManifestMissing
	}
	if err := c.registry.Register(manifest); err != nil {
		return fmt.Errorf("theme: register %q: %w", manifest.Name, err)
	}
	c.manifests[manifest.Name] = manifest
	return nil
}

// Select resolves name/variant into a renderer configuration. An empty name
// selects the default theme.
func (c *Catalog) Select(name, variant string) (*gotheme.RendererConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	manifest, ok := c.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	return Resolve(manifest, variant)
}

// Resolve builds the renderer configuration for a manifest and variant:
// variant tokens override the base tokens and every token is exposed as a
// CSS custom property ("counter.normal" becomes "--counter-normal").
func Resolve(manifest *gotheme.Manifest, variant string) (*gotheme.RendererConfig, error) {
	if manifest == nil {
		return nil, ErrManifestMissing
	}
	variant = strings.TrimSpace(variant)

	tokens := copyStringMap(manifest.Tokens)
	if variant != "" {
		v, ok := manifest.Variants[variant]
		if !ok {
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownVariant, manifest.Name, variant)
		}
		for key, value := range v.Tokens {
			tokens[key] = value
		}
	}

	return &gotheme.RendererConfig{
		Theme:   manifest.Name,
		Variant: variant,
		Tokens:  tokens,
		CSSVars: cssVars(tokens),
	}, nil
}

// CSSVarsStyle renders CSS custom properties as a declaration list sorted by
// name, ready for a :root rule.
func CSSVarsStyle(cfg *gotheme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	names := make([]string, 0, len(cfg.CSSVars))
	for name := range cfg.CSSVars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s; ", name, cfg.CSSVars[name])
	}
	return strings.TrimSpace(b.String())
}

func cssVars(tokens map[string]string) map[string]string {
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		name := "--" + strings.NewReplacer(".", "-", "_", "-").Replace(key)
		out[name] = value
	}
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
