package theme

import "errors"

var (
	// ErrManifestMissing is returned when resolving a nil manifest.
	ErrManifestMissing = errors.New("theme: manifest is nil")
	// ErrUnknownTheme is returned when selecting a theme that was never added.
	ErrUnknownTheme = errors.New("theme: unknown theme")
	// ErrUnknownVariant is returned when the requested variant is not declared.
	ErrUnknownVariant = errors.New("theme: unknown variant")
)
