// Package theme resolves go-theme manifests into renderer configuration for
// the feedback page and derives the character counter palette and tiers.
package theme
