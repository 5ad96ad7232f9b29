// Package model holds the transient values of one feedback form session:
// field identifiers, per-field validation results, the submission lifecycle
// state and the payload collected on a successful submit. Nothing in this
// package is persisted; values live as long as the form instance.
package model
