// Package page renders the feedback page with a pongo2 template and loads it
// into a headless document. Field help text is sanitised with bluemonday
// before it reaches the template.
package page
