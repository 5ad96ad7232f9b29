// Package dom provides a small headless element tree with the pieces of the
// browser DOM a form script touches: lookups by id and name, values, checked
// state, text content, inline styles, class lists, disabled controls, form
// reset, and event listeners with bubbling. Documents are parsed from HTML
// with golang.org/x/net/html.
package dom
