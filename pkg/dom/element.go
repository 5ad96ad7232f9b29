package dom

import (
	"sort"
	"strings"
)

// Element is one node of the headless element tree. Elements are not safe for
// concurrent use; callers mutate them from a single event loop goroutine.
type Element struct {
	doc      *Document
	parent   *Element
	children []*Element

	tag   string
	attrs map[string]string
	text  string

	value          string
	defaultValue   string
	checked        bool
	defaultChecked bool
	selected       bool
	defaultSel     bool
	disabled       bool

	classes   []string
	style     map[string]string
	listeners map[string][]Listener
}

func newElement(doc *Document, tag string) *Element {
	return &Element{
		doc:   doc,
		tag:   strings.ToLower(tag),
		attrs: make(map[string]string),
		style: make(map[string]string),
	}
}

// Tag reports the lower-cased tag name.
func (e *Element) Tag() string {
	if e == nil {
		return ""
	}
	return e.tag
}

// ID reports the id attribute.
func (e *Element) ID() string {
	return e.Attr("id")
}

// Name reports the name attribute.
func (e *Element) Name() string {
	return e.Attr("name")
}

// Type reports the lower-cased type attribute of inputs and buttons.
func (e *Element) Type() string {
	return strings.ToLower(e.Attr("type"))
}

// Attr returns the raw attribute value.
func (e *Element) Attr(name string) string {
	if e == nil {
		return ""
	}
	return e.attrs[strings.ToLower(name)]
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.attrs[strings.ToLower(name)]
	return ok
}

// SetAttr sets an attribute. class and style keep their structured views in
// sync.
func (e *Element) SetAttr(name, value string) {
	key := strings.ToLower(name)
	switch key {
	case "class":
		e.classes = strings.Fields(value)
	case "style":
		e.style = parseStyle(value)
	case "disabled":
		e.disabled = true
	}
	e.attrs[key] = value
}

// Parent returns the enclosing element, nil for the root.
func (e *Element) Parent() *Element {
	if e == nil {
		return nil
	}
	return e.parent
}

// Children returns the child elements in document order.
func (e *Element) Children() []*Element {
	if e == nil {
		return nil
	}
	return e.children
}

// AppendChild attaches child as the last child of e.
func (e *Element) AppendChild(child *Element) {
	if child == nil {
		return
	}
	child.parent = e
	child.doc = e.doc
	e.children = append(e.children, child)
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for node := other; node != nil; node = node.parent {
		if node == e {
			return true
		}
	}
	return false
}

// Text returns the element's text content, including descendants.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	if len(e.children) == 0 {
		return e.text
	}
	var b strings.Builder
	b.WriteString(e.text)
	for _, child := range e.children {
		b.WriteString(child.Text())
	}
	return b.String()
}

// SetText replaces the text content, dropping any child elements.
func (e *Element) SetText(text string) {
	for _, child := range e.children {
		child.parent = nil
	}
	e.children = nil
	e.text = text
}

// Value returns the current value of a form control. Select elements report
// the value of the selected option, falling back to the first option.
func (e *Element) Value() string {
	if e == nil {
		return ""
	}
	if e.tag == "select" {
		options := e.options()
		for _, opt := range options {
			if opt.selected {
				return opt.optionValue()
			}
		}
		if len(options) > 0 {
			return options[0].optionValue()
		}
		return ""
	}
	return e.value
}

// SetValue updates the current value. For select elements the matching option
// becomes selected. Listeners are not notified; dispatch an input event for
// that.
func (e *Element) SetValue(value string) {
	if e.tag == "select" {
		for _, opt := range e.options() {
			opt.selected = opt.optionValue() == value
		}
		return
	}
	e.value = value
}

// Checked reports the checked state of checkboxes and radios.
func (e *Element) Checked() bool {
	return e != nil && e.checked
}

// SetChecked updates the checked state. Checking a radio unchecks the other
// radios sharing its name.
func (e *Element) SetChecked(checked bool) {
	if checked && e.Type() == "radio" && e.doc != nil {
		for _, other := range e.doc.ElementsByName(e.Name()) {
			if other != e && other.Type() == "radio" {
				other.checked = false
			}
		}
	}
	e.checked = checked
}

// Disabled reports whether the control is disabled.
func (e *Element) Disabled() bool {
	return e != nil && e.disabled
}

// SetDisabled toggles the disabled state.
func (e *Element) SetDisabled(disabled bool) {
	e.disabled = disabled
	if disabled {
		e.attrs["disabled"] = ""
	} else {
		delete(e.attrs, "disabled")
	}
}

// Style returns an inline style property.
func (e *Element) Style(property string) string {
	if e == nil {
		return ""
	}
	return e.style[strings.ToLower(property)]
}

// SetStyle sets an inline style property; an empty value removes it.
func (e *Element) SetStyle(property, value string) {
	key := strings.ToLower(strings.TrimSpace(property))
	if value == "" {
		delete(e.style, key)
	} else {
		e.style[key] = value
	}
	e.attrs["style"] = formatStyle(e.style)
}

// ClassList exposes the element's class tokens.
func (e *Element) ClassList() *ClassList {
	return &ClassList{el: e}
}

// Reset restores every descendant form control to its default state, the
// equivalent of HTMLFormElement.reset. No events are dispatched.
func (e *Element) Reset() {
	e.walk(func(el *Element) bool {
		switch el.tag {
		case "input":
			switch el.Type() {
			case "checkbox", "radio":
				el.checked = el.defaultChecked
			default:
				el.value = el.defaultValue
			}
		case "textarea":
			el.value = el.defaultValue
		case "option":
			el.selected = el.defaultSel
		}
		return true
	})
}

func (e *Element) options() []*Element {
	var out []*Element
	e.walk(func(el *Element) bool {
		if el.tag == "option" {
			out = append(out, el)
		}
		return true
	})
	return out
}

func (e *Element) optionValue() string {
	if e.HasAttr("value") {
		return e.Attr("value")
	}
	return strings.TrimSpace(e.Text())
}

// walk visits e and its descendants depth first; returning false stops the
// walk.
func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, child := range e.children {
		if !child.walk(fn) {
			return false
		}
	}
	return true
}

// ClassList mirrors DOMTokenList for an element's class attribute.
type ClassList struct {
	el *Element
}

// Add appends tokens that are not already present.
func (c *ClassList) Add(tokens ...string) {
	for _, token := range tokens {
		if token == "" || c.Contains(token) {
			continue
		}
		c.el.classes = append(c.el.classes, token)
	}
	c.sync()
}

// Remove drops tokens.
func (c *ClassList) Remove(tokens ...string) {
	out := c.el.classes[:0]
	for _, existing := range c.el.classes {
		keep := true
		for _, token := range tokens {
			if existing == token {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, existing)
		}
	}
	c.el.classes = out
	c.sync()
}

// Toggle adds or removes token depending on force.
func (c *ClassList) Toggle(token string, force bool) {
	if force {
		c.Add(token)
		return
	}
	c.Remove(token)
}

// Contains reports whether token is present.
func (c *ClassList) Contains(token string) bool {
	for _, existing := range c.el.classes {
		if existing == token {
			return true
		}
	}
	return false
}

// Values returns a copy of the tokens.
func (c *ClassList) Values() []string {
	return append([]string(nil), c.el.classes...)
}

func (c *ClassList) sync() {
	if len(c.el.classes) == 0 {
		delete(c.el.attrs, "class")
		return
	}
	c.el.attrs["class"] = strings.Join(c.el.classes, " ")
}

func parseStyle(raw string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		out[name] = value
	}
	return out
}

func formatStyle(style map[string]string) string {
	if len(style) == 0 {
		return ""
	}
	keys := make([]string, 0, len(style))
	for key := range style {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+style[key])
	}
	return strings.Join(parts, "; ")
}
