package dom

// The helpers below replay what a user does in a browser: each one mutates
// the tree the way the browser would and dispatches the matching events.

// Type replaces the value of a text control and dispatches input.
func Type(el *Element, value string) {
	el.SetValue(value)
	el.DispatchEvent(NewEvent(EventInput))
}

// Blur dispatches blur on el.
func Blur(el *Element) {
	el.DispatchEvent(NewEvent(EventBlur))
}

// Select chooses an option of a select element and dispatches input and
// change.
func Select(el *Element, value string) {
	el.SetValue(value)
	el.DispatchEvent(NewEvent(EventInput))
	el.DispatchEvent(NewEvent(EventChange))
}

// Check checks a radio or checkbox and dispatches change.
func Check(el *Element) {
	el.SetChecked(true)
	el.DispatchEvent(NewEvent(EventChange))
}

// Click dispatches click on el. Disabled controls swallow the click.
func Click(el *Element) {
	if el.Disabled() {
		return
	}
	el.DispatchEvent(NewEvent(EventClick))
	if el.Tag() == "button" && (el.Type() == "" || el.Type() == "submit") {
		if form := closest(el, "form"); form != nil {
			Submit(form)
		}
	}
}

// Submit dispatches submit on a form element.
func Submit(form *Element) bool {
	return form.DispatchEvent(NewEvent(EventSubmit))
}

// PressKey dispatches keydown with key to the document.
func PressKey(doc *Document, key string) {
	ev := NewEvent(EventKeyDown)
	ev.Key = key
	doc.DispatchEvent(ev)
}

// Unload dispatches beforeunload to the document, as when the user navigates
// away.
func Unload(doc *Document) {
	doc.DispatchEvent(NewEvent(EventBeforeUnload))
}

func closest(el *Element, tag string) *Element {
	for node := el; node != nil; node = node.parent {
		if node.tag == tag {
			return node
		}
	}
	return nil
}
