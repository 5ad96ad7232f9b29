package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is the root of a headless element tree together with the
// document-level listeners (keydown, beforeunload, ...).
type Document struct {
	root      *Element
	listeners map[string][]Listener
}

// NewDocument returns an empty document with html, head and body elements.
func NewDocument() *Document {
	doc := &Document{}
	doc.root = newElement(doc, "html")
	doc.root.AppendChild(newElement(doc, "head"))
	doc.root.AppendChild(newElement(doc, "body"))
	return doc
}

// Parse builds a Document from HTML markup. Comments and doctype nodes are
// dropped; text nodes are folded into their parent element.
func Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	doc := &Document{}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "html" {
			doc.root = convertNode(doc, child)
			break
		}
	}
	if doc.root == nil {
		return nil, fmt.Errorf("%w: missing html element", ErrParse)
	}
	return doc, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

func convertNode(doc *Document, node *html.Node) *Element {
	el := newElement(doc, node.Data)
	for _, attr := range node.Attr {
		el.SetAttr(attr.Key, attr.Val)
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			el.AppendChild(convertNode(doc, child))
		case html.TextNode:
			el.text += child.Data
		}
	}

	switch el.tag {
	case "input":
		el.defaultValue = el.Attr("value")
		el.value = el.defaultValue
		el.defaultChecked = el.HasAttr("checked")
		el.checked = el.defaultChecked
	case "textarea":
		el.defaultValue = el.text
		el.value = el.defaultValue
	case "option":
		el.defaultSel = el.HasAttr("selected")
		el.selected = el.defaultSel
	}
	return el
}

// Root returns the html element.
func (d *Document) Root() *Element {
	return d.root
}

// Body returns the body element.
func (d *Document) Body() *Element {
	return d.first(func(el *Element) bool { return el.tag == "body" })
}

// Title returns the text of the title element.
func (d *Document) Title() string {
	title := d.first(func(el *Element) bool { return el.tag == "title" })
	return strings.TrimSpace(title.Text())
}

// GetElementByID returns the first element carrying id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	return d.first(func(el *Element) bool { return el.Attr("id") == id })
}

// ElementsByName returns every element whose name attribute equals name.
func (d *Document) ElementsByName(name string) []*Element {
	return d.all(func(el *Element) bool { return name != "" && el.Attr("name") == name })
}

// QueryChecked returns the checked input named name, the equivalent of
// querySelector('input[name="..."]:checked').
func (d *Document) QueryChecked(name string) *Element {
	return d.first(func(el *Element) bool {
		return el.tag == "input" && el.Attr("name") == name && el.checked
	})
}

// AddEventListener registers fn for events of type typ reaching the document.
func (d *Document) AddEventListener(typ string, fn Listener) {
	if fn == nil {
		return
	}
	if d.listeners == nil {
		d.listeners = make(map[string][]Listener)
	}
	d.listeners[typ] = append(d.listeners[typ], fn)
}

func (d *Document) first(match func(*Element) bool) *Element {
	if d == nil || d.root == nil {
		return nil
	}
	var found *Element
	d.root.walk(func(el *Element) bool {
		if match(el) {
			found = el
			return false
		}
		return true
	})
	return found
}

func (d *Document) all(match func(*Element) bool) []*Element {
	if d == nil || d.root == nil {
		return nil
	}
	var out []*Element
	d.root.walk(func(el *Element) bool {
		if match(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}
