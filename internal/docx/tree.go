package docx

import (
	"strings"

	"github.com/beevik/etree"
)

func isW(el *etree.Element, tag string) bool {
	return el != nil && el.Space == "w" && el.Tag == tag
}

// walk visits el's descendants depth-first. Returning false skips the subtree.
func walk(el *etree.Element, fn func(*etree.Element) bool) {
	if el == nil {
		return
	}
	for _, child := range el.ChildElements() {
		if fn(child) {
			walk(child, fn)
		}
	}
}

func paragraphs(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	walk(root, func(el *etree.Element) bool {
		if isW(el, "p") {
			out = append(out, el)
		}
		return true
	})
	return out
}

// paragraphText mirrors what a reader sees: w:t text, tabs and breaks.
// Nested paragraphs (text boxes) are read separately.
func paragraphText(p *etree.Element) string {
	var b strings.Builder
	walk(p, func(el *etree.Element) bool {
		switch {
		case isW(el, "p"):
			return false
		case isW(el, "t"):
			b.WriteString(el.Text())
		case isW(el, "tab"):
			if el.Parent() != nil && isW(el.Parent(), "r") {
				b.WriteByte('\t')
			}
		case isW(el, "br"), isW(el, "cr"):
			b.WriteByte('\n')
		}
		return true
	})
	return b.String()
}

func nearestAncestor(el *etree.Element, tag string) *etree.Element {
	for cur := el.Parent(); cur != nil; cur = cur.Parent() {
		if isW(cur, tag) {
			return cur
		}
		if isW(cur, "body") {
			return nil
		}
	}
	return nil
}

func within(el, ancestor *etree.Element) bool {
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func remove(el *etree.Element) {
	parent := el.Parent()
	if parent == nil {
		return
	}
	parent.RemoveChild(el)
	if isW(parent, "tbl") && len(childrenW(parent, "tr")) == 0 {
		remove(parent)
	}
}

func childrenW(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if isW(child, tag) {
			out = append(out, child)
		}
	}
	return out
}

// insertOrdered places child according to the schema sequence in order.
// Unknown tags are appended.
func insertOrdered(parent, child *etree.Element, order []string) {
	rank := indexOf(order, child.Tag)
	if rank < 0 {
		parent.AddChild(child)
		return
	}
	for _, existing := range parent.ChildElements() {
		if existing.Space != "w" {
			continue
		}
		if r := indexOf(order, existing.Tag); r > rank {
			parent.InsertChildAt(existing.Index(), child)
			return
		}
	}
	parent.AddChild(child)
}

func indexOf(list []string, tag string) int {
	for i, v := range list {
		if v == tag {
			return i
		}
	}
	return -1
}

func removeChildrenW(parent *etree.Element, tags ...string) {
	for _, child := range parent.ChildElements() {
		if child.Space == "w" && indexOf(tags, child.Tag) >= 0 {
			parent.RemoveChild(child)
		}
	}
}
