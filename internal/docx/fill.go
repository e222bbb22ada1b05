package docx

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Style is the appearance stamped onto every substituted paragraph.
type Style struct {
	FontFamily      string
	FontSizePt      float64
	SpacedAfterPt   float64
	SpacedLineTwips int
}

func DefaultStyle() Style {
	return Style{
		FontFamily:      "Calibri",
		FontSizePt:      14,
		SpacedAfterPt:   12,
		SpacedLineTwips: 240,
	}
}

// Rules describes one fill.
//
// Values maps literal tokens such as "{{PERIOD}}" to replacement text.
// Removable tokens delete their enclosing table row (or paragraph outside
// tables) when their value is empty. Spaced tokens give their paragraph the
// fixed spacing from Style.
type Rules struct {
	Values    map[string]string
	Removable []string
	Spaced    []string
	Style     Style
}

type action int

const (
	actionKeep action = iota
	actionDelete
	actionSubstitute
)

type block struct {
	paragraph *etree.Element
	text      string
	action    action
	target    *etree.Element
	spaced    bool
}

// Report summarizes what a fill changed.
type Report struct {
	Deleted     int
	Substituted int
}

// Fill resolves placeholders in two phases: classify every paragraph against
// the full value set, then apply deletions before any substitution.
func (d *Document) Fill(rules Rules) Report {
	blocks := d.classify(rules)

	var report Report
	var deleted []*etree.Element
	for _, b := range blocks {
		if b.action != actionDelete || containsAny(deleted, b.target) {
			continue
		}
		deleted = append(deleted, b.target)
		remove(b.target)
		report.Deleted++
	}

	replacer := newReplacer(rules.Values)
	body := d.body()
	for _, b := range blocks {
		if b.action != actionSubstitute || containsAny(deleted, b.paragraph) || !within(b.paragraph, body) {
			continue
		}
		rewriteParagraph(b.paragraph, replacer.Replace(b.text), rules.Style, b.spaced)
		report.Substituted++
	}
	return report
}

func (d *Document) classify(rules Rules) []block {
	var blocks []block
	for _, p := range paragraphs(d.body()) {
		text := paragraphText(p)
		b := block{paragraph: p, text: text}

		for _, token := range rules.Removable {
			if strings.Contains(text, token) && rules.Values[token] == "" {
				b.action = actionDelete
				b.target = p
				if row := nearestAncestor(p, "tr"); row != nil {
					b.target = row
				}
				break
			}
		}

		if b.action == actionKeep {
			for token := range rules.Values {
				if strings.Contains(text, token) {
					b.action = actionSubstitute
					break
				}
			}
			for _, token := range rules.Spaced {
				if strings.Contains(text, token) {
					b.spaced = true
					break
				}
			}
		}

		if b.action != actionKeep {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func containsAny(roots []*etree.Element, el *etree.Element) bool {
	for _, root := range roots {
		if within(el, root) {
			return true
		}
	}
	return false
}

func newReplacer(values map[string]string) *strings.Replacer {
	pairs := make([]string, 0, len(values)*2)
	for token, value := range values {
		pairs = append(pairs, token, value)
	}
	return strings.NewReplacer(pairs...)
}

var pPrOrder = []string{
	"pStyle", "keepNext", "keepLines", "pageBreakBefore", "framePr", "widowControl",
	"numPr", "suppressLineNumbers", "pBdr", "shd", "tabs", "suppressAutoHyphens",
	"kinsoku", "wordWrap", "overflowPunct", "topLinePunct", "autoSpaceDE", "autoSpaceDN",
	"bidi", "adjustRightInd", "snapToGrid", "spacing", "ind", "contextualSpacing",
	"mirrorIndents", "suppressOverlap", "jc", "textDirection", "textAlignment",
	"textboxTightWrap", "outlineLvl", "divId", "cnfStyle", "rPr", "sectPr", "pPrChange",
}

var rPrOrder = []string{
	"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps", "strike", "dstrike",
	"outline", "shadow", "emboss", "imprint", "noProof", "snapToGrid", "vanish", "webHidden",
	"color", "spacing", "w", "kern", "position", "sz", "szCs", "highlight", "u", "effect",
	"bdr", "shd", "fitText", "vertAlign", "rtl", "cs", "em", "lang", "eastAsianLayout",
	"specVanish", "oMath",
}

// rewriteParagraph replaces the paragraph's text content with a single run
// carrying text, keeping the first run's character formatting under the fixed
// font. Embedded content (drawings, pictures, text boxes) stays in place with
// its own text removed from the run that holds it.
func rewriteParagraph(p *etree.Element, text string, style Style, spaced bool) {
	var baseRPr *etree.Element
	walk(p, func(el *etree.Element) bool {
		if baseRPr != nil || isW(el, "p") || isW(el, "pPr") {
			return false
		}
		if isW(el, "rPr") && el.Parent() != nil && isW(el.Parent(), "r") {
			baseRPr = el.Copy()
			return false
		}
		return true
	})

	at := -1
	for _, child := range p.ChildElements() {
		switch {
		case isW(child, "pPr"):
		case hasEmbedded(child):
			stripText(child)
		default:
			if at < 0 {
				at = child.Index()
			}
			p.RemoveChild(child)
		}
	}

	if spaced {
		applySpacing(p, style)
	}

	run := etree.NewElement("w:r")
	if at < 0 {
		p.AddChild(run)
	} else {
		p.InsertChildAt(at, run)
	}
	rPr := baseRPr
	if rPr == nil {
		rPr = etree.NewElement("w:rPr")
	}
	stampFont(rPr, style)
	run.AddChild(rPr)
	writeText(run, text)
}

var embeddedTags = []string{"drawing", "pict", "object", "p"}

func hasEmbedded(el *etree.Element) bool {
	found := false
	walk(el, func(child *etree.Element) bool {
		if found {
			return false
		}
		if child.Space == "w" && indexOf(embeddedTags, child.Tag) >= 0 {
			found = true
			return false
		}
		return true
	})
	return found
}

// stripText drops the text of el's own runs, leaving nested paragraphs alone.
func stripText(el *etree.Element) {
	var text []*etree.Element
	walk(el, func(child *etree.Element) bool {
		switch {
		case isW(child, "p"):
			return false
		case isW(child, "t"), isW(child, "br"), isW(child, "cr"):
			text = append(text, child)
		case isW(child, "tab") && child.Parent() != nil && isW(child.Parent(), "r"):
			text = append(text, child)
		}
		return true
	})
	for _, t := range text {
		t.Parent().RemoveChild(t)
	}
}

func applySpacing(p *etree.Element, style Style) {
	pPr := p.SelectElement("w:pPr")
	if pPr == nil {
		pPr = etree.NewElement("w:pPr")
		p.InsertChildAt(0, pPr)
	}
	spacing := pPr.SelectElement("w:spacing")
	if spacing == nil {
		spacing = etree.NewElement("w:spacing")
		insertOrdered(pPr, spacing, pPrOrder)
	}
	spacing.CreateAttr("w:after", strconv.Itoa(int(math.Round(style.SpacedAfterPt*20))))
	line := style.SpacedLineTwips
	if line <= 0 {
		line = 240
	}
	spacing.CreateAttr("w:line", strconv.Itoa(line))
	spacing.CreateAttr("w:lineRule", "auto")
}

func stampFont(rPr *etree.Element, style Style) {
	removeChildrenW(rPr, "rFonts", "sz", "szCs")

	if family := strings.TrimSpace(style.FontFamily); family != "" {
		fonts := etree.NewElement("w:rFonts")
		fonts.CreateAttr("w:ascii", family)
		fonts.CreateAttr("w:hAnsi", family)
		fonts.CreateAttr("w:cs", family)
		fonts.CreateAttr("w:eastAsia", family)
		insertOrdered(rPr, fonts, rPrOrder)
	}

	if style.FontSizePt > 0 {
		halfPoints := strconv.Itoa(int(math.Round(style.FontSizePt * 2)))
		sz := etree.NewElement("w:sz")
		sz.CreateAttr("w:val", halfPoints)
		insertOrdered(rPr, sz, rPrOrder)
		szCs := etree.NewElement("w:szCs")
		szCs.CreateAttr("w:val", halfPoints)
		insertOrdered(rPr, szCs, rPrOrder)
	}
}

// writeText emits w:t segments, turning "\n" into w:br and "\t" into w:tab.
func writeText(run *etree.Element, text string) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			run.CreateElement("w:br")
		}
		for j, chunk := range strings.Split(line, "\t") {
			if j > 0 {
				run.CreateElement("w:tab")
			}
			if chunk == "" {
				continue
			}
			t := run.CreateElement("w:t")
			t.CreateAttr("xml:space", "preserve")
			t.SetText(chunk)
		}
	}
}
