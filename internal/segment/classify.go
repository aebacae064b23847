package segment

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/secseg/internal/semantic"
	"golang.org/x/net/html"
)

// Params are the tunable thresholds for heuristic classification.
type Params struct {
	TitleMaxLen         int // max characters for heading-like text
	TitleMaxWords       int // max words for heading-like text
	SupplementaryMaxLen int // below this, standalone text reads as a footnote/label, not a paragraph
}

// DefaultParams returns the thresholds used when none are configured.
// SupplementaryMaxLen doubles as the paragraph length gate: punctuated text
// below it is a label, at or above it a paragraph. A full sentence can run
// just over 40 characters, so the default sits below that.
func DefaultParams() Params {
	return Params{
		TitleMaxLen:         120,
		TitleMaxWords:       10,
		SupplementaryMaxLen: 40,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.TitleMaxLen <= 0 {
		p.TitleMaxLen = d.TitleMaxLen
	}
	if p.TitleMaxWords <= 0 {
		p.TitleMaxWords = d.TitleMaxWords
	}
	if p.SupplementaryMaxLen <= 0 {
		p.SupplementaryMaxLen = d.SupplementaryMaxLen
	}
	return p
}

// Context carries the shallow surroundings of a node into classification.
// The classifier never looks deeper than one level into the node itself;
// structural decisions about tables and lists belong to the decomposers.
type Context struct {
	ParentType   semantic.Type
	SiblingIndex int
	Emphasized   bool // inside bold/underline markup
	MixedContent bool // one of several inline siblings, i.e. a fragment of a larger run
}

// Classifier maps one markup node plus shallow context to a semantic type
// and confidence. Classification is an ordered rule table: first match wins,
// and the order doubles as the tie-break priority
// (SECTION_TITLE > PARAGRAPH > SUPPLEMENTARY_TEXT > CONTAINER > TEXT).
type Classifier struct {
	params Params
	rules  []textRule
}

type textRule struct {
	name  string
	typ   semantic.Type
	match func(c *Classifier, text string, ctx Context) (float64, bool)
}

// NewClassifier builds a classifier with the given thresholds.
func NewClassifier(params Params) *Classifier {
	c := &Classifier{params: params.withDefaults()}
	c.rules = []textRule{
		{"item-heading", semantic.SectionTitle, (*Classifier).matchItemHeading},
		{"subheader", semantic.SectionTitle, (*Classifier).matchSubheader},
		{"caps-heading", semantic.SectionTitle, (*Classifier).matchCapsHeading},
		{"emphasized-heading", semantic.SectionTitle, (*Classifier).matchEmphasizedHeading},
		{"paragraph", semantic.Paragraph, (*Classifier).matchParagraph},
		{"supplementary", semantic.SupplementaryText, (*Classifier).matchSupplementary},
		{"text", semantic.Text, (*Classifier).matchAnyText},
	}
	return c
}

// ClassifyText classifies a trimmed text run. ok is false when the text is
// empty: empty nodes are dropped, never emitted.
func (c *Classifier) ClassifyText(text string, ctx Context) (typ semantic.Type, confidence float64, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", 0, false
	}
	for _, r := range c.rules {
		if conf, hit := r.match(c, text, ctx); hit {
			return r.typ, conf, true
		}
	}
	// Unreachable: the final rule matches any non-empty text.
	return semantic.Text, 0.5, true
}

// ClassifyElement classifies an element node from its tag, attributes and
// flattened text. Tables and lists are routed to the decomposers before this
// is called. ok is false when the builder should fall back to structural
// handling (recurse, then container/collapse rules).
func (c *Classifier) ClassifyElement(n *html.Node, text string, ctx Context) (typ semantic.Type, confidence float64, ok bool) {
	if headingLevel(n.Data) > 0 {
		if strings.TrimSpace(text) == "" {
			return "", 0, false
		}
		return semantic.SectionTitle, 0.95, true
	}
	if isEmphasis(n) {
		eCtx := ctx
		eCtx.Emphasized = true
		if conf, hit := c.matchItemHeading(text, eCtx); hit {
			return semantic.SectionTitle, conf, true
		}
		if conf, hit := c.matchEmphasizedHeading(text, eCtx); hit {
			return semantic.SectionTitle, conf, true
		}
	}
	return "", 0, false
}

var subheaderRe = regexp.MustCompile(`^(\([a-z]\)|\(\d+\)|\([ivx]+\)|[a-z]\.|\d+\.)\s+[A-Z]`)

func (c *Classifier) matchItemHeading(text string, _ Context) (float64, bool) {
	if strings.HasPrefix(text, "Item ") && len(text) <= c.params.TitleMaxLen && !hasTerminalPunct(text) {
		return 0.95, true
	}
	return 0, false
}

func (c *Classifier) matchSubheader(text string, ctx Context) (float64, bool) {
	if ctx.MixedContent {
		return 0, false
	}
	if len(text) <= c.params.TitleMaxLen && subheaderRe.MatchString(text) {
		return 0.8, true
	}
	return 0, false
}

func (c *Classifier) matchCapsHeading(text string, ctx Context) (float64, bool) {
	if ctx.MixedContent {
		return 0, false
	}
	if len(text) >= c.params.SupplementaryMaxLen || text != strings.ToUpper(text) {
		return 0, false
	}
	if !strings.ContainsFunc(text, unicode.IsLetter) {
		return 0, false
	}
	return 0.75, true
}

// matchEmphasizedHeading scores bold/underlined single-line text by how
// strongly it resembles a heading: short, title-cased, no trailing period.
// The tiers are exact constants so equal inputs always produce identical
// confidences, never float accumulation artifacts.
func (c *Classifier) matchEmphasizedHeading(text string, ctx Context) (float64, bool) {
	if !ctx.Emphasized || ctx.MixedContent {
		return 0, false
	}
	if len(text) > c.params.TitleMaxLen || strings.ContainsAny(text, "\n") {
		return 0, false
	}
	if hasTerminalPunct(text) {
		return 0, false
	}
	short := len(strings.Fields(text)) <= c.params.TitleMaxWords
	titled := isTitleCased(text)
	switch {
	case short && titled:
		return 0.8, true
	case short || titled:
		return 0.7, true
	}
	return 0.6, true
}

func (c *Classifier) matchParagraph(text string, ctx Context) (float64, bool) {
	// A fragment of mixed inline content is not a paragraph of its own even
	// when it happens to end the sentence; the builder merges the fragments
	// into one TEXT node instead.
	if ctx.MixedContent {
		return 0, false
	}
	// A paragraph is a long punctuated run. A short punctuated response like
	// "None." under an item is a label and falls through to the
	// supplementary rule.
	if len(text) < c.params.SupplementaryMaxLen {
		return 0, false
	}
	if !hasTerminalPunct(text) {
		return 0, false
	}
	if hasFootnoteMarker(text) || isBracketed(text) {
		return 0, false
	}
	return 0.9, true
}

func (c *Classifier) matchSupplementary(text string, ctx Context) (float64, bool) {
	if hasFootnoteMarker(text) || isBracketed(text) {
		return 0.7, true
	}
	// A short standalone run reads as a footnote or label; the same run as
	// one fragment of mixed inline content is just part of a sentence.
	if !ctx.MixedContent && len(text) < c.params.SupplementaryMaxLen {
		return 0.7, true
	}
	return 0, false
}

func (c *Classifier) matchAnyText(text string, _ Context) (float64, bool) {
	return 0.5, true
}

func hasTerminalPunct(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") ||
		strings.HasSuffix(s, ".\"") || strings.HasSuffix(s, ";")
}

func hasFootnoteMarker(s string) bool {
	return strings.HasPrefix(s, "*") ||
		strings.HasPrefix(s, "Note") ||
		strings.HasPrefix(s, "See accompanying") ||
		strings.HasPrefix(s, "See Note")
}

func isBracketed(s string) bool {
	return (strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}

func isTitleCased(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			// Short connective words are fine in title case.
			if len(w) > 3 {
				return false
			}
		}
	}
	return true
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// isEmphasis reports whether an element carries bold/underline styling that
// SEC filings use in place of real heading tags.
func isEmphasis(n *html.Node) bool {
	switch n.Data {
	case "b", "strong", "em", "u":
		return true
	}
	style := attrVal(n, "style")
	if style == "" {
		return false
	}
	style = strings.ReplaceAll(style, " ", "")
	return strings.Contains(style, "font-weight:700") ||
		strings.Contains(style, "font-weight:bold") ||
		strings.Contains(style, "text-decoration:underline")
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
