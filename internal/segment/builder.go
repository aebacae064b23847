package segment

import (
	"strings"

	"github.com/dgallion1/secseg/internal/semantic"
	"golang.org/x/net/html"
)

// Segment walks a parsed markup tree in a single depth-first pass and
// returns the DOCUMENT root of the semantic tree. It is a pure function per
// document: no shared state, safe to call from any number of goroutines on
// independent trees. An empty or rootless document yields a DOCUMENT with no
// children rather than an error.
func Segment(root *html.Node, params Params) *semantic.Node {
	doc := &semantic.Node{Type: semantic.Document, Level: 0, Confidence: 1.0}
	if root == nil {
		return doc
	}

	b := &builder{
		classifier: NewClassifier(params),
		visited:    make(map[*html.Node]bool),
	}

	start := findBody(root)
	if start == nil {
		start = root
	}
	doc.Children = b.convertChildren(start, 1)
	return doc
}

// builder drives one traversal. The visited set guards against cyclic or
// self-referential fragments handed over by the upstream parser: a revisit
// truncates that branch instead of looping.
type builder struct {
	classifier *Classifier
	visited    map[*html.Node]bool
}

// revisited marks n as seen and reports whether it was seen before.
func (b *builder) revisited(n *html.Node) bool {
	if b.visited[n] {
		return true
	}
	b.visited[n] = true
	return false
}

// convert turns one markup node into zero or more semantic nodes at the
// given level. Empty nodes produce nothing.
func (b *builder) convert(n *html.Node, level int, ctx Context) []*semantic.Node {
	switch n.Type {
	case html.TextNode:
		typ, conf, ok := b.classifier.ClassifyText(n.Data, ctx)
		if !ok {
			return nil
		}
		return []*semantic.Node{{
			Type:       typ,
			Content:    strings.TrimSpace(n.Data),
			Level:      level,
			Confidence: conf,
		}}

	case html.ElementNode:
		switch n.Data {
		case "script", "style", "head", "title", "meta", "link":
			return nil
		case "table":
			return []*semantic.Node{b.decomposeTable(n, level)}
		case "ul", "ol":
			return []*semantic.Node{b.decomposeList(n, level)}
		case "br", "hr":
			return nil
		}

		text := flattenText(n)
		if typ, conf, ok := b.classifier.ClassifyElement(n, text, ctx); ok {
			// Headings and emphasized titles absorb their whole subtree as
			// content; there is nothing further to descend into.
			return []*semantic.Node{{
				Type:       typ,
				Content:    text,
				Level:      level,
				Confidence: conf,
			}}
		}

		childCtx := ctx
		if ctx.Emphasized || isEmphasis(n) {
			childCtx.Emphasized = true
		}
		if !isInlineTag(n.Data) {
			// A block element starts a fresh run; only inline markup keeps
			// splitting the same visual sentence.
			childCtx.MixedContent = false
		}
		children := b.convertChildrenCtx(n, level+1, childCtx)
		switch len(children) {
		case 0:
			// Structurally empty: dropped, never emitted.
			return nil
		case 1:
			// Collapse the single-child wrapper: the child takes this
			// node's place at this node's level.
			relevel(children[0], level)
			return children
		default:
			return []*semantic.Node{{
				Type:       semantic.Container,
				Level:      level,
				Confidence: 0.5,
				Children:   children,
			}}
		}

	default:
		return nil
	}
}

func (b *builder) convertChildren(n *html.Node, level int) []*semantic.Node {
	return b.convertChildrenCtx(n, level, Context{ParentType: semantic.Document})
}

// convertChildrenCtx converts n's children in document order and merges
// adjacent TEXT siblings, so a sentence split by inline formatting tags
// comes back as one node.
func (b *builder) convertChildrenCtx(n *html.Node, level int, ctx Context) []*semantic.Node {
	mixed := ctx.MixedContent || mixedInline(n)

	var out []*semantic.Node
	idx := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b.revisited(c) {
			break
		}
		childCtx := ctx
		childCtx.SiblingIndex = idx
		childCtx.MixedContent = mixed
		nodes := b.convert(c, level, childCtx)
		for _, node := range nodes {
			if node.Type == semantic.Text && len(out) > 0 {
				last := out[len(out)-1]
				if last.Type == semantic.Text && len(last.Children) == 0 {
					last.Content = last.Content + " " + node.Content
					continue
				}
			}
			out = append(out, node)
		}
		idx++
	}
	return out
}

// relevel moves a subtree to a new level, keeping the +1-per-generation
// invariant intact.
func relevel(n *semantic.Node, level int) {
	n.Level = level
	for _, c := range n.Children {
		relevel(c, level+1)
	}
}

// flattenText returns all descendant text joined with single spaces and
// trimmed. The seen set truncates self-referential fragments.
func flattenText(n *html.Node) string {
	return flatten(n, false)
}

// flattenTextSkipLists is flattenText minus nested ul/ol subtrees, used for
// a list item's own text.
func flattenTextSkipLists(n *html.Node) string {
	return flatten(n, true)
}

func flatten(n *html.Node, skipLists bool) string {
	var parts []string
	seen := make(map[*html.Node]bool)
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if seen[c] {
				break
			}
			if skipLists && c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				continue
			}
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// mixedInline reports whether n's children are fragments of one visual text
// run: raw text interleaved with other content. A sequence of block
// elements with no raw text between them is not mixed.
func mixedInline(n *html.Node) bool {
	count := 0
	hasText := false
	seen := make(map[*html.Node]bool)
	for c := n.FirstChild; c != nil && !seen[c]; c = c.NextSibling {
		seen[c] = true
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				count++
				hasText = true
			}
		case html.ElementNode:
			switch c.Data {
			case "script", "style", "head", "title", "meta", "link", "br", "hr":
			default:
				count++
			}
		}
		if count > 1 && hasText {
			return true
		}
	}
	return false
}

func isInlineTag(tag string) bool {
	switch tag {
	case "a", "b", "strong", "em", "i", "u", "span", "font", "sup", "sub", "small", "code":
		return true
	}
	return false
}

func findBody(n *html.Node) *html.Node {
	seen := make(map[*html.Node]bool)
	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if seen[n] {
			return nil
		}
		seen[n] = true
		if n.Type == html.ElementNode && n.Data == "body" {
			return n
		}
		for c := n.FirstChild; c != nil && !seen[c]; c = c.NextSibling {
			if b := find(c); b != nil {
				return b
			}
		}
		return nil
	}
	return find(n)
}
