package segment

import (
	"github.com/dgallion1/secseg/internal/semantic"
	"golang.org/x/net/html"
)

// decomposeList converts a <ul>/<ol> subtree into LIST → LIST_ITEM with
// confidence 1.0 throughout. An item's content is its own direct text; a
// nested list inside an item becomes a LIST child of the LIST_ITEM, so an
// item can carry both text and a sublist.
func (b *builder) decomposeList(n *html.Node, level int) *semantic.Node {
	list := &semantic.Node{Type: semantic.List, Level: level, Confidence: 1.0}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b.revisited(c) {
			break
		}
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		item := &semantic.Node{
			Type:       semantic.ListItem,
			Content:    flattenTextSkipLists(c),
			Confidence: 1.0,
		}
		list.AddChild(item)
		for sub := c.FirstChild; sub != nil; sub = sub.NextSibling {
			if b.revisited(sub) {
				break
			}
			if sub.Type == html.ElementNode && (sub.Data == "ul" || sub.Data == "ol") {
				item.AddChild(b.decomposeList(sub, level+2))
			}
		}
	}
	return list
}
