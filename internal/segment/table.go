package segment

import (
	"github.com/dgallion1/secseg/internal/semantic"
	"golang.org/x/net/html"
)

// decomposeTable converts a <table> subtree into TABLE → TABLE_ROW →
// TABLE_CELL regardless of how irregular the source markup is. Table
// identity is structural, so everything here carries confidence 1.0.
// Ragged rows are preserved as-is (no padding), and rows with zero cells
// survive as empty TABLE_ROW nodes: they are visual separators in filings
// and must round-trip.
func (b *builder) decomposeTable(n *html.Node, level int) *semantic.Node {
	table := &semantic.Node{Type: semantic.Table, Level: level, Confidence: 1.0}
	for _, tr := range b.tableRows(n) {
		row := &semantic.Node{Type: semantic.TableRow, Confidence: 1.0}
		table.AddChild(row)
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if b.revisited(c) {
				break
			}
			if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
				continue
			}
			row.AddChild(&semantic.Node{
				Type:       semantic.TableCell,
				Content:    flattenText(c),
				Confidence: 1.0,
			})
		}
	}
	return table
}

// tableRows collects row elements in document order, looking through
// thead/tbody/tfoot wrappers. Anything else inside the table is ignored.
func (b *builder) tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if b.revisited(c) {
			break
		}
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if b.revisited(r) {
					break
				}
				if r.Type == html.ElementNode && r.Data == "tr" {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}
