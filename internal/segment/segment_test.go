package segment

import (
	"strings"
	"testing"

	"github.com/dgallion1/secseg/internal/semantic"
	"golang.org/x/net/html"
)

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func segmentHTML(t *testing.T, src string) *semantic.Node {
	t.Helper()
	tree := Segment(parse(t, src), Params{})
	if err := tree.Validate(); err != nil {
		t.Fatalf("invalid tree: %v", err)
	}
	return tree
}

func TestSegment_EmptyDocument(t *testing.T) {
	tree := segmentHTML(t, "<html></html>")
	if tree.Type != semantic.Document {
		t.Errorf("expected DOCUMENT root, got %s", tree.Type)
	}
	if tree.Level != 0 || tree.Confidence != 1.0 {
		t.Errorf("expected level 0 confidence 1.0, got %d %v", tree.Level, tree.Confidence)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected no children for empty document, got %d", len(tree.Children))
	}
}

func TestSegment_NilRoot(t *testing.T) {
	tree := Segment(nil, Params{})
	if tree.Type != semantic.Document || len(tree.Children) != 0 {
		t.Errorf("expected empty DOCUMENT for nil root, got %+v", tree)
	}
}

func TestSegment_Table(t *testing.T) {
	tree := segmentHTML(t, "<table><tr><td>A</td><td>B</td></tr></table>")

	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(tree.Children))
	}
	table := tree.Children[0]
	if table.Type != semantic.Table || table.Confidence != 1.0 {
		t.Fatalf("expected TABLE conf 1.0, got %s conf %v", table.Type, table.Confidence)
	}
	if table.Level != 1 {
		t.Errorf("expected table level 1, got %d", table.Level)
	}
	if len(table.Children) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Children))
	}
	row := table.Children[0]
	if row.Type != semantic.TableRow || row.Confidence != 1.0 || row.Level != 2 {
		t.Fatalf("bad row: %+v", row)
	}
	if len(row.Children) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(row.Children))
	}
	for i, want := range []string{"A", "B"} {
		cell := row.Children[i]
		if cell.Type != semantic.TableCell || cell.Content != want || cell.Confidence != 1.0 || cell.Level != 3 {
			t.Errorf("cell %d: %+v", i, cell)
		}
	}
}

func TestSegment_TableEmptyRowPreserved(t *testing.T) {
	tree := segmentHTML(t, "<table><tr><td>A</td></tr><tr></tr><tr><td>B</td></tr></table>")
	table := tree.Children[0]
	if len(table.Children) != 3 {
		t.Fatalf("expected 3 rows including the empty one, got %d", len(table.Children))
	}
	empty := table.Children[1]
	if empty.Type != semantic.TableRow || len(empty.Children) != 0 {
		t.Errorf("expected empty TABLE_ROW preserved, got %+v", empty)
	}
}

func TestSegment_RaggedTablePreserved(t *testing.T) {
	tree := segmentHTML(t, "<table><tr><td>A</td><td>B</td><td>C</td></tr><tr><td>D</td></tr></table>")
	table := tree.Children[0]
	if len(table.Children[0].Children) != 3 {
		t.Errorf("expected first row to keep 3 cells, got %d", len(table.Children[0].Children))
	}
	if len(table.Children[1].Children) != 1 {
		t.Errorf("expected second row to keep 1 cell, got %d", len(table.Children[1].Children))
	}
}

func TestSegment_TableHeaderAndFlattenedCells(t *testing.T) {
	tree := segmentHTML(t, `<table>
		<thead><tr><th>Name</th><th>Value</th></tr></thead>
		<tbody><tr><td><b>Total</b> revenue</td><td>$1,000</td></tr></tbody>
	</table>`)
	table := tree.Children[0]
	if len(table.Children) != 2 {
		t.Fatalf("expected thead+tbody rows flattened to 2 rows, got %d", len(table.Children))
	}
	if got := table.Children[0].Children[0].Content; got != "Name" {
		t.Errorf("expected header cell %q, got %q", "Name", got)
	}
	if got := table.Children[1].Children[0].Content; got != "Total revenue" {
		t.Errorf("expected flattened cell text %q, got %q", "Total revenue", got)
	}
}

func TestSegment_List(t *testing.T) {
	tree := segmentHTML(t, "<ul><li>One</li><li>Two<ul><li>Nested</li></ul></li></ul>")

	list := tree.Children[0]
	if list.Type != semantic.List || list.Confidence != 1.0 || list.Level != 1 {
		t.Fatalf("bad list: %+v", list)
	}
	if len(list.Children) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list.Children))
	}
	one := list.Children[0]
	if one.Type != semantic.ListItem || one.Content != "One" || one.Level != 2 {
		t.Errorf("bad first item: %+v", one)
	}
	two := list.Children[1]
	if two.Content != "Two" {
		t.Errorf("expected item content %q, got %q", "Two", two.Content)
	}
	if len(two.Children) != 1 {
		t.Fatalf("expected nested list under second item, got %d children", len(two.Children))
	}
	nested := two.Children[0]
	if nested.Type != semantic.List || nested.Level != 3 {
		t.Fatalf("bad nested list: %+v", nested)
	}
	if len(nested.Children) != 1 || nested.Children[0].Content != "Nested" {
		t.Errorf("bad nested item: %+v", nested.Children)
	}
	if nested.Children[0].Level != 4 {
		t.Errorf("expected nested item level 4, got %d", nested.Children[0].Level)
	}
}

func TestSegment_OrderedList(t *testing.T) {
	tree := segmentHTML(t, "<ol><li>First</li><li>Second</li></ol>")
	list := tree.Children[0]
	if list.Type != semantic.List || len(list.Children) != 2 {
		t.Fatalf("bad ordered list: %+v", list)
	}
}

func TestSegment_TitleAndParagraph(t *testing.T) {
	tree := segmentHTML(t, "<h2>Item 1.01</h2><p>The Registrant entered into an agreement.</p>")

	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 children, got %d: %+v", len(tree.Children), tree.Children)
	}
	title := tree.Children[0]
	if title.Type != semantic.SectionTitle || title.Content != "Item 1.01" {
		t.Errorf("bad title: %+v", title)
	}
	if title.Confidence != 0.95 {
		t.Errorf("expected title confidence 0.95, got %v", title.Confidence)
	}
	para := tree.Children[1]
	if para.Type != semantic.Paragraph || para.Content != "The Registrant entered into an agreement." {
		t.Errorf("bad paragraph: %+v", para)
	}
	if para.Confidence != 0.9 {
		t.Errorf("expected paragraph confidence 0.9, got %v", para.Confidence)
	}
	if title.Level != 1 || para.Level != 1 {
		t.Errorf("expected both at level 1, got %d and %d", title.Level, para.Level)
	}
}

func TestSegment_CollapsesSingleChildWrappers(t *testing.T) {
	// div > div > p should collapse to a single PARAGRAPH at level 1.
	tree := segmentHTML(t, "<div><div><p>A full sentence of filing text appears here.</p></div></div>")
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(tree.Children))
	}
	para := tree.Children[0]
	if para.Type != semantic.Paragraph {
		t.Fatalf("expected collapsed PARAGRAPH, got %s", para.Type)
	}
	if para.Level != 1 {
		t.Errorf("expected collapsed node at level 1, got %d", para.Level)
	}
}

func TestSegment_ContainerKeptForMultipleChildren(t *testing.T) {
	tree := segmentHTML(t, `<div>
		<p>The first paragraph of the filing body provides context.</p>
		<p>The second paragraph of the filing body adds more detail.</p>
	</div>`)
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(tree.Children))
	}
	container := tree.Children[0]
	if container.Type != semantic.Container {
		t.Fatalf("expected CONTAINER, got %s", container.Type)
	}
	if container.Confidence != 0.5 {
		t.Errorf("expected container confidence 0.5, got %v", container.Confidence)
	}
	if len(container.Children) != 2 {
		t.Errorf("expected 2 paragraphs, got %d", len(container.Children))
	}
	for _, c := range container.Children {
		if c.Level != container.Level+1 {
			t.Errorf("child level %d under container level %d", c.Level, container.Level)
		}
	}
}

func TestSegment_MergesAdjacentTextFragments(t *testing.T) {
	// Inline formatting splits one visual sentence into multiple text nodes.
	// The i/font tags are not emphasis-titles here because the fragments end
	// up as plain text runs around them.
	tree := segmentHTML(t, "<div>The registrant <i>previously</i> disclosed this<br>in another filing</div>")
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 merged child, got %d: %+v", len(tree.Children), tree.Children)
	}
	got := tree.Children[0]
	if got.Type != semantic.Text {
		t.Fatalf("expected TEXT, got %s", got.Type)
	}
	want := "The registrant previously disclosed this in another filing"
	if got.Content != want {
		t.Errorf("expected merged content %q, got %q", want, got.Content)
	}
}

func TestSegment_DropsEmptyNodes(t *testing.T) {
	tree := segmentHTML(t, "<div>   </div><span></span><p></p>")
	if len(tree.Children) != 0 {
		t.Errorf("expected empty wrappers to be dropped, got %+v", tree.Children)
	}
}

func TestSegment_SkipsScriptAndStyle(t *testing.T) {
	tree := segmentHTML(t, `<script>var x = 1;</script><style>p{}</style><p>Real filing content remains visible here.</p>`)
	if len(tree.Children) != 1 {
		t.Fatalf("expected only the paragraph, got %d children", len(tree.Children))
	}
	if tree.Children[0].Type != semantic.Paragraph {
		t.Errorf("expected PARAGRAPH, got %s", tree.Children[0].Type)
	}
}

func TestSegment_ShortPunctuatedResponseIsSupplementary(t *testing.T) {
	// 8-K items frequently answer with a one-word body. A short punctuated
	// run is a label, not a paragraph.
	tree := segmentHTML(t, "<h2>Item 9.01</h2><p>None.</p>")
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(tree.Children))
	}
	got := tree.Children[1]
	if got.Type != semantic.SupplementaryText {
		t.Errorf("expected SUPPLEMENTARY_TEXT for %q, got %s", got.Content, got.Type)
	}
	if got.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", got.Confidence)
	}
}

func TestSegment_SupplementaryText(t *testing.T) {
	tree := segmentHTML(t, "<p>Note: amounts are unaudited.</p>")
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(tree.Children))
	}
	got := tree.Children[0]
	if got.Type != semantic.SupplementaryText {
		t.Errorf("expected SUPPLEMENTARY_TEXT, got %s", got.Type)
	}
	if got.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", got.Confidence)
	}
}

func TestSegment_EmphasizedSpanTitle(t *testing.T) {
	tree := segmentHTML(t, `<span style="font-weight:700">Item 4.01</span>`)
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(tree.Children))
	}
	got := tree.Children[0]
	if got.Type != semantic.SectionTitle {
		t.Errorf("expected SECTION_TITLE from bold span, got %s", got.Type)
	}
	if got.Confidence != 0.95 {
		t.Errorf("expected Item-prefix confidence 0.95, got %v", got.Confidence)
	}
}

func TestSegment_CycleTruncates(t *testing.T) {
	// Simulate a self-referential fragment from a pathological upstream
	// parse: a child whose sibling chain loops back on itself.
	text1 := &html.Node{Type: html.TextNode, Data: "Looping fragment one."}
	text2 := &html.Node{Type: html.TextNode, Data: "Looping fragment two."}
	body := &html.Node{Type: html.ElementNode, Data: "body", FirstChild: text1}
	text1.NextSibling = text2
	text2.NextSibling = text1 // cycle

	done := make(chan *semantic.Node, 1)
	go func() { done <- Segment(body, Params{}) }()
	tree := <-done

	if err := tree.Validate(); err != nil {
		t.Fatalf("invalid tree after truncation: %v", err)
	}
	if len(tree.Children) == 0 {
		t.Fatal("expected content before the cycle to survive")
	}
}

func TestSegment_AllConfidencesInRange(t *testing.T) {
	tree := segmentHTML(t, `<h1>ITEM 2.02</h1>
		<p>Results of operations and financial condition were announced.</p>
		<span style="text-decoration:underline">(a) Dismissal of Auditor</span>
		<table><tr><td>X</td></tr></table>
		<ul><li>Point</li></ul>
		<p>* See accompanying notes</p>`)
	tree.Walk(func(n *semantic.Node) bool {
		if n.Confidence < 0.0 || n.Confidence > 1.0 {
			t.Errorf("%s node: confidence %v out of range", n.Type, n.Confidence)
		}
		return true
	})
}

func TestSegment_LevelsIncrementByOne(t *testing.T) {
	tree := segmentHTML(t, `<div>
		<h2>Item 5.02</h2>
		<div><p>Officers departed; successors were appointed by the board.</p></div>
		<table><tr><td>A</td></tr></table>
		<ul><li>Top<ul><li>Deep</li></ul></li></ul>
	</div>`)
	var check func(n *semantic.Node)
	check = func(n *semantic.Node) {
		for _, c := range n.Children {
			if c.Level != n.Level+1 {
				t.Errorf("%s at level %d under %s at level %d", c.Type, c.Level, n.Type, n.Level)
			}
			check(c)
		}
	}
	check(tree)
}
