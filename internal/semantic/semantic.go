package semantic

import "fmt"

// Type classifies the role of a node in a segmented filing.
type Type string

const (
	Document          Type = "DOCUMENT"
	SectionTitle      Type = "SECTION_TITLE"
	Paragraph         Type = "PARAGRAPH"
	Table             Type = "TABLE"
	TableRow          Type = "TABLE_ROW"
	TableCell         Type = "TABLE_CELL"
	List              Type = "LIST"
	ListItem          Type = "LIST_ITEM"
	Text              Type = "TEXT"
	SupplementaryText Type = "SUPPLEMENTARY_TEXT"
	Container         Type = "CONTAINER"
)

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case Document, SectionTitle, Paragraph, Table, TableRow, TableCell,
		List, ListItem, Text, SupplementaryText, Container:
		return true
	}
	return false
}

// Node is one element of a segmented filing tree. The tree is a pure value
// structure: built once per document, never mutated afterwards.
type Node struct {
	Type       Type
	Content    string // own text only, trimmed; empty for structural types
	Level      int    // 0 is the DOCUMENT root
	Confidence float64
	Children   []*Node
}

// AddChild appends child in document order, setting its level.
func (n *Node) AddChild(child *Node) {
	child.Level = n.Level + 1
	n.Children = append(n.Children, child)
}

// Walk visits n and its descendants pre-order, stopping if fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// CountTypes tallies every type present in the tree rooted at n.
func (n *Node) CountTypes() map[Type]int {
	counts := make(map[Type]int)
	n.Walk(func(node *Node) bool {
		counts[node.Type]++
		return true
	})
	return counts
}

// SectionTitles returns the section-title texts in document order.
func (n *Node) SectionTitles() []string {
	var titles []string
	n.Walk(func(node *Node) bool {
		if node.Type == SectionTitle && node.Content != "" {
			titles = append(titles, node.Content)
		}
		return true
	})
	return titles
}

// Validate checks the structural invariants of the tree rooted at n.
// A violation means a builder bug, not bad input, so callers should treat a
// non-nil return as fatal for the document.
func (n *Node) Validate() error {
	if n.Type != Document {
		return fmt.Errorf("root has type %s, want %s", n.Type, Document)
	}
	if n.Level != 0 {
		return fmt.Errorf("root has level %d, want 0", n.Level)
	}
	if n.Confidence != 1.0 {
		return fmt.Errorf("root has confidence %v, want 1.0", n.Confidence)
	}
	return n.validateSubtree()
}

func (n *Node) validateSubtree() error {
	if !n.Type.Valid() {
		return fmt.Errorf("unknown type %q at level %d", n.Type, n.Level)
	}
	if n.Confidence < 0.0 || n.Confidence > 1.0 {
		return fmt.Errorf("%s node: confidence %v out of [0,1]", n.Type, n.Confidence)
	}
	for _, c := range n.Children {
		if c.Level != n.Level+1 {
			return fmt.Errorf("%s child of %s: level %d, want %d", c.Type, n.Type, c.Level, n.Level+1)
		}
		if c.Type == Document {
			return fmt.Errorf("nested %s node at level %d", Document, c.Level)
		}
		switch n.Type {
		case Table:
			if c.Type != TableRow {
				return fmt.Errorf("%s child of %s, want %s", c.Type, Table, TableRow)
			}
		case TableRow:
			if c.Type != TableCell {
				return fmt.Errorf("%s child of %s, want %s", c.Type, TableRow, TableCell)
			}
		case List:
			if c.Type != ListItem {
				return fmt.Errorf("%s child of %s, want %s", c.Type, List, ListItem)
			}
		}
		if err := c.validateSubtree(); err != nil {
			return err
		}
	}
	return nil
}
