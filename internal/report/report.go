// Package report derives per-filing summaries from a segmented tree:
// element counts, the section-title outline, and table statistics.
package report

import (
	"github.com/dgallion1/secseg/internal/semantic"
)

// TableStats describes one table in the filing.
type TableStats struct {
	Rows       int `json:"rows"`
	MaxColumns int `json:"max_columns"`
}

// Summary is the per-filing report.
type Summary struct {
	ElementCounts map[string]int `json:"element_counts"`
	Sections      []string       `json:"sections"`
	Tables        []TableStats   `json:"tables"`
	TextLength    int            `json:"text_length"`
}

// Summarize builds the report from the tree's own counting and outline
// helpers plus one walk for table shapes and text length.
func Summarize(root *semantic.Node) Summary {
	s := Summary{
		ElementCounts: make(map[string]int),
		Sections:      root.SectionTitles(),
		Tables:        []TableStats{},
	}
	if s.Sections == nil {
		s.Sections = []string{}
	}
	for typ, n := range root.CountTypes() {
		s.ElementCounts[string(typ)] = n
	}
	root.Walk(func(n *semantic.Node) bool {
		s.TextLength += len(n.Content)
		if n.Type == semantic.Table {
			ts := TableStats{Rows: len(n.Children)}
			for _, row := range n.Children {
				if len(row.Children) > ts.MaxColumns {
					ts.MaxColumns = len(row.Children)
				}
			}
			s.Tables = append(s.Tables, ts)
		}
		return true
	})
	return s
}
