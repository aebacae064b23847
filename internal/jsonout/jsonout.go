// Package jsonout converts semantic trees to and from the two output JSON
// shapes: a verbose human-readable form and a compact LLM form. Both
// transforms are pure; the input tree is never mutated.
package jsonout

import (
	"encoding/json"
	"fmt"

	"github.com/dgallion1/secseg/internal/semantic"
)

// HumanNode is the verbose output shape with descriptive keys.
type HumanNode struct {
	Type       string      `json:"type"`
	Content    string      `json:"content"`
	Level      int         `json:"level"`
	Confidence float64     `json:"confidence"`
	Children   []HumanNode `json:"children"`
}

// LLMNode is the compact output shape. Confidence is deliberately absent
// to cut payload size for machine consumption, so a round-trip through
// this form loses it.
type LLMNode struct {
	Type     string    `json:"t"`
	Content  string    `json:"c"`
	Level    int       `json:"l"`
	Children []LLMNode `json:"ch,omitempty"`
}

// ToHuman maps a semantic tree to the human shape. The tree is validated
// first: an invariant violation indicates a builder bug and fails hard
// rather than being clamped or skipped.
func ToHuman(n *semantic.Node) (HumanNode, error) {
	if err := n.Validate(); err != nil {
		return HumanNode{}, fmt.Errorf("invalid semantic tree: %w", err)
	}
	return humanNode(n), nil
}

func humanNode(n *semantic.Node) HumanNode {
	out := HumanNode{
		Type:       string(n.Type),
		Content:    n.Content,
		Level:      n.Level,
		Confidence: n.Confidence,
		Children:   []HumanNode{},
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, humanNode(c))
	}
	return out
}

// ToLLM maps a semantic tree to the compact shape, validating first.
func ToLLM(n *semantic.Node) (LLMNode, error) {
	if err := n.Validate(); err != nil {
		return LLMNode{}, fmt.Errorf("invalid semantic tree: %w", err)
	}
	return llmNode(n), nil
}

func llmNode(n *semantic.Node) LLMNode {
	out := LLMNode{
		Type:    string(n.Type),
		Content: n.Content,
		Level:   n.Level,
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, llmNode(c))
	}
	return out
}

// MarshalHuman serializes the tree as indented human JSON.
func MarshalHuman(n *semantic.Node) ([]byte, error) {
	h, err := ToHuman(n)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(h, "", "  ")
}

// MarshalLLM serializes the tree as compact LLM JSON.
func MarshalLLM(n *semantic.Node) ([]byte, error) {
	l, err := ToLLM(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(l)
}

// FromHuman reconstructs a semantic tree from the human shape.
func FromHuman(h HumanNode) *semantic.Node {
	n := &semantic.Node{
		Type:       semantic.Type(h.Type),
		Content:    h.Content,
		Level:      h.Level,
		Confidence: h.Confidence,
	}
	for _, c := range h.Children {
		n.Children = append(n.Children, FromHuman(c))
	}
	return n
}

// FromLLM reconstructs a semantic tree from the compact shape. Confidence
// is not carried by that shape and comes back as zero.
func FromLLM(l LLMNode) *semantic.Node {
	n := &semantic.Node{
		Type:    semantic.Type(l.Type),
		Content: l.Content,
		Level:   l.Level,
	}
	for _, c := range l.Children {
		n.Children = append(n.Children, FromLLM(c))
	}
	return n
}

// UnmarshalHuman parses human JSON back into a semantic tree.
func UnmarshalHuman(data []byte) (*semantic.Node, error) {
	var h HumanNode
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode human json: %w", err)
	}
	return FromHuman(h), nil
}

// UnmarshalLLM parses LLM JSON back into a semantic tree.
func UnmarshalLLM(data []byte) (*semantic.Node, error) {
	var l LLMNode
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode llm json: %w", err)
	}
	return FromLLM(l), nil
}
