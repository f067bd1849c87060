package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Layout - Positioned Timeline
// =============================================================================

// Layout is the serialization format for a computed timeline layout.
// Used for API responses, caching, and files.
//
// Nodes lists the header (if any) first, then moments in the order they were
// positioned. Every edge endpoint is a node in Nodes. Unreachable lists the
// IDs of snapshot nodes that no branch walk reached; they are not positioned.
type Layout struct {
	Width       float64  `json:"width" bson:"width"`
	Height      float64  `json:"height" bson:"height"`
	Trunk       string   `json:"trunk,omitempty" bson:"trunk,omitempty"`
	Nodes       []Node   `json:"nodes" bson:"nodes"`
	Edges       []Edge   `json:"edges" bson:"edges"`
	Unreachable []string `json:"unreachable,omitempty" bson:"unreachable,omitempty"`
}

// Node returns the node with the given ID.
func (l *Layout) Node(id string) (*Node, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return &l.Nodes[i], true
		}
	}
	return nil, false
}

// Moments returns the positioned nodes without the header.
func (l *Layout) Moments() []Node {
	out := make([]Node, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		if !n.IsHeader() {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks that node IDs are unique and non-empty and that every edge
// references positioned nodes.
func (l *Layout) Validate() error {
	seen := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.ID == "" {
			return fmt.Errorf("layout node with empty ID")
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate layout node %s", n.ID)
		}
		seen[n.ID] = true
	}
	for _, e := range l.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			return fmt.Errorf("edge %s references unknown node", e.ID)
		}
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// WriteLayout writes a Layout as pretty-printed JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// UnmarshalLayout deserializes JSON bytes into a Layout and validates it.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
