package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Source kinds produced by ingestion. Unknown kinds are kept verbatim.
const (
	SourceEmail    = "email"
	SourceCalendar = "calendar"
	SourceDocument = "document"
)

// DefaultTrunkName is the branch name the backend gives a user's main path.
const DefaultTrunkName = "branch_main"

// Branch is one named strand of a timeline.
//
// RootNodeID is nil for a branch that has not been populated yet; such a
// branch contributes nothing to a layout. Exactly one branch of a non-empty
// snapshot carries IsTrunk.
type Branch struct {
	ID         string  `json:"_id" validate:"required"`
	Name       string  `json:"name"`
	Owner      string  `json:"user_id,omitempty"`
	RootNodeID *string `json:"root_node"`
	IsTrunk    bool    `json:"is_trunk,omitempty"`
}

// Root returns the root node ID and whether one is set.
func (b *Branch) Root() (string, bool) {
	if b.RootNodeID == nil || *b.RootNodeID == "" {
		return "", false
	}
	return *b.RootNodeID, true
}

// Source references the ingested item a moment was derived from.
type Source struct {
	Kind string `json:"kind" validate:"required"`
	Item string `json:"item"`
}

// Node is one moment on the timeline.
//
// ParentIDs and ChildIDs are ordered; the first entry of each is significant
// to layout. A node with more than one parent is a merge point.
type Node struct {
	ID          string     `json:"_id" validate:"required"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	BranchID    string     `json:"branch" validate:"required"`
	Owner       string     `json:"user_id,omitempty"`
	ParentIDs   []string   `json:"parents" validate:"dive,required"`
	ChildIDs    []string   `json:"children" validate:"dive,required"`
	Sources     []Source   `json:"sources,omitempty" validate:"dive"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   Timestamp  `json:"updated_at"`
	OccurredAt  *Timestamp `json:"occurred_at,omitempty"`
	IsRoot      bool       `json:"root"`
}

// IsMerge reports whether the node joins more than one strand.
func (n *Node) IsMerge() bool { return len(n.ParentIDs) > 1 }

// FirstParent returns the first parent ID, if any.
func (n *Node) FirstParent() (string, bool) {
	if len(n.ParentIDs) == 0 {
		return "", false
	}
	return n.ParentIDs[0], true
}

// Snapshot is the read-only input to one layout computation, ordered as the
// store returned it. Branch order is registration order.
type Snapshot struct {
	Branches []Branch `json:"branches" validate:"dive"`
	Nodes    []Node   `json:"nodes" validate:"dive"`
}

// Empty reports whether the snapshot has no nodes.
func (s *Snapshot) Empty() bool { return len(s.Nodes) == 0 }

// MarkTrunk flags the branch named name as the trunk. It does nothing and
// returns false when a branch is already flagged or no branch has that name.
//
// Producers call this once while assembling a snapshot; layout never guesses
// the trunk from names.
func (s *Snapshot) MarkTrunk(name string) bool {
	for i := range s.Branches {
		if s.Branches[i].IsTrunk {
			return false
		}
	}
	for i := range s.Branches {
		if s.Branches[i].Name == name {
			s.Branches[i].IsTrunk = true
			return true
		}
	}
	return false
}

// Timestamp is a time that accepts the layouts the backend emits: RFC 3339,
// zone-less ISO 8601 (assumed UTC), and bare dates. null and "" decode to the
// zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized time %q", s)
}

// MarshalJSON encodes the zero time as null and anything else as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
