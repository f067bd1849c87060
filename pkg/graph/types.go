package graph

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node kinds.
const (
	KindHeader = "header" // Fixed title pseudo-node, never selectable
	KindMoment = "moment" // A positioned timeline node
)

// Label sides. The trunk renders labels on the right, side branches on the left.
const (
	SideRight = "right"
	SideLeft  = "left"
)

// Visual roles derived from graph structure.
const (
	RoleNormal = "normal"
	RoleBranch = "branch" // First node of a side-branch walk with one parent
	RoleMerge  = "merge"  // Node with more than one parent
)

// EdgeID returns the identifier of the edge source→target.
func EdgeID(source, target string) string {
	return "e" + source + "-" + target
}

// =============================================================================
// Node - Positioned Node
// =============================================================================

// Node is one positioned node of a layout. X and Y are the node's top-left
// position in layout units.
type Node struct {
	ID          string  `json:"id" bson:"id"`
	Kind        string  `json:"kind" bson:"kind"`
	X           float64 `json:"x" bson:"x"`
	Y           float64 `json:"y" bson:"y"`
	Label       string  `json:"label" bson:"label"`
	Date        string  `json:"date,omitempty" bson:"date,omitempty"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Side        string  `json:"side,omitempty" bson:"side,omitempty"`
	Role        string  `json:"role,omitempty" bson:"role,omitempty"`
	BranchID    string  `json:"branch_id,omitempty" bson:"branch_id,omitempty"`
	Row         int     `json:"row" bson:"row"`
}

// IsHeader returns true for the title pseudo-node.
func (n *Node) IsHeader() bool { return n.Kind == KindHeader }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Directed Connection
// =============================================================================

// Edge connects two positioned nodes.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}
