package layout

import (
	"github.com/charmbracelet/log"

	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/graph"
	"github.com/lifetree/lifetree/pkg/timeline"
)

// walker accumulates one layout. It is used once.
type walker struct {
	ix     *timeline.Index
	opts   Options
	logger *log.Logger

	nodes     []graph.Node
	edges     []graph.Edge
	edgeSeen  map[string]bool
	rows      map[string]int // positioned node ID -> row
	unreached []string
}

func newWalker(ix *timeline.Index, opts Options, logger *log.Logger) *walker {
	return &walker{
		ix:       ix,
		opts:     opts,
		logger:   logger,
		edgeSeen: make(map[string]bool),
		rows:     make(map[string]int, ix.NodeCount()),
	}
}

func (w *walker) addHeader() {
	h := w.opts.Header
	w.nodes = append(w.nodes, graph.Node{
		ID:    h.ID,
		Kind:  graph.KindHeader,
		X:     h.X,
		Y:     h.Y,
		Label: h.Label,
	})
}

// run walks the trunk, then each side branch.
func (w *walker) run() error {
	trunk := w.ix.Trunk()
	if root, ok := trunk.Root(); ok {
		if err := w.walk(trunk, root, 0, ""); err != nil {
			return err
		}
	} else {
		w.logger.Warn("trunk has no root node", "branch", trunk.ID)
	}

	for _, b := range sideBranches(w.ix, w.opts.SideOrder) {
		root, ok := b.Root()
		if !ok {
			w.logger.Debug("skipping branch without root", "branch", b.ID)
			continue
		}
		rootNode, _ := w.ix.Node(root)

		row, attach := 0, ""
		if parent, ok := rootNode.FirstParent(); ok {
			attach = parent
			if r, ok := w.rows[parent]; ok {
				row = r + 1
			} else {
				w.logger.Warn("attachment point not positioned yet, placing branch at row 0",
					"branch", b.ID, "root", root, "parent", parent)
			}
		} else {
			w.logger.Warn("side branch root has no parent, placing branch at row 0",
				"branch", b.ID, "root", root)
		}

		if err := w.walk(b, root, row, attach); err != nil {
			return err
		}
	}
	return nil
}

// walk positions the nodes of branch b starting at id, following the first
// child on the same branch. prev is the node the first edge comes from.
func (w *walker) walk(b *timeline.Branch, id string, row int, prev string) error {
	visited := make(map[string]bool)
	first := true

	for {
		if visited[id] {
			return errors.New(errors.ErrCodeCycle, "branch %s revisits node %s", b.ID, id)
		}
		if _, done := w.rows[id]; done {
			return errors.New(errors.ErrCodeCycle, "branch %s reaches node %s, already positioned by another walk", b.ID, id)
		}
		visited[id] = true

		n, _ := w.ix.Node(id)
		w.place(b, n, row, first)
		if prev != "" {
			w.addEdge(prev, id)
		}

		next, ok := w.nextOnBranch(n, b.ID)
		if !ok {
			if !b.IsTrunk && len(n.ChildIDs) > 0 {
				w.addEdge(id, n.ChildIDs[0])
			}
			return nil
		}
		prev, id = id, next
		row++
		first = false
	}
}

func (w *walker) nextOnBranch(n *timeline.Node, branchID string) (string, bool) {
	for _, c := range n.ChildIDs {
		if child, ok := w.ix.Node(c); ok && child.BranchID == branchID {
			return c, true
		}
	}
	return "", false
}

func (w *walker) place(b *timeline.Branch, n *timeline.Node, row int, first bool) {
	x, side := w.opts.TrunkX, graph.SideRight
	if !b.IsTrunk {
		x, side = w.opts.SideX, graph.SideLeft
	}
	w.rows[n.ID] = row
	w.nodes = append(w.nodes, graph.Node{
		ID:          n.ID,
		Kind:        graph.KindMoment,
		X:           x,
		Y:           float64(row)*w.opts.RowHeight + w.opts.OffsetY,
		Label:       n.Title,
		Date:        w.formatDate(n),
		Description: n.Description,
		Side:        side,
		Role:        role(n, first && !b.IsTrunk),
		BranchID:    b.ID,
		Row:         row,
	})
}

// role is merge for a node with several parents, branch for the single-parent
// start of a side walk, and normal otherwise.
func role(n *timeline.Node, sideStart bool) string {
	switch {
	case len(n.ParentIDs) > 1:
		return graph.RoleMerge
	case sideStart && len(n.ParentIDs) == 1:
		return graph.RoleBranch
	default:
		return graph.RoleNormal
	}
}

func (w *walker) formatDate(n *timeline.Node) string {
	if n.CreatedAt.IsZero() {
		return ""
	}
	return n.CreatedAt.Format(w.opts.DateFormat)
}

func (w *walker) addEdge(source, target string) {
	id := graph.EdgeID(source, target)
	if w.edgeSeen[id] {
		return
	}
	w.edgeSeen[id] = true
	w.edges = append(w.edges, graph.Edge{ID: id, Source: source, Target: target})
}

// finish drops edges to unpositioned nodes, collects unreachable nodes and
// computes the bounding box.
func (w *walker) finish() graph.Layout {
	positioned := make(map[string]bool, len(w.nodes))
	for _, n := range w.nodes {
		positioned[n.ID] = true
	}

	edges := make([]graph.Edge, 0, len(w.edges))
	for _, e := range w.edges {
		if positioned[e.Source] && positioned[e.Target] {
			edges = append(edges, e)
			continue
		}
		w.logger.Debug("dropping edge to unpositioned node", "edge", e.ID)
	}

	for _, n := range w.ix.Nodes() {
		if _, ok := w.rows[n.ID]; !ok {
			w.unreached = append(w.unreached, n.ID)
		}
	}
	if len(w.unreached) > 0 {
		w.logger.Warn("nodes not reachable from any branch walk",
			"count", len(w.unreached), "ids", w.unreached)
	}

	l := graph.Layout{
		Nodes:       w.nodes,
		Edges:       edges,
		Unreachable: w.unreached,
	}
	if l.Nodes == nil {
		l.Nodes = []graph.Node{}
	}
	if t := w.ix.Trunk(); t != nil {
		l.Trunk = t.ID
	}
	for _, n := range l.Nodes {
		l.Width = max(l.Width, n.X)
		l.Height = max(l.Height, n.Y)
	}
	return l
}
