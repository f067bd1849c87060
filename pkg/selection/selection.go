// Package selection maps a clicked layout node to the data shown in the
// detail panel, and maps node roles to color tokens.
package selection

import (
	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/graph"
)

// Underline tokens for the detail panel header.
const (
	UnderlineBranch  = "decoration-green-200"
	UnderlineMerge   = "decoration-emerald-300"
	UnderlineDefault = "decoration-blue-200"
)

// Fill tokens for node circles.
const (
	FillBranch  = "bg-green-200"
	FillMerge   = "bg-emerald-300"
	FillDefault = "bg-blue-200"
)

var hexByToken = map[string]string{
	FillBranch:       "#bbf7d0",
	FillMerge:        "#6ee7b7",
	FillDefault:      "#bfdbfe",
	UnderlineBranch:  "#bbf7d0",
	UnderlineMerge:   "#6ee7b7",
	UnderlineDefault: "#bfdbfe",
}

// Detail is what the panel shows for a selected node.
type Detail struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
	Role        string `json:"role"`
	BranchID    string `json:"branch_id,omitempty"`
	Underline   string `json:"underline"`
	Fill        string `json:"fill"`
}

// Select returns the detail of node id. The header and unknown IDs are not
// selectable and yield a NOT_FOUND error.
func Select(l graph.Layout, id string) (Detail, error) {
	n, ok := l.Node(id)
	if !ok || n.IsHeader() {
		return Detail{}, errors.New(errors.ErrCodeNotFound, "node %s is not in the layout", id)
	}
	return Detail{
		ID:          n.ID,
		Label:       n.DisplayLabel(),
		Description: n.Description,
		Date:        n.Date,
		Role:        n.Role,
		BranchID:    n.BranchID,
		Underline:   UnderlineToken(n.Role),
		Fill:        FillToken(n.Role),
	}, nil
}

// UnderlineToken returns the underline color token for role.
func UnderlineToken(role string) string {
	switch role {
	case graph.RoleBranch:
		return UnderlineBranch
	case graph.RoleMerge:
		return UnderlineMerge
	default:
		return UnderlineDefault
	}
}

// FillToken returns the node fill token for role.
func FillToken(role string) string {
	switch role {
	case graph.RoleBranch:
		return FillBranch
	case graph.RoleMerge:
		return FillMerge
	default:
		return FillDefault
	}
}

// Hex returns the RGB color of a token, or the default fill color for an
// unknown token.
func Hex(token string) string {
	if h, ok := hexByToken[token]; ok {
		return h
	}
	return hexByToken[FillDefault]
}
