package nodelink_test

import (
	"fmt"

	"github.com/lifetree/lifetree/pkg/graph"
	"github.com/lifetree/lifetree/pkg/render/nodelink"
)

func ExampleToDOT() {
	l := graph.Layout{
		Nodes: []graph.Node{
			{ID: "n1", Kind: graph.KindMoment, X: 250, Y: 75, Label: "Graduated", Side: graph.SideRight, Role: graph.RoleNormal},
			{ID: "n2", Kind: graph.KindMoment, X: 250, Y: 175, Label: "First job", Side: graph.SideRight, Role: graph.RoleNormal},
		},
		Edges: []graph.Edge{{ID: "en1-n2", Source: "n1", Target: "n2"}},
	}

	fmt.Print(nodelink.ToDOT(l, nodelink.Options{}))
	// Output:
	// digraph G {
	//   layout=neato;
	//   inputscale=72;
	//   bgcolor="transparent";
	//   node [shape=circle, style=filled, fixedsize=true, width=0.25, label="", fontsize=14, color="#94a3b8"];
	//   edge [arrowsize=0.6, color="#94a3b8"];
	//
	//   "n1" [pos="250,-75!", fillcolor="#bfdbfe"];
	//   "n1:label" [pos="337,-75!", shape=plaintext, style="", width=2, height=0.3, label="Graduated\l"];
	//   "n2" [pos="250,-175!", fillcolor="#bfdbfe"];
	//   "n2:label" [pos="337,-175!", shape=plaintext, style="", width=2, height=0.3, label="First job\l"];
	//
	//   "n1" -> "n2" [id="en1-n2"];
	// }
}
