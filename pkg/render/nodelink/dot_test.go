package nodelink

import (
	"strings"
	"testing"

	"github.com/lifetree/lifetree/pkg/graph"
)

func testLayout() graph.Layout {
	return graph.Layout{
		Nodes: []graph.Node{
			{ID: "title", Kind: graph.KindHeader, X: 25, Y: 10, Label: "About you."},
			{ID: "n1", Kind: graph.KindMoment, X: 250, Y: 75, Label: "Graduated", Date: "6/1/19", Side: graph.SideRight, Role: graph.RoleNormal},
			{ID: "n2", Kind: graph.KindMoment, X: 150, Y: 175, Label: "Gap year", Side: graph.SideLeft, Role: graph.RoleBranch, Description: "Travelled"},
			{ID: "n3", Kind: graph.KindMoment, X: 250, Y: 275, Label: "Back", Side: graph.SideRight, Role: graph.RoleMerge},
		},
		Edges: []graph.Edge{
			{ID: "en1-n2", Source: "n1", Target: "n2"},
			{ID: "en2-n3", Source: "n2", Target: "n3"},
		},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})

	for _, want := range []string{
		"digraph G",
		"layout=neato",
		"inputscale=72",
		`"n1" [pos="250,-75!"`,
		`"title" [pos="25,-10!", shape=plaintext`,
		`label="About you."`,
		`"n1" -> "n2" [id="en1-n2"]`,
		`"n2" -> "n3" [id="en2-n3"]`,
		"width=0.25",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q\n%s", want, dot)
		}
	}
}

func TestToDOT_RoleColors(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})

	tests := map[string]string{
		"n1": `fillcolor="#bfdbfe"`,
		"n2": `fillcolor="#bbf7d0"`,
		"n3": `fillcolor="#6ee7b7"`,
	}
	for id, want := range tests {
		line := nodeLine(dot, id)
		if !strings.Contains(line, want) {
			t.Errorf("node %s line %q missing %s", id, line, want)
		}
	}
	if !strings.Contains(nodeLine(dot, "n2"), `tooltip="Travelled"`) {
		t.Error("description not used as tooltip")
	}
}

func TestToDOT_SideLabels(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})

	tests := []struct {
		id   string
		want []string
	}{
		// Trunk: right of the circle (250 + 9 + 6 + 72), left-justified.
		{"n1:label", []string{`pos="337,-75!"`, `label="Graduated\l"`, "shape=plaintext"}},
		// Side branch: left of the circle (150 - 87), right-justified.
		{"n2:label", []string{`pos="63,-175!"`, `label="Gap year\r"`}},
		{"n3:label", []string{`pos="337,-275!"`, `label="Back\l"`}},
	}
	for _, tt := range tests {
		line := nodeLine(dot, tt.id)
		if line == "" {
			t.Fatalf("no label node %s in\n%s", tt.id, dot)
		}
		for _, want := range tt.want {
			if !strings.Contains(line, want) {
				t.Errorf("%s line %q missing %s", tt.id, line, want)
			}
		}
	}
	if nodeLine(dot, "title:label") != "" {
		t.Error("header should not get a label node")
	}
	if strings.Contains(dot, "xlabel") || strings.Contains(dot, "labelloc") {
		t.Error("external label attributes still emitted")
	}
}

func TestToDOT_LabelIDCollision(t *testing.T) {
	l := graph.Layout{Nodes: []graph.Node{
		{ID: "a", Kind: graph.KindMoment, X: 250, Y: 75, Label: "A", Side: graph.SideRight},
		{ID: "a:label", Kind: graph.KindMoment, X: 250, Y: 175, Label: "B", Side: graph.SideRight},
	}}
	dot := ToDOT(l, Options{})
	if !strings.Contains(nodeLine(dot, "a:label_"), `label="A\l"`) {
		t.Errorf("colliding label node not renamed:\n%s", dot)
	}
	if !strings.Contains(nodeLine(dot, "a:label:label"), `label="B\l"`) {
		t.Errorf("second label node missing:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	if strings.Contains(ToDOT(testLayout(), Options{}), "6/1/19") {
		t.Error("date shown without Detailed")
	}
	if !strings.Contains(ToDOT(testLayout(), Options{Detailed: true}), `label="Graduated\l6/1/19\l"`) {
		t.Error("detailed output missing date")
	}
}

func TestJustifiedLabel(t *testing.T) {
	got := justifiedLabel([]string{`say "hi"`, `a\b`}, `\r`)
	want := `"say \"hi\"\ra\\b\r"`
	if got != want {
		t.Errorf("justifiedLabel() = %s, want %s", got, want)
	}
}

func TestToDOT_NodeSize(t *testing.T) {
	dot := ToDOT(testLayout(), Options{NodeSize: 36})
	if !strings.Contains(dot, "width=0.5") {
		t.Errorf("node size not applied:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func nodeLine(dot, id string) string {
	prefix := `  "` + id + `" [`
	for _, line := range strings.Split(dot, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}
