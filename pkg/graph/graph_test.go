package graph

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleLayout() Layout {
	return Layout{
		Width:  250,
		Height: 175,
		Trunk:  "main",
		Nodes: []Node{
			{ID: "title", Kind: KindHeader, X: 25, Y: 10, Label: "About you."},
			{ID: "n1", Kind: KindMoment, X: 250, Y: 75, Label: "a", Side: SideRight, Role: RoleNormal, Row: 0},
			{ID: "n2", Kind: KindMoment, X: 250, Y: 175, Label: "b", Side: SideRight, Role: RoleMerge, Row: 1},
		},
		Edges: []Edge{{ID: EdgeID("n1", "n2"), Source: "n1", Target: "n2"}},
	}
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(l *Layout)
		wantErr bool
	}{
		{"Valid", func(*Layout) {}, false},
		{"EmptyID", func(l *Layout) { l.Nodes[1].ID = "" }, true},
		{"DuplicateID", func(l *Layout) { l.Nodes[2].ID = "n1" }, true},
		{"DanglingSource", func(l *Layout) { l.Edges[0].Source = "ghost" }, true},
		{"DanglingTarget", func(l *Layout) { l.Edges[0].Target = "ghost" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := sampleLayout()
			tt.mutate(&l)
			err := l.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLayoutLookup(t *testing.T) {
	l := sampleLayout()

	n, ok := l.Node("n2")
	if !ok || n.Role != RoleMerge {
		t.Fatalf("Node(n2) = %v, %v", n, ok)
	}
	if _, ok := l.Node("ghost"); ok {
		t.Error("Node(ghost) found")
	}

	moments := l.Moments()
	if len(moments) != 2 {
		t.Fatalf("Moments() len = %d, want 2", len(moments))
	}
	for _, m := range moments {
		if m.IsHeader() {
			t.Error("Moments() returned the header")
		}
	}
}

func TestDisplayLabel(t *testing.T) {
	if got := (&Node{ID: "n1"}).DisplayLabel(); got != "n1" {
		t.Errorf("DisplayLabel() = %q, want n1", got)
	}
	if got := (&Node{ID: "n1", Label: "Moved"}).DisplayLabel(); got != "Moved" {
		t.Errorf("DisplayLabel() = %q, want Moved", got)
	}
}

func TestLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	want := sampleLayout()

	if err := WriteLayoutFile(want, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if len(got.Nodes) != len(want.Nodes) || len(got.Edges) != len(want.Edges) {
		t.Fatalf("round trip changed sizes: %d/%d nodes, %d/%d edges",
			len(got.Nodes), len(want.Nodes), len(got.Edges), len(want.Edges))
	}
	for i := range want.Nodes {
		if got.Nodes[i] != want.Nodes[i] {
			t.Errorf("node %d = %+v, want %+v", i, got.Nodes[i], want.Nodes[i])
		}
	}
	if got.Trunk != "main" {
		t.Errorf("Trunk = %q", got.Trunk)
	}
}

func TestReadLayoutFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadLayoutFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	content := `{"nodes": [{"id": "a"}], "edges": [{"id": "ea-b", "source": "a", "target": "b"}]}`
	if err := os.WriteFile(bad, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadLayoutFile(bad); err == nil {
		t.Error("expected error for dangling edge")
	}

	garbage := filepath.Join(dir, "garbage.json")
	if err := os.WriteFile(garbage, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadLayoutFile(garbage); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
