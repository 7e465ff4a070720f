package dag

import (
	"errors"
	"slices"
	"testing"
)

func build(t *testing.T, ids []string, edges [][2]string) *DAG {
	t.Helper()
	d := New(nil)
	for _, id := range ids {
		if err := d.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := d.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%s->%s): %v", e[0], e[1], err)
		}
	}
	return d
}

func TestAddNode(t *testing.T) {
	d := New(nil)
	if err := d.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID: got %v", err)
	}
	if err := d.AddNode(Node{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := d.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: got %v", err)
	}
	n, ok := d.Node("a")
	if !ok || n.Meta == nil {
		t.Errorf("node meta should be initialized: %+v", n)
	}
}

func TestAddEdge(t *testing.T) {
	d := build(t, []string{"a", "b"}, nil)

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
		{"self loop", Edge{From: "a", To: "a"}, ErrSelfLoop},
		{"valid", Edge{From: "a", To: "b"}, nil},
		{"duplicate is a no-op", Edge{From: "a", To: "b"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if d.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", d.EdgeCount())
	}
	if got := d.Children("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Children(a) = %v", got)
	}
	if got := d.Parents("b"); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Parents(b) = %v", got)
	}
}

func TestSourcesAndOrder(t *testing.T) {
	d := build(t, []string{"c", "a", "b", "d"}, [][2]string{{"a", "b"}, {"c", "b"}, {"b", "d"}})

	if got := NodeIDs(d.Nodes()); !slices.Equal(got, []string{"c", "a", "b", "d"}) {
		t.Errorf("Nodes order = %v", got)
	}
	if got := NodeIDs(d.Sources()); !slices.Equal(got, []string{"c", "a"}) {
		t.Errorf("Sources = %v", got)
	}
	if d.InDegree("b") != 2 || d.OutDegree("b") != 1 {
		t.Errorf("degrees of b = in %d, out %d", d.InDegree("b"), d.OutDegree("b"))
	}
}

func TestValidate(t *testing.T) {
	acyclic := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})
	if err := acyclic.Validate(); err != nil {
		t.Errorf("acyclic graph: %v", err)
	}

	cyclic := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	if err := cyclic.Validate(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("cyclic graph: got %v", err)
	}
}

func TestNewSeeded(t *testing.T) {
	d := New([]Node{{ID: "a"}, {ID: "b"}, {ID: "a"}})
	if d.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, duplicates must be skipped", d.NodeCount())
	}
}
