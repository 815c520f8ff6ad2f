// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	order, err := New().TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_PluginChain(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("typescript", "sdk")
	g.AddEdge("sdk", "react-query")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"typescript", "sdk", "react-query"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_InsertionStable(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("zod")
	g.AddNode("schemas")
	g.AddEdge("typescript", "sdk")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"zod", "schemas", "typescript", "sdk"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestLevels_Diamond(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("typescript", "sdk")
	g.AddEdge("typescript", "transformers")
	g.AddEdge("sdk", "react-query")
	g.AddEdge("transformers", "react-query")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{{"typescript"}, {"sdk", "transformers"}, {"react-query"}}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %v", len(want), levels)
	}
	for i := range want {
		if !slices.Equal(levels[i], want[i]) {
			t.Errorf("level %d: expected %v, got %v", i, want[i], levels[i])
		}
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("B", "A")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
	if len(cycleErr.Cycle) != 2 {
		t.Errorf("expected 2 nodes in cycle, got %v", cycleErr.Cycle)
	}
}

func TestTopologicalSort_SelfLoop(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("A", "A")

	var cycleErr *CycleError
	if _, err := g.TopologicalSort(); !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
}

func TestCheckOrder(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("typescript", "sdk")
	g.AddNode("zod")

	tests := []struct {
		name    string
		order   []string
		wantErr *OrderError
	}{
		{"valid", []string{"typescript", "zod", "sdk"}, nil},
		{"dependency after dependent", []string{"sdk", "typescript", "zod"}, &OrderError{Node: "sdk", Prerequisite: "typescript"}},
		{"missing node", []string{"typescript", "sdk"}, &OrderError{Node: "zod"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := g.CheckOrder(tt.order)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var orderErr *OrderError
			if !errors.As(err, &orderErr) {
				t.Fatalf("expected *OrderError, got %T: %v", err, err)
			}
			if *orderErr != *tt.wantErr {
				t.Errorf("expected %+v, got %+v", *tt.wantErr, *orderErr)
			}
		})
	}
}

func TestCycleError_Message(t *testing.T) {
	t.Parallel()
	err := &CycleError{Cycle: []string{"A", "B", "C"}}
	expected := "dependency cycle detected: A -> B -> C"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}
