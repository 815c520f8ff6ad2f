// SPDX-License-Identifier: MPL-2.0

// Package dag provides the directed acyclic graph operations behind plugin
// scheduling diagnostics: insertion-stable topological sorting, grouping of
// nodes into dependency levels, and verification that a proposed execution
// order honours every edge.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle lists the nodes left unresolved by the sort. Every node in a
		// cycle is included, plus any node that depends on one.
		Cycle []string
	}

	// OrderError reports an execution order that runs a node before one of
	// its prerequisites, or that omits a node of the graph.
	OrderError struct {
		// Node is the node scheduled too early (or missing).
		Node string
		// Prerequisite is the node that had to run first. Empty when Node is missing.
		Prerequisite string
	}

	// Graph is a directed graph keyed by string. An edge from A to B means A
	// must run before B (B depends on A).
	Graph struct {
		adjacency map[string][]string
		// nodes keeps insertion order so every traversal is deterministic.
		nodes   []string
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (e *OrderError) Error() string {
	if e.Prerequisite == "" {
		return fmt.Sprintf("execution order is missing %q", e.Node)
	}
	return fmt.Sprintf("execution order runs %q before its prerequisite %q", e.Node, e.Prerequisite)
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds a node to the graph. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge records that "from" must run before "to". Both nodes are added
// implicitly.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// TopologicalSort returns a valid execution order using Kahn's algorithm.
// Nodes at the same depth keep their insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	var order []string
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}

// Levels groups nodes into waves: every node in level N depends only on
// nodes from levels below N. Within a level, insertion order is preserved.
func (g *Graph) Levels() ([][]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	var current []string
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			current = append(current, node)
		}
	}

	var (
		levels [][]string
		seen   int
	)
	for len(current) > 0 {
		levels = append(levels, current)
		seen += len(current)

		released := make(map[string]bool)
		for _, node := range current {
			for _, neighbor := range g.adjacency[node] {
				inDegree[neighbor]--
				if inDegree[neighbor] == 0 {
					released[neighbor] = true
				}
			}
		}
		var next []string
		for _, node := range g.nodes {
			if released[node] {
				next = append(next, node)
			}
		}
		current = next
	}

	if seen != len(g.nodes) {
		var cycleNodes []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}
	return levels, nil
}

// CheckOrder verifies that order contains every node of the graph and that
// each edge's source appears before its target.
func (g *Graph) CheckOrder(order []string) error {
	position := make(map[string]int, len(order))
	for i, node := range order {
		position[node] = i
	}
	for _, node := range g.nodes {
		if _, ok := position[node]; !ok {
			return &OrderError{Node: node}
		}
	}
	for _, from := range g.nodes {
		for _, to := range g.adjacency[from] {
			if position[from] >= position[to] {
				return &OrderError{Node: to, Prerequisite: from}
			}
		}
	}
	return nil
}
