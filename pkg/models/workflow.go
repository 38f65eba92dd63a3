// Package models defines the core domain models for node-based workflow automation.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Workflow represents a directed graph of typed nodes wired by edges.
type Workflow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required,min=3"`
	Description string    `json:"description"`
	Enabled     bool      `json:"enabled"`
	Nodes       []*Node   `json:"nodes"`
	Edges       []*Edge   `json:"edges"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Edge connects a source node's output port to a target node's input port.
type Edge struct {
	ID         string `json:"id"`
	SourceNode string `json:"source_node" validate:"required"`
	SourcePort string `json:"source_port"`
	TargetNode string `json:"target_node" validate:"required"`
	TargetPort string `json:"target_port"`
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n
		}
	}

	return nil
}

// EdgesInto returns the edges targeting the given node, in workflow order.
func (w *Workflow) EdgesInto(nodeID string) []*Edge {
	var edges []*Edge

	for _, e := range w.Edges {
		if e.TargetNode == nodeID {
			edges = append(edges, e)
		}
	}

	return edges
}

// TriggerNodes returns every trigger node of the given kind.
func (w *Workflow) TriggerNodes(kind NodeKind) []*Node {
	var nodes []*Node

	for _, n := range w.Nodes {
		if n.Kind == kind {
			nodes = append(nodes, n)
		}
	}

	return nodes
}

// ValidateStructure checks the structural invariants that hold independently
// of execution: unique node and edge ids, edge endpoints that exist, and no
// self-loops. Acyclicity is checked at execution time by the graph sorter.
func (w *Workflow) ValidateStructure() error {
	nodeIDs := make(map[string]bool, len(w.Nodes))

	for _, n := range w.Nodes {
		if n.ID == "" {
			return errors.New("node with empty id")
		}

		if nodeIDs[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}

		nodeIDs[n.ID] = true

		if !n.Kind.Valid() {
			return fmt.Errorf("node %q has unknown kind %q", n.ID, n.Kind)
		}
	}

	edgeIDs := make(map[string]bool, len(w.Edges))

	for _, e := range w.Edges {
		if edgeIDs[e.ID] {
			return fmt.Errorf("duplicate edge id %q", e.ID)
		}

		edgeIDs[e.ID] = true

		if !nodeIDs[e.SourceNode] {
			return fmt.Errorf("edge %q references unknown source node %q", e.ID, e.SourceNode)
		}

		if !nodeIDs[e.TargetNode] {
			return fmt.Errorf("edge %q references unknown target node %q", e.ID, e.TargetNode)
		}

		if e.SourceNode == e.TargetNode {
			return fmt.Errorf("edge %q is a self-loop on node %q", e.ID, e.SourceNode)
		}
	}

	return nil
}
