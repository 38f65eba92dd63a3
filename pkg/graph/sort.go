// Package graph provides deterministic topological scheduling for workflow
// node graphs.
package graph

import (
	"fmt"

	"github.com/graphflow/graphflow/pkg/models"
)

// CycleError reports that the node/edge set contains at least one cycle and
// therefore has no valid execution order.
type CycleError struct {
	Remaining []string // node ids left with unsatisfied dependencies
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("workflow graph contains a cycle: %d node(s) unreachable", len(e.Remaining))
}

// IsCycleError reports whether err is a CycleError.
func IsCycleError(err error) bool {
	_, ok := err.(*CycleError)

	return ok
}

// Sort returns the nodes in an order where every edge's source precedes its
// target (Kahn's algorithm). Nodes that become ready at the same time keep
// their workflow insertion order, so the result is deterministic.
func Sort(nodes []*models.Node, edges []*models.Edge) ([]*models.Node, error) {
	indegree := make(map[string]int, len(nodes))
	out := make(map[string][]string, len(nodes))

	for _, n := range nodes {
		indegree[n.ID] = 0
	}

	for _, e := range edges {
		// Edges referencing unknown nodes are a structural validation
		// failure upstream; ignore them here rather than corrupting counts.
		if _, ok := indegree[e.SourceNode]; !ok {
			continue
		}

		if _, ok := indegree[e.TargetNode]; !ok {
			continue
		}

		out[e.SourceNode] = append(out[e.SourceNode], e.TargetNode)
		indegree[e.TargetNode]++
	}

	byID := make(map[string]*models.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var queue []string

	for _, n := range nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]*models.Node, 0, len(nodes))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, byID[id])

		for _, next := range out[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) < len(nodes) {
		var remaining []string

		for _, n := range nodes {
			if indegree[n.ID] > 0 {
				remaining = append(remaining, n.ID)
			}
		}

		return nil, &CycleError{Remaining: remaining}
	}

	return order, nil
}
