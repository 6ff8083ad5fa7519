package roadmap

import (
	"fmt"
	"strings"
)

// Graph is the dependency graph of one roadmap. Edges point from a
// dependency to the nodes that depend on it. Dependencies on ids outside
// the roadmap are ignored.
type Graph struct {
	nodes      []Node
	index      map[string]int
	dependents map[string][]string
	order      []string
	cyclic     []string
	dangling   []string
	depth      map[string]int
}

// NewGraph indexes nodes. Duplicate ids keep the first occurrence.
func NewGraph(nodes []Node) *Graph {
	g := &Graph{
		nodes:      nodes,
		index:      make(map[string]int, len(nodes)),
		dependents: make(map[string][]string),
		depth:      make(map[string]int, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := g.index[n.ID]; !dup {
			g.index[n.ID] = i
		}
	}

	inDegree := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if g.index[n.ID] != i {
			continue
		}
		for _, dep := range n.Dependencies {
			if _, ok := g.index[dep]; !ok {
				g.dangling = append(g.dangling, fmt.Sprintf("%s -> %s", n.ID, dep))
				continue
			}
			inDegree[n.ID]++
			g.dependents[dep] = append(g.dependents[dep], n.ID)
		}
	}

	// Kahn's algorithm. The queue is seeded and drained in roadmap order so
	// the result stays close to the order the nodes were generated in.
	var queue []string
	for i, n := range nodes {
		if g.index[n.ID] == i && inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		g.order = append(g.order, id)

		for _, next := range g.dependents[id] {
			if d := g.depth[id] + 1; d > g.depth[next] {
				g.depth[next] = d
			}
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	for i, n := range nodes {
		if g.index[n.ID] == i && inDegree[n.ID] > 0 {
			g.cyclic = append(g.cyclic, n.ID)
		}
	}
	return g
}

// Order returns node ids so that every node comes after its dependencies.
// Nodes on or behind a cycle follow at the end in roadmap order.
func (g *Graph) Order() []string {
	out := make([]string, 0, len(g.order)+len(g.cyclic))
	out = append(out, g.order...)
	return append(out, g.cyclic...)
}

// Depth is the longest dependency chain leading to id. Roots are 0.
func (g *Graph) Depth(id string) int {
	return g.depth[id]
}

// Dependents returns ids of nodes that list id as a dependency.
func (g *Graph) Dependents(id string) []string {
	return append([]string(nil), g.dependents[id]...)
}

// Warnings describes structural problems that do not make a roadmap
// invalid but are worth surfacing: dependencies on unknown ids, cycles and
// the absence of any starting node.
func (g *Graph) Warnings() []string {
	var warns []string
	for _, edge := range g.dangling {
		warns = append(warns, "unknown dependency "+edge)
	}
	if len(g.cyclic) > 0 {
		warns = append(warns, "dependency cycle involving: "+strings.Join(g.cyclic, ", "))
	}
	if len(g.nodes) > 0 && len(g.order) == 0 {
		warns = append(warns, "no node can be started first")
	}
	return warns
}

// InOrder returns the nodes arranged by Order.
func (g *Graph) InOrder() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, id := range g.Order() {
		out = append(out, g.nodes[g.index[id]])
	}
	return out
}
