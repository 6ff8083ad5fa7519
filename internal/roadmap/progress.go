package roadmap

// XPPerNode is awarded for each completed node.
const XPPerNode = 100

// NodesPerLevel completed nodes advance the learner one level.
const NodesPerLevel = 3

// Progress summarizes completion of a roadmap.
type Progress struct {
	CompletedNodes []string `json:"completedNodes"`
	TotalNodes     int      `json:"totalNodes"`
	Percent        int      `json:"percent"`
	CurrentLevel   int      `json:"currentLevel"`
	XPPoints       int      `json:"xpPoints"`

	// NextUp lists incomplete nodes whose dependencies are all complete, in
	// roadmap order. Dependencies on ids outside the roadmap are ignored.
	NextUp []string `json:"nextUp"`
}

// ComputeProgress derives progress from the completed flags in nodes.
func ComputeProgress(nodes []Node) Progress {
	p := Progress{
		CompletedNodes: []string{},
		TotalNodes:     len(nodes),
		NextUp:         []string{},
	}

	done := make(map[string]bool, len(nodes))
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
		if n.Completed {
			done[n.ID] = true
			p.CompletedNodes = append(p.CompletedNodes, n.ID)
		}
	}

	completed := len(p.CompletedNodes)
	if p.TotalNodes > 0 {
		p.Percent = completed * 100 / p.TotalNodes
	}
	p.XPPoints = completed * XPPerNode
	p.CurrentLevel = 1 + completed/NodesPerLevel

	for _, n := range nodes {
		if n.Completed {
			continue
		}
		ready := true
		for _, dep := range n.Dependencies {
			if known[dep] && !done[dep] {
				ready = false
				break
			}
		}
		if ready {
			p.NextUp = append(p.NextUp, n.ID)
		}
	}

	return p
}
