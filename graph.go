package canvas

// Plan is the result of topologically ordering a composition. Order holds
// node ids in execution/emission order; nodes caught in a cycle never reach
// in-degree zero and are absent from Order.
type Plan struct {
	Order    []string
	HasCycle bool
}

// Schedule orders the composition's nodes with Kahn's algorithm. Ties among
// ready nodes resolve in discovery (FIFO) order, seeded by node list order.
// A cycle is reported as a non-fatal flag; consumers proceed with whatever
// prefix order was produced.
func Schedule(nodes []*Node, edges []*Edge) *Plan {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	indegree := make(map[string]int, len(nodes))
	successors := make(map[string][]string, len(nodes))
	for _, e := range edges {
		// Edges referencing unknown nodes contribute nothing to the order.
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		successors[e.Source] = append(successors[e.Source], e.Target)
		indegree[e.Target]++
	}

	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range successors[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return &Plan{
		Order:    order,
		HasCycle: len(order) != len(nodes),
	}
}
