package journeygraph

// Path is the result of a route search.
type Path struct {
	StopIDs  []string
	Duration int

	// Edges holds the hop used between each pair of StopIDs.
	Edges []Edge
}

// ShortestPath runs Dijkstra from start to goal. found is false when the
// goal cannot be reached. A search from a stop to itself is a single-node
// path of zero duration, even for stops the graph has never seen.
func (g *Graph) ShortestPath(start string, goal string) (Path, bool) {
	if start == goal {
		return Path{StopIDs: []string{start}}, true
	}

	if !g.HasNode(start) || !g.HasNode(goal) {
		return Path{}, false
	}

	distances := map[string]int{start: 0}
	previous := map[string]Edge{}
	finalised := map[string]bool{}

	queue := &durationQueue{}
	queue.push(start, 0)

	for queue.Len() > 0 {
		item := queue.pop()
		if finalised[item.stopID] {
			continue
		}
		finalised[item.stopID] = true

		if item.stopID == goal {
			break
		}

		for _, edge := range g.edges[item.stopID] {
			if finalised[edge.To] {
				continue
			}

			candidate := item.duration + edge.Duration
			if best, seen := distances[edge.To]; seen && candidate >= best {
				continue
			}

			distances[edge.To] = candidate
			previous[edge.To] = edge
			queue.push(edge.To, candidate)
		}
	}

	if !finalised[goal] {
		return Path{}, false
	}

	var edges []Edge
	for current := goal; current != start; {
		edge := previous[current]
		edges = append(edges, edge)
		current = edge.From
	}

	path := Path{
		StopIDs:  make([]string, 0, len(edges)+1),
		Edges:    make([]Edge, 0, len(edges)),
		Duration: distances[goal],
	}
	path.StopIDs = append(path.StopIDs, start)
	for i := len(edges) - 1; i >= 0; i-- {
		path.Edges = append(path.Edges, edges[i])
		path.StopIDs = append(path.StopIDs, edges[i].To)
	}

	return path, true
}
