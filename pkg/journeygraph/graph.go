package journeygraph

// Edge is a directed hop between two consecutive stops of a trip.
type Edge struct {
	From     string
	To       string
	Duration int
	TripID   string

	// Approximate marks a reverse edge that reuses the forward duration
	// because the reverse times were not published.
	Approximate bool
}

// Graph is the time-weighted adjacency list built from a timetable. It is
// read-only once built and safe for concurrent searches.
type Graph struct {
	edges map[string][]Edge
	nodes []string

	edgeCount int
}

func NewGraph() *Graph {
	return &Graph{
		edges: map[string][]Edge{},
	}
}

// AddEdge rejects negative durations.
func (g *Graph) AddEdge(edge Edge) bool {
	if edge.Duration < 0 {
		return false
	}

	g.addNode(edge.From)
	g.addNode(edge.To)

	g.edges[edge.From] = append(g.edges[edge.From], edge)
	g.edgeCount++

	return true
}

func (g *Graph) addNode(id string) {
	if _, exists := g.edges[id]; exists {
		return
	}

	g.edges[id] = nil
	g.nodes = append(g.nodes, id)
}

func (g *Graph) Edges(from string) []Edge {
	return g.edges[from]
}

func (g *Graph) HasNode(id string) bool {
	_, exists := g.edges[id]
	return exists
}

// Nodes returns stop ids in the order they were first seen.
func (g *Graph) Nodes() []string {
	return g.nodes
}

func (g *Graph) EdgeCount() int {
	return g.edgeCount
}
