// Package scenario holds the data-heavy benchmark workloads that run next to
// the Mandelbrot view: a nested component tree updated along random paths,
// and an infinite-scroll feed loaded page by page.
package scenario

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Node is one component of the tree. Path lists the IDs from the root to
// the node inclusive, so Path[Depth] == ID.
type Node struct {
	ID       string
	Value    float64
	Depth    int
	Path     []string
	Children []*Node
}

// GenerateTree builds a tree where a node at depth d has max(1, 4-d)
// children until maxDepth.
func GenerateTree(maxDepth int, rng *rand.Rand) *Node {
	return generateNode(0, maxDepth, nil, rng)
}

func generateNode(depth, maxDepth int, parent []string, rng *rand.Rand) *Node {
	id := uuid.NewString()
	path := append(append(make([]string, 0, len(parent)+1), parent...), id)

	n := &Node{
		ID:    id,
		Value: rng.Float64() * 100,
		Depth: depth,
		Path:  path,
	}
	if depth < maxDepth {
		n.Children = make([]*Node, max(1, 4-depth))
		for i := range n.Children {
			n.Children[i] = generateNode(depth+1, maxDepth, path, rng)
		}
	}
	return n
}

// Analyze counts the nodes under n and the number of levels.
func Analyze(n *Node) (nodes, levels int) {
	nodes = 1
	deepest := 0
	for _, c := range n.Children {
		cn, cl := Analyze(c)
		nodes += cn
		deepest = max(deepest, cl)
	}
	return nodes, deepest + 1
}

// Update returns a copy of root with the node at path set to value, sharing
// every subtree off the path. touched is the number of nodes copied; it is
// zero when path does not start at root.
func Update(root *Node, path []string, value float64) (updated *Node, touched int) {
	var walk func(n *Node) *Node
	walk = func(n *Node) *Node {
		if n.Depth >= len(path) || path[n.Depth] != n.ID {
			return n
		}
		touched++
		cp := *n
		if n.Depth == len(path)-1 {
			cp.Value = value
			return &cp
		}
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = walk(c)
		}
		return &cp
	}
	return walk(root), touched
}

// RandomLeafPath descends from root to a random leaf.
func RandomLeafPath(root *Node, rng *rand.Rand) []string {
	n := root
	for len(n.Children) > 0 {
		n = n.Children[rng.IntN(len(n.Children))]
	}
	return n.Path
}

// RandomPaths picks n paths by walking the tree depth first and keeping
// each node with 30% chance, walking again until n are kept. Paths may
// repeat.
func RandomPaths(root *Node, n int, rng *rand.Rand) [][]string {
	paths := make([][]string, 0, n)
	var collect func(node *Node)
	collect = func(node *Node) {
		if len(paths) >= n {
			return
		}
		if rng.Float64() < 0.3 {
			paths = append(paths, node.Path)
		}
		for _, c := range node.Children {
			collect(c)
		}
	}
	for len(paths) < n {
		collect(root)
	}
	return paths
}

// TreeMetrics describes the last update.
type TreeMetrics struct {
	UpdateTime      time.Duration
	PropagationTime time.Duration
	NodesUpdated    int
	TotalNodes      int
	MaxDepth        int
	// Updates counts every TriggerUpdate since the tree was built.
	Updates int
}

// Tree is the live component tree state a benchmark driver updates.
type Tree struct {
	mu      sync.Mutex
	root    *Node
	metrics TreeMetrics
	rng     *rand.Rand
}

// NewTree generates a tree of the given depth. A nil rng uses a random seed.
func NewTree(maxDepth int, rng *rand.Rand) *Tree {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	root := GenerateTree(maxDepth, rng)
	nodes, levels := Analyze(root)
	return &Tree{
		root:    root,
		rng:     rng,
		metrics: TreeMetrics{TotalNodes: nodes, MaxDepth: levels},
	}
}

// TriggerUpdate sets the value of the node at path and refreshes metrics.
func (t *Tree) TriggerUpdate(path []string, value float64) TreeMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := time.Now()
	root, touched := Update(t.root, path, value)
	t.root = root
	updateTime := time.Since(start)

	nodes, levels := Analyze(root)
	t.metrics = TreeMetrics{
		UpdateTime:      updateTime,
		PropagationTime: time.Since(start),
		NodesUpdated:    touched,
		TotalNodes:      nodes,
		MaxDepth:        levels,
		Updates:         t.metrics.Updates + 1,
	}
	return t.metrics
}

// UpdateRoot sets the root to a random value.
func (t *Tree) UpdateRoot() TreeMetrics {
	t.mu.Lock()
	path := t.root.Path
	value := t.rng.Float64() * 100
	t.mu.Unlock()
	return t.TriggerUpdate(path, value)
}

// UpdateRandomLeaf sets a random leaf to a random value.
func (t *Tree) UpdateRandomLeaf() TreeMetrics {
	t.mu.Lock()
	path := RandomLeafPath(t.root, t.rng)
	value := t.rng.Float64() * 100
	t.mu.Unlock()
	return t.TriggerUpdate(path, value)
}

// UpdateRandomPaths updates n random nodes one after another and returns
// the metrics of the last update.
func (t *Tree) UpdateRandomPaths(n int) TreeMetrics {
	t.mu.Lock()
	paths := RandomPaths(t.root, n, t.rng)
	values := make([]float64, len(paths))
	for i := range values {
		values[i] = t.rng.Float64() * 100
	}
	m := t.metrics
	t.mu.Unlock()

	for i, path := range paths {
		m = t.TriggerUpdate(path, values[i])
	}
	return m
}

func (t *Tree) Root() *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

func (t *Tree) Metrics() TreeMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.metrics
}
