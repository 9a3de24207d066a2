package model

// node is a tree node. Internal nodes send rows whose bin is <= Threshold
// to Left; leaves carry the shrunken output Value.
type node struct {
	Feature   int
	Threshold uint8
	Left      int
	Right     int
	Leaf      bool
	Value     float64
}

// Tree is one regression tree over binned features.
type Tree struct {
	nodes []node
}

// Leaves returns the number of leaves.
func (t *Tree) Leaves() int {
	n := 0
	for _, nd := range t.nodes {
		if nd.Leaf {
			n++
		}
	}
	return n
}

// predict walks the tree for row r of feature-major bins.
func (t *Tree) predict(bins [][]uint8, r int) float64 {
	i := 0
	for !t.nodes[i].Leaf {
		nd := &t.nodes[i]
		if bins[nd.Feature][r] <= nd.Threshold {
			i = nd.Left
		} else {
			i = nd.Right
		}
	}
	return t.nodes[i].Value
}

// depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		if t.nodes[i].Leaf {
			return 0
		}
		return 1 + max(walk(t.nodes[i].Left), walk(t.nodes[i].Right))
	}
	return walk(0)
}

type treeParams struct {
	numLeaves     int
	maxDepth      int
	minDataInLeaf int
	lambda        float64
	shrinkage     float64
}

type histBin struct {
	g float64
	n int
}

type splitInfo struct {
	valid     bool
	featPos   int
	threshold uint8
	gain      float64
}

type leafState struct {
	node  int
	rows  []int
	depth int
	sumG  float64
	hist  [][]histBin
	best  splitInfo
}

// grower builds one tree. bins and numBins are shared read-only across
// concurrent trials; grad is owned by the caller's training run.
type grower struct {
	bins     [][]uint8
	numBins  []int
	grad     []float64
	features []int
	params   treeParams
}

func (g *grower) leafValue(sumG float64, n int) float64 {
	return -sumG / (float64(n) + g.params.lambda) * g.params.shrinkage
}

func (g *grower) buildHist(rows []int) [][]histBin {
	hist := make([][]histBin, len(g.features))
	for fp, f := range g.features {
		h := make([]histBin, g.numBins[f])
		col := g.bins[f]
		for _, r := range rows {
			b := &h[col[r]]
			b.g += g.grad[r]
			b.n++
		}
		hist[fp] = h
	}
	return hist
}

func subtractHist(parent, child [][]histBin) [][]histBin {
	out := make([][]histBin, len(parent))
	for fp := range parent {
		h := make([]histBin, len(parent[fp]))
		for b := range h {
			h[b] = histBin{g: parent[fp][b].g - child[fp][b].g, n: parent[fp][b].n - child[fp][b].n}
		}
		out[fp] = h
	}
	return out
}

func (g *grower) splittable(l *leafState) bool {
	if g.params.maxDepth > 0 && l.depth >= g.params.maxDepth {
		return false
	}
	return len(l.rows) >= 2*g.params.minDataInLeaf
}

// findBest scans every candidate threshold of every sampled feature.
// Ties keep the first candidate in feature then threshold order.
func (g *grower) findBest(l *leafState) splitInfo {
	best := splitInfo{}
	if !g.splittable(l) {
		return best
	}

	lambda := g.params.lambda
	minData := g.params.minDataInLeaf
	total := float64(len(l.rows))
	parentScore := l.sumG * l.sumG / (total + lambda)

	for fp := range g.features {
		h := l.hist[fp]
		var gl float64
		nl := 0
		for b := 0; b < len(h)-1; b++ {
			gl += h[b].g
			nl += h[b].n
			if nl < minData {
				continue
			}
			nr := len(l.rows) - nl
			if nr < minData {
				break
			}
			gr := l.sumG - gl
			gain := gl*gl/(float64(nl)+lambda) + gr*gr/(float64(nr)+lambda) - parentScore
			if gain > 1e-12 && (!best.valid || gain > best.gain) {
				best = splitInfo{valid: true, featPos: fp, threshold: uint8(b), gain: gain}
			}
		}
	}
	return best
}

// grow builds a tree leaf-wise on rows: it repeatedly splits the leaf with
// the largest gain until numLeaves is reached or no leaf can improve.
func (g *grower) grow(rows []int) *Tree {
	var sumG float64
	for _, r := range rows {
		sumG += g.grad[r]
	}

	t := &Tree{nodes: []node{{Leaf: true, Value: g.leafValue(sumG, len(rows))}}}
	root := &leafState{node: 0, rows: rows, sumG: sumG}
	if g.splittable(root) {
		root.hist = g.buildHist(rows)
		root.best = g.findBest(root)
	}
	leaves := []*leafState{root}

	for len(leaves) < g.params.numLeaves {
		pick := -1
		for i, l := range leaves {
			if l.best.valid && (pick < 0 || l.best.gain > leaves[pick].best.gain) {
				pick = i
			}
		}
		if pick < 0 {
			break
		}

		l := leaves[pick]
		feature := g.features[l.best.featPos]
		threshold := l.best.threshold
		col := g.bins[feature]

		leftRows := make([]int, 0, len(l.rows))
		rightRows := make([]int, 0, len(l.rows))
		var leftG float64
		for _, r := range l.rows {
			if col[r] <= threshold {
				leftRows = append(leftRows, r)
				leftG += g.grad[r]
			} else {
				rightRows = append(rightRows, r)
			}
		}
		rightG := l.sumG - leftG

		leftIdx := len(t.nodes)
		t.nodes = append(t.nodes,
			node{Leaf: true, Value: g.leafValue(leftG, len(leftRows))},
			node{Leaf: true, Value: g.leafValue(rightG, len(rightRows))},
		)
		t.nodes[l.node] = node{Feature: feature, Threshold: threshold, Left: leftIdx, Right: leftIdx + 1}

		left := &leafState{node: leftIdx, rows: leftRows, depth: l.depth + 1, sumG: leftG}
		right := &leafState{node: leftIdx + 1, rows: rightRows, depth: l.depth + 1, sumG: rightG}

		if g.splittable(left) || g.splittable(right) {
			small, large := left, right
			if len(right.rows) < len(left.rows) {
				small, large = right, left
			}
			small.hist = g.buildHist(small.rows)
			large.hist = subtractHist(l.hist, small.hist)
			left.best = g.findBest(left)
			right.best = g.findBest(right)
		}
		l.hist = nil

		leaves[pick] = left
		leaves = append(leaves, right)
	}

	return t
}
