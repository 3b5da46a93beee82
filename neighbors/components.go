package neighbors

// Components returns the connected components of g with edges treated as
// undirected. Components are listed in order of their smallest point and
// each is sorted ascending. A disconnected graph yields a reducible chain.
func Components(g *Graph) [][]int {
	n := g.Len()
	adj := make([][]int, n)
	for i, row := range g.Indices {
		for _, j := range row {
			if j == i || j < 0 || j >= n {
				continue
			}
			adj[i] = append(adj[i], j)
			adj[j] = append(adj[j], i)
		}
	}

	label := make([]int, n)
	for i := range label {
		label[i] = -1
	}
	var out [][]int
	queue := make([]int, 0, n)
	for start := 0; start < n; start++ {
		if label[start] >= 0 {
			continue
		}
		c := len(out)
		label[start] = c
		queue = append(queue[:0], start)
		for head := 0; head < len(queue); head++ {
			for _, j := range adj[queue[head]] {
				if label[j] < 0 {
					label[j] = c
					queue = append(queue, j)
				}
			}
		}
		out = append(out, nil)
	}
	for i, c := range label {
		out[c] = append(out[c], i)
	}
	return out
}
