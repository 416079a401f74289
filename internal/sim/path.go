package sim

import "slices"

// neighbourOrder is the BFS expansion order: up, down, right, left.
// Among equal-length routes it decides which one is returned.
var neighbourOrder = [4]Tile{
	{Col: 0, Row: -1},
	{Col: 0, Row: 1},
	{Col: 1, Row: 0},
	{Col: -1, Row: 0},
}

// FindPath returns a shortest 4-connected route from start to end, both
// inclusive, or nil when none exists.
//
// end must be passable; start need not be, since an enemy may be standing
// on a tile that was blocked after it arrived. start == end yields the
// single-tile path [start].
func FindPath(g *Grid, start, end Tile) []Tile {
	if !g.IsPassable(end.Col, end.Row) || !g.InBounds(start.Col, start.Row) {
		return nil
	}
	if start == end {
		return []Tile{start}
	}

	n := g.cols * g.rows
	parent := make([]int, n)
	visited := make([]bool, n)
	queue := make([]int, 0, n)

	si, ei := g.index(start), g.index(end)
	parent[si] = -1
	visited[si] = true
	queue = append(queue, si)

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur == ei {
			break
		}
		ct := g.tileAt(cur)
		for _, d := range neighbourOrder {
			nc, nr := ct.Col+d.Col, ct.Row+d.Row
			if !g.IsPassable(nc, nr) {
				continue
			}
			ni := nr*g.cols + nc
			if visited[ni] {
				continue
			}
			visited[ni] = true
			parent[ni] = cur
			queue = append(queue, ni)
		}
	}

	if !visited[ei] {
		return nil
	}

	var path []Tile
	for i := ei; i != -1; i = parent[i] {
		path = append(path, g.tileAt(i))
	}
	slices.Reverse(path)
	return path
}
