package systems

import (
	"cmp"
	"math"
	"slices"

	"github.com/pthm-cable/hopper/physics"
)

// maxCellSpan is the widest a box may be, in cells per axis, before it is
// kept out of the grid and tested against everything instead.
const maxCellSpan = 4

type cellKey struct {
	col, row int
}

// SpatialGrid is a broad phase hashing bounding boxes into square cells on the
// ground plane (X and Z). Candidate pairs share at least one cell.
type SpatialGrid struct {
	cellSize float64
	cells    map[cellKey][]int
	large    []int
	seen     map[[2]int]struct{}
}

// NewSpatialGrid creates a grid with the given cell size.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
		seen:     make(map[[2]int]struct{}),
	}
}

// Clear removes all boxes from the grid. Cells used since the previous Clear
// keep their storage; cells left empty for a whole step are dropped.
func (g *SpatialGrid) Clear() {
	for k, v := range g.cells {
		if len(v) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = v[:0]
	}
	g.large = g.large[:0]
	clear(g.seen)
}

// Insert adds box idx to every cell it covers.
func (g *SpatialGrid) Insert(idx int, box physics.AABB) {
	c0, r0 := g.cell(box.Min.X, box.Min.Z)
	c1, r1 := g.cell(box.Max.X, box.Max.Z)
	if c1-c0 >= maxCellSpan || r1-r0 >= maxCellSpan {
		g.large = append(g.large, idx)
		return
	}
	for c := c0; c <= c1; c++ {
		for r := r0; r <= r1; r++ {
			k := cellKey{c, r}
			g.cells[k] = append(g.cells[k], idx)
		}
	}
}

// PairsInto appends every candidate pair (i < j) whose boxes overlap to dst,
// sorted by i then j. boxes must be the slice indexed by Insert.
func (g *SpatialGrid) PairsInto(dst [][2]int, boxes []physics.AABB) [][2]int {
	start := len(dst)
	add := func(i, j int) {
		if i == j {
			return
		}
		if i > j {
			i, j = j, i
		}
		p := [2]int{i, j}
		if _, ok := g.seen[p]; ok {
			return
		}
		g.seen[p] = struct{}{}
		if boxes[i].Overlaps(boxes[j]) {
			dst = append(dst, p)
		}
	}

	for _, members := range g.cells {
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				add(members[a], members[b])
			}
		}
	}
	for _, l := range g.large {
		for i := range boxes {
			add(l, i)
		}
	}

	slices.SortFunc(dst[start:], func(a, b [2]int) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return dst
}

// cell returns the grid column and row containing (x, z).
func (g *SpatialGrid) cell(x, z float64) (int, int) {
	return int(math.Floor(x / g.cellSize)), int(math.Floor(z / g.cellSize))
}
