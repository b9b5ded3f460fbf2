package geometry

import "container/list"

// Distance sentinels. The field stores costs in a u16-equivalent range;
// the two top values are reserved so a real reachable cost can never
// collide with "never visited" or "can't get there".
type Distance = uint16

const (
	// Unexplored marks a cell the flood fill never reached.
	Unexplored Distance = 0xFFFF
	// Impassable marks a cell that was visited but cannot be entered.
	Impassable Distance = 0xFFFE
	// MaxCost is the largest finite distance the field can record.
	MaxCost Distance = 0xFFFD
)

// CostFunc reports the movement cost of entering (x, y), or false if
// the cell cannot be entered at all (becomes Impassable in the field).
type CostFunc func(x, y int) (cost uint16, enterable bool)

// Field is a Dijkstra distance field: for every cell reachable from one
// or more seed points, the cheapest accumulated cost to reach it. It
// uses a FIFO-frontier banded-cost flood fill rather than a binary heap,
// which is sufficient because step costs are small non-negative
// integers and ties are resolved by visit order — a generalization of
// breadth-first search, not a full priority-queue Dijkstra/A*.
type Field struct {
	origin   Point
	width    int
	height   int
	costs    []Distance
}

func index(width, x, y int) int { return y*width + x }

// Explore floods outward from seeds over [originX, originX+width) x
// [originY, originY+height), using costFn to price each cell.
func Explore(originX, originY, width, height int, seeds []Point, costFn CostFunc) *Field {
	f := &Field{origin: Point{originX, originY}, width: width, height: height}
	f.costs = make([]Distance, width*height)
	for i := range f.costs {
		f.costs[i] = Unexplored
	}

	type frontierEntry struct {
		p    Point
		cost Distance
	}

	queue := list.New()
	for _, s := range seeds {
		if !f.contains(s) {
			continue
		}
		idx := index(width, s.X-originX, s.Y-originY)
		if f.costs[idx] != Unexplored {
			continue
		}
		f.costs[idx] = 0
		queue.PushBack(frontierEntry{p: s, cost: 0})
	}

	for queue.Len() > 0 {
		front := queue.Remove(queue.Front()).(frontierEntry)
		for _, n := range Neighbors8(front.p) {
			if !f.contains(n) {
				continue
			}
			idx := index(width, n.X-originX, n.Y-originY)
			if f.costs[idx] != Unexplored {
				continue
			}
			stepCost, enterable := costFn(n.X, n.Y)
			if !enterable {
				f.costs[idx] = Impassable
				continue
			}
			total := front.cost + Distance(stepCost)
			if total > MaxCost {
				total = MaxCost
			}
			f.costs[idx] = total
			queue.PushBack(frontierEntry{p: n, cost: total})
		}
	}

	return f
}

func (f *Field) contains(p Point) bool {
	lx, ly := p.X-f.origin.X, p.Y-f.origin.Y
	return lx >= 0 && lx < f.width && ly >= 0 && ly < f.height
}

// At returns the distance recorded at (x, y), or Unexplored if the
// point falls outside the explored region.
func (f *Field) At(x, y int) Distance {
	p := Point{x, y}
	if !f.contains(p) {
		return Unexplored
	}
	return f.costs[index(f.width, x-f.origin.X, y-f.origin.Y)]
}

// Step returns the neighbor of (x, y) with the smallest recorded
// distance, for a piece following the field downhill toward its seeds.
// It returns false if no explored, non-impassable neighbor exists.
func (f *Field) Step(x, y int) (Point, bool) {
	best := Point{}
	bestCost := Unexplored
	found := false
	for _, n := range Neighbors8(Point{x, y}) {
		c := f.At(n.X, n.Y)
		if c == Unexplored || c == Impassable {
			continue
		}
		if !found || c < bestCost {
			best, bestCost, found = n, c, true
		}
	}
	return best, found
}
