package fsm

import "github.com/projectdiscovery/bundler/internal/words"

// Orbit is a partial deterministic machine whose states are points reached
// from seeds under a generator action. Transitions leading to points that
// were not explored are -1.
type Orbit struct {
	alphabet int
	table    []int32
}

// NewAction explores the orbit of seeds breadth first under act, up to
// maxDepth applications. States are numbered in discovery order, seeds
// first.
func NewAction[P comparable](alphabet int, act func(words.Symbol, P) P, seeds []P, maxDepth int) *Orbit {
	depths := map[P]int{}
	var points []P
	for _, seed := range seeds {
		if _, ok := depths[seed]; ok {
			continue
		}
		depths[seed] = 0
		points = append(points, seed)
	}
	images := make([][]P, 0, len(points))
	for cursor := 0; cursor < len(points); cursor++ {
		point := points[cursor]
		depth := depths[point]
		row := make([]P, alphabet)
		for sym := 0; sym < alphabet; sym++ {
			image := act(words.Symbol(sym), point)
			row[sym] = image
			if _, ok := depths[image]; !ok && depth < maxDepth {
				depths[image] = depth + 1
				points = append(points, image)
			}
		}
		images = append(images, row)
	}

	index := make(map[P]int32, len(points))
	for i, point := range points {
		index[point] = int32(i)
	}
	o := &Orbit{alphabet: alphabet, table: make([]int32, len(points)*alphabet)}
	for state, row := range images {
		for sym, image := range row {
			target, ok := index[image]
			if !ok {
				target = -1
			}
			o.table[state*alphabet+sym] = target
		}
	}
	return o
}

// States is the number of explored points.
func (o *Orbit) States() int {
	if o.alphabet == 0 {
		return 0
	}
	return len(o.table) / o.alphabet
}

// Transition returns the image of state under s, -1 when unexplored.
func (o *Orbit) Transition(state int, s words.Symbol) int {
	if int(s) >= o.alphabet || state < 0 || state >= o.States() {
		return -1
	}
	return int(o.table[state*o.alphabet+int(s)])
}

// HasCycle reports whether w, read as a mapping class, fixes one of the
// first searchRange tracked points: the walk from that state stays inside
// the machine and ends where it started. A negative range searches every
// state. It never reports a fixed point that does not exist.
func (o *Orbit) HasCycle(w words.Word, searchRange int) bool {
	depth := o.States()
	if searchRange >= 0 && searchRange < depth {
		depth = searchRange
	}
	for start := 0; start < depth; start++ {
		state := start
		for _, s := range w {
			state = o.Transition(state, s)
			if state < 0 {
				break
			}
		}
		if state == start {
			return true
		}
	}
	return false
}
