package ga

import "math/rand"

// cutPoints returns two distinct indices a < b in [0, n).
func cutPoints(n int, rng *rand.Rand) (int, int) {
	a := rng.Intn(n)
	b := rng.Intn(n - 1)
	if b >= a {
		b++
	}
	if a > b {
		a, b = b, a
	}
	return a, b
}

type orderCrossover struct {
	rng *rand.Rand
}

// Crossover implements OX: the segment [a,b) comes verbatim from the primary
// parent; the remaining positions are filled left to right with the other
// parent's elements in their relative order.
func (o *orderCrossover) Crossover(p1, p2 []int) ([]int, []int) {
	mustEqualLen(p1, p2)
	a, b := cutPoints(len(p1), o.rng)
	return oxChild(p1, p2, a, b), oxChild(p2, p1, a, b)
}

func oxChild(base, other []int, a, b int) []int {
	n := len(base)
	child := make([]int, n)
	used := make([]bool, n)
	for i := a; i < b; i++ {
		child[i] = base[i]
		used[base[i]] = true
	}
	pos := 0
	for _, v := range other {
		if used[v] {
			continue
		}
		if pos == a {
			pos = b
		}
		child[pos] = v
		pos++
	}
	return child
}

type pmxCrossover struct {
	rng *rand.Rand
}

// Crossover implements PMX: the segment comes from the primary parent and
// conflicting values from the secondary parent are placed by chasing the
// segment mapping until a free slot is found.
func (p *pmxCrossover) Crossover(p1, p2 []int) ([]int, []int) {
	mustEqualLen(p1, p2)
	a, b := cutPoints(len(p1), p.rng)
	return pmxChild(p1, p2, a, b), pmxChild(p2, p1, a, b)
}

func pmxChild(base, other []int, a, b int) []int {
	n := len(base)
	child := make([]int, n)
	placed := make([]bool, n)
	for i := range child {
		child[i] = -1
	}
	posInOther := make([]int, n)
	for i, v := range other {
		posInOther[v] = i
	}
	for i := a; i < b; i++ {
		child[i] = base[i]
		placed[base[i]] = true
	}
	for i := a; i < b; i++ {
		v := other[i]
		if placed[v] {
			continue
		}
		pos := i
		for {
			idx := posInOther[base[pos]]
			if child[idx] == -1 {
				child[idx] = v
				placed[v] = true
				break
			}
			pos = idx
		}
	}
	for i := 0; i < n; i++ {
		if child[i] == -1 {
			child[i] = other[i]
		}
	}
	return child
}

type cycleCrossover struct{}

// Crossover implements CX with alternating cycles: indices of the first
// discovered cycle keep the primary parent's values, the next cycle takes the
// secondary parent's, and so on, so every index is assigned from exactly one
// parent. CX is fully determined by its parents and draws no randomness.
func (cycleCrossover) Crossover(p1, p2 []int) ([]int, []int) {
	mustEqualLen(p1, p2)
	n := len(p1)
	c1 := make([]int, n)
	c2 := make([]int, n)
	visited := make([]bool, n)
	posInP1 := make([]int, n)
	for i, v := range p1 {
		posInP1[v] = i
	}
	fromPrimary := true
	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		idx := start
		for {
			visited[idx] = true
			if fromPrimary {
				c1[idx] = p1[idx]
				c2[idx] = p2[idx]
			} else {
				c1[idx] = p2[idx]
				c2[idx] = p1[idx]
			}
			idx = posInP1[p2[idx]]
			if idx == start {
				break
			}
		}
		fromPrimary = !fromPrimary
	}
	return c1, c2
}

func mustEqualLen(p1, p2 []int) {
	if len(p1) != len(p2) {
		panic("ga: crossover parents must have equal length")
	}
}
