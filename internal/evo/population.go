package evo

import "github.com/demmel/life-plus-plus/internal/rule"

// Population is the ordered set of rules under evolution. During a ranking
// pass the only mutation is Swap; a new generation replaces it wholesale.
type Population []rule.Rule

func (p Population) Len() int {
	return len(p)
}

func (p Population) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

// IDs lists rule ids in slot order.
func (p Population) IDs() []string {
	ids := make([]string, len(p))
	for i, r := range p {
		ids[i] = r.ID()
	}
	return ids
}

// Clone copies the slot order. Rules are immutable values and are shared.
func (p Population) Clone() Population {
	return append(Population(nil), p...)
}

// Homogeneous reports whether every rule matches shape.
func (p Population) Homogeneous(shape rule.Shape) bool {
	for _, r := range p {
		if r.Shape() != shape {
			return false
		}
	}
	return true
}
