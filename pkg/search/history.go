package search

import "github.com/herohde/tsumeshogi/pkg/position"

// History is the history heuristic table used to order defender candidate
// moves: a move that has refuted many attacker tries elsewhere in the tree
// is tried first here too. It keeps a per-search "local" table and a
// longer-lived "global" table; Query blends both the way a move that is
// locally untested but globally strong should still sort ahead of an
// untested, unremarkable one.
type History struct {
	local, global table
}

type table map[uint32]counter

type counter struct {
	success, total uint32
}

// NewHistory returns an empty history table.
func NewHistory() *History {
	return &History{local: table{}, global: table{}}
}

// Success records that the packed move succeeded (refuted the attacker).
func (h *History) Success(packed uint32) {
	h.bump(packed, true)
}

// Fail records that the packed move was tried and failed.
func (h *History) Fail(packed uint32) {
	h.bump(packed, false)
}

func (h *History) bump(packed uint32, ok bool) {
	c := h.local[packed]
	c.total++
	if ok {
		c.success++
	}
	h.local[packed] = c
}

// Query returns a [0;1] score for packed: the product of its local and
// global success rates, defaulting each unseen rate to 0.5 so untested
// moves sort ahead of moves with a proven record of failure, but behind
// moves with a proven record of success.
func (h *History) Query(packed uint32) float64 {
	return rate(h.local, packed) * rate(h.global, packed)
}

func rate(t table, packed uint32) float64 {
	c, ok := t[packed]
	if !ok || c.total == 0 {
		return 0.5
	}
	return float64(c.success) / float64(c.total)
}

// Merge folds the local table accumulated by one search into the global
// table, then clears local for the next search. Intended to be called once
// per completed iterative-deepening iteration.
func (h *History) Merge() {
	for packed, c := range h.local {
		g := h.global[packed]
		g.success += c.success
		g.total += c.total
		h.global[packed] = g
	}
	h.local = table{}
}

// packedQuery is a convenience wrapper around Query taking a position.Move
// directly, for callers that have not already packed it.
func (h *History) packedQuery(m position.Move) float64 {
	return h.Query(position.PackMove(m))
}
