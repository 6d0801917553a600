package search

import (
	"container/heap"
	"fmt"

	"github.com/herohde/tsumeshogi/pkg/position"
)

// Priority represents the move order priority used by MoveList.
type Priority float64

// MoveList is a move priority queue for move ordering, highest priority
// first.
type MoveList struct {
	h moveHeap
}

// NewMoveList returns a new move list with the given priorities.
func NewMoveList(moves []position.Move, fn func(m position.Move) Priority) *MoveList {
	h := make(moveHeap, len(moves))
	for i, m := range moves {
		h[i] = elm{m: m, val: fn(m)}
	}
	heap.Init(&h)
	return &MoveList{h: h}
}

// Next returns the next move, the highest priority remaining in the list.
func (ml *MoveList) Next() (position.Move, bool) {
	if ml.Size() == 0 {
		return position.Move{}, false
	}
	ret := heap.Pop(&ml.h).(elm)
	return ret.m, true
}

func (ml *MoveList) Size() int {
	return ml.h.Len()
}

func (ml *MoveList) String() string {
	if ml.Size() == 0 {
		return "[size=0]"
	}
	return fmt.Sprintf("[top=%v, size=%v]", ml.h[0].m, ml.Size())
}

type elm struct {
	m   position.Move
	val Priority
}

type moveHeap []elm

func (h moveHeap) Len() int            { return len(h) }
func (h moveHeap) Less(i, j int) bool  { return h[i].val > h[j].val }
func (h moveHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *moveHeap) Push(x interface{}) { panic("fixed size heap") }

func (h *moveHeap) Pop() interface{} {
	n := len(*h)
	ret := (*h)[n-1]
	*h = (*h)[0 : n-1]
	return ret
}

// byHistory ranks moves by their History.Query score, breaking ties in
// favour of moves that capture the checking piece and moves that are not
// drops.
func byHistory(h *History, checker position.Cell) func(position.Move) Priority {
	return func(m position.Move) Priority {
		p := Priority(1000 * h.packedQuery(m))
		if m.To == checker {
			p += 2
		}
		if !m.IsDrop() {
			p++
		}
		return p
	}
}
