// Package search implements the mate-in-N AND/OR game-tree search: the
// iterative-deepening driver, the attacker/defender transposition tables,
// the history heuristic, and the staged move iterators that only ever
// enumerate check-giving attacker moves and legal defender evasions.
package search

import (
	"context"
	"time"

	"github.com/herohde/tsumeshogi/pkg/position"
	"github.com/seekerror/logw"
)

// Solver owns the two transposition tables and the history heuristic for a
// sequence of Search calls. It is strictly single-threaded: there are no
// suspension points inside Search, and a Solver must never be shared across
// goroutines (callers wanting parallelism run one Solver per goroutine; see
// cmd/tsumesolve).
type Solver struct {
	ctx context.Context

	attackerTT *Table
	defenderTT *Table
	hist       *History
}

// Option configures a Solver at construction.
type Option func(*Solver)

// WithLogger attaches ctx so Search's summary line and New's allocation
// notice carry trace context.
func WithLogger(ctx context.Context) Option {
	return func(s *Solver) {
		s.ctx = ctx
	}
}

// WithHistoryTable installs a pre-seeded History, e.g. one carried over from
// a prior puzzle believed to share tactical motifs.
func WithHistoryTable(h *History) Option {
	return func(s *Solver) {
		s.hist = h
	}
}

// New builds a Solver with two transposition tables, each allocated half of
// memoryBytes.
func New(memoryBytes uint64, opts ...Option) *Solver {
	s := &Solver{ctx: context.Background(), hist: NewHistory()}
	for _, opt := range opts {
		opt(s)
	}

	half := memoryBytes / 2
	s.attackerTT = NewTable(half)
	s.defenderTT = NewTable(half)

	logw.Infof(s.ctx, "Allocating %v for attacker/defender transposition tables (%v each)", memoryBytes, half)
	return s
}

// ClearTables resets both transposition tables and the history heuristic,
// for use between unrelated puzzles.
func (s *Solver) ClearTables() {
	s.attackerTT = NewTable(s.attackerTT.Size())
	s.defenderTT = NewTable(s.defenderTT.Size())
	s.hist = NewHistory()
}

// Search iteratively deepens over odd depths 1, 3, 5, ..., maxDepth,
// returning the shortest forced mate's depth and principal variation if
// one exists within maxDepth plies. If several first moves mate at the
// shortest depth found, it returns that depth with a nil line and found
// false. pos must have the attacker to move;
// that is a programming-invariant precondition, not a recoverable input
// error, so a violation panics.
func (s *Solver) Search(pos *position.Position, maxDepth int) (depth int, pv []position.Move, found bool) {
	if pos.Side() < 0 {
		panic("search.Solver.Search: position has the defender to move")
	}

	start := time.Now()
	var nodes int

	for d := 1; d <= maxDepth; d += 2 {
		best, line, n := senteSearch(pos, d, s.hist, s.attackerTT, s.defenderTT)
		s.hist.Merge()
		nodes += n

		if !best.IsNone() {
			logw.Infof(s.ctx, "Search %v: mate in %v, nodes=%v, unique=%v, time=%v", pos, d, nodes, !best.IsMany(), time.Since(start))
			if best.IsMany() {
				return d, nil, false
			}
			return d, line, true
		}
	}

	logw.Infof(s.ctx, "Search %v: no mate within %v plies, nodes=%v, time=%v", pos, maxDepth, nodes, time.Since(start))
	return 0, nil, false
}

// senteSearch is the attacker's (OR node's) recursion: it succeeds (returns
// a non-None BestMove) if at least one check-giving move leaves the
// defender with no escape within depth-1 further plies. A pawn drop that
// mates immediately (the defender has no legal move at all after it) is
// never accepted (uchifuzume), at any depth: such a move is skipped
// rather than widening best, so the position is reported as unmated unless
// some other move also forces mate.
func senteSearch(pos *position.Position, depth int, hist *History, at, dt *Table) (BestMove, []position.Move, int) {
	if depth <= 0 {
		return NoneMove, nil, 1
	}

	hash := pos.Hash()
	cached, cachedDepth, _, hit := at.Read(hash)

	if hit && !cached.IsMany() {
		// A stored None is reusable at any probe depth no deeper than the
		// search that proved it: failing to mate with a larger budget
		// implies failing to mate with a smaller one. A stored One is only
		// reusable at the exact depth it was proven at, since the entry's
		// depth is the search budget, not the move's actual mate length --
		// reusing it at a shallower probe would misreport a shorter mate.
		if cached.IsNone() && cachedDepth >= depth {
			return NoneMove, nil, 1
		}
		if !cached.IsNone() && cachedDepth == depth {
			m, _ := cached.Move()
			u := pos.DoMove(m)
			_, childPV, childNodes := goteSearch(pos, depth-1, hist, at, dt)
			pos.UndoMove(m, u)
			return cached, append([]position.Move{m}, childPV...), childNodes + 1
		}
	}

	hint := NoneMove
	if hit {
		hint = cached
	}

	it := NewAttackerIterator(pos, hint)
	best := NoneMove
	var pv []position.Move
	nodes := 1

	for {
		m, ok := it.Next()
		if !ok {
			break
		}

		u := pos.DoMove(m)
		childBest, childPV, childNodes := goteSearch(pos, depth-1, hist, at, dt)
		nodes += childNodes
		immediate := childBest.IsNone() && m.IsPawnDrop() && (depth-1 == 0 || !pos.HasLegalMove(pos.ComputeChecks()))
		pos.UndoMove(m, u)

		if childBest.IsNone() {
			if immediate {
				// Uchifuzume: a pawn drop may never be the mating move.
				continue
			}
			if best.IsNone() {
				pv = append([]position.Move{m}, childPV...)
			}
			best = best.Widen(m)
			if best.IsMany() {
				break
			}
		}
	}

	at.Write(hash, best, depth, uint32(nodes))
	return best, pv, nodes
}

// goteSearch is the defender's (AND node's) recursion: it fails (returns
// NoneMove) only if every legal reply leaves the attacker with a forced
// mate within depth-1 further plies; any single escape succeeds. When every
// reply fails, the PV still needs to reach the mated position, so the
// reply that survives longest (the defender's best available defence,
// maximising mate length when no escape exists) is threaded into the
// returned line even though the returned BestMove itself stays None.
func goteSearch(pos *position.Position, depth int, hist *History, at, dt *Table) (BestMove, []position.Move, int) {
	checks := pos.ComputeChecks()
	hash := pos.Hash()
	cached, cachedDepth, _, hit := dt.Read(hash)

	if hit && !cached.IsMany() {
		// A stored None here means no reply escapes: being mated within a
		// smaller budget implies being mated within a larger one.
		if cached.IsNone() && cachedDepth <= depth {
			return NoneMove, nil, 1
		}
		if !cached.IsNone() && cachedDepth == depth {
			m, _ := cached.Move()
			u := pos.DoMove(m)
			_, childPV, childNodes := senteSearch(pos, depth-1, hist, at, dt)
			pos.UndoMove(m, u)
			return cached, append([]position.Move{m}, childPV...), childNodes + 1
		}
	}

	hint := NoneMove
	if hit {
		hint = cached
	}

	it := NewDefenderIterator(pos, checks, hist, hint)
	nodes := 1

	var worstMove position.Move
	var worstPV []position.Move
	haveWorst := false

	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		packed := position.PackMove(m)

		if depth == 0 {
			hist.Success(packed)
			dt.Write(hash, OneMove(m), depth, uint32(nodes))
			return OneMove(m), []position.Move{m}, nodes
		}

		u := pos.DoMove(m)
		childBest, childPV, childNodes := senteSearch(pos, depth-1, hist, at, dt)
		nodes += childNodes
		pos.UndoMove(m, u)

		if childBest.IsNone() {
			hist.Success(packed)
			dt.Write(hash, OneMove(m), depth, uint32(nodes))
			return OneMove(m), append([]position.Move{m}, childPV...), nodes
		}
		hist.Fail(packed)

		if !haveWorst || len(childPV) > len(worstPV) {
			worstMove, worstPV, haveWorst = m, childPV, true
		}
	}

	dt.Write(hash, NoneMove, depth, uint32(nodes))
	if haveWorst {
		return NoneMove, append([]position.Move{worstMove}, worstPV...), nodes
	}
	return NoneMove, nil, nodes
}
