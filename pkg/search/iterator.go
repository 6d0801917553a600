package search

import "github.com/herohde/tsumeshogi/pkg/position"

// AttackerIterator lazily enumerates the attacker's (OR node's) candidate
// moves in stages: the transposition table's hash move first, then
// check-giving piece moves, then check-giving drops. Only moves that give
// check are ever produced, since an attacker move that does not check the
// defender can never be part of a forced mate.
type AttackerIterator struct {
	pos *position.Position

	hint    position.Move
	hasHint bool
	yielded bool

	moves []position.Move
	mi    int
	ready bool

	drops      []position.Move
	di         int
	dropsReady bool
}

// NewAttackerIterator builds an iterator over pos, preferring hint first if
// it is present (One) and still a legal, check-giving move.
func NewAttackerIterator(pos *position.Position, hint BestMove) *AttackerIterator {
	it := &AttackerIterator{pos: pos}
	if m, ok := hint.Move(); ok {
		it.hint = m
		it.hasHint = true
	}
	return it
}

// Next returns the next candidate move, or false once exhausted.
func (it *AttackerIterator) Next() (position.Move, bool) {
	if it.hasHint && !it.yielded {
		it.yielded = true
		if it.givesCheck(it.hint) {
			return it.hint, true
		}
	}

	if !it.ready {
		it.moves = it.filterChecking(it.pos.PseudoLegalMoves())
		it.ready = true
	}
	for it.mi < len(it.moves) {
		m := it.moves[it.mi]
		it.mi++
		if it.hasHint && m.Equals(it.hint) {
			continue
		}
		return m, true
	}

	if !it.dropsReady {
		it.drops = it.pos.ComputeDropsWithCheck()
		it.dropsReady = true
	}
	for it.di < len(it.drops) {
		m := it.drops[it.di]
		it.di++
		if it.hasHint && m.Equals(it.hint) {
			continue
		}
		return m, true
	}

	return position.Move{}, false
}

func (it *AttackerIterator) filterChecking(moves []position.Move) []position.Move {
	var out []position.Move
	for _, m := range moves {
		if it.givesCheck(m) {
			out = append(out, m)
		}
	}
	return out
}

// givesCheck reports whether m is legal for the mover and checks the
// opponent, by simulating it.
func (it *AttackerIterator) givesCheck(m position.Move) bool {
	u := it.pos.DoMove(m)
	ok := it.pos.IsLegal() && it.pos.ComputeChecks().InCheck()
	it.pos.UndoMove(m, u)
	return ok
}

// DefenderIterator lazily enumerates the defender's (AND node's) candidate
// replies to check, in stages: the hash move first, then piece-move
// evasions ordered by the history heuristic (preferring captures of the
// checker), then interposing/blocking drops ordered by history with futile
// drops suppressed. Every yielded move is verified legal, since a candidate
// may not actually resolve the check (e.g. a pinned piece moving away
// exposes a different attacker).
type DefenderIterator struct {
	pos    *position.Position
	checks position.Checks
	hist   *History

	hint    position.Move
	hasHint bool
	yielded bool

	evasions *MoveList
	evReady  bool

	drops     *MoveList
	dropReady bool
}

// NewDefenderIterator builds an iterator over pos's legal responses to
// checks, preferring hint first if present and still legal.
func NewDefenderIterator(pos *position.Position, checks position.Checks, hist *History, hint BestMove) *DefenderIterator {
	it := &DefenderIterator{pos: pos, checks: checks, hist: hist}
	if m, ok := hint.Move(); ok {
		it.hint = m
		it.hasHint = true
	}
	return it
}

// Next returns the next legal candidate reply, or false once exhausted.
func (it *DefenderIterator) Next() (position.Move, bool) {
	if it.hasHint && !it.yielded {
		it.yielded = true
		if it.isLegal(it.hint) {
			return it.hint, true
		}
	}

	if !it.evReady {
		checker := position.NoCell
		if len(it.checks.AttackingPieces) == 1 {
			checker = it.checks.AttackingPieces[0]
		}
		it.evasions = NewMoveList(it.pos.ComputeMoves(it.checks), byHistory(it.hist, checker))
		it.evReady = true
	}
	for {
		m, ok := it.evasions.Next()
		if !ok {
			break
		}
		if it.hasHint && m.Equals(it.hint) {
			continue
		}
		if it.isLegal(m) {
			return m, true
		}
	}

	if !it.dropReady {
		it.drops = NewMoveList(it.pos.ComputeDrops(it.checks), byHistory(it.hist, position.NoCell))
		it.dropReady = true
	}
	for {
		m, ok := it.drops.Next()
		if !ok {
			break
		}
		if it.hasHint && m.Equals(it.hint) {
			continue
		}
		if it.pos.IsFutileDrop(it.checks, m) {
			continue
		}
		if it.isLegal(m) {
			return m, true
		}
	}

	return position.Move{}, false
}

func (it *DefenderIterator) isLegal(m position.Move) bool {
	u := it.pos.DoMove(m)
	ok := it.pos.IsLegal()
	it.pos.UndoMove(m, u)
	return ok
}
