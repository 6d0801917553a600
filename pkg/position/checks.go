package position

// oppositeDir maps a direction index to the index of its antipodal
// direction; directions come in opposite pairs (see the `directions` table
// in cell.go), used to flip a "from king outward" direction into the
// "toward the king" direction a threatening piece would need.
var oppositeDir = [8]int{7, 6, 5, 4, 3, 2, 1, 0}

// attacksAlong reports whether a piece gives check along dirIndex (a "piece
// to king" direction) at the given distance: 1 for an adjacent step, >1 for
// a ray of that length.
func attacksAlong(p Piece, dirIndex, dist int) bool {
	step, slide := attackSet(p)
	bit := uint8(1) << uint(dirIndex)
	if dist == 1 {
		return step&bit != 0 || slide&bit != 0
	}
	return slide&bit != 0
}

// knightAttackSources returns the (up to two) cells from which a knight of
// the given colour would attack target in one jump.
func knightAttackSources(target Cell, color int) []Cell {
	row := target.Row() + 2*color
	if row < 0 || row > 8 {
		return nil
	}
	var out []Cell
	for _, dc := range [2]int{-1, 1} {
		col := target.Col() - dc
		if col < 0 || col > 8 {
			continue
		}
		out = append(out, Cell(row*boardDim+col))
	}
	return out
}

// Checks describes the pieces currently giving check to the side to move,
// and (for a single non-adjacent checker) the ray of empty cells between
// the checker and the king that a defending move may block.
type Checks struct {
	AttackingPieces []Cell
	BlockingCells   CellSet
	KingCell        Cell
}

// InCheck reports whether any piece is giving check.
func (c Checks) InCheck() bool {
	return len(c.AttackingPieces) > 0
}

// Double reports whether two or more pieces give check simultaneously; only
// king moves can evade a double check.
func (c Checks) Double() bool {
	return len(c.AttackingPieces) >= 2
}

// computeChecksFor scans the 8 compass directions and the two knight-attack
// squares from kingCell, looking for enemy pieces (colour -side) that give
// check. A double check zeroes BlockingCells, since no single interposition
// can stop two simultaneous checkers.
func computeChecksFor(board *[NumCells]Piece, kingCell Cell, side int) Checks {
	res := Checks{KingCell: kingCell}

	for idx, d := range directions {
		cell := kingCell
		for dist := 1; ; dist++ {
			next, ok := step(cell, d)
			if !ok {
				break
			}
			cell = next

			p := board[cell]
			if p == NoPiece {
				continue
			}
			if p.Color() == side {
				break // own piece blocks the ray
			}
			if attacksAlong(p, oppositeDir[idx], dist) {
				res.AttackingPieces = append(res.AttackingPieces, cell)
				if dist > 1 {
					for i := 1; i < dist; i++ {
						if mid, ok := walk(kingCell, d, i); ok {
							res.BlockingCells.add(mid)
						}
					}
				}
			}
			break // own-or-enemy piece ends the ray either way
		}
	}

	for _, src := range knightAttackSources(kingCell, -side) {
		if board[src] == Piece(-side)*Knight {
			res.AttackingPieces = append(res.AttackingPieces, src)
		}
	}

	if len(res.AttackingPieces) >= 2 {
		res.BlockingCells = CellSet{}
	}
	return res
}

// potentialDrop names a droppable kind that, if dropped at a given cell,
// would give check.
type potentialDrop struct {
	Cell Cell
	Kind Piece // unpromoted magnitude 1..7
}

// computePotentialDropsMap finds every (cell, kind) pair such that dropping
// a piece of that kind and colour onto the (currently empty) cell would
// check the opposing king at kingCell. It is anchored at the *defending*
// king and walked from the attacker's point of view, mirroring ComputeChecks
// but restricted to kinds that are actually droppable (excludes King) and to
// empty destination cells.
func computePotentialDropsMap(board *[NumCells]Piece, kingCell Cell, attackerColor int) []potentialDrop {
	var out []potentialDrop

	for idx, d := range directions {
		cell := kingCell
		for dist := 1; ; dist++ {
			next, ok := step(cell, d)
			if !ok {
				break
			}
			cell = next
			if board[cell] != NoPiece {
				break // occupied cell blocks the ray for further drops too
			}
			for kind := Pawn; kind <= Rook; kind++ {
				p := Piece(attackerColor) * kind
				if attacksAlong(p, oppositeDir[idx], dist) {
					out = append(out, potentialDrop{Cell: cell, Kind: kind})
				}
			}
		}
	}

	for _, src := range knightAttackSources(kingCell, attackerColor) {
		if board[src] == NoPiece {
			out = append(out, potentialDrop{Cell: src, Kind: Knight})
		}
	}
	return out
}
