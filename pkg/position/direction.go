package position

// Direction masks. Each mask is an 8-bit set over the indices of the
// `directions` table in cell.go: bit i set means "this piece can reach a
// square along directions[i]". stepMask covers single-step (adjacent) reach;
// slideMask covers unbounded ray reach (the piece also reaches adjacent
// squares along a slideMask direction, trivially, as the first ray step).
//
// These tables are the direct Go counterpart of the original engine's
// SILVER_MOVES/GOLD_MOVES/ROOK_MOVES/BISHOP_MOVES/KING_MOVES direction
// tuples: instead of reconstructing them from a packed per-direction flag
// byte, each piece kind's reachable direction set is spelled out once,
// colour by colour.
func maskOf(idx ...int) uint8 {
	var m uint8
	for _, i := range idx {
		m |= 1 << uint(i)
	}
	return m
}

var (
	diagMask = maskOf(0, 2, 5, 7) // NW, NE, SW, SE
	orthMask = maskOf(1, 3, 4, 6) // N, W, E, S
	allMask  = uint8(0xff)

	silverBlack = maskOf(0, 1, 2, 5, 7)
	silverWhite = maskOf(0, 2, 5, 6, 7)

	goldBlack = maskOf(0, 1, 2, 3, 4, 6)
	goldWhite = maskOf(1, 3, 4, 5, 6, 7)
)

// attackSet returns the (stepMask, slideMask) direction sets for a signed,
// possibly-promoted piece.
func attackSet(p Piece) (step, slide uint8) {
	black := p > 0
	switch p.Kind() {
	case Pawn:
		if p.IsPromoted() {
			return goldSet(black), 0
		}
		if black {
			return maskOf(1), 0
		}
		return maskOf(6), 0
	case Lance:
		if p.IsPromoted() {
			return goldSet(black), 0
		}
		if black {
			return 0, maskOf(1)
		}
		return 0, maskOf(6)
	case Knight:
		if p.IsPromoted() {
			return goldSet(black), 0
		}
		return 0, 0 // knight reach is not direction-ray based; see knightTargets.
	case Silver:
		if p.IsPromoted() {
			return goldSet(black), 0
		}
		if black {
			return silverBlack, 0
		}
		return silverWhite, 0
	case Gold:
		return goldSet(black), 0
	case Bishop:
		if p.IsPromoted() {
			return orthMask, diagMask // Horse: king-step orthogonal + sliding diagonal.
		}
		return 0, diagMask
	case Rook:
		if p.IsPromoted() {
			return diagMask, orthMask // Dragon: king-step diagonal + sliding orthogonal.
		}
		return 0, orthMask
	case King:
		return allMask, 0
	default:
		return 0, 0
	}
}

func goldSet(black bool) uint8 {
	if black {
		return goldBlack
	}
	return goldWhite
}

// knightTargets returns the (up to two) cells a knight of the given colour
// (+1 Black, -1 White) attacks from c. Knights jump two rows forward and one
// column to either side; they never slide and are never adjacent, so they
// sit outside the direction-ray model used by everything else.
func knightTargets(c Cell, color int) []Cell {
	dr := -2 * color
	var out []Cell
	for _, dc := range [2]int{-1, 1} {
		if t, ok := step(c, delta{dr: dr, dc: dc}); ok {
			out = append(out, t)
		}
	}
	return out
}
