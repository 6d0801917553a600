// Package position implements the Shogi board representation: pieces, cells,
// moves, Zobrist hashing, legal move generation and the canonical notation
// codec used to move a Position in and out of text form.
package position

import "unicode"

// Piece identifies a Shogi piece kind and colour in a single signed value: the
// sign is the colour (positive = Black/attacker, negative = White/defender)
// and the magnitude is the kind, with the Promoted bit set for promoted
// pieces. Zero is NoPiece.
type Piece int8

// Piece kinds. Magnitude only; combine with a colour sign and, for the five
// kinds that can promote, the Promoted flag.
const (
	NoPiece Piece = 0
	Pawn    Piece = 1
	Lance   Piece = 2
	Knight  Piece = 3
	Silver  Piece = 4
	Gold    Piece = 5
	Bishop  Piece = 6
	Rook    Piece = 7
	King    Piece = 8
)

// Promoted is the promotion flag, added to a kind's magnitude.
const Promoted Piece = 16

// Promoted kinds, named for convenience.
const (
	PromotedPawn   = Pawn + Promoted
	PromotedLance  = Lance + Promoted
	PromotedKnight = Knight + Promoted
	PromotedSilver = Silver + Promoted
	Horse          = Bishop + Promoted // promoted bishop
	Dragon         = Rook + Promoted   // promoted rook
)

// pieceLetters indexes kind (1..8) to its canonical notation letter.
const pieceLetters = "PLNSGBRK"

// ExpectedCount returns the fixed Shogi census for an unpromoted kind: the
// total number of that piece (both colours, any promotion state) that must
// exist in a legal starting set.
func ExpectedCount(kind Piece) int {
	switch kind {
	case Pawn:
		return 18
	case Lance, Knight, Silver, Gold:
		return 4
	case Bishop, Rook, King:
		return 2
	default:
		return 0
	}
}

// Color returns the signed unit of the piece's side: +1 for Black, -1 for
// White. Returns -1 for NoPiece.
func (p Piece) Color() int {
	if p > 0 {
		return 1
	}
	return -1
}

// Kind returns the unsigned, unpromoted magnitude (1..8).
func (p Piece) Kind() Piece {
	k := p
	if k < 0 {
		k = -k
	}
	if k >= Promoted {
		k -= Promoted
	}
	return k
}

// IsPromoted reports whether p carries the Promoted flag.
func (p Piece) IsPromoted() bool {
	k := p
	if k < 0 {
		k = -k
	}
	return k >= Promoted
}

// CanPromote reports whether the unpromoted kind is eligible for promotion.
// Gold and King never promote.
func CanPromote(kind Piece) bool {
	return kind < King && kind != Gold
}

// Sliding reports whether the piece's threat extends along a ray rather than
// a fixed offset: Lance, Bishop, Rook and their promoted forms slide; every
// other kind (including Horse/Dragon's king-step component) is a stepper.
func (p Piece) Sliding() bool {
	switch p.Kind() {
	case Lance, Bishop, Rook:
		return true
	default:
		return false
	}
}

// Promote returns p with the Promoted flag set (sign preserved).
func Promote(p Piece) Piece {
	if p > 0 {
		return p + Promoted
	}
	return p - Promoted
}

// Unpromote returns p with the Promoted flag cleared (sign preserved).
func Unpromote(p Piece) Piece {
	if p >= Promoted {
		return p - Promoted
	}
	if p <= -Promoted {
		return p + Promoted
	}
	return p
}

// CouldUnpromoted reports whether an unpromoted piece of this kind, sitting
// on the given cell, would still have at least one legal forward move (a
// pawn or lance may never sit stuck on the furthest rank; a knight may never
// sit stuck on either of the two furthest ranks).
func CouldUnpromoted(piece Piece, c Cell) bool {
	if piece.IsPromoted() {
		return false
	}
	row := c.Row()
	switch piece {
	case Pawn, Lance:
		return row >= 1
	case -Pawn, -Lance:
		return row <= 7
	case Knight:
		return row >= 2
	case -Knight:
		return row <= 6
	default:
		return true
	}
}

// FromChar parses a single notation letter (with case encoding colour) into
// a signed, unpromoted Piece. Returns NoPiece if r is not a recognised
// letter.
func FromChar(r rune) Piece {
	sign := Piece(1)
	if unicode.IsUpper(r) {
		sign = 1
	} else if unicode.IsLower(r) {
		sign = -1
	} else {
		return NoPiece
	}
	switch unicode.ToUpper(r) {
	case 'P':
		return sign * Pawn
	case 'L':
		return sign * Lance
	case 'N':
		return sign * Knight
	case 'S':
		return sign * Silver
	case 'G':
		return sign * Gold
	case 'B':
		return sign * Bishop
	case 'R':
		return sign * Rook
	case 'K':
		return sign * King
	default:
		return NoPiece
	}
}

// String renders the piece in canonical notation: uppercase for Black,
// lowercase for White, with a '+' prefix if promoted.
func (p Piece) String() string {
	if p == NoPiece {
		return "-"
	}
	kind := p.Kind()
	r := rune(pieceLetters[kind-1])
	if p < 0 {
		r = unicode.ToLower(r)
	}
	if p.IsPromoted() {
		return "+" + string(r)
	}
	return string(r)
}
