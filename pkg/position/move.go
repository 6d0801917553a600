package position

import (
	"fmt"
	"strings"
)

// Move is a not-necessarily-legal move: either a board-to-board move
// (possibly a promotion) or a drop. From == NoCell marks a drop, in which
// case FromPiece is NoPiece and ToPiece names the dropped, unpromoted,
// signed kind.
type Move struct {
	From, To           Cell
	FromPiece, ToPiece Piece
}

// IsDrop reports whether m places a piece from hand rather than moving one
// already on the board.
func (m Move) IsDrop() bool {
	return m.From == NoCell
}

// IsPawnDrop reports whether m drops a pawn. Used to enforce uchifuzume:
// mate delivered by a pawn drop is illegal.
func (m Move) IsPawnDrop() bool {
	return m.IsDrop() && m.ToPiece.Kind() == Pawn
}

// IsPromotion reports whether m promotes the moved piece on arrival.
func (m Move) IsPromotion() bool {
	return !m.IsDrop() && m.ToPiece != m.FromPiece
}

// String renders m in coordinate notation: "(+)?PIECE(from)(to)(+)?" for a
// board move, "PIECE*(to)" for a drop. No separator is written between the
// two cells, captures are not marked, and the "+" suffix appears only on a
// promoting move; ParseMove reads that suffix to decide promotion.
func (m Move) String() string {
	if m.IsDrop() {
		return fmt.Sprintf("%v*%v", m.ToPiece.Kind(), m.To)
	}

	prefix := ""
	if m.FromPiece.IsPromoted() {
		prefix = "+"
	}
	suffix := ""
	if m.IsPromotion() {
		suffix = "+"
	}
	return fmt.Sprintf("%v%v%v%v%v", prefix, Unpromote(m.FromPiece).absLetter(), m.From, m.To, suffix)
}

// absLetter renders the unsigned kind letter, ignoring colour and promotion.
func (p Piece) absLetter() string {
	return string(pieceLetters[p.Kind()-1])
}

// Equals reports whether m and o describe the same move.
func (m Move) Equals(o Move) bool {
	return m == o
}

// ParseMove decodes text, as produced by Move.String, into a Move. pos
// supplies the side to move (the mover's colour is never written out, only
// its uppercase kind letter) and, for board moves, the actual piece sitting
// on the source cell. ParseMove does not check legality, only that the text
// is well-formed and that a board move's source cell is occupied by a piece
// of the stated colour and kind.
func ParseMove(pos *Position, text string) (Move, error) {
	color := Piece(pos.Side())

	if idx := strings.IndexByte(text, '*'); idx >= 0 {
		kind, err := kindFromLetter(text[:idx])
		if err != nil {
			return Move{}, fmt.Errorf("invalid drop %q: %w", text, err)
		}
		to, err := ParseCell(text[idx+1:])
		if err != nil {
			return Move{}, fmt.Errorf("invalid drop %q: %w", text, err)
		}
		return Move{From: NoCell, To: to, FromPiece: NoPiece, ToPiece: color * kind}, nil
	}

	rest := text
	promotedMover := strings.HasPrefix(rest, "+")
	if promotedMover {
		rest = rest[1:]
	}
	promotes := strings.HasSuffix(rest, "+")
	if promotes {
		rest = rest[:len(rest)-1]
	}
	if len(rest) != 5 {
		return Move{}, fmt.Errorf("invalid move %q", text)
	}

	kind, err := kindFromLetter(rest[:1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", text, err)
	}
	from, err := ParseCell(rest[1:3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", text, err)
	}
	to, err := ParseCell(rest[3:5])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", text, err)
	}

	fromPiece := color * kind
	if promotedMover {
		fromPiece = Promote(fromPiece)
	}
	if pos.At(from) != fromPiece {
		return Move{}, fmt.Errorf("move %q: %v does not match piece %v on %v", text, fromPiece, pos.At(from), from)
	}

	toPiece := fromPiece
	if promotes {
		toPiece = Promote(fromPiece)
	}
	return Move{From: from, To: to, FromPiece: fromPiece, ToPiece: toPiece}, nil
}

func kindFromLetter(s string) (Piece, error) {
	if len(s) != 1 {
		return NoPiece, fmt.Errorf("invalid piece letter %q", s)
	}
	idx := strings.IndexByte(pieceLetters, s[0])
	if idx < 0 {
		return NoPiece, fmt.Errorf("unknown piece letter %q", s)
	}
	return Piece(idx + 1), nil
}
