package position

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError is a structured parse failure: the offending text and a
// human-readable cause, following the teacher's fen.Decode convention of a
// distinct, specific message per validation step, but promoted to a named
// type so callers can distinguish a parse failure from a programming-
// invariant panic.
type ParseError struct {
	Text  string
	Cause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid shogi position %q: %v", e.Text, e.Cause)
}

func parseErr(text, format string, args ...interface{}) error {
	return &ParseError{Text: text, Cause: fmt.Sprintf(format, args...)}
}

// Position is the mutable Shogi game state: board, pockets, king cells, side
// to move and the incremental Zobrist hash, drop mask and nifu mask that
// DoMove/UndoMove keep in lock-step with the board.
type Position struct {
	board [NumCells]Piece

	blackPocket, whitePocket [8]int // index kind-1; index King-1 unused.

	blackKing, whiteKing Cell

	side int // +1 Black/attacker to move, -1 White/defender to move.

	hash     uint64
	dropMask uint32 // low16 = black kinds present, high16 = white kinds present.
	nifuMask uint32 // bit colorIdx*9+col: an unpromoted pawn of that colour sits on that file.

	moveNo int

	zt *ZobristTable
}

func colorIdx(color int) int {
	if color > 0 {
		return 0
	}
	return 1
}

func (p *Position) pocketRef(color int) *[8]int {
	if color > 0 {
		return &p.blackPocket
	}
	return &p.whitePocket
}

func nifuBit(color, col int) uint32 {
	return 1 << uint(colorIdx(color)*9+col)
}

func (p *Position) hasNifu(color int, col int) bool {
	return p.nifuMask&nifuBit(color, col) != 0
}

func (p *Position) toggleNifu(color int, col int) {
	p.nifuMask ^= nifuBit(color, col)
}

func dropBit(color int, kind Piece) uint32 {
	shift := uint(0)
	if color < 0 {
		shift = 16
	}
	return 1 << (shift + uint(kind-1))
}

func (p *Position) setDropBit(color int, kind Piece) {
	p.dropMask |= dropBit(color, kind)
}

func (p *Position) clearDropBit(color int, kind Piece) {
	p.dropMask &^= dropBit(color, kind)
}

// HasInPocket reports whether colour holds at least one of kind.
func (p *Position) HasInPocket(color int, kind Piece) bool {
	return p.pocketRef(color)[kind-1] > 0
}

// Side returns +1 if Black (the attacker) is to move, -1 if White (the
// defender) is to move.
func (p *Position) Side() int {
	return p.side
}

// Hash returns the maintained, side-inverted Zobrist hash.
func (p *Position) Hash() uint64 {
	return p.hash
}

// MoveNo returns the ply counter.
func (p *Position) MoveNo() int {
	return p.moveNo
}

// At returns the piece occupying c, or NoPiece if empty.
func (p *Position) At(c Cell) Piece {
	return p.board[c]
}

// KingCell returns the cell of colour's king.
func (p *Position) KingCell(color int) Cell {
	if color > 0 {
		return p.blackKing
	}
	return p.whiteKing
}

// NewPosition builds and fully validates a Position from raw board + pocket
// state, validating in this order: per-cell nifu and promotion-zone
// legality, king counts, piece census, and finally that the position is
// itself legal (the side not to move is not in check).
func NewPosition(board [NumCells]Piece, blackPocket, whitePocket [8]int, side int, moveNo int, zt *ZobristTable) (*Position, error) {
	p := &Position{
		board:       board,
		blackPocket: blackPocket,
		whitePocket: whitePocket,
		side:        side,
		moveNo:      moveNo,
		zt:          zt,
	}

	blackKings, whiteKings := 0, 0
	counts := map[Piece]int{}
	for c := Cell(0); c < NumCells; c++ {
		pc := board[c]
		if pc == NoPiece {
			continue
		}
		counts[pc.Kind()]++
		if pc.Kind() == King {
			if pc > 0 {
				blackKings++
				p.blackKing = c
			} else {
				whiteKings++
				p.whiteKing = c
			}
		}
		if pc.Kind() == Pawn && !pc.IsPromoted() {
			if p.hasNifu(pc.Color(), c.Col()) {
				return nil, parseErr("", "two unpromoted pawns on file for colour %v", pc.Color())
			}
			p.toggleNifu(pc.Color(), c.Col())
		}
		if !pc.IsPromoted() && !CouldUnpromoted(pc, c) {
			return nil, parseErr("", "piece %v on cell %v has no legal forward move", pc, c)
		}
	}
	if blackKings != 1 || whiteKings != 1 {
		return nil, parseErr("", "expected exactly one king per colour, got black=%d white=%d", blackKings, whiteKings)
	}

	for kind := Pawn; kind <= Rook; kind++ {
		counts[kind] += blackPocket[kind-1] + whitePocket[kind-1]
	}
	for kind, n := range counts {
		if n > ExpectedCount(kind) {
			return nil, parseErr("", "too many %v pieces: %d exceeds census of %d", kind, n, ExpectedCount(kind))
		}
	}

	for kind := Pawn; kind <= Rook; kind++ {
		if blackPocket[kind-1] > 0 {
			p.setDropBit(1, kind)
		}
		if whitePocket[kind-1] > 0 {
			p.setDropBit(-1, kind)
		}
	}

	p.hash = p.zt.ComputeHash(&p.board, &p.blackPocket, &p.whitePocket)
	if side < 0 {
		p.hash = ^p.hash
	}

	if !p.IsLegal() {
		return nil, parseErr("", "the side not to move is in check")
	}
	return p, nil
}

// IsLegal reports whether the side that just moved (i.e. not the side to
// move) has its king safe from check.
func (p *Position) IsLegal() bool {
	mover := -p.side
	checks := computeChecksFor(&p.board, p.KingCell(mover), mover)
	return !checks.InCheck()
}

// ComputeChecks returns the Checks describing threats to the side to move's
// king.
func (p *Position) ComputeChecks() Checks {
	return computeChecksFor(&p.board, p.KingCell(p.side), p.side)
}

// SwapSides flips the side to move in place without moving a piece, so a
// caller can canonicalise a position onto the attacker-to-move convention.
func (p *Position) SwapSides() {
	p.side = -p.side
	p.hash = ^p.hash
}

// UndoMove captures the state DoMove needs to reverse a move in O(1).
type UndoMove struct {
	Hash       uint64
	DropMask   uint32
	NifuMask   uint32
	TakenPiece Piece
}

// DoMove applies m (assumed pseudo-legal; it may leave the mover's own king
// in check, which callers filter) and returns an UndoMove to reverse it.
func (p *Position) DoMove(m Move) UndoMove {
	mover := p.side
	u := UndoMove{Hash: p.hash, DropMask: p.dropMask, NifuMask: p.nifuMask, TakenPiece: p.board[m.To]}

	if m.IsDrop() {
		kind := m.ToPiece.Kind()
		pocket := p.pocketRef(mover)
		cnt := pocket[kind-1]
		p.hash ^= p.zt.pocketKey(colorIdx(mover), kind, cnt)
		pocket[kind-1] = cnt - 1
		if cnt-1 == 0 {
			p.clearDropBit(mover, kind)
		}
	} else {
		p.board[m.From] = NoPiece
		p.hash ^= p.zt.pieceKey(m.FromPiece, m.From)
	}

	if m.FromPiece != m.ToPiece && (m.FromPiece.Kind() == Pawn || m.ToPiece.Kind() == Pawn) {
		p.toggleNifu(mover, m.To.Col())
	}

	if u.TakenPiece != NoPiece {
		p.hash ^= p.zt.pieceKey(u.TakenPiece, m.To)
		if u.TakenPiece.Kind() == Pawn && !u.TakenPiece.IsPromoted() {
			p.toggleNifu(-mover, m.To.Col())
		}

		capturedKind := Unpromote(u.TakenPiece).Kind()
		if capturedKind != King {
			pocket := p.pocketRef(mover)
			cnt := pocket[capturedKind-1]
			pocket[capturedKind-1] = cnt + 1
			p.hash ^= p.zt.pocketKey(colorIdx(mover), capturedKind, cnt+1)
			if cnt == 0 {
				p.setDropBit(mover, capturedKind)
			}
		}
	}

	p.board[m.To] = m.ToPiece
	p.hash ^= p.zt.pieceKey(m.ToPiece, m.To)

	if m.ToPiece.Kind() == King {
		if mover > 0 {
			p.blackKing = m.To
		} else {
			p.whiteKing = m.To
		}
	}

	p.moveNo++
	p.side = -p.side
	p.hash = ^p.hash

	return u
}

// UndoMove reverses a DoMove, restoring the position byte-for-byte.
func (p *Position) UndoMove(m Move, u UndoMove) {
	p.hash = u.Hash
	p.dropMask = u.DropMask
	p.nifuMask = u.NifuMask
	p.side = -p.side
	mover := p.side

	p.board[m.To] = u.TakenPiece

	if m.IsDrop() {
		pocket := p.pocketRef(mover)
		pocket[m.ToPiece.Kind()-1]++
	} else {
		p.board[m.From] = m.FromPiece
		if m.FromPiece.Kind() == King {
			if mover > 0 {
				p.blackKing = m.From
			} else {
				p.whiteKing = m.From
			}
		}
	}

	if u.TakenPiece != NoPiece {
		capturedKind := Unpromote(u.TakenPiece).Kind()
		if capturedKind != King {
			pocket := p.pocketRef(mover)
			pocket[capturedKind-1]--
		}
	}

	p.moveNo--
}

// Validate recomputes the hash from scratch and compares it against the
// maintained hash; it panics on mismatch, per the programming-invariant
// policy. Intended for tests and debug-mode callers,
// not the hot search path.
func (p *Position) Validate() {
	h := p.zt.ComputeHash(&p.board, &p.blackPocket, &p.whitePocket)
	if p.side < 0 {
		h = ^h
	}
	if h != p.hash {
		panic(fmt.Sprintf("zobrist hash desync: maintained=%x recomputed=%x", p.hash, h))
	}
	if p.board[p.blackKing] != King {
		panic("black king cell out of sync with board")
	}
	if p.board[p.whiteKing] != -King {
		panic("white king cell out of sync with board")
	}
}

func inPromotionZone(c Cell, color int) bool {
	if color > 0 {
		return c.Row() <= 2
	}
	return c.Row() >= 6
}

// pieceMovesFrom generates every pseudo-legal board-to-board move (including
// promotion variants) for the piece sitting on c, ignoring own-king safety.
func (p *Position) pieceMovesFrom(c Cell) []Move {
	piece := p.board[c]
	color := piece.Color()

	var moves []Move
	add := func(to Cell) {
		if piece.IsPromoted() {
			// Already promoted: never stuck, never re-promotes.
			moves = append(moves, Move{From: c, To: to, FromPiece: piece, ToPiece: piece})
			return
		}
		if CouldUnpromoted(piece, to) {
			moves = append(moves, Move{From: c, To: to, FromPiece: piece, ToPiece: piece})
		}
		if CanPromote(piece.Kind()) && (inPromotionZone(c, color) || inPromotionZone(to, color)) {
			moves = append(moves, Move{From: c, To: to, FromPiece: piece, ToPiece: Promote(piece)})
		}
	}

	if piece.Kind() == Knight && !piece.IsPromoted() {
		for _, t := range knightTargets(c, color) {
			if occ := p.board[t]; occ == NoPiece || occ.Color() != color {
				add(t)
			}
		}
		return moves
	}

	stepMask, slideMask := attackSet(piece)
	for idx, d := range directions {
		bit := uint8(1) << uint(idx)
		if stepMask&bit != 0 {
			if t, ok := step(c, d); ok {
				if occ := p.board[t]; occ == NoPiece || occ.Color() != color {
					add(t)
				}
			}
		}
		if slideMask&bit != 0 {
			cur := c
			for {
				t, ok := step(cur, d)
				if !ok {
					break
				}
				cur = t
				occ := p.board[t]
				if occ != NoPiece && occ.Color() == color {
					break
				}
				add(t)
				if occ != NoPiece {
					break
				}
			}
		}
	}
	return moves
}

// allPieceMoves generates every pseudo-legal board-to-board move for the
// side to move, with no check restriction.
func (p *Position) allPieceMoves() []Move {
	var moves []Move
	for c := Cell(0); c < NumCells; c++ {
		if pc := p.board[c]; pc != NoPiece && pc.Color() == p.side {
			moves = append(moves, p.pieceMovesFrom(c)...)
		}
	}
	return moves
}

// allDrops generates every pseudo-legal drop for the side to move onto any
// empty cell, with no check restriction.
func (p *Position) allDrops() []Move {
	var moves []Move
	mask := p.dropMask & 0xffff
	if p.side < 0 {
		mask = (p.dropMask >> 16) & 0xffff
	}
	for c := Cell(0); c < NumCells; c++ {
		if p.board[c] != NoPiece {
			continue
		}
		for kind := Pawn; kind <= Rook; kind++ {
			if mask&(1<<uint(kind-1)) == 0 {
				continue
			}
			piece := Piece(p.side) * kind
			if kind == Pawn && p.hasNifu(p.side, c.Col()) {
				continue
			}
			if !CouldUnpromoted(piece, c) {
				continue
			}
			moves = append(moves, Move{From: NoCell, To: c, FromPiece: NoPiece, ToPiece: piece})
		}
	}
	return moves
}

// PseudoLegalMoves returns every board-to-board move for the side to move
// with no check restriction, for callers (the attacker move iterator) that
// apply their own, different filter (check-giving) instead of the
// check-evasion filter ComputeMoves applies.
func (p *Position) PseudoLegalMoves() []Move {
	return p.allPieceMoves()
}

// ComputeMoves returns all pseudo-legal non-drop moves filtered by checks:
// no check -> all moves; single check -> king moves, moves to a blocking
// cell, and captures of the checker; double check -> king moves only.
func (p *Position) ComputeMoves(checks Checks) []Move {
	all := p.allPieceMoves()
	if !checks.InCheck() {
		return all
	}

	king := p.KingCell(p.side)
	checker := checks.AttackingPieces[0]

	var out []Move
	for _, m := range all {
		if m.From == king {
			out = append(out, m)
			continue
		}
		if checks.Double() {
			continue
		}
		if m.To == checker || checks.BlockingCells.Test(m.To) {
			out = append(out, m)
		}
	}
	return out
}

// ComputeDrops returns all legal drops filtered by checks: no check -> all
// empty cells; single check -> only the interposing ray (empty if the
// checker is adjacent); double check -> none.
func (p *Position) ComputeDrops(checks Checks) []Move {
	if !checks.InCheck() {
		return p.allDrops()
	}
	if checks.Double() || checks.BlockingCells.IsEmpty() {
		return nil
	}
	var out []Move
	for _, m := range p.allDrops() {
		if checks.BlockingCells.Test(m.To) {
			out = append(out, m)
		}
	}
	return out
}

// ComputeDropsWithCheck is the attacker-side drop generator restricted to
// drops that immediately check the defender's king.
func (p *Position) ComputeDropsWithCheck() []Move {
	defenderKing := p.KingCell(-p.side)
	var out []Move
	for _, cand := range computePotentialDropsMap(&p.board, defenderKing, p.side) {
		if !p.HasInPocket(p.side, cand.Kind) {
			continue
		}
		piece := Piece(p.side) * cand.Kind
		if cand.Kind == Pawn && p.hasNifu(p.side, cand.Cell.Col()) {
			continue
		}
		if !CouldUnpromoted(piece, cand.Cell) {
			continue
		}
		out = append(out, Move{From: NoCell, To: cand.Cell, FromPiece: NoPiece, ToPiece: piece})
	}
	return out
}

// HasLegalMove reports whether the side to move has at least one legal
// response to checks (own-king safety after the candidate move/drop). It
// underlies IsFutileDrop and the attacker search's pawn-drop-mate check.
func (p *Position) HasLegalMove(checks Checks) bool {
	for _, m := range p.ComputeMoves(checks) {
		u := p.DoMove(m)
		ok := p.IsLegal()
		p.UndoMove(m, u)
		if ok {
			return true
		}
	}
	for _, m := range p.ComputeDrops(checks) {
		u := p.DoMove(m)
		ok := p.IsLegal()
		p.UndoMove(m, u)
		if ok {
			return true
		}
	}
	return false
}

// IsFutileDrop reports whether a candidate interposing drop is futile: the
// attacker can simply recapture the (single, sliding) checker onto the
// drop's destination, restoring the same check, and the defender has no
// legal reply to that. Suppressing such drops avoids wasted search on
// "interpose, then lose anyway" defences.
func (p *Position) IsFutileDrop(checks Checks, drop Move) bool {
	if checks.Double() || len(checks.AttackingPieces) != 1 {
		return false
	}
	checker := checks.AttackingPieces[0]

	u1 := p.DoMove(drop)
	defer func() { p.UndoMove(drop, u1) }()

	checkerPiece := p.board[checker]
	recapture := Move{From: checker, To: drop.To, FromPiece: checkerPiece, ToPiece: checkerPiece}
	if !checkerPiece.IsPromoted() && !CouldUnpromoted(checkerPiece, drop.To) {
		recapture.ToPiece = Promote(checkerPiece)
	}

	u2 := p.DoMove(recapture)
	defer func() { p.UndoMove(recapture, u2) }()

	if !p.IsLegal() {
		return false
	}
	next := p.ComputeChecks()
	return !p.HasLegalMove(next)
}

// String renders the position in canonical notation: nine '/'-separated
// rows, side to move, pockets, move number.
func (p *Position) String() string {
	var sb strings.Builder
	for row := 0; row < 9; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for col := 0; col < 9; col++ {
			c := Cell(row*boardDim + col)
			pc := p.board[c]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
	}

	sb.WriteByte(' ')
	if p.side > 0 {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}

	sb.WriteByte(' ')
	hand := ""
	hand += pocketString(&p.blackPocket, false)
	hand += pocketString(&p.whitePocket, true)
	if hand == "" {
		hand = "-"
	}
	sb.WriteString(hand)

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.moveNo))

	return sb.String()
}

func pocketString(pocket *[8]int, lower bool) string {
	var sb strings.Builder
	for kind := Pawn; kind <= Rook; kind++ {
		n := pocket[kind-1]
		if n == 0 {
			continue
		}
		if n > 1 {
			sb.WriteString(strconv.Itoa(n))
		}
		letter := string(pieceLetters[kind-1])
		if lower {
			letter = strings.ToLower(letter)
		}
		sb.WriteString(letter)
	}
	return sb.String()
}

// Parse decodes a canonical-notation position string into a fully validated
// Position, using zt for its Zobrist table.
func Parse(text string, zt *ZobristTable) (*Position, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) != 4 {
		return nil, parseErr(text, "expected 4 space-separated sections, got %d", len(parts))
	}

	board, err := parseBoard(text, parts[0])
	if err != nil {
		return nil, err
	}

	var side int
	switch parts[1] {
	case "b":
		side = 1
	case "w":
		side = -1
	default:
		return nil, parseErr(text, "invalid side to move %q", parts[1])
	}

	blackPocket, whitePocket, err := parseHand(text, parts[2])
	if err != nil {
		return nil, err
	}

	moveNo, err := strconv.Atoi(parts[3])
	if err != nil || moveNo < 0 {
		return nil, parseErr(text, "invalid move number %q", parts[3])
	}

	return NewPosition(board, blackPocket, whitePocket, side, moveNo, zt)
}

func parseBoard(text, token string) ([NumCells]Piece, error) {
	var board [NumCells]Piece

	rows := strings.Split(token, "/")
	if len(rows) != 9 {
		return board, parseErr(text, "expected 9 rows, got %d", len(rows))
	}

	for r, row := range rows {
		col := 0
		pending := false
		for _, ch := range row {
			if ch == '+' {
				if pending {
					return board, parseErr(text, "double promotion prefix in row %q", row)
				}
				pending = true
				continue
			}
			if ch >= '1' && ch <= '9' {
				if pending {
					return board, parseErr(text, "promotion prefix before empty run in row %q", row)
				}
				col += int(ch - '0')
				if col > 9 {
					return board, parseErr(text, "row %q overflows 9 columns", row)
				}
				continue
			}
			piece := FromChar(ch)
			if piece == NoPiece {
				return board, parseErr(text, "invalid piece %q in row %q", ch, row)
			}
			if pending {
				kind := piece.Kind()
				if kind == King || kind == Gold {
					return board, parseErr(text, "promoted %v is not allowed", piece)
				}
				piece = Promote(piece)
				pending = false
			}
			if col >= 9 {
				return board, parseErr(text, "row %q overflows 9 columns", row)
			}
			board[Cell(r*boardDim+col)] = piece
			col++
		}
		if pending {
			return board, parseErr(text, "dangling promotion prefix in row %q", row)
		}
		if col != 9 {
			return board, parseErr(text, "row %q does not cover 9 columns", row)
		}
	}
	return board, nil
}

func parseHand(text, token string) ([8]int, [8]int, error) {
	var black, white [8]int
	if token == "-" {
		return black, white, nil
	}

	runes := []rune(token)
	i := 0
	for i < len(runes) {
		count := 1
		if runes[i] >= '1' && runes[i] <= '9' {
			start := i
			for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
				i++
			}
			n, err := strconv.Atoi(string(runes[start:i]))
			if err != nil {
				return black, white, parseErr(text, "invalid pocket count in %q", token)
			}
			count = n
			if i >= len(runes) {
				return black, white, parseErr(text, "dangling pocket count in %q", token)
			}
		}
		piece := FromChar(runes[i])
		if piece == NoPiece {
			return black, white, parseErr(text, "invalid pocket piece %q in %q", runes[i], token)
		}
		if piece.Kind() == King {
			return black, white, parseErr(text, "king cannot be held in hand")
		}
		if piece > 0 {
			black[piece.Kind()-1] += count
		} else {
			white[piece.Kind()-1] += count
		}
		i++
	}
	return black, white, nil
}
