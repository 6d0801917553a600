package position

// PackMove encodes a Move into a 26-bit payload (bits 0..25 of the returned
// value; bits above that are always zero) suitable for storing as is inside
// a transposition-table entry, where the values 0 and 1 are reserved for
// the None/Many sentinels.
//
// The encoding guarantees a real move never packs to exactly 0 or 1: the
// destination kind occupies bits 15..18 with values 1..8, so it alone is
// always non-zero.
func PackMove(m Move) uint32 {
	var v uint32
	if m.IsDrop() {
		v |= 1
	} else {
		v |= uint32(m.From) << 1
	}
	v |= uint32(m.To) << 8

	toKind := uint32(m.ToPiece.Kind())
	v |= toKind << 15
	if m.ToPiece > 0 {
		v |= 1 << 19
	}
	if m.ToPiece.IsPromoted() {
		v |= 1 << 20
	}

	if !m.IsDrop() {
		v |= uint32(m.FromPiece.Kind()) << 21
		if m.FromPiece.IsPromoted() {
			v |= 1 << 25
		}
	}
	return v
}

// UnpackMove reverses PackMove.
func UnpackMove(v uint32) Move {
	isDrop := v&1 != 0
	to := Cell((v >> 8) & 0x7f)
	toKind := Piece((v >> 15) & 0xf)
	toColor := Piece(1)
	if v&(1<<19) == 0 {
		toColor = -1
	}
	toPiece := toColor * toKind
	if v&(1<<20) != 0 {
		toPiece = Promote(toPiece)
	}

	if isDrop {
		return Move{From: NoCell, To: to, FromPiece: NoPiece, ToPiece: toPiece}
	}

	from := Cell((v >> 1) & 0x7f)
	fromKind := Piece((v >> 21) & 0xf)
	fromPiece := toColor * fromKind
	if v&(1<<25) != 0 {
		fromPiece = Promote(fromPiece)
	}
	return Move{From: from, To: to, FromPiece: fromPiece, ToPiece: toPiece}
}
