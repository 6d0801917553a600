package position_test

import (
	"testing"

	"github.com/herohde/tsumeshogi/pkg/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zt() *position.ZobristTable {
	return position.NewZobristTable(0)
}

func TestParse_RoundTrip(t *testing.T) {
	sfen := "kp7/pn7/9/9/9/9/9/9/8K b N 1"
	pos, err := position.Parse(sfen, zt())
	require.NoError(t, err)
	assert.Equal(t, sfen, pos.String())
	assert.Equal(t, 1, pos.Side())
}

func TestParse_RejectsTwoUnpromotedPawnsOnFile(t *testing.T) {
	// Two black pawns both on column 0 (file 9): illegal nifu.
	sfen := "k8/9/9/9/9/9/9/P8/PK7 b - 1"
	_, err := position.Parse(sfen, zt())
	require.Error(t, err)
	var perr *position.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestParse_RejectsStuckUnpromotedPawn(t *testing.T) {
	// A black pawn on the far rank (row 0) can never move again.
	sfen := "Pk7/9/9/9/9/9/9/9/8K b - 1"
	_, err := position.Parse(sfen, zt())
	require.Error(t, err)
}

func TestParse_RejectsWrongKingCount(t *testing.T) {
	sfen := "kk7/9/9/9/9/9/9/9/8K b - 1"
	_, err := position.Parse(sfen, zt())
	require.Error(t, err)
}

func TestParse_RejectsMalformedRow(t *testing.T) {
	sfen := "k7/9/9/9/9/9/9/9/8K b - 1" // first row covers only 8 columns.
	_, err := position.Parse(sfen, zt())
	require.Error(t, err)
}

func TestParse_RejectsIllegalPosition(t *testing.T) {
	// Black king already attacked by white rook, with white to move: illegal,
	// since the side not to move (black) must not be in check.
	sfen := "r7k/9/9/9/9/9/9/9/K8 w - 1"
	_, err := position.Parse(sfen, zt())
	require.Error(t, err)
}

func TestDoMove_UndoMove_RestoresHashAndBoard(t *testing.T) {
	pos, err := position.Parse("kp7/pn7/9/9/9/9/9/9/8K b N 1", zt())
	require.NoError(t, err)

	before := pos.String()
	beforeHash := pos.Hash()

	drop := position.Move{From: position.NoCell, To: position.NewCell(8, 2), FromPiece: position.NoPiece, ToPiece: position.Knight}
	u := pos.DoMove(drop)
	assert.NotEqual(t, beforeHash, pos.Hash())
	pos.Validate()

	pos.UndoMove(drop, u)
	assert.Equal(t, before, pos.String())
	assert.Equal(t, beforeHash, pos.Hash())
}

func TestComputeChecks_KnightDropDeliversUnblockableCheck(t *testing.T) {
	pos, err := position.Parse("kp7/pn7/9/9/9/9/9/9/8K b N 1", zt())
	require.NoError(t, err)

	drop := position.Move{From: position.NoCell, To: position.NewCell(8, 2), FromPiece: position.NoPiece, ToPiece: position.Knight}
	u := pos.DoMove(drop)
	defer pos.UndoMove(drop, u)

	checks := pos.ComputeChecks()
	assert.True(t, checks.InCheck())
	assert.False(t, checks.Double())
	assert.True(t, checks.BlockingCells.IsEmpty())
	assert.False(t, pos.HasLegalMove(checks))
}

func TestPieceString_PromotedAndColor(t *testing.T) {
	assert.Equal(t, "P", position.Pawn.String())
	assert.Equal(t, "p", (-position.Pawn).String())
	assert.Equal(t, "+P", position.Promote(position.Pawn).String())
	assert.Equal(t, "-", position.NoPiece.String())
}
