package search_test

import (
	"testing"

	"github.com/herohde/tsumeshogi/pkg/position"
	"github.com/herohde/tsumeshogi/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, sfen string) *position.Position {
	t.Helper()
	pos, err := position.Parse(sfen, position.NewZobristTable(0))
	require.NoError(t, err)
	return pos
}

// The white king is smothered in the corner by its own pawns and knight, and
// the only square from which a black knight can give check is empty: a
// single knight drop is forced mate.
func TestSolver_FindsSmotheredKnightDropMate(t *testing.T) {
	pos := mustParse(t, "kp7/pn7/9/9/9/9/9/9/8K b N 1")

	s := search.New(1 << 20)
	depth, pv, found := s.Search(pos, 5)

	require.True(t, found)
	assert.Equal(t, 1, depth)
	require.Len(t, pv, 1)
	assert.Equal(t, position.NewCell(8, 2), pv[0].To)
	assert.Equal(t, position.Knight, pv[0].ToPiece)
	assert.True(t, pv[0].IsDrop())
}

// Two bare kings far apart: no check-giving move exists at all, so no
// forced mate is found within the search horizon.
func TestSolver_NoForcedMate(t *testing.T) {
	pos := mustParse(t, "9/9/9/9/4k4/9/9/9/4K4 b - 1")

	s := search.New(1 << 20)
	_, _, found := s.Search(pos, 3)

	assert.False(t, found)
}

// White's king is smothered by its own lance and silver exactly as in the
// knight-drop mate above, but here the only piece in Black's hand is a
// pawn: dropping it adjacent to the king would otherwise be a zero-reply
// mate, so this only tests anything if uchifuzume is enforced. Black's one
// other try -- walking the gold adjacent to check -- always lets the king
// capture an undefended piece, so no legal mate exists at all once the
// pawn drop is correctly rejected.
func TestSolver_RejectsUchifuzumePawnDropMate(t *testing.T) {
	pos := mustParse(t, "7lk/7s1/8G/9/9/9/9/9/K8 b P 1")

	s := search.New(1 << 20)
	_, _, found := s.Search(pos, 3)

	assert.False(t, found)
}

func TestSolver_PanicsWhenDefenderToMove(t *testing.T) {
	pos := mustParse(t, "kp7/pn7/9/9/9/9/9/9/8K w N 1")
	s := search.New(1 << 20)

	assert.Panics(t, func() {
		s.Search(pos, 1)
	})
}
