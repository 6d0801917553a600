package search_test

import (
	"testing"

	"github.com/herohde/tsumeshogi/pkg/position"
	"github.com/herohde/tsumeshogi/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestHistory_UnseenMoveDefaultsToHalf(t *testing.T) {
	h := search.NewHistory()
	m := position.Move{From: position.NoCell, To: position.NewCell(5, 4), FromPiece: position.NoPiece, ToPiece: position.Gold}

	assert.InDelta(t, 0.25, h.Query(position.PackMove(m)), 1e-9)
}

func TestHistory_SuccessRaisesLocalScoreBeforeMerge(t *testing.T) {
	h := search.NewHistory()
	m := position.Move{From: position.NoCell, To: position.NewCell(5, 4), FromPiece: position.NoPiece, ToPiece: position.Gold}
	packed := position.PackMove(m)

	h.Success(packed)
	h.Success(packed)
	h.Fail(packed)

	// local rate = 2/3, global still unseen (0.5): 2/3 * 0.5.
	assert.InDelta(t, 2.0/3.0*0.5, h.Query(packed), 1e-9)
}

func TestHistory_MergeFoldsLocalIntoGlobalAndResetsLocal(t *testing.T) {
	h := search.NewHistory()
	m := position.Move{From: position.NoCell, To: position.NewCell(5, 4), FromPiece: position.NoPiece, ToPiece: position.Gold}
	packed := position.PackMove(m)

	h.Success(packed)
	h.Merge()

	// local is now empty again (0.5), global rate is 1.0: 0.5 * 1.0.
	assert.InDelta(t, 0.5, h.Query(packed), 1e-9)
}
