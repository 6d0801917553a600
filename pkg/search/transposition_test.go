package search_test

import (
	"math/rand"
	"testing"

	"github.com/herohde/tsumeshogi/pkg/position"
	"github.com/herohde/tsumeshogi/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestTable_SizePowerOfTwo(t *testing.T) {
	// Buckets are 2 slots of 24 bytes: 0x1000/48 = 85 -> 64 buckets,
	// 0x1f00/48 = 165 -> 128 buckets.
	tt := search.NewTable(0x1000)
	assert.Equal(t, uint64(0xc00), tt.Size())

	tt2 := search.NewTable(0x1f00)
	assert.Equal(t, uint64(0x1800), tt2.Size())
}

func TestTable_ReadWrite(t *testing.T) {
	tt := search.NewTable(1 << 16)

	a := rand.Uint64()
	_, _, _, ok := tt.Read(a)
	assert.False(t, ok)

	m := position.Move{From: position.NewCell(7, 6), To: position.NewCell(7, 2), FromPiece: position.Rook, ToPiece: position.Rook}
	tt.Write(a, search.OneMove(m), 5, 42)

	best, depth, nodes, ok := tt.Read(a)
	assert.True(t, ok)
	assert.Equal(t, 5, depth)
	assert.Equal(t, uint32(42), nodes)
	got, isOne := best.Move()
	assert.True(t, isOne)
	assert.True(t, got.Equals(m))

	_, _, _, missing := tt.Read(a ^ 0xff0000)
	assert.False(t, missing)
}

func TestTable_DepthPreferredReplacement(t *testing.T) {
	tt := search.NewTable(1 << 16)
	a := uint64(12345)
	b := a + (1 << 62) // collides into the same bucket only if masked; fine either way for this check.

	m := position.Move{From: position.NewCell(7, 6), To: position.NewCell(7, 2), FromPiece: position.Rook, ToPiece: position.Rook}

	tt.Write(a, search.OneMove(m), 10, 1)
	tt.Write(b, search.ManyMove, 1, 1) // shallower, different hash: must not evict slot 0.

	best, depth, _, ok := tt.Read(a)
	assert.True(t, ok)
	assert.Equal(t, 10, depth)
	assert.True(t, best.Widen(m) == best || !best.IsNone())
}

func TestBestMove_Widen(t *testing.T) {
	m1 := position.Move{From: position.NewCell(7, 6), To: position.NewCell(7, 2), FromPiece: position.Rook, ToPiece: position.Rook}
	m2 := position.Move{From: position.NewCell(2, 6), To: position.NewCell(2, 2), FromPiece: position.Bishop, ToPiece: position.Bishop}

	b := search.NoneMove
	b = b.Widen(m1)
	assert.True(t, func() bool { mv, ok := b.Move(); return ok && mv.Equals(m1) }())

	same := b.Widen(m1)
	assert.Equal(t, b, same)

	b = b.Widen(m2)
	assert.True(t, b.IsMany())
	assert.Equal(t, search.ManyMove, b.Widen(m1))
}
