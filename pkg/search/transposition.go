package search

import (
	"fmt"
	"math/bits"

	"github.com/herohde/tsumeshogi/pkg/position"
)

// BestMove is the tri-state result the transposition table remembers for a
// node: no refutation/mate has been found yet, a unique one has, or several
// equally-good ones have (so none may be singled out as "the" move).
type BestMove struct {
	packed uint32 // 0 = None, 1 = Many, otherwise a position.PackMove payload.
}

// NoneMove is the zero value: nothing found yet.
var NoneMove = BestMove{}

// ManyMove reports that multiple equally-good moves exist; no single one
// may be trusted as canonical.
var ManyMove = BestMove{packed: 1}

// OneMove wraps a single known-good move.
func OneMove(m position.Move) BestMove {
	return BestMove{packed: position.PackMove(m)}
}

func (b BestMove) IsNone() bool {
	return b.packed == 0
}

func (b BestMove) IsMany() bool {
	return b.packed == 1
}

// Move returns the wrapped move, if this is a One.
func (b BestMove) Move() (position.Move, bool) {
	if b.packed == 0 || b.packed == 1 {
		return position.Move{}, false
	}
	return position.UnpackMove(b.packed), true
}

func (b BestMove) String() string {
	switch {
	case b.IsNone():
		return "None"
	case b.IsMany():
		return "Many"
	default:
		m, _ := b.Move()
		return fmt.Sprintf("One(%v)", m)
	}
}

// Widen applies the monotonic None -> One -> Many transition rule: a first
// result becomes One; a second, different result collapses it to Many,
// which is terminal.
func (b BestMove) Widen(m position.Move) BestMove {
	switch {
	case b.IsNone():
		return OneMove(m)
	case b.IsMany():
		return b
	default:
		if cur, _ := b.Move(); cur.Equals(m) {
			return b
		}
		return ManyMove
	}
}

// entry is one transposition table slot.
type entry struct {
	hash  uint64
	best  BestMove
	depth int32
	nodes uint32
}

func (e entry) occupied() bool {
	return e.hash != 0 || e.best != NoneMove || e.depth != 0
}

// Table is a fixed-capacity, open-addressed transposition table with two
// slots per bucket: slot 0 is depth-preferred (only evicted by an entry at
// equal or greater depth, or a rewrite of the same position), slot 1 is
// always-replace and absorbs the high churn of shallow, repeatedly-visited
// nodes. The search core never runs concurrently, so unlike the
// teacher's atomic/CAS single-slot table this is plain mutable state behind
// no synchronization at all -- there is exactly one goroutine per Table.
type Table struct {
	buckets [][2]entry
	mask    uint64
	used    int
}

// NewTable builds a table sized to use no more than sizeBytes, rounded down
// to the nearest power-of-two bucket count.
func NewTable(sizeBytes uint64) *Table {
	const bucketBytes = uint64(2) * 24
	n := uint64(1)
	if sizeBytes >= bucketBytes {
		n = uint64(1) << uint(63-bits.LeadingZeros64(sizeBytes/bucketBytes))
	}
	return &Table{buckets: make([][2]entry, n), mask: n - 1}
}

// Size returns the table's footprint in bytes.
func (t *Table) Size() uint64 {
	return uint64(len(t.buckets)) * 2 * 24
}

// Used returns the fraction of slots occupied, in [0;1].
func (t *Table) Used() float64 {
	return float64(t.used) / float64(2*len(t.buckets))
}

// Read returns the stored best move, depth and node count for hash, if
// present.
func (t *Table) Read(hash uint64) (BestMove, int, uint32, bool) {
	b := &t.buckets[hash&t.mask]
	for _, e := range b {
		if e.occupied() && e.hash == hash {
			return e.best, int(e.depth), e.nodes, true
		}
	}
	return NoneMove, 0, 0, false
}

// Write stores an entry for hash. Slot 0 is kept if it already holds a
// deeper result for a different position; otherwise the fresh entry lands
// in slot 0, and whatever it displaced (if any) falls through to slot 1.
func (t *Table) Write(hash uint64, best BestMove, depth int, nodes uint32) {
	b := &t.buckets[hash&t.mask]
	fresh := entry{hash: hash, best: best, depth: int32(depth), nodes: nodes}

	slot0 := b[0]
	if slot0.occupied() && slot0.hash != hash && slot0.depth > fresh.depth {
		if !b[1].occupied() {
			t.used++
		}
		b[1] = fresh
		return
	}
	if !slot0.occupied() {
		t.used++
	} else if slot0.hash != hash {
		if !b[1].occupied() {
			t.used++
		}
		b[1] = slot0
	}
	b[0] = fresh
}

func (t *Table) String() string {
	return fmt.Sprintf("TT[%v entries @ %v%%]", len(t.buckets)*2, int(100*t.Used()))
}
