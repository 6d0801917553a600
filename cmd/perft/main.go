// perft is a movegen debugging tool: it counts leaf nodes of the full legal
// move tree to a given depth, to cross-check move generation against known
// node counts. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/herohde/tsumeshogi/pkg/position"
	"github.com/seekerror/logw"
)

const initialSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

var (
	depth  = flag.Int("depth", 4, "Search depth")
	sfen   = flag.String("sfen", "", "Start position (default to the initial Shogi position)")
	divide = flag.Bool("divide", false, "Print per-move counts at the final depth")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	start := *sfen
	if start == "" {
		start = initialSFEN
	}

	pos, err := position.Parse(start, position.NewZobristTable(0))
	if err != nil {
		logw.Exitf(ctx, "invalid position %q: %v", start, err)
	}

	for i := 1; i <= *depth; i++ {
		begin := time.Now()
		nodes := perft(pos, i, *divide && i == *depth)
		duration := time.Since(begin)

		fmt.Printf("perft,%s,%d,%d,%d\n", start, i, nodes, duration.Microseconds())
	}
}

func perft(pos *position.Position, depth int, divide bool) int64 {
	if depth == 0 {
		return 1
	}

	checks := pos.ComputeChecks()
	candidates := append(pos.ComputeMoves(checks), pos.ComputeDrops(checks)...)

	var nodes int64
	for _, m := range candidates {
		u := pos.DoMove(m)
		if pos.IsLegal() {
			count := perft(pos, depth-1, false)
			if divide {
				fmt.Printf("%s: %d\n", m, count)
			}
			nodes += count
		}
		pos.UndoMove(m, u)
	}
	return nodes
}
