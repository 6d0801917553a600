// tsumesolve finds the shortest forced mate in a Shogi position, reading one
// SFEN-style puzzle per line from stdin (or a single position given with
// -sfen) and printing its principal variation.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/herohde/tsumeshogi/pkg/position"
	"github.com/herohde/tsumeshogi/pkg/search"
	"github.com/seekerror/logw"
)

var (
	depth   = flag.Int("depth", 17, "Maximum search depth in plies (only odd depths up to it are searched)")
	hashMB  = flag.Uint("hash", 64, "Transposition table size in MB, split between the attacker and defender tables")
	workers = flag.Uint("workers", 0, "Number of puzzles to solve concurrently (0: one per CPU)")
	sfen    = flag.String("sfen", "", "Solve a single position instead of reading stdin")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	var lines []string
	if *sfen != "" {
		lines = []string{*sfen}
	} else {
		lines = readStdinLines(ctx)
	}

	n := *workers
	if n == 0 {
		n = uint(runtime.NumCPU())
	}

	jobs := make(chan job, len(lines))
	for i, line := range lines {
		jobs <- job{index: i, sfen: line}
	}
	close(jobs)

	results := make([]string, len(lines))

	var wg sync.WaitGroup
	for i := uint(0); i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker owns an independent Solver: transposition tables
			// and the history heuristic are never shared across goroutines.
			s := search.New(uint64(*hashMB) << 20)
			for j := range jobs {
				results[j.index] = solve(ctx, s, j.sfen)
			}
		}()
	}
	wg.Wait()

	for _, line := range results {
		fmt.Fprintln(os.Stdout, line)
	}
}

type job struct {
	index int
	sfen  string
}

func solve(ctx context.Context, s *search.Solver, sfen string) string {
	pos, err := position.Parse(sfen, position.NewZobristTable(0))
	if err != nil {
		return fmt.Sprintf("%s: invalid position: %v", sfen, err)
	}

	d, pv, found := s.Search(pos, int(*depth))
	s.ClearTables()

	if !found {
		if d > 0 {
			return fmt.Sprintf("%s: mate exists but not unique (depth %d)", sfen, d)
		}
		return fmt.Sprintf("%s: no mate found within %d plies", sfen, *depth)
	}

	moves := make([]string, len(pv))
	for i, m := range pv {
		moves[i] = m.String()
	}
	return fmt.Sprintf("%s: mate in %d: %s", sfen, d, strings.Join(moves, " "))
}

func readStdinLines(ctx context.Context) []string {
	var lines []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		logw.Exitf(ctx, "Error reading stdin: %v", err)
	}
	return lines
}
