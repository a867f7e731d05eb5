// Package console implements the interactive text interface: moves are typed
// as FROM-TO, and the engine plays on request.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/jumpsturdy/internal/board"
	"github.com/hailam/jumpsturdy/internal/engine"
)

// Console reads commands from in and writes replies to out.
type Console struct {
	engine   *engine.Engine
	position *board.Position
	opts     engine.SearchOptions

	// Remaining clock per color, zero when untracked.
	clock [2]time.Duration

	in  io.Reader
	out io.Writer
}

// New creates a console playing from the standard start position.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *Console {
	return &Console{
		engine:   eng,
		position: board.NewPosition(),
		opts:     engine.DefaultSearchOptions,
		in:       in,
		out:      out,
	}
}

// Position returns the current position.
func (c *Console) Position() *board.Position {
	return c.position
}

// SetPosition replaces the current position.
func (c *Console) SetPosition(pos *board.Position) {
	c.engine.Clear()
	c.position = pos
}

// SetClock gives both sides remaining time for the budget table.
func (c *Console) SetClock(d time.Duration) {
	c.clock = [2]time.Duration{d, d}
}

// Run starts the command loop. It returns nil on "quit" or end of input and
// an error only when the position's invariants are broken.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		var err error
		switch cmd {
		case "quit", "exit":
			return nil
		case "new":
			c.handleNew()
		case "setup":
			c.handleSetup(args)
		case "back", "undo":
			c.handleBack()
		case "get":
			c.handleGet(args)
		case "go":
			err = c.handleGo(ctx, args)
		case "d":
			fmt.Fprintln(c.out, c.position.String())
		case "eval":
			c.handleEval()
		case "perft":
			c.handlePerft(args)
		case "setoption":
			c.handleSetOption(args)
		default:
			if strings.Contains(cmd, "-") {
				err = c.handleMove(cmd)
			} else {
				fmt.Fprintf(c.out, "Unknown command: %s\n", cmd)
			}
		}
		if err != nil {
			return err
		}
	}

	return errors.Wrap(scanner.Err(), "console: read")
}

// handleNew resets the engine for a new game.
func (c *Console) handleNew() {
	c.engine.Clear()
	c.position = board.NewPosition()
	fmt.Fprintln(c.out, "New game")
}

// handleSetup replaces the position by a setup string.
func (c *Console) handleSetup(args []string) {
	pos, err := board.ParseSetup(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(c.out, "Invalid setup: %v\n", err)
		return
	}
	c.SetPosition(pos)
	fmt.Fprintln(c.out, pos.Setup())
}

// handleBack takes the last move back.
func (c *Console) handleBack() {
	if err := c.position.Undo(); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, c.position.Setup())
}

// handleMove plays a move typed by the user for the side to move.
func (c *Console) handleMove(text string) error {
	side := c.position.SideToMove
	m, err := board.ParseMove(side, text)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil
	}
	return c.play(m)
}

// play applies m and reports the outcome. Rule violations leave the
// position unchanged.
func (c *Console) play(m board.Move) error {
	outcome := c.position.Apply(m)
	if err := outcome.Err(); err != nil && board.IsInvariant(err) {
		return errors.Wrapf(err, "console: %s", m)
	}
	fmt.Fprintf(c.out, "%s: %s\n", m, outcome)
	if !outcome.OK() {
		return nil
	}
	if err := c.position.Validate(); err != nil {
		return errors.Wrapf(err, "console: after %s", m)
	}

	if result := c.position.GameOver(); result != board.Ongoing {
		fmt.Fprintln(c.out, result)
	}
	return nil
}

// handleGet lists the legal moves of the side to move, grouped by category.
// Format: get [categories], where categories is "all" or a comma-separated
// list of category name prefixes.
func (c *Console) handleGet(args []string) {
	set, err := board.ParseCategories(strings.Join(args, ","))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	side := c.position.SideToMove
	cm := c.position.LegalMoves(side, set)
	total := 0
	for cat := board.Category(0); cat < board.NumCategories; cat++ {
		if !set.Has(cat) || cm.Targets[cat] == 0 {
			continue
		}
		var moves []string
		cm.Targets[cat].ForEach(func(to board.Square) {
			moves = append(moves, board.NewMove(side, cm.Origin(cat, to), to).String())
		})
		total += len(moves)
		fmt.Fprintf(c.out, "%s: %s\n", cat, strings.Join(moves, " "))
	}
	fmt.Fprintf(c.out, "%d moves for %s\n", total, side)
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	MoveTime time.Duration
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		}
	}

	return opts
}

// handleGo lets the engine move for the side to move. Without options the
// budget table decides depth and time.
func (c *Console) handleGo(ctx context.Context, args []string) error {
	opts := parseGoOptions(args)
	side := c.position.SideToMove
	turn := c.position.Ply()/2 + 1

	c.engine.OnInfo = func(info engine.SearchInfo) {
		c.sendInfo(info)
	}
	c.engine.SetOptions(c.opts)

	start := time.Now()
	var move board.Move
	if opts.Depth > 0 || opts.MoveTime > 0 {
		move, _ = c.engine.BestMove(ctx, c.position, side, engine.Limits{Depth: opts.Depth, MoveTime: opts.MoveTime})
	} else {
		move, _ = c.engine.Think(ctx, c.position, side, turn, c.clock[side])
	}
	if c.clock[side] > 0 {
		c.clock[side] = max(c.clock[side]-time.Since(start), time.Millisecond)
	}

	if move == board.NoMove {
		fmt.Fprintf(c.out, "bestmove 0000 (%s has no legal move)\n", side)
		return nil
	}
	fmt.Fprintf(c.out, "bestmove %s\n", move)
	return c.play(move)
}

// sendInfo outputs search progress.
func (c *Console) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	parts = append(parts, "score "+engine.ScoreToString(info.Score))
	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	// NPS
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	// Hash fullness
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}

	parts = append(parts, "move "+info.Move.String())
	fmt.Fprintf(c.out, "info %s\n", strings.Join(parts, " "))
}

// handleEval prints the evaluation for the side to move, largest
// contributions first.
func (c *Console) handleEval() {
	side := c.position.SideToMove
	ev := c.engine.Evaluate(c.position, side)

	features := make([]engine.Feature, 0, engine.NumFeatures)
	for f := engine.Feature(0); f < engine.NumFeatures; f++ {
		if ev.Contributions[f].Value != 0 {
			features = append(features, f)
		}
	}
	sort.SliceStable(features, func(i, j int) bool {
		return math.Abs(ev.Contributions[features[i]].Value) > math.Abs(ev.Contributions[features[j]].Value)
	})

	for _, f := range features {
		ct := ev.Contributions[f]
		fmt.Fprintf(c.out, "%-32s %10.4f x %10.4f = %10.4f\n", f, ct.Weight, ct.Raw, ct.Value)
	}
	fmt.Fprintf(c.out, "Total (%s): %.4f\n", side, ev.Total)
}

// handlePerft runs a perft test.
func (c *Console) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := c.engine.Perft(c.position.Copy(), c.position.SideToMove, depth)
	elapsed := time.Since(start)

	fmt.Fprintf(c.out, "Nodes: %d\n", nodes)
	fmt.Fprintf(c.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Fprintf(c.out, "NPS: %.0f\n", nps)
	}
}

// handleSetOption processes "setoption" commands.
func (c *Console) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	enabled := strings.ToLower(value) == "true"
	switch strings.ToLower(name) {
	case "cutoff":
		c.opts.Cutoff = enabled
	case "trace":
		c.opts.Trace = enabled
	case "clock":
		ms, err := strconv.Atoi(value)
		if err != nil {
			fmt.Fprintf(c.out, "Invalid clock: %s\n", value)
			return
		}
		c.SetClock(time.Duration(ms) * time.Millisecond)
	default:
		if f, ok := engine.FeatureByName(strings.ToLower(name)); ok {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				fmt.Fprintf(c.out, "Invalid weight: %s\n", value)
				return
			}
			w := c.engine.Weights()
			w.Set(f, v)
			w.Normalize()
			c.engine.SetWeights(w)
			return
		}
		fmt.Fprintf(c.out, "Unknown option: %s\n", name)
	}
}
