package console

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/hailam/jumpsturdy/internal/board"
	"github.com/hailam/jumpsturdy/internal/engine"
)

func run(t *testing.T, script string) (*Console, string) {
	t.Helper()
	var out bytes.Buffer
	c := New(engine.NewEngine(1, engine.DefaultWeights()), strings.NewReader(script), &out)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return c, out.String()
}

func TestMoves(t *testing.T) {
	t.Run("legal move switches sides", func(t *testing.T) {
		c, out := run(t, "B7-B6\n")
		if !strings.Contains(out, "B7-B6: Good: Frontal move") {
			t.Errorf("output: %q", out)
		}
		if c.Position().SideToMove != board.Red || c.Position().Ply() != 1 {
			t.Errorf("side %s ply %d", c.Position().SideToMove, c.Position().Ply())
		}
	})

	t.Run("rule error keeps the position", func(t *testing.T) {
		c, out := run(t, "B7-B5\nZ9-A1\n")
		if !strings.Contains(out, "B7-B5: Error:") {
			t.Errorf("missing rejection in %q", out)
		}
		if !strings.Contains(out, "Error: invalid square") {
			t.Errorf("missing parse error in %q", out)
		}
		if c.Position().Setup() != board.StartSetup {
			t.Errorf("position changed to %s", c.Position().Setup())
		}
	})

	t.Run("back", func(t *testing.T) {
		c, out := run(t, "B7-B6\nback\nback\n")
		if c.Position().Setup() != board.StartSetup {
			t.Errorf("position %s after back", c.Position().Setup())
		}
		if !strings.Contains(out, "no move to undo") {
			t.Errorf("second back should fail: %q", out)
		}
	})

	t.Run("quit stops reading", func(t *testing.T) {
		c, _ := run(t, "quit\nB7-B6\n")
		if c.Position().Ply() != 0 {
			t.Error("command after quit was executed")
		}
	})
}

func TestSetupAndNew(t *testing.T) {
	const setup = "6/3r04/8/b07/8/6r01/2b05/6 r"

	c, out := run(t, "setup "+setup+"\n")
	if c.Position().Setup() != setup {
		t.Errorf("setup %s, want %s", c.Position().Setup(), setup)
	}
	if !strings.Contains(out, setup) {
		t.Errorf("setup not echoed: %q", out)
	}

	c, out = run(t, "setup 8/8\nnew\n")
	if !strings.Contains(out, "Invalid setup") {
		t.Errorf("bad setup accepted: %q", out)
	}
	if c.Position().Setup() != board.StartSetup {
		t.Errorf("new gave %s", c.Position().Setup())
	}
}

func TestGet(t *testing.T) {
	_, out := run(t, "setup 6/3r04/8/8/8/8/8/6 r\nget\n")
	for _, want := range []string{
		"singles_left_empty: D7-C7",
		"singles_front_empty: D7-D8",
		"singles_right_empty: D7-E7",
		"3 moves for Red",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}

	_, out = run(t, "setup 6/3r04/8/8/8/8/8/6 r\nget singles_front\n")
	if !strings.Contains(out, "1 moves for Red") || strings.Contains(out, "singles_left_empty") {
		t.Errorf("filtered listing: %q", out)
	}

	_, out = run(t, "get bogus\n")
	if !strings.Contains(out, "unknown move category") {
		t.Errorf("bad category accepted: %q", out)
	}
}

func TestGo(t *testing.T) {
	c, out := run(t, "setup 6/3r04/8/b07/8/6r01/2b05/6 r\ngo depth 2\n")
	for _, want := range []string{"info depth 1 score win", "bestmove D7-D8", "Red wins"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
	if c.Position().GameOver() != board.RedWins {
		t.Errorf("game not over: %s", c.Position().Setup())
	}

	_, out = run(t, "setup 6/8/8/8/8/3b04/2b0r0b03/6 r\ngo depth 1\n")
	if !strings.Contains(out, "bestmove 0000") {
		t.Errorf("no-move position: %q", out)
	}
}

func TestParseGoOptions(t *testing.T) {
	opts := parseGoOptions(strings.Fields("depth 4 movetime 250"))
	if opts.Depth != 4 || opts.MoveTime.Milliseconds() != 250 {
		t.Errorf("got %+v", opts)
	}
	if opts := parseGoOptions(nil); opts.Depth != 0 || opts.MoveTime != 0 {
		t.Errorf("empty args gave %+v", opts)
	}
}

func TestSetOption(t *testing.T) {
	c, out := run(t, "setoption name cutoff value false\nsetoption name friendly_mobility value 0.5\nsetoption name nope value 1\n")
	if c.opts.Cutoff {
		t.Error("cutoff still enabled")
	}
	f, ok := engine.FeatureByName("friendly_mobility")
	if !ok {
		t.Fatal("feature name not found")
	}
	// The table is renormalised around the new raw value.
	d := engine.DefaultWeights()
	w := c.engine.Weights()
	if want := 0.5 / (1 - d[f] + 0.5); math.Abs(w[f]-want) > 1e-12 {
		t.Errorf("weight %v, want %v", w[f], want)
	}
	if math.Abs(w.Sum()-1) > 1e-9 {
		t.Errorf("weights sum to %v", w.Sum())
	}
	if !strings.Contains(out, "Unknown option: nope") {
		t.Errorf("output: %q", out)
	}
}

func TestEvalAndPerft(t *testing.T) {
	_, out := run(t, "eval\nperft 1\n")
	if !strings.Contains(out, "Total (Blue):") {
		t.Errorf("eval output: %q", out)
	}
	if !strings.Contains(out, "Nodes: 34") {
		t.Errorf("perft output: %q", out)
	}
}
