package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/jumpsturdy/internal/board"
	"github.com/hailam/jumpsturdy/internal/console"
	"github.com/hailam/jumpsturdy/internal/engine"
	"github.com/hailam/jumpsturdy/internal/training"
)

var (
	hashMB  = flag.Int("hash", 64, "transposition table size in MB")
	clockMS = flag.Int("clock", 0, "remaining time per side in ms for the budget table (0: untracked)")
	auto    = flag.Bool("auto", false, "let the engine play both sides and exit")
	setup   = flag.String("setup", "", "start position as a setup string")
	verbose = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *auto {
		if err := playAuto(ctx); err != nil {
			log.Fatal().Err(err).Msg("auto-play")
		}
		return
	}

	eng := engine.NewEngine(*hashMB, engine.DefaultWeights())
	c := console.New(eng, os.Stdin, os.Stdout)
	if *clockMS > 0 {
		c.SetClock(time.Duration(*clockMS) * time.Millisecond)
	}
	if *setup != "" {
		pos, err := board.ParseSetup(*setup)
		if err != nil {
			log.Fatal().Err(err).Msg("setup")
		}
		c.SetPosition(pos)
	}

	if err := c.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("console")
	}
}

// playAuto plays one engine-vs-engine game with default weights and prints
// its moves.
func playAuto(ctx context.Context) error {
	start := board.NewPosition()
	if *setup != "" {
		var err error
		if start, err = board.ParseSetup(*setup); err != nil {
			return err
		}
	}

	player := training.PlayerConfig{
		Kind:     training.PlayerSearch,
		TTSizeMB: *hashMB,
		Clock:    time.Duration(*clockMS) * time.Millisecond,
	}
	agents := [2]training.Agent{
		board.Blue: player.NewAgent(engine.DefaultWeights(), 0),
		board.Red:  player.NewAgent(engine.DefaultWeights(), 1),
	}

	rec, err := training.PlayGame(ctx, agents, start, 0, func(pos *board.Position, ply int) {
		if ply > 0 {
			fmt.Printf("%3d. %s\n", ply, pos.Setup())
		}
	})
	if err != nil {
		return err
	}

	for i, m := range rec.Moves {
		fmt.Printf("%s ", m)
		if i%2 == 1 {
			fmt.Println()
		}
	}
	fmt.Printf("\nResult: %s after %d plies (%v)\n", rec.WinnerName(), rec.Plies(), rec.Duration.Round(time.Millisecond))
	return nil
}
