package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/jumpsturdy/internal/board"
	"github.com/hailam/jumpsturdy/internal/engine"
	"github.com/hailam/jumpsturdy/internal/storage"
	"github.com/hailam/jumpsturdy/internal/training"
)

var (
	mode       = flag.String("mode", "selfplay", "training loop: selfplay or gradient")
	iterations = flag.Int("n", 100, "games to play")
	parallel   = flag.Int("parallel", 1, "self-play games per batch")
	seed       = flag.Uint64("seed", 1, "random seed")
	player     = flag.String("player", "", "agent kind: search or random (default depends on mode)")
	depth      = flag.Int("depth", 0, "fixed search depth (0: budget table)")
	moveTimeMS = flag.Int("movetime", 0, "fixed time per move in ms (0: budget table)")
	clockMS    = flag.Int("clock", 12000, "per-game clock in ms for the budget table")
	maxPlies   = flag.Int("max-plies", training.DefaultMaxPlies, "plies before a game is a draw")
	step       = flag.Float64("step", 0.002, "self-play step toward the winner")
	rate       = flag.Float64("lr", 0.1, "gradient learning rate")
	discount   = flag.Float64("discount", 0.95, "gradient reward discount per ply")
	side       = flag.String("side", "blue", "gradient: side whose evaluations are trained")
	setup      = flag.String("setup", "", "start position as a setup string")
	prof       = flag.String("profile", "", "write a cpu or mem profile to the current directory")
	verbose    = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		log.Fatal().Str("profile", *prof).Msg("unknown profile kind")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := storage.Open()
	if err != nil {
		log.Fatal().Err(err).Msg("open-storage")
	}
	defer store.Close()

	var w engine.Weights
	switch *mode {
	case "selfplay":
		w, err = runSelfPlay(ctx, store)
	case "gradient":
		w, err = runGradient(ctx, store)
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}
	if err != nil {
		log.Error().Err(err).Msg("training stopped")
	}

	if err := store.SaveWeights(*mode, w.Map()); err != nil {
		log.Error().Err(err).Msg("save-weights")
	}
	printWeights(w)
	printStats(store)
}

func playerConfig(kind training.PlayerKind) training.PlayerConfig {
	if *player != "" {
		kind = training.PlayerKind(*player)
	}
	return training.PlayerConfig{
		Kind:     kind,
		TTSizeMB: 16,
		Limits: engine.Limits{
			Depth:    *depth,
			MoveTime: time.Duration(*moveTimeMS) * time.Millisecond,
		},
		Clock: time.Duration(*clockMS) * time.Millisecond,
	}
}

func runSelfPlay(ctx context.Context, store *storage.Storage) (engine.Weights, error) {
	cfg := training.DefaultTrainConfig()
	cfg.Iterations = *iterations
	cfg.Parallel = *parallel
	cfg.Seed = *seed
	cfg.Step = *step
	cfg.MaxPlies = *maxPlies
	cfg.Start = *setup
	cfg.Player = playerConfig(training.PlayerSearch)

	sp, err := training.NewSelfPlay(cfg, engine.DefaultWeights(), store)
	if err != nil {
		return engine.DefaultWeights(), err
	}
	return sp.Run(ctx)
}

func runGradient(ctx context.Context, store *storage.Storage) (engine.Weights, error) {
	cfg := training.DefaultGradientConfig()
	cfg.Games = *iterations
	cfg.Seed = *seed
	cfg.LearningRate = *rate
	cfg.Discount = *discount
	cfg.MaxPlies = *maxPlies
	cfg.Start = *setup
	cfg.Trained = playerConfig(training.PlayerRandom)
	cfg.Opponent = cfg.Trained
	switch *side {
	case "blue":
		cfg.Side = board.Blue
	case "red":
		cfg.Side = board.Red
	default:
		log.Fatal().Str("side", *side).Msg("unknown side")
	}

	gl, err := training.NewGradientLoop(cfg, engine.DefaultWeights(), store)
	if err != nil {
		return engine.DefaultWeights(), err
	}
	return gl.Run(ctx)
}

func printWeights(w engine.Weights) {
	m := w.Map()
	names := lo.Keys(m)
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-32s %.6f\n", name, m[name])
	}
}

func printStats(store *storage.Storage) {
	stats, err := store.LoadStats()
	if err != nil {
		log.Error().Err(err).Msg("load-stats")
		return
	}
	fmt.Printf("\nGames: %d  Blue: %d  Red: %d  Draws: %d  Avg plies: %.1f  Longest: %d\n",
		stats.GamesPlayed, stats.BlueWins, stats.RedWins, stats.Draws, stats.AveragePlies(), stats.LongestGame)
	fmt.Printf("Blue win rate: %.1f%%  Longest trained win streak: %d\n",
		stats.GetWinRate("Blue"), stats.LongestWinStreak)
}
