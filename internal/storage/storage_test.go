package storage

import (
	"testing"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorage(t *testing.T) {
	t.Run("NewGameStats", func(t *testing.T) {
		stats := NewGameStats()
		if stats.GamesPlayed != 0 {
			t.Errorf("Expected 0 games played")
		}
		if stats.GetWinRate("Blue") != 0 || stats.AveragePlies() != 0 {
			t.Errorf("Expected 0 win rate and length")
		}
	})

	t.Run("WinRate", func(t *testing.T) {
		stats := &GameStats{
			GamesPlayed: 10,
			BlueWins:    5,
			RedWins:     3,
			Draws:       2,
		}
		if rate := stats.GetWinRate("Blue"); rate != 50 {
			t.Errorf("Expected 50%% blue win rate, got %.2f%%", rate)
		}
		if rate := stats.GetWinRate("Red"); rate != 30 {
			t.Errorf("Expected 30%% red win rate, got %.2f%%", rate)
		}
	})

	t.Run("RecordGame", func(t *testing.T) {
		s := openTest(t)

		games := []GameResult{
			{Winner: "Blue", TrainedWon: true, Loop: LoopSelfPlay, Plies: 40},
			{Winner: "Blue", TrainedWon: true, Loop: LoopSelfPlay, Plies: 60},
			{Winner: "Red", Loop: LoopGradient, Plies: 30},
			{Winner: "draw", Loop: LoopGradient, Plies: 400},
		}
		for _, g := range games {
			if err := s.RecordGame(g); err != nil {
				t.Fatalf("RecordGame: %v", err)
			}
		}

		stats, err := s.LoadStats()
		if err != nil {
			t.Fatalf("LoadStats: %v", err)
		}
		if stats.GamesPlayed != 4 || stats.BlueWins != 2 || stats.RedWins != 1 || stats.Draws != 1 {
			t.Errorf("wrong counts: %+v", stats)
		}
		if stats.LongestGame != 400 || stats.AveragePlies() != 132.5 {
			t.Errorf("wrong lengths: longest %d, average %v", stats.LongestGame, stats.AveragePlies())
		}
		if stats.WinsByLoop[LoopSelfPlay] != 2 || stats.LongestWinStreak != 2 || stats.CurrentStreak != 0 {
			t.Errorf("wrong streaks: %+v", stats)
		}
	})
}

func TestIterations(t *testing.T) {
	s := openTest(t)

	for i := 12; i >= 0; i-- {
		err := s.SaveIteration(Iteration{
			Loop:    LoopSelfPlay,
			Index:   i,
			Winner:  "Red",
			Weights: map[string]float64{"bias": float64(i)},
		})
		if err != nil {
			t.Fatalf("SaveIteration: %v", err)
		}
	}
	if err := s.SaveIteration(Iteration{Loop: LoopGradient, Index: 0}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Iterations(LoopSelfPlay)
	if err != nil {
		t.Fatalf("Iterations: %v", err)
	}
	if len(got) != 13 {
		t.Fatalf("got %d iterations, want 13", len(got))
	}
	for i, it := range got {
		if it.Index != i || it.Weights["bias"] != float64(i) {
			t.Errorf("entry %d: %+v", i, it)
		}
		if it.Recorded.IsZero() {
			t.Errorf("entry %d has no timestamp", i)
		}
	}

	other, err := s.Iterations(LoopGradient)
	if err != nil || len(other) != 1 {
		t.Errorf("gradient ledger: %d entries, err %v", len(other), err)
	}
}

func TestWeights(t *testing.T) {
	s := openTest(t)

	if _, found, err := s.LoadWeights("best"); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}

	want := map[string]float64{"bias": 0.1, "friendly_mobility": 0.2}
	if err := s.SaveWeights("best", want); err != nil {
		t.Fatal(err)
	}
	got, found, err := s.LoadWeights("best")
	if err != nil || !found {
		t.Fatalf("LoadWeights: found=%v err=%v", found, err)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}
