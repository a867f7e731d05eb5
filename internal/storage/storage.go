// Package storage keeps the training ledger and game statistics in an
// in-memory BadgerDB.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Storage keys
const (
	keyStats         = "stats"
	keyWeights       = "weights/"
	prefixIterations = "iter/"
)

// Loop names the training loop an iteration belongs to.
type Loop string

const (
	LoopSelfPlay Loop = "self-play"
	LoopGradient Loop = "gradient"
)

// Iteration is one ledger entry: a single game of a training loop and the
// weights it produced.
type Iteration struct {
	Loop     Loop               `json:"loop"`
	Index    int                `json:"index"`
	Winner   string             `json:"winner"` // "Blue", "Red" or "draw"
	Plies    int                `json:"plies"`
	Duration time.Duration      `json:"duration"`
	Weights  map[string]float64 `json:"weights"`
	Recorded time.Time          `json:"recorded"`
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed      int           `json:"games_played"`
	BlueWins         int           `json:"blue_wins"`
	RedWins          int           `json:"red_wins"`
	Draws            int           `json:"draws"`
	TotalPlies       int           `json:"total_plies"`
	LongestGame      int           `json:"longest_game"`
	TotalTime        time.Duration `json:"total_time"`
	WinsByLoop       map[Loop]int  `json:"wins_by_loop"` // games won by the trained side
	CurrentStreak    int           `json:"current_streak"`
	LongestWinStreak int           `json:"longest_win_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByLoop: make(map[Loop]int),
	}
}

// GameResult represents the result of a completed game
type GameResult struct {
	Winner     string // "Blue", "Red" or "draw"
	TrainedWon bool   // the side whose weights are being trained won
	Loop       Loop
	Plies      int
	Duration   time.Duration
}

// Storage wraps BadgerDB
type Storage struct {
	db *badger.DB
}

// Open creates an in-memory storage instance. Nothing is written to disk.
func Open() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "storage: open")
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "storage: encode %s", key)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes the value at key into v. It reports false when the key is
// absent and leaves v untouched.
func (s *Storage) get(key string, v any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})

	return found, errors.Wrapf(err, "storage: load %s", key)
}

func iterationKey(loop Loop, index int) string {
	return fmt.Sprintf("%s%s/%08d", prefixIterations, loop, index)
}

// SaveIteration appends it to the ledger, replacing any entry with the same
// loop and index.
func (s *Storage) SaveIteration(it Iteration) error {
	if it.Recorded.IsZero() {
		it.Recorded = time.Now()
	}
	return s.put(iterationKey(it.Loop, it.Index), it)
}

// Iterations returns the ledger of loop in index order.
func (s *Storage) Iterations(loop Loop) ([]Iteration, error) {
	var out []Iteration
	prefix := []byte(prefixIterations + string(loop) + "/")

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry Iteration
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			out = append(out, entry)
		}
		return nil
	})

	return out, errors.Wrapf(err, "storage: iterations %s", loop)
}

// SaveWeights stores a named weight table.
func (s *Storage) SaveWeights(name string, w map[string]float64) error {
	return s.put(keyWeights+name, w)
}

// LoadWeights loads a named weight table. It reports false when no table of
// that name was saved.
func (s *Storage) LoadWeights(name string) (map[string]float64, bool, error) {
	w := make(map[string]float64)
	found, err := s.get(keyWeights+name, &w)
	return w, found, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	_, err := s.get(keyStats, stats)
	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlies += result.Plies
	stats.TotalTime += result.Duration
	if result.Plies > stats.LongestGame {
		stats.LongestGame = result.Plies
	}

	switch result.Winner {
	case "Blue":
		stats.BlueWins++
	case "Red":
		stats.RedWins++
	default:
		stats.Draws++
	}

	if result.TrainedWon {
		stats.WinsByLoop[result.Loop]++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStreak {
			stats.LongestWinStreak = stats.CurrentStreak
		}
	} else {
		stats.CurrentStreak = 0
	}

	return s.SaveStats(stats)
}

// AveragePlies returns the mean game length.
func (s *GameStats) AveragePlies() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalPlies) / float64(s.GamesPlayed)
}

// GetWinRate returns the percentage (0-100) of games won by c, "Blue" or
// "Red".
func (s *GameStats) GetWinRate(c string) float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	wins := s.BlueWins
	if c == "Red" {
		wins = s.RedWins
	}
	return float64(wins) / float64(s.GamesPlayed) * 100
}
