package board

import (
	"strings"

	"github.com/pkg/errors"
)

// Category classifies a legal move by piece type, direction and destination.
type Category uint8

const (
	SingleLeftEmpty Category = iota
	SingleFrontEmpty
	SingleRightEmpty
	SingleLeftMerge
	SingleFrontMerge
	SingleRightMerge
	SingleKillLeftSingle
	SingleKillLeftDouble
	SingleKillRightSingle
	SingleKillRightDouble

	DoubleLLFEmpty
	DoubleLLFMerge
	DoubleLLFKillSingle
	DoubleLLFKillDouble
	DoubleFFLEmpty
	DoubleFFLMerge
	DoubleFFLKillSingle
	DoubleFFLKillDouble
	DoubleFFREmpty
	DoubleFFRMerge
	DoubleFFRKillSingle
	DoubleFFRKillDouble
	DoubleRRFEmpty
	DoubleRRFMerge
	DoubleRRFKillSingle
	DoubleRRFKillDouble

	NumCategories
)

// destination kinds
const (
	toEmpty = iota
	toOwnSingle
	toEnemySingle
	toEnemyDouble
)

// categoryInfo describes a category as seen from Red: the step, the file
// change it encodes, whether doubles move and which squares it may land on.
type categoryInfo struct {
	name      string
	step      int
	fileDelta int
	double    bool
	target    int
}

var categories = [NumCategories]categoryInfo{
	SingleLeftEmpty:       {"singles_left_empty", -1, -1, false, toEmpty},
	SingleFrontEmpty:      {"singles_front_empty", 8, 0, false, toEmpty},
	SingleRightEmpty:      {"singles_right_empty", 1, 1, false, toEmpty},
	SingleLeftMerge:       {"singles_upgrade_left", -1, -1, false, toOwnSingle},
	SingleFrontMerge:      {"singles_upgrade_front", 8, 0, false, toOwnSingle},
	SingleRightMerge:      {"singles_upgrade_right", 1, 1, false, toOwnSingle},
	SingleKillLeftSingle:  {"singles_kill_left_single", 7, -1, false, toEnemySingle},
	SingleKillLeftDouble:  {"singles_kill_left_double", 7, -1, false, toEnemyDouble},
	SingleKillRightSingle: {"singles_kill_right_single", 9, 1, false, toEnemySingle},
	SingleKillRightDouble: {"singles_kill_right_double", 9, 1, false, toEnemyDouble},

	DoubleLLFEmpty:      {"doubles_l_l_f_empty", 6, -2, true, toEmpty},
	DoubleLLFMerge:      {"doubles_l_l_f_single", 6, -2, true, toOwnSingle},
	DoubleLLFKillSingle: {"doubles_kill_l_l_f_single", 6, -2, true, toEnemySingle},
	DoubleLLFKillDouble: {"doubles_kill_l_l_f_double", 6, -2, true, toEnemyDouble},
	DoubleFFLEmpty:      {"doubles_f_f_l_empty", 15, -1, true, toEmpty},
	DoubleFFLMerge:      {"doubles_f_f_l_single", 15, -1, true, toOwnSingle},
	DoubleFFLKillSingle: {"doubles_kill_f_f_l_single", 15, -1, true, toEnemySingle},
	DoubleFFLKillDouble: {"doubles_kill_f_f_l_double", 15, -1, true, toEnemyDouble},
	DoubleFFREmpty:      {"doubles_f_f_r_empty", 17, 1, true, toEmpty},
	DoubleFFRMerge:      {"doubles_f_f_r_single", 17, 1, true, toOwnSingle},
	DoubleFFRKillSingle: {"doubles_kill_f_f_r_single", 17, 1, true, toEnemySingle},
	DoubleFFRKillDouble: {"doubles_kill_f_f_r_double", 17, 1, true, toEnemyDouble},
	DoubleRRFEmpty:      {"doubles_r_r_f_empty", 10, 2, true, toEmpty},
	DoubleRRFMerge:      {"doubles_r_r_f_single", 10, 2, true, toOwnSingle},
	DoubleRRFKillSingle: {"doubles_kill_r_r_f_single", 10, 2, true, toEnemySingle},
	DoubleRRFKillDouble: {"doubles_kill_r_r_f_double", 10, 2, true, toEnemyDouble},
}

// String returns the category name.
func (c Category) String() string {
	if c < NumCategories {
		return categories[c].name
	}
	return "unknown"
}

// offset returns the absolute square step and file change for side.
func (c Category) offset(side Color) (step, fileDelta int) {
	info := categories[c]
	if side == Blue {
		return -info.step, -info.fileDelta
	}
	return info.step, info.fileDelta
}

// CategorySet is a bitset of categories.
type CategorySet uint32

const (
	AllCategories     CategorySet = 1<<NumCategories - 1
	SingleCategories  CategorySet = 1<<DoubleLLFEmpty - 1
	DoubleCategories              = AllCategories &^ SingleCategories
	CaptureCategories CategorySet = 1<<SingleKillLeftSingle | 1<<SingleKillLeftDouble |
		1<<SingleKillRightSingle | 1<<SingleKillRightDouble |
		1<<DoubleLLFKillSingle | 1<<DoubleLLFKillDouble |
		1<<DoubleFFLKillSingle | 1<<DoubleFFLKillDouble |
		1<<DoubleFFRKillSingle | 1<<DoubleFFRKillDouble |
		1<<DoubleRRFKillSingle | 1<<DoubleRRFKillDouble
)

// Of returns a set holding the given categories.
func Of(cats ...Category) CategorySet {
	var s CategorySet
	for _, c := range cats {
		s |= 1 << c
	}
	return s
}

// Has returns true if c is in the set.
func (s CategorySet) Has(c Category) bool {
	return c < NumCategories && s&(1<<c) != 0
}

// ParseCategories parses a comma-separated selection. Each item is "all" or
// a prefix of category names, e.g. "singles", "doubles_kill",
// "singles_upgrade_left".
func ParseCategories(text string) (CategorySet, error) {
	var set CategorySet
	for _, item := range strings.Split(strings.ToLower(text), ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if item == "all" {
			set |= AllCategories
			continue
		}
		matched := false
		for c := Category(0); c < NumCategories; c++ {
			if strings.HasPrefix(categories[c].name, item) {
				set |= 1 << c
				matched = true
			}
		}
		if !matched {
			return 0, errors.Errorf("unknown move category %q", item)
		}
	}
	if set == 0 {
		return AllCategories, nil
	}
	return set, nil
}

// CategoryMoves holds, for each category, the destination squares of one side.
type CategoryMoves struct {
	Side    Color
	Targets [NumCategories]Bitboard
}

// Count returns the number of moves over all categories.
func (cm *CategoryMoves) Count() int {
	n := 0
	for _, bb := range cm.Targets {
		n += bb.PopCount()
	}
	return n
}

// Origin returns the square a move of category c to sq starts from.
func (cm *CategoryMoves) Origin(c Category, to Square) Square {
	step, _ := c.offset(cm.Side)
	return Square(int(to) - step)
}

// Moves expands the destinations into moves, category by category.
func (cm *CategoryMoves) Moves() []Move {
	moves := make([]Move, 0, cm.Count())
	for c := Category(0); c < NumCategories; c++ {
		bb := cm.Targets[c]
		for bb != 0 {
			to := bb.PopLSB()
			moves = append(moves, NewMove(cm.Side, cm.Origin(c, to), to))
		}
	}
	return moves
}

// AppendTo adds the moves of the selected categories to ml.
func (cm *CategoryMoves) AppendTo(ml *MoveList, set CategorySet) {
	for c := Category(0); c < NumCategories; c++ {
		if !set.Has(c) {
			continue
		}
		bb := cm.Targets[c]
		for bb != 0 {
			to := bb.PopLSB()
			ml.Add(NewMove(cm.Side, cm.Origin(c, to), to))
		}
	}
}

// LegalMoves computes the destination squares of every selected category
// for side. Doubles move only when they carry a blocked marker.
func (p *Position) LegalMoves(side Color, set CategorySet) CategoryMoves {
	cm := CategoryMoves{Side: side}
	them := side.Other()

	empty := Playable &^ p.AllOccupied()
	targets := [...]Bitboard{
		toEmpty:       empty,
		toOwnSingle:   p.Singles[side],
		toEnemySingle: p.Singles[them],
		toEnemyDouble: p.Doubles[them],
	}
	singles := p.Singles[side]
	doubles := p.Doubles[side] & (p.Blocked[Blue] | p.Blocked[Red])

	for c := Category(0); c < NumCategories; c++ {
		if !set.Has(c) {
			continue
		}
		from := singles
		if categories[c].double {
			from = doubles
		}
		step, fd := c.offset(side)
		cm.Targets[c] = from.Shift(step, fd) & targets[categories[c].target] & Playable
	}
	return cm
}

// GenerateMoves generates all legal moves for side.
func (p *Position) GenerateMoves(side Color) *MoveList {
	ml := NewMoveList()
	cm := p.LegalMoves(side, AllCategories)
	cm.AppendTo(ml, AllCategories)
	return ml
}

// GenerateCaptures generates all moves for side that remove an enemy piece.
func (p *Position) GenerateCaptures(side Color) *MoveList {
	ml := NewMoveList()
	cm := p.LegalMoves(side, CaptureCategories)
	cm.AppendTo(ml, CaptureCategories)
	return ml
}

// HasLegalMoves returns true if side has at least one legal move.
func (p *Position) HasLegalMoves(side Color) bool {
	cm := p.LegalMoves(side, AllCategories)
	for _, bb := range cm.Targets {
		if bb != 0 {
			return true
		}
	}
	return false
}
