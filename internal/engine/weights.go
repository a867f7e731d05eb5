package engine

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Feature identifies one term of the linear evaluation.
type Feature uint8

const (
	Bias Feature = iota
	FriendlySinglesValue
	FriendlyDoublesValue
	FriendlyMaterialScore
	EnemySinglesValue
	EnemyDoublesValue
	EnemyMaterialScore
	FriendlyMostAdvancedSingles
	FriendlyMostAdvancedDoubles
	EnemyMostAdvancedSingles
	EnemyMostAdvancedDoubles
	FriendlyAdvancementOfSingles
	FriendlyAdvancementOfDoubles
	EnemyAdvancementOfSingles
	EnemyAdvancementOfDoubles
	ControlOfCenter
	ControlOfEdges
	FriendlySingleInEdges
	FriendlyDoubleInEdges
	FriendlySingleInCenter
	FriendlyDoubleInCenter
	EnemySingleInEdges
	EnemyDoubleInEdges
	EnemySingleInCenter
	EnemyDoubleInCenter
	FriendlyDoubleInBackCorner
	FriendlyDoublesInLine
	FriendlySingleDoubleInLine
	FriendlySinglesInLine
	FriendlyPieceIsLast
	FriendlyDensity
	FriendlyMobility
	EnemyDensity
	EnemyMobility
	FriendlySingleUnderAttack
	FriendlyDoubleUnderAttack

	NumFeatures
)

var featureNames = [NumFeatures]string{
	Bias:                         "bias",
	FriendlySinglesValue:         "friendly_singles_value",
	FriendlyDoublesValue:         "friendly_doubles_value",
	FriendlyMaterialScore:        "friendly_material_score",
	EnemySinglesValue:            "enemy_singles_value",
	EnemyDoublesValue:            "enemy_doubles_value",
	EnemyMaterialScore:           "enemy_material_score",
	FriendlyMostAdvancedSingles:  "friendly_most_advanced_singles",
	FriendlyMostAdvancedDoubles:  "friendly_most_advanced_doubles",
	EnemyMostAdvancedSingles:     "enemy_most_advanced_singles",
	EnemyMostAdvancedDoubles:     "enemy_most_advanced_doubles",
	FriendlyAdvancementOfSingles: "friendly_advancement_of_singles",
	FriendlyAdvancementOfDoubles: "friendly_advancement_of_doubles",
	EnemyAdvancementOfSingles:    "enemy_advancement_of_singles",
	EnemyAdvancementOfDoubles:    "enemy_advancement_of_doubles",
	ControlOfCenter:              "control_of_center",
	ControlOfEdges:               "control_of_edges",
	FriendlySingleInEdges:        "friendly_single_in_edges",
	FriendlyDoubleInEdges:        "friendly_double_in_edges",
	FriendlySingleInCenter:       "friendly_single_in_center",
	FriendlyDoubleInCenter:       "friendly_double_in_center",
	EnemySingleInEdges:           "enemy_single_in_edges",
	EnemyDoubleInEdges:           "enemy_double_in_edges",
	EnemySingleInCenter:          "enemy_single_in_center",
	EnemyDoubleInCenter:          "enemy_double_in_center",
	FriendlyDoubleInBackCorner:   "friendly_double_in_back_corner",
	FriendlyDoublesInLine:        "friendly_doubles_in_line",
	FriendlySingleDoubleInLine:   "friendly_single_double_in_line",
	FriendlySinglesInLine:        "friendly_singles_in_line",
	FriendlyPieceIsLast:          "friendly_piece_is_last",
	FriendlyDensity:              "friendly_density",
	FriendlyMobility:             "friendly_mobility",
	EnemyDensity:                 "enemy_density",
	EnemyMobility:                "enemy_mobility",
	FriendlySingleUnderAttack:    "friendly_single_under_attack",
	FriendlyDoubleUnderAttack:    "friendly_double_under_attack",
}

// String returns the feature name used in weight tables.
func (f Feature) String() string {
	if f < NumFeatures {
		return featureNames[f]
	}
	return fmt.Sprintf("feature(%d)", uint8(f))
}

// FeatureByName looks a feature up by its table name.
func FeatureByName(name string) (Feature, bool) {
	for f := Feature(0); f < NumFeatures; f++ {
		if featureNames[f] == name {
			return f, true
		}
	}
	return 0, false
}

// Weights is a weight vector over all features. It is a value type: copies
// are independent, and only code holding a pointer can change it.
type Weights [NumFeatures]float64

// rawDefaultWeights is the hand-tuned table before normalisation.
var rawDefaultWeights = Weights{
	Bias:                         1,
	FriendlySinglesValue:         0.7341041163830963,
	FriendlyDoublesValue:         2.274233660960818,
	FriendlyMaterialScore:        1.5026103652388332,
	EnemySinglesValue:            -0.7291608705251027,
	EnemyDoublesValue:            -2.265430977891856,
	EnemyMaterialScore:           -1.5074077330290985,
	FriendlyMostAdvancedSingles:  0.748247621491522,
	FriendlyMostAdvancedDoubles:  1.515407356131302,
	EnemyMostAdvancedSingles:     -1.510285668824605,
	EnemyMostAdvancedDoubles:     -1.50961031645031,
	FriendlyAdvancementOfSingles: 3.7785644200333097,
	FriendlyAdvancementOfDoubles: 3.728760057392521,
	EnemyAdvancementOfSingles:    -1.4892627538963819,
	EnemyAdvancementOfDoubles:    -1.5077596634911712,
	ControlOfCenter:              1.488164124061923,
	ControlOfEdges:               1.4856870496218675,
	FriendlySingleInEdges:        2.2544290664740716,
	FriendlyDoubleInEdges:        0.7380353065066093,
	FriendlySingleInCenter:       1.504606566797584,
	FriendlyDoubleInCenter:       1.506622449400612,
	EnemySingleInEdges:           -2.2586791963463746,
	EnemyDoubleInEdges:           -0.7524670320911624,
	EnemySingleInCenter:          -1.49559265658973,
	EnemyDoubleInCenter:          -0.7445612570569379,
	FriendlyDoubleInBackCorner:   -0.7563267575338303,
	FriendlyDoublesInLine:        2.9624074414727244,
	FriendlySingleDoubleInLine:   3.7508566377756627,
	FriendlySinglesInLine:        0.7524614046343802,
	FriendlyPieceIsLast:          14.910873615920098,
	FriendlyDensity:              2.2578436465288503,
	FriendlyMobility:             0.7504994504492232,
	EnemyDensity:                 -0.7497067955526692,
	EnemyMobility:                -2.2321338830066946,
	FriendlySingleUnderAttack:    -2.9762775175952796,
	FriendlyDoubleUnderAttack:    -2.9890296486546855,
}

// DefaultWeights returns the hand-tuned weights, normalised to sum to 1.
func DefaultWeights() Weights {
	w := rawDefaultWeights
	w.Normalize()
	return w
}

// RawDefaultSum returns the sum of the hand-tuned table before
// normalisation. Perturbation bounds are expressed in those units.
func RawDefaultSum() float64 {
	return rawDefaultWeights.Sum()
}

// Slice returns the weights as a slice backed by w.
func (w *Weights) Slice() []float64 {
	return w[:]
}

// Get returns the weight of f.
func (w Weights) Get(f Feature) float64 {
	return w[f]
}

// Set sets the weight of f.
func (w *Weights) Set(f Feature, v float64) {
	w[f] = v
}

// Clone returns an independent copy of w.
func (w *Weights) Clone() *Weights {
	c := *w
	return &c
}

// Sum returns the sum of all weights.
func (w Weights) Sum() float64 {
	return floats.Sum(w[:])
}

// Normalize scales the weights to sum to 1. A zero or non-finite sum leaves
// them unchanged.
func (w *Weights) Normalize() {
	total := w.Sum()
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return
	}
	floats.Scale(1/total, w[:])
}

// Blend moves w toward target by step: w += (target - w) * step.
func (w *Weights) Blend(target Weights, step float64) {
	var diff Weights
	floats.SubTo(diff[:], target[:], w[:])
	floats.AddScaled(w[:], step, diff[:])
}

// Add returns w + delta.
func (w Weights) Add(delta Weights) Weights {
	floats.Add(w[:], delta[:])
	return w
}

// Sub returns w - delta.
func (w Weights) Sub(delta Weights) Weights {
	floats.Sub(w[:], delta[:])
	return w
}

// Map returns the weights keyed by feature name.
func (w Weights) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for f := Feature(0); f < NumFeatures; f++ {
		m[featureNames[f]] = w[f]
	}
	return m
}

// WeightsFromMap builds a weight vector from named values. Unknown names are
// an error; missing names keep their default value.
func WeightsFromMap(m map[string]float64) (Weights, error) {
	w := DefaultWeights()
	for name, v := range m {
		f, ok := FeatureByName(name)
		if !ok {
			return w, errors.Errorf("unknown feature %q", name)
		}
		w[f] = v
	}
	return w, nil
}

// DeltaBound is the closed range a perturbation of one feature is drawn from,
// in units of the unnormalised default table.
type DeltaBound struct {
	Min, Max float64
}

// DeltaBounds gives the perturbation range per feature. The bias is never
// perturbed.
var DeltaBounds = [NumFeatures]DeltaBound{
	FriendlySinglesValue:         {0, 0.6},
	FriendlyDoublesValue:         {0, 1.8},
	FriendlyMaterialScore:        {0, 1.2},
	EnemySinglesValue:            {-0.6, 0},
	EnemyDoublesValue:            {-1.8, 0},
	EnemyMaterialScore:           {-1.2, 0},
	FriendlyMostAdvancedSingles:  {0, 0.6},
	FriendlyMostAdvancedDoubles:  {0, 1.2},
	EnemyMostAdvancedSingles:     {-1.2, 0},
	EnemyMostAdvancedDoubles:     {-1.2, 0},
	FriendlyAdvancementOfSingles: {0, 3},
	FriendlyAdvancementOfDoubles: {0, 3},
	EnemyAdvancementOfSingles:    {-1.2, 0},
	EnemyAdvancementOfDoubles:    {-1.2, 0},
	ControlOfCenter:              {0, 1.2},
	ControlOfEdges:               {0, 1.2},
	FriendlySingleInEdges:        {0, 1.8},
	FriendlyDoubleInEdges:        {0, 0.6},
	FriendlySingleInCenter:       {0, 1.2},
	FriendlyDoubleInCenter:       {0, 1.2},
	EnemySingleInEdges:           {-1.8, 0},
	EnemyDoubleInEdges:           {-0.6, 0},
	EnemySingleInCenter:          {-1.2, 0},
	EnemyDoubleInCenter:          {-0.6, 0},
	FriendlyDoubleInBackCorner:   {-0.6, 0},
	FriendlyDoublesInLine:        {0, 2.4},
	FriendlySingleDoubleInLine:   {0, 3},
	FriendlySinglesInLine:        {0, 0.6},
	FriendlyPieceIsLast:          {0, 12},
	FriendlyDensity:              {0, 1.8},
	FriendlyMobility:             {0, 0.6},
	EnemyDensity:                 {-0.6, 0},
	EnemyMobility:                {-1.8, 0},
	FriendlySingleUnderAttack:    {-2.4, 0},
	FriendlyDoubleUnderAttack:    {-2.4, 0},
}
