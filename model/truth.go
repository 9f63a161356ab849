package model

import "math"

// DefaultTruth is assigned to facts asserted without a TruthValue.
var DefaultTruth = TruthValue{Frequency: 1.0, Confidence: 0.9}

// TruthValue expresses degree (Frequency) and certainty (Confidence) of belief.
// Both components lie in [0, 1].
type TruthValue struct {
	Frequency  float64
	Confidence float64
}

// Valid reports whether both components lie in [0, 1].
func (tv TruthValue) Valid() bool {
	return unit(tv.Frequency) && unit(tv.Confidence)
}

// Revise combines two independent judgements of the same fact.
//
// Evidence weight is w = c/(1-c); the revised frequency is the weight-averaged
// frequency and the revised confidence is (w1+w2)/(w1+w2+1). A judgement with
// confidence 1 is treated as certain and dominates an uncertain one.
func Revise(a, b TruthValue) TruthValue {
	aCertain, bCertain := a.Confidence >= 1, b.Confidence >= 1
	switch {
	case aCertain && bCertain:
		return TruthValue{Frequency: (a.Frequency + b.Frequency) / 2, Confidence: 1}
	case aCertain:
		return a
	case bCertain:
		return b
	}

	wa := a.Confidence / (1 - a.Confidence)
	wb := b.Confidence / (1 - b.Confidence)
	w := wa + wb
	if w == 0 {
		return TruthValue{Frequency: (a.Frequency + b.Frequency) / 2, Confidence: 0}
	}
	return TruthValue{
		Frequency:  (wa*a.Frequency + wb*b.Frequency) / w,
		Confidence: w / (w + 1),
	}
}

// Expectation returns c*(f-0.5)+0.5, a single-number summary of belief.
func (tv TruthValue) Expectation() float64 {
	return tv.Confidence*(tv.Frequency-0.5) + 0.5
}

func unit(x float64) bool {
	return !math.IsNaN(x) && x >= 0 && x <= 1
}
