package model

// NeutralQualia is assigned to facts asserted without Qualia.
var NeutralQualia = Qualia{Arousal: 0.5, Valence: 0.5, Tension: 0.5, Depth: 0.5}

// Qualia is a felt-sense overlay with four axes in [0, 1].
type Qualia struct {
	Arousal float64
	Valence float64
	Tension float64
	Depth   float64
}

// Valid reports whether every axis lies in [0, 1].
func (q Qualia) Valid() bool {
	return unit(q.Arousal) && unit(q.Valence) && unit(q.Tension) && unit(q.Depth)
}

// Axes returns the four values in encoding order.
func (q Qualia) Axes() [4]float64 {
	return [4]float64{q.Arousal, q.Valence, q.Tension, q.Depth}
}
