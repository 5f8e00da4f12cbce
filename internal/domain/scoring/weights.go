package scoring

import (
	"fmt"
	"math"
)

const equalWeight = 0.25

// Weights are the relative importance of the four score components.
type Weights struct {
	Similarity float64 `json:"similarity" cbor:"similarity"`
	Quality    float64 `json:"quality" cbor:"quality"`
	Engagement float64 `json:"engagement" cbor:"engagement"`
	Recency    float64 `json:"recency" cbor:"recency"`
}

// EqualWeights is the fallback used when a configuration cannot be normalized.
func EqualWeights() Weights {
	return Weights{Similarity: equalWeight, Quality: equalWeight, Engagement: equalWeight, Recency: equalWeight}
}

// Sum returns the total of the four weights.
func (w Weights) Sum() float64 {
	return w.Similarity + w.Quality + w.Engagement + w.Recency
}

// Normalize scales w so it sums to 1. Negative and NaN entries count as 0.
// When nothing positive remains, EqualWeights is returned together with
// ErrDegenerateWeights; the returned weights are usable either way.
func (w Weights) Normalize() (Weights, error) {
	c := Weights{
		Similarity: nonNegative(w.Similarity),
		Quality:    nonNegative(w.Quality),
		Engagement: nonNegative(w.Engagement),
		Recency:    nonNegative(w.Recency),
	}
	sum := c.Sum()
	if sum <= 0 || math.IsInf(sum, 0) {
		return EqualWeights(), fmt.Errorf("%w: %+v", ErrDegenerateWeights, w)
	}
	return Weights{
		Similarity: c.Similarity / sum,
		Quality:    c.Quality / sum,
		Engagement: c.Engagement / sum,
		Recency:    c.Recency / sum,
	}, nil
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// WeightOverrides is a partial weight configuration. Nil fields keep the base value.
type WeightOverrides struct {
	Similarity *float64 `json:"similarity,omitempty" cbor:"similarity,omitempty"`
	Quality    *float64 `json:"quality,omitempty" cbor:"quality,omitempty"`
	Engagement *float64 `json:"engagement,omitempty" cbor:"engagement,omitempty"`
	Recency    *float64 `json:"recency,omitempty" cbor:"recency,omitempty"`
}

// IsEmpty reports whether no field is overridden.
func (o *WeightOverrides) IsEmpty() bool {
	return o == nil || (o.Similarity == nil && o.Quality == nil && o.Engagement == nil && o.Recency == nil)
}

// Apply merges the overrides over base.
func (o *WeightOverrides) Apply(base Weights) Weights {
	if o == nil {
		return base
	}
	if o.Similarity != nil {
		base.Similarity = *o.Similarity
	}
	if o.Quality != nil {
		base.Quality = *o.Quality
	}
	if o.Engagement != nil {
		base.Engagement = *o.Engagement
	}
	if o.Recency != nil {
		base.Recency = *o.Recency
	}
	return base
}

// Overrides returns w as a complete override set.
func (w Weights) Overrides() *WeightOverrides {
	return &WeightOverrides{
		Similarity: &w.Similarity,
		Quality:    &w.Quality,
		Engagement: &w.Engagement,
		Recency:    &w.Recency,
	}
}

// OverridesFromMap builds overrides from a component-name map such as the one
// loaded from configuration. Unknown keys are ignored.
func OverridesFromMap(m map[string]float64) *WeightOverrides {
	if len(m) == 0 {
		return nil
	}
	o := &WeightOverrides{}
	for k, v := range m {
		switch k {
		case "similarity":
			o.Similarity = &v
		case "quality":
			o.Quality = &v
		case "engagement":
			o.Engagement = &v
		case "recency":
			o.Recency = &v
		}
	}
	if o.IsEmpty() {
		return nil
	}
	return o
}

// ResolveWeights picks the effective weights for a request. Overrides are
// merged over the balanced defaults and take priority over mode; otherwise the
// mode preset applies. The result is normalized. A non-nil error is the
// ErrDegenerateWeights warning.
func ResolveWeights(mode Mode, overrides *WeightOverrides) (Weights, error) {
	if !overrides.IsEmpty() {
		return overrides.Apply(ModeBalanced.Weights()).Normalize()
	}
	return mode.Weights().Normalize()
}
