package scoring

import (
	"fmt"
	"strings"
)

// Mode is a named ranking strategy. The zero value is ModeBalanced.
type Mode int

// Ranking modes.
const (
	ModeBalanced Mode = iota
	ModeSemantic
	ModeQuality
	ModePopular
	ModeTrending
	ModeDiscovery
	modeCount
)

var modeNames = [modeCount]string{
	ModeBalanced:  "balanced",
	ModeSemantic:  "semantic",
	ModeQuality:   "quality",
	ModePopular:   "popular",
	ModeTrending:  "trending",
	ModeDiscovery: "discovery",
}

// Presets sum to 1.
var modePresets = [modeCount]Weights{
	ModeBalanced:  {Similarity: 0.60, Quality: 0.20, Engagement: 0.15, Recency: 0.05},
	ModeSemantic:  {Similarity: 0.80, Quality: 0.10, Engagement: 0.10, Recency: 0.00},
	ModeQuality:   {Similarity: 0.30, Quality: 0.40, Engagement: 0.20, Recency: 0.10},
	ModePopular:   {Similarity: 0.30, Quality: 0.15, Engagement: 0.50, Recency: 0.05},
	ModeTrending:  {Similarity: 0.30, Quality: 0.10, Engagement: 0.20, Recency: 0.40},
	ModeDiscovery: {Similarity: 0.35, Quality: 0.35, Engagement: 0.10, Recency: 0.20},
}

// Modes lists every ranking mode in declaration order.
func Modes() []Mode {
	out := make([]Mode, 0, modeCount)
	for m := ModeBalanced; m < modeCount; m++ {
		out = append(out, m)
	}
	return out
}

// Valid reports whether m is a declared mode.
func (m Mode) Valid() bool {
	return m >= ModeBalanced && m < modeCount
}

// Weights returns the preset for m. Unknown modes get the balanced preset.
func (m Mode) Weights() Weights {
	if !m.Valid() {
		return modePresets[ModeBalanced]
	}
	return modePresets[m]
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode parses a mode name case-insensitively. An empty name is balanced.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return ModeBalanced, nil
	}
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return ModeBalanced, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
