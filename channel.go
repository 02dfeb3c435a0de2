package tiler

import (
	"slices"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Keyframe is one key of an animation Channel.
type Keyframe struct {
	Frame float32
	Value float32
}

// Channel animates a numeric parameter between keyframes. Each pair of
// adjacent keys is a tween using the channel's easing function; before the
// first key and after the last the value holds.
type Channel struct {
	keys     []Keyframe
	segments []*gween.Tween
}

// NewChannel creates a channel from keys, which need not be sorted. A nil
// easing function means ease.Linear. Panics if keys is empty.
func NewChannel(fn ease.TweenFunc, keys ...Keyframe) *Channel {
	if len(keys) == 0 {
		panic("tiler: channel needs at least one keyframe")
	}
	if fn == nil {
		fn = ease.Linear
	}
	sorted := slices.Clone(keys)
	slices.SortStableFunc(sorted, func(a, b Keyframe) int {
		switch {
		case a.Frame < b.Frame:
			return -1
		case a.Frame > b.Frame:
			return 1
		}
		return 0
	})
	c := &Channel{keys: sorted, segments: make([]*gween.Tween, len(sorted)-1)}
	for i := range c.segments {
		a, b := sorted[i], sorted[i+1]
		c.segments[i] = gween.New(a.Value, b.Value, b.Frame-a.Frame, fn)
	}
	return c
}

// Eval returns the channel value at frame.
func (c *Channel) Eval(frame float32) float32 {
	first, last := c.keys[0], c.keys[len(c.keys)-1]
	if frame <= first.Frame {
		return first.Value
	}
	if frame >= last.Frame {
		return last.Value
	}
	for i, seg := range c.segments {
		a, b := c.keys[i], c.keys[i+1]
		if frame >= a.Frame && frame < b.Frame {
			v, _ := seg.Set(frame - a.Frame)
			return v
		}
	}
	return last.Value
}

// Keys returns the channel's keyframes in frame order. The returned slice
// MUST NOT be mutated.
func (c *Channel) Keys() []Keyframe {
	return c.keys
}
