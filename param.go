package tiler

import "fmt"

// Param is a node parameter in the in-memory Graph. It holds either a
// static value, a keyframed Channel, or a link to another parameter whose
// value it mirrors.
type Param struct {
	Name string

	value   any
	channel *Channel
	link    *Param
}

// newParam creates a static parameter.
func newParam(name string, value any) *Param {
	return &Param{Name: name, value: value}
}

// Eval returns the parameter's value at frame, following links and
// evaluating channels. Channel values are returned as float64.
func (p *Param) Eval(frame float32) any {
	for hops := 0; p != nil; hops++ {
		if hops > maxLinkHops {
			panic(fmt.Sprintf("tiler: parameter %q link chain exceeds %d hops", p.Name, maxLinkHops))
		}
		switch {
		case p.channel != nil:
			return float64(p.channel.Eval(frame))
		case p.link != nil:
			p = p.link
		default:
			return p.value
		}
	}
	return nil
}

// maxLinkHops bounds link chains so a cycle fails loudly instead of hanging.
const maxLinkHops = 64

// Animated reports whether the value is driven by a channel or a link.
func (p *Param) Animated() bool {
	return p.channel != nil || p.link != nil
}

// Linked reports whether the parameter mirrors another parameter.
func (p *Param) Linked() bool {
	return p.link != nil
}

// Channel returns the parameter's own animation channel, or nil.
func (p *Param) Channel() *Channel {
	return p.channel
}

// SetChannel animates the parameter with c, replacing any static value or
// link.
func (p *Param) SetChannel(c *Channel) {
	p.channel = c
	p.link = nil
}

// set assigns a static value. Fails if the parameter is animated.
func (p *Param) set(value any) error {
	if p.Animated() {
		return fmt.Errorf("%w: %q", ErrParamAnimated, p.Name)
	}
	p.value = value
	return nil
}

// bake replaces any animation or link with the value at frame.
func (p *Param) bake(frame float32) {
	if !p.Animated() {
		return
	}
	p.value = p.Eval(frame)
	p.channel = nil
	p.link = nil
}

// clone copies the parameter. With link set the copy mirrors p instead of
// holding its own value.
func (p *Param) clone(link bool) *Param {
	if link {
		return &Param{Name: p.Name, link: p}
	}
	return &Param{Name: p.Name, value: p.value, channel: p.channel, link: p.link}
}
