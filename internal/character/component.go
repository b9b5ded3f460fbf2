package character

import (
	"fmt"
	"strings"
)

// Duration classifies how a component expires.
type Duration uint8

const (
	// DurationRest persists until an explicit rest/cure clears it.
	DurationRest Duration = iota
	// DurationTurn decrements once per scheduler tick and expires at 0.
	DurationTurn
)

// DebuffScript evaluates a component's stat-delta script against a
// magnitude. It is an interface, not a concrete scripthost type, so
// this package never imports the script host — the ability pipeline
// wires a scripthost-backed implementation in at runtime.
type DebuffScript interface {
	Eval(magnitude uint32) (Stats, error)
}

// Descriptor is the immutable, registered shape of a component: what a
// resource file under components/ describes. Concrete attachments on a
// piece are represented by Component.
type Descriptor struct {
	Name      string
	Icon      string
	Visible   bool
	Duration  Duration
	OnDebuff  DebuffScript // nil for a plain tag component such as :conscious
}

// Component is one attached instance of a Descriptor on a piece:
// :conscious is attached with nil Static/Script and zero Magnitude, a
// pure tag; a debuff attaches with either a Static delta or a script
// plus an accumulating Magnitude.
type Component struct {
	Descriptor Descriptor
	Magnitude  uint32
	Static     *Stats // set for a fixed, magnitude-independent debuff

	cachedAt    uint32
	cached      Stats
	cacheFilled bool
}

// AddMagnitude increases a scripted debuff's magnitude, invalidating the
// cache. Calling it on a Static or tag component is a no-op: those have
// no magnitude axis to grow.
func (c *Component) AddMagnitude(amount uint32) {
	if c.Static != nil || c.Descriptor.OnDebuff == nil {
		return
	}
	c.Magnitude += amount
	c.cacheFilled = false
}

// OnDebuff returns the stat delta this component currently contributes,
// memoizing the script evaluation per magnitude value so repeated
// lookups in one tick don't re-run the script.
func (c *Component) OnDebuff() (Stats, error) {
	if c.Static != nil {
		return *c.Static, nil
	}
	if c.Descriptor.OnDebuff == nil {
		return Stats{}, nil
	}
	if c.cacheFilled && c.cachedAt == c.Magnitude {
		return c.cached, nil
	}
	stats, err := c.Descriptor.OnDebuff.Eval(c.Magnitude)
	if err != nil {
		return Stats{}, fmt.Errorf("component %q: %w", c.Descriptor.Name, err)
	}
	c.cached, c.cachedAt, c.cacheFilled = stats, c.Magnitude, true
	return stats, nil
}

// Tip renders a tooltip line naming the component and any nonzero stat
// penalty it currently applies, e.g. "Poisoned -5 Heart -3 Defense".
func (c *Component) Tip() string {
	var b strings.Builder
	b.WriteString(c.Descriptor.Name)
	stats, err := c.OnDebuff()
	if err != nil {
		return b.String()
	}
	writeIfPositive(&b, "Heart", stats.Heart)
	writeIfPositive(&b, "Soul", stats.Soul)
	writeIfPositive(&b, "Power", stats.Power)
	writeIfPositive(&b, "Defense", stats.Defense)
	writeIfPositive(&b, "Magic", stats.Magic)
	writeIfPositive(&b, "Resistance", stats.Resistance)
	return b.String()
}

func writeIfPositive(b *strings.Builder, name string, value uint32) {
	if value > 0 {
		fmt.Fprintf(b, " -%d %s", value, name)
	}
}

// Color returns the display color for this component's tip, red for
// any debuff-bearing component and transparent for a plain tag.
func (c *Component) Color() (r, g, b, a uint8) {
	if c.Static != nil || c.Descriptor.OnDebuff != nil {
		return 255, 0, 0, 255
	}
	return 0, 0, 0, 0
}

// Conscious is the well-known component key marking a piece as
// player-ownable and schedulable as a player turn.
const Conscious = ":conscious"
