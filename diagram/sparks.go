package diagram

import (
	"math"

	"flowspark/surface"
)

// drawSparks redraws the connection's sparks for one tick and reports how
// many sparks were emitted and dropped.
//
// Phased sparks sit at (phase + elapsed*speed) mod 1 and hold no state
// between ticks. Emitter sparks accumulate rate*dt, emit floor(acc), emit
// one more with probability equal to the remainder, then advance by
// speed*dt and disappear at the end of the curve.
func (c *Connection) drawSparks(dt, elapsed float64) (emitted, dropped int) {
	if c.spec.Sparks <= 0 || c.spec.SparkSpeed <= 0 {
		return 0, 0
	}
	c.d.surf.Clear(c.sparkGroup)
	c.drawn = c.drawn[:0]

	if !c.spec.Emitter {
		for _, phase := range c.phases {
			t := math.Mod(phase+elapsed*c.spec.SparkSpeed, 1)
			if t < 0 {
				t++
			}
			c.drawSpark(t)
		}
		return 0, 0
	}

	rate := float64(c.spec.Sparks) * c.spec.SparkSpeed * c.spec.EmitMult
	c.acc += rate * dt
	n := math.Floor(c.acc)
	c.acc -= n
	spawn := int(n)
	if c.d.rng.Float64() < c.acc {
		spawn++
		c.acc = 0
	}

	for i := 0; i < spawn; i++ {
		if c.spec.MaxLive > 0 && len(c.live) >= c.spec.MaxLive {
			dropped = spawn - i
			break
		}
		c.live = append(c.live, 0)
		emitted++
	}
	c.emitted += emitted
	c.dropped += dropped

	next := c.live[:0]
	for _, t := range c.live {
		t += c.spec.SparkSpeed * dt
		if t < 1 {
			c.drawSpark(t)
			next = append(next, t)
		}
	}
	c.live = next
	return emitted, dropped
}

func (c *Connection) drawSpark(t float64) {
	p := c.curve.At(t)
	c.d.surf.Shape(c.sparkGroup, surface.KindCircle, surface.Attrs{
		surface.AttrCX:     p.X,
		surface.AttrCY:     p.Y,
		surface.AttrRadius: c.Radius(),
		surface.AttrFill:   c.SparkColor().CSS(),
	})
	c.drawn = append(c.drawn, t)
}
