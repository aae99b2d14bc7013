package metrics

import (
	"github.com/san-kum/bemuq/internal/dynamo"
)

// Peak records the largest observed rate in kW.
type Peak struct {
	name string
	rate RateFunc
	max  float64
}

func NewPeak(name string, rate RateFunc) *Peak {
	return &Peak{name: name, rate: rate}
}

func (p *Peak) Name() string {
	return p.name
}

func (p *Peak) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if r := p.rate(x, u, t); r > p.max {
		p.max = r
	}
}

func (p *Peak) Value() float64 {
	return p.max / 1000
}

func (p *Peak) Reset() {
	p.max = 0
}
