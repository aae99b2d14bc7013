package control

import "github.com/san-kum/bemuq/internal/dynamo"

// None leaves every zone free-floating.
type None struct {
	zones int
}

func NewNone(zones int) *None {
	return &None{zones: zones}
}

func (n *None) Compute(x dynamo.State, t float64) dynamo.Control {
	return make(dynamo.Control, n.zones)
}
