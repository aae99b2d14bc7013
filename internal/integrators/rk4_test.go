package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/bemuq/internal/dynamo"
)

// twoNode is two thermal capacitances coupled to each other and to a
// fixed 0 degree boundary through unit conductances.
type twoNode struct{}

func (twoNode) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{
		-x[0] + (x[1] - x[0]),
		(x[0] - x[1]),
	}
}

func (twoNode) StateDim() int   { return 2 }
func (twoNode) ControlDim() int { return 0 }

type decay struct{}

func (decay) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{-x[0]}
}

func (decay) StateDim() int   { return 1 }
func (decay) ControlDim() int { return 0 }

func run(integ dynamo.Integrator, dyn dynamo.System, x dynamo.State, dt float64, steps int) dynamo.State {
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
	}
	return x
}

func TestRK4Accuracy(t *testing.T) {
	x := run(NewRK4(), decay{}, dynamo.State{1.0}, 0.1, 10)

	expected := math.Exp(-1)
	if math.Abs(x[0]-expected) > 1e-6 {
		t.Errorf("rk4 error too large: got %.8f, expected %.8f", x[0], expected)
	}
}

func TestEulerFirstOrder(t *testing.T) {
	coarse := math.Abs(run(NewEuler(), decay{}, dynamo.State{1.0}, 0.1, 10)[0] - math.Exp(-1))
	fine := math.Abs(run(NewEuler(), decay{}, dynamo.State{1.0}, 0.05, 20)[0] - math.Exp(-1))

	ratio := coarse / fine
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("expected error to halve with the step, ratio %.3f", ratio)
	}
}

func TestRK4CoupledNodesDecay(t *testing.T) {
	x := run(NewRK4(), twoNode{}, dynamo.State{10, 20}, 0.05, 800)

	for i, v := range x {
		if math.Abs(v) > 1e-3 {
			t.Errorf("node %d did not relax to the boundary: %.6f", i, v)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "rk4", "euler"} {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}
	if _, err := ByName("rk45"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
