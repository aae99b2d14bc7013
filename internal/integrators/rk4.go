package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/bemuq/internal/dynamo"
)

// RK4 is the classical fourth-order Runge-Kutta step. It keeps scratch
// buffers between calls, so one RK4 must not be shared between goroutines.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.ensureScratch(len(x))
	half := 0.5 * dt

	copy(r.k1, dyn.Derive(x, u, t))

	floats.AddScaledTo(r.scratch, x, half, r.k1)
	copy(r.k2, dyn.Derive(r.scratch, u, t+half))

	floats.AddScaledTo(r.scratch, x, half, r.k2)
	copy(r.k3, dyn.Derive(r.scratch, u, t+half))

	floats.AddScaledTo(r.scratch, x, dt, r.k3)
	copy(r.k4, dyn.Derive(r.scratch, u, t+dt))

	// x + dt/6 (k1 + 2k2 + 2k3 + k4)
	result := x.Clone()
	floats.AddScaled(result, dt/6, r.k1)
	floats.AddScaled(result, dt/3, r.k2)
	floats.AddScaled(result, dt/3, r.k3)
	floats.AddScaled(result, dt/6, r.k4)
	return result
}
