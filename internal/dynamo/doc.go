// Package dynamo provides the time-stepping core of the reference building
// simulation.
//
// The package defines the interfaces a simulated system is built from:
//
//   - [State]: vector of node temperatures
//   - [System]: ODE right-hand side dX/dt = f(X, u, t)
//   - [Integrator]: numerical step
//   - [Controller]: computes the HVAC input for the current state
//   - [Metric]: accumulates a scalar meter over the run
//   - [Simulator]: orchestrates one run
//
// # Example
//
//	bldg, _ := physics.NewBuilding(m)
//	sim := dynamo.New(bldg, integrators.NewRK4(), control.NewIdealLoads(bldg, 900))
//	result, _ := sim.Run(ctx, bldg.InitialState(), cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Parallel runs each build their
// own Simulator.
package dynamo
