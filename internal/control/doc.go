// Package control provides the HVAC controllers of the reference simulation.
//
// Controllers implement the [dynamo.Controller] interface and return one
// heat input per zone in W:
//
//   - [IdealLoads]: delivers exactly the heating or cooling that drives each
//     zone towards its thermostat band
//   - [PIDThermostat]: one PID loop per zone, active outside the band
//   - [None]: free-floating building, no HVAC
package control
