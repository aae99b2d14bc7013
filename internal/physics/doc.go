// Package physics is the reference building simulation: a lumped RC model
// built from a [model.Model] and run with the [dynamo] core.
//
// Every zone has two nodes, the zone air and the envelope mass, so the state
// vector is [air_0, mass_0, air_1, mass_1, ...] in degrees C and the control
// vector holds one HVAC input per zone in W (positive heats, negative cools).
//
//   - [Building]: the [dynamo.System] extracted from a model
//   - [Climate]: synthetic outdoor temperature and solar irradiance
//   - [Reference]: one full simulation run producing energy meters
//
// Reference runs are deterministic. Their inputs are the same model fields
// the binding registry mutates. The HVAC controller is chosen by
// Options.Control.
package physics
