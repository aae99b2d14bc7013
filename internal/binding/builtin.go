package binding

import (
	"fmt"

	"github.com/san-kum/bemuq/internal/model"
)

// FieldBinding targets one numeric field on every object of class.
// Objects of the class that lack the field are not discovered.
func FieldBinding(pattern, class, field, description string) Binding[*model.Model] {
	return Binding[*model.Model]{
		Pattern:     pattern,
		Description: description,
		Discover: func(m *model.Model) ([]Instance, error) {
			var out []Instance
			for _, o := range m.Instances(class) {
				if v, ok := o.Field(field); ok {
					out = append(out, Instance{ID: o.Name, Value: v})
				}
			}
			return out, nil
		},
		Apply: func(m *model.Model, id string, value float64) error {
			return m.Set(class, id, field, value)
		},
	}
}

// ScaledFieldBinding is FieldBinding with a unit conversion: the catalog
// works in catalog units, the model stores field*factor.
func ScaledFieldBinding(pattern, class, field string, factor float64, description string) Binding[*model.Model] {
	if factor == 0 {
		panic(fmt.Sprintf("binding: %s: zero scale factor", pattern))
	}
	e := FieldBinding(pattern, class, field, description)
	discover := e.Discover
	apply := e.Apply
	e.Discover = func(m *model.Model) ([]Instance, error) {
		out, err := discover(m)
		for i := range out {
			out[i].Value /= factor
		}
		return out, err
	}
	e.Apply = func(m *model.Model, id string, value float64) error {
		return apply(m, id, value*factor)
	}
	return e
}

// DefaultRegistry returns the built-in building parameter kinds.
func DefaultRegistry() *Registry[*model.Model] {
	return NewRegistry[*model.Model]().MustRegister(
		FieldBinding("Material:Conductivity", model.ClassMaterial, "Conductivity", "material thermal conductivity [W/m-K]"),
		FieldBinding("Material:Density", model.ClassMaterial, "Density", "material density [kg/m3]"),
		FieldBinding("Material:SpecificHeat", model.ClassMaterial, "SpecificHeat", "material specific heat [J/kg-K]"),
		FieldBinding("Material:Thickness", model.ClassMaterial, "Thickness", "layer thickness [m]"),
		FieldBinding("Material:ThermalAbsorptance", model.ClassMaterial, "ThermalAbsorptance", "surface absorptance [-]"),

		FieldBinding("WindowMaterial:SimpleGlazingSystem:UFactor", model.ClassGlazing, "UFactor", "glazing U-factor [W/m2-K]"),
		FieldBinding("WindowMaterial:SimpleGlazingSystem:SHGC", model.ClassGlazing, "SolarHeatGainCoefficient", "glazing solar heat gain coefficient [-]"),

		FieldBinding("Lights:WattsPerArea", model.ClassLights, "WattsPerArea", "lighting power density [W/m2]"),
		FieldBinding("ElectricEquipment:WattsPerArea", model.ClassEquipment, "WattsPerArea", "plug load density [W/m2]"),
		FieldBinding("People:PeoplePerArea", model.ClassPeople, "PeoplePerArea", "occupant density [person/m2]"),
		FieldBinding("ZoneInfiltration:AirChangesPerHour", model.ClassInfiltration, "AirChangesPerHour", "infiltration rate [1/h]"),
		FieldBinding("Zone:CapacitanceMultiplier", model.ClassZone, "CapacitanceMultiplier", "zone air capacitance multiplier [-]"),

		FieldBinding("Thermostat:HeatingSetpoint", model.ClassThermostat, "HeatingSetpoint", "heating setpoint [C]"),
		FieldBinding("Thermostat:CoolingSetpoint", model.ClassThermostat, "CoolingSetpoint", "cooling setpoint [C]"),

		FieldBinding("Boiler:Efficiency", model.ClassBoiler, "NominalThermalEfficiency", "boiler thermal efficiency [-]"),
		FieldBinding("Coil:Cooling:DX:COP", model.ClassCoolingCoil, "RatedCOP", "DX coil rated COP [-]"),
		FieldBinding("Fan:Efficiency", model.ClassFan, "FanTotalEfficiency", "fan total efficiency [-]"),
		FieldBinding("Fan:PressureRise", model.ClassFan, "PressureRise", "fan pressure rise [Pa]"),
		ScaledFieldBinding("Fan:FlowRate:LitersPerSecond", model.ClassFan, "MaxFlowRate", 0.001, "fan design flow [L/s]"),

		FieldBinding("Site:Climate:MeanTemperature", model.ClassSite, "MeanTemperature", "mean outdoor temperature [C]"),
		FieldBinding("Site:Climate:DailyAmplitude", model.ClassSite, "DailyAmplitude", "daily outdoor temperature swing [K]"),
		FieldBinding("Site:Climate:SolarPeak", model.ClassSite, "SolarPeak", "peak solar irradiance [W/m2]"),
	)
}
