package model

// Class names understood by the reference simulator and the built-in bindings.
const (
	ClassSite         = "Site:Climate"
	ClassMaterial     = "Material"
	ClassGlazing      = "WindowMaterial:SimpleGlazingSystem"
	ClassZone         = "Zone"
	ClassSurface      = "BuildingSurface"
	ClassWindow       = "Window"
	ClassLights       = "Lights"
	ClassEquipment    = "ElectricEquipment"
	ClassPeople       = "People"
	ClassInfiltration = "ZoneInfiltration:DesignFlowRate"
	ClassThermostat   = "ThermostatSetpoint:DualSetpoint"
	ClassBoiler       = "Boiler:HotWater"
	ClassCoolingCoil  = "Coil:Cooling:DX:SingleSpeed"
	ClassFan          = "Fan:ConstantVolume"
)

// SmallOffice builds the built-in two-zone office.
// Surface constructions list their layers outside to inside as Layer1, Layer2, ...
func SmallOffice() *Model {
	m := New("small-office")

	add := func(class, name string, fields map[string]float64, refs map[string]string) {
		if err := m.Add(&Object{Class: class, Name: name, Fields: fields, Refs: refs}); err != nil {
			panic(err)
		}
	}

	add(ClassSite, "Site", map[string]float64{
		"MeanTemperature": 4.0,
		"DailyAmplitude":  5.0,
		"SolarPeak":       450.0,
	}, nil)

	add(ClassMaterial, "Brick", map[string]float64{
		"Conductivity": 0.72, "Density": 1920, "SpecificHeat": 790, "Thickness": 0.10, "ThermalAbsorptance": 0.9,
	}, nil)
	add(ClassMaterial, "Insulation", map[string]float64{
		"Conductivity": 0.04, "Density": 30, "SpecificHeat": 1400, "Thickness": 0.08, "ThermalAbsorptance": 0.9,
	}, nil)
	add(ClassMaterial, "Concrete", map[string]float64{
		"Conductivity": 1.4, "Density": 2240, "SpecificHeat": 900, "Thickness": 0.15, "ThermalAbsorptance": 0.7,
	}, nil)

	add(ClassGlazing, "DoubleLowE", map[string]float64{
		"UFactor": 1.8, "SolarHeatGainCoefficient": 0.4,
	}, nil)

	for _, z := range []struct {
		name        string
		area, vol   float64
		wall, glass float64
	}{
		{"Office", 120, 360, 110, 30},
		{"Meeting", 40, 120, 45, 10},
	} {
		add(ClassZone, z.name, map[string]float64{
			"FloorArea": z.area, "Volume": z.vol, "CapacitanceMultiplier": 1.0,
		}, nil)
		add(ClassSurface, z.name+" Wall", map[string]float64{"Area": z.wall},
			map[string]string{"Zone": z.name, "Layer1": "Brick", "Layer2": "Insulation"})
		add(ClassSurface, z.name+" Roof", map[string]float64{"Area": z.area},
			map[string]string{"Zone": z.name, "Layer1": "Concrete", "Layer2": "Insulation"})
		add(ClassWindow, z.name+" Window", map[string]float64{"Area": z.glass},
			map[string]string{"Zone": z.name, "Glazing": "DoubleLowE"})
		add(ClassLights, z.name+" Lights", map[string]float64{"WattsPerArea": 10},
			map[string]string{"Zone": z.name})
		add(ClassEquipment, z.name+" Equipment", map[string]float64{"WattsPerArea": 12},
			map[string]string{"Zone": z.name})
		add(ClassPeople, z.name+" People", map[string]float64{"PeoplePerArea": 0.05},
			map[string]string{"Zone": z.name})
		add(ClassInfiltration, z.name+" Infiltration", map[string]float64{"AirChangesPerHour": 0.5},
			map[string]string{"Zone": z.name})
		add(ClassThermostat, z.name+" Thermostat", map[string]float64{"HeatingSetpoint": 21, "CoolingSetpoint": 24},
			map[string]string{"Zone": z.name})
	}

	add(ClassBoiler, "Boiler", map[string]float64{"NominalThermalEfficiency": 0.85}, nil)
	add(ClassCoolingCoil, "DX Coil", map[string]float64{"RatedCOP": 3.2}, nil)
	add(ClassFan, "Supply Fan", map[string]float64{
		"FanTotalEfficiency": 0.6, "PressureRise": 500, "MaxFlowRate": 1.2,
	}, nil)

	return m
}
