package physics

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/bemuq/internal/dynamo"
	"github.com/san-kum/bemuq/internal/model"
)

var (
	// ErrIncompleteModel indicates an object or field the simulation needs is absent.
	ErrIncompleteModel = errors.New("physics: incomplete building model")

	// ErrNonPhysical indicates a field value the simulation cannot use, such as a
	// sampled negative conductivity.
	ErrNonPhysical = errors.New("physics: non-physical parameter value")
)

const (
	airDensity      = 1.2    // kg/m3
	airSpecificHeat = 1005.0 // J/kg-K
	insideFilm      = 0.13   // m2-K/W
	outsideFilm     = 0.04   // m2-K/W
	sensiblePerson  = 75.0   // W
)

type zone struct {
	name string

	floorArea float64
	airCap    float64 // J/K
	massCap   float64 // J/K

	envelope    float64 // opaque conductance, W/K
	direct      float64 // glazing and infiltration conductance, W/K
	solarWindow float64 // effective aperture, m2
	solarMass   float64 // effective absorbing area, m2

	lights    float64 // peak W
	equipment float64 // peak W
	people    float64 // peak W

	heatingSetpoint float64
	coolingSetpoint float64
}

// Plant holds the efficiencies that turn zone loads into delivered energy.
type Plant struct {
	BoilerEfficiency float64
	CoolingCOP       float64
	FanPower         float64 // W while the fan runs
}

// Building is the RC network extracted from a model. It implements dynamo.System.
type Building struct {
	Name    string
	Climate Climate
	Plant   Plant

	zones []zone
}

func fieldOf(o *model.Object, name string) (float64, error) {
	v, ok := o.Field(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s %q has no %s", ErrIncompleteModel, o.Class, o.Name, name)
	}
	return v, nil
}

func positive(o *model.Object, name string) (float64, error) {
	v, err := fieldOf(o, name)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: %s %q %s = %g", ErrNonPhysical, o.Class, o.Name, name, v)
	}
	return v, nil
}

func nonNegative(o *model.Object, name string) (float64, error) {
	v, err := fieldOf(o, name)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s %q %s = %g", ErrNonPhysical, o.Class, o.Name, name, v)
	}
	return v, nil
}

func fraction(o *model.Object, name string) (float64, error) {
	v, err := nonNegative(o, name)
	if err != nil {
		return 0, err
	}
	if v > 1 {
		return 0, fmt.Errorf("%w: %s %q %s = %g", ErrNonPhysical, o.Class, o.Name, name, v)
	}
	return v, nil
}

// layers returns the objects named by Layer1, Layer2, ... in numeric order.
func layers(m *model.Model, o *model.Object) ([]*model.Object, error) {
	type ref struct {
		n    int
		name string
	}
	var refs []ref
	for k, v := range o.Refs {
		if !strings.HasPrefix(strings.ToLower(k), "layer") {
			continue
		}
		n, err := strconv.Atoi(k[len("layer"):])
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q has bad layer ref %q", ErrIncompleteModel, o.Class, o.Name, k)
		}
		refs = append(refs, ref{n, v})
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: %s %q has no layers", ErrIncompleteModel, o.Class, o.Name)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].n < refs[j].n })

	out := make([]*model.Object, len(refs))
	for i, r := range refs {
		mat, ok := m.Object(model.ClassMaterial, r.name)
		if !ok {
			return nil, fmt.Errorf("%w: %s %q references unknown material %q", ErrIncompleteModel, o.Class, o.Name, r.name)
		}
		out[i] = mat
	}
	return out, nil
}

// NewBuilding extracts the RC network from m. Plant objects are optional and
// default to ideal equipment with no fan.
func NewBuilding(m *model.Model) (*Building, error) {
	b := &Building{Name: m.Name, Plant: Plant{BoilerEfficiency: 1, CoolingCOP: 1}}

	sites := m.Instances(model.ClassSite)
	if len(sites) == 0 {
		return nil, fmt.Errorf("%w: no %s object", ErrIncompleteModel, model.ClassSite)
	}
	var err error
	site := sites[0]
	if b.Climate.MeanTemperature, err = fieldOf(site, "MeanTemperature"); err != nil {
		return nil, err
	}
	if b.Climate.DailyAmplitude, err = nonNegative(site, "DailyAmplitude"); err != nil {
		return nil, err
	}
	if b.Climate.SolarPeak, err = nonNegative(site, "SolarPeak"); err != nil {
		return nil, err
	}

	index := make(map[string]int)
	for _, o := range m.Instances(model.ClassZone) {
		z := zone{name: o.Name, heatingSetpoint: 20, coolingSetpoint: 26}
		if z.floorArea, err = positive(o, "FloorArea"); err != nil {
			return nil, err
		}
		volume, err := positive(o, "Volume")
		if err != nil {
			return nil, err
		}
		mult := 1.0
		if _, ok := o.Field("CapacitanceMultiplier"); ok {
			if mult, err = positive(o, "CapacitanceMultiplier"); err != nil {
				return nil, err
			}
		}
		z.airCap = volume * airDensity * airSpecificHeat * mult
		index[strings.ToLower(o.Name)] = len(b.zones)
		b.zones = append(b.zones, z)
	}
	if len(b.zones) == 0 {
		return nil, fmt.Errorf("%w: no %s objects", ErrIncompleteModel, model.ClassZone)
	}

	zoneOf := func(o *model.Object) (*zone, error) {
		i, ok := index[strings.ToLower(o.Ref("Zone"))]
		if !ok {
			return nil, fmt.Errorf("%w: %s %q references unknown zone %q", ErrIncompleteModel, o.Class, o.Name, o.Ref("Zone"))
		}
		return &b.zones[i], nil
	}

	if err := b.addSurfaces(m, zoneOf); err != nil {
		return nil, err
	}
	if err := b.addWindows(m, zoneOf); err != nil {
		return nil, err
	}
	if err := b.addLoads(m, zoneOf); err != nil {
		return nil, err
	}
	if err := b.addPlant(m); err != nil {
		return nil, err
	}

	for _, z := range b.zones {
		if z.massCap <= 0 {
			return nil, fmt.Errorf("%w: zone %q has no envelope mass", ErrIncompleteModel, z.name)
		}
		if z.heatingSetpoint > z.coolingSetpoint {
			return nil, fmt.Errorf("%w: zone %q heating setpoint %g above cooling setpoint %g",
				ErrNonPhysical, z.name, z.heatingSetpoint, z.coolingSetpoint)
		}
	}
	return b, nil
}

func (b *Building) addSurfaces(m *model.Model, zoneOf func(*model.Object) (*zone, error)) error {
	for _, s := range m.Instances(model.ClassSurface) {
		z, err := zoneOf(s)
		if err != nil {
			return err
		}
		area, err := positive(s, "Area")
		if err != nil {
			return err
		}
		mats, err := layers(m, s)
		if err != nil {
			return err
		}

		resistance := insideFilm + outsideFilm
		heatCap := 0.0
		for _, mat := range mats {
			k, err := positive(mat, "Conductivity")
			if err != nil {
				return err
			}
			thick, err := positive(mat, "Thickness")
			if err != nil {
				return err
			}
			rho, err := positive(mat, "Density")
			if err != nil {
				return err
			}
			cp, err := positive(mat, "SpecificHeat")
			if err != nil {
				return err
			}
			resistance += thick / k
			heatCap += rho * cp * thick
		}
		absorptance, err := fraction(mats[0], "ThermalAbsorptance")
		if err != nil {
			return err
		}

		z.envelope += area / resistance
		z.massCap += area * heatCap
		z.solarMass += absorptance * area * outsideFilm / resistance
	}
	return nil
}

func (b *Building) addWindows(m *model.Model, zoneOf func(*model.Object) (*zone, error)) error {
	for _, w := range m.Instances(model.ClassWindow) {
		z, err := zoneOf(w)
		if err != nil {
			return err
		}
		area, err := positive(w, "Area")
		if err != nil {
			return err
		}
		glazing, ok := m.Object(model.ClassGlazing, w.Ref("Glazing"))
		if !ok {
			return fmt.Errorf("%w: %s %q references unknown glazing %q", ErrIncompleteModel, w.Class, w.Name, w.Ref("Glazing"))
		}
		u, err := positive(glazing, "UFactor")
		if err != nil {
			return err
		}
		shgc, err := fraction(glazing, "SolarHeatGainCoefficient")
		if err != nil {
			return err
		}
		z.direct += area * u
		z.solarWindow += area * shgc
	}
	return nil
}

func (b *Building) addLoads(m *model.Model, zoneOf func(*model.Object) (*zone, error)) error {
	perArea := []struct {
		class, field string
		add          func(z *zone, w float64)
	}{
		{model.ClassLights, "WattsPerArea", func(z *zone, w float64) { z.lights += w * z.floorArea }},
		{model.ClassEquipment, "WattsPerArea", func(z *zone, w float64) { z.equipment += w * z.floorArea }},
		{model.ClassPeople, "PeoplePerArea", func(z *zone, p float64) { z.people += p * z.floorArea * sensiblePerson }},
	}
	for _, load := range perArea {
		for _, o := range m.Instances(load.class) {
			z, err := zoneOf(o)
			if err != nil {
				return err
			}
			v, err := nonNegative(o, load.field)
			if err != nil {
				return err
			}
			load.add(z, v)
		}
	}

	for _, o := range m.Instances(model.ClassInfiltration) {
		z, err := zoneOf(o)
		if err != nil {
			return err
		}
		ach, err := nonNegative(o, "AirChangesPerHour")
		if err != nil {
			return err
		}
		volume := z.airCap / (airDensity * airSpecificHeat)
		z.direct += ach * volume / secondsPerHour * airDensity * airSpecificHeat
	}

	for _, o := range m.Instances(model.ClassThermostat) {
		z, err := zoneOf(o)
		if err != nil {
			return err
		}
		if z.heatingSetpoint, err = fieldOf(o, "HeatingSetpoint"); err != nil {
			return err
		}
		if z.coolingSetpoint, err = fieldOf(o, "CoolingSetpoint"); err != nil {
			return err
		}
	}
	return nil
}

func (b *Building) addPlant(m *model.Model) error {
	var err error
	if boilers := m.Instances(model.ClassBoiler); len(boilers) > 0 {
		if b.Plant.BoilerEfficiency, err = positive(boilers[0], "NominalThermalEfficiency"); err != nil {
			return err
		}
	}
	if coils := m.Instances(model.ClassCoolingCoil); len(coils) > 0 {
		if b.Plant.CoolingCOP, err = positive(coils[0], "RatedCOP"); err != nil {
			return err
		}
	}
	for _, f := range m.Instances(model.ClassFan) {
		eff, err := positive(f, "FanTotalEfficiency")
		if err != nil {
			return err
		}
		rise, err := nonNegative(f, "PressureRise")
		if err != nil {
			return err
		}
		flow, err := nonNegative(f, "MaxFlowRate")
		if err != nil {
			return err
		}
		b.Plant.FanPower += flow * rise / eff
	}
	return nil
}

func (b *Building) Zones() int { return len(b.zones) }

func (b *Building) ZoneName(z int) string { return b.zones[z].name }

func (b *Building) StateDim() int   { return 2 * len(b.zones) }
func (b *Building) ControlDim() int { return len(b.zones) }

// InitialState starts every node at its zone's heating setpoint.
func (b *Building) InitialState() dynamo.State {
	x := make(dynamo.State, b.StateDim())
	for i, z := range b.zones {
		x[2*i] = z.heatingSetpoint
		x[2*i+1] = z.heatingSetpoint
	}
	return x
}

func (b *Building) AirCapacitance(z int) float64 { return b.zones[z].airCap }

// AirConductance is the total conductance between zone z's air and its
// neighbouring nodes.
func (b *Building) AirConductance(z int) float64 {
	return 2*b.zones[z].envelope + b.zones[z].direct
}

func (b *Building) Setpoints(z int) (heating, cooling float64) {
	return b.zones[z].heatingSetpoint, b.zones[z].coolingSetpoint
}

// InternalGains is the heat released by people, lights and equipment in zone z.
func (b *Building) InternalGains(z int, t float64) float64 {
	zn := &b.zones[z]
	return zn.people*peopleSchedule.At(t) + zn.lights*lightsSchedule.At(t) + zn.equipment*equipmentSchedule.At(t)
}

// ElectricLoad is the lighting and equipment electricity of the whole building.
func (b *Building) ElectricLoad(t float64) (lights, equipment float64) {
	for i := range b.zones {
		lights += b.zones[i].lights * lightsSchedule.At(t)
		equipment += b.zones[i].equipment * equipmentSchedule.At(t)
	}
	return lights, equipment
}

// FanLoad is the fan electricity at time t.
func (b *Building) FanLoad(t float64) float64 {
	return b.Plant.FanPower * fanSchedule.At(t)
}

// PassiveAirGain is the net heat flow into zone z's air node excluding HVAC.
func (b *Building) PassiveAirGain(x dynamo.State, t float64, z int) float64 {
	zn := &b.zones[z]
	out := b.Climate.Outdoor(t)
	air, mass := x[2*z], x[2*z+1]
	return 2*zn.envelope*(mass-air) +
		zn.direct*(out-air) +
		zn.solarWindow*b.Climate.Solar(t) +
		b.InternalGains(z, t)
}

// Derive splits each opaque envelope conductance into two equal halves
// around the mass node.
func (b *Building) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	out := b.Climate.Outdoor(t)
	solar := b.Climate.Solar(t)

	for i := range b.zones {
		zn := &b.zones[i]
		air, mass := x[2*i], x[2*i+1]

		qMass := 2*zn.envelope*(out-mass) + 2*zn.envelope*(air-mass) + zn.solarMass*solar
		qAir := b.PassiveAirGain(x, t, i) + u[i]

		dx[2*i] = qAir / zn.airCap
		dx[2*i+1] = qMass / zn.massCap
	}
	return dx
}
