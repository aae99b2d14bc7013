package binding

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bemuq/internal/catalog"
	"github.com/san-kum/bemuq/internal/model"
)

func row(n int, kind, ref string, d catalog.Distribution) catalog.ParameterSpec {
	return catalog.ParameterSpec{
		Row: n, Kind: kind, ObjectRef: ref, Enabled: true, Distribution: d,
		Min: catalog.Float(0.9), Max: catalog.Float(1.1),
	}
}

var (
	uniformAbs = catalog.Distribution{Family: catalog.Uniform, Variant: catalog.Absolute}
	uniformRel = catalog.Distribution{Family: catalog.Uniform, Variant: catalog.Relative}
)

func refs(params []Parameter) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.ObjectRef
	}
	return out
}

var _ = Describe("Discover", func() {
	var reg *Registry[*fakeModel]

	BeforeEach(func() {
		reg = NewRegistry[*fakeModel]().MustRegister(fakeBinding("K"), fakeBinding("Other"))
	})

	It("pairs rows with instances captured at discovery time", func() {
		m := newFakeModel("A", "B")
		params, err := reg.Discover(m, []catalog.ParameterSpec{
			row(2, "K", "", uniformAbs),
			row(3, "K", "", uniformAbs),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(refs(params)).To(Equal([]string{"A", "B"}))

		m.order = []string{"B", "A"}
		Expect(reg.ApplyRun(m, params, []float64{10, 20})).To(Succeed())
		Expect(m.values).To(Equal(map[string]float64{"A": 10, "B": 20}))
	})

	It("expands a lone empty-ref row to every instance", func() {
		params, err := reg.Discover(newFakeModel("A", "B", "C"), []catalog.ParameterSpec{
			row(2, "K", "", uniformAbs),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(refs(params)).To(Equal([]string{"A", "B", "C"}))
		for _, p := range params {
			Expect(p.Row).To(Equal(2))
			Expect(p.SourceRef).To(BeEmpty())
			Expect(p.Pattern).To(Equal("K"))
		}
	})

	It("keeps catalog order across kinds", func() {
		params, err := reg.Discover(newFakeModel("A", "B"), []catalog.ParameterSpec{
			row(2, "Other", "b", uniformAbs),
			row(3, "K", "A", uniformAbs),
			row(4, "Other", "a*", uniformAbs),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(refs(params)).To(Equal([]string{"B", "A", "A"}))
		Expect(params[0].Kind).To(Equal("Other"))
		Expect(params[1].Kind).To(Equal("K"))
	})

	It("matches wildcards in discovery order", func() {
		params, err := reg.Discover(newFakeModel("Zone2", "Zone1", "Core"), []catalog.ParameterSpec{
			row(2, "K", "zone?", uniformAbs),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(refs(params)).To(Equal([]string{"Zone2", "Zone1"}))
		Expect(params[0].SourceRef).To(Equal("zone?"))
	})

	It("rebinds stored instance ids that look like globs", func() {
		m := newFakeModel("Zone [1]", "Zone 1")
		params, err := reg.Discover(m, []catalog.ParameterSpec{row(2, "K", "zone*", uniformAbs)})
		Expect(err).NotTo(HaveOccurred())
		Expect(refs(params)).To(Equal([]string{"Zone [1]", "Zone 1"}))

		again, err := reg.Discover(m, Specs(params))
		Expect(err).NotTo(HaveOccurred())
		Expect(refs(again)).To(Equal([]string{"Zone [1]", "Zone 1"}))
	})

	It("carries the discovered value into relative rows", func() {
		specs := []catalog.ParameterSpec{
			row(2, "K", "B", uniformRel),
			row(3, "K", "A", uniformRel),
		}
		specs[1].BaseValue = catalog.Float(42)

		params, err := reg.Discover(newFakeModel("A", "B"), specs)
		Expect(err).NotTo(HaveOccurred())
		Expect(*params[0].BaseValue).To(Equal(2.0))
		Expect(*params[1].BaseValue).To(Equal(42.0))
	})

	It("leaves absolute rows without a base value", func() {
		params, err := reg.Discover(newFakeModel("A"), []catalog.ParameterSpec{row(2, "K", "A", uniformAbs)})
		Expect(err).NotTo(HaveOccurred())
		Expect(params[0].BaseValue).To(BeNil())
	})

	DescribeTable("fails before any mutation",
		func(specs []catalog.ParameterSpec, want error) {
			m := newFakeModel("A", "B")
			_, err := reg.Discover(m, specs)
			Expect(err).To(MatchError(want))
			Expect(catalog.IsCatalogError(err)).To(BeTrue())
			Expect(m.values).To(Equal(map[string]float64{"A": 1, "B": 2}))
		},
		Entry("unknown kind", []catalog.ParameterSpec{row(2, "Pump", "", uniformAbs)}, catalog.ErrUnknownKind),
		Entry("unknown name", []catalog.ParameterSpec{row(2, "K", "Z", uniformAbs)}, catalog.ErrUnresolvedInstance),
		Entry("empty wildcard", []catalog.ParameterSpec{row(2, "K", "X*", uniformAbs)}, catalog.ErrUnresolvedInstance),
		Entry("bad glob", []catalog.ParameterSpec{row(2, "K", "[", uniformAbs)}, catalog.ErrMalformed),
		Entry("more rows than instances", []catalog.ParameterSpec{
			row(2, "K", "", uniformAbs),
			row(3, "K", "", uniformAbs),
			row(4, "K", "", uniformAbs),
		}, catalog.ErrUnresolvedInstance),
		Entry("empty ref and a named row", []catalog.ParameterSpec{
			row(2, "K", "", uniformAbs),
			row(3, "K", "B", uniformAbs),
		}, catalog.ErrDuplicateBinding),
		Entry("glob and a named row", []catalog.ParameterSpec{
			row(2, "K", "*", uniformAbs),
			row(3, "K", "a", uniformAbs),
		}, catalog.ErrDuplicateBinding),
	)

	It("reports the catalog row of an unknown kind", func() {
		_, err := reg.Discover(newFakeModel("A"), []catalog.ParameterSpec{
			row(7, "Pump", "", uniformAbs),
			row(8, "Valve", "", uniformAbs),
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("row 7"))
		Expect(err.Error()).To(ContainSubstring("row 8"))
	})

	It("rejects a sample row of the wrong width", func() {
		params, err := reg.Discover(newFakeModel("A"), []catalog.ParameterSpec{row(2, "K", "A", uniformAbs)})
		Expect(err).NotTo(HaveOccurred())
		Expect(reg.ApplyRun(newFakeModel("A"), params, []float64{1, 2})).NotTo(Succeed())
	})
})

var _ = Describe("DefaultRegistry", func() {
	var (
		reg *Registry[*model.Model]
		m   *model.Model
	)

	BeforeEach(func() {
		reg = DefaultRegistry()
		m = model.SmallOffice()
	})

	It("discovers and mutates the reference office", func() {
		specs := []catalog.ParameterSpec{
			row(2, "Material:Conductivity", "Brick", uniformRel),
			row(3, "Lights:WattsPerArea", "", uniformAbs),
			row(4, "Thermostat:HeatingSetpoint", "", uniformAbs),
			row(5, "Thermostat:HeatingSetpoint", "", uniformAbs),
			row(6, "Boiler:Efficiency", "", uniformAbs),
		}
		params, err := reg.Discover(m, specs)
		Expect(err).NotTo(HaveOccurred())
		Expect(refs(params)).To(Equal([]string{
			"Brick", "Office Lights", "Meeting Lights", "Office Thermostat", "Meeting Thermostat", "Boiler",
		}))
		Expect(*params[0].BaseValue).To(Equal(0.72))

		run := m.Clone()
		Expect(reg.ApplyRun(run, params, []float64{0.8, 7, 8, 19, 20, 0.9})).To(Succeed())

		v, _ := run.Get(model.ClassMaterial, "Brick", "Conductivity")
		Expect(v).To(Equal(0.8))
		v, _ = run.Get(model.ClassLights, "Meeting Lights", "WattsPerArea")
		Expect(v).To(Equal(8.0))
		v, _ = run.Get(model.ClassThermostat, "Meeting Thermostat", "HeatingSetpoint")
		Expect(v).To(Equal(20.0))
		v, _ = run.Get(model.ClassBoiler, "Boiler", "NominalThermalEfficiency")
		Expect(v).To(Equal(0.9))

		v, _ = m.Get(model.ClassMaterial, "Brick", "Conductivity")
		Expect(v).To(Equal(0.72))
	})

	It("refuses to bind one lights object from two rows", func() {
		_, err := reg.Discover(m, []catalog.ParameterSpec{
			row(2, "Lights:WattsPerArea", "", uniformAbs),
			row(3, "Lights:WattsPerArea", "Meeting Lights", uniformAbs),
		})
		Expect(err).To(MatchError(catalog.ErrDuplicateBinding))
		Expect(err.Error()).To(ContainSubstring("row 3"))
		Expect(err.Error()).To(ContainSubstring("already bound by row 2"))
	})

	It("converts scaled fields both ways", func() {
		params, err := reg.Discover(m, []catalog.ParameterSpec{row(2, "Fan:FlowRate:LitersPerSecond", "", uniformRel)})
		Expect(err).NotTo(HaveOccurred())
		Expect(*params[0].BaseValue).To(BeNumerically("~", 1200, 1e-9))

		Expect(reg.ApplyRow(m, params[0], 1500)).To(Succeed())
		v, _ := m.Get(model.ClassFan, "Supply Fan", "MaxFlowRate")
		Expect(v).To(BeNumerically("~", 1.5, 1e-12))
	})

	It("resolves the glazing kinds without touching opaque materials", func() {
		e, err := reg.Resolve("WindowMaterial:SimpleGlazingSystem:UFactor")
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Pattern).To(Equal("WindowMaterial:SimpleGlazingSystem:UFactor"))
	})
})
