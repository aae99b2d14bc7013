package binding

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bemuq/internal/catalog"
)

// fakeModel re-enumerates its instances in whatever order the test sets.
type fakeModel struct {
	order  []string
	values map[string]float64
}

func newFakeModel(ids ...string) *fakeModel {
	m := &fakeModel{values: make(map[string]float64)}
	for i, id := range ids {
		m.order = append(m.order, id)
		m.values[id] = float64(i + 1)
	}
	return m
}

func fakeBinding(pattern string) Binding[*fakeModel] {
	return Binding[*fakeModel]{
		Pattern: pattern,
		Discover: func(m *fakeModel) ([]Instance, error) {
			out := make([]Instance, 0, len(m.order))
			for _, id := range m.order {
				out = append(out, Instance{ID: id, Value: m.values[id]})
			}
			return out, nil
		},
		Apply: func(m *fakeModel, id string, v float64) error {
			if _, ok := m.values[id]; !ok {
				return fmt.Errorf("no instance %q", id)
			}
			m.values[id] = v
			return nil
		},
	}
}

var _ = Describe("Registry", func() {
	var reg *Registry[*fakeModel]

	BeforeEach(func() {
		reg = NewRegistry[*fakeModel]().MustRegister(
			fakeBinding("Fan:Eff"),
			fakeBinding("Fan:Efficiency"),
			fakeBinding("Coil:A"),
			fakeBinding("Coil:B"),
		)
	})

	It("rejects duplicate and incomplete entries", func() {
		Expect(reg.Register(fakeBinding("fan:eff"))).To(MatchError(ErrDuplicatePattern))
		Expect(reg.Register(Binding[*fakeModel]{Pattern: "X"})).NotTo(Succeed())
		Expect(reg.Register(fakeBinding("  "))).NotTo(Succeed())
		Expect(reg.Len()).To(Equal(4))
	})

	It("prefers the longest matching pattern", func() {
		e, err := reg.Resolve("Fan:Efficiency:Supply")
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Pattern).To(Equal("Fan:Efficiency"))

		e, err = reg.Resolve("fan:eff")
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Pattern).To(Equal("Fan:Eff"))
	})

	It("reports equal-length matches as ambiguous", func() {
		_, err := reg.Resolve("Coil:A/Coil:B")
		Expect(err).To(MatchError(catalog.ErrAmbiguousKind))
		Expect(catalog.IsCatalogError(err)).To(BeTrue())
	})

	It("reports unknown kinds", func() {
		_, err := reg.Resolve("Pump:Head")
		Expect(err).To(MatchError(catalog.ErrUnknownKind))
	})

	It("lists entries sorted by pattern", func() {
		var patterns []string
		for _, e := range reg.Bindings() {
			patterns = append(patterns, e.Pattern)
		}
		Expect(patterns).To(Equal([]string{"Coil:A", "Coil:B", "Fan:Eff", "Fan:Efficiency"}))
	})

	It("applies through the resolved entry", func() {
		m := newFakeModel("S1")
		Expect(reg.Apply(m, "Fan:Efficiency", "S1", 0.7)).To(Succeed())
		Expect(m.values["S1"]).To(Equal(0.7))
		Expect(reg.Apply(m, "Fan:Efficiency", "S2", 0.7)).NotTo(Succeed())
	})
})
