package viewport_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/viewport"
)

type bodyMap map[string]dynamo.Body

func (m bodyMap) Lookup(name string) (dynamo.Body, bool) {
	b, ok := m[name]
	return b, ok
}

var _ = Describe("Viewport", func() {
	var vp *viewport.Viewport

	BeforeEach(func() {
		var err error
		vp, err = viewport.New(viewport.Options{
			Scale:       1.6e-6,
			MinRenderPx: viewport.DefaultMinRenderPx,
			Width:       800,
			Height:      600,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		DescribeTable("rejects invalid options",
			func(opts viewport.Options) {
				_, err := viewport.New(opts)
				Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
			},
			Entry("zero scale", viewport.Options{Scale: 0}),
			Entry("negative scale", viewport.Options{Scale: -1}),
			Entry("infinite scale", viewport.Options{Scale: math.Inf(1)}),
			Entry("negative floor", viewport.Options{Scale: 1, MinRenderPx: -1}),
			Entry("NaN origin", viewport.Options{Scale: 1, Origin: dynamo.Vec3{X: math.NaN()}}),
		)
	})

	Describe("Project", func() {
		It("places the origin at the container center", func() {
			p := vp.Project(dynamo.Body{Name: "Earth", Radius: 6378100})
			Expect(p.Name).To(Equal("Earth"))
			Expect(p.X).To(BeNumerically("~", 400, 1e-9))
			Expect(p.Y).To(BeNumerically("~", 300, 1e-9))
			Expect(p.Diameter).To(BeNumerically("~", 6378100*2*1.6e-6, 1e-9))
		})

		It("applies scale then offset", func() {
			vp.Pan(10, -20)
			p := vp.Project(dynamo.Body{Name: "Moon", Position: dynamo.Vec3{X: -3.84e8, Y: 1e8}})
			Expect(p.X).To(BeNumerically("~", 400+10-3.84e8*1.6e-6, 1e-9))
			Expect(p.Y).To(BeNumerically("~", 300-20+1e8*1.6e-6, 1e-9))
		})

		It("measures from the configured origin", func() {
			o, err := viewport.New(viewport.Options{Scale: 2, Width: 100, Height: 100, Origin: dynamo.Vec3{X: 5, Y: 5}})
			Expect(err).NotTo(HaveOccurred())
			p := o.ProjectPoint(dynamo.Vec3{X: 5, Y: 5})
			Expect(p).To(Equal(viewport.Vec2{X: 50, Y: 50}))
		})

		It("never returns a diameter below the floor", func() {
			for _, r := range []float64{0, 1, 1737100, 6378100} {
				Expect(vp.Project(dynamo.Body{Radius: r}).Diameter).To(BeNumerically(">=", viewport.DefaultMinRenderPx))
			}
			for i := 0; i < 200; i++ {
				vp.Zoom(1)
			}
			Expect(vp.Project(dynamo.Body{Radius: 6.9634e8}).Diameter).To(BeNumerically(">=", viewport.DefaultMinRenderPx))
		})

		It("ignores z", func() {
			a := vp.ProjectPoint(dynamo.Vec3{X: 1e8})
			b := vp.ProjectPoint(dynamo.Vec3{X: 1e8, Z: 5e8})
			Expect(a).To(Equal(b))
		})
	})

	Describe("Zoom", func() {
		It("zooms out on positive delta and in on negative", func() {
			Expect(viewport.ZoomFactor(1)).To(BeNumerically("<", 1))
			Expect(viewport.ZoomFactor(1)).To(BeNumerically("~", 0.96, 0.002))
			Expect(viewport.ZoomFactor(-1)).To(BeNumerically("~", 1.04, 1e-12))
			Expect(viewport.ZoomFactor(0)).To(Equal(1.0))
		})

		It("is invertible", func() {
			s0 := vp.Scale()
			vp.Pan(30, 40)
			Expect(vp.Zoom(3)).To(BeTrue())
			Expect(vp.Scale()).NotTo(BeNumerically("~", s0, s0*1e-6))
			Expect(vp.Zoom(-3)).To(BeTrue())
			Expect(vp.Scale()).To(BeNumerically("~", s0, s0*1e-12))
			Expect(vp.Offset().X).To(BeNumerically("~", 30, 1e-9))
			Expect(vp.Offset().Y).To(BeNumerically("~", 40, 1e-9))
		})

		It("scales the offset with the scale", func() {
			vp.Pan(100, 0)
			vp.Zoom(-1)
			Expect(vp.Offset().X).To(BeNumerically("~", 104, 1e-9))
		})

		It("keeps the center anchored", func() {
			world := dynamo.Vec3{X: 1e8, Y: -2e8}
			vp.Pan(-world.X*vp.Scale(), -world.Y*vp.Scale())
			Expect(vp.ProjectPoint(world).X).To(BeNumerically("~", 400, 1e-6))
			vp.Zoom(5)
			Expect(vp.ProjectPoint(world).X).To(BeNumerically("~", 400, 1e-6))
			Expect(vp.ProjectPoint(world).Y).To(BeNumerically("~", 300, 1e-6))
		})

		It("rejects zooms that would break the scale", func() {
			s0 := vp.Scale()
			Expect(vp.Zoom(math.NaN())).To(BeFalse())
			Expect(vp.Zoom(0)).To(BeFalse())
			Expect(vp.Zoom(1e6)).To(BeFalse())
			Expect(vp.Zoom(-1e6)).To(BeFalse())
			Expect(vp.Scale()).To(Equal(s0))
		})
	})

	Describe("SetScale", func() {
		It("rejects non-positive values", func() {
			Expect(vp.SetScale(0)).To(MatchError(dynamo.ErrInvalidConfig))
			Expect(vp.SetScale(-2)).To(MatchError(dynamo.ErrInvalidConfig))
			Expect(vp.SetScale(3)).To(Succeed())
			Expect(vp.Scale()).To(Equal(3.0))
		})
	})

	Describe("Lock", func() {
		var bodies bodyMap

		BeforeEach(func() {
			bodies = bodyMap{
				"Earth": {Name: "Earth", Position: dynamo.Vec3{X: 1e8, Y: 5e7}},
			}
		})

		It("centers the locked body on tick", func() {
			vp.SetLock("Earth")
			Expect(vp.Tick(bodies)).To(BeTrue())
			p := vp.Project(bodies["Earth"])
			Expect(p.X).To(BeNumerically("~", 400, 1e-9))
			Expect(p.Y).To(BeNumerically("~", 300, 1e-9))
		})

		It("overrides pan", func() {
			vp.SetLock("Earth")
			vp.Tick(bodies)
			before := vp.Offset()
			Expect(vp.Pan(50, 50)).To(BeFalse())
			vp.Tick(bodies)
			Expect(vp.Offset()).To(Equal(before))
		})

		It("overrides a manual offset set before locking", func() {
			vp.Pan(123, 456)
			vp.SetLock("Earth")
			vp.Tick(bodies)
			Expect(vp.Offset().X).To(BeNumerically("~", -1e8*vp.Scale(), 1e-9))
		})

		It("clears a lock that does not resolve", func() {
			vp.SetLock("Phobos")
			Expect(vp.Tick(bodies)).To(BeFalse())
			_, locked := vp.Lock()
			Expect(locked).To(BeFalse())
			Expect(vp.Pan(1, 1)).To(BeTrue())
		})

		It("releases pan after clearing", func() {
			vp.SetLock("Earth")
			vp.Tick(bodies)
			vp.SetLock("")
			Expect(vp.Pan(5, 0)).To(BeTrue())
			Expect(vp.Tick(bodies)).To(BeFalse())
		})
	})

	Describe("Fit", func() {
		It("fits the limiting axis", func() {
			s := viewport.Fit(viewport.Vec2{X: -100, Y: -10}, viewport.Vec2{X: 100, Y: 10}, 220, 220, 10)
			Expect(s).To(BeNumerically("~", 1, 1e-12))
		})

		It("handles a degenerate rectangle", func() {
			Expect(viewport.Fit(viewport.Vec2{}, viewport.Vec2{}, 100, 100, 0)).To(Equal(1.0))
		})
	})
})
