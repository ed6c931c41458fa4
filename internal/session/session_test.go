package session

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/input"
)

type countingObserver struct {
	steps []int
	last  float64
}

func (c *countingObserver) OnStep(step int, t float64, bodies []dynamo.Body) {
	c.steps = append(c.steps, step)
	c.last = t
}

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := FromConfig(config.DefaultConfig(), 800, 600, nil)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFromConfig_RejectsInvalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FPS = 0
	if _, err := FromConfig(cfg, 800, 600, nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestTick_StepsAndProjects(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)
	obs := &countingObserver{}
	s.AddObserver(obs)

	initial := s.Frame()
	g.Expect(initial).To(HaveLen(2))
	g.Expect(initial[0].X).To(BeNumerically("~", 400, 1e-9))

	frame, err := s.Tick()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(frame).To(HaveLen(2))
	g.Expect(frame[1].Name).To(Equal("Moon"))
	g.Expect(frame[1].Diameter).To(BeNumerically(">=", config.DefaultMinRenderPx))

	s.Tick()
	g.Expect(obs.steps).To(Equal([]int{1, 2}))
	g.Expect(obs.last).To(BeNumerically("~", 2*s.Dt(), 1e-9))
	g.Expect(s.Steps()).To(Equal(2))
}

func TestLockOverridesDrag(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)
	g.Expect(s.SetLock("Moon")).To(Succeed())

	bus := s.Input()
	bus.Dispatch(input.Event{Kind: input.PointerDown})
	bus.Dispatch(input.Event{Kind: input.PointerMove, DX: 250, DY: -90})
	bus.Dispatch(input.Event{Kind: input.PointerUp})

	frame, err := s.Tick()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(frame[1].X).To(BeNumerically("~", 400, 1e-6))
	g.Expect(frame[1].Y).To(BeNumerically("~", 300, 1e-6))
}

func TestDragPansWhenUnlocked(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)

	bus := s.Input()
	bus.Dispatch(input.Event{Kind: input.PointerDown})
	bus.Dispatch(input.Event{Kind: input.PointerMove, DX: 25, DY: 10})
	g.Expect(s.Controller().State()).To(Equal(input.Dragging))
	bus.Dispatch(input.Event{Kind: input.PointerUp})

	frame := s.Reproject()
	g.Expect(frame[0].X).To(BeNumerically("~", 425, 1e-9))
	g.Expect(frame[0].Y).To(BeNumerically("~", 310, 1e-9))
}

func TestWheelZooms(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)
	s0 := s.Scale()

	s.Input().Dispatch(input.Event{Kind: input.Wheel, Delta: -1})
	g.Expect(s.Scale()).To(BeNumerically("~", s0*1.04, s0*1e-12))
	s.Input().Dispatch(input.Event{Kind: input.Wheel, Delta: 1})
	g.Expect(s.Scale()).To(BeNumerically("~", s0, s0*1e-12))
}

func TestSetLock(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)

	g.Expect(s.SetLock("Pluto")).To(MatchError(dynamo.ErrUnknownBody))
	g.Expect(s.SetLock("Earth")).To(Succeed())
	name, ok := s.Lock()
	g.Expect(ok).To(BeTrue())
	g.Expect(name).To(Equal("Earth"))

	g.Expect(s.SetLock("Pluto")).To(MatchError(dynamo.ErrUnknownBody))
	name, _ = s.Lock()
	g.Expect(name).To(Equal("Earth"), "failed lock keeps the previous target")

	g.Expect(s.SetLock("")).To(Succeed())
	_, ok = s.Lock()
	g.Expect(ok).To(BeFalse())
	g.Expect(s.Names()).To(Equal([]string{"Earth", "Moon"}))
}

func TestSetScale(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)
	s0 := s.Scale()

	g.Expect(s.SetScale(s0 * 3)).To(Succeed())
	g.Expect(s.Scale()).To(Equal(s0 * 3))

	g.Expect(s.SetScale(0)).To(MatchError(dynamo.ErrInvalidConfig))
	g.Expect(s.SetScale(-1)).To(MatchError(dynamo.ErrInvalidConfig))
	g.Expect(s.Scale()).To(Equal(s0 * 3))
}

func TestStart_StepDriver(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)

	g.Expect(s.Start(context.Background(), StepDriver{Steps: 100})).To(Succeed())
	g.Expect(s.Wait()).To(Succeed())
	g.Expect(s.Steps()).To(Equal(100))

	g.Expect(s.Start(context.Background(), StepDriver{Steps: 5})).To(Succeed())
	g.Expect(s.Wait()).To(Succeed())
	g.Expect(s.Steps()).To(Equal(105))
}

func TestStart_TwiceFails(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)

	g.Expect(s.Start(context.Background(), TickerDriver{Period: time.Hour})).To(Succeed())
	g.Expect(s.Start(context.Background(), StepDriver{Steps: 1})).To(MatchError(dynamo.ErrRunning))
	g.Expect(s.Stop()).To(Succeed())
	g.Expect(s.Steps()).To(BeZero())
}

func TestTickerDriverTicks(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)

	g.Expect(s.Start(context.Background(), TickerDriver{Period: time.Millisecond})).To(Succeed())
	g.Eventually(s.Steps).Should(BeNumerically(">=", 3))
	g.Expect(s.Stop()).To(Succeed())

	n := s.Steps()
	time.Sleep(10 * time.Millisecond)
	g.Expect(s.Steps()).To(Equal(n))
}

func TestStart_ContextCancel(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())

	g.Expect(s.Start(ctx, TickerDriver{Period: time.Hour})).To(Succeed())
	cancel()
	g.Expect(s.Wait()).To(Succeed())
}

func TestCloseDetachesListeners(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)

	s.Input().Dispatch(input.Event{Kind: input.PointerDown})
	g.Expect(s.Input().Len()).To(Equal(4))

	g.Expect(s.Start(context.Background(), TickerDriver{Period: time.Hour})).To(Succeed())
	g.Expect(s.Close()).To(Succeed())
	g.Expect(s.Input().Len()).To(BeZero())
	g.Expect(s.Start(context.Background(), StepDriver{Steps: 1})).To(MatchError(errClosed))
	g.Expect(s.Close()).To(Succeed())
}

func TestValidateStateStopsDriver(t *testing.T) {
	g := NewWithT(t)
	cfg := config.DefaultConfig()
	cfg.GravitationalConstant = 1e300
	cfg.ValidateState = true

	s, err := FromConfig(cfg, 800, 600, nil)
	g.Expect(err).NotTo(HaveOccurred())
	defer s.Close()

	g.Expect(s.Start(context.Background(), StepDriver{Steps: 50})).To(Succeed())
	err = s.Wait()
	g.Expect(err).To(MatchError(dynamo.ErrInvalidState))
	g.Expect(s.Steps()).To(BeNumerically("<", 50))
}

func TestProjectPointsMatchesFrame(t *testing.T) {
	g := NewWithT(t)
	s := newSession(t)

	bodies := s.Bodies()
	pts := s.ProjectPoints([]dynamo.Vec3{bodies[0].Position, bodies[1].Position})
	frame := s.Frame()

	g.Expect(pts).To(HaveLen(2))
	for i := range pts {
		g.Expect(pts[i].X).To(BeNumerically("~", frame[i].X, 1e-9))
		g.Expect(pts[i].Y).To(BeNumerically("~", frame[i].Y, 1e-9))
	}
}
