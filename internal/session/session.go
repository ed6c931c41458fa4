package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/input"
	"github.com/san-kum/orbsim/internal/physics"
	"github.com/san-kum/orbsim/internal/viewport"
)

var errClosed = errors.New("session: closed")

type Options struct {
	Dt            float64
	ValidateState bool
	Logger        *log.Logger
}

// Session owns the bodies, the camera and the input controller of one
// running simulation. All methods are safe for concurrent use; a tick and
// an input mutation never interleave.
type Session struct {
	mu        sync.Mutex
	sim       *physics.Simulator
	vp        *viewport.Viewport
	bus       *input.Bus
	ctrl      *input.Controller
	dt        float64
	validate  bool
	observers []dynamo.Observer
	frame     []viewport.Projection
	skipped   int
	logger    *log.Logger

	cancel context.CancelFunc
	done   chan struct{}
	err    error
	closed bool
}

func New(sim *physics.Simulator, vp *viewport.Viewport, opts Options) (*Session, error) {
	if !(opts.Dt > 0) {
		return nil, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, opts.Dt)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Session{
		sim:      sim,
		vp:       vp,
		bus:      input.NewBus(),
		dt:       opts.Dt,
		validate: opts.ValidateState,
		logger:   logger,
	}
	s.ctrl = input.NewController(s)
	s.ctrl.Attach(s.bus)
	s.frame = vp.ProjectAll(sim.View())
	return s, nil
}

// FromConfig validates cfg and builds a session for it.
func FromConfig(cfg *config.Config, width, height float64, logger *log.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sim, err := physics.New(cfg.ToBodies(), cfg.PhysicsOptions())
	if err != nil {
		return nil, err
	}
	vp, err := viewport.New(viewport.Options{
		Scale:       cfg.Scale,
		MinRenderPx: cfg.MinRenderPx,
		Width:       width,
		Height:      height,
		Origin:      cfg.OriginPosition(),
	})
	if err != nil {
		return nil, err
	}
	vp.SetLock(cfg.Lock)
	vp.Tick(sim)

	return New(sim, vp, Options{Dt: cfg.Dt(), ValidateState: cfg.ValidateState, Logger: logger})
}

func (s *Session) AddObserver(o dynamo.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Input is the event bus hosts dispatch translated pointer events on.
func (s *Session) Input() *input.Bus { return s.bus }

// Tick advances one step, re-centers a locked camera and projects every
// body. The returned frame is owned by the caller.
func (s *Session) Tick() ([]viewport.Projection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sim.Step(s.dt)
	if n := s.sim.Skipped(); n > 0 {
		s.skipped += n
		s.logger.Debug("skipped degenerate pairs", "step", s.sim.Steps(), "pairs", n)
	}
	if s.validate {
		if err := s.sim.Validate(); err != nil {
			return nil, err
		}
	}

	if name, locked := s.vp.Lock(); locked && !s.vp.Tick(s.sim) {
		s.logger.Warn("lock target missing, lock cleared", "body", name)
	}

	view := s.sim.View()
	for _, o := range s.observers {
		o.OnStep(s.sim.Steps(), s.sim.Time(), view)
	}

	s.frame = s.vp.ProjectAll(view)
	return s.copyFrame(), nil
}

func (s *Session) tick() error {
	_, err := s.Tick()
	return err
}

// Frame returns the projections from the most recent tick.
func (s *Session) Frame() []viewport.Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyFrame()
}

func (s *Session) copyFrame() []viewport.Projection {
	out := make([]viewport.Projection, len(s.frame))
	copy(out, s.frame)
	return out
}

// Reproject refreshes the frame without stepping, so input applied while
// paused shows up.
func (s *Session) Reproject() []viewport.Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp.Tick(s.sim)
	s.frame = s.vp.ProjectAll(s.sim.View())
	return s.copyFrame()
}

// ProjectPoints maps world positions through the current camera, for
// drawing trails.
func (s *Session) ProjectPoints(ps []dynamo.Vec3) []viewport.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]viewport.Vec2, len(ps))
	for i, p := range ps {
		out[i] = s.vp.ProjectPoint(p)
	}
	return out
}

func (s *Session) Pan(dx, dy float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp.Pan(dx, dy)
}

func (s *Session) Zoom(delta float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp.Zoom(delta)
}

// SetLock follows name from the next tick on; an empty name clears the
// lock. Unknown names are rejected.
func (s *Session) SetLock(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" {
		if _, ok := s.sim.Lookup(name); !ok {
			return fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, name)
		}
	}
	if name == "" {
		s.vp.ClearLock()
	} else {
		s.vp.SetLock(name)
	}
	s.logger.Debug("lock changed", "body", name)
	return nil
}

// SetScale jumps to an absolute zoom level. The pan offset is kept.
func (s *Session) SetScale(scale float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp.SetScale(scale)
}

func (s *Session) Lock() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp.Lock()
}

func (s *Session) Resize(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp.Resize(width, height)
}

func (s *Session) Scale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp.Scale()
}

// Names lists body names in configuration order for a follow selector.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Names()
}

func (s *Session) Bodies() []dynamo.Body {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Bodies()
}

func (s *Session) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Time()
}

func (s *Session) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Steps()
}

func (s *Session) Dt() float64 { return s.dt }

// Skipped is the number of pair interactions dropped for being closer than
// epsilon, summed over every tick so far.
func (s *Session) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

func (s *Session) Options() physics.Options { return s.sim.Options() }

// Start runs d in the background until ctx is done, Stop is called or a
// tick fails.
func (s *Session) Start(ctx context.Context, d Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	if s.done != nil {
		return dynamo.ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done, s.err = cancel, done, nil
	s.logger.Info("session started", "bodies", s.sim.Len(), "dt", s.dt)

	go func() {
		err := d.Run(ctx, s.tick)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		cancel()

		s.mu.Lock()
		s.err = err
		s.cancel, s.done = nil, nil
		s.mu.Unlock()

		if err != nil {
			s.logger.Error("session stopped", "err", err)
		}
		close(done)
	}()
	return nil
}

// Wait blocks until the running driver returns and reports its error.
func (s *Session) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop cancels the driver and waits for it. Stopping an idle session is a
// no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return s.Wait()
}

// Close stops the driver and detaches every input listener. The session
// cannot be started again.
func (s *Session) Close() error {
	err := s.Stop()
	s.ctrl.Close()

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.logger.Info("session closed", "steps", s.sim.Steps())
	}
	s.mu.Unlock()
	return err
}

// Controller exposes the input state machine for hosts that show drag
// state.
func (s *Session) Controller() *input.Controller { return s.ctrl }
