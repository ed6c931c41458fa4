package viz

import (
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/session"
	"github.com/san-kum/orbsim/internal/viewport"
)

// scene is the host-independent part of a terminal viewer: the session,
// the braille canvas and the body trails. Both the bubbletea and the tcell
// hosts draw through it.
type scene struct {
	sess   *session.Session
	cfg    *config.Config
	logger *log.Logger

	width, height int
	canvas        *Canvas
	frame         []viewport.Projection
	trails        map[string][]dynamo.Vec3
	showTrails    bool
	status        string
}

func newScene(cfg *config.Config, logger *log.Logger, w, h int) (*scene, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	sess, err := session.FromConfig(cfg, float64(w*cellWidth), float64(h*cellHeight), logger)
	if err != nil {
		return nil, err
	}
	return &scene{
		sess:       sess,
		cfg:        cfg,
		logger:     logger,
		width:      w,
		height:     h,
		canvas:     NewCanvas(w, h),
		frame:      sess.Frame(),
		trails:     make(map[string][]dynamo.Vec3),
		showTrails: true,
	}, nil
}

// Session exposes the hosted session, mainly for tests and teardown.
func (s *scene) Session() *session.Session { return s.sess }

func (s *scene) resize(w, h int) {
	w, h = max(w, 10), max(h, 4)
	s.width, s.height = w, h
	s.canvas = NewCanvas(w, h)
	s.sess.Resize(float64(w*cellWidth), float64(h*cellHeight))
	s.frame = s.sess.Reproject()
}

// advance steps the session once and extends every trail.
func (s *scene) advance() error {
	frame, err := s.sess.Tick()
	if err != nil {
		return err
	}
	s.frame = frame

	for _, b := range s.sess.Bodies() {
		t := append(s.trails[b.Name], b.Position)
		if len(t) > trailCapacity {
			t = t[1:]
		}
		s.trails[b.Name] = t
	}
	return nil
}

func (s *scene) refresh() {
	s.frame = s.sess.Reproject()
}

func (s *scene) clearTrails() {
	s.trails = make(map[string][]dynamo.Vec3)
}

// cycleLock moves the lock to the next body, then back to free camera.
func (s *scene) cycleLock() {
	names := s.sess.Names()
	current, _ := s.sess.Lock()

	next := ""
	if current == "" && len(names) > 0 {
		next = names[0]
	}
	for i, name := range names {
		if name == current && i+1 < len(names) {
			next = names[i+1]
		}
	}

	if err := s.sess.SetLock(next); err != nil {
		s.status = err.Error()
		return
	}
	if next == "" {
		s.status = "free camera"
	} else {
		s.status = "locked on " + next
	}
}

func (s *scene) freeCamera() {
	_ = s.sess.SetLock("")
	s.status = "free camera"
}

// resetZoom restores the configured scale.
func (s *scene) resetZoom() {
	if err := s.sess.SetScale(s.cfg.Scale); err != nil {
		s.status = err.Error()
	}
}

// draw paints trails first so bodies stay on top.
func (s *scene) draw() {
	s.canvas.Clear()
	colors := s.cfg.Colors()

	if s.showTrails {
		s.canvas.Ink(CurrentTheme.Muted)
		for _, trail := range s.trails {
			s.drawTrail(s.sess.ProjectPoints(trail))
		}
	}

	for _, p := range s.frame {
		x, y, ok := s.pixel(p.X, p.Y)
		if !ok {
			continue
		}
		s.canvas.Ink(lipgloss.Color(colorOr(colors[p.Name], string(CurrentTheme.Secondary))))
		s.canvas.Disc(x, y, p.Diameter/2)
	}
	s.canvas.Ink("")
}

// drawTrail joins consecutive points; a point that cannot be placed breaks
// the line.
func (s *scene) drawTrail(pts []viewport.Vec2) {
	prevOK := false
	var px, py int
	for _, p := range pts {
		x, y, ok := s.pixel(p.X, p.Y)
		switch {
		case ok && prevOK:
			s.canvas.DrawLine(px, py, x, y)
		case ok:
			s.canvas.Set(x, y)
		}
		px, py, prevOK = x, y, ok
	}
}

// pixel rounds a projected point, rejecting points too far off screen to
// convert to int safely.
func (s *scene) pixel(x, y float64) (int, int, bool) {
	limit := float64(4 * (s.canvas.SubWidth() + s.canvas.SubHeight()))
	if math.IsNaN(x) || math.IsNaN(y) || math.Abs(x) > limit || math.Abs(y) > limit {
		return 0, 0, false
	}
	return int(math.Round(x)), int(math.Round(y)), true
}

func colorOr(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}
