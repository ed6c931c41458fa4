package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/storage"
	"github.com/san-kum/orbsim/internal/viewport"
)

const (
	background   = "#0a0a0a"
	defaultColor = "#00ff00"
	margin       = 20.0
)

// FitViewport returns a viewport that frames every recorded position in a
// width x height image.
func FitViewport(samples []storage.Sample, width, height int) (*viewport.Viewport, error) {
	lo := viewport.Vec2{X: math.Inf(1), Y: math.Inf(1)}
	hi := viewport.Vec2{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, s := range samples {
		for _, b := range s.Bodies {
			lo.X = math.Min(lo.X, b.Position.X)
			lo.Y = math.Min(lo.Y, b.Position.Y)
			hi.X = math.Max(hi.X, b.Position.X)
			hi.Y = math.Max(hi.Y, b.Position.Y)
		}
	}
	if math.IsInf(lo.X, 0) {
		lo, hi = viewport.Vec2{}, viewport.Vec2{}
	}

	w, h := float64(width), float64(height)
	return viewport.New(viewport.Options{
		Scale:       viewport.Fit(lo, hi, w, h, margin),
		MinRenderPx: viewport.DefaultMinRenderPx,
		Width:       w,
		Height:      h,
		Origin:      dynamo.Vec3{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2},
	})
}

// TrajectoryToSVG draws one path per body plus a disc at its final position.
// Bodies without an entry in colors are drawn in green.
func TrajectoryToSVG(samples []storage.Sample, colors map[string]string, width, height int) (string, error) {
	if len(samples) == 0 {
		return "", fmt.Errorf("%w: no samples to draw", dynamo.ErrInvalidState)
	}

	vp, err := FitViewport(samples, width, height)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	writeHeader(&sb, width, height)

	last := samples[len(samples)-1]
	names := make([]string, 0, len(last.Bodies))
	for _, b := range last.Bodies {
		names = append(names, b.Name)
	}
	sort.Strings(names)

	for _, name := range names {
		track := storage.Track(samples, name)
		if len(track) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-opacity="0.6" stroke-width="1" d="M`, colorOf(colors, name)))
		for i, p := range track {
			pt := vp.ProjectPoint(p)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", pt.X, pt.Y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", pt.X, pt.Y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	writeDiscs(&sb, vp.ProjectAll(last.Bodies), colors)
	sb.WriteString("</svg>")
	return sb.String(), nil
}

// SnapshotSVG renders already projected bodies, as seen on screen.
func SnapshotSVG(frame []viewport.Projection, colors map[string]string, width, height int) string {
	var sb strings.Builder
	writeHeader(&sb, width, height)
	writeDiscs(&sb, frame, colors)
	sb.WriteString("</svg>")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

func writeDiscs(sb *strings.Builder, frame []viewport.Projection, colors map[string]string) {
	for _, p := range frame {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%s</title></circle>
`, p.X, p.Y, p.Diameter/2, colorOf(colors, p.Name), p.Name))
	}
}

func colorOf(colors map[string]string, name string) string {
	if c, ok := colors[name]; ok && c != "" {
		return c
	}
	return defaultColor
}
