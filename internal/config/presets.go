package config

import "sort"

var Presets = map[string]*Config{
	"earth_moon": {
		Name: "earth_moon", FPS: DefaultFPS, TimeScale: DefaultTimeScale, Scale: DefaultScale,
		MinRenderPx: DefaultMinRenderPx, DistanceEpsilon: DefaultEpsilon, RecordEvery: DefaultRecordEvery,
		Origin: "Earth", ValidateState: true,
		Bodies: []BodyConfig{
			{Name: "Earth", Color: "#5588ff", Mass: 5.9742e24, Radius: 6378100},
			{
				Name: "Moon", Color: "#cccccc", Mass: 7.36e22, Radius: 1737100,
				Position: Vector{X: -3.84e8}, Velocity: Vector{Y: -1020},
			},
		},
	},
	"inner_system": {
		Name: "inner_system", FPS: DefaultFPS, TimeScale: 60 * 60 * 24, Scale: 2.5e-9,
		MinRenderPx: DefaultMinRenderPx, DistanceEpsilon: DefaultEpsilon, RecordEvery: DefaultRecordEvery,
		Origin: "Sun", ValidateState: true,
		Bodies: []BodyConfig{
			{Name: "Sun", Color: "#ffcc33", Mass: 1.989e30, Radius: 6.9634e8},
			{
				Name: "Mercury", Color: "#a6a6a6", Mass: 3.3011e23, Radius: 2439700,
				Position: Vector{X: 5.791e10}, Velocity: Vector{Y: 47360},
			},
			{
				Name: "Venus", Color: "#e6c27a", Mass: 4.8675e24, Radius: 6051800,
				Position: Vector{X: 1.0821e11}, Velocity: Vector{Y: 35020},
			},
			{
				Name: "Earth", Color: "#5588ff", Mass: 5.9742e24, Radius: 6378100,
				Position: Vector{X: 1.496e11}, Velocity: Vector{Y: 29780},
			},
			{
				Name: "Moon", Color: "#cccccc", Mass: 7.36e22, Radius: 1737100,
				Position: Vector{X: 1.496e11 + 3.84e8}, Velocity: Vector{Y: 29780 + 1020},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
