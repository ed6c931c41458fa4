// Package viz hosts a simulation session in the terminal.
//
// [Model] drives ticks at the configured frame rate, forwards mouse
// drag and wheel events to the session's input bus and renders the
// projected bodies on a braille [Canvas]. [RunInteractive] adds a preset
// picker in front of it.
//
// # Key Bindings
//
//	Space  - Pause/Resume simulation
//	Tab    - Lock the camera on the next body
//	Esc    - Free camera
//	+/-    - Zoom in/out around the screen center
//	Arrows - Pan (ignored while locked)
//	S      - Save the current frame as SVG
//	T      - Cycle color themes
//	?      - Show help overlay
package viz
