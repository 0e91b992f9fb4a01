package core

import (
	"image"

	"gocv.io/x/gocv"

	"image-editor/internal/algorithms"
)

// State is the editor lifecycle: nothing loaded, or an image loaded.
type State int

const (
	StateEmpty State = iota
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Controls is everything the user can set between renders.
type Controls struct {
	Operation      algorithms.Operation
	Brightness     float64
	DrawingEnabled bool
}

// DefaultControls selects no operation at neutral brightness.
func DefaultControls() Controls {
	return Controls{
		Operation:  algorithms.None{},
		Brightness: 1.0,
	}
}

// Outputs are the images derived from the original for one render. All
// Mats are owned by Outputs; Transformed and Drawing may be empty.
type Outputs struct {
	Original    gocv.Mat
	Transformed gocv.Mat
	Brightened  gocv.Mat
	Grayscale   gocv.Mat
	Annotated   gocv.Mat
	Drawing     gocv.Mat

	Operation string
	Faces     []image.Rectangle
	Detected  bool

	BrightnessMetrics map[string]float64
	GrayscaleMetrics  map[string]float64
}

// HasTransformed reports whether an operation other than None produced output.
func (o *Outputs) HasTransformed() bool {
	return !o.Transformed.Empty()
}

func (o *Outputs) Close() {
	for _, m := range []*gocv.Mat{&o.Original, &o.Transformed, &o.Brightened, &o.Grayscale, &o.Annotated, &o.Drawing} {
		m.Close()
	}
}
