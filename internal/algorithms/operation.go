// Geometric operations offered by the editor
package algorithms

import (
	"fmt"
	"math"

	"image-editor/internal/apperrors"
	"image-editor/internal/config"
)

// Operation is one of None, Resize, Rotate or Flip. The set is closed:
// only types in this package implement it.
type Operation interface {
	Name() string
	isOperation()
}

// None selects no transform; Apply yields no output for it.
type None struct{}

// Resize scales to exactly Width x Height without preserving aspect ratio.
type Resize struct {
	Width  int
	Height int
}

// Rotate turns the image about its centre by Angle degrees,
// counter-clockwise for positive values, keeping the canvas size.
type Rotate struct {
	Angle float64
}

// Flip mirrors the image left to right.
type Flip struct{}

func (None) Name() string   { return "None" }
func (Resize) Name() string { return "Resize" }
func (Rotate) Name() string { return "Rotate" }
func (Flip) Name() string   { return "Flip" }

func (None) isOperation()   {}
func (Resize) isOperation() {}
func (Rotate) isOperation() {}
func (Flip) isOperation()   {}

// OperationNames lists the selectable operations in menu order.
func OperationNames() []string {
	return []string{None{}.Name(), Resize{}.Name(), Rotate{}.Name(), Flip{}.Name()}
}

// ParseOperation builds an Operation from its display name. Parameters the
// chosen operation does not use are ignored.
func ParseOperation(name string, width, height int, angle float64) (Operation, error) {
	var op Operation

	switch name {
	case "None", "":
		op = None{}
	case "Resize":
		op = Resize{Width: width, Height: height}
	case "Rotate":
		op = Rotate{Angle: angle}
	case "Flip":
		op = Flip{}
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown operation: %q", name), nil)
	}

	if err := Validate(op); err != nil {
		return nil, err
	}
	return op, nil
}

// Validate checks operation parameters against the editor's control bounds.
func Validate(op Operation) error {
	switch o := op.(type) {
	case nil:
		return apperrors.NewValidationError("no operation given", nil)
	case Resize:
		if o.Width < config.MinDimension || o.Width > config.MaxDimension {
			return apperrors.NewValidationError(
				fmt.Sprintf("width must be between %d and %d, got %d", config.MinDimension, config.MaxDimension, o.Width), nil)
		}
		if o.Height < config.MinDimension || o.Height > config.MaxDimension {
			return apperrors.NewValidationError(
				fmt.Sprintf("height must be between %d and %d, got %d", config.MinDimension, config.MaxDimension, o.Height), nil)
		}
	case Rotate:
		if math.IsNaN(o.Angle) || o.Angle < config.MinAngle || o.Angle > config.MaxAngle {
			return apperrors.NewValidationError(
				fmt.Sprintf("angle must be between %v and %v, got %v", config.MinAngle, config.MaxAngle, o.Angle), nil)
		}
	}
	return nil
}
