package algorithms

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"image-editor/internal/apperrors"
)

// Apply runs op on input and returns a new Mat owned by the caller. The
// input is never modified. For None the returned Mat is empty.
func Apply(input gocv.Mat, op Operation) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), apperrors.NewValidationError("input image is empty", nil)
	}

	if err := Validate(op); err != nil {
		return gocv.NewMat(), err
	}

	switch o := op.(type) {
	case None:
		return gocv.NewMat(), nil
	case Resize:
		return resize(input, o)
	case Rotate:
		return rotate(input, o)
	case Flip:
		return flip(input)
	default:
		return gocv.NewMat(), apperrors.NewValidationError(fmt.Sprintf("unsupported operation: %T", op), nil)
	}
}

func resize(input gocv.Mat, op Resize) (gocv.Mat, error) {
	output := gocv.NewMat()
	gocv.Resize(input, &output, image.Pt(op.Width, op.Height), 0, 0, gocv.InterpolationLinear)

	return checkOutput(output, "resize")
}

func rotate(input gocv.Mat, op Rotate) (gocv.Mat, error) {
	matrix := rotationMatrix(float64(input.Cols())/2, float64(input.Rows())/2, op.Angle)
	defer matrix.Close()

	output := gocv.NewMat()
	gocv.WarpAffine(input, &output, matrix, image.Pt(input.Cols(), input.Rows()))

	return checkOutput(output, "rotate")
}

// rotationMatrix builds the 2x3 affine matrix OpenCV's getRotationMatrix2D
// gives for a unit scale. gocv only accepts an integer centre there, which
// shifts odd-sized images by half a pixel.
func rotationMatrix(cx, cy, angle float64) gocv.Mat {
	sin, cos := math.Sincos(angle * math.Pi / 180)

	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	m.SetDoubleAt(0, 0, cos)
	m.SetDoubleAt(0, 1, sin)
	m.SetDoubleAt(0, 2, (1-cos)*cx-sin*cy)
	m.SetDoubleAt(1, 0, -sin)
	m.SetDoubleAt(1, 1, cos)
	m.SetDoubleAt(1, 2, sin*cx+(1-cos)*cy)
	return m
}

func flip(input gocv.Mat) (gocv.Mat, error) {
	output := gocv.NewMat()
	gocv.Flip(input, &output, 1)

	return checkOutput(output, "flip")
}

func checkOutput(output gocv.Mat, step string) (gocv.Mat, error) {
	if output.Empty() {
		output.Close()
		return gocv.NewMat(), apperrors.NewProcessingError(fmt.Sprintf("%s produced an empty image", step), nil)
	}
	return output, nil
}
