package algorithms

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"image-editor/internal/apperrors"
	"image-editor/internal/config"
)

// Brightness multiplies every channel by factor, saturating at 0 and 255.
func Brightness(input gocv.Mat, factor float64) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), apperrors.NewValidationError("input image is empty", nil)
	}

	if math.IsNaN(factor) || factor < config.MinBrightness || factor > config.MaxBrightness {
		return gocv.NewMat(), apperrors.NewValidationError(
			fmt.Sprintf("brightness must be between %v and %v, got %v", config.MinBrightness, config.MaxBrightness, factor), nil)
	}

	output := gocv.NewMat()
	gocv.ConvertScaleAbs(input, &output, factor, 0)

	return checkOutput(output, "brightness")
}

// Grayscale collapses input to luminance and replicates it into three
// channels so it displays like any other result.
func Grayscale(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), apperrors.NewValidationError("input image is empty", nil)
	}

	gray := gocv.NewMat()
	defer gray.Close()

	switch input.Channels() {
	case 1:
		input.CopyTo(&gray)
	case 4:
		if err := gocv.CvtColor(input, &gray, gocv.ColorBGRAToGray); err != nil {
			return gocv.NewMat(), apperrors.NewProcessingError("grayscale conversion failed", err)
		}
	default:
		if err := gocv.CvtColor(input, &gray, gocv.ColorBGRToGray); err != nil {
			return gocv.NewMat(), apperrors.NewProcessingError("grayscale conversion failed", err)
		}
	}

	output := gocv.NewMat()
	if err := gocv.CvtColor(gray, &output, gocv.ColorGrayToBGR); err != nil {
		output.Close()
		return gocv.NewMat(), apperrors.NewProcessingError("grayscale conversion failed", err)
	}

	return output, nil
}
