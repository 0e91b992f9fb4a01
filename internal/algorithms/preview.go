package algorithms

import (
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"image-editor/internal/apperrors"
)

// Preview converts mat for display, shrinking it to fit within
// maxSize x maxSize. Smaller images keep their size.
func Preview(mat gocv.Mat, maxSize int) (image.Image, error) {
	if mat.Empty() {
		return nil, apperrors.NewValidationError("cannot preview empty image", nil)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to convert image for display", err)
	}

	if maxSize <= 0 || (img.Bounds().Dx() <= maxSize && img.Bounds().Dy() <= maxSize) {
		return img, nil
	}

	return imaging.Fit(img, maxSize, maxSize, imaging.Lanczos), nil
}
