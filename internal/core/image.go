// Loaded image holder and editor session state
package core

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ImageData keeps the decoded original. The stored Mat is never handed
// out; readers get clones so nothing downstream can draw on it.
type ImageData struct {
	mu       sync.RWMutex
	original gocv.Mat
	hasImage bool
	name     string
	metadata ImageMetadata
}

// ImageMetadata contains image information
type ImageMetadata struct {
	Width    int
	Height   int
	Channels int
	Name     string
}

func NewImageData() *ImageData {
	return &ImageData{
		original: gocv.NewMat(),
	}
}

// SetOriginal stores a clone of mat, replacing any previous image.
func (img *ImageData) SetOriginal(mat gocv.Mat, name string) error {
	if err := ValidateImage(mat); err != nil {
		return err
	}

	img.mu.Lock()
	defer img.mu.Unlock()

	img.original.Close()
	img.original = mat.Clone()
	img.hasImage = true
	img.name = name
	img.metadata = ImageMetadata{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Name:     name,
	}

	return nil
}

// Original returns a copy of the original image, or an empty Mat.
func (img *ImageData) Original() gocv.Mat {
	img.mu.RLock()
	defer img.mu.RUnlock()

	if !img.hasImage {
		return gocv.NewMat()
	}
	return img.original.Clone()
}

func (img *ImageData) Metadata() ImageMetadata {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.metadata
}

func (img *ImageData) Clear() {
	img.mu.Lock()
	defer img.mu.Unlock()

	img.original.Close()
	img.original = gocv.NewMat()
	img.hasImage = false
	img.name = ""
	img.metadata = ImageMetadata{}
}

func (img *ImageData) Close() {
	img.Clear()
}

// ValidateImage validates an OpenCV Mat for basic requirements
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	channels := mat.Channels()
	if channels < 1 || channels > 4 {
		return fmt.Errorf("unsupported channel count: %d", channels)
	}

	const maxDimension = 16384
	if mat.Cols() > maxDimension || mat.Rows() > maxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), maxDimension)
	}

	return nil
}
