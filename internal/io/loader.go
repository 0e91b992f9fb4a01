// Image decoding, encoding and saving
package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-editor/internal/apperrors"
)

// ImageLoader handles image file operations
type ImageLoader struct {
	logger      *logrus.Logger
	formats     []string
	jpegQuality int
}

// NewImageLoader creates a loader accepting the given extensions
// (without the dot, e.g. "jpg").
func NewImageLoader(formats []string, jpegQuality int, logger *logrus.Logger) *ImageLoader {
	normalized := make([]string, 0, len(formats))
	for _, f := range formats {
		normalized = append(normalized, strings.ToLower(strings.TrimPrefix(f, ".")))
	}

	return &ImageLoader{
		logger:      logger,
		formats:     normalized,
		jpegQuality: jpegQuality,
	}
}

// SupportedFormats returns the accepted extensions with a leading dot,
// the form fyne's extension filter expects.
func (il *ImageLoader) SupportedFormats() []string {
	exts := make([]string, 0, len(il.formats))
	for _, f := range il.formats {
		exts = append(exts, "."+f)
	}
	return exts
}

// IsSupported reports whether name carries an accepted extension.
func (il *ImageLoader) IsSupported(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return false
	}

	for _, format := range il.formats {
		if ext == format {
			return true
		}
	}
	return false
}

// Decode turns uploaded file contents into a 3-channel BGR Mat.
func (il *ImageLoader) Decode(name string, data []byte) (gocv.Mat, error) {
	il.logger.WithFields(logrus.Fields{
		"name":  name,
		"bytes": len(data),
	}).Debug("Decoding image")

	if !il.IsSupported(name) {
		return gocv.NewMat(), apperrors.NewValidationError(
			fmt.Sprintf("unsupported image format: %s (accepted: %s)", name, strings.Join(il.formats, ", ")), nil)
	}

	if len(data) == 0 {
		return gocv.NewMat(), apperrors.NewValidationError(fmt.Sprintf("empty image file: %s", name), nil)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), apperrors.NewValidationError(fmt.Sprintf("failed to decode image: %s", name), err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), apperrors.NewValidationError(fmt.Sprintf("corrupt or unreadable image: %s", name), nil)
	}

	il.logger.WithFields(logrus.Fields{
		"name":     name,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image decoded successfully")

	return mat, nil
}

// LoadImage reads and decodes an image from disk.
func (il *ImageLoader) LoadImage(path string) (gocv.Mat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gocv.NewMat(), apperrors.NewIOError(fmt.Sprintf("failed to read image: %s", path), err)
	}
	return il.Decode(filepath.Base(path), data)
}

// Encode serialises mat in the format named by ext (".jpg", ".jpeg", ".png").
func (il *ImageLoader) Encode(ext string, mat gocv.Mat) ([]byte, error) {
	if mat.Empty() {
		return nil, apperrors.NewProcessingError("cannot encode empty image", nil)
	}

	var (
		buf *gocv.NativeByteBuffer
		err error
	)

	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		buf, err = gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, il.jpegQuality})
	case ".png":
		buf, err = gocv.IMEncode(gocv.PNGFileExt, mat)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported output format: %q", ext), nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to encode image", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

// SaveImage encodes mat by the extension of path and writes it, replacing
// any existing file. The bytes are synced to a temporary sibling before it
// is renamed into place.
func (il *ImageLoader) SaveImage(mat gocv.Mat, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	data, err := il.Encode(filepath.Ext(path), mat)
	if err != nil {
		return err
	}

	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return apperrors.NewIOError(fmt.Sprintf("failed to save image: %s", path), err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"bytes":    len(data),
	}).Info("Image saved successfully")

	return nil
}
