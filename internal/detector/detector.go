// Frontal face detection with an OpenCV Haar cascade
package detector

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-editor/internal/apperrors"
	"image-editor/internal/config"
)

// Params controls detection and how boxes are drawn.
type Params struct {
	ScaleFactor  float64
	MinNeighbors int
	MinSize      int
	Thickness    int
	Color        color.RGBA
}

// DefaultParams returns the classic frontal-face settings: scale 1.3,
// 5 neighbours, 30x30 minimum, 2px red boxes.
func DefaultParams() Params {
	return Params{
		ScaleFactor:  1.3,
		MinNeighbors: 5,
		MinSize:      30,
		Thickness:    2,
		Color:        color.RGBA{R: 255, A: 255},
	}
}

// ParamsFromConfig converts the [detector] config section.
func ParamsFromConfig(cfg *config.Config) (Params, error) {
	c, err := cfg.BoxColor()
	if err != nil {
		return Params{}, err
	}

	return Params{
		ScaleFactor:  cfg.Detector.ScaleFactor,
		MinNeighbors: cfg.Detector.MinNeighbors,
		MinSize:      cfg.Detector.MinSize,
		Thickness:    cfg.Detector.BoxThickness,
		Color:        c,
	}, nil
}

// FaceDetector finds faces in a BGR image.
type FaceDetector interface {
	Detect(img gocv.Mat) ([]image.Rectangle, error)
	Params() Params
	Close() error
}

// CascadeDetector wraps a gocv.CascadeClassifier. The classifier is not
// safe for concurrent use, so Detect serialises callers.
type CascadeDetector struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	params     Params
	logger     *logrus.Logger
}

// NewCascadeDetector loads the cascade from file, or from file's base name
// inside each of searchPaths in turn.
func NewCascadeDetector(file string, searchPaths []string, params Params, logger *logrus.Logger) (*CascadeDetector, error) {
	path, err := LocateCascade(file, searchPaths)
	if err != nil {
		return nil, err
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to load face cascade classifier from %s", path), nil)
	}

	logger.WithFields(logrus.Fields{
		"cascade":       path,
		"scale_factor":  params.ScaleFactor,
		"min_neighbors": params.MinNeighbors,
		"min_size":      params.MinSize,
	}).Info("Face detector initialized")

	return &CascadeDetector{
		classifier: classifier,
		params:     params,
		logger:     logger,
	}, nil
}

// LocateCascade returns the first existing candidate for file.
func LocateCascade(file string, searchPaths []string) (string, error) {
	candidates := []string{file}
	for _, dir := range searchPaths {
		candidates = append(candidates, filepath.Join(dir, filepath.Base(file)))
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", apperrors.NewNotFoundError(
		fmt.Sprintf("face cascade %s not found in %v", filepath.Base(file), searchPaths), nil)
}

func (d *CascadeDetector) Params() Params {
	return d.params
}

// Detect converts img to grayscale and runs the multi-scale detector.
func (d *CascadeDetector) Detect(img gocv.Mat) ([]image.Rectangle, error) {
	if img.Empty() {
		return nil, apperrors.NewValidationError("input image is empty", nil)
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else if err := gocv.CvtColor(img, &gray, gocv.ColorBGRToGray); err != nil {
		return nil, apperrors.NewProcessingError("grayscale conversion failed", err)
	}

	d.mu.Lock()
	faces := d.classifier.DetectMultiScaleWithParams(
		gray,
		d.params.ScaleFactor,
		d.params.MinNeighbors,
		0,
		image.Pt(d.params.MinSize, d.params.MinSize),
		image.Pt(0, 0),
	)
	d.mu.Unlock()

	d.logger.WithFields(logrus.Fields{
		"faces":  len(faces),
		"width":  img.Cols(),
		"height": img.Rows(),
	}).Debug("Face detection finished")

	return faces, nil
}

func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}

// Annotate returns a copy of img with a rectangle drawn around each box.
// img itself is left untouched; with no boxes the copy is pixel-identical.
func Annotate(img gocv.Mat, boxes []image.Rectangle, params Params) gocv.Mat {
	annotated := img.Clone()
	for _, box := range boxes {
		gocv.Rectangle(&annotated, box, params.Color, params.Thickness)
	}
	return annotated
}

// FromConfig builds a CascadeDetector from the [detector] config section.
func FromConfig(cfg *config.Config, logger *logrus.Logger) (*CascadeDetector, error) {
	params, err := ParamsFromConfig(cfg)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid detector configuration", err)
	}
	return NewCascadeDetector(cfg.Detector.CascadeFile, cfg.Detector.SearchPaths, params, logger)
}
