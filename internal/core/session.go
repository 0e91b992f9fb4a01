package core

import (
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-editor/internal/algorithms"
	"image-editor/internal/apperrors"
	"image-editor/internal/detector"
	imageio "image-editor/internal/io"
	"image-editor/internal/logger"
	"image-editor/internal/metrics"
)

// Session is the editor's controller model. It owns the loaded original and
// the latest face annotation; every render re-derives all other images
// from the original.
type Session struct {
	mu         sync.Mutex
	state      State
	image      *ImageData
	loader     *imageio.ImageLoader
	detector   detector.FaceDetector
	evaluator  *metrics.Evaluator
	outputPath string
	logger     *logrus.Logger

	// Result of the most recent detection on the current image. Replaced
	// wholesale on every run, never drawn on again.
	annotated gocv.Mat
	faces     []image.Rectangle
	detected  bool
}

// NewSession creates an empty session. det may be nil, in which case face
// detection reports an error.
func NewSession(loader *imageio.ImageLoader, det detector.FaceDetector, outputPath string, logger *logrus.Logger) *Session {
	return &Session{
		state:      StateEmpty,
		image:      NewImageData(),
		loader:     loader,
		detector:   det,
		evaluator:  metrics.NewEvaluator(),
		outputPath: outputPath,
		logger:     logger,
		annotated:  gocv.NewMat(),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Metadata() ImageMetadata {
	return s.image.Metadata()
}

func (s *Session) OutputPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputPath
}

func (s *Session) SetOutputPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputPath = path
}

// SetDetector swaps the face detector, closing the previous one.
func (s *Session) SetDetector(det detector.FaceDetector) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.detector != nil && s.detector != det {
		if err := s.detector.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close previous face detector")
		}
	}
	s.detector = det
}

// Load decodes an uploaded file and makes it the current original. On
// failure the session keeps whatever it had before.
func (s *Session) Load(name string, data []byte) error {
	mat, err := s.loader.Decode(name, data)
	if err != nil {
		return err
	}
	defer mat.Close()

	if err := s.image.SetOriginal(mat, name); err != nil {
		return apperrors.NewValidationError("invalid image", err)
	}

	s.mu.Lock()
	s.resetDetectionLocked()
	s.state = StateLoaded
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"name":   name,
		"width":  mat.Cols(),
		"height": mat.Rows(),
	}).Info("Image loaded")
	logger.LogResources(s.logger, "load")

	return nil
}

// Unload returns the session to the empty state.
func (s *Session) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.image.Clear()
	s.resetDetectionLocked()
	s.state = StateEmpty
}

func (s *Session) resetDetectionLocked() {
	s.annotated.Close()
	s.annotated = gocv.NewMat()
	s.faces = nil
	s.detected = false
}

// Render derives every output image from the original for the given controls.
func (s *Session) Render(controls Controls) (*Outputs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoaded {
		return nil, apperrors.NewNotFoundError("no image loaded", nil)
	}

	if controls.Operation == nil {
		controls.Operation = algorithms.None{}
	}

	original := s.image.Original()

	transformed, err := algorithms.Apply(original, controls.Operation)
	if err != nil {
		original.Close()
		transformed.Close()
		return nil, fmt.Errorf("%s failed: %w", controls.Operation.Name(), err)
	}

	brightened, err := algorithms.Brightness(original, controls.Brightness)
	if err != nil {
		original.Close()
		transformed.Close()
		brightened.Close()
		return nil, fmt.Errorf("brightness failed: %w", err)
	}

	gray, err := algorithms.Grayscale(original)
	if err != nil {
		original.Close()
		transformed.Close()
		brightened.Close()
		gray.Close()
		return nil, fmt.Errorf("grayscale failed: %w", err)
	}

	out := &Outputs{
		Original:    original,
		Transformed: transformed,
		Brightened:  brightened,
		Grayscale:   gray,
		Drawing:     gocv.NewMat(),
		Operation:   controls.Operation.Name(),
		Faces:       append([]image.Rectangle(nil), s.faces...),
		Detected:    s.detected,
	}

	if s.detected {
		out.Annotated = s.annotated.Clone()
	} else {
		out.Annotated = out.Original.Clone()
	}

	if controls.DrawingEnabled {
		out.Drawing.Close()
		out.Drawing = out.Original.Clone()
	}

	out.BrightnessMetrics = s.evaluator.CalculateAll(out.Original, out.Brightened)
	out.GrayscaleMetrics = s.evaluator.CalculateAll(out.Original, out.Grayscale)

	s.logger.WithFields(logrus.Fields{
		"operation":  out.Operation,
		"brightness": controls.Brightness,
		"drawing":    controls.DrawingEnabled,
	}).Debug("Rendered outputs")

	return out, nil
}

// DetectFaces runs the detector on the original and keeps a freshly
// annotated copy. Running it again replaces that copy, so boxes never pile
// up across runs.
func (s *Session) DetectFaces() ([]image.Rectangle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoaded {
		return nil, apperrors.NewNotFoundError("no image loaded", nil)
	}
	if s.detector == nil {
		return nil, apperrors.NewInternalError("face detector unavailable", nil)
	}

	original := s.image.Original()
	defer original.Close()

	faces, err := s.detector.Detect(original)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	s.annotated.Close()
	s.annotated = detector.Annotate(original, faces, s.detector.Params())
	s.faces = faces
	s.detected = true

	s.logger.WithField("faces", len(faces)).Info("Face detection complete")

	return append([]image.Rectangle(nil), faces...), nil
}

// resultLocked returns a copy of the image that Save and Export write: the face
// annotation when one exists, otherwise the original.
func (s *Session) resultLocked() gocv.Mat {
	if s.detected {
		return s.annotated.Clone()
	}
	return s.image.Original()
}

// Save writes the result to the configured output path, replacing any
// previous file there.
func (s *Session) Save() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoaded {
		return "", apperrors.NewNotFoundError("no image loaded", nil)
	}

	result := s.resultLocked()
	defer result.Close()

	if err := s.loader.SaveImage(result, s.outputPath); err != nil {
		return "", err
	}
	return s.outputPath, nil
}

// Export encodes the same image Save writes into w using the format named
// by ext.
func (s *Session) Export(w io.Writer, ext string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoaded {
		return apperrors.NewNotFoundError("no image loaded", nil)
	}

	result := s.resultLocked()
	defer result.Close()

	data, err := s.loader.Encode(ext, result)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return apperrors.NewIOError("failed to export image", err)
	}
	return nil
}

// Close releases the image and the detector.
func (s *Session) Close() {
	s.Unload()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close face detector")
		}
		s.detector = nil
	}
	logger.LogResources(s.logger, "close")
}
