package transport

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-editor/internal/algorithms"
	"image-editor/internal/apperrors"
	"image-editor/internal/config"
	"image-editor/internal/detector"
	imageio "image-editor/internal/io"
	"image-editor/internal/metrics"
)

const uploadField = "image"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type TransformRequest struct {
	Operation string  `form:"operation"`
	Width     int     `form:"width"`
	Height    int     `form:"height"`
	Angle     float64 `form:"angle"`
}

type BrightnessRequest struct {
	Factor float64 `form:"factor"`
}

type FacesRequest struct {
	Annotate bool `form:"annotate"`
}

type Face struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type FacesResponse struct {
	Faces []Face `json:"faces"`
	Count int    `json:"count"`
}

type InfoResponse struct {
	Width             int                `json:"width"`
	Height            int                `json:"height"`
	Channels          int                `json:"channels"`
	BrightnessFactor  float64            `json:"brightness_factor"`
	BrightnessMetrics map[string]float64 `json:"brightness_metrics"`
	GrayscaleMetrics  map[string]float64 `json:"grayscale_metrics"`
}

type handler struct {
	loader    *imageio.ImageLoader
	detector  detector.FaceDetector
	evaluator *metrics.Evaluator
	controls  config.ControlsConfig
	logger    *logrus.Logger
}

// NewHandler builds the editing API. det may be nil, in which case face
// detection requests fail with 404.
func NewHandler(loader *imageio.ImageLoader, det detector.FaceDetector, cfg *config.Config, logger *logrus.Logger) http.Handler {
	h := &handler{
		loader:    loader,
		detector:  det,
		evaluator: metrics.NewEvaluator(),
		controls:  cfg.Controls,
		logger:    logger,
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestLogger(logger),
		requestSizeLimiter(cfg.Server.MaxUploadBytes),
	)

	r.GET("/health", healthCheck)

	v1 := r.Group("/v1")
	v1.POST("/transform", h.transform)
	v1.POST("/brightness", h.brightness)
	v1.POST("/grayscale", h.grayscale)
	v1.POST("/faces", h.faces)
	v1.POST("/info", h.info)

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) transform(c *gin.Context) {
	req := TransformRequest{
		Width:  h.controls.Width,
		Height: h.controls.Height,
		Angle:  h.controls.Angle,
	}
	if err := bindForm(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	img, ext, err := h.readUpload(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer img.Close()

	op, err := algorithms.ParseOperation(req.Operation, req.Width, req.Height, req.Angle)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if _, ok := op.(algorithms.None); ok {
		h.respondError(c, apperrors.NewValidationError("operation is required: one of Resize, Rotate, Flip", nil))
		return
	}

	out, err := algorithms.Apply(img, op)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer out.Close()

	h.logger.WithFields(logrus.Fields{
		"operation": op.Name(),
		"width":     out.Cols(),
		"height":    out.Rows(),
	}).Info("Image transformed")

	h.respondImage(c, ext, out)
}

func (h *handler) brightness(c *gin.Context) {
	req := BrightnessRequest{Factor: h.controls.Brightness}
	if err := bindForm(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	img, ext, err := h.readUpload(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer img.Close()

	out, err := algorithms.Brightness(img, req.Factor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer out.Close()

	h.respondImage(c, ext, out)
}

func (h *handler) grayscale(c *gin.Context) {
	img, ext, err := h.readUpload(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer img.Close()

	out, err := algorithms.Grayscale(img)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer out.Close()

	h.respondImage(c, ext, out)
}

func (h *handler) faces(c *gin.Context) {
	if h.detector == nil {
		h.respondError(c, apperrors.NewNotFoundError("face detector is not available", nil))
		return
	}

	var req FacesRequest
	if err := bindForm(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	img, _, err := h.readUpload(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer img.Close()

	boxes, err := h.detector.Detect(img)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.WithField("faces", len(boxes)).Info("Face detection completed")

	if req.Annotate {
		annotated := detector.Annotate(img, boxes, h.detector.Params())
		defer annotated.Close()
		h.respondImage(c, ".jpg", annotated)
		return
	}

	resp := FacesResponse{Faces: make([]Face, 0, len(boxes)), Count: len(boxes)}
	for _, b := range boxes {
		resp.Faces = append(resp.Faces, Face{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) info(c *gin.Context) {
	req := BrightnessRequest{Factor: h.controls.Brightness}
	if err := bindForm(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	img, _, err := h.readUpload(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer img.Close()

	brightened, err := algorithms.Brightness(img, req.Factor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer brightened.Close()

	gray, err := algorithms.Grayscale(img)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer gray.Close()

	c.JSON(http.StatusOK, InfoResponse{
		Width:             img.Cols(),
		Height:            img.Rows(),
		Channels:          img.Channels(),
		BrightnessFactor:  req.Factor,
		BrightnessMetrics: finite(h.evaluator.CalculateAll(img, brightened)),
		GrayscaleMetrics:  finite(h.evaluator.CalculateAll(img, gray)),
	})
}

// readUpload decodes the multipart "image" field. The returned extension is
// the upload's, lower-cased, and selects the response encoding.
func (h *handler) readUpload(c *gin.Context) (gocv.Mat, string, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return gocv.NewMat(), "", apperrors.NewValidationError(
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), err)
		}
		return gocv.NewMat(), "", apperrors.NewValidationError("multipart field \"image\" is required", err)
	}

	f, err := fh.Open()
	if err != nil {
		return gocv.NewMat(), "", apperrors.NewIOError("failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return gocv.NewMat(), "", apperrors.NewIOError("failed to read upload", err)
	}

	img, err := h.loader.Decode(fh.Filename, data)
	if err != nil {
		return gocv.NewMat(), "", err
	}
	return img, strings.ToLower(filepath.Ext(fh.Filename)), nil
}

func (h *handler) respondImage(c *gin.Context, ext string, img gocv.Mat) {
	data, err := h.loader.Encode(ext, img)
	if err != nil {
		h.respondError(c, err)
		return
	}

	contentType := "image/jpeg"
	if ext == ".png" {
		contentType = "image/png"
	}
	c.Data(http.StatusOK, contentType, data)
}

func (h *handler) respondError(c *gin.Context, err error) {
	code := apperrors.StatusCode(err)

	h.logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: apperrors.UserMessage(err),
	})
}

// bindForm fills req from the multipart form. Fields absent from the
// request keep the values req already holds.
func bindForm(c *gin.Context, req any) error {
	if err := c.ShouldBind(req); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid form parameters: %v", err), err)
	}
	return nil
}

// finite drops values JSON cannot carry, such as the PSNR of identical images.
func finite(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			out[k] = v
		}
	}
	return out
}
