package transport

import (
	"bytes"
	"encoding/json"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"image-editor/internal/config"
	"image-editor/internal/detector"
	imageio "image-editor/internal/io"
	"image-editor/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubDetector struct {
	boxes []image.Rectangle
}

func (d *stubDetector) Detect(gocv.Mat) ([]image.Rectangle, error) { return d.boxes, nil }
func (d *stubDetector) Params() detector.Params                    { return detector.DefaultParams() }
func (d *stubDetector) Close() error                               { return nil }

func newTestServer(t *testing.T, det detector.FaceDetector, mutate ...func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.Default()
	for _, m := range mutate {
		m(cfg)
	}
	log := logger.Discard()
	loader := imageio.NewImageLoader(cfg.Editor.SupportedFormats, cfg.Editor.JPEGQuality, log)
	return NewHandler(loader, det, cfg, log)
}

func solidPNG(t *testing.T, rows, cols int, v float64) []byte {
	t.Helper()
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), rows, cols, gocv.MatTypeCV8UC3)
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	require.NoError(t, err)
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...)
}

func upload(t *testing.T, h http.Handler, path, filename string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if data != nil {
		part, err := w.CreateFormFile(uploadField, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) gocv.Mat {
	t.Helper()
	mat, err := gocv.IMDecode(rec.Body.Bytes(), gocv.IMReadColor)
	require.NoError(t, err)
	require.False(t, mat.Empty())
	return mat
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestTransform_Resize(t *testing.T) {
	h := newTestServer(t, nil)

	rec := upload(t, h, "/v1/transform", "photo.png", solidPNG(t, 480, 640, 90), map[string]string{
		"operation": "Resize",
		"width":     "320",
		"height":    "240",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	out := decodeResponse(t, rec)
	defer out.Close()
	assert.Equal(t, 320, out.Cols())
	assert.Equal(t, 240, out.Rows())
}

func TestTransform_AbsentFieldsUseControlDefaults(t *testing.T) {
	h := newTestServer(t, nil, func(c *config.Config) { c.Controls.Height = 64 })

	rec := upload(t, h, "/v1/transform", "photo.png", solidPNG(t, 30, 40, 90), map[string]string{
		"operation": "Resize",
		"width":     "100",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeResponse(t, rec)
	defer out.Close()
	assert.Equal(t, 100, out.Cols())
	assert.Equal(t, 64, out.Rows())
}

func TestTransform_FlipKeepsDimensions(t *testing.T) {
	h := newTestServer(t, nil)

	rec := upload(t, h, "/v1/transform", "photo.png", solidPNG(t, 48, 64, 10), map[string]string{
		"operation": "Flip",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeResponse(t, rec)
	defer out.Close()
	assert.Equal(t, 64, out.Cols())
	assert.Equal(t, 48, out.Rows())
}

func TestTransform_Rejections(t *testing.T) {
	h := newTestServer(t, nil)
	img := solidPNG(t, 20, 20, 50)

	tests := []struct {
		name     string
		filename string
		data     []byte
		fields   map[string]string
	}{
		{"none operation", "a.png", img, map[string]string{"operation": "None"}},
		{"missing operation", "a.png", img, nil},
		{"unknown operation", "a.png", img, map[string]string{"operation": "Blur"}},
		{"width out of range", "a.png", img, map[string]string{"operation": "Resize", "width": "1001", "height": "10"}},
		{"width not a number", "a.png", img, map[string]string{"operation": "Resize", "width": "wide"}},
		{"angle out of range", "a.png", img, map[string]string{"operation": "Rotate", "angle": "200"}},
		{"missing upload", "", nil, map[string]string{"operation": "Flip"}},
		{"unsupported extension", "a.gif", img, map[string]string{"operation": "Flip"}},
		{"corrupt upload", "a.png", []byte("garbage"), map[string]string{"operation": "Flip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, h, "/v1/transform", tt.filename, tt.data, tt.fields)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := errorMessage(t, rec)
			assert.Equal(t, "Bad Request", resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestBrightness_DoublesAndClamps(t *testing.T) {
	h := newTestServer(t, nil)

	rec := upload(t, h, "/v1/brightness", "gray.png", solidPNG(t, 10, 10, 128), map[string]string{"factor": "2.0"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeResponse(t, rec)
	defer out.Close()
	assert.Equal(t, gocv.Vecb{255, 255, 255}, out.GetVecbAt(5, 5))
}

func TestBrightness_OutOfRange(t *testing.T) {
	h := newTestServer(t, nil)

	rec := upload(t, h, "/v1/brightness", "gray.png", solidPNG(t, 10, 10, 128), map[string]string{"factor": "3.5"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBrightness_MalformedFactor(t *testing.T) {
	h := newTestServer(t, nil)

	rec := upload(t, h, "/v1/brightness", "gray.png", solidPNG(t, 10, 10, 128), map[string]string{"factor": "bright"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec).Message, "invalid form parameters")
}

func TestGrayscale_ChannelsEqual(t *testing.T) {
	h := newTestServer(t, nil)

	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(200, 40, 10, 0), 8, 8, gocv.MatTypeCV8UC3)
	defer mat.Close()
	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	require.NoError(t, err)
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	rec := upload(t, h, "/v1/grayscale", "color.png", data, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeResponse(t, rec)
	defer out.Close()
	px := out.GetVecbAt(3, 3)
	assert.Equal(t, px[0], px[1])
	assert.Equal(t, px[1], px[2])
}

func TestFaces_JSON(t *testing.T) {
	h := newTestServer(t, &stubDetector{boxes: []image.Rectangle{image.Rect(5, 6, 35, 46)}})

	rec := upload(t, h, "/v1/faces", "face.png", solidPNG(t, 60, 60, 100), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp FacesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []Face{{X: 5, Y: 6, Width: 30, Height: 40}}, resp.Faces)
}

func TestFaces_NoneFound(t *testing.T) {
	h := newTestServer(t, &stubDetector{})

	rec := upload(t, h, "/v1/faces", "face.png", solidPNG(t, 20, 20, 100), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"faces":[],"count":0}`, rec.Body.String())
}

func TestFaces_Annotated(t *testing.T) {
	h := newTestServer(t, &stubDetector{boxes: []image.Rectangle{image.Rect(10, 10, 50, 50)}})

	rec := upload(t, h, "/v1/faces", "face.png", solidPNG(t, 60, 60, 0), map[string]string{"annotate": "true"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	out := decodeResponse(t, rec)
	defer out.Close()
	assert.Equal(t, 60, out.Cols())
	// JPEG is lossy; the box edge is strongly red, the centre stays dark.
	edge := out.GetVecbAt(10, 30)
	assert.Greater(t, int(edge[2]), 100)
	assert.Less(t, int(out.GetVecbAt(30, 30)[2]), 60)
}

func TestFaces_Errors(t *testing.T) {
	t.Run("no detector", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := upload(t, h, "/v1/faces", "face.png", solidPNG(t, 20, 20, 100), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad annotate flag", func(t *testing.T) {
		h := newTestServer(t, &stubDetector{})
		rec := upload(t, h, "/v1/faces", "face.png", solidPNG(t, 20, 20, 100), map[string]string{"annotate": "maybe"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestInfo(t *testing.T) {
	h := newTestServer(t, nil)

	rec := upload(t, h, "/v1/info", "gray.png", solidPNG(t, 30, 40, 100), map[string]string{"factor": "1.0"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 40, resp.Width)
	assert.Equal(t, 30, resp.Height)
	assert.Equal(t, 3, resp.Channels)
	assert.Equal(t, 1.0, resp.BrightnessFactor)

	// Identity brightness: zero error, infinite PSNR omitted.
	assert.Equal(t, 0.0, resp.BrightnessMetrics["mse"])
	_, hasPSNR := resp.BrightnessMetrics["psnr"]
	assert.False(t, hasPSNR)
	assert.InDelta(t, 100.0, resp.GrayscaleMetrics["mean_intensity"], 1.0)
}

func TestInfo_DefaultFactor(t *testing.T) {
	h := newTestServer(t, nil, func(c *config.Config) { c.Controls.Brightness = 1.5 })

	rec := upload(t, h, "/v1/info", "gray.png", solidPNG(t, 10, 10, 100), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1.5, resp.BrightnessFactor)
	assert.InDelta(t, 150.0, resp.BrightnessMetrics["mean_intensity"], 1.0)
}

func TestUploadLimit(t *testing.T) {
	h := newTestServer(t, nil, func(c *config.Config) { c.Server.MaxUploadBytes = 512 })

	rec := upload(t, h, "/v1/grayscale", "big.png", bytes.Repeat([]byte{1}, 4096), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
