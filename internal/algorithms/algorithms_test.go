package algorithms

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"image-editor/internal/apperrors"
)

// randomMat builds a reproducible noisy BGR image.
func randomMat(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	rng := rand.New(rand.NewSource(int64(rows*10007 + cols)))
	data := make([]byte, rows*cols*3)
	rng.Read(data)

	mat, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	return mat
}

func solidMat(rows, cols int, v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Operation
		wantErr bool
	}{
		{"none", "None", None{}, false},
		{"resize", "Resize", Resize{Width: 320, Height: 240}, false},
		{"rotate", "Rotate", Rotate{Angle: -45}, false},
		{"flip", "Flip", Flip{}, false},
		{"unknown", "Sharpen", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := ParseOperation(tt.input, 320, 240, -45)
			if tt.wantErr {
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
			assert.Equal(t, tt.input, op.Name())
		})
	}

	assert.Equal(t, []string{"None", "Resize", "Rotate", "Flip"}, OperationNames())
}

func TestValidate_Bounds(t *testing.T) {
	valid := []Operation{
		None{}, Flip{},
		Resize{Width: 1, Height: 1}, Resize{Width: 1000, Height: 1000},
		Rotate{Angle: -180}, Rotate{Angle: 180},
	}
	for _, op := range valid {
		assert.NoError(t, Validate(op), "%#v", op)
	}

	invalid := []Operation{
		nil,
		Resize{Width: 0, Height: 10}, Resize{Width: 10, Height: 1001},
		Rotate{Angle: -180.5}, Rotate{Angle: 181},
	}
	for _, op := range invalid {
		assert.Error(t, Validate(op), "%#v", op)
	}
}

func TestApply_ResizeExactDimensions(t *testing.T) {
	src := randomMat(t, 48, 64)
	defer src.Close()

	sizes := [][2]int{{1, 1}, {1, 1000}, {1000, 1}, {320, 240}, {64, 48}, {999, 7}}
	for _, sz := range sizes {
		out, err := Apply(src, Resize{Width: sz[0], Height: sz[1]})
		require.NoError(t, err)
		assert.Equal(t, sz[0], out.Cols())
		assert.Equal(t, sz[1], out.Rows())
		assert.Equal(t, 3, out.Channels())
		out.Close()
	}
}

func TestApply_FlipTwiceIsIdentity(t *testing.T) {
	src := randomMat(t, 31, 47)
	defer src.Close()
	before := src.ToBytes()

	once, err := Apply(src, Flip{})
	require.NoError(t, err)
	defer once.Close()

	twice, err := Apply(once, Flip{})
	require.NoError(t, err)
	defer twice.Close()

	assert.NotEqual(t, before, once.ToBytes())
	assert.Equal(t, before, twice.ToBytes())
	assert.Equal(t, before, src.ToBytes(), "input must not be modified")
}

func TestApply_FlipMirrorsHorizontally(t *testing.T) {
	src := randomMat(t, 5, 9)
	defer src.Close()

	out, err := Apply(src, Flip{})
	require.NoError(t, err)
	defer out.Close()

	for y := 0; y < src.Rows(); y++ {
		for x := 0; x < src.Cols(); x++ {
			assert.Equal(t, src.GetVecbAt(y, x), out.GetVecbAt(y, src.Cols()-1-x))
		}
	}
}

func TestApply_RotateZeroIsIdentity(t *testing.T) {
	for _, dims := range [][2]int{{40, 60}, {33, 17}} {
		src := randomMat(t, dims[0], dims[1])

		out, err := Apply(src, Rotate{Angle: 0})
		require.NoError(t, err)
		assert.Equal(t, src.ToBytes(), out.ToBytes())

		out.Close()
		src.Close()
	}
}

func TestApply_RotateKeepsCanvasAndFillsCorners(t *testing.T) {
	src := solidMat(40, 80, 200)
	defer src.Close()

	out, err := Apply(src, Rotate{Angle: 45})
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 80, out.Cols())
	assert.Equal(t, 40, out.Rows())
	assert.Equal(t, gocv.Vecb{0, 0, 0}, out.GetVecbAt(0, 0), "clipped corner shows black fill")
	assert.Equal(t, gocv.Vecb{200, 200, 200}, out.GetVecbAt(20, 40), "centre keeps content")
}

func TestApply_RotateOddSizeUsesFractionalCentre(t *testing.T) {
	src := randomMat(t, 3, 5)
	defer src.Close()

	out, err := Apply(src, Rotate{Angle: 180})
	require.NoError(t, err)
	defer out.Close()

	// Centre (2.5, 1.5): output (r, c) samples source (3-r, 5-c), so the
	// first row and column fall outside the source.
	for c := 0; c < 5; c++ {
		assert.Equal(t, gocv.Vecb{0, 0, 0}, out.GetVecbAt(0, c))
	}
	for r := 1; r < 3; r++ {
		assert.Equal(t, gocv.Vecb{0, 0, 0}, out.GetVecbAt(r, 0))
		for c := 1; c < 5; c++ {
			assert.Equal(t, src.GetVecbAt(3-r, 5-c), out.GetVecbAt(r, c), "pixel (%d,%d)", r, c)
		}
	}
}

func TestApply_NoneAndErrors(t *testing.T) {
	src := randomMat(t, 8, 8)
	defer src.Close()

	out, err := Apply(src, None{})
	require.NoError(t, err)
	assert.True(t, out.Empty())
	out.Close()

	_, err = Apply(src, Resize{Width: 0, Height: 5})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = Apply(src, nil)
	assert.Error(t, err)

	empty := gocv.NewMat()
	defer empty.Close()
	_, err = Apply(empty, Flip{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestDispatchIsStateless(t *testing.T) {
	// 640x480 upload, resize to 320x240, then choose Flip: the flip applies
	// to the original upload, not to the resized intermediate.
	src := randomMat(t, 480, 640)
	defer src.Close()

	resized, err := Apply(src, Resize{Width: 320, Height: 240})
	require.NoError(t, err)
	defer resized.Close()
	assert.Equal(t, 320, resized.Cols())
	assert.Equal(t, 240, resized.Rows())

	flipped, err := Apply(src, Flip{})
	require.NoError(t, err)
	defer flipped.Close()

	assert.Equal(t, 640, flipped.Cols())
	assert.Equal(t, 480, flipped.Rows())
	assert.Equal(t, src.GetVecbAt(10, 0), flipped.GetVecbAt(10, 639))
}

func TestBrightness(t *testing.T) {
	src := randomMat(t, 20, 30)
	defer src.Close()

	identity, err := Brightness(src, 1.0)
	require.NoError(t, err)
	assert.Equal(t, src.ToBytes(), identity.ToBytes())
	identity.Close()

	black, err := Brightness(src, 0.0)
	require.NoError(t, err)
	for _, b := range black.ToBytes() {
		require.Zero(t, b)
	}
	black.Close()

	// Values are bytes, so the range check is about saturation rather than
	// wrap-around: scaling by 3 must never make a bright pixel darker.
	bright, err := Brightness(src, 3.0)
	require.NoError(t, err)
	in, out := src.ToBytes(), bright.ToBytes()
	for i := range in {
		require.GreaterOrEqual(t, out[i], in[i])
	}
	bright.Close()
}

func TestBrightness_MidGrayClamps(t *testing.T) {
	src := solidMat(4, 4, 128)
	defer src.Close()

	out, err := Brightness(src, 2.0)
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, gocv.Vecb{255, 255, 255}, out.GetVecbAt(1, 1))

	half, err := Brightness(src, 0.5)
	require.NoError(t, err)
	defer half.Close()
	assert.Equal(t, gocv.Vecb{64, 64, 64}, half.GetVecbAt(1, 1))
}

func TestBrightness_RejectsOutOfRange(t *testing.T) {
	src := solidMat(2, 2, 10)
	defer src.Close()

	for _, f := range []float64{-0.1, 3.01} {
		_, err := Brightness(src, f)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	}
}

func TestGrayscale_ChannelsEqual(t *testing.T) {
	src := randomMat(t, 16, 16)
	defer src.Close()

	out, err := Grayscale(src)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 3, out.Channels())
	for y := 0; y < out.Rows(); y++ {
		for x := 0; x < out.Cols(); x++ {
			v := out.GetVecbAt(y, x)
			require.Equal(t, v[0], v[1])
			require.Equal(t, v[1], v[2])
		}
	}
}

func TestGrayscale_LuminanceWeights(t *testing.T) {
	// Pure red, green and blue in BGR order.
	red := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 255, 0), 1, 1, gocv.MatTypeCV8UC3)
	defer red.Close()
	green := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 255, 0, 0), 1, 1, gocv.MatTypeCV8UC3)
	defer green.Close()
	blue := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 1, 1, gocv.MatTypeCV8UC3)
	defer blue.Close()

	lum := func(m gocv.Mat) int {
		out, err := Grayscale(m)
		require.NoError(t, err)
		defer out.Close()
		return int(out.GetVecbAt(0, 0)[0])
	}

	assert.InDelta(t, 76, lum(red), 1)
	assert.InDelta(t, 150, lum(green), 1)
	assert.InDelta(t, 29, lum(blue), 1)
}

func TestPreview(t *testing.T) {
	small := randomMat(t, 30, 40)
	defer small.Close()

	img, err := Preview(small, 800)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	large := randomMat(t, 600, 1200)
	defer large.Close()

	img, err = Preview(large, 300)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())

	empty := gocv.NewMat()
	defer empty.Close()
	_, err = Preview(empty, 300)
	assert.Error(t, err)
}
