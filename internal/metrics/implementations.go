package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// MSE is the mean squared difference per channel value.
type MSE struct{}

func NewMSE() *MSE { return &MSE{} }

func (m *MSE) Name() string { return "mse" }

func (m *MSE) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := checkComparable(original, processed); err != nil {
		return 0, err
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(original, processed, &diff)

	norm := gocv.Norm(diff, gocv.NormL2)
	total := float64(original.Rows() * original.Cols() * original.Channels())

	return norm * norm / total, nil
}

// PSNR implements Peak Signal-to-Noise Ratio for 8-bit images. Identical
// inputs give +Inf.
type PSNR struct {
	mse MSE
}

func NewPSNR() *PSNR { return &PSNR{} }

func (p *PSNR) Name() string { return "psnr" }

func (p *PSNR) Calculate(original, processed gocv.Mat) (float64, error) {
	mse, err := p.mse.Calculate(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}

	maxVal := 255.0
	return 20 * math.Log10(maxVal/math.Sqrt(mse)), nil
}

// MeanIntensity is the average channel value of the processed image. The
// original is only checked for emptiness.
type MeanIntensity struct{}

func NewMeanIntensity() *MeanIntensity { return &MeanIntensity{} }

func (m *MeanIntensity) Name() string { return "mean_intensity" }

func (m *MeanIntensity) Calculate(_, processed gocv.Mat) (float64, error) {
	if processed.Empty() {
		return 0, fmt.Errorf("empty image")
	}

	mean := processed.Mean()
	values := []float64{mean.Val1, mean.Val2, mean.Val3, mean.Val4}

	sum := 0.0
	for i := 0; i < processed.Channels() && i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(min(processed.Channels(), len(values))), nil
}

func checkComparable(original, processed gocv.Mat) error {
	if original.Empty() || processed.Empty() {
		return fmt.Errorf("empty images")
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() {
		return fmt.Errorf("image dimensions mismatch")
	}
	if original.Channels() != processed.Channels() {
		return fmt.Errorf("channel count mismatch")
	}
	return nil
}
