// Image comparison metrics shown next to edited results
package metrics

import "gocv.io/x/gocv"

// Metric compares a processed image against its original.
type Metric interface {
	Calculate(original, processed gocv.Mat) (float64, error)
	Name() string
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with MSE, PSNR and mean intensity registered.
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.Register(NewMSE())
	e.Register(NewPSNR())
	e.Register(NewMeanIntensity())
	return e
}

func (e *Evaluator) Register(metric Metric) {
	e.metrics[metric.Name()] = metric
}

// CalculateAll runs every metric, leaving out those that fail (for example
// on mismatched dimensions).
func (e *Evaluator) CalculateAll(original, processed gocv.Mat) map[string]float64 {
	results := make(map[string]float64)
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}
	return results
}
