package rules

import "math"

// VarianceMode selects which standard deviation estimator the anomaly rule
// uses when standardizing scores.
type VarianceMode string

const (
	VariancePopulation VarianceMode = "population"
	VarianceSample     VarianceMode = "sample"
)

// slidingWindow is a bounded FIFO window of recent float64 observations.
// Once the window is full, pushing a new value evicts the oldest one.
type slidingWindow struct {
	values   []float64
	capacity int
}

// newSlidingWindow creates an empty window holding at most capacity values.
func newSlidingWindow(capacity int) *slidingWindow {
	return &slidingWindow{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a value, evicting the oldest one if the window is full.
func (w *slidingWindow) Push(v float64) {
	if len(w.values) == w.capacity {
		w.values = w.values[1:]
	}
	w.values = append(w.values, v)
}

// Len returns the number of values currently held.
func (w *slidingWindow) Len() int {
	return len(w.values)
}

// mean returns the arithmetic mean of the window contents.
func (w *slidingWindow) mean() float64 {
	var sum float64
	for _, v := range w.values {
		sum += v
	}
	return sum / float64(len(w.values))
}

// stdDev returns the standard deviation of the window contents using the
// given estimator. It assumes the window holds at least two values.
func (w *slidingWindow) stdDev(mode VarianceMode) float64 {
	mean := w.mean()

	var sumSquares float64
	for _, v := range w.values {
		d := v - mean
		sumSquares += d * d
	}

	n := float64(len(w.values))
	if mode == VarianceSample {
		n--
	}

	return math.Sqrt(sumSquares / n)
}

// ZScore standardizes v against the current window contents. It returns
// ok=false when the score is undefined: fewer than two samples, or a window
// with zero variance (all values equal). The caller must suppress the rule
// in that case instead of dividing by zero.
func (w *slidingWindow) ZScore(v float64, mode VarianceMode) (float64, bool) {
	if len(w.values) < 2 {
		return 0, false
	}

	std := w.stdDev(mode)
	if std == 0 {
		return 0, false
	}

	return (v - w.mean()) / std, true
}
