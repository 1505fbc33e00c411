package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindow_Push(t *testing.T) {
	t.Run("evicts the oldest value once full", func(t *testing.T) {
		w := newSlidingWindow(3)

		w.Push(1)
		w.Push(2)
		w.Push(3)
		w.Push(4)

		assert.Equal(t, 3, w.Len())
		assert.Equal(t, []float64{2, 3, 4}, w.values)
	})
}

func TestSlidingWindow_ZScore(t *testing.T) {
	t.Run("is undefined with fewer than two samples", func(t *testing.T) {
		w := newSlidingWindow(4)
		w.Push(100)

		_, ok := w.ZScore(500, VariancePopulation)
		assert.False(t, ok)
	})

	t.Run("is undefined when every sample is identical", func(t *testing.T) {
		w := newSlidingWindow(4)
		w.Push(100)
		w.Push(100)
		w.Push(100)

		_, ok := w.ZScore(500, VariancePopulation)
		assert.False(t, ok)
	})

	t.Run("standardizes against the population deviation", func(t *testing.T) {
		w := newSlidingWindow(4)
		for _, v := range []float64{100, 102, 99, 101} {
			w.Push(v)
		}

		// mean 100.5, population std ~1.118
		score, ok := w.ZScore(500, VariancePopulation)
		require.True(t, ok)
		assert.InDelta(t, 357.3, score, 0.1)
	})

	t.Run("sample deviation yields a smaller score than population", func(t *testing.T) {
		w := newSlidingWindow(4)
		for _, v := range []float64{100, 102, 99, 101} {
			w.Push(v)
		}

		population, ok := w.ZScore(500, VariancePopulation)
		require.True(t, ok)

		sample, ok := w.ZScore(500, VarianceSample)
		require.True(t, ok)

		assert.Less(t, sample, population)
	})
}
