/*
Package stats provides the correlation measures and permutation tests used
to select splitting features for conditional inference trees.

Two association measures are available: the Pearson correlation, which
captures linear association, and the distance correlation, which captures
arbitrary dependence. Each comes with a permutation test that estimates
the probability of the observed association arising by chance, by
repeatedly shuffling the pooled observations and recomputing the measure.
*/
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PearsonCorr returns the Pearson correlation coefficient between x and y.
func PearsonCorr(x, y []float64) float64 {
	return stat.Correlation(x, y, nil)
}

/*
DistanceCorr returns the distance correlation between x and y, a measure
in [0, 1] that is zero if and only if x and y are independent (in the
population). It is computed from the double-centered pairwise distance
matrices of the two samples.
*/
func DistanceCorr(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}
	a := centeredDistances(x)
	b := centeredDistances(y)
	var dcov, dvarX, dvarY float64
	for i := range a {
		dcov += a[i] * b[i]
		dvarX += a[i] * a[i]
		dvarY += b[i] * b[i]
	}
	nn := float64(n * n)
	dcov /= nn
	dvarX /= nn
	dvarY /= nn
	denom := math.Sqrt(dvarX * dvarY)
	if denom <= 0 || dcov <= 0 {
		return 0
	}
	return math.Sqrt(dcov / denom)
}

// centeredDistances returns the flattened n x n double-centered distance
// matrix of v: every entry |v[i]-v[j]| minus its row and column means,
// plus the grand mean.
func centeredDistances(v []float64) []float64 {
	n := len(v)
	d := make([]float64, n*n)
	rowMeans := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dist := math.Abs(v[i] - v[j])
			d[i*n+j] = dist
			rowMeans[i] += dist
		}
	}
	var grandMean float64
	for i := range rowMeans {
		rowMeans[i] /= float64(n)
		grandMean += rowMeans[i]
	}
	grandMean /= float64(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d[i*n+j] += grandMean - rowMeans[i] - rowMeans[j]
		}
	}
	return d
}
