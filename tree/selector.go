package tree

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/m0hashi/citrees/stats"
)

// Sample counts at or above this size use the parallel distance
// correlation permutation test. Same statistics, different execution
// strategy.
const parallelDcorThreshold = 500

/*
selectColumn returns the candidate column most associated with y together
with its permutation-test p-value, examining the candidates in the order
given. The best column is tracked with a strict less-than comparison, so
the first column examined wins ties. When early stopping is enabled the
selector returns as soon as the running best p-value drops below alpha.

If cols is empty, or no column produces a finite p-value, the returned
column is -1 and the p-value +Inf.
*/
func (t *Classifier) selectColumn(X *mat.Dense, y []int, n int, cols []int) (int, float64) {
	t.cfg.logger.Logf("selector", "testing %d features", len(cols))
	yf := labelVector(y)
	switch t.cfg.selector {
	case SelectorDistance:
		return t.selectDcor(X, yf, n, cols)
	case SelectorHybrid:
		return t.selectHybrid(X, yf, n, cols)
	default:
		return t.selectPcor(X, yf, cols)
	}
}

// selectPcor selects among cols using permutation tests on the Pearson
// correlation.
func (t *Classifier) selectPcor(X *mat.Dense, y []float64, cols []int) (int, float64) {
	bestCol, bestPval := -1, math.Inf(1)
	for _, col := range cols {
		x := mat.Col(nil, col, X)
		pval := stats.PermutationTestPcor(x, y, pooled(x, y), t.cfg.permutations, t.cfg.seed)
		if pval < bestPval {
			bestCol, bestPval = col, pval
			if t.cfg.earlyStopping && bestPval < t.cfg.alpha {
				t.cfg.logger.Logf("selector", "early stopping")
				return bestCol, bestPval
			}
		}
	}
	return bestCol, bestPval
}

// selectDcor selects among cols using permutation tests on the distance
// correlation, switching to the parallel test variant on large samples.
func (t *Classifier) selectDcor(X *mat.Dense, y []float64, n int, cols []int) (int, float64) {
	bestCol, bestPval := -1, math.Inf(1)
	for _, col := range cols {
		x := mat.Col(nil, col, X)
		pval := t.dcorPval(x, y, n)
		if pval < bestPval {
			bestCol, bestPval = col, pval
			if t.cfg.earlyStopping && bestPval < t.cfg.alpha {
				t.cfg.logger.Logf("selector", "early stopping")
				return bestCol, bestPval
			}
		}
	}
	return bestCol, bestPval
}

/*
selectHybrid measures both raw correlation magnitudes for each column and
runs the permutation test only on whichever is larger; equal magnitudes
favor the Pearson test, which is the cheaper of the two.
*/
func (t *Classifier) selectHybrid(X *mat.Dense, y []float64, n int, cols []int) (int, float64) {
	bestCol, bestPval := -1, math.Inf(1)
	for _, col := range cols {
		x := mat.Col(nil, col, X)
		pearson := math.Abs(stats.PearsonCorr(x, y))
		distance := stats.DistanceCorr(x, y)
		var pval float64
		if pearson >= distance {
			pval = stats.PermutationTestPcor(x, y, pooled(x, y), t.cfg.permutations, t.cfg.seed)
		} else {
			pval = t.dcorPval(x, y, n)
		}
		if pval < bestPval {
			bestCol, bestPval = col, pval
			if t.cfg.earlyStopping && bestPval < t.cfg.alpha {
				t.cfg.logger.Logf("selector", "early stopping")
				return bestCol, bestPval
			}
		}
	}
	return bestCol, bestPval
}

func (t *Classifier) dcorPval(x, y []float64, n int) float64 {
	if n < parallelDcorThreshold {
		return stats.PermutationTestDcor(x, y, pooled(x, y), t.cfg.permutations, t.cfg.seed)
	}
	return stats.PermutationTestDcorParallel(x, y, pooled(x, y), t.cfg.permutations, t.cfg.workers, t.cfg.seed)
}

// labelVector converts integer labels to the float vector the
// correlation measures operate on.
func labelVector(y []int) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = float64(v)
	}
	return out
}

// pooled concatenates x and y for the permutation tests.
func pooled(x, y []float64) []float64 {
	out := make([]float64, 0, len(x)+len(y))
	out = append(out, x...)
	return append(out, y...)
}
