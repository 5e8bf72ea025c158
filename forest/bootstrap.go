package forest

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Class-weight policies for bootstrap sampling.
const (
	// ClassWeightNone samples uniformly over all rows.
	ClassWeightNone = ""
	// ClassWeightBalanced samples the same number of rows per class,
	// floor(minClassP * n) each.
	ClassWeightBalanced = "balanced"
	// ClassWeightStratify samples each class from its own rows,
	// preserving the class counts of y.
	ClassWeightStratify = "stratify"
)

/*
Sample draws a bootstrap sample over the rows of a training set with
labels y and returns the sampled indices together with the unsampled
(out-of-bag) indices. The sampled part drives a tree's fit; the unsampled
part is only useful for out-of-bag diagnostics.

Three policies are supported. ClassWeightNone draws n rows uniformly with
replacement. ClassWeightStratify draws, per class, as many rows with
replacement as the class has, keeping class proportions intact.
ClassWeightBalanced draws floor(minClassP*n) rows per class, equalizing
class representation; minClassP is the proportion of the rarest class.

If bayes is set, the uniform replacement weights are replaced with
Bayesian-bootstrap weights: a Dirichlet(1,...,1) vector randomizing the
sampling intensity of each row as well as its membership, which improves
ensemble diversity.

The seed fully determines the draw: the same seed always produces
identical index sets.
*/
func Sample(seed uint64, y []int, classWeight string, bayes bool, minClassP float64) (sampled, unsampled []int) {
	rng := rand.New(rand.NewSource(seed))
	n := len(y)
	switch classWeight {
	case ClassWeightStratify:
		return perClassSample(rng, y, bayes, -1)
	case ClassWeightBalanced:
		size := int(math.Floor(minClassP * float64(n)))
		return perClassSample(rng, y, bayes, size)
	default:
		pool := make([]int, n)
		for i := range pool {
			pool[i] = i
		}
		var weights []float64
		if bayes {
			weights = bayesBootWeights(rng, n)
		}
		sampled = drawWithReplacement(rng, pool, n, weights)
		return sampled, difference(pool, sampled)
	}
}

// perClassSample draws a bootstrap sample class by class, in ascending
// label order. size < 0 means each class's own count.
func perClassSample(rng *rand.Rand, y []int, bayes bool, size int) (sampled, unsampled []int) {
	for _, label := range uniqueLabels(y) {
		var pool []int
		for i, v := range y {
			if v == label {
				pool = append(pool, i)
			}
		}
		sz := size
		if sz < 0 {
			sz = len(pool)
		}
		var weights []float64
		if bayes {
			weights = bayesBootWeights(rng, len(pool))
		}
		drawn := drawWithReplacement(rng, pool, sz, weights)
		sampled = append(sampled, drawn...)
		unsampled = append(unsampled, difference(pool, drawn)...)
	}
	return sampled, unsampled
}

// bayesBootWeights returns a Dirichlet(1,...,1) weight vector over n
// rows, the random convex-combination weights of the Bayesian bootstrap.
func bayesBootWeights(rng *rand.Rand, n int) []float64 {
	alpha := make([]float64, n)
	for i := range alpha {
		alpha[i] = 1
	}
	return distmv.NewDirichlet(alpha, rng).Rand(nil)
}

// drawWithReplacement draws size indices from pool with replacement,
// uniformly when weights is nil and according to weights otherwise.
func drawWithReplacement(rng *rand.Rand, pool []int, size int, weights []float64) []int {
	out := make([]int, size)
	if weights == nil {
		for i := range out {
			out[i] = pool[rng.Intn(len(pool))]
		}
		return out
	}
	cat := distuv.NewCategorical(weights, rng)
	for i := range out {
		out[i] = pool[int(cat.Rand())]
	}
	return out
}

// difference returns the members of pool absent from drawn, in pool
// order.
func difference(pool, drawn []int) []int {
	taken := make(map[int]bool, len(drawn))
	for _, i := range drawn {
		taken[i] = true
	}
	var out []int
	for _, i := range pool {
		if !taken[i] {
			out = append(out, i)
		}
	}
	return out
}
