package stats

import (
	"math"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

/*
PermutationTestPcor estimates the probability that an association between
x and y at least as strong as the observed Pearson correlation arises by
chance. pooled must be the concatenation of x and y; each trial shuffles
it and splits it back into two halves whose correlation is compared
against the observed one.

The returned p-value is (1 + hits) / (1 + trials), so it is exactly 1
when trials is 0 and strictly positive otherwise. The seed fully
determines the result.
*/
func PermutationTestPcor(x, y, pooled []float64, trials int, seed uint64) float64 {
	return permutationTest(PearsonCorr, x, y, pooled, trials, seed)
}

// PermutationTestDcor is PermutationTestPcor with the distance correlation
// as the association measure.
func PermutationTestDcor(x, y, pooled []float64, trials int, seed uint64) float64 {
	return permutationTest(DistanceCorr, x, y, pooled, trials, seed)
}

/*
PermutationTestDcorParallel computes the same p-value as
PermutationTestDcor but partitions the trials across workers goroutines,
each shuffling with its own seed derived from the given one. It exists
for throughput on large samples, where the quadratic cost of the distance
correlation makes serial trials too slow. If workers is less than 1,
runtime.NumCPU is used.
*/
func PermutationTestDcorParallel(x, y, pooled []float64, trials, workers int, seed uint64) float64 {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > trials {
		workers = trials
	}
	if workers <= 1 {
		return PermutationTestDcor(x, y, pooled, trials, seed)
	}
	observed := math.Abs(DistanceCorr(x, y))
	if math.IsNaN(observed) {
		return math.NaN()
	}
	hits := make([]int, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		share := trials / workers
		if w < trials%workers {
			share++
		}
		g.Go(func() error {
			hits[w] = permutationHits(DistanceCorr, observed, len(x), pooled, share, seed+uint64(w))
			return nil
		})
	}
	// the workers cannot fail; Wait only joins them
	g.Wait()
	total := 0
	for _, h := range hits {
		total += h
	}
	return float64(1+total) / float64(1+trials)
}

func permutationTest(corr func(x, y []float64) float64, x, y, pooled []float64, trials int, seed uint64) float64 {
	observed := math.Abs(corr(x, y))
	// a NaN statistic (e.g. a constant column) can never test significant
	if math.IsNaN(observed) {
		return math.NaN()
	}
	hits := permutationHits(corr, observed, len(x), pooled, trials, seed)
	return float64(1+hits) / float64(1+trials)
}

// permutationHits counts the trials on which a shuffled split of pooled
// shows an association at least as strong as observed.
func permutationHits(corr func(x, y []float64) float64, observed float64, nx int, pooled []float64, trials int, seed uint64) int {
	rng := rand.New(rand.NewSource(seed))
	buf := make([]float64, len(pooled))
	copy(buf, pooled)
	hits := 0
	for b := 0; b < trials; b++ {
		rng.Shuffle(len(buf), func(i, j int) {
			buf[i], buf[j] = buf[j], buf[i]
		})
		if math.Abs(corr(buf[:nx], buf[nx:])) >= observed {
			hits++
		}
	}
	return hits
}
