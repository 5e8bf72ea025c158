package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// partition is one side of a binary split: the rows of the parent whose
// selected-column value fell on that side of the threshold.
type partition struct {
	X *mat.Dense
	y []int
	n int
}

/*
split finds the optimal binary threshold on the chosen column, partitions
the rows into a left part (value <= threshold) and a right part
(value > threshold), and returns the achieved impurity decrease, the
threshold and both partitions.

The impurity decrease is the parent gini impurity minus the children's
impurities weighted by their share of n. It is accumulated into
FeatureImportances for the column (mean-decrease-impurity accounting),
additively across every split on that column during one fit.
*/
func (t *Classifier) split(X *mat.Dense, y []int, n, col int) (float64, float64, partition, partition) {
	t.cfg.logger.Logf("splitter", "testing splits on feature %d", col)
	_, p := X.Dims()
	x := mat.Col(nil, col, X)
	threshold := bestThreshold(x, y, t.Classes, 1)

	var leftData, rightData []float64
	var leftY, rightY []int
	for i := 0; i < n; i++ {
		if x[i] <= threshold {
			leftData = append(leftData, X.RawRowView(i)...)
			leftY = append(leftY, y[i])
		} else {
			rightData = append(rightData, X.RawRowView(i)...)
			rightY = append(rightY, y[i])
		}
	}
	left := partition{y: leftY, n: len(leftY)}
	right := partition{y: rightY, n: len(rightY)}
	if left.n > 0 {
		left.X = mat.NewDense(left.n, p, leftData)
	}
	if right.n > 0 {
		right.X = mat.NewDense(right.n, p, rightData)
	}

	parentImpurity := gini(y, t.Classes)
	leftImpurity := gini(leftY, t.Classes) * float64(left.n) / float64(n)
	rightImpurity := gini(rightY, t.Classes) * float64(right.n) / float64(n)
	decrease := parentImpurity - (leftImpurity + rightImpurity)
	t.FeatureImportances[col] += decrease

	return decrease, threshold, left, right
}

/*
bestThreshold returns the split point on x minimizing the weighted gini
impurity of the two resulting label partitions, equivalent to fitting a
depth-1 tree on the single column. Candidate thresholds are the midpoints
between consecutive distinct sorted values; partitions smaller than
minLeaf are not considered. When no usable split exists (a constant
column, or too few samples) the returned threshold is -Inf, so the
eventual left partition is empty and the caller resolves to a leaf.
*/
func bestThreshold(x []float64, y []int, classes []int, minLeaf int) float64 {
	n := len(x)
	noSplit := math.Inf(-1)
	if n < 2 {
		return noSplit
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return x[order[i]] < x[order[j]]
	})

	classIndex := make(map[int]int, len(classes))
	for i, label := range classes {
		classIndex[label] = i
	}
	countsLeft := make([]int, len(classes))
	countsRight := make([]int, len(classes))
	for _, label := range y {
		countsRight[classIndex[label]]++
	}

	best := math.Inf(1)
	threshold := noSplit
	nLeft := 0
	for i := 0; i < n-1; i++ {
		countsLeft[classIndex[y[order[i]]]]++
		countsRight[classIndex[y[order[i]]]]--
		nLeft++
		if x[order[i+1]] <= x[order[i]]+1e-7 {
			continue
		}
		if nLeft < minLeaf || n-nLeft < minLeaf {
			continue
		}
		weighted := giniFromCounts(countsLeft, nLeft)*float64(nLeft)/float64(n) +
			giniFromCounts(countsRight, n-nLeft)*float64(n-nLeft)/float64(n)
		if weighted < best {
			best = weighted
			threshold = (x[order[i]] + x[order[i+1]]) / 2
		}
	}
	return threshold
}

// gini returns the gini impurity of y over the given class set. An empty
// slice has zero impurity.
func gini(y []int, classes []int) float64 {
	if len(y) == 0 {
		return 0
	}
	impurity := 1.0
	for _, label := range classes {
		count := 0
		for _, v := range y {
			if v == label {
				count++
			}
		}
		p := float64(count) / float64(len(y))
		impurity -= p * p
	}
	return impurity
}

func giniFromCounts(counts []int, n int) float64 {
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}
