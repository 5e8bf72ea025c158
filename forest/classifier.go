/*
Package forest implements conditional inference forests: ensembles of
conditional inference trees fitted concurrently on resampled views of the
training data, whose class-probability estimates are averaged at
prediction time.
*/
package forest

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/m0hashi/citrees/tree"
)

/*
Classifier is a conditional inference forest for classification. It fits
a configured number of independently-seeded trees under a bounded worker
pool, each on its own bootstrap sample, and averages their predicted
class probabilities.

A Classifier must be created with NewClassifier and fitted with Fit
before predicting. A fit either succeeds completely or leaves the model
unchanged: the fitted state is only installed once every tree has been
built.
*/
type Classifier struct {
	cfg config

	// Estimators holds the fitted trees in tree-index order
	Estimators []*tree.Classifier
	// Classes is the ordered label set shared by every tree
	Classes []int
	// ClassDistribution holds the proportion of each class in the
	// training labels, ordered as Classes
	ClassDistribution []float64
	// FeatureImportances is the per-column mean-decrease-impurity score
	// summed over all trees and normalized to sum to 1
	FeatureImportances []float64
	// OOBScore is the out-of-bag accuracy estimate. Only set when the
	// forest was configured with ComputeOOB and Bootstrap.
	OOBScore float64
}

// NewClassifier returns a configured conditional inference forest
// classifier, or an error if a hyperparameter is out of range. If no
// options are passed, the returned Classifier will be equivalent to the
// following call:
//
//	clf, err := NewClassifier(Trees(100), Bootstrap(true), Bayes(true),
//		ClassWeight("balanced"), Alpha(0.05), MaxFeatures("sqrt"),
//		Permutations(200), Selector("pearson"), Seed(1))
func NewClassifier(options ...Option) (*Classifier, error) {
	cfg := defaultConfig()
	for _, opt := range options {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.seed == 0 {
		cfg.seed = uint64(time.Now().UnixNano())
	}
	return &Classifier{cfg: cfg}, nil
}

/*
Fit trains the ensemble on the n x p feature matrix X and the length-n
label slice y. Trees are fitted concurrently and independently: the only
state they share is the read-only training data. Tree i receives the seed
base*(i+1), both for its own column subsampling and for its bootstrap
draw, so a fit is reproducible regardless of worker scheduling.

Every tree is given the global class set explicitly, because a bootstrap
draw may omit a rare class and all probability vectors must share one
shape. If any tree fails, the first error is returned after the in-flight
workers finish and no partial model is installed.
*/
func (f *Classifier) Fit(X *mat.Dense, y []int) error {
	n, p := X.Dims()
	if n == 0 {
		return fmt.Errorf("fitting forest: feature matrix has no rows")
	}
	if n != len(y) {
		return fmt.Errorf("fitting forest: X has %d rows but y has %d labels", n, len(y))
	}
	classes := uniqueLabels(y)
	classDist := make([]float64, len(classes))
	for i, label := range classes {
		count := 0
		for _, v := range y {
			if v == label {
				count++
			}
		}
		classDist[i] = float64(count) / float64(n)
	}
	minClassP := floats.Min(classDist)

	f.cfg.logger.Logf("forest", "training ensemble with %d trees on %d samples", f.cfg.nEstimators, n)
	estimators := make([]*tree.Classifier, f.cfg.nEstimators)
	oobIdx := make([][]int, f.cfg.nEstimators)

	var g errgroup.Group
	g.SetLimit(f.workers())
	for i := 0; i < f.cfg.nEstimators; i++ {
		i := i
		g.Go(func() error {
			treeSeed := f.cfg.seed * uint64(i+1)
			opts := make([]tree.Option, 0, len(f.cfg.treeOpts)+1)
			opts = append(opts, f.cfg.treeOpts...)
			opts = append(opts, tree.Seed(treeSeed))
			clf, err := tree.NewClassifier(opts...)
			if err != nil {
				return err
			}
			f.cfg.logger.Logf("forest", "building tree %d/%d", i+1, f.cfg.nEstimators)
			if f.cfg.bootstrap {
				sampled, unsampled := Sample(treeSeed, y, f.cfg.classWeight, f.cfg.bayes, minClassP)
				Xs, ys := takeRows(X, y, sampled)
				if err := clf.FitClasses(Xs, ys, classes); err != nil {
					return fmt.Errorf("fitting tree %d: %v", i, err)
				}
				oobIdx[i] = unsampled
			} else {
				if err := clf.FitClasses(X, y, classes); err != nil {
					return fmt.Errorf("fitting tree %d: %v", i, err)
				}
			}
			estimators[i] = clf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	importances := make([]float64, p)
	for _, t := range estimators {
		floats.Add(importances, t.FeatureImportances)
	}
	if sum := floats.Sum(importances); sum > 0 {
		floats.Scale(1/sum, importances)
	}

	f.Estimators = estimators
	f.Classes = classes
	f.ClassDistribution = classDist
	f.FeatureImportances = importances
	if f.cfg.computeOOB && f.cfg.bootstrap {
		f.OOBScore = oobAccuracy(estimators, oobIdx, X, y, classes)
	}
	return nil
}

/*
PredictProba returns the n x k matrix of ensemble class probabilities for
the rows of X, with columns ordered as Classes. One concurrent task per
tree computes that tree's full prediction matrix and adds it into a
shared accumulator; a mutex guards only the additive update, not the
prediction work, to keep contention low. After all tasks join the
accumulator is divided by the number of trees.
*/
func (f *Classifier) PredictProba(X *mat.Dense) (*mat.Dense, error) {
	if f.Estimators == nil {
		return nil, fmt.Errorf("predicting: forest has not been fitted")
	}
	n, _ := X.Dims()
	f.cfg.logger.Logf("forest", "predicting labels for %d samples", n)
	out := mat.NewDense(n, len(f.Classes), nil)
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(f.workers())
	for _, est := range f.Estimators {
		est := est
		g.Go(func() error {
			proba, err := est.PredictProba(X)
			if err != nil {
				return err
			}
			mu.Lock()
			out.Add(out, proba)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.Scale(1/float64(len(f.Estimators)), out)
	return out, nil
}

// Predict returns the most probable class for each row of X. Ties are
// broken in favor of the lowest class index.
func (f *Classifier) Predict(X *mat.Dense) ([]int, error) {
	proba, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, _ := proba.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = f.Classes[floats.MaxIdx(proba.RawRowView(i))]
	}
	return out, nil
}

func (f *Classifier) workers() int {
	if f.cfg.workers < 1 {
		return runtime.NumCPU()
	}
	return f.cfg.workers
}

// oobAccuracy estimates the forest's accuracy from out-of-bag
// predictions: each tree votes only on the rows its bootstrap draw left
// out, and rows that received at least one vote are scored against their
// true label.
func oobAccuracy(estimators []*tree.Classifier, oobIdx [][]int, X *mat.Dense, y []int, classes []int) float64 {
	n, _ := X.Dims()
	votes := mat.NewDense(n, len(classes), nil)
	voted := make([]bool, n)
	for t, est := range estimators {
		for _, i := range oobIdx[t] {
			row := votes.RawRowView(i)
			floats.Add(row, est.PredictRow(X.RawRowView(i)))
			voted[i] = true
		}
	}
	correct, scored := 0, 0
	for i := 0; i < n; i++ {
		if !voted[i] {
			continue
		}
		scored++
		if classes[floats.MaxIdx(votes.RawRowView(i))] == y[i] {
			correct++
		}
	}
	if scored == 0 {
		return 0
	}
	return float64(correct) / float64(scored)
}

// takeRows materializes the rows of X and entries of y selected by idx.
func takeRows(X *mat.Dense, y []int, idx []int) (*mat.Dense, []int) {
	_, p := X.Dims()
	data := make([]float64, 0, len(idx)*p)
	labels := make([]int, len(idx))
	for j, i := range idx {
		data = append(data, X.RawRowView(i)...)
		labels[j] = y[i]
	}
	return mat.NewDense(len(idx), p, data), labels
}

// uniqueLabels returns the distinct values of y in ascending order.
func uniqueLabels(y []int) []int {
	seen := make(map[int]bool)
	var labels []int
	for _, v := range y {
		if !seen[v] {
			seen[v] = true
			labels = append(labels, v)
		}
	}
	sort.Ints(labels)
	return labels
}
