package tree

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

/*
Classifier is a conditional inference tree for classification. Unlike a
CART-style tree, which splits wherever impurity improves, a conditional
inference tree first runs a permutation test for each candidate column
and only splits when the strongest association is statistically
significant at the alpha level. This gates spurious splits and gives
every internal node an interpretable p-value.

A Classifier must be created with NewClassifier and fitted with Fit or
FitClasses before predicting. Once fitted it is immutable and safe for
concurrent prediction.
*/
type Classifier struct {
	cfg      config
	maxFeats int
	// increments once per internal call across the whole tree so every
	// split draws a distinct, reproducible column subset
	splitCounter uint64

	// Root of the fitted tree
	Root *Node
	// Classes is the ordered label set the probability vectors refer to
	Classes []int
	// FeatureImportances holds the mean-decrease-impurity score per
	// column, normalized to sum to 1 when any split reduced impurity
	FeatureImportances []float64
}

// NewClassifier returns a configured conditional inference tree
// classifier, or an error if a hyperparameter is out of range. If no
// options are passed, the returned Classifier will be equivalent to the
// following call:
//
//	clf, err := NewClassifier(Alpha(0.05), MinSamplesSplit(2), MaxDepth(-1),
//		MaxFeatures("all"), Permutations(100), Selector("pearson"),
//		EarlyStopping(false), Seed(1))
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

// Fit trains the tree on the n x p feature matrix X and the length-n
// label slice y, inferring the class set from y.
func (t *Classifier) Fit(X *mat.Dense, y []int) error {
	return t.FitClasses(X, y, nil)
}

/*
FitClasses trains the tree on X and y using the given ordered class set.
A nil classes slice means the distinct labels of y, in ascending order.

Passing the class set explicitly matters when fitting on a bootstrap
sample that may omit a rare class: every tree in an ensemble must still
produce probability vectors of the same shape.
*/
func (t *Classifier) FitClasses(X *mat.Dense, y []int, classes []int) error {
	n, p := X.Dims()
	if n == 0 {
		return fmt.Errorf("fitting tree: feature matrix has no rows")
	}
	if n != len(y) {
		return fmt.Errorf("fitting tree: X has %d rows but y has %d labels", n, len(y))
	}
	if classes == nil {
		classes = uniqueLabels(y)
	}
	t.Classes = classes
	t.maxFeats = t.cfg.resolveMaxFeatures(p)
	t.FeatureImportances = make([]float64, p)
	t.splitCounter = 0
	t.cfg.logger.Logf("tree", "building root node with %d samples", n)
	t.Root = t.buildTree(X, y, 0)
	if sum := floats.Sum(t.FeatureImportances); sum > 0 {
		floats.Scale(1/sum, t.FeatureImportances)
	}
	return nil
}

/*
buildTree recursively grows the tree. Each call either produces an
internal node, when the node is large and shallow enough, a candidate
column tests significant and the split leaves both children non-empty,
or resolves to a leaf holding the class frequencies of y. The degenerate
outcomes (no significant column, an empty child) are expected control
flow, not errors.
*/
func (t *Classifier) buildTree(X *mat.Dense, y []int, depth int) *Node {
	n, p := X.Dims()
	if n > t.cfg.minSamplesSplit && (t.cfg.maxDepth < 0 || depth < t.cfg.maxDepth) {
		// a split-local rng keeps the column draw reproducible as a pure
		// function of (seed, splitCounter)
		t.splitCounter++
		rng := rand.New(rand.NewSource(t.cfg.seed * t.splitCounter))
		cols := rng.Perm(p)[:t.maxFeats]
		col, pval := t.selectColumn(X, y, n, cols)
		if col >= 0 && pval < t.cfg.alpha {
			impurity, threshold, left, right := t.split(X, y, n, col)
			if left.n > 0 && right.n > 0 {
				t.cfg.logger.Logf("tree", "building left subtree with %d samples at depth %d", left.n, depth+1)
				leftChild := t.buildTree(left.X, left.y, depth+1)
				t.cfg.logger.Logf("tree", "building right subtree with %d samples at depth %d", right.n, depth+1)
				rightChild := t.buildTree(right.X, right.y, depth+1)
				return &Node{
					Col:       col,
					PValue:    pval,
					Threshold: threshold,
					Impurity:  impurity,
					Left:      leftChild,
					Right:     rightChild,
				}
			}
		}
	}
	t.cfg.logger.Logf("tree", "leaf node reached at depth %d", depth)
	return &Node{Value: t.estimateProba(y)}
}

// estimateProba returns the per-class frequency vector of y over the
// tree's class set.
func (t *Classifier) estimateProba(y []int) []float64 {
	probs := make([]float64, len(t.Classes))
	if len(y) == 0 {
		return probs
	}
	for i, label := range t.Classes {
		count := 0
		for _, v := range y {
			if v == label {
				count++
			}
		}
		probs[i] = float64(count) / float64(len(y))
	}
	return probs
}

// PredictRow walks the tree for a single sample and returns the
// class-probability estimate of the leaf it reaches. It is pure and safe
// for concurrent invocation on a fitted tree.
func (t *Classifier) PredictRow(sample []float64) []float64 {
	n := t.Root
	for !n.Leaf() {
		if sample[n.Col] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// PredictProba returns the n x k matrix of class probabilities for the
// rows of X, with columns ordered as Classes.
func (t *Classifier) PredictProba(X *mat.Dense) (*mat.Dense, error) {
	if t.Root == nil {
		return nil, fmt.Errorf("predicting: tree has not been fitted")
	}
	n, _ := X.Dims()
	t.cfg.logger.Logf("tree", "predicting labels for %d samples", n)
	out := mat.NewDense(n, len(t.Classes), nil)
	for i := 0; i < n; i++ {
		out.SetRow(i, t.PredictRow(X.RawRowView(i)))
	}
	return out, nil
}

// Predict returns the most probable class for each row of X. Ties are
// broken in favor of the lowest class index.
func (t *Classifier) Predict(X *mat.Dense) ([]int, error) {
	proba, err := t.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return argmaxClasses(proba, t.Classes), nil
}

func (t *Classifier) String() string {
	if t.Root == nil {
		return "<unfitted tree>"
	}
	return t.Root.String()
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

// argmaxClasses maps every row of a probability matrix to the class with
// the highest probability, first class winning ties.
func argmaxClasses(proba *mat.Dense, classes []int) []int {
	n, _ := proba.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = classes[floats.MaxIdx(proba.RawRowView(i))]
	}
	return out
}
