package tree

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/m0hashi/citrees"
)

/*
separableData builds a two-column dataset whose first column separates the
classes perfectly: values at or below 0.4 carry label 0, values at or
above 0.6 carry label 1. The second column alternates 0 and 1 regardless
of the label, so it carries no association with y.
*/
func separableData(perClass int) (*mat.Dense, []int) {
	n := 2 * perClass
	data := make([]float64, 0, 2*n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		var v float64
		if i < perClass {
			v = 0.4 * float64(i) / float64(perClass)
		} else {
			v = 0.6 + 0.4*float64(i-perClass)/float64(perClass)
			y[i] = 1
		}
		data = append(data, v, float64(i%2))
	}
	return mat.NewDense(n, 2, data), y
}

func TestNewClassifierValidation(t *testing.T) {
	cases := []struct {
		name    string
		options []Option
	}{
		{"zero alpha", []Option{Alpha(0)}},
		{"alpha above one", []Option{Alpha(1.5)}},
		{"negative permutations", []Option{Permutations(-1)}},
		{"unknown selector", []Option{Selector("spearman")}},
		{"non-numeric max features", []Option{MaxFeatures("most")}},
		{"zero max features", []Option{MaxFeatures("0")}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			clf, err := NewClassifier(c.options...)
			assert.Nil(t, clf)
			assert.Error(t, err)
		})
	}

	clf, err := NewClassifier()
	require.NoError(t, err)
	assert.NotNil(t, clf)
}

func TestClassifierFitPerfectSeparation(t *testing.T) {
	X, y := separableData(20)
	clf, err := NewClassifier(Permutations(99), Seed(7))
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	root := clf.Root
	require.NotNil(t, root)
	require.False(t, root.Leaf(), "the separating column should produce a split")
	assert.Equal(t, 0, root.Col)
	assert.Greater(t, root.Threshold, 0.4)
	assert.Less(t, root.Threshold, 0.6)
	assert.Less(t, root.PValue, 0.05)
	assert.True(t, root.Left.Leaf(), "pure children stop splitting")
	assert.True(t, root.Right.Leaf())
	assert.Equal(t, []float64{1, 0}, root.Left.Value)
	assert.Equal(t, []float64{0, 1}, root.Right.Value)

	assert.Equal(t, []int{0, 1}, clf.Classes)
	assert.Equal(t, []float64{1, 0}, clf.FeatureImportances, "only the separating column gains importance")

	predicted, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, predicted)
}

func TestClassifierPredictProba(t *testing.T) {
	X, y := separableData(15)
	clf, err := NewClassifier(Permutations(99), Seed(3))
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	proba, err := clf.PredictProba(X)
	require.NoError(t, err)
	n, k := proba.Dims()
	assert.Equal(t, len(y), n)
	assert.Equal(t, len(clf.Classes), k)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < k; j++ {
			sum += proba.At(i, j)
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "row %d probabilities must sum to 1", i)
	}
}

func TestClassifierDeterminism(t *testing.T) {
	X, y := separableData(20)
	fit := func() *Classifier {
		clf, err := NewClassifier(Permutations(50), Seed(99), MaxFeatures("1"))
		require.NoError(t, err)
		require.NoError(t, clf.Fit(X, y))
		return clf
	}
	first, second := fit(), fit()
	assert.True(t, reflect.DeepEqual(first.Root, second.Root), "identical seeds must grow identical trees")
	assert.Equal(t, first.FeatureImportances, second.FeatureImportances)
}

func TestClassifierZeroPermutations(t *testing.T) {
	X, y := separableData(20)
	clf, err := NewClassifier(Permutations(0), Seed(1))
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	assert.True(t, clf.Root.Leaf(), "without trials no test is ever significant")
	assert.Equal(t, []float64{0, 0}, clf.FeatureImportances)
	assert.Equal(t, []float64{0.5, 0.5}, clf.Root.Value)
}

func TestClassifierMaxDepth(t *testing.T) {
	X, y := separableData(20)
	clf, err := NewClassifier(MaxDepth(0), Permutations(99), Seed(1))
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))
	assert.True(t, clf.Root.Leaf())
}

func TestClassifierSelectors(t *testing.T) {
	X, y := separableData(15)
	for _, selector := range []string{SelectorPearson, SelectorDistance, SelectorHybrid} {
		t.Run(selector, func(t *testing.T) {
			clf, err := NewClassifier(Selector(selector), Permutations(99), Seed(13))
			require.NoError(t, err)
			require.NoError(t, clf.Fit(X, y))
			predicted, err := clf.Predict(X)
			require.NoError(t, err)
			assert.Equal(t, y, predicted, "a perfectly separable dataset should be learned under the %s selector", selector)
		})
	}
}

func TestClassifierFitErrors(t *testing.T) {
	clf, err := NewClassifier()
	require.NoError(t, err)

	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	assert.Error(t, clf.Fit(X, []int{0, 1}), "label count must match the row count")

	_, err = clf.Predict(X)
	assert.Error(t, err, "predicting before fitting must fail")
}

func TestFitClassesKeepsGivenClassSet(t *testing.T) {
	X, y := separableData(10)
	clf, err := NewClassifier(Permutations(50), Seed(5))
	require.NoError(t, err)
	require.NoError(t, clf.FitClasses(X, y, []int{0, 1, 2}))

	assert.Equal(t, []int{0, 1, 2}, clf.Classes)
	proba, err := clf.PredictProba(X)
	require.NoError(t, err)
	_, k := proba.Dims()
	assert.Equal(t, 3, k, "probability vectors keep the width of the declared class set")
}

func TestResolveMaxFeatures(t *testing.T) {
	cases := []struct {
		policy string
		p      int
		want   int
	}{
		{MaxFeaturesAll, 9, 9},
		{MaxFeaturesSqrt, 9, 3},
		{MaxFeaturesLog, 9, 2},
		{"4", 9, 4},
		{"40", 9, 9},
	}
	for _, c := range cases {
		cfg := defaultConfig()
		cfg.maxFeatures = c.policy
		assert.Equal(t, c.want, cfg.resolveMaxFeatures(c.p), "policy %q over %d columns", c.policy, c.p)
	}
}

func TestUniqueLabels(t *testing.T) {
	assert.Equal(t, []int{0, 2, 5}, uniqueLabels([]int{5, 0, 2, 0, 5, 2, 2}))
}

func TestRegressorNotSupported(t *testing.T) {
	r, err := NewRegressor()
	require.NoError(t, err)
	X := mat.NewDense(2, 1, []float64{1, 2})

	assert.ErrorIs(t, r.Fit(X, []int{0, 1}), citrees.ErrRegressionNotSupported)
	_, err = r.Predict(X)
	assert.ErrorIs(t, err, citrees.ErrRegressionNotSupported)
	_, err = r.PredictProba(X)
	assert.ErrorIs(t, err, citrees.ErrRegressionNotSupported)
}
