package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/m0hashi/citrees"
)

/*
separableData builds a two-column dataset whose first column separates the
classes perfectly, with an alternating second column unrelated to the
label.
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
		{"zero trees", []Option{Trees(0)}},
		{"unknown class weight", []Option{ClassWeight("best")}},
		{"invalid tree alpha", []Option{Alpha(0)}},
		{"invalid tree selector", []Option{Selector("spearman")}},
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

func TestForestFitAndPredict(t *testing.T) {
	X, y := separableData(20)
	clf, err := NewClassifier(
		Trees(10),
		Permutations(50),
		MaxFeatures("all"),
		ClassWeight(ClassWeightStratify),
		Seed(17),
		Workers(4),
	)
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	assert.Len(t, clf.Estimators, 10)
	assert.Equal(t, []int{0, 1}, clf.Classes)
	assert.Equal(t, []float64{0.5, 0.5}, clf.ClassDistribution)

	predicted, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, predicted)

	assert.InDelta(t, 1.0, floats.Sum(clf.FeatureImportances), 1e-9)
	assert.Greater(t, clf.FeatureImportances[0], clf.FeatureImportances[1], "the separating column must dominate the importances")
}

func TestForestDeterminism(t *testing.T) {
	X, y := separableData(15)
	fit := func() *Classifier {
		clf, err := NewClassifier(Trees(8), Permutations(50), MaxFeatures("all"), Seed(23), Workers(3))
		require.NoError(t, err)
		require.NoError(t, clf.Fit(X, y))
		return clf
	}
	first, second := fit(), fit()

	assert.Equal(t, first.FeatureImportances, second.FeatureImportances, "identical seeds must grow identical forests regardless of scheduling")
	for i := range first.Estimators {
		assert.Equal(t, first.Estimators[i].Root, second.Estimators[i].Root, "tree %d differs between runs", i)
	}

	p1, err := first.PredictProba(X)
	require.NoError(t, err)
	p2, err := second.PredictProba(X)
	require.NoError(t, err)
	// the accumulation order varies between runs, so compare within
	// floating-point tolerance
	assert.True(t, mat.EqualApprox(p1, p2, 1e-12))
}

func TestForestPredictProbaAveragesTrees(t *testing.T) {
	X, y := separableData(15)
	clf, err := NewClassifier(Trees(3), Bootstrap(false), Permutations(50), MaxFeatures("all"), Seed(9))
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	got, err := clf.PredictProba(X)
	require.NoError(t, err)

	n, k := got.Dims()
	want := mat.NewDense(n, k, nil)
	for _, est := range clf.Estimators {
		proba, err := est.PredictProba(X)
		require.NoError(t, err)
		want.Add(want, proba)
	}
	want.Scale(1.0/float64(len(clf.Estimators)), want)
	assert.True(t, mat.EqualApprox(want, got, 1e-12), "the ensemble probability is the mean of the tree probabilities")

	for i := 0; i < n; i++ {
		assert.InDelta(t, 1.0, floats.Sum(got.RawRowView(i)), 1e-9)
	}
}

func TestForestOOBScore(t *testing.T) {
	X, y := separableData(20)
	clf, err := NewClassifier(
		Trees(12),
		Permutations(50),
		MaxFeatures("all"),
		ClassWeight(ClassWeightStratify),
		ComputeOOB(),
		Seed(31),
	)
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	assert.Greater(t, clf.OOBScore, 0.8, "out-of-bag accuracy should be high on a separable dataset")
	assert.LessOrEqual(t, clf.OOBScore, 1.0)
}

func TestForestOOBRequiresBootstrap(t *testing.T) {
	X, y := separableData(10)
	clf, err := NewClassifier(Trees(4), Bootstrap(false), Permutations(50), MaxFeatures("all"), ComputeOOB(), Seed(2))
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))
	assert.Zero(t, clf.OOBScore)
}

func TestForestFitErrors(t *testing.T) {
	clf, err := NewClassifier(Trees(2))
	require.NoError(t, err)

	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	assert.Error(t, clf.Fit(X, []int{0, 1}), "label count must match the row count")
	assert.Nil(t, clf.Estimators, "a failed fit must not install a partial model")

	_, err = clf.Predict(X)
	assert.Error(t, err, "predicting before fitting must fail")
}

func TestForestRegressorNotSupported(t *testing.T) {
	r, err := NewRegressor()
	require.NoError(t, err)
	X := mat.NewDense(2, 1, []float64{1, 2})

	assert.ErrorIs(t, r.Fit(X, []int{0, 1}), citrees.ErrRegressionNotSupported)
	_, err = r.Predict(X)
	assert.ErrorIs(t, err, citrees.ErrRegressionNotSupported)
	_, err = r.PredictProba(X)
	assert.ErrorIs(t, err, citrees.ErrRegressionNotSupported)
}
