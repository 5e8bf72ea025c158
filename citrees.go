/*
Package citrees implements conditional inference trees and forests for
classification.

A conditional inference tree validates every candidate split with a
permutation-based hypothesis test before accepting it: a column is only
split on when the test's p-value falls below the tree's alpha threshold,
guarding against spurious splits. A conditional inference forest combines
many such trees, each fitted on a resampled view of the training data, and
averages their class-probability estimates.

The tree subpackage holds the single-tree model, the forest subpackage the
ensemble and its bootstrap sampler, and the stats subpackage the
correlation measures and permutation tests the trees select features with.
*/
package citrees

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is the capability surface shared by the tree and forest
// models: train on a feature matrix with integer labels, then classify.
type Estimator interface {
	Fit(X *mat.Dense, y []int) error
	Predict(X *mat.Dense) ([]int, error)
	PredictProba(X *mat.Dense) (*mat.Dense, error)
}

// EstimatorError represents an error related with estimators.
type EstimatorError string

func (e EstimatorError) Error() string {
	return string(e)
}

/*
ErrRegressionNotSupported is the error returned by the Fit, Predict and
PredictProba methods of the regression model variants. Only classification
is implemented; the regression types exist so that callers asking for them
get an explicit error instead of a silent no-op.
*/
const ErrRegressionNotSupported = EstimatorError("regression models are not supported")
