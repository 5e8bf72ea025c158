package forest

import (
	"gonum.org/v1/gonum/mat"

	"github.com/m0hashi/citrees"
)

/*
Regressor is the regression counterpart of Classifier. The model family
defines it but only the classification variant is implemented: every
method returns citrees.ErrRegressionNotSupported.
*/
type Regressor struct{}

// NewRegressor returns a Regressor. The options are accepted for
// interface symmetry with NewClassifier but have no effect.
func NewRegressor(options ...Option) (*Regressor, error) {
	return &Regressor{}, nil
}

// Fit is not supported.
func (r *Regressor) Fit(X *mat.Dense, y []int) error {
	return citrees.ErrRegressionNotSupported
}

// Predict is not supported.
func (r *Regressor) Predict(X *mat.Dense) ([]int, error) {
	return nil, citrees.ErrRegressionNotSupported
}

// PredictProba is not supported.
func (r *Regressor) PredictProba(X *mat.Dense) (*mat.Dense, error) {
	return nil, citrees.ErrRegressionNotSupported
}
