package forest

import (
	"fmt"

	"github.com/m0hashi/citrees"
	"github.com/m0hashi/citrees/tree"
)

type config struct {
	nEstimators int
	bootstrap   bool
	bayes       bool
	classWeight string
	workers     int
	computeOOB  bool
	seed        uint64
	logger      citrees.Logger
	treeOpts    []tree.Option
}

// Option configures a forest Classifier passed to NewClassifier.
type Option func(*config)

// Trees sets the number of trees in the ensemble. Must be at least 1.
func Trees(n int) Option {
	return func(c *config) {
		c.nEstimators = n
	}
}

// Bootstrap controls whether each tree trains on a bootstrap sample of
// the data. When disabled every tree trains on the full dataset and
// trees differ only through their column subsampling seeds.
func Bootstrap(on bool) Option {
	return func(c *config) {
		c.bootstrap = on
	}
}

// Bayes switches the bootstrap sampler to Bayesian-bootstrap weights.
func Bayes(on bool) Option {
	return func(c *config) {
		c.bayes = on
	}
}

// ClassWeight sets the bootstrap sampling policy: ClassWeightNone,
// ClassWeightBalanced or ClassWeightStratify.
func ClassWeight(w string) Option {
	return func(c *config) {
		c.classWeight = w
	}
}

// Workers bounds the number of trees fitted or queried concurrently.
// Values below 1 mean one worker per CPU.
func Workers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// ComputeOOB enables out-of-bag accuracy estimation from the rows each
// tree's bootstrap draw left unsampled. Only meaningful with Bootstrap.
func ComputeOOB() Option {
	return func(c *config) {
		c.computeOOB = true
	}
}

// Seed sets the ensemble random state. Every tree derives its own seed
// from it, so forests fitted with the same seed on the same data are
// identical.
func Seed(s uint64) Option {
	return func(c *config) {
		c.seed = s
	}
}

// Verbose installs a logger for training and prediction progress
// messages. Individual trees stay silent.
func Verbose(l citrees.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Tree hyperparameters, forwarded to every estimator in the ensemble.

// Alpha sets the p-value threshold for accepting a split.
func Alpha(a float64) Option {
	return treeOption(tree.Alpha(a))
}

// MinSamplesSplit sets the minimum node size considered for splitting.
func MinSamplesSplit(n int) Option {
	return treeOption(tree.MinSamplesSplit(n))
}

// MaxDepth limits tree depth; -1 grows full trees.
func MaxDepth(n int) Option {
	return treeOption(tree.MaxDepth(n))
}

// MaxFeatures sets the number of columns examined per split: "sqrt",
// "log", "all" or an explicit count.
func MaxFeatures(policy string) Option {
	return treeOption(tree.MaxFeatures(policy))
}

// Permutations sets the number of trials per permutation test.
func Permutations(n int) Option {
	return treeOption(tree.Permutations(n))
}

// Selector sets the correlation regime for feature selection.
func Selector(kind string) Option {
	return treeOption(tree.Selector(kind))
}

// EarlyStopping makes selectors accept the first significant column.
func EarlyStopping(on bool) Option {
	return treeOption(tree.EarlyStopping(on))
}

func treeOption(opt tree.Option) Option {
	return func(c *config) {
		c.treeOpts = append(c.treeOpts, opt)
	}
}

func defaultConfig() config {
	return config{
		nEstimators: 100,
		bootstrap:   true,
		bayes:       true,
		classWeight: ClassWeightBalanced,
		workers:     -1,
		seed:        1,
		logger:      citrees.NopLogger{},
		treeOpts: []tree.Option{
			tree.MaxFeatures(tree.MaxFeaturesSqrt),
			tree.Permutations(200),
			tree.Workers(1),
		},
	}
}

func (c *config) validate() error {
	if c.nEstimators < 1 {
		return fmt.Errorf("number of trees (%d) must be >= 1", c.nEstimators)
	}
	switch c.classWeight {
	case ClassWeightNone, ClassWeightBalanced, ClassWeightStratify:
	default:
		return fmt.Errorf("%q is not a valid argument for class weight", c.classWeight)
	}
	// surfaces tree-level configuration errors before any computation
	if _, err := tree.NewClassifier(c.treeOpts...); err != nil {
		return err
	}
	return nil
}
